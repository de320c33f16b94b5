// Package locate maps behat text locators onto nodes of a captured page.
package locate

import (
	"fmt"

	"behat-locator/internal/application/port/output"
	"behat-locator/internal/domain/dom"
	"behat-locator/internal/domain/entity"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

const defaultMaxDepth = 32

type Resolver struct {
	maxDepth int
	logger   output.LoggerPort
}

type Option func(*Resolver)

// WithMaxDepth bounds how deeply within/near locators may nest.
func WithMaxDepth(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

func New(logger output.LoggerPort, opts ...Option) *Resolver {
	r := &Resolver{
		maxDepth: defaultMaxDepth,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Find returns every element matching loc inside the named container,
// exact label matches first. An empty result is not an error; failing to
// resolve a within or near locator is.
func (r *Resolver) Find(tree *dom.Tree, loc *entity.Locator, container entity.ContainerName) ([]*html.Node, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	return r.find(tree, loc, container, 1)
}

// FindFirst returns the best match for loc.
func (r *Resolver) FindFirst(tree *dom.Tree, loc *entity.Locator, container entity.ContainerName) (*html.Node, error) {
	nodes, err := r.Find(tree, loc, container)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", entity.ErrNoMatch, loc)
	}
	return nodes[0], nil
}

func (r *Resolver) find(tree *dom.Tree, loc *entity.Locator, name entity.ContainerName, depth int) ([]*html.Node, error) {
	if depth > r.maxDepth {
		return nil, fmt.Errorf("%w: more than %d levels", entity.ErrLocatorTooDeep, r.maxDepth)
	}
	return r.findIn(tree, loc, r.TopContainer(tree, name), depth)
}

// findIn searches loc below top. A within element replaces top, so a near
// element is looked up inside it and the ascent never leaves it.
func (r *Resolver) findIn(tree *dom.Tree, loc *entity.Locator, top *html.Node, depth int) ([]*html.Node, error) {
	if depth > r.maxDepth {
		return nil, fmt.Errorf("%w: more than %d levels", entity.ErrLocatorTooDeep, r.maxDepth)
	}
	container := top

	if loc.Within != nil {
		el, err := r.single(tree, loc.Within, "within", nil, depth)
		if err != nil {
			return nil, err
		}
		top, container = el, el
	}

	if top != nil && loc.Near != nil {
		var scope *html.Node
		if loc.Within != nil {
			scope = top
		}
		el, err := r.single(tree, loc.Near, "near", scope, depth)
		if err != nil {
			return nil, err
		}
		container = tree.Parent(el)
		if scope != nil && !tree.Contains(top, container) {
			container = top
		}
	}

	var sel cascadia.Selector
	if loc.Selector != "" {
		var err error
		if sel, err = dom.Compile(loc.Selector); err != nil {
			return nil, err
		}
	}

	for container != nil {
		matches := textMatches(tree, container, loc.Text)
		if sel != nil {
			matches = closestMatching(tree, matches, sel, container)
		}
		if len(matches) > 0 {
			return unique(matches), nil
		}
		if container == top {
			break
		}
		container = tree.Parent(container)
		r.logger.Debug("widening search", "locator", loc.String(), "depth", depth)
	}

	return nil, nil
}

// single resolves a within or near locator to exactly one element, inside
// scope when given and inside the default container otherwise.
func (r *Resolver) single(tree *dom.Tree, loc *entity.Locator, kind string, scope *html.Node, depth int) (*html.Node, error) {
	var nodes []*html.Node
	var err error
	if scope != nil {
		nodes, err = r.findIn(tree, loc, scope, depth+1)
	} else {
		nodes, err = r.find(tree, loc, entity.ContainerDefault, depth+1)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", kind, loc, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s text %s", entity.ErrNoMatch, kind, loc)
	}

	tops := TopAncestors(tree, nodes)
	if len(tops) > 1 {
		return nil, fmt.Errorf("%w: %s text %s matched %d elements", entity.ErrAmbiguousMatch, kind, loc, len(tops))
	}
	return tops[0], nil
}

// closestMatching replaces every node with its nearest ancestor (or self)
// matching sel without going above container. Nodes without one are
// dropped.
func closestMatching(tree *dom.Tree, nodes []*html.Node, sel cascadia.Selector, container *html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		for cur := n; cur != nil; cur = tree.Parent(cur) {
			if sel.Match(cur) {
				out = append(out, cur)
				break
			}
			if cur == container {
				break
			}
		}
	}
	return out
}
