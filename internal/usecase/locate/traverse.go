package locate

import (
	"sort"
	"strings"

	"behat-locator/internal/domain/dom"

	"golang.org/x/net/html"
)

type candidate struct {
	node  *html.Node
	exact bool
}

type frameKind int

const (
	// visit walks one node below the current boundary.
	visit frameKind = iota
	// enter starts a nested search with node as boundary.
	enter
	// emit records node as a candidate as is.
	emit
)

type frame struct {
	kind     frameKind
	node     *html.Node
	boundary *html.Node
	exact    bool
}

// textMatches returns the elements in container whose label or text
// contains text, exact matches first.
func textMatches(tree *dom.Tree, container *html.Node, text string) []*html.Node {
	found := collect(tree, container, text)

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].exact && !found[j].exact
	})

	nodes := make([]*html.Node, len(found))
	for i, c := range found {
		nodes[i] = c.node
	}
	return nodes
}

// collect gathers candidates in encounter order. Shadow roots open nested
// searches whose results are merged where the host was met.
func collect(tree *dom.Tree, container *html.Node, text string) []candidate {
	var (
		out     []candidate
		visited = make(map[*html.Node]bool)
		stack   = []frame{{kind: enter, node: container}}
	)

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch f.kind {
		case emit:
			out = append(out, candidate{node: f.node, exact: f.exact})
			continue
		case enter:
			out = append(out, attributeMatches(tree, f.node, text)...)
			stack = pushChildren(stack, f.node, f.node)
			continue
		}

		n := f.node
		if visited[n] {
			continue
		}
		visited[n] = true

		if n.Type == html.TextNode {
			if strings.Contains(n.Data, text) && dom.IsElement(n.Parent) {
				out = append(out, candidate{node: n.Parent, exact: strings.TrimSpace(n.Data) == text})
			}
			continue
		}
		if n.Type != html.ElementNode || dom.IsSkipped(n) || tree.Hidden(n) {
			continue
		}

		stack = pushChildren(stack, n, f.boundary)

		if label, ok := labelledByText(tree, n, f.boundary); ok && strings.Contains(label, text) {
			out = append(out, candidate{node: n, exact: strings.TrimSpace(label) == text})
			continue
		}

		root := tree.ShadowRoot(n)
		if root == nil {
			continue
		}
		var shadow []frame
		for c := root.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || dom.IsSkipped(c) || tree.Hidden(c) {
				continue
			}
			if labelContains(c, text) {
				shadow = append(shadow, frame{kind: emit, node: c, exact: exactLabel(c, text)})
				continue
			}
			shadow = append(shadow, frame{kind: enter, node: c})
		}
		for i := len(shadow) - 1; i >= 0; i-- {
			stack = append(stack, shadow[i])
		}
	}

	return out
}

func pushChildren(stack []frame, n, boundary *html.Node) []frame {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		stack = append(stack, frame{kind: visit, node: c, boundary: boundary})
	}
	return stack
}

// attributeMatches finds visible light DOM descendants of container whose
// aria-label, link title or image alt contains text.
func attributeMatches(tree *dom.Tree, container *html.Node, text string) []candidate {
	var out []candidate
	dom.Walk(container, func(n *html.Node) bool {
		if n == container || n.Type != html.ElementNode {
			return true
		}
		if labelContains(n, text) && Visible(tree, n, container) {
			out = append(out, candidate{node: n, exact: exactLabel(n, text)})
		}
		return true
	})
	return out
}

func labelContains(n *html.Node, text string) bool {
	if v, ok := dom.Attr(n, "aria-label"); ok && strings.Contains(v, text) {
		return true
	}
	switch n.Data {
	case "a":
		v, ok := dom.Attr(n, "title")
		return ok && strings.Contains(v, text)
	case "img":
		v, ok := dom.Attr(n, "alt")
		return ok && strings.Contains(v, text)
	}
	return false
}

// exactLabel reports whether the title, alt or aria-label of n is text.
func exactLabel(n *html.Node, text string) bool {
	for _, key := range []string{"title", "alt", "aria-label"} {
		if v, ok := dom.Attr(n, key); ok && v == text {
			return true
		}
	}
	return false
}

// labelledByText returns the rendered text of the elements n names in
// aria-labelledby, looked up inside boundary.
func labelledByText(tree *dom.Tree, n, boundary *html.Node) (string, bool) {
	ref, ok := dom.Attr(n, "aria-labelledby")
	if !ok {
		return "", false
	}

	var parts []string
	for _, id := range strings.Fields(ref) {
		label := findByID(boundary, id)
		if label == nil {
			continue
		}
		if text := tree.InnerText(label); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

func findByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n != root && n.Type == html.ElementNode {
			if v, ok := dom.Attr(n, "id"); ok && v == id {
				found = n
				return false
			}
		}
		return true
	})
	return found
}

// Visible reports whether n is shown inside boundary: neither n nor any
// ancestor up to boundary is aria-hidden or display:none. A node that never
// reaches boundary is not visible.
func Visible(tree *dom.Tree, n, boundary *html.Node) bool {
	for {
		if tree.Hidden(n) {
			return false
		}
		p := tree.Parent(n)
		if p == boundary {
			return true
		}
		if p == nil {
			return false
		}
		n = p
	}
}
