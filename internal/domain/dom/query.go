package dom

import (
	"errors"
	"fmt"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var ErrInvalidSelector = errors.New("invalid selector")

// Compile parses a CSS selector group. Errors are returned, not swallowed,
// so a malformed locator selector fails the step.
func Compile(selector string) (cascadia.Selector, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSelector, selector, err)
	}
	return sel, nil
}

// QueryAll returns the light DOM descendants of root matching sel, in
// document order. Like querySelectorAll it neither returns root nor
// enters shadow roots.
func QueryAll(root *html.Node, sel cascadia.Selector) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if n != root && n.Type == html.ElementNode && sel.Match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Query returns the first match of QueryAll or nil.
func Query(root *html.Node, sel cascadia.Selector) *html.Node {
	var found *html.Node
	Walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n != root && n.Type == html.ElementNode && sel.Match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// Closest returns n or its nearest light DOM ancestor matching sel.
func Closest(n *html.Node, sel cascadia.Selector) *html.Node {
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		if sel.Match(cur) {
			return cur
		}
	}
	return nil
}

// Walk visits root and its light DOM descendants depth first in document
// order. Returning false from fn skips the children of the visited node.
func Walk(root *html.Node, fn func(*html.Node) bool) {
	stack := []*html.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			continue
		}
		for c := n.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}
}
