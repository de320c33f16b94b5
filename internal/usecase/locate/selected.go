package locate

import (
	"behat-locator/internal/domain/dom"

	"golang.org/x/net/html"
)

// IsSelected reports whether n, or an ancestor below container, is marked
// current, selected or checked.
func IsSelected(tree *dom.Tree, n, container *html.Node) bool {
	for cur := n; cur != nil && cur != container; cur = tree.Parent(cur) {
		if v, ok := dom.Attr(cur, "aria-current"); ok && v != "" && v != "false" {
			return true
		}
		if v, _ := dom.Attr(cur, "aria-selected"); v == "true" {
			return true
		}
		if v, _ := dom.Attr(cur, "aria-checked"); v == "true" {
			return true
		}
	}
	return false
}
