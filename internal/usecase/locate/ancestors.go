package locate

import (
	"behat-locator/internal/domain/dom"

	"golang.org/x/net/html"
)

// TopAncestors drops duplicates and every node contained in another node
// of the list. Order of the survivors is kept.
func TopAncestors(tree *dom.Tree, nodes []*html.Node) []*html.Node {
	set := unique(nodes)

	var out []*html.Node
	for i, n := range set {
		nested := false
		for j, other := range set {
			if i != j && tree.Contains(other, n) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, n)
		}
	}
	return out
}

func unique(nodes []*html.Node) []*html.Node {
	seen := make(map[*html.Node]bool, len(nodes))
	out := make([]*html.Node, 0, len(nodes))
	for _, n := range nodes {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
