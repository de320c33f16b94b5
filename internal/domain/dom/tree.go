// Package dom models a rendered document as the locator sees it: light DOM
// nodes from golang.org/x/net/html plus attached shadow roots, computed
// style and the handles used to reach the live node again.
package dom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Handle identifies a node inside the page it was captured from.
type Handle int

// Style holds the computed properties the locator reads.
type Style struct {
	Display string
	ZIndex  string
}

type Tree struct {
	Document *html.Node

	shadowRoots map[*html.Node]*html.Node
	hosts       map[*html.Node]*html.Node
	styles      map[*html.Node]Style
	innerText   map[*html.Node]string
	handles     map[*html.Node]Handle
	nodes       map[Handle]*html.Node
	nextHandle  Handle
}

func NewTree(doc *html.Node) *Tree {
	return &Tree{
		Document:    doc,
		shadowRoots: make(map[*html.Node]*html.Node),
		hosts:       make(map[*html.Node]*html.Node),
		styles:      make(map[*html.Node]Style),
		innerText:   make(map[*html.Node]string),
		handles:     make(map[*html.Node]Handle),
		nodes:       make(map[Handle]*html.Node),
	}
}

// NewShadowRoot returns a detached node usable as a shadow root.
func NewShadowRoot() *html.Node {
	return &html.Node{Type: html.DocumentNode, Data: "#shadow-root"}
}

// AttachShadow binds root to host. A host has at most one shadow root;
// attaching again replaces it.
func (t *Tree) AttachShadow(host, root *html.Node) {
	if old, ok := t.shadowRoots[host]; ok {
		delete(t.hosts, old)
	}
	t.shadowRoots[host] = root
	t.hosts[root] = host
}

func (t *Tree) ShadowRoot(host *html.Node) *html.Node {
	return t.shadowRoots[host]
}

// Host returns the element a shadow root is attached to, or nil.
func (t *Tree) Host(root *html.Node) *html.Node {
	return t.hosts[root]
}

func (t *Tree) SetStyle(n *html.Node, s Style) {
	t.styles[n] = s
}

func (t *Tree) Style(n *html.Node) Style {
	return t.styles[n]
}

// SetInnerText records the rendered text reported by the page for n.
func (t *Tree) SetInnerText(n *html.Node, text string) {
	t.innerText[n] = text
}

// SetHandle records the handle the page assigned to n.
func (t *Tree) SetHandle(n *html.Node, h Handle) {
	t.handles[n] = h
	t.nodes[h] = n
	if h >= t.nextHandle {
		t.nextHandle = h + 1
	}
}

// Register assigns the next free handle to n.
func (t *Tree) Register(n *html.Node) Handle {
	if h, ok := t.handles[n]; ok {
		return h
	}
	h := t.nextHandle
	t.SetHandle(n, h)
	return h
}

func (t *Tree) Handle(n *html.Node) (Handle, bool) {
	h, ok := t.handles[n]
	return h, ok
}

func (t *Tree) Node(h Handle) (*html.Node, bool) {
	n, ok := t.nodes[h]
	return n, ok
}

// ZIndex parses the computed z-index. "auto" and garbage count as 0.
func (t *Tree) ZIndex(n *html.Node) int {
	z, err := strconv.Atoi(strings.TrimSpace(t.styles[n].ZIndex))
	if err != nil {
		return 0
	}
	return z
}

// Hidden reports whether n itself is hidden, without looking at ancestors.
func (t *Tree) Hidden(n *html.Node) bool {
	if v, ok := Attr(n, "aria-hidden"); ok && v == "true" {
		return true
	}
	return t.styles[n].Display == "none"
}

// Parent returns the parent element of n, crossing from a shadow root to
// its host. Nodes directly under the document have no parent element.
func (t *Tree) Parent(n *html.Node) *html.Node {
	p := n.Parent
	if p == nil {
		return nil
	}
	if p.Type == html.ElementNode {
		return p
	}
	return t.hosts[p]
}

// Contains reports whether b is a itself or sits below a, shadow trees
// included.
func (t *Tree) Contains(a, b *html.Node) bool {
	for n := b; n != nil; n = t.Parent(n) {
		if n == a {
			return true
		}
	}
	return false
}

// InnerText returns the rendered text of n: the value captured from the
// page when there is one, otherwise the visible light DOM text with
// whitespace collapsed.
func (t *Tree) InnerText(n *html.Node) string {
	if text, ok := t.innerText[n]; ok {
		return text
	}

	var sb strings.Builder
	stack := []*html.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch cur.Type {
		case html.TextNode:
			sb.WriteString(cur.Data)
			sb.WriteByte(' ')
			continue
		case html.ElementNode:
			if cur != n && (IsSkipped(cur) || t.Hidden(cur)) {
				continue
			}
		}
		for c := cur.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// IsSkipped reports elements the text search never looks into.
func IsSkipped(n *html.Node) bool {
	switch n.Data {
	case "style", "link", "script":
		return true
	}
	return false
}
