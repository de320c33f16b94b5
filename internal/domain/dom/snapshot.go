package dom

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	SnapshotElement = 1
	SnapshotText    = 3
)

// SnapshotNode is the wire form of a composed DOM capture taken inside the
// page. Short JSON keys keep large documents cheap to transfer.
type SnapshotNode struct {
	Type      int             `json:"t"`
	Handle    int             `json:"h,omitempty"`
	Name      string          `json:"n,omitempty"`
	Value     string          `json:"v,omitempty"`
	Attrs     [][2]string     `json:"a,omitempty"`
	Display   string          `json:"d,omitempty"`
	ZIndex    string          `json:"z,omitempty"`
	InnerText *string         `json:"i,omitempty"`
	Children  []*SnapshotNode `json:"c,omitempty"`
	HasShadow bool            `json:"r,omitempty"`
	Shadow    []*SnapshotNode `json:"s,omitempty"`
}

// FromSnapshot rebuilds a Tree from a capture rooted at the document
// element.
func FromSnapshot(root *SnapshotNode) *Tree {
	doc := &html.Node{Type: html.DocumentNode}
	tree := NewTree(doc)
	if root == nil {
		return tree
	}

	type frame struct {
		snap   *SnapshotNode
		parent *html.Node
	}
	stack := []frame{{snap: root, parent: doc}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch f.snap.Type {
		case SnapshotText:
			f.parent.AppendChild(&html.Node{Type: html.TextNode, Data: f.snap.Value})
			continue
		case SnapshotElement:
		default:
			continue
		}

		n := &html.Node{
			Type:     html.ElementNode,
			Data:     f.snap.Name,
			DataAtom: atom.Lookup([]byte(f.snap.Name)),
		}
		for _, kv := range f.snap.Attrs {
			n.Attr = append(n.Attr, html.Attribute{Key: kv[0], Val: kv[1]})
		}
		f.parent.AppendChild(n)
		tree.SetHandle(n, Handle(f.snap.Handle))
		tree.SetStyle(n, Style{Display: f.snap.Display, ZIndex: f.snap.ZIndex})
		if f.snap.InnerText != nil {
			tree.SetInnerText(n, *f.snap.InnerText)
		}

		// Pushed in reverse so siblings keep document order.
		if f.snap.HasShadow {
			sr := NewShadowRoot()
			tree.AttachShadow(n, sr)
			for i := len(f.snap.Shadow) - 1; i >= 0; i-- {
				stack = append(stack, frame{snap: f.snap.Shadow[i], parent: sr})
			}
		}
		for i := len(f.snap.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{snap: f.snap.Children[i], parent: n})
		}
	}
	return tree
}
