package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func strPtr(s string) *string { return &s }

// sample builds:
//
//	<html><body><div id=host>[#shadow <span id=inner>Shadow</span>]<p id=p>Hello <b>world</b></p></div></body></html>
func sample() *SnapshotNode {
	return &SnapshotNode{
		Type: SnapshotElement, Handle: 1, Name: "html",
		Children: []*SnapshotNode{{
			Type: SnapshotElement, Handle: 2, Name: "body",
			Children: []*SnapshotNode{{
				Type: SnapshotElement, Handle: 3, Name: "div", Attrs: [][2]string{{"id", "host"}},
				ZIndex:    "10",
				HasShadow: true,
				Shadow: []*SnapshotNode{{
					Type: SnapshotElement, Handle: 4, Name: "span", Attrs: [][2]string{{"id", "inner"}},
					Children: []*SnapshotNode{{Type: SnapshotText, Value: "Shadow"}},
				}},
				Children: []*SnapshotNode{{
					Type: SnapshotElement, Handle: 5, Name: "p", Attrs: [][2]string{{"id", "p"}},
					InnerText: strPtr("Hello world"),
					Children: []*SnapshotNode{
						{Type: SnapshotText, Value: "Hello "},
						{Type: SnapshotElement, Handle: 6, Name: "b", Children: []*SnapshotNode{{Type: SnapshotText, Value: "world"}}},
					},
				}},
			}},
		}},
	}
}

func mustNode(t *testing.T, tree *Tree, h Handle) *html.Node {
	t.Helper()
	n, ok := tree.Node(h)
	require.True(t, ok, "handle %d", h)
	return n
}

func TestFromSnapshot(t *testing.T) {
	tree := FromSnapshot(sample())

	htmlEl := mustNode(t, tree, 1)
	assert.Equal(t, "html", htmlEl.Data)
	assert.Equal(t, tree.Document, htmlEl.Parent)

	host := mustNode(t, tree, 3)
	root := tree.ShadowRoot(host)
	require.NotNil(t, root)
	assert.Equal(t, host, tree.Host(root))

	inner := mustNode(t, tree, 4)
	assert.Equal(t, root, inner.Parent)
	assert.Equal(t, "Shadow", inner.FirstChild.Data)

	p := mustNode(t, tree, 5)
	assert.Equal(t, host, p.Parent, "light children stay on the host")
	assert.Equal(t, "b", p.FirstChild.NextSibling.Data)
	assert.Equal(t, 10, tree.ZIndex(host))

	h, ok := tree.Handle(p)
	require.True(t, ok)
	assert.Equal(t, Handle(5), h)
}

func TestFromSnapshot_Nil(t *testing.T) {
	tree := FromSnapshot(nil)
	require.NotNil(t, tree.Document)
	assert.Nil(t, tree.Document.FirstChild)
}

func TestParentCrossesShadowRoot(t *testing.T) {
	tree := FromSnapshot(sample())
	host := mustNode(t, tree, 3)
	inner := mustNode(t, tree, 4)

	assert.Equal(t, host, tree.Parent(inner))
	assert.Nil(t, tree.Parent(mustNode(t, tree, 1)), "nothing above the document element")

	assert.True(t, tree.Contains(host, inner))
	assert.True(t, tree.Contains(mustNode(t, tree, 1), inner))
	assert.True(t, tree.Contains(inner, inner))
	assert.False(t, tree.Contains(inner, host))
}

func TestInnerText(t *testing.T) {
	tree := FromSnapshot(sample())

	assert.Equal(t, "Hello world", tree.InnerText(mustNode(t, tree, 5)))
	assert.Equal(t, "world", tree.InnerText(mustNode(t, tree, 6)))
}

func TestInnerText_SkipsHiddenChildren(t *testing.T) {
	tree := FromSnapshot(&SnapshotNode{
		Type: SnapshotElement, Handle: 1, Name: "div",
		Children: []*SnapshotNode{
			{Type: SnapshotText, Value: "  Visible\n"},
			{Type: SnapshotElement, Handle: 2, Name: "span", Display: "none", Children: []*SnapshotNode{{Type: SnapshotText, Value: "gone"}}},
			{Type: SnapshotElement, Handle: 3, Name: "script", Children: []*SnapshotNode{{Type: SnapshotText, Value: "code()"}}},
			{Type: SnapshotElement, Handle: 4, Name: "em", Children: []*SnapshotNode{{Type: SnapshotText, Value: "text"}}},
		},
	})

	assert.Equal(t, "Visible text", tree.InnerText(mustNode(t, tree, 1)))
}

func TestHidden(t *testing.T) {
	tree := NewTree(&html.Node{Type: html.DocumentNode})
	plain := &html.Node{Type: html.ElementNode, Data: "div"}
	aria := &html.Node{Type: html.ElementNode, Data: "div", Attr: []html.Attribute{{Key: "aria-hidden", Val: "true"}}}
	ariaFalse := &html.Node{Type: html.ElementNode, Data: "div", Attr: []html.Attribute{{Key: "aria-hidden", Val: "false"}}}
	none := &html.Node{Type: html.ElementNode, Data: "div"}
	tree.SetStyle(none, Style{Display: "none"})

	assert.False(t, tree.Hidden(plain))
	assert.True(t, tree.Hidden(aria))
	assert.False(t, tree.Hidden(ariaFalse))
	assert.True(t, tree.Hidden(none))
}

func TestZIndex(t *testing.T) {
	tree := NewTree(&html.Node{Type: html.DocumentNode})
	tests := map[string]int{
		"":      0,
		"auto":  0,
		"abc":   0,
		"200":   200,
		" 7 ":   7,
		"-1":    -1,
		"20001": 20001,
	}
	for raw, want := range tests {
		n := &html.Node{Type: html.ElementNode, Data: "div"}
		tree.SetStyle(n, Style{ZIndex: raw})
		assert.Equal(t, want, tree.ZIndex(n), "z-index %q", raw)
	}
}

func TestRegister(t *testing.T) {
	tree := NewTree(&html.Node{Type: html.DocumentNode})
	a := &html.Node{Type: html.ElementNode, Data: "a"}
	b := &html.Node{Type: html.ElementNode, Data: "b"}

	tree.SetHandle(a, 41)
	hb := tree.Register(b)
	assert.Equal(t, Handle(42), hb)
	assert.Equal(t, Handle(41), tree.Register(a), "existing handle is kept")

	n, ok := tree.Node(42)
	require.True(t, ok)
	assert.Equal(t, b, n)

	_, ok = tree.Node(7)
	assert.False(t, ok)
}

func TestAttachShadowReplaces(t *testing.T) {
	tree := NewTree(&html.Node{Type: html.DocumentNode})
	host := &html.Node{Type: html.ElementNode, Data: "x-el"}
	first, second := NewShadowRoot(), NewShadowRoot()

	tree.AttachShadow(host, first)
	tree.AttachShadow(host, second)

	assert.Equal(t, second, tree.ShadowRoot(host))
	assert.Nil(t, tree.Host(first))
	assert.Equal(t, host, tree.Host(second))
}

func TestAttr(t *testing.T) {
	n := &html.Node{Type: html.ElementNode, Data: "a", Attr: []html.Attribute{{Key: "title", Val: "Help"}}}

	v, ok := Attr(n, "title")
	assert.True(t, ok)
	assert.Equal(t, "Help", v)

	_, ok = Attr(n, "href")
	assert.False(t, ok)

	_, ok = Attr(nil, "title")
	assert.False(t, ok)
}
