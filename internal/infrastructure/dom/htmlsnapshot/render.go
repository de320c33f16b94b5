package htmlsnapshot

import (
	"fmt"
	"io"
	"strings"

	"behat-locator/internal/domain/dom"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type RenderConfig struct {
	TagsToRemove  []string
	AttrsToRemove []string
	// MaxOutputSize truncates the output; 0 means no limit.
	MaxOutputSize int
}

// DefaultRenderConfig keeps everything the locator reads: text, aria
// attributes, classes and computed visibility.
var DefaultRenderConfig = RenderConfig{
	TagsToRemove: []string{
		"script", "style", "noscript", "link", "meta", "head", "title",
	},
	AttrsToRemove: []string{
		"style", "srcset", "sizes", "loading", "decoding", "fetchpriority",
	},
}

// Render writes the composed subtree at root as static HTML. Shadow roots
// become declarative templates and computed style becomes inline style, so
// Parse reads the result back into an equivalent tree.
func Render(w io.Writer, tree *dom.Tree, root *html.Node, cfg *RenderConfig) error {
	if cfg == nil {
		cfg = &DefaultRenderConfig
	}
	if root == nil {
		return fmt.Errorf("render: nil root")
	}

	out := cloneComposed(tree, root, cfg)
	if out == nil {
		return nil
	}

	var sb strings.Builder
	if err := html.Render(&sb, out); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	s := sb.String()
	if cfg.MaxOutputSize > 0 && len(s) > cfg.MaxOutputSize {
		s = s[:cfg.MaxOutputSize] + "\n<!-- truncated -->"
	}
	_, err := io.WriteString(w, s)
	return err
}

// RenderString is Render into a string.
func RenderString(tree *dom.Tree, root *html.Node, cfg *RenderConfig) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, tree, root, cfg); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func cloneComposed(tree *dom.Tree, n *html.Node, cfg *RenderConfig) *html.Node {
	switch n.Type {
	case html.TextNode:
		return &html.Node{Type: html.TextNode, Data: n.Data}
	case html.DocumentNode:
		doc := &html.Node{Type: html.DocumentNode}
		appendClones(tree, doc, n, cfg)
		return doc
	case html.ElementNode:
	default:
		return nil
	}

	if isOneOf(n.Data, cfg.TagsToRemove...) {
		return nil
	}

	el := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Data,
		DataAtom: n.DataAtom,
		Attr:     filterAttributes(n.Attr, cfg),
	}
	if style := computedStyle(tree.Style(n)); style != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: "style", Val: style})
	}

	if root := tree.ShadowRoot(n); root != nil {
		tpl := &html.Node{
			Type:     html.ElementNode,
			Data:     "template",
			DataAtom: atom.Template,
			Attr:     []html.Attribute{{Key: "shadowrootmode", Val: "open"}},
		}
		appendClones(tree, tpl, root, cfg)
		el.AppendChild(tpl)
	}
	appendClones(tree, el, n, cfg)
	return el
}

func appendClones(tree *dom.Tree, dst, src *html.Node, cfg *RenderConfig) {
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		if cc := cloneComposed(tree, c, cfg); cc != nil {
			dst.AppendChild(cc)
		}
	}
}

func computedStyle(s dom.Style) string {
	var decls []string
	if s.Display == "none" {
		decls = append(decls, "display: none")
	}
	if z := strings.TrimSpace(s.ZIndex); z != "" && z != "auto" {
		decls = append(decls, "z-index: "+z)
	}
	return strings.Join(decls, "; ")
}

func filterAttributes(attrs []html.Attribute, cfg *RenderConfig) []html.Attribute {
	var kept []html.Attribute
	for _, attr := range attrs {
		if shouldRemoveAttr(attr, cfg) {
			continue
		}
		kept = append(kept, attr)
	}
	return kept
}

func shouldRemoveAttr(attr html.Attribute, cfg *RenderConfig) bool {
	if isOneOf(attr.Key, cfg.AttrsToRemove...) {
		return true
	}
	return strings.HasPrefix(attr.Key, "on")
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
