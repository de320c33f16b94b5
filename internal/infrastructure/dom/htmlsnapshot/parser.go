// Package htmlsnapshot builds locator trees from static HTML documents.
// Shadow roots are read from declarative <template shadowrootmode> markup
// and computed style is approximated from inline style attributes.
package htmlsnapshot

import (
	"fmt"
	"io"
	"strings"

	"behat-locator/internal/domain/dom"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var hiddenByDefault = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"template": true,
	"title":    true,
	"meta":     true,
	"link":     true,
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*dom.Tree, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	tree := dom.NewTree(doc.Nodes[0])

	doc.Find("template[shadowrootmode], template[shadowroot]").Each(func(_ int, s *goquery.Selection) {
		attachDeclarativeShadow(tree, s.Nodes[0])
	})

	eachComposed(tree, func(n *html.Node) {
		tree.Register(n)
		tree.SetStyle(n, inlineStyle(n))
	})

	return tree, nil
}

// ParseString is Parse over an in-memory document.
func ParseString(s string) (*dom.Tree, error) {
	return Parse(strings.NewReader(s))
}

func attachDeclarativeShadow(tree *dom.Tree, tpl *html.Node) {
	host := tpl.Parent
	if !dom.IsElement(host) {
		return
	}
	host.RemoveChild(tpl)

	root := dom.NewShadowRoot()
	for c := tpl.FirstChild; c != nil; {
		next := c.NextSibling
		tpl.RemoveChild(c)
		root.AppendChild(c)
		c = next
	}
	tree.AttachShadow(host, root)
}

// eachComposed visits every element in document order, descending into
// shadow roots before light children.
func eachComposed(tree *dom.Tree, fn func(*html.Node)) {
	stack := []*html.Node{tree.Document}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.Type == html.ElementNode {
			fn(n)
		}
		for c := n.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
		if root := tree.ShadowRoot(n); root != nil {
			for c := root.LastChild; c != nil; c = c.PrevSibling {
				stack = append(stack, c)
			}
		}
	}
}

func inlineStyle(n *html.Node) dom.Style {
	style := dom.Style{ZIndex: "auto"}
	if hiddenByDefault[n.Data] {
		style.Display = "none"
	}
	if _, ok := dom.Attr(n, "hidden"); ok {
		style.Display = "none"
	}

	raw, ok := dom.Attr(n, "style")
	if !ok {
		return style
	}
	for _, decl := range strings.Split(raw, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		val = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "!important"))
		switch strings.ToLower(strings.TrimSpace(prop)) {
		case "display":
			style.Display = strings.ToLower(val)
		case "z-index":
			style.ZIndex = val
		}
	}
	return style
}
