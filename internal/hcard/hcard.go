// Package hcard mines personal-profile attributes from an identity page
// marked up with the hCard microformat. Extraction is strictly best-effort:
// every failure degrades to "no profile data" so attribute exchange can never
// block an authentication flow.
package hcard

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Card is a view over the parsed subtree of one vcard element.
type Card struct {
	node *html.Node
}

// FindCard returns the first element of class "vcard" in the document.
func FindCard(root *html.Node) (*Card, bool) {
	for _, n := range elementsByClass(root, "vcard", true) {
		return &Card{node: n}, true
	}
	return nil, false
}

// Property resolves one microformat class inside the vcard subtree. All
// matching descendants contribute, in document order: an abbreviation element
// supplies its machine-readable title attribute, anything else its direct
// text content. Pieces are trimmed and the result newline-collapsed.
func (c *Card) Property(class string) string {
	var parts []string
	for _, el := range elementsByClass(c.node, class, false) {
		if title, ok := abbrTitle(el); ok {
			parts = append(parts, strings.TrimSpace(title))
			continue
		}
		for child := el.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.TextNode {
				parts = append(parts, strings.TrimSpace(child.Data))
			}
		}
	}
	return strings.ReplaceAll(strings.Join(parts, ""), "\n", " ")
}

// elementsByClass collects descendants of n carrying class, in document
// order. includeSelf also considers n itself.
func elementsByClass(n *html.Node, class string, includeSelf bool) []*html.Node {
	var matches []*html.Node
	var walk func(node *html.Node, self bool)
	walk = func(node *html.Node, self bool) {
		if self && node.Type == html.ElementNode && hasClass(node, class) {
			matches = append(matches, node)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child, true)
		}
	}
	walk(n, includeSelf)
	return matches
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func abbrTitle(n *html.Node) (string, bool) {
	if n.DataAtom != atom.Abbr {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Key == "title" {
			return attr.Val, true
		}
	}
	return "", false
}
