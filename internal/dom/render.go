package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// InnerHTML renders the children of n.
func InnerHTML(n *html.Node) (string, error) {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", fmt.Errorf("rendering node: %w", err)
		}
	}
	return sb.String(), nil
}

// SetInnerHTML replaces the children of n with the parsed markup.
func SetInnerHTML(n *html.Node, markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), n)
	if err != nil {
		return fmt.Errorf("parsing fragment: %w", err)
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// BodyMarkup renders the inner markup of Body. Elements for which strip
// returns true are removed, together with their subtrees, from a copy of the
// body first; the live tree is never touched.
func (d *Document) BodyMarkup(strip func(*html.Node) bool) (string, error) {
	if strip == nil {
		return InnerHTML(d.Body)
	}
	snapshot := Clone(d.Body)
	removeMatching(snapshot, strip)
	return InnerHTML(snapshot)
}

func removeMatching(n *html.Node, strip func(*html.Node) bool) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && strip(c) {
			n.RemoveChild(c)
		} else {
			removeMatching(c, strip)
		}
		c = next
	}
}
