package converter

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Two traversal strategies are used and must not be mixed up:
// eachChild visits direct children only (section dispatch), eachDescendant
// visits the whole subtree in document order (structured abstracts).

// eachChild calls fn for every direct child node of s, text nodes included,
// in document order.
func eachChild(s *goquery.Selection, fn func(*goquery.Selection)) {
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		fn(child)
	})
}

// eachDescendant calls fn for every node below s in document order
// (pre-order). s itself is not visited.
func eachDescendant(s *goquery.Selection, fn func(*goquery.Selection)) {
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		fn(child)
		eachDescendant(child, fn)
	})
}

// isElement reports whether the first node of s is an element named tag.
// An empty tag matches any element.
func isElement(s *goquery.Selection, tag string) bool {
	if s.Length() == 0 {
		return false
	}
	n := s.Get(0)
	if n.Type != html.ElementNode {
		return false
	}
	return tag == "" || n.Data == tag
}

// nodeText concatenates every text node below n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}
