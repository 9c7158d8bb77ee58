package converter

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RenderInline flattens the mixed inline content of s into one cleaned
// markdown string. Unrecognized wrappers are transparent: their children
// are rendered in place, never dropped.
func RenderInline(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	var sb strings.Builder
	for c := s.Get(0).FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(inlineNode(c))
	}
	return CleanText(sb.String())
}

func inlineChildren(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(inlineNode(c))
	}
	return sb.String()
}

func inlineNode(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return n.Data
	case html.ElementNode:
	default:
		return ""
	}

	switch n.DataAtom {
	case atom.Em, atom.I:
		return wrapMark("*", inlineChildren(n))
	case atom.Strong, atom.B:
		return wrapMark("**", inlineChildren(n))
	case atom.Sub:
		return wrapMark("_", inlineChildren(n))
	case atom.Sup:
		return wrapMark("^", inlineChildren(n))
	case atom.A:
		text := strings.TrimSpace(nodeText(n))
		if href, ok := attr(n, "href"); ok && href != "" {
			return "[" + text + "](" + href + ")"
		}
		return text
	case atom.Br:
		return " "
	case atom.Script, atom.Style:
		return ""
	default:
		return inlineChildren(n)
	}
}

// wrapMark surrounds inner with mark unless inner is blank.
func wrapMark(mark, inner string) string {
	if strings.TrimSpace(inner) == "" {
		return inner
	}
	return mark + inner + mark
}
