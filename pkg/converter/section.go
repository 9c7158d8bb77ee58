package converter

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// excludedSections are rendered elsewhere (abstract, references) or
// omitted (keywords).
var excludedSections = []string{"abstract", "ref-list", "kwd-group"}

// renderMainContent renders the article body: section.main-article-body,
// else the first <article>.
func (c *conversion) renderMainContent() string {
	body := c.doc.Find("section.main-article-body").First()
	if body.Length() == 0 {
		body = c.doc.Find("article").First()
	}
	if body.Length() == 0 {
		return ""
	}
	return c.renderSection(body)
}

// renderSection renders one container: its owned heading, then its direct
// children in document order. It returns "" when nothing was rendered.
func (c *conversion) renderSection(s *goquery.Selection) string {
	var f Fragment

	heading := ownedHeading(s.Get(0))
	if heading != nil {
		writeHeading(&f, heading)
	}
	c.renderChildren(s, heading, &f)

	return f.String()
}

// renderChildren dispatches every direct child of s by kind. Unknown
// wrappers holding blocks are walked in place with the same dispatch; a
// wrapper without blocks, and loose text or inline elements between
// blocks, become paragraphs so that nothing nested inside them is lost.
func (c *conversion) renderChildren(s *goquery.Selection, heading *html.Node, f *Fragment) {
	var loose strings.Builder
	flush := func() {
		if text := CleanText(loose.String()); text != "" {
			f.Line(text)
			f.Blank()
		}
		loose.Reset()
	}

	eachChild(s, func(child *goquery.Selection) {
		n := child.Get(0)
		kind := classifyNode(child)
		switch kind {
		case kindInline:
			if !hasBlockContent(n) {
				loose.WriteString(inlineNode(n))
				return
			}
			kind = kindUnknown
		case kindText:
			loose.WriteString(n.Data)
			return
		case kindIgnored:
			if n.Type == html.TextNode {
				loose.WriteString(n.Data)
			}
			return
		}
		flush()

		switch kind {
		case kindParagraph:
			if text := RenderInline(child); text != "" {
				f.Line(text)
				f.Blank()
			}
		case kindTableWrapper:
			f.Block(c.renderTableBlock(child))
		case kindFigure, kindRawFigure:
			f.Block(c.renderFigure(child))
		case kindSection:
			if isExcludedSection(n) {
				return
			}
			f.Block(c.renderSection(child))
		case kindTable:
			if t, ok := BuildTable(child); ok {
				f.Block(RenderTable(t))
			}
		case kindHeading:
			if n != heading {
				writeHeading(f, n)
			}
		case kindList:
			f.Block(renderList(child))
		case kindUnknown:
			if hasBlockContent(n) {
				c.renderChildren(child, heading, f)
				return
			}
			if text := RenderInline(child); text != "" {
				f.Line(text)
				f.Blank()
			}
		}
	})
	flush()
}

// renderList renders the direct items of a <ul> or <ol>, one line each.
func renderList(s *goquery.Selection) string {
	ordered := s.Get(0).DataAtom == atom.Ol
	var f Fragment
	i := 0
	s.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		text := RenderInline(li)
		if text == "" {
			return
		}
		i++
		if ordered {
			f.Line(fmt.Sprintf("%d. %s", i, text))
		} else {
			f.Line("- " + text)
		}
	})
	return f.String()
}

// ownedHeading finds the first h1-h4.pmc_sec_title below n without
// descending into nested sections.
func ownedHeading(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if headingLevel(c) > 0 && hasClass(c, "pmc_sec_title") {
			return c
		}
		if c.DataAtom == atom.Section {
			continue
		}
		if h := ownedHeading(c); h != nil {
			return h
		}
	}
	return nil
}

func writeHeading(f *Fragment, n *html.Node) {
	text := CleanText(nodeText(n))
	if text == "" {
		return
	}
	f.Line(strings.Repeat("#", headingLevel(n)) + " " + text)
	f.Blank()
}

// headingLevel returns 1-4 for h1-h4 and 0 for anything else.
func headingLevel(n *html.Node) int {
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	}
	return 0
}

func isExcludedSection(n *html.Node) bool {
	for _, class := range excludedSections {
		if hasClass(n, class) {
			return true
		}
	}
	return false
}
