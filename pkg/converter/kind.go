package converter

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// nodeKind is the closed set of block-level node kinds the section walker
// dispatches on.
type nodeKind int

const (
	kindUnknown      nodeKind = iota // wrapper: children are dispatched in its place
	kindParagraph                    // <p>
	kindTableWrapper                 // section.tw / div.tw
	kindFigure                       // section.fig / section.figure
	kindSection                      // any other <section>
	kindTable                        // bare <table>
	kindRawFigure                    // bare <figure>
	kindHeading                      // h1-h4.pmc_sec_title not owned by the container
	kindList                         // <ul> / <ol>
	kindInline                       // inline element directly inside a container
	kindText                         // non-blank text directly inside a container
	kindIgnored                      // blank text, comments and non-content elements
)

func (k nodeKind) String() string {
	switch k {
	case kindParagraph:
		return "paragraph"
	case kindTableWrapper:
		return "table-wrapper"
	case kindFigure:
		return "figure"
	case kindSection:
		return "nested-section"
	case kindTable:
		return "raw-table"
	case kindRawFigure:
		return "raw-figure"
	case kindHeading:
		return "heading"
	case kindList:
		return "list"
	case kindInline:
		return "inline"
	case kindText:
		return "text"
	case kindIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// classifyNode maps one child node to its block kind.
func classifyNode(s *goquery.Selection) nodeKind {
	if s.Length() == 0 {
		return kindIgnored
	}
	return kindOf(s.Get(0))
}

func kindOf(n *html.Node) nodeKind {
	if n.Type == html.TextNode {
		if strings.TrimSpace(n.Data) != "" {
			return kindText
		}
		return kindIgnored
	}
	if n.Type != html.ElementNode {
		return kindIgnored
	}

	switch n.DataAtom {
	case atom.P:
		return kindParagraph
	case atom.Section, atom.Div:
		if hasClass(n, "tw") {
			return kindTableWrapper
		}
		if hasClass(n, "fig") || hasClass(n, "figure") {
			return kindFigure
		}
		if n.DataAtom == atom.Section {
			return kindSection
		}
		return kindUnknown
	case atom.Table:
		return kindTable
	case atom.Figure:
		return kindRawFigure
	case atom.Ul, atom.Ol:
		return kindList
	case atom.A, atom.Em, atom.I, atom.Strong, atom.B, atom.Sub, atom.Sup,
		atom.Span, atom.Br, atom.Code, atom.Small, atom.Abbr, atom.Cite, atom.Mark, atom.U, atom.S:
		return kindInline
	case atom.H1, atom.H2, atom.H3, atom.H4:
		if hasClass(n, "pmc_sec_title") {
			return kindHeading
		}
		return kindUnknown
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Nav,
		atom.Button, atom.Form, atom.Header, atom.Footer, atom.Aside:
		return kindIgnored
	default:
		return kindUnknown
	}
}

// isBlock reports whether k renders as a block of its own.
func (k nodeKind) isBlock() bool {
	switch k {
	case kindParagraph, kindTableWrapper, kindFigure, kindSection, kindTable,
		kindRawFigure, kindHeading, kindList:
		return true
	}
	return false
}

// hasBlockContent reports whether any element below n is a block kind.
func hasBlockContent(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		k := kindOf(c)
		if k == kindIgnored {
			continue
		}
		if k.isBlock() || hasBlockContent(c) {
			return true
		}
	}
	return false
}
