package converter

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/pmc2md/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ExtractReferences reads the bibliography list of a section.ref-list
// container. Entries are numbered by position, starting at 1.
func ExtractReferences(container *goquery.Selection) []models.Reference {
	if container.Length() == 0 {
		return nil
	}
	list := container.Find("ul.ref-list, ol.ref-list").First()
	if list.Length() == 0 {
		list = container.Find("ul, ol").First()
	}

	var refs []models.Reference
	list.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
		ref := models.Reference{Ordinal: i + 1}

		if cite := li.Find("cite").First(); cite.Length() > 0 {
			ref.Citation = CleanText(cite.Text())
		} else {
			ref.Citation = CleanText(textOutsideAnchors(li.Get(0)))
		}

		li.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			href = strings.TrimSpace(href)
			if href == "" {
				return
			}
			text := CleanText(a.Text())
			ref.Links = append(ref.Links, models.ReferenceLink{
				Kind: ClassifyLink(href, text),
				URL:  href,
				Text: text,
			})
		})

		refs = append(refs, ref)
	})
	return refs
}

// ClassifyLink labels a reference link. Rules are tried in order and the
// first match wins: DOI, PMC, PubMed, then other.
func ClassifyLink(href, text string) models.LinkKind {
	h := strings.ToLower(href)
	switch {
	case strings.Contains(h, "doi.org") || strings.EqualFold(text, "DOI"):
		return models.LinkDOI
	case strings.Contains(h, "pmc.ncbi.nlm.nih.gov") || strings.Contains(h, "ncbi.nlm.nih.gov/pmc/") ||
		strings.EqualFold(text, "PMC"):
		return models.LinkPMC
	case strings.Contains(h, "pubmed.ncbi.nlm.nih.gov") || strings.Contains(h, "ncbi.nlm.nih.gov/pubmed") ||
		strings.EqualFold(text, "PubMed"):
		return models.LinkPubMed
	default:
		return models.LinkOther
	}
}

// FormatReferences renders the "## References" block, or "" when refs is
// empty.
func FormatReferences(refs []models.Reference) string {
	if len(refs) == 0 {
		return ""
	}
	var f Fragment
	f.Line("## References")
	f.Blank()
	for _, ref := range refs {
		f.Line(formatReference(ref))
		f.Blank()
	}
	return f.String()
}

func formatReference(ref models.Reference) string {
	parts := []string{fmt.Sprintf("%d.", ref.Ordinal)}
	if ref.Citation != "" {
		parts = append(parts, ref.Citation)
	}
	if len(ref.Links) > 0 {
		links := make([]string, 0, len(ref.Links))
		for _, l := range ref.Links {
			links = append(links, fmt.Sprintf("[%s](%s)", l.Label(), l.URL))
		}
		parts = append(parts, strings.Join(links, " | "))
	}
	return strings.Join(parts, " ")
}

// renderReferences keeps the heading for a present but empty reference list.
func (c *conversion) renderReferences() string {
	list := c.doc.Find("section.ref-list").First()
	if list.Length() == 0 {
		return ""
	}
	refs := ExtractReferences(list)
	if len(refs) == 0 {
		return "## References"
	}
	return FormatReferences(refs)
}

// textOutsideAnchors concatenates the text below n, skipping anchors.
func textOutsideAnchors(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				sb.WriteString(c.Data)
			case c.Type == html.ElementNode && c.DataAtom != atom.A:
				walk(c)
			}
		}
	}
	walk(n)
	return sb.String()
}
