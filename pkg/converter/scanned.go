package converter

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const scannedNote = "*Note: This is a scanned document with limited structured text. Full content available in PDF.*"

// renderScanned renders a legacy page-image document: the advisory note,
// the abstract when there is one, then one image per scanned page.
func (c *conversion) renderScanned() string {
	var f Fragment
	f.Line(scannedNote)
	f.Blank()

	f.Block(c.renderAbstract())

	pages := c.doc.Find("section.scanned-pages").First()
	if pages.Length() == 0 {
		return f.String()
	}

	f.Line("## Full Text (Scanned Pages)")
	f.Blank()
	pages.Find("figure.fig-scanned").Each(func(i int, fig *goquery.Selection) {
		page := i + 1
		img := fig.Find("img[src]").First()
		if img.Length() == 0 {
			return
		}
		src, _ := img.Attr("src")
		if src = strings.TrimSpace(src); src == "" {
			return
		}
		f.Line(fmt.Sprintf("### Page %d", page))
		f.Line(fmt.Sprintf("![%s](%s)", altText(img, fmt.Sprintf("Page %d", page)), normalizeImageURL(src, c.baseURL)))
		f.Blank()
	})
	return f.String()
}
