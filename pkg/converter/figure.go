package converter

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultBaseURL is prefixed to root-relative image paths.
const DefaultBaseURL = "https://pmc.ncbi.nlm.nih.gov"

// renderFigure renders a figure unit: title, image, zoom link and caption.
// Any missing part is skipped.
func (c *conversion) renderFigure(s *goquery.Selection) string {
	var f Fragment

	if title := CleanText(s.Find("h3.obj_head, h4.obj_head").First().Text()); title != "" {
		f.Line("### " + title)
		f.Blank()
	}

	if img := s.Find("img[src]").First(); img.Length() > 0 {
		src, _ := img.Attr("src")
		if src = strings.TrimSpace(src); src != "" {
			f.Line(fmt.Sprintf("![%s](%s)", altText(img, "Figure"), normalizeImageURL(src, c.baseURL)))
			f.Blank()
		}
	}

	if href, _ := s.Find("a.tileshop[href]").First().Attr("href"); strings.TrimSpace(href) != "" {
		f.Line(fmt.Sprintf("[View larger image](%s)", strings.TrimSpace(href)))
		f.Blank()
	}

	if caption := CleanText(s.Find("figcaption").First().Text()); caption != "" {
		f.Line(caption)
		f.Blank()
	}

	return f.String()
}

// altText returns the cleaned alt attribute of img, or fallback when the
// attribute is absent. A present but empty alt stays empty.
func altText(img *goquery.Selection, fallback string) string {
	alt, ok := img.Attr("alt")
	if !ok {
		return fallback
	}
	return CleanText(alt)
}

// normalizeImageURL makes protocol-relative and root-relative image
// sources absolute.
func normalizeImageURL(src, base string) string {
	switch {
	case strings.HasPrefix(src, "//"):
		return "https:" + src
	case strings.HasPrefix(src, "/"):
		if base == "" {
			base = DefaultBaseURL
		}
		return strings.TrimRight(base, "/") + src
	default:
		return src
	}
}
