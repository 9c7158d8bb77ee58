package converter

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/atom"
)

// renderAbstract renders section.abstract. Structured abstracts (with
// h3/h4.pmc_sec_title markers) are walked over all descendants so that
// paragraphs nested under each label are kept; plain abstracts use direct
// paragraphs only.
func (c *conversion) renderAbstract() string {
	abs := c.doc.Find("section.abstract").First()
	if abs.Length() == 0 {
		return ""
	}

	var f Fragment
	f.Line("## Abstract")
	f.Blank()

	if abs.Find("h3.pmc_sec_title, h4.pmc_sec_title").Length() > 0 {
		writeStructuredAbstract(abs, &f)
	} else {
		writePlainAbstract(abs, &f)
	}
	return f.String()
}

func writeStructuredAbstract(abs *goquery.Selection, f *Fragment) {
	label := ""
	eachDescendant(abs, func(s *goquery.Selection) {
		if !isElement(s, "") {
			return
		}
		n := s.Get(0)
		switch {
		case (n.DataAtom == atom.H3 || n.DataAtom == atom.H4) && hasClass(n, "pmc_sec_title"):
			label = strings.TrimSpace(strings.TrimRight(CleanText(s.Text()), ":"))
			if label != "" {
				f.Line("**" + label + ":** ")
			}
		case n.DataAtom == atom.P && label != "":
			if text := CleanText(s.Text()); text != "" {
				f.Line(text)
				f.Blank()
			}
		}
	})
}

// writePlainAbstract emits the direct paragraphs of abs. Untitled
// sub-containers are walked the same way.
func writePlainAbstract(abs *goquery.Selection, f *Fragment) {
	eachChild(abs, func(s *goquery.Selection) {
		switch {
		case isElement(s, "p"):
			if text := CleanText(s.Text()); text != "" {
				f.Line(text)
				f.Blank()
			}
		case isElement(s, "section"), isElement(s, "div"):
			writePlainAbstract(s, f)
		}
	})
}
