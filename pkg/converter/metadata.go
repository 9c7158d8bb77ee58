package converter

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/pmc2md/models"
	"golang.org/x/net/html"
)

// ArticleURLBase is the canonical article location used in the metadata
// block.
const ArticleURLBase = "https://www.ncbi.nlm.nih.gov/pmc/articles/"

var (
	titleSuffixPattern  = regexp.MustCompile(`\s*-\s*PMC\s*$`)
	canonicalPMCPattern = regexp.MustCompile(`PMC(\d+)`)
	pmcidMarkerPattern  = regexp.MustCompile(`PMCID:\s*PMC\d+`)
	pmcidPattern        = regexp.MustCompile(`PMC\d+`)
)

var citationMeta = []struct {
	key  models.MetaKey
	name string
}{
	{models.MetaTitle, "citation_title"},
	{models.MetaJournal, "citation_journal_title"},
	{models.MetaDOI, "citation_doi"},
	{models.MetaPMID, "citation_pmid"},
	{models.MetaPDFURL, "citation_pdf_url"},
	{models.MetaPublicationDate, "citation_publication_date"},
	{models.MetaAbstractURL, "citation_abstract_html_url"},
	{models.MetaFulltextURL, "citation_fulltext_html_url"},
}

// ExtractMetadata reads the citation_* descriptors of doc. It never fails;
// anything not found is simply absent from the result.
func ExtractMetadata(doc *goquery.Document) models.Metadata {
	values := make(map[models.MetaKey]string, len(citationMeta)+1)
	for _, m := range citationMeta {
		content, _ := doc.Find(`meta[name="` + m.name + `"]`).First().Attr("content")
		values[m.key] = CleanText(content)
	}

	var authors []string
	doc.Find(`meta[name="citation_author"]`).Each(func(_ int, s *goquery.Selection) {
		if name := CleanText(s.AttrOr("content", "")); name != "" {
			authors = append(authors, name)
		}
	})

	if values[models.MetaTitle] == "" {
		title := CleanText(doc.Find("title").First().Text())
		values[models.MetaTitle] = titleSuffixPattern.ReplaceAllString(title, "")
	}

	values[models.MetaPMCID] = ExtractPMCID(doc)
	return models.NewMetadata(values, authors)
}

// ExtractPMCID derives the article's PMC identifier from the canonical link,
// else from a visible "PMCID: PMCnnn" marker. It returns "" when neither is
// present.
func ExtractPMCID(doc *goquery.Document) string {
	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
		if m := canonicalPMCPattern.FindStringSubmatch(href); m != nil {
			return "PMC" + m[1]
		}
	}

	var id string
	eachDescendant(doc.Selection, func(s *goquery.Selection) {
		n := s.Get(0)
		if id != "" || n.Type != html.TextNode {
			return
		}
		if marker := pmcidMarkerPattern.FindString(n.Data); marker != "" {
			id = pmcidPattern.FindString(marker)
		}
	})
	return id
}

// FormatMetadata renders the title heading and the "## Metadata" block.
// Lines are emitted only for values that exist.
func FormatMetadata(meta models.Metadata) string {
	var f Fragment

	if title, ok := meta.Get(models.MetaTitle); ok {
		f.Line("# " + title)
		f.Blank()
	}

	f.Line("## Metadata")
	if authors := meta.Authors(); len(authors) > 0 {
		f.Line("**Authors:** " + strings.Join(authors, ", "))
	}
	if v, ok := meta.Get(models.MetaJournal); ok {
		f.Line("**Journal:** " + v)
	}
	if v, ok := meta.Get(models.MetaPublicationDate); ok {
		f.Line("**Date:** " + v)
	}
	if v, ok := meta.Get(models.MetaDOI); ok {
		f.Line("**DOI:** [" + v + "](https://doi.org/" + v + ")")
	}
	if v, ok := meta.Get(models.MetaPMID); ok {
		f.Line("**PMID:** " + v)
	}
	if v, ok := meta.Get(models.MetaPMCID); ok {
		f.Line("**PMCID:** " + v)
		f.Line("**URL:** " + ArticleURLBase + v + "/")
	}
	if v, ok := meta.Get(models.MetaPDFURL); ok {
		f.Line("**PDF:** [" + v + "](" + v + ")")
	}
	return f.String()
}
