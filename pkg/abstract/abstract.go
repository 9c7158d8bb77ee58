// Package abstract builds an abstract-only markdown document for PubMed
// articles that have no PubMed Central copy.
package abstract

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dtnitsch/pmc2md/pkg/fetcher"
)

// ErrNoArticle is returned when efetch answers without a PubmedArticle.
var ErrNoArticle = errors.New("no article in efetch response")

// NotOpenAccessNote marks abstract-only documents.
const NotOpenAccessNote = "**Note: This article is not available on PubMed Central (Open Access). Only the abstract is included below.**"

type articleSet struct {
	Articles []article `xml:"PubmedArticle"`
}

type article struct {
	Title    innerText      `xml:"MedlineCitation>Article>ArticleTitle"`
	Authors  []author       `xml:"MedlineCitation>Article>AuthorList>Author"`
	Abstract []abstractText `xml:"MedlineCitation>Article>Abstract>AbstractText"`
	Journal  string         `xml:"MedlineCitation>Article>Journal>Title"`
	Year     string         `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>Year"`
	IDs      []articleID    `xml:"PubmedData>ArticleIdList>ArticleId"`
}

type author struct {
	LastName string `xml:"LastName"`
	ForeName string `xml:"ForeName"`
}

type abstractText struct {
	Label string `xml:"Label,attr"`
	innerText
}

type articleID struct {
	Type  string `xml:"IdType,attr"`
	Value string `xml:",chardata"`
}

// innerText keeps the raw content of an element so inline markup such as
// <i> or <sup> can be flattened to its text.
type innerText struct {
	XML string `xml:",innerxml"`
}

// Text returns the concatenated character data of the element, trimmed.
func (t innerText) Text() string {
	dec := xml.NewDecoder(strings.NewReader(t.XML))
	dec.Strict = false
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		if cd, ok := tok.(xml.CharData); ok {
			b.Write(cd)
		}
	}
	return strings.TrimSpace(b.String())
}

// Summary holds the fields rendered into an abstract-only document.
type Summary struct {
	PMID     string
	Title    string
	Authors  []string
	Journal  string
	Year     string
	DOI      string
	Sections []Section
}

// Section is one abstract paragraph with an optional label such as "METHODS".
type Section struct {
	Label string
	Text  string
}

// Parse reads an efetch PubMed XML response.
func Parse(pmid string, r io.Reader) (*Summary, error) {
	var set articleSet
	dec := xml.NewDecoder(r)
	dec.Strict = false
	if err := dec.Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to parse efetch XML for %s: %w", pmid, err)
	}
	if len(set.Articles) == 0 {
		return nil, fmt.Errorf("pmid %s: %w", pmid, ErrNoArticle)
	}

	a := set.Articles[0]
	s := &Summary{
		PMID:    pmid,
		Title:   a.Title.Text(),
		Journal: strings.TrimSpace(a.Journal),
		Year:    strings.TrimSpace(a.Year),
	}
	if s.Title == "" {
		s.Title = "Unknown Title"
	}

	for _, au := range a.Authors {
		last := strings.TrimSpace(au.LastName)
		if last == "" {
			continue
		}
		s.Authors = append(s.Authors, strings.TrimSpace(strings.TrimSpace(au.ForeName)+" "+last))
	}

	for _, at := range a.Abstract {
		text := at.Text()
		if text == "" {
			continue
		}
		s.Sections = append(s.Sections, Section{Label: strings.TrimSpace(at.Label), Text: text})
	}

	for _, id := range a.IDs {
		if id.Type == "doi" && strings.TrimSpace(id.Value) != "" {
			s.DOI = strings.TrimSpace(id.Value)
			break
		}
	}

	return s, nil
}

// Markdown renders the summary as an abstract-only document.
func (s *Summary) Markdown() string {
	var lines []string
	lines = append(lines, "# "+s.Title, "")
	if len(s.Authors) > 0 {
		lines = append(lines, strings.Join(s.Authors, ", "), "")
	}
	if s.Journal != "" || s.Year != "" {
		lines = append(lines, strings.TrimSpace(fmt.Sprintf("*%s* (%s)", s.Journal, s.Year)), "")
	}
	lines = append(lines, "PMID: "+s.PMID)
	if s.DOI != "" {
		lines = append(lines, "DOI: "+s.DOI)
	}
	lines = append(lines, "", "---", "", NotOpenAccessNote, "", "## Abstract", "")

	if len(s.Sections) == 0 {
		lines = append(lines, "No abstract available.")
	} else {
		parts := make([]string, 0, len(s.Sections))
		for _, sec := range s.Sections {
			if sec.Label != "" {
				parts = append(parts, fmt.Sprintf("**%s:** %s", sec.Label, sec.Text))
				continue
			}
			parts = append(parts, sec.Text)
		}
		lines = append(lines, strings.Join(parts, "\n\n"))
	}
	lines = append(lines, "")

	return strings.Join(lines, "\n")
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	URL        string
	Email      string
	Tool       string
	Timeout    time.Duration
	MaxRetries int
	Logger     *slog.Logger
}

type Client struct {
	client *http.Client
	opts   Options
	logger *slog.Logger
}

func New(opts Options) *Client {
	if opts.URL == "" {
		opts.URL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
		logger: opts.Logger,
	}
}

// Fetch retrieves the PubMed record for pmid.
func (c *Client) Fetch(ctx context.Context, pmid string) (*Summary, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", pmid)
	params.Set("rettype", "xml")
	params.Set("retmode", "xml")
	if c.opts.Tool != "" {
		params.Set("tool", c.opts.Tool)
	}
	if c.opts.Email != "" {
		params.Set("email", c.opts.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.URL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := fetcher.DoWithRetry(ctx, c.client, req, c.opts.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("efetch request for %s: %w", pmid, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("efetch returned status %d for %s", resp.StatusCode, pmid)
	}

	return Parse(pmid, resp.Body)
}

// Markdown fetches pmid and renders its abstract-only document.
func (c *Client) Markdown(ctx context.Context, pmid string) (string, error) {
	s, err := c.Fetch(ctx, pmid)
	if err != nil {
		c.logger.Error("abstract fetch failed", "pmid", pmid, "error", err)
		return "", err
	}
	return s.Markdown(), nil
}
