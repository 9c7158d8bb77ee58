// Package records keeps the table of stored markdown files and the
// identifiers found in each.
package records

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"

	"github.com/dtnitsch/pmc2md/internal/common"
	"github.com/dtnitsch/pmc2md/models"
	"github.com/dtnitsch/pmc2md/pkg/converter"
	"github.com/dtnitsch/pmc2md/pkg/storage"
)

var (
	pmcidPattern = regexp.MustCompile(`\*\*PMCID:\*\*\s*([^\n]+)`)
	pmidPattern  = regexp.MustCompile(`\*\*PMID:\*\*\s*([^\n]+)`)
	urlPattern   = regexp.MustCompile(`\*\*URL:\*\*\s*([^\n]+)`)

	// Abstract-only documents carry a plain "PMID: n" line
	plainPMIDPattern = regexp.MustCompile(`(?m)^PMID:\s*(\S+)`)
	titlePattern     = regexp.MustCompile(`(?m)^#\s+(.+)$`)
)

// languageSample bounds how much text is handed to the language detector.
const languageSample = 4000

// Store persists records. *db.DB satisfies it.
type Store interface {
	ReplaceRecords(records []models.Record, hashes map[string]string) error
}

// ParseMarkdown extracts the PMID, PMCID, URL and title lines from a
// converted document. MarkdownPath is left empty.
func ParseMarkdown(markdown string) models.Record {
	var r models.Record
	if m := pmcidPattern.FindStringSubmatch(markdown); m != nil {
		r.PMCID = strings.TrimSpace(m[1])
	}
	if m := pmidPattern.FindStringSubmatch(markdown); m != nil {
		r.PMID = strings.TrimSpace(m[1])
	} else if m := plainPMIDPattern.FindStringSubmatch(markdown); m != nil {
		r.PMID = strings.TrimSpace(m[1])
	}
	if m := urlPattern.FindStringSubmatch(markdown); m != nil {
		r.URL = strings.TrimSpace(m[1])
	}
	if m := titlePattern.FindStringSubmatch(markdown); m != nil {
		r.Title = strings.TrimSpace(m[1])
	}
	return r
}

// Builder scans the markdown directory and rebuilds the records table.
type Builder struct {
	Storage  *storage.Storage
	Store    Store
	Detector lingua.LanguageDetector
	Logger   *slog.Logger
}

// NewDetector returns a language detector for the languages PubMed Central
// articles are commonly written in.
func NewDetector() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.German,
			lingua.French,
			lingua.Spanish,
			lingua.Portuguese,
			lingua.Italian,
			lingua.Chinese,
			lingua.Japanese,
		).
		Build()
}

// DetectLanguage returns the ISO 639-1 code of text, or "" when unsure.
func DetectLanguage(detector lingua.LanguageDetector, text string) string {
	if detector == nil || strings.TrimSpace(text) == "" {
		return ""
	}
	if runes := []rune(text); len(runes) > languageSample {
		text = string(runes[:languageSample])
	}
	lang, ok := detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}

// Build parses every stored markdown file, enriches it from the stored page
// when one exists, logs records with missing identifiers and replaces the
// stored table. Records are returned sorted by path.
func (b *Builder) Build(ctx context.Context) ([]models.Record, error) {
	stems, err := b.Storage.MarkdownIDs()
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(stems))
	hashes := make(map[string]string, len(stems))
	for _, stem := range stems {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := b.Storage.MarkdownPath(stem)
		data, err := b.Storage.ReadFile(path)
		if err != nil {
			b.logger().Warn("skipping unreadable markdown", "path", path, "error", err)
			continue
		}

		r := ParseMarkdown(string(data))
		r.MarkdownPath = path
		r.Language = DetectLanguage(b.Detector, string(data))
		b.enrich(&r)

		records = append(records, r)
		hashes[path] = common.ContentHash(data)
	}

	b.validate(records)

	if b.Store != nil {
		if err := b.Store.ReplaceRecords(records, hashes); err != nil {
			return nil, fmt.Errorf("failed to store records: %w", err)
		}
	}
	b.logger().Info("finished processing records", "count", len(records))
	return records, nil
}

// enrich fills Excerpt and SiteName from the stored article page.
func (b *Builder) enrich(r *models.Record) {
	if r.PMCID == "" {
		return
	}
	htmlPath := b.Storage.HTMLPath(r.PMCID)
	if !b.Storage.HasFile(htmlPath) {
		return
	}
	html, err := b.Storage.ReadFile(htmlPath)
	if err != nil {
		return
	}

	rawURL := r.URL
	if rawURL == "" {
		rawURL = converter.ArticleURLBase + r.PMCID + "/"
	}
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return
	}

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(string(html)), pageURL)
	if err != nil {
		b.logger().Debug("readability failed", "pmcid", r.PMCID, "error", err)
		return
	}
	r.Excerpt = converter.CleanText(article.Excerpt)
	r.SiteName = converter.CleanText(article.SiteName)
	if r.Title == "" {
		r.Title = converter.CleanText(article.Title)
	}
}

// validate logs every record missing pmid, pmcid or url.
func (b *Builder) validate(records []models.Record) int {
	missing := 0
	for _, r := range records {
		fields := r.MissingFields()
		if len(fields) == 0 {
			continue
		}
		missing++
		b.logger().Warn("record is missing fields", "path", r.MarkdownPath, "missing", strings.Join(fields, ", "))
	}
	if missing > 0 {
		b.logger().Warn("found records with missing fields", "count", missing)
	}
	return missing
}
