// Package downloader runs the article pipeline: resolve identifiers, fetch
// pages, convert them to markdown and attach supplementary material.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dtnitsch/pmc2md/models"
	"github.com/dtnitsch/pmc2md/pkg/converter"
	"github.com/dtnitsch/pmc2md/pkg/db"
	"github.com/dtnitsch/pmc2md/pkg/gate"
	"github.com/dtnitsch/pmc2md/pkg/storage"
	"github.com/dtnitsch/pmc2md/pkg/supplement"
)

// ErrNoPMCID is reported for PMIDs without a PubMed Central copy when no
// abstract fallback is requested.
var ErrNoPMCID = errors.New("no PMCID found for this PMID, the article may not be available in PubMed Central")

// ArticleFetcher downloads article pages. *fetcher.Fetcher satisfies it.
type ArticleFetcher interface {
	FetchArticle(ctx context.Context, pmcid string) (string, error)
}

// IDResolver maps PMIDs to PMCIDs. *resolver.Resolver satisfies it.
type IDResolver interface {
	Resolve(ctx context.Context, ids []string) (map[string]string, error)
}

// SupplementSource provides supplementary sections. *supplement.Client satisfies it.
type SupplementSource interface {
	Markdown(ctx context.Context, pmcid string) (string, bool, error)
	Prefetch(ctx context.Context, pmcids []string) (map[string]bool, error)
}

// AbstractSource renders abstract-only documents. *abstract.Client satisfies it.
type AbstractSource interface {
	Markdown(ctx context.Context, pmid string) (string, error)
}

// RunStore records batch outcomes. *db.DB satisfies it.
type RunStore interface {
	CreateRun(kind string, idCount int) (int64, error)
	InsertRunResult(runID int64, r db.RunResult) error
	UpdateRunStats(runID int64, successCount, failedCount int) error
}

// ConvertOptions controls a single conversion.
type ConvertOptions struct {
	// Supplements appends the supplementary section when material exists.
	Supplements bool
	// Stub appends the "No supplementary materials found." section when
	// Supplements is set and nothing was found.
	Stub bool
	// AbstractFallback renders an abstract-only document for PMIDs without PMCID.
	AbstractFallback bool
}

// FileOptions is what the batch commands use.
var FileOptions = ConvertOptions{Supplements: true, Stub: true, AbstractFallback: true}

// Downloader wires the collaborators together. Fields left nil disable the
// steps that need them.
type Downloader struct {
	Converter   *converter.Converter
	Fetcher     ArticleFetcher
	Resolver    IDResolver
	Supplements SupplementSource
	Abstracts   AbstractSource
	Storage     *storage.Storage
	Runs        RunStore
	Gate        *gate.Gate
	Workers     int
	Logger      *slog.Logger

	// SkipSupplements leaves supplementary sections out of batch output.
	SkipSupplements bool
}

func (d *Downloader) fileOptions() ConvertOptions {
	opts := FileOptions
	if d.SkipSupplements {
		opts.Supplements = false
		opts.Stub = false
	}
	return opts
}

func (d *Downloader) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d *Downloader) conv() *converter.Converter {
	if d.Converter == nil {
		return converter.New()
	}
	return d.Converter
}

// guard runs fn while holding a gate slot, when a gate is configured.
func (d *Downloader) guard(ctx context.Context, fn func() error) error {
	if d.Gate == nil {
		return fn()
	}
	return d.Gate.Do(ctx, fn)
}

// AppendSupplement appends section to markdown, or the stub when section is
// empty. The result ends with exactly one newline.
func AppendSupplement(markdown, section string) string {
	if section == "" {
		section = supplement.Stub
	}
	return strings.TrimRight(markdown, " \t\r\n") + "\n\n" + strings.TrimRight(section, " \t\r\n") + "\n"
}

// attachSupplement adds the supplementary section for pmcid according to opts.
func (d *Downloader) attachSupplement(ctx context.Context, pmcid, markdown string, opts ConvertOptions) (string, bool) {
	if !opts.Supplements || d.Supplements == nil {
		return markdown, false
	}

	var section string
	var found bool
	err := d.guard(ctx, func() error {
		var err error
		section, found, err = d.Supplements.Markdown(ctx, pmcid)
		return err
	})
	if err != nil {
		d.logger().Warn("supplement lookup failed", "pmcid", pmcid, "error", err)
	}

	if found {
		return AppendSupplement(markdown, section), true
	}
	if opts.Stub {
		return AppendSupplement(markdown, ""), false
	}
	return markdown, false
}

// convertHTML renders html and attaches supplements.
func (d *Downloader) convertHTML(ctx context.Context, pmcid, html string, opts ConvertOptions) (string, bool, error) {
	markdown, err := d.conv().Convert(html)
	if err != nil {
		return "", false, fmt.Errorf("HTML to markdown conversion failed: %w", err)
	}
	markdown, found := d.attachSupplement(ctx, pmcid, markdown, opts)
	return markdown, found, nil
}

// SinglePMCID converts one article by PMCID, skipping identifier resolution.
func (d *Downloader) SinglePMCID(ctx context.Context, pmcid string, opts ConvertOptions) models.ConvertResult {
	result := models.ConvertResult{ID: pmcid, IDType: models.IDTypePMCID, PMCID: pmcid}
	d.fillFromPMCID(ctx, pmcid, opts, &result)
	return result
}

// SinglePMID resolves pmid and converts the article. Without a PMCID the
// abstract-only document is returned when opts.AbstractFallback is set.
func (d *Downloader) SinglePMID(ctx context.Context, pmid string, opts ConvertOptions) models.ConvertResult {
	result := models.ConvertResult{ID: pmid, IDType: models.IDTypePMID}

	var mapping map[string]string
	err := d.guard(ctx, func() error {
		var err error
		mapping, err = d.Resolver.Resolve(ctx, []string{pmid})
		return err
	})
	if err != nil {
		result.Error = fmt.Sprintf("identifier resolution failed: %v", err)
		return result
	}

	pmcid := mapping[strings.TrimSpace(pmid)]
	if pmcid == "" {
		if !opts.AbstractFallback || d.Abstracts == nil {
			result.Error = ErrNoPMCID.Error()
			return result
		}
		d.logger().Warn("PMID not available on PubMed Central, downloading abstract only", "pmid", pmid)
		markdown, err := d.abstractMarkdown(ctx, pmid, opts)
		if err != nil {
			result.Error = fmt.Sprintf("abstract fetch failed: %v", err)
			return result
		}
		result.Markdown = markdown
		result.AbstractOnly = true
		return result
	}

	result.PMCID = pmcid
	d.fillFromPMCID(ctx, pmcid, opts, &result)
	return result
}

func (d *Downloader) fillFromPMCID(ctx context.Context, pmcid string, opts ConvertOptions, result *models.ConvertResult) {
	var html string
	err := d.guard(ctx, func() error {
		var err error
		html, err = d.Fetcher.FetchArticle(ctx, pmcid)
		return err
	})
	if err != nil {
		d.logger().Error("no HTML found", "pmcid", pmcid, "error", err)
		result.Error = "Failed to fetch HTML from PubMed Central."
		return
	}

	markdown, found, err := d.convertHTML(ctx, pmcid, html, opts)
	if err != nil {
		d.logger().Error("conversion failed", "pmcid", pmcid, "error", err)
		result.Error = err.Error()
		return
	}
	result.Markdown = markdown
	result.HasSupplements = found
}

// abstractMarkdown fetches the abstract-only document and appends the stub
// section when supplements are requested.
func (d *Downloader) abstractMarkdown(ctx context.Context, pmid string, opts ConvertOptions) (string, error) {
	var markdown string
	err := d.guard(ctx, func() error {
		var err error
		markdown, err = d.Abstracts.Markdown(ctx, pmid)
		return err
	})
	if err != nil {
		return "", err
	}
	if opts.Supplements && opts.Stub {
		markdown = AppendSupplement(markdown, "")
	}
	return markdown, nil
}
