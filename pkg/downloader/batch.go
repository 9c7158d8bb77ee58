package downloader

import (
	"context"
	"fmt"
	"sync"

	"github.com/dtnitsch/pmc2md/models"
	"github.com/dtnitsch/pmc2md/pkg/db"
)

// Report summarises a batch. Results follow the input order.
type Report struct {
	RunID   int64
	Results []db.RunResult
}

// Count returns how many results have status.
func (r *Report) Count(status string) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Succeeded counts converted and abstract-only results.
func (r *Report) Succeeded() int {
	return r.Count(db.StatusConverted) + r.Count(db.StatusAbstractOnly)
}

type job struct {
	index int
	id    string
}

type jobResult struct {
	index  int
	result db.RunResult
}

// runPool processes ids with a fixed number of workers.
func (d *Downloader) runPool(ctx context.Context, ids []string, fn func(ctx context.Context, id string) db.RunResult) []db.RunResult {
	workers := d.Workers
	if workers <= 0 {
		workers = 3
	}

	var wg sync.WaitGroup
	jobs := make(chan job, len(ids))
	results := make(chan jobResult, len(ids))

	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- jobResult{index: j.index, result: db.RunResult{ArticleID: j.id, Status: db.StatusFailed, ErrorMessage: err.Error()}}
					continue
				}
				results <- jobResult{index: j.index, result: fn(ctx, j.id)}
			}
		}()
	}

	for i, id := range ids {
		jobs <- job{index: i, id: id}
	}
	close(jobs)

	wg.Wait()
	close(results)

	ordered := make([]db.RunResult, len(ids))
	for r := range results {
		ordered[r.index] = r.result
	}
	return ordered
}

// record stores a finished batch when a RunStore is configured.
func (d *Downloader) record(kind string, report *Report) {
	if d.Runs == nil || len(report.Results) == 0 {
		return
	}

	runID, err := d.Runs.CreateRun(kind, len(report.Results))
	if err != nil {
		d.logger().Warn("failed to record run", "error", err)
		return
	}
	report.RunID = runID

	for _, r := range report.Results {
		if err := d.Runs.InsertRunResult(runID, r); err != nil {
			d.logger().Warn("failed to record run result", "id", r.ArticleID, "error", err)
		}
	}
	if err := d.Runs.UpdateRunStats(runID, report.Succeeded(), report.Count(db.StatusFailed)); err != nil {
		d.logger().Warn("failed to update run stats", "error", err)
	}
}

// PMCIDsToHTML downloads pages for pmcids into the html directory, skipping
// ids whose page is already stored.
func (d *Downloader) PMCIDsToHTML(ctx context.Context, pmcids []string) *Report {
	existing := 0
	for _, id := range pmcids {
		if d.Storage.HasFile(d.Storage.HTMLPath(id)) {
			existing++
		}
	}
	d.logger().Info("found existing html files", "count", existing)
	d.logger().Info("converting PMCIDs to HTML", "count", len(pmcids)-existing)

	results := d.runPool(ctx, pmcids, func(ctx context.Context, pmcid string) db.RunResult {
		res := db.RunResult{ArticleID: pmcid, IDType: string(models.IDTypePMCID), PMCID: pmcid}
		path := d.Storage.HTMLPath(pmcid)
		if d.Storage.HasFile(path) {
			res.Status = db.StatusSkipped
			return res
		}

		var html string
		err := d.guard(ctx, func() error {
			var err error
			html, err = d.Fetcher.FetchArticle(ctx, pmcid)
			return err
		})
		if err != nil {
			d.logger().Error("no HTML found", "pmcid", pmcid, "error", err)
			res.Status = db.StatusFailed
			res.ErrorMessage = err.Error()
			return res
		}

		if err := d.Storage.SaveFile(path, []byte(html)); err != nil {
			d.logger().Error("error saving HTML", "pmcid", pmcid, "error", err)
			res.Status = db.StatusFailed
			res.ErrorMessage = err.Error()
			return res
		}
		res.Status = db.StatusConverted
		return res
	})

	return &Report{Results: results}
}

// convertLocal converts stored pages for pmcids to markdown.
func (d *Downloader) convertLocal(ctx context.Context, pmcids []string, overwrite bool) []db.RunResult {
	return d.runPool(ctx, pmcids, func(ctx context.Context, pmcid string) db.RunResult {
		mdPath := d.Storage.MarkdownPath(pmcid)
		res := db.RunResult{ArticleID: pmcid, IDType: string(models.IDTypePMCID), PMCID: pmcid, MarkdownPath: mdPath}

		if !overwrite && d.Storage.HasFile(mdPath) {
			res.Status = db.StatusSkipped
			return res
		}

		html, err := d.Storage.ReadFile(d.Storage.HTMLPath(pmcid))
		if err != nil {
			res.Status = db.StatusFailed
			res.ErrorMessage = err.Error()
			return res
		}

		markdown, _, err := d.convertHTML(ctx, pmcid, string(html), d.fileOptions())
		if err != nil {
			d.logger().Error("conversion failed", "pmcid", pmcid, "error", err)
			res.Status = db.StatusFailed
			res.ErrorMessage = err.Error()
			return res
		}

		if err := d.Storage.SaveFile(mdPath, []byte(markdown)); err != nil {
			res.Status = db.StatusFailed
			res.ErrorMessage = err.Error()
			return res
		}
		res.Status = db.StatusConverted
		return res
	})
}

// LocalHTMLToMarkdown converts every stored page. Existing markdown is kept
// unless overwrite is set.
func (d *Downloader) LocalHTMLToMarkdown(ctx context.Context, overwrite bool) (*Report, error) {
	pmcids, err := d.Storage.HTMLIDs()
	if err != nil {
		return nil, err
	}
	if len(pmcids) == 0 {
		d.logger().Warn("no HTML files found", "dir", d.Storage.HTMLDir())
		return &Report{}, nil
	}

	d.logger().Info("converting HTML files to markdown", "count", len(pmcids), "overwrite", overwrite)
	report := &Report{Results: d.convertLocal(ctx, pmcids, overwrite)}
	d.record(db.RunLocal, report)
	return report, nil
}

// PMCIDsToMarkdown downloads and converts pmcids.
func (d *Downloader) PMCIDsToMarkdown(ctx context.Context, pmcids []string, overwrite bool) *Report {
	fetched := d.PMCIDsToHTML(ctx, pmcids)
	converted := d.convertLocal(ctx, pmcids, overwrite)

	// A failed download leaves no page to convert; keep the fetch error
	for i := range converted {
		if fetched.Results[i].Status == db.StatusFailed {
			converted[i] = fetched.Results[i]
		}
	}

	report := &Report{Results: converted}
	d.record(db.RunPMCIDs, report)
	return report
}

// PMIDsToMarkdown resolves pmids, converts articles that have a PMC copy and
// writes abstract-only documents for the rest. The PMCIDs found are saved to
// pmcids.txt.
func (d *Downloader) PMIDsToMarkdown(ctx context.Context, pmids []string, overwrite bool) (*Report, error) {
	mapping, err := d.Resolver.Resolve(ctx, pmids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve PMIDs: %w", err)
	}

	var withPMCID, pmcids, withoutPMCID []string
	for _, pmid := range pmids {
		if pmcid := mapping[pmid]; pmcid != "" {
			withPMCID = append(withPMCID, pmid)
			pmcids = append(pmcids, pmcid)
			continue
		}
		withoutPMCID = append(withoutPMCID, pmid)
	}
	d.logger().Info("resolved PMIDs", "total", len(pmids), "valid", len(pmcids), "missing", len(withoutPMCID))

	if err := d.Storage.SavePMCIDList(pmcids); err != nil {
		return nil, err
	}

	byPMID := make(map[string]db.RunResult, len(pmids))

	d.logger().Info("converting PMCIDs to markdown (full text)", "count", len(pmcids))
	fetched := d.PMCIDsToHTML(ctx, pmcids)
	converted := d.convertLocal(ctx, pmcids, overwrite)
	for i, pmid := range withPMCID {
		res := converted[i]
		if fetched.Results[i].Status == db.StatusFailed {
			res = fetched.Results[i]
		}
		res.ArticleID = pmid
		res.IDType = string(models.IDTypePMID)
		byPMID[pmid] = res
	}

	if len(withoutPMCID) > 0 {
		d.logger().Info("PMIDs have no PMCID (not open access), fetching abstracts only", "count", len(withoutPMCID))
		abstracts := d.runPool(ctx, withoutPMCID, func(ctx context.Context, pmid string) db.RunResult {
			mdPath := d.Storage.AbstractPath(pmid)
			res := db.RunResult{ArticleID: pmid, IDType: string(models.IDTypePMID), MarkdownPath: mdPath}
			if !overwrite && d.Storage.HasFile(mdPath) {
				res.Status = db.StatusSkipped
				return res
			}
			if d.Abstracts == nil {
				res.Status = db.StatusFailed
				res.ErrorMessage = ErrNoPMCID.Error()
				return res
			}

			markdown, err := d.abstractMarkdown(ctx, pmid, d.fileOptions())
			if err != nil {
				d.logger().Error("failed to fetch abstract", "pmid", pmid, "error", err)
				res.Status = db.StatusFailed
				res.ErrorMessage = err.Error()
				return res
			}
			if err := d.Storage.SaveFile(mdPath, []byte(markdown)); err != nil {
				res.Status = db.StatusFailed
				res.ErrorMessage = err.Error()
				return res
			}
			res.Status = db.StatusAbstractOnly
			return res
		})
		for i, pmid := range withoutPMCID {
			byPMID[pmid] = abstracts[i]
		}
	}

	report := &Report{Results: make([]db.RunResult, 0, len(pmids))}
	for _, pmid := range pmids {
		report.Results = append(report.Results, byPMID[pmid])
	}
	d.record(db.RunPMIDs, report)
	return report, nil
}
