package downloader

import (
	"context"
	"regexp"
	"strings"

	"github.com/dtnitsch/pmc2md/pkg/db"
	"github.com/dtnitsch/pmc2md/pkg/supplement"
)

// biocHeading matches the per-file headings written by supplement.Format.
// An article body may carry its own "Supplementary Materials" section, so the
// header alone does not prove supplements were appended.
var biocHeading = regexp.MustCompile(`(?m)^###\s+.*\.pdf\s*$`)

// HasFetchedSupplements reports whether content already holds an appended
// supplementary section.
func HasFetchedSupplements(content string) bool {
	return strings.Contains(content, supplement.Header) && biocHeading.MatchString(content)
}

// AddSupplementsToExisting appends supplementary material to stored markdown
// files. Files that already carry fetched supplements are skipped unless
// overwrite is set, in which case everything from the first supplementary
// header onward is replaced.
func (d *Downloader) AddSupplementsToExisting(ctx context.Context, overwrite bool) (added, skipped int, err error) {
	stems, err := d.Storage.MarkdownIDs()
	if err != nil {
		return 0, 0, err
	}
	if len(stems) == 0 {
		d.logger().Info("no markdown files found", "dir", d.Storage.MarkdownDir())
		return 0, 0, nil
	}

	var pmcids []string
	for _, stem := range stems {
		if strings.HasPrefix(stem, "PMC") {
			pmcids = append(pmcids, stem)
		}
	}

	d.logger().Info("prefetching supplements", "count", len(pmcids))
	if _, err := d.Supplements.Prefetch(ctx, pmcids); err != nil {
		return 0, 0, err
	}

	var results []db.RunResult
	for _, pmcid := range pmcids {
		if err := ctx.Err(); err != nil {
			return added, skipped, err
		}

		path := d.Storage.MarkdownPath(pmcid)
		res := db.RunResult{ArticleID: pmcid, IDType: "pmcid", PMCID: pmcid, MarkdownPath: path}

		data, err := d.Storage.ReadFile(path)
		if err != nil {
			res.Status = db.StatusFailed
			res.ErrorMessage = err.Error()
			results = append(results, res)
			continue
		}
		content := string(data)

		if HasFetchedSupplements(content) && !overwrite {
			skipped++
			res.Status = db.StatusSkipped
			results = append(results, res)
			continue
		}

		section, found, err := d.Supplements.Markdown(ctx, pmcid)
		if err != nil || !found {
			continue
		}

		switch {
		case overwrite && strings.Contains(content, supplement.Header):
			content = content[:strings.Index(content, supplement.Header)]
		case strings.HasSuffix(strings.TrimRight(content, "\n"), supplement.Stub):
			content = strings.TrimSuffix(strings.TrimRight(content, "\n"), supplement.Stub)
		}

		if err := d.Storage.SaveFile(path, []byte(AppendSupplement(content, section))); err != nil {
			res.Status = db.StatusFailed
			res.ErrorMessage = err.Error()
			results = append(results, res)
			continue
		}
		added++
		res.Status = db.StatusConverted
		results = append(results, res)
	}

	d.logger().Info("supplements added", "added", added, "skipped", skipped)
	d.record(db.RunSupplements, &Report{Results: results})
	return added, skipped, nil
}

// IDCacheClearer empties the identifier cache. *db.DB satisfies it.
type IDCacheClearer interface {
	ClearIDCache() (int64, error)
}

// SupplementCacheClearer empties the supplement cache. *caching.Cache satisfies it.
type SupplementCacheClearer interface {
	Clear() (int, error)
}

// ClearCaches removes the identifier and supplement caches. Either may be nil.
func (d *Downloader) ClearCaches(ids IDCacheClearer, supplements SupplementCacheClearer) error {
	if ids != nil {
		n, err := ids.ClearIDCache()
		if err != nil {
			return err
		}
		d.logger().Info("cleared identifier cache", "entries", n)
	}
	if supplements != nil {
		n, err := supplements.Clear()
		if err != nil {
			return err
		}
		d.logger().Info("cleared supplement cache", "entries", n)
	}
	d.logger().Info("all caches cleared")
	return nil
}
