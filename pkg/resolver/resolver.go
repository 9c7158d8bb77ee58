// Package resolver maps PubMed identifiers to PubMed Central identifiers
// through the NCBI ID converter, with a persistent cache.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dtnitsch/pmc2md/pkg/db"
	"github.com/dtnitsch/pmc2md/pkg/fetcher"
)

// IDCache persists resolution results. *db.DB satisfies it.
type IDCache interface {
	GetCachedIDs(ids []string, maxAge time.Duration) (map[string]db.CachedID, error)
	PutCachedIDs(entries map[string]string, at time.Time) error
}

// Options configures a Resolver. Zero values fall back to defaults.
type Options struct {
	URL         string
	Email       string
	Tool        string
	BatchSize   int
	Delay       time.Duration
	CacheExpiry time.Duration
	Timeout     time.Duration
	MaxRetries  int
	Logger      *slog.Logger
}

type Resolver struct {
	client *http.Client
	cache  IDCache
	opts   Options
	logger *slog.Logger
}

// New creates a Resolver. cache may be nil to disable caching.
func New(cache IDCache, opts Options) *Resolver {
	if opts.URL == "" {
		opts.URL = "https://www.ncbi.nlm.nih.gov/pmc/utils/idconv/v1.0/"
	}
	if opts.Tool == "" {
		opts.Tool = "pmc2md"
	}
	if opts.BatchSize <= 0 || opts.BatchSize > 200 {
		opts.BatchSize = 200
	}
	if opts.CacheExpiry <= 0 {
		opts.CacheExpiry = 30 * 24 * time.Hour
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Email == "" {
		opts.Logger.Warn("no email provided, set NCBI_EMAIL to identify requests to NCBI")
	}
	return &Resolver{
		client: &http.Client{Timeout: opts.Timeout},
		cache:  cache,
		opts:   opts,
		logger: opts.Logger,
	}
}

type idconvResponse struct {
	Status  string         `json:"status"`
	Records []idconvRecord `json:"records"`
}

type idconvRecord struct {
	PMID  json.Number `json:"pmid"`
	PMCID string      `json:"pmcid"`
}

// Resolve returns a map holding every requested (trimmed) id. An empty value
// means the article has no PMC copy or could not be resolved. Failed batches
// are logged and cached as absent; only cache errors are returned.
func (r *Resolver) Resolve(ctx context.Context, ids []string) (map[string]string, error) {
	results := make(map[string]string, len(ids))
	pending := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		pending = append(pending, id)
	}

	cachedCount := 0
	if r.cache != nil && len(pending) > 0 {
		cached, err := r.cache.GetCachedIDs(pending, r.opts.CacheExpiry)
		if err != nil {
			return nil, fmt.Errorf("failed to read id cache: %w", err)
		}
		toFetch := pending[:0:0]
		for _, id := range pending {
			if entry, ok := cached[id]; ok {
				results[id] = strings.TrimSpace(entry.PMCID)
				cachedCount++
				continue
			}
			toFetch = append(toFetch, id)
		}
		pending = toFetch
		if cachedCount > 0 {
			r.logger.Info("found cached ids", "cached", cachedCount, "to_fetch", len(pending))
		}
	}

	for start := 0; start < len(pending); start += r.opts.BatchSize {
		if start > 0 && r.opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.opts.Delay):
			}
		}

		end := min(start+r.opts.BatchSize, len(pending))
		batch := pending[start:end]

		resolved, err := r.fetchBatch(ctx, batch)
		if err != nil {
			r.logger.Error("id conversion batch failed", "start", start, "size", len(batch), "error", err)
			resolved = make(map[string]string, len(batch))
			for _, id := range batch {
				resolved[id] = ""
			}
		}

		for id, pmcid := range resolved {
			results[id] = pmcid
		}
		if r.cache != nil {
			if err := r.cache.PutCachedIDs(resolved, time.Now()); err != nil {
				return nil, fmt.Errorf("failed to write id cache: %w", err)
			}
		}
	}

	valid := 0
	for _, pmcid := range results {
		if pmcid != "" {
			valid++
		}
	}
	r.logger.Info("resolved ids",
		"total", len(results),
		"valid", valid,
		"missing", len(results)-valid,
		"from_cache", cachedCount,
		"from_api", len(pending),
	)

	return results, nil
}

// fetchBatch queries the converter for one batch. Ids missing from the
// response map to "".
func (r *Resolver) fetchBatch(ctx context.Context, batch []string) (map[string]string, error) {
	params := url.Values{}
	params.Set("tool", r.opts.Tool)
	params.Set("email", r.opts.Email)
	params.Set("ids", strings.Join(batch, ","))
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.opts.URL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := fetcher.DoWithRetry(ctx, r.client, req, r.opts.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("id converter request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("id converter returned status %d", resp.StatusCode)
	}

	var payload idconvResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode id converter response: %w", err)
	}

	resolved := make(map[string]string, len(batch))
	for _, id := range batch {
		resolved[id] = ""
	}
	for _, rec := range payload.Records {
		pmid := strings.TrimSpace(rec.PMID.String())
		if pmid == "" {
			continue
		}
		resolved[pmid] = strings.TrimSpace(rec.PMCID)
	}
	return resolved, nil
}

// SaveResults writes results to dir as pmcid_from_pmid_results_<timestamp>.json
// and returns the file path.
func SaveResults(dir string, results map[string]string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	out := make(map[string]*string, len(results))
	for id, pmcid := range results {
		if pmcid == "" {
			out[id] = nil
			continue
		}
		v := pmcid
		out[id] = &v
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode results: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("pmcid_from_pmid_results_%s.json", now.Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write results: %w", err)
	}
	return path, nil
}
