// Package supplement fetches supplementary material text from the BioC API
// and formats it as a markdown section.
package supplement

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dtnitsch/pmc2md/pkg/caching"
	"github.com/dtnitsch/pmc2md/pkg/fetcher"
)

// Header opens the supplementary section in a markdown file.
const Header = "## Supplementary Materials"

// Stub is appended when an article has no supplementary material.
const Stub = Header + "\n\nNo supplementary materials found."

// minPayload is the smallest response treated as a real BioC document.
const minPayload = 50

// Status is the tri-state outcome of a lookup.
type Status int

const (
	// Unfetched means the lookup failed in transport and nothing was cached.
	Unfetched Status = iota
	Available
	NotAvailable
)

func (s Status) String() string {
	switch s {
	case Available:
		return "available"
	case NotAvailable:
		return "not_available"
	default:
		return "unfetched"
	}
}

// Document is the text of one supplementary file.
type Document struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

// payload is the cached form of a lookup.
type payload struct {
	Documents    []Document `json:"documents,omitempty"`
	NotAvailable bool       `json:"not_available,omitempty"`
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Delay      time.Duration // between prefetch requests
	Logger     *slog.Logger
}

type Client struct {
	client  *http.Client
	cache   *caching.Cache
	baseURL string
	opts    Options
	logger  *slog.Logger
}

// New creates a Client. cache may be nil to disable caching.
func New(cache *caching.Cache, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://www.ncbi.nlm.nih.gov/research/bionlp/RESTful/supplmat.cgi"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		client:  &http.Client{Timeout: opts.Timeout},
		cache:   cache,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		opts:    opts,
		logger:  opts.Logger,
	}
}

// Documents returns the supplementary documents for pmcid and the lookup status.
// A cached result is used when present; a transport failure yields Unfetched
// and an error and is not cached.
func (c *Client) Documents(ctx context.Context, pmcid string) ([]Document, Status, error) {
	if c.cache != nil {
		var cached payload
		if c.cache.GetJSON(pmcid, &cached) {
			if cached.NotAvailable {
				return nil, NotAvailable, nil
			}
			if len(cached.Documents) > 0 {
				return cached.Documents, Available, nil
			}
		}
	}
	return c.fetch(ctx, pmcid)
}

func (c *Client) fetch(ctx context.Context, pmcid string) ([]Document, Status, error) {
	url := fmt.Sprintf("%s/BioC_JSON/%s/All", c.baseURL, pmcid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, Unfetched, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := fetcher.DoWithRetry(ctx, c.client, req, c.opts.MaxRetries)
	if err != nil {
		c.logger.Warn("supplement request failed", "pmcid", pmcid, "error", err)
		return nil, Unfetched, fmt.Errorf("supplement request for %s: %w", pmcid, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("no supplements found", "pmcid", pmcid, "status", resp.StatusCode)
		return nil, c.markNotAvailable(pmcid), nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Unfetched, fmt.Errorf("failed to read supplement response: %w", err)
	}
	if len(body) < minPayload {
		c.logger.Debug("no supplements found", "pmcid", pmcid, "reason", "empty response")
		return nil, c.markNotAvailable(pmcid), nil
	}

	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		// The API answers with HTML when there is nothing to return
		c.logger.Debug("no supplements found", "pmcid", pmcid, "reason", "non-json response")
		return nil, c.markNotAvailable(pmcid), nil
	}

	docs := ExtractDocuments(raw)
	if len(docs) == 0 {
		c.logger.Debug("no supplements found", "pmcid", pmcid, "reason", "no passages")
		return nil, c.markNotAvailable(pmcid), nil
	}

	c.store(pmcid, payload{Documents: docs})
	return docs, Available, nil
}

func (c *Client) markNotAvailable(pmcid string) Status {
	c.store(pmcid, payload{NotAvailable: true})
	return NotAvailable
}

func (c *Client) store(pmcid string, p payload) {
	if c.cache == nil {
		return
	}
	if err := c.cache.SetJSON(pmcid, p); err != nil {
		c.logger.Warn("failed to cache supplement", "pmcid", pmcid, "error", err)
	}
}

// Markdown returns the formatted supplementary section for pmcid and whether
// any material was found.
func (c *Client) Markdown(ctx context.Context, pmcid string) (string, bool, error) {
	docs, status, err := c.Documents(ctx, pmcid)
	if err != nil {
		return "", false, err
	}
	if status != Available {
		return "", false, nil
	}
	return Format(docs), true, nil
}

// Text returns every document's text joined by blank lines.
func Text(docs []Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, d.Text)
	}
	return strings.Join(parts, "\n\n")
}

// Format renders documents as a "## Supplementary Materials" section with one
// "### <filename>" subsection per document.
func Format(docs []Document) string {
	lines := []string{Header}
	for _, d := range docs {
		lines = append(lines, "\n### "+d.Filename+"\n", d.Text)
	}
	return strings.Join(lines, "\n")
}

// Prefetch looks up and caches supplements for every id, pausing between
// network requests. It returns which ids have material.
func (c *Client) Prefetch(ctx context.Context, pmcids []string) (map[string]bool, error) {
	results := make(map[string]bool, len(pmcids))
	hits := 0

	for i, pmcid := range pmcids {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if c.cache != nil {
			var cached payload
			if c.cache.GetJSON(pmcid, &cached) {
				results[pmcid] = len(cached.Documents) > 0
				if results[pmcid] {
					hits++
				}
				continue
			}
		}

		_, status, _ := c.fetch(ctx, pmcid)
		results[pmcid] = status == Available
		if results[pmcid] {
			hits++
		}

		if (i+1)%10 == 0 {
			c.logger.Info("prefetch progress",
				"done", i+1,
				"total", len(pmcids),
				"found", hits,
				"hit_rate", fmt.Sprintf("%.1f%%", 100*float64(hits)/float64(i+1)),
			)
		}

		if c.opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(c.opts.Delay):
			}
		}
	}

	c.logger.Info("prefetch complete", "available", hits, "total", len(pmcids))
	return results, nil
}
