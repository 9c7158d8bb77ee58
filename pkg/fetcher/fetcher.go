// Package fetcher downloads PubMed Central article pages.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// ErrNotFound is returned when the article page does not exist.
var ErrNotFound = errors.New("article not found")

const acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// Options configures a Fetcher. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	Logger     *slog.Logger
}

type Fetcher struct {
	client     *http.Client
	baseURL    string
	userAgent  string
	maxRetries int
	logger     *slog.Logger
}

func NewFetcher(opts Options) *Fetcher {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://www.ncbi.nlm.nih.gov/pmc/articles"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Fetcher{
		client:     &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		maxRetries: opts.MaxRetries,
		logger:     opts.Logger,
	}
}

// ArticleURL returns the classic-report page address for pmcid.
func (f *Fetcher) ArticleURL(pmcid string) string {
	return fmt.Sprintf("%s/%s/?report=classic", f.baseURL, pmcid)
}

// FetchArticle downloads the article page for pmcid and returns it as UTF-8 text.
// Any error means the article is treated as absent.
func (f *Fetcher) FetchArticle(ctx context.Context, pmcid string) (string, error) {
	body, err := f.GetHtmlBytes(ctx, f.ArticleURL(pmcid))
	if err != nil {
		f.logger.Error("article fetch failed", "pmcid", pmcid, "error", err)
		return "", err
	}
	return string(body), nil
}

// GetHtmlBytes fetches url with browser headers, decoding the body to UTF-8.
func (f *Fetcher) GetHtmlBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", acceptHeader)

	resp, err := DoWithRetry(ctx, f.client, req, f.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch HTML, status code: %d", resp.StatusCode)
	}

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset: %w", err)
	}

	bodyBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return bodyBytes, nil
}
