package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchArticle(t *testing.T) {
	var gotPath, gotQuery, gotUA, gotAccept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer ts.Close()

	f := NewFetcher(Options{BaseURL: ts.URL + "/", UserAgent: "test-agent"})
	body, err := f.FetchArticle(context.Background(), "PMC123")
	require.NoError(t, err)

	assert.Equal(t, "<html><body>ok</body></html>", body)
	assert.Equal(t, "/PMC123/", gotPath)
	assert.Equal(t, "report=classic", gotQuery)
	assert.Equal(t, "test-agent", gotUA)
	assert.Equal(t, acceptHeader, gotAccept)
}

func TestFetchArticle_DecodesCharset(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<p>caf\xe9</p>"))
	}))
	defer ts.Close()

	f := NewFetcher(Options{BaseURL: ts.URL})
	body, err := f.FetchArticle(context.Background(), "PMC1")
	require.NoError(t, err)
	assert.Equal(t, "<p>café</p>", body)
}

func TestFetchArticle_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		notFound bool
	}{
		{name: "not found", status: http.StatusNotFound, notFound: true},
		{name: "server error", status: http.StatusInternalServerError},
		{name: "forbidden", status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			f := NewFetcher(Options{BaseURL: ts.URL})
			body, err := f.FetchArticle(context.Background(), "PMC1")
			require.Error(t, err)
			assert.Empty(t, body)
			assert.Equal(t, tt.notFound, errors.Is(err, ErrNotFound))
		})
	}
}
