package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/pmc2md/pkg/db"
)

func openTestCache(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), db.DefaultDBName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// idconvServer answers with pmcids from known; ids not in known are omitted.
func idconvServer(t *testing.T, known map[string]string, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "me@example.org", r.URL.Query().Get("email"))

		var records []map[string]any
		for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
			pmcid, ok := known[id]
			if !ok {
				continue
			}
			rec := map[string]any{"pmid": id}
			if pmcid != "" {
				rec["pmcid"] = pmcid
			}
			records = append(records, rec)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "records": records})
	}))
}

func TestResolve(t *testing.T) {
	var calls int32
	ts := idconvServer(t, map[string]string{"1": "PMC10", "2": ""}, &calls)
	defer ts.Close()

	r := New(openTestCache(t), Options{URL: ts.URL, Email: "me@example.org"})
	got, err := r.Resolve(context.Background(), []string{" 1 ", "2", "3"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"1": "PMC10", "2": "", "3": ""}, got)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestResolve_UsesCache(t *testing.T) {
	var calls int32
	ts := idconvServer(t, map[string]string{"1": "PMC10"}, &calls)
	defer ts.Close()

	cache := openTestCache(t)
	r := New(cache, Options{URL: ts.URL, Email: "me@example.org"})

	_, err := r.Resolve(context.Background(), []string{"1", "3"})
	require.NoError(t, err)

	got, err := r.Resolve(context.Background(), []string{"1", "3"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"1": "PMC10", "3": ""}, got)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second call should be served from cache")
}

func TestResolve_Batches(t *testing.T) {
	var calls int32
	known := map[string]string{"1": "PMC1", "2": "PMC2", "3": "PMC3", "4": "PMC4", "5": "PMC5"}
	ts := idconvServer(t, known, &calls)
	defer ts.Close()

	r := New(nil, Options{URL: ts.URL, Email: "me@example.org", BatchSize: 2, Delay: time.Millisecond})
	got, err := r.Resolve(context.Background(), []string{"1", "2", "3", "4", "5"})
	require.NoError(t, err)

	assert.Equal(t, known, got)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestResolve_FailedBatchCachedAsAbsent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	cache := openTestCache(t)
	r := New(cache, Options{URL: ts.URL, Email: "me@example.org"})

	got, err := r.Resolve(context.Background(), []string{"7"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"7": ""}, got)

	cached, err := cache.GetCachedIDs([]string{"7"}, 0)
	require.NoError(t, err)
	require.Contains(t, cached, "7")
	assert.Empty(t, cached["7"].PMCID)
}

func TestResolve_NumericPMIDInResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","records":[{"pmid":42,"pmcid":"PMC42"}]}`))
	}))
	defer ts.Close()

	r := New(nil, Options{URL: ts.URL, Email: "me@example.org"})
	got, err := r.Resolve(context.Background(), []string{"42"})
	require.NoError(t, err)
	assert.Equal(t, "PMC42", got["42"])
}

func TestSaveResults(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

	path, err := SaveResults(dir, map[string]string{"1": "PMC1", "2": ""}, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pmcid_from_pmid_results_20240305_140709.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]*string
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded["1"])
	assert.Equal(t, "PMC1", *decoded["1"])
	assert.Nil(t, decoded["2"])
}
