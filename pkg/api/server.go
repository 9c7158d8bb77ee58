// Package api serves article conversions over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dtnitsch/pmc2md/models"
	"github.com/dtnitsch/pmc2md/pkg/downloader"
)

// MaxBatchIDs is the largest batch a single job accepts.
const MaxBatchIDs = 50

// DefaultJobTTL is how long completed jobs stay queryable.
const DefaultJobTTL = time.Hour

// Converter performs single-article conversions. *downloader.Downloader
// satisfies it.
type Converter interface {
	SinglePMID(ctx context.Context, pmid string, opts downloader.ConvertOptions) models.ConvertResult
	SinglePMCID(ctx context.Context, pmcid string, opts downloader.ConvertOptions) models.ConvertResult
}

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	conv   Converter
	jobs   *JobStore
	log    *slog.Logger

	// background jobs outlive the request that started them
	baseCtx context.Context
	wg      sync.WaitGroup
}

// NewServer creates and configures the HTTP server. ctx bounds the batch
// jobs it starts.
func NewServer(ctx context.Context, conv Converter, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		conv:    conv,
		jobs:    NewJobStore(DefaultJobTTL),
		log:     log,
		baseCtx: ctx,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Wait blocks until every started batch job has finished.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(CORS)

	r.Get("/health", s.handleHealth)

	r.Get("/convert/pmid/{pmid}", s.handleConvertPMID)
	r.Get("/convert/pmcid/{pmcid}", s.handleConvertPMCID)
	r.Post("/convert/pmids", s.handleBatchPMIDs)
	r.Post("/convert/pmcids", s.handleBatchPMCIDs)

	r.Get("/jobs/{jobID}", s.handleJobStatus)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"healthy"}`))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
