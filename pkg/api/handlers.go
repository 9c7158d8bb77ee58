package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dtnitsch/pmc2md/internal/common"
	"github.com/dtnitsch/pmc2md/models"
	"github.com/dtnitsch/pmc2md/pkg/downloader"
)

type pmidBatchRequest struct {
	PMIDs []string `json:"pmids"`
}

type pmcidBatchRequest struct {
	PMCIDs []string `json:"pmcids"`
}

// convertOptions reads include_supplements, which defaults to true.
func convertOptions(r *http.Request) (downloader.ConvertOptions, error) {
	opts := downloader.ConvertOptions{Supplements: true}
	if v := r.URL.Query().Get("include_supplements"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("include_supplements must be a boolean: %q", v)
		}
		opts.Supplements = include
	}
	return opts, nil
}

func (s *Server) handleConvertPMID(w http.ResponseWriter, r *http.Request) {
	pmid := chi.URLParam(r, "pmid")
	if !common.IsPMID(pmid) {
		jsonError(w, "PMID must be numeric", http.StatusUnprocessableEntity)
		return
	}
	opts, err := convertOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	result := s.conv.SinglePMID(r.Context(), pmid, opts)
	if result.Failed() {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "conversion_failed",
			"message": failureMessage(result, "No PMCID found for this PMID"),
			"pmid":    pmid,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleConvertPMCID(w http.ResponseWriter, r *http.Request) {
	pmcid := chi.URLParam(r, "pmcid")
	if !common.IsPMCID(pmcid) {
		jsonError(w, "PMCID must look like PMC followed by digits", http.StatusUnprocessableEntity)
		return
	}
	opts, err := convertOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	result := s.conv.SinglePMCID(r.Context(), pmcid, opts)
	if result.Failed() {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "conversion_failed",
			"message": failureMessage(result, "Failed to convert article"),
			"pmcid":   pmcid,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func failureMessage(r models.ConvertResult, fallback string) string {
	if r.Error != "" {
		return r.Error
	}
	return fallback
}

func (s *Server) handleBatchPMIDs(w http.ResponseWriter, r *http.Request) {
	var req pmidBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := validateBatch(req.PMIDs, common.IsPMID, "PMID"); err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.startJob(w, req.PMIDs, s.conv.SinglePMID)
}

func (s *Server) handleBatchPMCIDs(w http.ResponseWriter, r *http.Request) {
	var req pmcidBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := validateBatch(req.PMCIDs, common.IsPMCID, "PMCID"); err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.startJob(w, req.PMCIDs, s.conv.SinglePMCID)
}

func validateBatch(ids []string, valid func(string) bool, label string) error {
	if len(ids) > MaxBatchIDs {
		return fmt.Errorf("at most %d ids per batch, got %d", MaxBatchIDs, len(ids))
	}
	for _, id := range ids {
		if !valid(id) {
			return fmt.Errorf("invalid %s: %q", label, id)
		}
	}
	return nil
}

type convertFunc func(ctx context.Context, id string, opts downloader.ConvertOptions) models.ConvertResult

// startJob registers a job and converts ids one at a time in the background.
func (s *Server) startJob(w http.ResponseWriter, ids []string, convert convertFunc) {
	s.jobs.Cleanup()

	job := newJob(len(ids))
	s.jobs.Put(job)
	snap := job.Snapshot()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		job.SetStatus(StatusRunning)
		opts := downloader.ConvertOptions{Supplements: true}
		for _, id := range ids {
			job.AddResult(convert(s.baseCtx, id, opts))
		}
		job.SetStatus(StatusCompleted)
		s.log.Info("batch job completed", "job_id", job.ID, "total", len(ids))
	}()

	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.jobs.Get(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "Job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
