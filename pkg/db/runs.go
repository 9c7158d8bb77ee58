package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Run kinds
const (
	RunPMIDs       = "pmids"
	RunPMCIDs      = "pmcids"
	RunLocal       = "local"
	RunSupplements = "supplements"
)

// Result statuses
const (
	StatusConverted    = "converted"
	StatusAbstractOnly = "abstract_only"
	StatusFailed       = "failed"
	StatusSkipped      = "skipped"
)

// Run represents one batch download
type Run struct {
	RunID        int64
	CreatedAt    time.Time
	Kind         string
	IDCount      int
	SuccessCount int
	FailedCount  int
}

// RunResult is the outcome for one identifier within a run
type RunResult struct {
	ArticleID    string
	IDType       string
	PMCID        string
	Status       string
	ErrorMessage string
	MarkdownPath string
}

// CreateRun creates a new run record
func (db *DB) CreateRun(kind string, idCount int) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (created_at, kind, id_count)
		VALUES (?, ?, ?)
	`, time.Now().Unix(), kind, idCount)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}

	return result.LastInsertId()
}

// InsertRunResult records the outcome for one identifier
func (db *DB) InsertRunResult(runID int64, r RunResult) error {
	_, err := db.Exec(`
		INSERT INTO run_results (run_id, article_id, id_type, pmcid, status, error_message, markdown_path)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, article_id) DO UPDATE SET
			pmcid = excluded.pmcid,
			status = excluded.status,
			error_message = excluded.error_message,
			markdown_path = excluded.markdown_path
	`, runID, r.ArticleID, r.IDType, r.PMCID, r.Status, r.ErrorMessage, r.MarkdownPath)
	if err != nil {
		return fmt.Errorf("failed to insert run result %s: %w", r.ArticleID, err)
	}
	return nil
}

// UpdateRunStats updates the success and failed counts for a run
func (db *DB) UpdateRunStats(runID int64, successCount, failedCount int) error {
	_, err := db.Exec(`
		UPDATE runs
		SET success_count = ?, failed_count = ?
		WHERE run_id = ?
	`, successCount, failedCount, runID)
	if err != nil {
		return fmt.Errorf("failed to update run stats: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID
func (db *DB) GetRun(runID int64) (*Run, error) {
	var r Run
	var createdAt int64
	err := db.QueryRow(`
		SELECT run_id, created_at, kind, id_count, success_count, failed_count
		FROM runs
		WHERE run_id = ?
	`, runID).Scan(&r.RunID, &createdAt, &r.Kind, &r.IDCount, &r.SuccessCount, &r.FailedCount)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	r.CreatedAt = time.Unix(createdAt, 0)
	return &r, nil
}

// ListRuns returns the most recent runs, newest first
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT run_id, created_at, kind, id_count, success_count, failed_count
		FROM runs
		ORDER BY created_at DESC, run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt int64
		if err := rows.Scan(&r.RunID, &createdAt, &r.Kind, &r.IDCount, &r.SuccessCount, &r.FailedCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// GetRunResults returns every result of a run in insertion order
func (db *DB) GetRunResults(runID int64) ([]RunResult, error) {
	rows, err := db.Query(`
		SELECT article_id, id_type, COALESCE(pmcid, ''), status,
		       COALESCE(error_message, ''), COALESCE(markdown_path, '')
		FROM run_results
		WHERE run_id = ?
		ORDER BY result_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []RunResult
	for rows.Next() {
		var r RunResult
		if err := rows.Scan(&r.ArticleID, &r.IDType, &r.PMCID, &r.Status, &r.ErrorMessage, &r.MarkdownPath); err != nil {
			return nil, fmt.Errorf("failed to scan run result: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}
