package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dtnitsch/pmc2md/models"
)

// UpsertRecord inserts or updates the record stored for r.MarkdownPath.
func (db *DB) UpsertRecord(r models.Record, contentHash string) error {
	return upsertRecord(db.DB, r, contentHash)
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func upsertRecord(ex execer, r models.Record, contentHash string) error {
	_, err := ex.Exec(`
		INSERT INTO records (markdown_path, pmid, pmcid, url, title, language, excerpt, site_name, content_hash, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(markdown_path) DO UPDATE SET
			pmid = excluded.pmid,
			pmcid = excluded.pmcid,
			url = excluded.url,
			title = excluded.title,
			language = excluded.language,
			excerpt = excluded.excerpt,
			site_name = excluded.site_name,
			content_hash = excluded.content_hash,
			updated_at = excluded.updated_at
	`, r.MarkdownPath, r.PMID, r.PMCID, r.URL, r.Title, r.Language, r.Excerpt, r.SiteName, contentHash, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", r.MarkdownPath, err)
	}
	return nil
}

// ReplaceRecords swaps the whole records table for the given set in one transaction.
func (db *DB) ReplaceRecords(records []models.Record, hashes map[string]string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM records"); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	for _, r := range records {
		if err := upsertRecord(tx, r, hashes[r.MarkdownPath]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListRecords returns all records ordered by markdown path.
func (db *DB) ListRecords() ([]models.Record, error) {
	rows, err := db.Query(`
		SELECT markdown_path,
		       COALESCE(pmid, ''), COALESCE(pmcid, ''), COALESCE(url, ''),
		       COALESCE(title, ''), COALESCE(language, ''),
		       COALESCE(excerpt, ''), COALESCE(site_name, '')
		FROM records
		ORDER BY markdown_path
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.Record
	for rows.Next() {
		var r models.Record
		if err := rows.Scan(&r.MarkdownPath, &r.PMID, &r.PMCID, &r.URL, &r.Title, &r.Language, &r.Excerpt, &r.SiteName); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// GetRecordByPMCID returns the record carrying pmcid.
// Returns nil, nil when no record matches.
func (db *DB) GetRecordByPMCID(pmcid string) (*models.Record, error) {
	var r models.Record
	err := db.QueryRow(`
		SELECT markdown_path,
		       COALESCE(pmid, ''), COALESCE(pmcid, ''), COALESCE(url, ''),
		       COALESCE(title, ''), COALESCE(language, ''),
		       COALESCE(excerpt, ''), COALESCE(site_name, '')
		FROM records
		WHERE pmcid = ?
		ORDER BY markdown_path
		LIMIT 1
	`, pmcid).Scan(&r.MarkdownPath, &r.PMID, &r.PMCID, &r.URL, &r.Title, &r.Language, &r.Excerpt, &r.SiteName)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return &r, nil
}
