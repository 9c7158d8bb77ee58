package db

import (
	"fmt"
	"strings"
	"time"
)

// CachedID is one resolved identifier. An empty PMCID means the article
// was resolved and has no PMC copy.
type CachedID struct {
	ID         string
	PMCID      string
	ResolvedAt time.Time
}

// GetCachedIDs returns the fresh cache entries for ids, keyed by id.
// Entries older than maxAge are treated as missing; maxAge <= 0 means no expiry.
func (db *DB) GetCachedIDs(ids []string, maxAge time.Duration) (map[string]CachedID, error) {
	found := make(map[string]CachedID)
	if len(ids) == 0 {
		return found, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, pmcid, resolved_at
		FROM id_cache
		WHERE id IN (%s)
	`, strings.Join(placeholders, ","))

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query id cache: %w", err)
	}
	defer func() { _ = rows.Close() }()

	now := time.Now()
	for rows.Next() {
		var entry CachedID
		var resolvedAt int64
		if err := rows.Scan(&entry.ID, &entry.PMCID, &resolvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan id cache row: %w", err)
		}
		entry.ResolvedAt = time.Unix(resolvedAt, 0)
		if maxAge > 0 && now.Sub(entry.ResolvedAt) > maxAge {
			continue // Stale
		}
		found[entry.ID] = entry
	}

	return found, rows.Err()
}

// PutCachedIDs stores id -> pmcid pairs in one transaction, replacing
// existing entries.
func (db *DB) PutCachedIDs(entries map[string]string, at time.Time) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // No-op after commit

	stmt, err := tx.Prepare(`
		INSERT INTO id_cache (id, pmcid, resolved_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pmcid = excluded.pmcid,
			resolved_at = excluded.resolved_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare id cache insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for id, pmcid := range entries {
		if _, err := stmt.Exec(id, pmcid, at.Unix()); err != nil {
			return fmt.Errorf("failed to cache id %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// CountCachedIDs returns the number of cached identifiers.
func (db *DB) CountCachedIDs() (int, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM id_cache").Scan(&n)
	return n, err
}

// ClearIDCache removes every cached identifier and returns how many were removed.
func (db *DB) ClearIDCache() (int64, error) {
	result, err := db.Exec("DELETE FROM id_cache")
	if err != nil {
		return 0, fmt.Errorf("failed to clear id cache: %w", err)
	}
	return result.RowsAffected()
}
