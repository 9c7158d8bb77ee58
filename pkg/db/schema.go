package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Identifier cache: PMID -> PMCID, empty pmcid means "resolved, not in PMC"
CREATE TABLE IF NOT EXISTS id_cache (
    id TEXT PRIMARY KEY,
    pmcid TEXT NOT NULL DEFAULT '',
    resolved_at INTEGER NOT NULL           -- unix seconds
);

CREATE INDEX IF NOT EXISTS idx_id_cache_resolved ON id_cache(resolved_at);

-- Records: one row per stored markdown file
CREATE TABLE IF NOT EXISTS records (
    record_id INTEGER PRIMARY KEY AUTOINCREMENT,
    markdown_path TEXT NOT NULL UNIQUE,
    pmid TEXT,
    pmcid TEXT,
    url TEXT,
    title TEXT,
    language TEXT,
    excerpt TEXT,
    site_name TEXT,
    content_hash TEXT,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_pmid ON records(pmid);
CREATE INDEX IF NOT EXISTS idx_records_pmcid ON records(pmcid);

-- Runs: one row per batch download
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at INTEGER NOT NULL,
    kind TEXT NOT NULL,                    -- pmids, pmcids, local, supplements
    id_count INTEGER NOT NULL,
    success_count INTEGER DEFAULT 0,
    failed_count INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

-- Run results: per-identifier outcome within a run
CREATE TABLE IF NOT EXISTS run_results (
    result_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    article_id TEXT NOT NULL,
    id_type TEXT NOT NULL,
    pmcid TEXT,
    status TEXT NOT NULL,                  -- converted, abstract_only, failed, skipped
    error_message TEXT,
    markdown_path TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    UNIQUE(run_id, article_id)
);

CREATE INDEX IF NOT EXISTS idx_run_results_run ON run_results(run_id);
`
