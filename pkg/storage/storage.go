// Package storage lays out downloaded pages and converted markdown on disk:
//
//	<root>/html/<PMCID>.html
//	<root>/markdown/<PMCID>.md
//	<root>/markdown/PMID<pmid>.md   (abstract-only)
//	<root>/pmcids.txt
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	htmlDir       = "html"
	markdownDir   = "markdown"
	pmcidListFile = "pmcids.txt"

	// AbstractPrefix marks markdown files holding an abstract only.
	AbstractPrefix = "PMID"
)

type Storage struct {
	root string
}

// FileStats holds metadata about a file without reading its contents.
type FileStats struct {
	SizeBytes int64
	ModTime   time.Time
}

func New(root string) *Storage {
	if root == "" {
		root = "data"
	}
	return &Storage{root: root}
}

func (s *Storage) Root() string        { return s.root }
func (s *Storage) HTMLDir() string     { return filepath.Join(s.root, htmlDir) }
func (s *Storage) MarkdownDir() string { return filepath.Join(s.root, markdownDir) }

// HTMLPath returns where the page for pmcid is stored.
func (s *Storage) HTMLPath(pmcid string) string {
	return filepath.Join(s.HTMLDir(), pmcid+".html")
}

// MarkdownPath returns where the converted article for pmcid is stored.
func (s *Storage) MarkdownPath(pmcid string) string {
	return filepath.Join(s.MarkdownDir(), pmcid+".md")
}

// AbstractPath returns where the abstract-only document for pmid is stored.
func (s *Storage) AbstractPath(pmid string) string {
	return s.MarkdownPath(AbstractPrefix + pmid)
}

// PMCIDListPath returns the file listing the PMCIDs found by the last resolve.
func (s *Storage) PMCIDListPath() string {
	return filepath.Join(s.root, pmcidListFile)
}

// SaveFile writes content, creating parent directories.
func (s *Storage) SaveFile(filePath string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	if err := os.WriteFile(filePath, content, 0644); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

func (s *Storage) ReadFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return data, nil
}

func (s *Storage) HasFile(fn string) bool {
	_, err := os.Stat(fn)
	return err == nil
}

// GetFileStats returns metadata about a file using os.Stat (no I/O overhead).
func (s *Storage) GetFileStats(filePath string) (*FileStats, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error getting file stats: %w", err)
	}

	return &FileStats{
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}

// SavePMCIDList writes one PMCID per line.
func (s *Storage) SavePMCIDList(pmcids []string) error {
	return s.SaveFile(s.PMCIDListPath(), []byte(strings.Join(pmcids, "\n")))
}

// HTMLIDs lists the PMCIDs that have a stored page, sorted.
func (s *Storage) HTMLIDs() ([]string, error) {
	return listStems(s.HTMLDir(), ".html")
}

// MarkdownIDs lists the stems of stored markdown files (PMCIDs and
// PMID-prefixed abstracts), sorted.
func (s *Storage) MarkdownIDs() ([]string, error) {
	return listStems(s.MarkdownDir(), ".md")
}

// listStems returns file names in dir with ext, without the extension.
// A missing directory yields an empty list.
func listStems(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", dir, err)
	}

	var stems []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		stems = append(stems, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(stems)
	return stems, nil
}
