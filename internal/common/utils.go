package common

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	pmidPattern  = regexp.MustCompile(`^\d+$`)
	pmcidPattern = regexp.MustCompile(`^PMC\d+$`)
)

// IsPMID reports whether s is a bare numeric PubMed identifier.
func IsPMID(s string) bool {
	return pmidPattern.MatchString(s)
}

// IsPMCID reports whether s is "PMC" followed by digits.
func IsPMCID(s string) bool {
	return pmcidPattern.MatchString(s)
}

// SanitizeID performs basic cleanup on identifiers to handle common copy-paste issues.
// Removes whitespace, surrounding quotes and punctuation, and a "PMID:" label.
func SanitizeID(raw string) string {
	cleaned := strings.TrimSpace(raw)

	// Remove leading/trailing punctuation from copy-paste errors
	cleaned = strings.Trim(cleaned, ",.;\"'()[]<>")
	cleaned = strings.TrimSpace(cleaned)

	// "PMID: 123" -> "123"
	if len(cleaned) > 5 && strings.EqualFold(cleaned[:5], "PMID:") {
		cleaned = strings.TrimSpace(cleaned[5:])
	}

	// "pmc123" -> "PMC123"
	if len(cleaned) > 3 && strings.EqualFold(cleaned[:3], "PMC") {
		cleaned = "PMC" + cleaned[3:]
	}

	return cleaned
}

// SanitizeAndValidateIDs sanitizes all ids and returns (valid ids, invalid ids).
// valid reports whether a sanitized id is acceptable. Duplicates are dropped,
// first occurrence wins.
func SanitizeAndValidateIDs(ids []string, valid func(string) bool) ([]string, []string) {
	sanitized := make([]string, 0, len(ids))
	var invalidIDs []string
	seen := make(map[string]bool, len(ids))

	for _, raw := range ids {
		cleaned := SanitizeID(raw)
		if cleaned == "" {
			continue
		}
		if !valid(cleaned) {
			invalidIDs = append(invalidIDs, raw)
			continue
		}
		if seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		sanitized = append(sanitized, cleaned)
	}

	return sanitized, invalidIDs
}

// SplitIDs splits a comma or whitespace separated list.
func SplitIDs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// ReadIDFile reads one identifier per line, skipping blank lines and # comments.
func ReadIDFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open id file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read id file: %w", err)
	}
	return ids, nil
}

// ContentHash computes SHA256 hash of content and returns hex string.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}
