package db

import (
	"testing"
	"time"
)

func TestPutAndGetCachedIDs(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	now := time.Now()
	err := db.PutCachedIDs(map[string]string{
		"12345": "PMC111",
		"67890": "", // resolved, not in PMC
	}, now)
	if err != nil {
		t.Fatalf("PutCachedIDs() error = %v", err)
	}

	got, err := db.GetCachedIDs([]string{"12345", "67890", "99999"}, time.Hour)
	if err != nil {
		t.Fatalf("GetCachedIDs() error = %v", err)
	}

	tests := []struct {
		id        string
		wantFound bool
		wantPMCID string
	}{
		{id: "12345", wantFound: true, wantPMCID: "PMC111"},
		{id: "67890", wantFound: true, wantPMCID: ""},
		{id: "99999", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			entry, ok := got[tt.id]
			if ok != tt.wantFound {
				t.Fatalf("found = %v, want %v", ok, tt.wantFound)
			}
			if ok && entry.PMCID != tt.wantPMCID {
				t.Errorf("PMCID = %q, want %q", entry.PMCID, tt.wantPMCID)
			}
		})
	}
}

func TestGetCachedIDs_Expiry(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	old := time.Now().Add(-31 * 24 * time.Hour)
	if err := db.PutCachedIDs(map[string]string{"1": "PMC1"}, old); err != nil {
		t.Fatalf("PutCachedIDs() error = %v", err)
	}

	fresh, err := db.GetCachedIDs([]string{"1"}, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("GetCachedIDs() error = %v", err)
	}
	if len(fresh) != 0 {
		t.Errorf("GetCachedIDs() with 30d expiry = %v, want empty", fresh)
	}

	// maxAge 0 means no expiry
	all, err := db.GetCachedIDs([]string{"1"}, 0)
	if err != nil {
		t.Fatalf("GetCachedIDs() error = %v", err)
	}
	if all["1"].PMCID != "PMC1" {
		t.Errorf("GetCachedIDs() without expiry = %v, want PMC1", all)
	}
}

func TestPutCachedIDs_Overwrites(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	now := time.Now()
	if err := db.PutCachedIDs(map[string]string{"1": ""}, now); err != nil {
		t.Fatalf("PutCachedIDs() error = %v", err)
	}
	if err := db.PutCachedIDs(map[string]string{"1": "PMC9"}, now); err != nil {
		t.Fatalf("PutCachedIDs() error = %v", err)
	}

	got, err := db.GetCachedIDs([]string{"1"}, 0)
	if err != nil {
		t.Fatalf("GetCachedIDs() error = %v", err)
	}
	if got["1"].PMCID != "PMC9" {
		t.Errorf("PMCID = %q, want PMC9", got["1"].PMCID)
	}

	n, _ := db.CountCachedIDs()
	if n != 1 {
		t.Errorf("CountCachedIDs() = %d, want 1", n)
	}
}

func TestClearIDCache(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.PutCachedIDs(map[string]string{"1": "PMC1", "2": "PMC2"}, time.Now()); err != nil {
		t.Fatalf("PutCachedIDs() error = %v", err)
	}

	removed, err := db.ClearIDCache()
	if err != nil {
		t.Fatalf("ClearIDCache() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("ClearIDCache() removed %d, want 2", removed)
	}

	n, _ := db.CountCachedIDs()
	if n != 0 {
		t.Errorf("CountCachedIDs() after clear = %d, want 0", n)
	}
}

func TestGetCachedIDs_Empty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	got, err := db.GetCachedIDs(nil, time.Hour)
	if err != nil {
		t.Fatalf("GetCachedIDs() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("GetCachedIDs(nil) = %v, want empty", got)
	}
}
