package db

import (
	"testing"

	"github.com/dtnitsch/pmc2md/models"
)

func TestUpsertRecord(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	r := models.Record{MarkdownPath: "data/markdown/PMC1.md", PMCID: "PMC1", Title: "First"}
	if err := db.UpsertRecord(r, "hash1"); err != nil {
		t.Fatalf("UpsertRecord() error = %v", err)
	}

	r.Title = "Updated"
	r.PMID = "111"
	if err := db.UpsertRecord(r, "hash2"); err != nil {
		t.Fatalf("UpsertRecord() second call error = %v", err)
	}

	records, err := db.ListRecords()
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("ListRecords() returned %d records, want 1", len(records))
	}
	if records[0].Title != "Updated" || records[0].PMID != "111" {
		t.Errorf("record = %+v, want updated title and pmid", records[0])
	}
}

func TestReplaceRecords(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.UpsertRecord(models.Record{MarkdownPath: "stale.md"}, ""); err != nil {
		t.Fatalf("UpsertRecord() error = %v", err)
	}

	records := []models.Record{
		{MarkdownPath: "b.md", PMCID: "PMC2"},
		{MarkdownPath: "a.md", PMCID: "PMC1", PMID: "1", URL: "https://example.org/PMC1/"},
	}
	if err := db.ReplaceRecords(records, map[string]string{"a.md": "h"}); err != nil {
		t.Fatalf("ReplaceRecords() error = %v", err)
	}

	got, err := db.ListRecords()
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListRecords() returned %d, want 2", len(got))
	}
	if got[0].MarkdownPath != "a.md" || got[1].MarkdownPath != "b.md" {
		t.Errorf("ListRecords() order = %s, %s, want a.md, b.md", got[0].MarkdownPath, got[1].MarkdownPath)
	}
}

func TestGetRecordByPMCID(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.UpsertRecord(models.Record{MarkdownPath: "x.md", PMCID: "PMC7"}, ""); err != nil {
		t.Fatalf("UpsertRecord() error = %v", err)
	}

	tests := []struct {
		name     string
		pmcid    string
		wantPath string
		wantNil  bool
	}{
		{name: "existing", pmcid: "PMC7", wantPath: "x.md"},
		{name: "missing", pmcid: "PMC8", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.GetRecordByPMCID(tt.pmcid)
			if err != nil {
				t.Fatalf("GetRecordByPMCID() error = %v", err)
			}
			if tt.wantNil {
				if got != nil {
					t.Errorf("GetRecordByPMCID() = %+v, want nil", got)
				}
				return
			}
			if got == nil || got.MarkdownPath != tt.wantPath {
				t.Errorf("GetRecordByPMCID() = %+v, want path %s", got, tt.wantPath)
			}
		})
	}
}
