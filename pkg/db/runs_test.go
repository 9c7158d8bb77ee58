package db

import (
	"testing"
)

func TestCreateRunAndResults(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.CreateRun(RunPMIDs, 3)
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	if runID == 0 {
		t.Fatal("CreateRun() returned 0 run ID")
	}

	results := []RunResult{
		{ArticleID: "1", IDType: "pmid", PMCID: "PMC1", Status: StatusConverted, MarkdownPath: "PMC1.md"},
		{ArticleID: "2", IDType: "pmid", Status: StatusAbstractOnly, MarkdownPath: "PMID2.md"},
		{ArticleID: "3", IDType: "pmid", Status: StatusFailed, ErrorMessage: "not found"},
	}
	for _, r := range results {
		if err := db.InsertRunResult(runID, r); err != nil {
			t.Fatalf("InsertRunResult() error = %v", err)
		}
	}
	if err := db.UpdateRunStats(runID, 2, 1); err != nil {
		t.Fatalf("UpdateRunStats() error = %v", err)
	}

	run, err := db.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.Kind != RunPMIDs {
		t.Errorf("run.Kind = %q, want %q", run.Kind, RunPMIDs)
	}
	if run.IDCount != 3 || run.SuccessCount != 2 || run.FailedCount != 1 {
		t.Errorf("run counts = %d/%d/%d, want 3/2/1", run.IDCount, run.SuccessCount, run.FailedCount)
	}

	got, err := db.GetRunResults(runID)
	if err != nil {
		t.Fatalf("GetRunResults() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("GetRunResults() returned %d, want 3", len(got))
	}
	for i := range results {
		if got[i] != results[i] {
			t.Errorf("result[%d] = %+v, want %+v", i, got[i], results[i])
		}
	}
}

func TestInsertRunResult_Replaces(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, _ := db.CreateRun(RunPMCIDs, 1)
	_ = db.InsertRunResult(runID, RunResult{ArticleID: "PMC1", IDType: "pmcid", Status: StatusFailed})
	if err := db.InsertRunResult(runID, RunResult{ArticleID: "PMC1", IDType: "pmcid", Status: StatusConverted}); err != nil {
		t.Fatalf("InsertRunResult() error = %v", err)
	}

	got, _ := db.GetRunResults(runID)
	if len(got) != 1 || got[0].Status != StatusConverted {
		t.Errorf("GetRunResults() = %+v, want one converted result", got)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.GetRun(42); err == nil {
		t.Error("GetRun() error = nil, want not found")
	}
}

func TestListRuns(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for _, kind := range []string{RunPMIDs, RunPMCIDs, RunLocal} {
		if _, err := db.CreateRun(kind, 1); err != nil {
			t.Fatalf("CreateRun() error = %v", err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns(2) returned %d, want 2", len(runs))
	}
	// Same second: newest run_id first
	if runs[0].Kind != RunLocal {
		t.Errorf("runs[0].Kind = %q, want %q", runs[0].Kind, RunLocal)
	}
}
