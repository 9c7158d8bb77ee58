package db

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/pmc2md/internal/common"
	dbpkg "github.com/dtnitsch/pmc2md/pkg/db"
)

func RunsAction(c *cli.Context) error {
	database, err := openDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	fmt.Printf("%-6s %-20s %-12s %-8s %-8s %-8s\n",
		"ID", "Created", "Kind", "IDs", "Success", "Failed")
	fmt.Println(strings.Repeat("-", 70))

	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-12s %-8d %-8d %-8d\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Kind,
			r.IDCount,
			r.SuccessCount,
			r.FailedCount,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	fmt.Printf("\nTip: Use 'pmc2md db run <id>' to see details\n")

	return nil
}

// RunAction shows details for a specific run
func RunAction(c *cli.Context) error {
	database, err := openDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	run, err := database.GetRun(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	results, err := database.GetRunResults(runID)
	if err != nil {
		return fmt.Errorf("failed to get run results: %w", err)
	}

	fmt.Printf("Run %d\n", run.RunID)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Created:     %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Kind:        %s\n", run.Kind)
	fmt.Printf("IDs:         %d total (%d success, %d failed)\n",
		run.IDCount, run.SuccessCount, run.FailedCount)

	if len(results) > 0 {
		fmt.Printf("\nResults (%d):\n", len(results))
		fmt.Println(strings.Repeat("-", 60))
		for i, r := range results {
			fmt.Printf("%2d. [%s] %s %s\n", i+1, r.Status, r.IDType, r.ArticleID)
			if r.PMCID != "" && r.PMCID != r.ArticleID {
				fmt.Printf("    PMCID: %s\n", r.PMCID)
			}
			if r.Status == dbpkg.StatusFailed {
				fmt.Printf("    Error: %s\n", r.ErrorMessage)
			} else if r.MarkdownPath != "" {
				fmt.Printf("    File: %s\n", r.MarkdownPath)
			}
		}
	}

	return nil
}

// RecordsListAction prints the stored records table.
func RecordsListAction(c *cli.Context) error {
	database, err := openDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	records, err := database.ListRecords()
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No records found. Run 'pmc2md records' first")
		return nil
	}
	return common.WriteOutput(os.Stdout, c.String("format"), records)
}

// RecordAction prints the record for one PMCID.
func RecordAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("usage: pmc2md db record <PMCID>")
	}
	pmcid := common.SanitizeID(c.Args().First())

	database, err := openDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	record, err := database.GetRecordByPMCID(pmcid)
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}
	if record == nil {
		return fmt.Errorf("no record for %s", pmcid)
	}
	return common.WriteOutput(os.Stdout, c.String("format"), record)
}
