package fetch

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/pmc2md/internal/common"
	"github.com/dtnitsch/pmc2md/pkg/db"
	"github.com/dtnitsch/pmc2md/pkg/downloader"
)

// FetchAction resolves, downloads and converts the requested articles.
func FetchAction(c *cli.Context) error {
	startTime := time.Now()

	var pmids, pmcids []string
	if c.IsSet("pmids") {
		pmids = append(pmids, common.SplitIDs(c.String("pmids"))...)
	}
	if c.IsSet("pmcids") {
		pmcids = append(pmcids, common.SplitIDs(c.String("pmcids"))...)
	}
	if c.IsSet("file") {
		lines, err := common.ReadIDFile(c.String("file"))
		if err != nil {
			return err
		}
		filePMIDs, filePMCIDs := splitByType(lines)
		pmids = append(pmids, filePMIDs...)
		pmcids = append(pmcids, filePMCIDs...)
	}

	if len(pmids) == 0 && len(pmcids) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No identifiers provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  pmc2md fetch --pmids "12345678,23456789"`)
		fmt.Fprintln(os.Stderr, `  pmc2md fetch --pmcids "PMC1234567"`)
		fmt.Fprintln(os.Stderr, `  pmc2md fetch --file ids.txt`)
		return cli.Exit("", 1)
	}

	app, err := common.NewApp(c)
	if err != nil {
		return err
	}
	defer app.Close()
	logger := app.Logger

	// Sanitize and validate all ids before processing (fail fast)
	validPMIDs, invalidPMIDs := common.SanitizeAndValidateIDs(pmids, common.IsPMID)
	validPMCIDs, invalidPMCIDs := common.SanitizeAndValidateIDs(pmcids, common.IsPMCID)
	invalid := append(invalidPMIDs, invalidPMCIDs...)
	for _, id := range invalid {
		logger.Warn("skipping invalid identifier", "id", id)
	}

	d := app.Downloader
	d.SkipSupplements = c.Bool("no-supplements")
	overwrite := c.Bool("overwrite")

	out := &FinalOutput{}
	if len(validPMIDs) > 0 {
		report, err := d.PMIDsToMarkdown(c.Context, validPMIDs, overwrite)
		if err != nil {
			return err
		}
		out.add(report)
	}
	if len(validPMCIDs) > 0 {
		out.add(d.PMCIDsToMarkdown(c.Context, validPMCIDs, overwrite))
	}

	out.Stats.Invalid = len(invalid)
	out.Stats.TotalTimeSeconds = time.Since(startTime).Seconds()
	out.Status = "success"
	if out.Stats.Failed > 0 {
		out.Status = "partial_failure"
	}

	if err := common.WriteOutput(os.Stdout, c.String("format"), out); err != nil {
		return err
	}

	if code := common.ExitCode(out.Stats.Failed, out.Stats.TotalIDs); code != 0 {
		return cli.Exit("", code)
	}
	return nil
}

// splitByType sorts raw file lines into PMIDs and PMCIDs. Anything that is
// not a PMCID is treated as a PMID and validated later.
func splitByType(lines []string) (pmids, pmcids []string) {
	for _, line := range lines {
		if common.IsPMCID(common.SanitizeID(line)) {
			pmcids = append(pmcids, line)
			continue
		}
		pmids = append(pmids, line)
	}
	return pmids, pmcids
}

func (o *FinalOutput) add(report *downloader.Report) {
	if report.RunID != 0 {
		o.RunIDs = append(o.RunIDs, report.RunID)
	}
	for _, r := range report.Results {
		o.addResult(r)
	}
}

func (o *FinalOutput) addResult(r db.RunResult) {
	o.Results = append(o.Results, ResultOutput{
		ID:           r.ArticleID,
		IDType:       r.IDType,
		PMCID:        r.PMCID,
		Status:       r.Status,
		MarkdownPath: r.MarkdownPath,
		Error:        r.ErrorMessage,
	})
	o.Stats.TotalIDs++
	switch r.Status {
	case db.StatusConverted:
		o.Stats.Converted++
	case db.StatusAbstractOnly:
		o.Stats.AbstractOnly++
	case db.StatusSkipped:
		o.Stats.Skipped++
	case db.StatusFailed:
		o.Stats.Failed++
	}
}
