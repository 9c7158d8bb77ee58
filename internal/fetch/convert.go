package fetch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/pmc2md/internal/common"
	"github.com/dtnitsch/pmc2md/models"
	"github.com/dtnitsch/pmc2md/pkg/converter"
	"github.com/dtnitsch/pmc2md/pkg/db"
)

// ConvertAction converts local HTML. Without --in it converts the stored
// pages under the data directory and attaches supplements.
func ConvertAction(c *cli.Context) error {
	if !c.IsSet("in") {
		return convertStored(c)
	}

	logger := common.NewLogger(c)
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}

	in := c.String("in")
	info, err := os.Stat(in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	if !info.IsDir() {
		return convertFile(in, c.String("out"))
	}

	startTime := time.Now()
	outDir := c.String("out")
	if outDir == "" {
		outDir = in
	}
	out, err := convertDir(logger, in, outDir, cfg.Concurrency, c.Bool("overwrite"))
	if err != nil {
		return err
	}
	out.Stats.TotalTimeSeconds = time.Since(startTime).Seconds()
	if err := common.WriteOutput(os.Stdout, c.String("format"), out); err != nil {
		return err
	}
	if code := common.ExitCode(out.Stats.Failed, out.Stats.TotalIDs); code != 0 {
		return cli.Exit("", code)
	}
	return nil
}

func convertStored(c *cli.Context) error {
	startTime := time.Now()
	app, err := common.NewApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	d := app.Downloader
	d.SkipSupplements = c.Bool("no-supplements")
	report, err := d.LocalHTMLToMarkdown(c.Context, c.Bool("overwrite"))
	if err != nil {
		return err
	}

	out := &FinalOutput{Status: "success"}
	out.add(report)
	out.Stats.TotalTimeSeconds = time.Since(startTime).Seconds()
	if out.Stats.Failed > 0 {
		out.Status = "partial_failure"
	}
	return common.WriteOutput(os.Stdout, c.String("format"), out)
}

// convertFile converts one page. An empty out writes to stdout; an existing
// directory receives <stem>.md.
func convertFile(in, out string) error {
	html, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", in, err)
	}
	markdown, err := converter.New().Convert(string(html))
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", in, err)
	}

	if out == "" {
		_, err = fmt.Fprint(os.Stdout, markdown)
		return err
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		out = filepath.Join(out, stem(in)+".md")
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return err
	}
	return os.WriteFile(out, []byte(markdown), 0644)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type convertJob struct {
	index int
	path  string
}

// convertDir converts every .html file in dir with a fixed worker pool.
func convertDir(logger *slog.Logger, dir, outDir string, workers int, overwrite bool) (*FinalOutput, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		logger.Warn("no HTML files found", "dir", dir)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if workers <= 0 {
		workers = 1
	}

	conv := converter.New()
	results := make([]db.RunResult, len(paths))
	jobs := make(chan convertJob, len(paths))

	var wg sync.WaitGroup
	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results[job.index] = convertOne(logger, conv, job.path, outDir, overwrite)
			}
		}()
	}
	for i, p := range paths {
		jobs <- convertJob{index: i, path: p}
	}
	close(jobs)
	wg.Wait()

	out := &FinalOutput{Status: "success"}
	for _, r := range results {
		out.addResult(r)
	}
	if out.Stats.Failed > 0 {
		out.Status = "partial_failure"
	}
	return out, nil
}

func convertOne(logger *slog.Logger, conv *converter.Converter, path, outDir string, overwrite bool) db.RunResult {
	id := stem(path)
	mdPath := filepath.Join(outDir, id+".md")
	res := db.RunResult{ArticleID: id, IDType: string(models.IDTypePMCID), MarkdownPath: mdPath}
	if common.IsPMCID(id) {
		res.PMCID = id
	}

	if _, err := os.Stat(mdPath); err == nil && !overwrite {
		res.Status = db.StatusSkipped
		return res
	}

	html, err := os.ReadFile(path)
	if err == nil {
		var markdown string
		markdown, err = conv.Convert(string(html))
		if err == nil {
			err = os.WriteFile(mdPath, []byte(markdown), 0644)
		}
	}
	if err != nil {
		if errors.Is(err, converter.ErrEmptyInput) {
			logger.Warn("empty HTML file", "path", path)
		} else {
			logger.Error("conversion failed", "path", path, "error", err)
		}
		res.Status = db.StatusFailed
		res.ErrorMessage = err.Error()
		return res
	}
	res.Status = db.StatusConverted
	return res
}
