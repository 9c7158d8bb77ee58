package preview

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/pmc2md/internal/common"
	"github.com/dtnitsch/pmc2md/pkg/preview"
)

// PreviewAction renders a markdown file to HTML, or prints its outline with --summary.
func PreviewAction(c *cli.Context) error {
	in := c.String("in")
	src, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", in, err)
	}

	summary := preview.Summarize(src)
	if c.Bool("summary") {
		return common.WriteOutput(os.Stdout, c.String("format"), summary)
	}

	page, err := preview.Page(pageTitle(in, summary), src)
	if err != nil {
		return err
	}

	out := c.String("out")
	if out == "" {
		_, err = os.Stdout.Write(page)
		return err
	}
	if err := os.WriteFile(out, page, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Printf("Wrote %s (%d headings, %d tables)\n", out, len(summary.Outline), summary.Tables)
	return nil
}

// pageTitle is the first level-1 heading, else the file name.
func pageTitle(path string, s preview.Summary) string {
	for _, h := range s.Outline {
		if h.Level == 1 {
			return h.Title
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
