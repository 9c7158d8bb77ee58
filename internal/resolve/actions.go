package resolve

import (
	"os"
	"sort"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/pmc2md/internal/common"
	"github.com/dtnitsch/pmc2md/pkg/resolver"
)

// Mapping is one resolved identifier. PMCID is empty when the article has
// no PubMed Central copy.
type Mapping struct {
	PMID  string `json:"pmid" yaml:"pmid"`
	PMCID string `json:"pmcid" yaml:"pmcid"`
}

// Output is the structured output of a resolve run.
type Output struct {
	Resolved    int       `json:"resolved" yaml:"resolved"`
	Missing     int       `json:"missing" yaml:"missing"`
	Invalid     []string  `json:"invalid,omitempty" yaml:"invalid,omitempty"`
	ResultsFile string    `json:"results_file,omitempty" yaml:"results_file,omitempty"`
	Mappings    []Mapping `json:"mappings" yaml:"mappings"`
}

// ResolveAction maps PMIDs to PMCIDs through the cached ID converter.
func ResolveAction(c *cli.Context) error {
	var raw []string
	if c.IsSet("pmids") {
		raw = append(raw, common.SplitIDs(c.String("pmids"))...)
	}
	if c.IsSet("file") {
		lines, err := common.ReadIDFile(c.String("file"))
		if err != nil {
			return err
		}
		raw = append(raw, lines...)
	}
	raw = append(raw, c.Args().Slice()...)

	pmids, invalid := common.SanitizeAndValidateIDs(raw, common.IsPMID)
	if len(pmids) == 0 {
		return cli.Exit("Error: No valid PMIDs provided\n\nUsage:\n  pmc2md resolve --pmids \"12345678,23456789\"", 1)
	}

	app, err := common.NewApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	results, err := app.Resolver.Resolve(c.Context, pmids)
	if err != nil {
		return err
	}

	out := BuildOutput(pmids, results)
	out.Invalid = invalid

	if c.Bool("save") {
		path, err := resolver.SaveResults(app.Config.DataDir, results, time.Now())
		if err != nil {
			return err
		}
		out.ResultsFile = path
	}

	return common.WriteOutput(os.Stdout, c.String("format"), out)
}

// BuildOutput orders mappings as requested, then by id for anything the
// resolver returned beyond the request.
func BuildOutput(pmids []string, results map[string]string) *Output {
	out := &Output{}
	seen := make(map[string]bool, len(pmids))
	add := func(id string) {
		pmcid := results[id]
		out.Mappings = append(out.Mappings, Mapping{PMID: id, PMCID: pmcid})
		if pmcid == "" {
			out.Missing++
		} else {
			out.Resolved++
		}
	}

	for _, id := range pmids {
		seen[id] = true
		add(id)
	}

	var extra []string
	for id := range results {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		add(id)
	}
	return out
}
