package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/pmc2md/internal/db"
	"github.com/dtnitsch/pmc2md/internal/fetch"
	"github.com/dtnitsch/pmc2md/internal/preview"
	"github.com/dtnitsch/pmc2md/internal/records"
	"github.com/dtnitsch/pmc2md/internal/resolve"
	"github.com/dtnitsch/pmc2md/internal/serve"
)

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "format",
		Value: "yaml",
		Usage: "Output format: yaml or json",
	}
}

func overwriteFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "overwrite",
		Usage: "Replace existing markdown files",
	}
}

func noSupplementsFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "no-supplements",
		Usage: "Do not append supplementary material",
	}
}

func main() {
	app := &cli.App{
		Name:  "pmc2md",
		Usage: "Convert PubMed Central articles to Markdown",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to a YAML config file",
				EnvVars: []string{"PMC2MD_CONFIG"},
				Value:   "pmc2md.yaml",
			},
			&cli.StringFlag{
				Name:    "email",
				Usage:   "Contact email sent to NCBI services",
				EnvVars: []string{"NCBI_EMAIL"},
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Directory for html, markdown and cache files",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent NCBI requests and conversion workers",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log debug output",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "fetch",
				Usage: "Resolve, download and convert articles",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "pmids", Usage: "Comma-separated PubMed IDs"},
					&cli.StringFlag{Name: "pmcids", Usage: "Comma-separated PMC IDs"},
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "File with one PMID or PMCID per line"},
					overwriteFlag(),
					noSupplementsFlag(),
					formatFlag(),
				},
				Action: fetch.FetchAction,
			},
			{
				Name:  "convert",
				Usage: "Convert local HTML files (default: the stored pages under the data directory)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Usage: "HTML file or directory"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file or directory"},
					overwriteFlag(),
					noSupplementsFlag(),
					formatFlag(),
				},
				Action: fetch.ConvertAction,
			},
			{
				Name:      "resolve",
				Usage:     "Map PMIDs to PMCIDs",
				ArgsUsage: "[PMID...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "pmids", Usage: "Comma-separated PubMed IDs"},
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "File with one PMID per line"},
					&cli.BoolFlag{Name: "save", Usage: "Also write a timestamped JSON results file to the data directory"},
					formatFlag(),
				},
				Action: resolve.ResolveAction,
			},
			{
				Name:   "supplements",
				Usage:  "Append supplementary material to existing markdown files",
				Flags:  []cli.Flag{overwriteFlag()},
				Action: fetch.SupplementsAction,
			},
			{
				Name:  "records",
				Usage: "Rebuild the records table from stored markdown",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-language", Usage: "Skip language detection"},
					&cli.BoolFlag{Name: "summary", Usage: "Print only the record count"},
					formatFlag(),
				},
				Action: records.RecordsAction,
			},
			{
				Name:   "clear-cache",
				Usage:  "Remove the identifier and supplement caches",
				Action: fetch.ClearCacheAction,
			},
			{
				Name:  "serve",
				Usage: "Run the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "Listen address (default from config, :8000)"},
				},
				Action: serve.ServeAction,
			},
			{
				Name:  "preview",
				Usage: "Render a markdown file to HTML",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Usage: "Markdown file", Required: true},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "HTML output file (default: stdout)"},
					&cli.BoolFlag{Name: "summary", Usage: "Print the outline and counts instead of HTML"},
					formatFlag(),
				},
				Action: preview.PreviewAction,
			},
			{
				Name:  "db",
				Usage: "Inspect stored runs and records",
				Subcommands: []*cli.Command{
					{
						Name:  "runs",
						Usage: "List recent runs",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum runs to show"},
						},
						Action: db.RunsAction,
					},
					{
						Name:      "run",
						Usage:     "Show one run (default: latest)",
						ArgsUsage: "[run-id]",
						Action:    db.RunAction,
					},
					{
						Name:   "records",
						Usage:  "Print the records table",
						Flags:  []cli.Flag{formatFlag()},
						Action: db.RecordsListAction,
					},
					{
						Name:      "record",
						Usage:     "Print the record for a PMCID",
						ArgsUsage: "<PMCID>",
						Flags:     []cli.Flag{formatFlag()},
						Action:    db.RecordAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
