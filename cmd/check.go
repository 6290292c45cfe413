package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/doctag/internal/cache"
	"github.com/chriserin/doctag/internal/check"
	"github.com/chriserin/doctag/internal/config"
	"github.com/chriserin/doctag/internal/db"
	"github.com/chriserin/doctag/internal/logger"
	"github.com/chriserin/doctag/internal/ui"
)

type CheckOptions struct {
	Files   []string
	Symbols string
	NoCache bool
	Format  string
}

var checkOpts CheckOptions

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Check doc comments against their declarations",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := checkOpts
		opts.Files = args
		return RunCheck(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkOpts.Symbols, "symbols", "", "Symbol table for a single file instead of its sidecar")
	checkCmd.Flags().BoolVar(&checkOpts.NoCache, "no-cache", false, "Ignore and do not update cached results")
	checkCmd.Flags().StringVar(&checkOpts.Format, "format", "text", "Output format: text or json")
	rootCmd.AddCommand(checkCmd)
}

func RunCheck(ctx context.Context, w io.Writer, opts CheckOptions) error {
	if opts.Format == "" {
		opts.Format = "text"
	}
	if opts.Format != "text" && opts.Format != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", opts.Format)
	}

	cfg, err := config.Load(config.File)
	if err != nil {
		return err
	}

	patterns := opts.Files
	if len(patterns) == 0 {
		patterns = cfg.Sources
	}
	files, err := check.ResolveFiles(patterns)
	if err != nil {
		return err
	}

	var c *cache.Cache
	if cfg.Cache && !opts.NoCache && initialized() {
		c, err = cache.Open(config.CacheDir)
		if err != nil {
			return err
		}
	}

	checker := check.New(cfg, c)
	checker.SymbolsPath = opts.Symbols
	results, err := checker.Run(ctx, files)
	if err != nil {
		return err
	}

	if initialized() {
		sqlDB, err := db.Open(config.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer sqlDB.Close()
		run, err := db.SaveRun(sqlDB, check.Records(results))
		if err != nil {
			return err
		}
		logger.Info("recorded run %d (%s)", run.Seq, run.ID)
	}

	functions, errs, warnings := check.Totals(results)
	if opts.Format == "json" {
		if err := writeCheckJSON(w, results, functions, errs, warnings); err != nil {
			return err
		}
	} else {
		writeCheckText(w, results, cfg.MaxDiagnostics, functions, errs, warnings)
	}

	if check.Failed(cfg.FailOn, errs, warnings) {
		return check.ErrDiagnostics
	}
	return nil
}

func writeCheckText(w io.Writer, results []check.FileResult, limit, functions, errs, warnings int) {
	shown, hidden, checked := 0, 0, 0
	for _, fr := range results {
		ui.FileLine(w, fr.State(), fr.Path, fr.Cached)
		if fr.Skipped {
			continue
		}
		checked++
		for _, d := range fr.Diagnostics() {
			if limit > 0 && shown >= limit {
				hidden++
				continue
			}
			line, col := fr.File.Position(d.Offset)
			ui.Diagnostic(w, fr.Path, line, col, d.Severity.String(), d.Code.String(), d.Message)
			shown++
		}
	}
	if hidden > 0 {
		ui.TruncatedLine(w, hidden)
	}
	ui.SummaryLine(w, checked, functions, errs, warnings)
}

type jsonDiagnostic struct {
	Function string `json:"function,omitempty"`
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Offset   int    `json:"offset"`
	Line     int    `json:"line"`
	Col      int    `json:"col"`
}

type jsonFunction struct {
	Name    string `json:"name"`
	Summary string `json:"summary,omitempty"`
	State   string `json:"state"`
}

type jsonFile struct {
	Path        string           `json:"path"`
	State       string           `json:"state"`
	Cached      bool             `json:"cached"`
	Functions   []jsonFunction   `json:"functions"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

type jsonReport struct {
	Files     []jsonFile `json:"files"`
	Functions int        `json:"functions"`
	Errors    int        `json:"errors"`
	Warnings  int        `json:"warnings"`
}

func writeCheckJSON(w io.Writer, results []check.FileResult, functions, errs, warnings int) error {
	report := jsonReport{Files: []jsonFile{}, Functions: functions, Errors: errs, Warnings: warnings}
	records := check.Records(results)
	i := 0
	for _, fr := range results {
		jf := jsonFile{Path: fr.Path, State: fr.State(), Cached: fr.Cached, Functions: []jsonFunction{}, Diagnostics: []jsonDiagnostic{}}
		if !fr.Skipped {
			rec := records[i]
			i++
			for _, fn := range rec.Functions {
				jf.Functions = append(jf.Functions, jsonFunction{Name: fn.Name, Summary: fn.Summary, State: fn.State})
			}
			for _, d := range rec.Diagnostics {
				jf.Diagnostics = append(jf.Diagnostics, jsonDiagnostic{
					Function: d.Function,
					Severity: d.Severity,
					Code:     d.Code,
					Message:  d.Message,
					Offset:   d.Offset,
					Line:     d.Line,
					Col:      d.Col,
				})
			}
		}
		report.Files = append(report.Files, jf)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
