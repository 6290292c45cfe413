package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/doctag/internal/check"
	"github.com/chriserin/doctag/internal/config"
	"github.com/chriserin/doctag/internal/db"
	"github.com/chriserin/doctag/internal/parser"
	"github.com/chriserin/doctag/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <function>",
	Short: "Show the extracted documentation of a function",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunShow(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func RunShow(w io.Writer, name string) error {
	if err := requireInit(); err != nil {
		return err
	}

	sqlDB, err := db.Open(config.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	run, err := db.LatestRun(sqlDB)
	if err != nil {
		return err
	}
	rec, err := db.FindFunction(sqlDB, run.ID, name)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("function %s not found in the latest check", name)
	}
	if err != nil {
		return err
	}

	cfg, err := config.Load(config.File)
	if err != nil {
		return err
	}
	checker := check.New(cfg, nil)
	checker.SymbolsPath = rec.SymbolsPath
	fr, err := checker.CheckFile(context.Background(), rec.File)
	if err != nil {
		return err
	}
	if fr.Skipped {
		return fmt.Errorf("%s no longer has a symbol table", rec.File)
	}

	var res *parser.Result
	for i := range fr.Results {
		if fr.Results[i].Function == name {
			res = &fr.Results[i]
			break
		}
	}
	if res == nil {
		return fmt.Errorf("function %s is no longer declared in %s", name, rec.File)
	}

	ui.ShowHeader(w, name, rec.File)
	ui.ShowState(w, check.FunctionState(*res))

	if doc := res.Doc; doc != nil {
		if doc.Summary != "" {
			ui.ShowSection(w, "Summary")
			ui.ShowText(w, doc.Summary)
		}
		if doc.Description != "" {
			ui.ShowSection(w, "Description")
			ui.ShowText(w, doc.Description)
		}
		if len(doc.Params) > 0 {
			ui.ShowSection(w, "Parameters")
			for _, p := range doc.Params {
				ui.ShowParam(w, p.ExternalLabel, p.InternalName, p.Type, p.Description)
			}
		}
		if doc.ReturnType != "" {
			ui.ShowSection(w, "Returns")
			ret := doc.ReturnType
			if doc.ReturnDescription != "" {
				ret += "  " + doc.ReturnDescription
			}
			ui.ShowText(w, ret)
		}
	}

	if len(res.Diagnostics) > 0 {
		ui.ShowSection(w, "Diagnostics")
		for _, d := range res.Diagnostics {
			line, col := fr.File.Position(d.Offset)
			ui.Diagnostic(w, fr.Path, line, col, d.Severity.String(), d.Code.String(), d.Message)
		}
	}
	return nil
}
