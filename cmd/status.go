package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/doctag/internal/check"
	"github.com/chriserin/doctag/internal/config"
	"github.com/chriserin/doctag/internal/db"
	"github.com/chriserin/doctag/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the latest check",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunStatus(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

var stateOrder = []string{check.StateOK, check.StateWarn, check.StateError, check.StateBroken, check.StateUndocumented}

func RunStatus(w io.Writer) error {
	if err := requireInit(); err != nil {
		return err
	}

	sqlDB, err := db.Open(config.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	run, err := db.LatestRun(sqlDB)
	if errors.Is(err, db.ErrNoRuns) {
		fmt.Fprintln(w, "No checks recorded yet")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Run #%d at %s\n", run.Seq, run.StartedAt)

	functions, err := db.ListFunctions(sqlDB, run.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Functions: %d\n", len(functions))
	states := map[string]int{}
	for _, fn := range functions {
		states[fn.State]++
	}
	for _, s := range stateOrder {
		if states[s] > 0 {
			ui.CountLine(w, s, states[s])
		}
	}

	bySeverity, err := db.CountDiagnostics(sqlDB, run.ID, "severity")
	if err != nil {
		return err
	}
	total := 0
	for _, c := range bySeverity {
		total += c.Count
	}
	fmt.Fprintf(w, "Diagnostics: %d\n", total)
	if total == 0 {
		return nil
	}
	for _, c := range bySeverity {
		ui.CountLine(w, c.Key, c.Count)
	}

	byCode, err := db.CountDiagnostics(sqlDB, run.ID, "code")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "By code:")
	for _, c := range byCode {
		ui.CountLine(w, c.Key, c.Count)
	}
	return nil
}
