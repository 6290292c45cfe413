package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chriserin/doctag/internal/check"
	"github.com/chriserin/doctag/internal/config"
	"github.com/chriserin/doctag/internal/db"
	"github.com/chriserin/doctag/internal/diag"
	"github.com/chriserin/doctag/internal/ui"
)

var (
	codeFlag   string
	brokenFlag bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the functions of the latest check",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunList(cmd.OutOrStdout(), codeFlag, brokenFlag)
	},
}

func init() {
	listCmd.Flags().StringVar(&codeFlag, "code", "", "Only functions with a diagnostic of this code")
	listCmd.Flags().BoolVar(&brokenFlag, "broken", false, "Only functions whose block is structurally broken")
	rootCmd.AddCommand(listCmd)
}

func RunList(w io.Writer, code string, broken bool) error {
	if code != "" {
		if _, ok := diag.ParseCode(code); !ok {
			return fmt.Errorf("unknown diagnostic code %q", code)
		}
	}
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

	functions, err := db.ListFunctions(sqlDB, run.ID)
	if err != nil {
		return err
	}

	withCode := map[[2]string]bool{}
	if code != "" {
		diags, err := db.ListDiagnostics(sqlDB, run.ID)
		if err != nil {
			return err
		}
		for _, d := range diags {
			if d.Code == code {
				withCode[[2]string{d.File, d.Function}] = true
			}
		}
	}

	var rows [][]string
	for _, fn := range functions {
		if broken && fn.State != check.StateBroken {
			continue
		}
		if code != "" && !withCode[[2]string{fn.File, fn.Name}] {
			continue
		}
		rows = append(rows, []string{fn.File, fn.Name, strconv.Itoa(fn.Diagnostics), fn.State})
	}

	if len(rows) == 0 {
		return nil
	}

	widths := ui.Widths(rows)
	for _, r := range rows {
		ui.ListRow(w, r, widths, 3)
	}
	return nil
}
