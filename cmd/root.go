package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chriserin/doctag/internal/check"
	"github.com/chriserin/doctag/internal/config"
	"github.com/chriserin/doctag/internal/logger"
	"github.com/chriserin/doctag/internal/ui"
)

var (
	verboseFlag bool
	colorFlag   string
)

var rootCmd = &cobra.Command{
	Use:           "doctag",
	Short:         "doctag — check @-tag doc comments against declarations",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verboseFlag)
		logger.SetOutput(cmd.ErrOrStderr())
		return ui.SetColor(colorFlag, term.IsTerminal(int(os.Stdout.Fd())))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log progress to stderr")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "Color output: auto, on or off")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, check.ErrDiagnostics) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

var errNotInitialized = errors.New("run `doctag init` first")

func initialized() bool {
	info, err := os.Stat(config.Dir)
	return err == nil && info.IsDir()
}

func requireInit() error {
	if !initialized() {
		return errNotInitialized
	}
	return nil
}
