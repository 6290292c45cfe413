package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chriserin/doctag/internal/config"
	"github.com/chriserin/doctag/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize doctag in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunInit(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func RunInit(w io.Writer) error {
	// .doctag/ directory
	_, err := os.Stat(config.Dir)
	dirExists := err == nil
	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return fmt.Errorf("creating %s directory: %w", config.Dir, err)
	}
	report(w, config.Dir+"/", dirExists)

	// database
	_, err = os.Stat(config.DBPath)
	dbExists := err == nil
	sqlDB, err := db.Open(config.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	sqlDB.Close()
	report(w, config.DBPath, dbExists)

	// config
	_, err = os.Stat(config.File)
	cfgExists := err == nil
	if !cfgExists {
		if err := config.Default().Write(config.File); err != nil {
			return fmt.Errorf("writing %s: %w", config.File, err)
		}
	}
	report(w, config.File, cfgExists)

	// gitignore
	msgs, err := ensureGitignore(config.DBPath, config.CacheDir+"/")
	if err != nil {
		return fmt.Errorf("updating .gitignore: %w", err)
	}
	for _, msg := range msgs {
		fmt.Fprintln(w, msg)
	}

	return nil
}

func report(w io.Writer, path string, existed bool) {
	if existed {
		fmt.Fprintf(w, "%s already exists\n", path)
	} else {
		fmt.Fprintf(w, "%s created\n", path)
	}
}

func ensureGitignore(entries ...string) ([]string, error) {
	data, err := os.ReadFile(".gitignore")
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	var msgs []string
	if os.IsNotExist(err) {
		msgs = append(msgs, ".gitignore created")
	}

	present := map[string]bool{}
	for _, line := range strings.Split(string(data), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	content := string(data)
	changed := false
	for _, entry := range entries {
		if present[entry] {
			msgs = append(msgs, entry+" already in .gitignore")
			continue
		}
		if len(content) > 0 && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		content += entry + "\n"
		changed = true
		msgs = append(msgs, entry+" added to .gitignore")
	}

	if changed {
		if err := os.WriteFile(".gitignore", []byte(content), 0o644); err != nil {
			return nil, err
		}
	}
	return msgs, nil
}
