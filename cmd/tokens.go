package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/doctag/internal/parser"
	"github.com/chriserin/doctag/internal/source"
	"github.com/chriserin/doctag/internal/ui"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Print the doc-tag tokens of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunTokens(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func RunTokens(w io.Writer, path string) error {
	file, err := source.Load(path)
	if err != nil {
		return err
	}

	tokens, diags := parser.Tokenize(file.Comments())
	for _, tok := range tokens {
		line, col := file.Position(tok.Offset)
		switch tok.Kind {
		case parser.Text:
			fmt.Fprintf(w, "%d:%d\t%s\t%q\n", line, col, tok.Kind, tok.Payload)
		case parser.AttributeLine:
			fmt.Fprintf(w, "%d:%d\t%s\t%s\t%q\n", line, col, tok.Kind, tok.Lexeme(), tok.Payload)
		default:
			fmt.Fprintf(w, "%d:%d\t%s\t%s\n", line, col, tok.Kind, tok.Lexeme())
		}
	}
	for _, d := range diags {
		line, col := file.Position(d.Offset)
		ui.Diagnostic(w, path, line, col, d.Severity.String(), d.Code.String(), d.Message)
	}
	return nil
}
