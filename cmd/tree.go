package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chriserin/doctag/internal/parser"
	"github.com/chriserin/doctag/internal/source"
	"github.com/chriserin/doctag/internal/ui"
)

var treeCmd = &cobra.Command{
	Use:   "tree <file>",
	Short: "Print the tag tree of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunTree(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

func RunTree(w io.Writer, path string) error {
	file, err := source.Load(path)
	if err != nil {
		return err
	}
	forest := parser.Parse(file.Comments())

	type frame struct {
		node  *parser.DocNode
		depth int
	}
	stack := make([]frame, 0, len(forest.Roots))
	for i := len(forest.Roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: forest.Roots[i]})
	}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		line, col := file.Position(fr.node.Start)
		entry := fmt.Sprintf("%s%s  %d:%d", strings.Repeat("  ", fr.depth), fr.node, line, col)
		if keys := attributeKeys(fr.node); keys != "" {
			entry += "  [" + keys + "]"
		}
		if fr.node.End < 0 {
			entry += "  (unclosed)"
		}
		fmt.Fprintln(w, entry)

		for i := len(fr.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: fr.node.Children[i], depth: fr.depth + 1})
		}
	}

	for _, d := range forest.Diagnostics {
		line, col := file.Position(d.Offset)
		ui.Diagnostic(w, path, line, col, d.Severity.String(), d.Code.String(), d.Message)
	}
	return nil
}

func attributeKeys(n *parser.DocNode) string {
	keys := make([]string, len(n.Attributes))
	for i, a := range n.Attributes {
		if a.Caret {
			keys[i] = "^" + a.Key
		} else {
			keys[i] = a.Key
		}
	}
	return strings.Join(keys, " ")
}
