package parser

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/chriserin/doctag/internal/diag"
	"github.com/chriserin/doctag/internal/symbols"
)

// Result is the outcome for one declaration. Doc is nil when the function has
// no documentation block or when its block is structurally broken; in the
// latter case Diagnostics holds exactly the structural findings.
type Result struct {
	Function    string
	Doc         *FunctionDoc
	Diagnostics []diag.Diagnostic
	Broken      bool
}

// Process extracts and validates the documentation of fn from f. Findings
// inside a nested block that documents another function of table belong to
// that function, not to fn. table may be nil.
func Process(f *Forest, table *symbols.Table, fn symbols.Function, opts Options) Result {
	res := Result{Function: fn.Name}

	node := f.Find(fn.Name)
	if node == nil {
		if opts.ReportUndocumented {
			res.Diagnostics = []diag.Diagnostic{diag.Warningf(diag.Undocumented, 0, "%s has no @{%s block", fn.Signature(), fn.Name)}
		}
		return res
	}

	nested := nestedFunctionBlocks(node, table)
	var structural, recoverable []diag.Diagnostic
	for _, d := range f.DiagnosticsIn(node) {
		if containedIn(nested, d.Offset) {
			continue
		}
		if d.Code.Structural() {
			structural = append(structural, d)
		} else {
			recoverable = append(recoverable, d)
		}
	}
	if len(structural) > 0 {
		res.Broken = true
		res.Diagnostics = structural
		return res
	}

	doc, diags := Transform(node, fn, opts)
	res.Doc = doc
	res.Diagnostics = append(recoverable, diags...)
	diag.Sort(res.Diagnostics)
	return res
}

// ProcessAll runs Process for every function in table concurrently. Results
// keep the table's order. jobs <= 0 uses GOMAXPROCS workers.
func ProcessAll(ctx context.Context, f *Forest, table *symbols.Table, opts Options, jobs int) ([]Result, error) {
	results := make([]Result, len(table.Functions))
	if len(results) == 0 {
		return results, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(results)))
	for i, fn := range table.Functions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// each goroutine writes only its own index
			results[i] = Process(f, fn, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// nestedFunctionBlocks returns the outermost descendant blocks of node that
// document a function of table.
func nestedFunctionBlocks(node *DocNode, table *symbols.Table) []*DocNode {
	if table == nil {
		return nil
	}
	var out []*DocNode
	stack := append([]*DocNode(nil), node.Children...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Kind == Block && n.Tag != node.Tag {
			if _, ok := table.Lookup(n.Tag); ok {
				out = append(out, n)
				continue
			}
		}
		stack = append(stack, n.Children...)
	}
	return out
}

func containedIn(nodes []*DocNode, offset int) bool {
	for _, n := range nodes {
		if n.Contains(offset) {
			return true
		}
	}
	return false
}

// Unattributed returns the forest diagnostics that fall outside every block
// documenting a function of table, e.g. problems in a module wrapper.
func Unattributed(f *Forest, table *symbols.Table) []diag.Diagnostic {
	var nodes []*DocNode
	for _, fn := range table.Functions {
		if n := f.Find(fn.Name); n != nil {
			nodes = append(nodes, n)
		}
	}
	var out []diag.Diagnostic
	for _, d := range f.Diagnostics {
		claimed := false
		for _, n := range nodes {
			if n.Contains(d.Offset) {
				claimed = true
				break
			}
		}
		if !claimed {
			out = append(out, d)
		}
	}
	return out
}
