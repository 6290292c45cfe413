// Package check runs the doc-tag pipeline over source files: it pairs each
// file with its symbol table, processes every declaration and condenses the
// outcome into the records kept in the run history.
package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/chriserin/doctag/internal/cache"
	"github.com/chriserin/doctag/internal/config"
	"github.com/chriserin/doctag/internal/db"
	"github.com/chriserin/doctag/internal/diag"
	"github.com/chriserin/doctag/internal/logger"
	"github.com/chriserin/doctag/internal/parser"
	"github.com/chriserin/doctag/internal/source"
	"github.com/chriserin/doctag/internal/symbols"
)

// ErrDiagnostics is returned when findings reach the configured fail_on level.
var ErrDiagnostics = errors.New("documentation check failed")

// Function states recorded per declaration.
const (
	StateOK           = "ok"
	StateWarn         = "warn"
	StateError        = "error"
	StateBroken       = "broken"
	StateUndocumented = "undocumented"
)

type FileResult struct {
	Path         string
	SymbolsPath  string
	File         *source.File
	Results      []parser.Result
	Unattributed []diag.Diagnostic
	Cached       bool
	Skipped      bool // no symbol table next to the file
}

// Diagnostics returns every finding of the file in offset order.
func (fr FileResult) Diagnostics() []diag.Diagnostic {
	out := append([]diag.Diagnostic(nil), fr.Unattributed...)
	for _, r := range fr.Results {
		out = append(out, r.Diagnostics...)
	}
	diag.Sort(out)
	return out
}

// State condenses the results of a file into the worst function state.
func (fr FileResult) State() string {
	if fr.Skipped {
		return "skip"
	}
	ds := fr.Diagnostics()
	switch {
	case diag.HasErrors(ds):
		return StateError
	case diag.HasWarnings(ds):
		return StateWarn
	}
	return StateOK
}

// FunctionState classifies one processed declaration.
func FunctionState(r parser.Result) string {
	switch {
	case r.Broken:
		return StateBroken
	case r.Doc == nil:
		return StateUndocumented
	case diag.HasErrors(r.Diagnostics):
		return StateError
	case diag.HasWarnings(r.Diagnostics):
		return StateWarn
	}
	return StateOK
}

type Checker struct {
	Config config.Config
	Cache  *cache.Cache // nil disables caching

	// SymbolsPath overrides the sidecar lookup, for single-file checks.
	SymbolsPath string
}

func New(cfg config.Config, c *cache.Cache) *Checker {
	return &Checker{Config: cfg, Cache: c}
}

func (c *Checker) jobs() int {
	if c.Config.Jobs > 0 {
		return c.Config.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

// Run checks paths concurrently. Results keep the order of paths.
func (c *Checker) Run(ctx context.Context, paths []string) ([]FileResult, error) {
	if c.SymbolsPath != "" && len(paths) != 1 {
		return nil, fmt.Errorf("a symbol table override needs exactly one file, got %d", len(paths))
	}

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.jobs())
	for i, path := range paths {
		g.Go(func() error {
			fr, err := c.CheckFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = fr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Checker) symbolsPathFor(path string) string {
	if c.SymbolsPath != "" {
		return c.SymbolsPath
	}
	return c.Config.SymbolsPath(path)
}

// CheckFile processes one source file against its symbol table, consulting
// the cache first.
func (c *Checker) CheckFile(ctx context.Context, path string) (FileResult, error) {
	file, err := source.Load(path)
	if err != nil {
		return FileResult{}, err
	}
	fr := FileResult{Path: path, File: file}

	symPath := c.symbolsPathFor(path)
	fr.SymbolsPath = symPath
	symData, err := os.ReadFile(symPath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("skipping %s: no symbol table at %s", path, symPath)
		fr.Skipped = true
		return fr, nil
	}
	if err != nil {
		return FileResult{}, fmt.Errorf("reading %s: %w", symPath, err)
	}
	table, err := symbols.Parse(symData)
	if err != nil {
		return FileResult{}, fmt.Errorf("%s: %w", symPath, err)
	}

	opts := c.Config.Options()
	key := cache.Key(file.Content, symData, []byte(fmt.Sprintf("%+v", opts)))
	var entry cache.Entry
	hit, err := c.Cache.Get(key, &entry)
	if err != nil {
		logger.Warn("ignoring cache entry for %s: %v", path, err)
	}
	if hit {
		logger.Debug("cache hit for %s", path)
		fr.Results = entry.Results
		fr.Unattributed = entry.Unattributed
		fr.Cached = true
		return fr, nil
	}

	forest := parser.Parse(file.Comments())
	fr.Results, err = parser.ProcessAll(ctx, forest, table, opts, c.jobs())
	if err != nil {
		return FileResult{}, err
	}
	fr.Unattributed = parser.Unattributed(forest, table)
	logger.Debug("checked %s: %d functions, %d tags", path, len(fr.Results), len(forest.Roots))

	if err := c.Cache.Put(key, &cache.Entry{Path: path, Results: fr.Results, Unattributed: fr.Unattributed}); err != nil {
		logger.Warn("caching %s: %v", path, err)
	}
	return fr, nil
}

// ResolveFiles expands patterns (plain paths or globs) into a sorted,
// de-duplicated file list. A plain path that does not exist is an error;
// a glob that matches nothing is not.
func ResolveFiles(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		if len(matches) == 0 && !hasMeta(p) {
			return nil, fmt.Errorf("%s: %w", p, os.ErrNotExist)
		}
		for _, m := range matches {
			m = filepath.Clean(m)
			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func hasMeta(p string) bool {
	for _, r := range p {
		switch r {
		case '*', '?', '[', '\\':
			return true
		}
	}
	return false
}

// Records converts results into the rows stored for a run.
func Records(results []FileResult) []db.FileRecord {
	var out []db.FileRecord
	for _, fr := range results {
		if fr.Skipped {
			continue
		}
		rec := db.FileRecord{Path: fr.Path, SymbolsPath: fr.SymbolsPath}
		add := func(function string, d diag.Diagnostic) {
			line, col := fr.File.Position(d.Offset)
			rec.Diagnostics = append(rec.Diagnostics, db.DiagnosticRecord{
				File:     fr.Path,
				Function: function,
				Severity: d.Severity.String(),
				Code:     d.Code.String(),
				Message:  d.Message,
				Offset:   d.Offset,
				Line:     line,
				Col:      col,
			})
		}
		for _, d := range fr.Unattributed {
			add("", d)
		}
		for _, r := range fr.Results {
			summary := ""
			if r.Doc != nil {
				summary = r.Doc.Summary
			}
			rec.Functions = append(rec.Functions, db.FunctionRecord{
				File:    fr.Path,
				Name:    r.Function,
				Summary: summary,
				State:   FunctionState(r),
			})
			for _, d := range r.Diagnostics {
				add(r.Function, d)
			}
		}
		out = append(out, rec)
	}
	return out
}

// Totals counts functions, errors and warnings across results.
func Totals(results []FileResult) (functions, errs, warnings int) {
	for _, fr := range results {
		functions += len(fr.Results)
		for _, d := range fr.Diagnostics() {
			if d.Severity == diag.SevError {
				errs++
			} else {
				warnings++
			}
		}
	}
	return functions, errs, warnings
}

// Failed reports whether the totals reach the fail_on threshold.
func Failed(failOn string, errs, warnings int) bool {
	switch failOn {
	case config.FailOnError:
		return errs > 0
	case config.FailOnWarning:
		return errs+warnings > 0
	}
	return false
}
