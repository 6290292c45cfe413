package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func generateSource(functions int) string {
	var buf bytes.Buffer
	for i := 1; i <= functions; i++ {
		buf.WriteString("/**\n")
		fmt.Fprintf(&buf, "  @{fn%d\n", i)
		fmt.Fprintf(&buf, "    @summary Function number %d.\n", i)
		buf.WriteString("    @[params\n")
		buf.WriteString("      @^with x Int the first operand\n")
		buf.WriteString("      @y Int\n")
		buf.WriteString("    @]\n")
		buf.WriteString("    @return Int\n")
		buf.WriteString("  @}\n")
		buf.WriteString("*/\n")
		fmt.Fprintf(&buf, "func fn%d(with x: Int, _ y: Int) -> Int { x + y }\n\n", i)
	}
	return buf.String()
}

func generateSymbols(functions int) string {
	var buf bytes.Buffer
	buf.WriteString("functions:\n")
	for i := 1; i <= functions; i++ {
		fmt.Fprintf(&buf, "  - name: fn%d\n", i)
		buf.WriteString("    params:\n")
		buf.WriteString("      - {label: with, name: x, type: Int}\n")
		buf.WriteString("      - {label: _, name: y, type: Int}\n")
		buf.WriteString("    returns: Int\n")
	}
	return buf.String()
}

func setupBenchProject(b *testing.B, fileCount, functionsPerFile int) {
	b.Helper()
	dir := b.TempDir()
	orig, err := os.Getwd()
	require.NoError(b, err)
	require.NoError(b, os.Chdir(dir))
	b.Cleanup(func() { os.Chdir(orig) })

	var buf bytes.Buffer
	require.NoError(b, RunInit(&buf))

	src, syms := generateSource(functionsPerFile), generateSymbols(functionsPerFile)
	for i := 0; i < fileCount; i++ {
		name := fmt.Sprintf("file_%d.swift", i)
		require.NoError(b, os.WriteFile(name, []byte(src), 0o644))
		require.NoError(b, os.WriteFile(name+".symbols.yaml", []byte(syms), 0o644))
	}
}

func benchmarkCheck(b *testing.B, fileCount, functionsPerFile int, noCache bool) {
	setupBenchProject(b, fileCount, functionsPerFile)
	opts := CheckOptions{NoCache: noCache}
	var buf bytes.Buffer
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		require.NoError(b, RunCheck(context.Background(), &buf, opts))
	}
}

func BenchmarkCheck_Small(b *testing.B) { benchmarkCheck(b, 5, 10, true) }

func BenchmarkCheck_Medium(b *testing.B) { benchmarkCheck(b, 50, 20, true) }

func BenchmarkCheck_Large(b *testing.B) { benchmarkCheck(b, 200, 50, true) }

// BenchmarkCheck_Cached: every file is served from the result cache after the first pass
func BenchmarkCheck_Cached(b *testing.B) { benchmarkCheck(b, 200, 50, false) }
