package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chriserin/doctag/internal/ui"
)

const mathsSwift = `// @{Maths
//  @description This module contains maths related functions
//  It is still a work in progress, but you can expect to have the
//  following features when it is done:
//    - simple maths.
//    - geometry.

/**
  @{add
    @summary Adds two integers together.
    
    @[params
      @a Int
      @b Int
    @]

    @^return int The sum of the two numbers a and b.
  @}
*/
func add(_ a: Int, _ b: Int) -> Int {
  return a + b;
}

/**
  @{mul
    @summary Multiply two integers together
    
    @[params
      @^firstNumber a Int
      @^secondNumber b Int
    @]

    @^return int The result of the multiplication between a and b.
  @}
*/
func mul(firstNumber a: Int, withSecondNumber b: Int) -> Int {
  return a * b;
}
//@}Maths
`

const mathsSymbols = `functions:
  - name: add
    params:
      - {label: _, name: a, type: Int}
      - {label: _, name: b, type: Int}
    returns: Int
  - name: mul
    params:
      - {label: firstNumber, name: a, type: Int}
      - {label: withSecondNumber, name: b, type: Int}
    returns: Int
`

const geoSwift = `/// @{area
///   @summary Area of a rectangle.
///   @[params
///     @w Double
///     @h Double
func area(_ w: Double, _ h: Double) -> Double { w * h }
`

const geoSymbols = `functions:
  - name: area
    params:
      - {label: _, name: w, type: Double}
      - {label: _, name: h, type: Double}
    returns: Double
`

func inTempDir(t *testing.T) string {
	t.Helper()
	require.NoError(t, ui.SetColor("off", false))
	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(orig) })
	return dir
}

func runInit(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, RunInit(&buf))
	return buf.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeSource writes a source file and, when syms is set, its sidecar table.
func writeSource(t *testing.T, path, src, syms string) {
	t.Helper()
	writeFile(t, path, src)
	if syms != "" {
		writeFile(t, path+".symbols.yaml", syms)
	}
}

// mathsWithWrongType documents add's first parameter as String.
func mathsWithWrongType() string {
	return strings.Replace(mathsSwift, "@a Int", "@a String", 1)
}

func checkOutput(t *testing.T, opts CheckOptions) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	err := RunCheck(context.Background(), &buf, opts)
	return buf.String(), err
}

func runCheck(t *testing.T, files ...string) string {
	t.Helper()
	out, err := checkOutput(t, CheckOptions{Files: files})
	require.NoError(t, err)
	return out
}
