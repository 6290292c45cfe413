package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chriserin/doctag/internal/source"
	"github.com/chriserin/doctag/internal/symbols"
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
//@}Maths`

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

func lines(text string) []source.Line {
	return source.Lines(text, 0)
}

func mathsTable(t *testing.T) *symbols.Table {
	t.Helper()
	table, err := symbols.Parse([]byte(mathsSymbols))
	require.NoError(t, err)
	return table
}

func mathsFunc(t *testing.T, name string) symbols.Function {
	t.Helper()
	fn, ok := mathsTable(t).Lookup(name)
	require.True(t, ok)
	return fn
}
