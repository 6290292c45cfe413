package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/doctag/internal/diag"
	"github.com/chriserin/doctag/internal/source"
	"github.com/chriserin/doctag/internal/symbols"
)

func TestProcessAll_MathsExample(t *testing.T) {
	f := Parse(source.Comments(mathsSwift))
	results, err := ProcessAll(context.Background(), f, mathsTable(t), Options{}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "add", results[0].Function)
	assert.Equal(t, "mul", results[1].Function)
	for _, r := range results {
		assert.NotNil(t, r.Doc)
		assert.False(t, r.Broken)
		assert.Empty(t, r.Diagnostics)
	}
	assert.Empty(t, Unattributed(f, mathsTable(t)))
}

func TestProcessAll_EmptyTable(t *testing.T) {
	results, err := ProcessAll(context.Background(), &Forest{}, &symbols.Table{}, Options{}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestProcessAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ProcessAll(ctx, Parse(source.Comments(mathsSwift)), mathsTable(t), Options{}, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestProcess_UnclosedBlockYieldsNoDoc(t *testing.T) {
	f := parseText("@{add\n@summary Adds.\n@[params\n@a Int\n@b Int\n@]\n@return Int\n")
	res := Process(f, nil, mathsFunc(t, "add"), Options{})

	assert.Nil(t, res.Doc)
	assert.True(t, res.Broken)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diag.UnclosedTag, res.Diagnostics[0].Code)
	assert.Contains(t, res.Diagnostics[0].Message, "@{add")
}

func TestProcess_StructuralErrorIsIsolated(t *testing.T) {
	f := parseText(`@{add
@summary Adds.
@[params
@a Int
@b Int
@}
@{mul
@summary Multiplies.
@[params
@^firstNumber a Int
@^secondNumber b Int
@]
@return Int
@}`)
	results, err := ProcessAll(context.Background(), f, mathsTable(t), Options{}, 0)
	require.NoError(t, err)

	add, mul := results[0], results[1]
	assert.True(t, add.Broken)
	assert.Nil(t, add.Doc)
	assert.Equal(t, []diag.Code{diag.UnbalancedTag}, codes(add.Diagnostics))

	assert.False(t, mul.Broken)
	require.NotNil(t, mul.Doc)
	assert.Empty(t, mul.Diagnostics)
}

func TestProcess_UnclosedFunctionInsideModule(t *testing.T) {
	text := "@{Maths\n@{add\n@summary A\n@{mul\n@summary M\n@[params\n@^firstNumber a Int\n@^secondNumber b Int\n@]\n@return Int\n@}\n@}Maths"
	f := parseText(text)
	table := mathsTable(t)

	// `@}` closes mul, so the named closer finds add still open
	add := Process(f, table, table.Functions[0], Options{})
	assert.True(t, add.Broken)
	assert.Equal(t, []diag.Code{diag.UnclosedTag}, codes(add.Diagnostics))

	mul := Process(f, table, table.Functions[1], Options{})
	assert.False(t, mul.Broken)
	assert.Empty(t, mul.Diagnostics)
}

func TestProcess_NestedFunctionOwnsItsStructuralErrors(t *testing.T) {
	text := "@{add\n@summary A\n@[params\n@a Int\n@b Int\n@]\n@return Int\n" +
		"@{mul\n@summary M\n@[params\n@^firstNumber a Int\n@^secondNumber b Int\n@}\n@}"
	f := parseText(text)
	require.Equal(t, []diag.Code{diag.UnbalancedTag}, codes(f.Diagnostics))
	table := mathsTable(t)

	mul := Process(f, table, table.Functions[1], Options{})
	assert.True(t, mul.Broken)
	assert.Equal(t, []diag.Code{diag.UnbalancedTag}, codes(mul.Diagnostics))

	add := Process(f, table, table.Functions[0], Options{})
	assert.False(t, add.Broken)
	require.NotNil(t, add.Doc)
	assert.Empty(t, add.Diagnostics)
}

func TestProcess_MalformedAttributeKeepsDoc(t *testing.T) {
	f := parseText("@{add\n@summary Adds.\n@ stray\n@[params\n@a Int\n@b Int\n@]\n@return Int\n@}")
	res := Process(f, nil, mathsFunc(t, "add"), Options{})

	require.NotNil(t, res.Doc)
	assert.False(t, res.Broken)
	assert.Equal(t, []diag.Code{diag.MalformedAttribute}, codes(res.Diagnostics))
}

func TestProcess_DiagnosticsSortedByOffset(t *testing.T) {
	f := parseText("@{add\n@[params\n@a String\n@b Int\n@]\n@ stray\n@}")
	res := Process(f, nil, mathsFunc(t, "add"), Options{})

	assert.Equal(t, []diag.Code{diag.ReturnTypeMismatch, diag.MissingSummary, diag.ParamTypeMismatch, diag.MalformedAttribute}, codes(res.Diagnostics))
}

func TestProcess_Undocumented(t *testing.T) {
	f := parseText("@{add\n@}")
	fn := mathsFunc(t, "mul")

	res := Process(f, nil, fn, Options{})
	assert.Nil(t, res.Doc)
	assert.Empty(t, res.Diagnostics)

	res = Process(f, nil, fn, Options{ReportUndocumented: true})
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diag.Undocumented, res.Diagnostics[0].Code)
	assert.Contains(t, res.Diagnostics[0].Message, "mul(firstNumber a: Int, withSecondNumber b: Int) -> Int")
}

func TestUnattributed_ModuleLevelProblems(t *testing.T) {
	f := parseText("@{Maths\n@ bogus\n@{add\n@summary A\n@}\n@}\n@]")
	out := Unattributed(f, mathsTable(t))
	assert.Equal(t, []diag.Code{diag.MalformedAttribute, diag.UnbalancedTag}, codes(out))
}
