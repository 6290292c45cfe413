package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLines_Offsets(t *testing.T) {
	lines := Lines("ab\ncde\n\nf", 10)
	require.Len(t, lines, 4)
	assert.Equal(t, Line{Text: "ab", Offset: 10}, lines[0])
	assert.Equal(t, Line{Text: "cde", Offset: 13}, lines[1])
	assert.Equal(t, Line{Text: "", Offset: 17}, lines[2])
	assert.Equal(t, Line{Text: "f", Offset: 18}, lines[3])
}

func TestPosition(t *testing.T) {
	f := NewFile("x.swift", []byte("ab\ncde\nf"))
	line, col := f.Position(0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)
	line, col = f.Position(4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)
	line, col = f.Position(7)
	assert.Equal(t, 3, line)
	assert.Equal(t, 1, col)
}

func TestPosition_ClampsOutOfRange(t *testing.T) {
	f := NewFile("x.swift", []byte("ab"))
	line, col := f.Position(99)
	assert.Equal(t, 1, line)
	assert.Equal(t, 3, col)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.swift")
	require.NoError(t, os.WriteFile(path, []byte("// hi\n"), 0o644))
	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path)
	require.Len(t, f.Comments(), 1)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.swift"))
	require.Error(t, err)
}
