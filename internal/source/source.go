// Package source turns host-language files into the comment lines the
// doc-tag tokenizer consumes, keeping original byte offsets so that
// diagnostics can point back into the file.
package source

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Line is one line of comment text with its delimiters removed.
// Offset is the byte offset of Text[0] in the original file.
type Line struct {
	Text   string
	Offset int
}

// Lines splits plain text into Lines starting at base.
func Lines(text string, base int) []Line {
	var out []Line
	off := base
	for _, l := range strings.Split(text, "\n") {
		out = append(out, Line{Text: strings.TrimSuffix(l, "\r"), Offset: off})
		off += len(l) + 1
	}
	return out
}

// File is a loaded source file.
type File struct {
	Path    string
	Content []byte

	lineStarts []int
}

func NewFile(path string, content []byte) *File {
	f := &File{Path: path, Content: content, lineStarts: []int{0}}
	for i, b := range content {
		if b == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	return f
}

func Load(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return NewFile(path, content), nil
}

// Position returns the 1-based line and column of offset.
func (f *File) Position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.Content) {
		offset = len(f.Content)
	}
	i := sort.Search(len(f.lineStarts), func(i int) bool { return f.lineStarts[i] > offset }) - 1
	return i + 1, offset - f.lineStarts[i] + 1
}

// Comments returns every comment line of the file in source order.
func (f *File) Comments() []Line {
	return Comments(string(f.Content))
}
