// Package symbols loads the signature data that documentation blocks are
// validated against. The table is produced by a host-language front end and
// handed over as YAML (JSON is accepted too, being a YAML subset).
package symbols

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSuffix is appended to a source path to find its sidecar table.
const DefaultSuffix = ".symbols.yaml"

var ErrNoSymbols = errors.New("no symbol table")

// Param is one declared parameter. Label is the call-site name; it is empty
// when the parameter has none (Swift's `_`).
type Param struct {
	Label string `yaml:"label,omitempty"`
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
}

// HasDistinctLabel reports whether the parameter has two names.
func (p Param) HasDistinctLabel() bool {
	return p.Label != "" && p.Label != p.Name
}

type Function struct {
	Name    string  `yaml:"name"`
	Params  []Param `yaml:"params"`
	Returns string  `yaml:"returns,omitempty"`
}

// Signature renders the function in the `name(label name: Type) -> Ret` form.
func (f Function) Signature() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		label := "_"
		if p.Label != "" {
			label = p.Label
		}
		if p.Label == p.Name {
			parts[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
		} else {
			parts[i] = fmt.Sprintf("%s %s: %s", label, p.Name, p.Type)
		}
	}
	sig := fmt.Sprintf("%s(%s)", f.Name, strings.Join(parts, ", "))
	if f.Returns != "" {
		sig += " -> " + f.Returns
	}
	return sig
}

// Table is the ordered set of functions declared in one source file.
type Table struct {
	Functions []Function `yaml:"functions"`
}

// Lookup returns the function named name.
func (t *Table) Lookup(name string) (Function, bool) {
	for _, f := range t.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return Function{}, false
}

// Parse decodes a symbol table and normalizes labels.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decoding symbol table: %w", err)
	}
	seen := make(map[string]bool, len(t.Functions))
	for i := range t.Functions {
		f := &t.Functions[i]
		if f.Name == "" {
			return nil, fmt.Errorf("function %d: missing name", i+1)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("function %s declared twice", f.Name)
		}
		seen[f.Name] = true
		for j := range f.Params {
			p := &f.Params[j]
			if p.Label == "_" {
				p.Label = ""
			}
			if p.Name == "" || p.Type == "" {
				return nil, fmt.Errorf("function %s: param %d needs name and type", f.Name, j+1)
			}
		}
	}
	return &t, nil
}

func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSymbols)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Marshal encodes the table back to YAML.
func (t *Table) Marshal() ([]byte, error) {
	return yaml.Marshal(t)
}
