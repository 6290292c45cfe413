// Package diag holds the findings reported while tokenizing, building and
// validating documentation blocks.
package diag

import (
	"fmt"
	"sort"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	SevWarning Severity = iota + 1
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// ParseSeverity maps "warning"/"error" back to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "warning":
		return SevWarning, true
	case "error":
		return SevError, true
	}
	return 0, false
}

type Code uint8

const (
	UnknownCode Code = iota

	// structural
	UnbalancedTag
	UnclosedTag
	MalformedAttribute

	// semantic
	ParamCountMismatch
	ParamTypeMismatch
	ParamLabelMismatch
	ReturnTypeMismatch
	MissingSummary
	DuplicateAttribute
	Undocumented
)

var codeNames = map[Code]string{
	UnknownCode:        "Unknown",
	UnbalancedTag:      "UnbalancedTag",
	UnclosedTag:        "UnclosedTag",
	MalformedAttribute: "MalformedAttribute",
	ParamCountMismatch: "ParamCountMismatch",
	ParamTypeMismatch:  "ParamTypeMismatch",
	ParamLabelMismatch: "ParamLabelMismatch",
	ReturnTypeMismatch: "ReturnTypeMismatch",
	MissingSummary:     "MissingSummary",
	DuplicateAttribute: "DuplicateAttribute",
	Undocumented:       "Undocumented",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", uint8(c))
}

// ParseCode looks a code up by its name.
func ParseCode(name string) (Code, bool) {
	for c, n := range codeNames {
		if n == name {
			return c, true
		}
	}
	return UnknownCode, false
}

// Structural reports whether the code makes a block unusable.
// MalformedAttribute is recoverable and does not count.
func (c Code) Structural() bool {
	return c == UnbalancedTag || c == UnclosedTag
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Offset   int // byte offset in the original source file
}

func Errorf(code Code, offset int, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SevError, Code: code, Message: fmt.Sprintf(format, args...), Offset: offset}
}

func Warningf(code Code, offset int, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SevWarning, Code: code, Message: fmt.Sprintf(format, args...), Offset: offset}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d: %s[%s]: %s", d.Offset, d.Severity, d.Code, d.Message)
}

// HasErrors returns true if any diagnostic has error severity.
func HasErrors(ds []Diagnostic) bool {
	for i := range ds {
		if ds[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any diagnostic is a warning or worse.
func HasWarnings(ds []Diagnostic) bool {
	for i := range ds {
		if ds[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

// Sort orders diagnostics by offset, then severity (errors first), then code,
// so output is deterministic.
func Sort(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		di, dj := ds[i], ds[j]
		if di.Offset != dj.Offset {
			return di.Offset < dj.Offset
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
