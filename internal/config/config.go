// Package config reads .doctag/config.toml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chriserin/doctag/internal/parser"
	"github.com/chriserin/doctag/internal/symbols"
)

const (
	Dir      = ".doctag"
	File     = ".doctag/config.toml"
	DBPath   = ".doctag/doctag.db"
	CacheDir = ".doctag/cache"
)

// Thresholds accepted by fail_on.
const (
	FailOnError   = "error"
	FailOnWarning = "warning"
	FailOnNever   = "never"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Sources            []string `toml:"sources"`
	SymbolsSuffix      string   `toml:"symbols_suffix"`
	StrictTypes        bool     `toml:"strict_types"`
	StrictLabels       bool     `toml:"strict_labels"`
	ReportUndocumented bool     `toml:"report_undocumented"`
	MaxDiagnostics     int      `toml:"max_diagnostics"`
	FailOn             string   `toml:"fail_on"`
	Jobs               int      `toml:"jobs"`
	Cache              bool     `toml:"cache"`
}

func Default() Config {
	return Config{
		Sources:        []string{"*.swift", "Sources/*/*.swift"},
		SymbolsSuffix:  symbols.DefaultSuffix,
		MaxDiagnostics: 100,
		FailOn:         FailOnError,
		Cache:          true,
	}
}

// Load decodes path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("%s: %w: unknown keys %s", path, ErrInvalid, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.FailOn {
	case FailOnError, FailOnWarning, FailOnNever:
	default:
		return fmt.Errorf("%w: fail_on must be error, warning or never, got %q", ErrInvalid, c.FailOn)
	}
	if c.MaxDiagnostics < 0 {
		return fmt.Errorf("%w: max_diagnostics must not be negative", ErrInvalid)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("%w: jobs must not be negative", ErrInvalid)
	}
	if c.SymbolsSuffix == "" {
		return fmt.Errorf("%w: symbols_suffix must not be empty", ErrInvalid)
	}
	return nil
}

// Write stores the config as TOML, creating the parent directory.
func (c Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func (c Config) Options() parser.Options {
	return parser.Options{
		StrictTypes:        c.StrictTypes,
		StrictLabels:       c.StrictLabels,
		ReportUndocumented: c.ReportUndocumented,
	}
}

// SymbolsPath returns the sidecar symbol table for a source file.
func (c Config) SymbolsPath(sourcePath string) string {
	return sourcePath + c.SymbolsSuffix
}
