// Package settings loads the optional TOML file that seeds the script's
// verbosity before command-line flags are applied.
package settings

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Settings mirrors the parsed CLI options: counting verbosity knobs plus the
// silent and color toggles. Values from a file act as a baseline; flags are
// added on top.
type Settings struct {
	Quiet   int  `toml:"quiet"`
	Silent  bool `toml:"silent"`
	Verbose int  `toml:"verbose"`
	NoColor bool `toml:"no_color"`
}

// Default returns the zero baseline: warn-level output, color on.
func Default() Settings {
	return Settings{}
}

// DefaultPath returns the per-user settings location,
// e.g. ~/.config/goscript/config.toml on Linux.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(dir, "goscript", "config.toml"), nil
}

// Load reads and validates the settings file at path.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Settings{}, fmt.Errorf("settings %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads from DefaultPath. A missing file is not an error; the
// defaults are returned instead. The same goes for environments where no
// user config dir can be resolved at all, e.g. stripped-down test setups.
func LoadDefault() (Settings, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Merge layers command-line flag values on top of the file baseline: counts
// accumulate, booleans turn on and stay on.
func (s Settings) Merge(quiet, verbose int, silent, noColor bool) Settings {
	s.Quiet += quiet
	s.Verbose += verbose
	s.Silent = s.Silent || silent
	s.NoColor = s.NoColor || noColor
	return s
}

func (s Settings) validate() error {
	if s.Quiet < 0 {
		return fmt.Errorf("quiet must be non-negative, got %d", s.Quiet)
	}
	if s.Verbose < 0 {
		return fmt.Errorf("verbose must be non-negative, got %d", s.Verbose)
	}
	return nil
}

// WriteSample writes the annotated sample settings file to path, creating
// parent directories as needed. An existing file is never overwritten.
func WriteSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("settings file already exists at %s", path)
		}
		return fmt.Errorf("create settings %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(sampleConfig); err != nil {
		return fmt.Errorf("write settings %s: %w", path, err)
	}
	return nil
}
