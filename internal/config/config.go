// Package config loads the editor configuration.
//
// Values come from three layers, each overriding the previous one:
// built-in defaults, the TOML config file, and BLURRER_* environment
// variables. The blur opacity is fixed and cannot be configured.
package config

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/blurrer/internal/config/loader"
	"github.com/dshills/blurrer/internal/renderer/core"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "BLURRER_"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete editor configuration.
type Config struct {
	Theme  Theme  `toml:"theme"`
	Editor Editor `toml:"editor"`
	Blur   Blur   `toml:"blur"`
	Log    Log    `toml:"log"`
}

// Theme holds the text area colors as "#rrggbb", a palette index or
// "default".
type Theme struct {
	Background string `toml:"background"`
	Foreground string `toml:"foreground"`
	Selection  string `toml:"selection"`
}

// Editor holds text layout settings.
type Editor struct {
	TabWidth int `toml:"tab_width"`
	// Wrap enables hard wrapping at WrapWidth, or at the window width when
	// WrapWidth is zero.
	Wrap      bool `toml:"wrap"`
	WrapWidth int  `toml:"wrap_width"`
	Scrolloff int  `toml:"scrolloff"`
}

// Blur holds the selection blur settings.
type Blur struct {
	Enabled bool `toml:"enabled"`
	// TrimEmpty drops zero-length complement spans before resolving them.
	TrimEmpty bool `toml:"trim_empty"`
}

// Log holds logging settings.
type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Theme: Theme{
			Background: "#1e1e2e",
			Foreground: "#cdd6f4",
			Selection:  "#45475a",
		},
		Editor: Editor{
			TabWidth:  4,
			Scrolloff: 2,
		},
		Blur: Blur{
			Enabled: true,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Validate checks value ranges and colors.
func (c Config) Validate() error {
	var errs []error
	if c.Editor.TabWidth < 1 || c.Editor.TabWidth > 16 {
		errs = append(errs, fmt.Errorf("%w: editor.tab_width %d out of range 1-16", ErrInvalid, c.Editor.TabWidth))
	}
	if c.Editor.WrapWidth < 0 {
		errs = append(errs, fmt.Errorf("%w: editor.wrap_width %d is negative", ErrInvalid, c.Editor.WrapWidth))
	}
	if c.Editor.Scrolloff < 0 {
		errs = append(errs, fmt.Errorf("%w: editor.scrolloff %d is negative", ErrInvalid, c.Editor.Scrolloff))
	}
	for name, s := range map[string]string{
		"theme.background": c.Theme.Background,
		"theme.foreground": c.Theme.Foreground,
		"theme.selection":  c.Theme.Selection,
	} {
		if _, err := core.ParseColor(s); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalid, name, err))
		}
	}
	return errors.Join(errs...)
}

// BackgroundColor returns the parsed background color.
func (t Theme) BackgroundColor() core.Color {
	return mustColor(t.Background)
}

// ForegroundColor returns the parsed foreground color.
func (t Theme) ForegroundColor() core.Color {
	return mustColor(t.Foreground)
}

// SelectionColor returns the parsed selection color.
func (t Theme) SelectionColor() core.Color {
	return mustColor(t.Selection)
}

// mustColor parses a color that Validate already accepted.
func mustColor(s string) core.Color {
	c, err := core.ParseColor(s)
	if err != nil {
		return core.ColorDefault
	}
	return c
}

// Load builds the configuration from defaults, the file at path and the
// environment. An empty path or a missing file leaves the defaults.
func Load(path string) (Config, error) {
	sources := []loader.Loader{loader.NewEnvLoader(EnvPrefix)}
	if path != "" {
		sources = append([]loader.Loader{loader.NewTOMLLoader(path)}, sources...)
	}
	return LoadFrom(sources...)
}

// LoadFrom merges sources over the defaults in order and decodes the
// result. Unknown keys are errors.
func LoadFrom(sources ...loader.Loader) (Config, error) {
	merged, err := toMap(Default())
	if err != nil {
		return Config{}, err
	}
	for _, src := range sources {
		m, err := src.Load()
		if err != nil {
			return Config{}, err
		}
		merged = loader.DeepMerge(merged, m)
	}

	cfg, err := fromMap(merged)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func toMap(cfg Config) (map[string]any, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}
	return loader.Parse("<defaults>", data)
}

func fromMap(m map[string]any) (Config, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return Config{}, fmt.Errorf("encode config: %w", err)
	}

	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, loader.NewParseError("<merged>", err)
	}
	return cfg, nil
}

// Marshal encodes the configuration as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
