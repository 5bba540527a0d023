// Package config loads quill.toml: arena sizing, type table policies,
// tracing and diagnostics settings. Command-line flags override it.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"quill/internal/arena"
	"quill/internal/diag"
	"quill/internal/trace"
	"quill/internal/types"
)

type Config struct {
	Arena       ArenaConfig       `toml:"arena"`
	Types       TypesConfig       `toml:"types"`
	Trace       TraceConfig       `toml:"trace"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
	Decls       DeclsConfig       `toml:"decls"`

	// Path is the file the config was read from; empty for defaults.
	Path string `toml:"-"`
}

type ArenaConfig struct {
	InitialSlots int `toml:"initial_slots"`
	MaxBytes     int `toml:"max_bytes"`
}

type TypesConfig struct {
	WordBits          int    `toml:"word_bits"`
	ArrayIdentity     string `toml:"array_identity"`
	AliasRedefinition string `toml:"alias_redefinition"`
}

type TraceConfig struct {
	Level    string `toml:"level"`
	Mode     string `toml:"mode"`
	Format   string `toml:"format"`
	Output   string `toml:"output"`
	RingSize int    `toml:"ring_size"`
}

type DiagnosticsConfig struct {
	Max   int    `toml:"max"`
	Color string `toml:"color"`
}

type DeclsConfig struct {
	// Files are manifest paths relative to the config file.
	Files []string `toml:"files"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Arena: ArenaConfig{InitialSlots: arena.DefaultInitialSlots},
		Types: TypesConfig{
			WordBits:          types.DefaultWordBits,
			ArrayIdentity:     types.ArrayIdentityElement.String(),
			AliasRedefinition: types.AliasAllow.String(),
		},
		Trace:       TraceConfig{Level: "off", Mode: "stream", Format: "auto", Output: "-", RingSize: 4096},
		Diagnostics: DiagnosticsConfig{Max: diag.DefaultMax, Color: "auto"},
	}
}

// Load reads path over the defaults. Keys the file does not set keep their
// default value; unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("types", "word_bits") {
		switch cfg.Types.WordBits {
		case 8, 16, 32, 64:
		default:
			return Config{}, fmt.Errorf("%s: [types].word_bits must be 8, 16, 32 or 64, got %d", path, cfg.Types.WordBits)
		}
	}
	if meta.IsDefined("arena", "initial_slots") && cfg.Arena.InitialSlots <= 0 {
		return Config{}, fmt.Errorf("%s: [arena].initial_slots must be positive", path)
	}
	if meta.IsDefined("arena", "max_bytes") && cfg.Arena.MaxBytes < 0 {
		return Config{}, fmt.Errorf("%s: [arena].max_bytes must not be negative", path)
	}
	if meta.IsDefined("diagnostics", "max") && cfg.Diagnostics.Max <= 0 {
		return Config{}, fmt.Errorf("%s: [diagnostics].max must be positive", path)
	}
	if _, err := cfg.TableOptions(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := cfg.TraceConfig(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Discover finds quill.toml above startDir and loads it. Without a file the
// defaults are returned.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// ArenaOptions converts the [arena] section.
func (c Config) ArenaOptions() arena.Options {
	return arena.Options{InitialSlots: c.Arena.InitialSlots, MaxBytes: c.Arena.MaxBytes}
}

// TableOptions converts the [types] section.
func (c Config) TableOptions() (types.Options, error) {
	identity, err := types.ParseArrayIdentity(c.Types.ArrayIdentity)
	if err != nil {
		return types.Options{}, fmt.Errorf("[types].array_identity: %w", err)
	}
	policy, err := types.ParseAliasPolicy(c.Types.AliasRedefinition)
	if err != nil {
		return types.Options{}, fmt.Errorf("[types].alias_redefinition: %w", err)
	}
	return types.Options{ArrayIdentity: identity, AliasPolicy: policy, WordBits: c.Types.WordBits}, nil
}

// TraceConfig converts the [trace] section.
func (c Config) TraceConfig() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, fmt.Errorf("[trace].level: %w", err)
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, fmt.Errorf("[trace].mode: %w", err)
	}
	format, err := trace.ParseFormat(c.Trace.Format)
	if err != nil {
		return trace.Config{}, fmt.Errorf("[trace].format: %w", err)
	}
	return trace.Config{Level: level, Mode: mode, Format: format, OutputPath: c.Trace.Output, RingSize: c.Trace.RingSize}, nil
}

// DeclFiles returns [decls].files resolved against the config directory.
func (c Config) DeclFiles() []string {
	if len(c.Decls.Files) == 0 {
		return nil
	}
	base := "."
	if c.Path != "" {
		base = filepath.Dir(c.Path)
	}
	out := make([]string, len(c.Decls.Files))
	for i, f := range c.Decls.Files {
		if filepath.IsAbs(f) {
			out[i] = f
		} else {
			out[i] = filepath.Join(base, filepath.FromSlash(f))
		}
	}
	return out
}
