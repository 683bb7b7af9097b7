// Package config loads rustdex tool settings.
//
// Sources are layered, later ones winning: built-in defaults, rustdex.yaml
// (explicit path or the nearest one above the working directory),
// RUSTDEX_* environment variables and finally flags the user actually set.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"rustdex/internal/project"
	"rustdex/internal/symbols"
	"rustdex/internal/trace"
)

// FileName is the tool config looked up from the working directory upward.
const FileName = "rustdex.yaml"

// EnvPrefix prefixes environment overrides: RUSTDEX_MAX_DIAGNOSTICS=50.
const EnvPrefix = "RUSTDEX_"

const (
	DefaultMaxDiagnostics = 100
	DefaultFormat         = "pretty"
)

// Config holds the effective tool settings.
type Config struct {
	Jobs           int     `koanf:"jobs"`
	MaxDiagnostics int     `koanf:"max_diagnostics"`
	Color          Mode    `koanf:"color"`
	Format         string  `koanf:"format"`
	Cache          bool    `koanf:"cache"`
	CacheDir       string  `koanf:"cache_dir"`
	DB             string  `koanf:"db"`
	TraceLevel     string  `koanf:"trace_level"`
	Prelude        Prelude `koanf:"prelude"`
	UI             Mode    `koanf:"ui"`

	// File is the config file that was read, empty when none was found.
	File string `koanf:"-"`
}

// Prelude extends the builtin prelude of every unit root.
type Prelude struct {
	Types     []string `koanf:"types"`
	Functions []string `koanf:"functions"`
}

// Entries converts the configured names for the symbol table builder.
func (p Prelude) Entries() []symbols.PreludeEntry {
	out := make([]symbols.PreludeEntry, 0, len(p.Types)+len(p.Functions))
	for _, name := range p.Types {
		out = append(out, symbols.PreludeEntry{Name: name, Kind: symbols.SymbolType})
	}
	for _, name := range p.Functions {
		out = append(out, symbols.PreludeEntry{Name: name, Kind: symbols.SymbolFunction})
	}
	return out
}

// keys lists the scalar settings; env vars and flags outside this set
// never reach koanf. prelude is file-only.
var keys = map[string]struct{}{
	"jobs":            {},
	"max_diagnostics": {},
	"color":           {},
	"format":          {},
	"cache":           {},
	"cache_dir":       {},
	"db":              {},
	"trace_level":     {},
	"ui":              {},
}

func defaults() map[string]any {
	return map[string]any{
		"jobs":            runtime.GOMAXPROCS(0),
		"max_diagnostics": DefaultMaxDiagnostics,
		"color":           string(ModeAuto),
		"format":          DefaultFormat,
		"cache":           false,
		"cache_dir":       "",
		"db":              "",
		"trace_level":     "off",
		"ui":              string(ModeAuto),
	}
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	cfg, err := Load(Options{SkipFile: true, SkipEnv: true})
	if err != nil {
		// дефолты всегда валидны
		panic(err)
	}
	return cfg
}

// Options tune where Load looks.
type Options struct {
	// File is an explicit config path (--config). It must exist.
	File string
	// Dir is where the upward search for rustdex.yaml starts; "" means cwd.
	Dir string
	// Flags, when set, override everything else for flags marked Changed.
	Flags *pflag.FlagSet
	// LocalFlags names flags of Flags that share a key's name but mean
	// something else for the running command (symbols --format yaml).
	LocalFlags []string

	SkipFile bool
	SkipEnv  bool
}

// Load resolves the layered configuration and validates it.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	var used string
	if !opts.SkipFile {
		path, err := findFile(opts.File, opts.Dir)
		if err != nil {
			return nil, err
		}
		if path != "" {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("error reading config file %s: %w", path, err)
			}
			used = path
		}
	}

	if !opts.SkipEnv {
		// RUSTDEX_CACHE_DIR -> cache_dir
		if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
			key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
			if _, ok := keys[key]; !ok {
				return ""
			}
			return key
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load env vars: %w", err)
		}
	}

	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			if slices.Contains(opts.LocalFlags, f.Name) {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if _, ok := keys[key]; !ok {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	cfg.Color = Mode(strings.ToLower(strings.TrimSpace(string(cfg.Color))))
	cfg.UI = Mode(strings.ToLower(strings.TrimSpace(string(cfg.UI))))
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if cfg.Jobs == 0 {
		cfg.Jobs = runtime.GOMAXPROCS(0)
	}
	if used != "" && cfg.CacheDir != "" && !filepath.IsAbs(cfg.CacheDir) {
		cfg.CacheDir = filepath.Join(filepath.Dir(used), cfg.CacheDir)
	}
	if used != "" && cfg.DB != "" && !filepath.IsAbs(cfg.DB) {
		cfg.DB = filepath.Join(filepath.Dir(used), cfg.DB)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findFile(explicit, dir string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	path, ok, err := project.FindUpward(dir, FileName)
	if err != nil {
		return "", fmt.Errorf("searching for %s: %w", FileName, err)
	}
	if !ok {
		return "", nil
	}
	return path, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Jobs < 0 {
		errs = append(errs, fmt.Errorf("jobs must be >= 0, got %d", c.Jobs))
	}
	if c.MaxDiagnostics < 0 {
		errs = append(errs, fmt.Errorf("max_diagnostics must be >= 0, got %d", c.MaxDiagnostics))
	}
	if _, err := ParseMode(string(c.Color)); err != nil {
		errs = append(errs, fmt.Errorf("color: %w", err))
	}
	if _, err := ParseMode(string(c.UI)); err != nil {
		errs = append(errs, fmt.Errorf("ui: %w", err))
	}
	switch c.Format {
	case "pretty", "short", "json":
	default:
		errs = append(errs, fmt.Errorf("format: invalid value %q (expected pretty|short|json)", c.Format))
	}
	if _, err := trace.ParseLevel(c.TraceLevel); err != nil {
		errs = append(errs, fmt.Errorf("trace_level: %w", err))
	}
	for _, name := range slices.Concat(c.Prelude.Types, c.Prelude.Functions) {
		if !project.IsValidIdent(name) {
			errs = append(errs, fmt.Errorf("prelude: %q is not an identifier", name))
		}
	}
	return errors.Join(errs...)
}

// Level is the parsed trace level; Validate has already accepted it.
func (c *Config) Level() trace.Level {
	lvl, _ := trace.ParseLevel(c.TraceLevel)
	return lvl
}
