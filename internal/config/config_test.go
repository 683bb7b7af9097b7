package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rustdex/internal/symbols"
	"rustdex/internal/trace"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("jobs", 0, "")
	fs.Int("max-diagnostics", DefaultMaxDiagnostics, "")
	fs.String("color", "auto", "")
	fs.String("trace-level", "off", "")
	fs.String("trace", "", "")
	fs.Bool("quiet", false, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{Dir: t.TempDir(), SkipEnv: true})
	require.NoError(t, err)

	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Jobs)
	assert.Equal(t, DefaultMaxDiagnostics, cfg.MaxDiagnostics)
	assert.Equal(t, ModeAuto, cfg.Color)
	assert.Equal(t, ModeAuto, cfg.UI)
	assert.Equal(t, "pretty", cfg.Format)
	assert.Empty(t, cfg.Prelude.Entries())
	assert.False(t, cfg.Cache)
	assert.Empty(t, cfg.File)
	assert.Equal(t, trace.LevelOff, cfg.Level())
}

func TestLoad_FileSearchedUpward(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "max_diagnostics: 7\nformat: short\ncache_dir: .cache\ndb: index.db\n")
	nested := filepath.Join(root, "src", "deep")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := Load(Options{Dir: nested, SkipEnv: true})
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, 7, cfg.MaxDiagnostics)
	assert.Equal(t, "short", cfg.Format)
	assert.Equal(t, filepath.Join(root, ".cache"), cfg.CacheDir)
	assert.Equal(t, filepath.Join(root, "index.db"), cfg.DB)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jobs: 3\n"), 0o600))

	cfg, err := Load(Options{File: path, SkipEnv: true})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Jobs)
	assert.Equal(t, path, cfg.File)

	_, err = Load(Options{File: filepath.Join(dir, "missing.yaml"), SkipEnv: true})
	assert.Error(t, err)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "max_diagnostics: 10\njobs: 2\ncolor: \"off\"\n")

	t.Setenv("RUSTDEX_MAX_DIAGNOSTICS", "20")
	t.Setenv("RUSTDEX_JOBS", "5")
	t.Setenv("RUSTDEX_UNKNOWN", "ignored")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--max-diagnostics=30", "--trace=-", "--quiet"}))

	cfg, err := Load(Options{Dir: dir, Flags: flags})
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.MaxDiagnostics, "flag beats env")
	assert.Equal(t, 5, cfg.Jobs, "env beats file")
	assert.Equal(t, ModeOff, cfg.Color, "file beats defaults")
}

func TestLoad_UnchangedFlagsDoNotOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "color: \"on\"\ntrace_level: phase\n")

	flags := testFlags()
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(Options{Dir: dir, Flags: flags, SkipEnv: true})
	require.NoError(t, err)
	assert.Equal(t, ModeOn, cfg.Color)
	assert.Equal(t, trace.LevelPhase, cfg.Level())
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "color: purple\nformat: xml\nmax_diagnostics: -1\ntrace_level: loud\n")

	_, err := Load(Options{Dir: dir, SkipEnv: true})
	require.Error(t, err)
	for _, want := range []string{"color", "format", "max_diagnostics", "trace_level"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"AUTO", ModeAuto, false},
		{"on", ModeOn, false},
		{"always", ModeOn, false},
		{" off ", ModeOff, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestModeEnabled(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.True(t, ModeOn.Enabled(f))
	assert.False(t, ModeOff.Enabled(f))
	assert.False(t, ModeAuto.Enabled(f), "a regular file is not a terminal")
	assert.False(t, IsTerminal(nil))
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)
	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Prelude(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "prelude:\n  types: [String, Vec]\n  functions: [panic]\n")

	cfg, err := Load(Options{Dir: dir, SkipEnv: true})
	require.NoError(t, err)
	entries := cfg.Prelude.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "String", entries[0].Name)
	assert.Equal(t, symbols.SymbolType, entries[0].Kind)
	assert.Equal(t, symbols.SymbolFunction, entries[2].Kind)

	writeConfig(t, dir, "prelude:\n  types: [\"not ok\"]\n")
	_, err = Load(Options{Dir: dir, SkipEnv: true})
	assert.ErrorContains(t, err, "prelude")
}

func TestLoad_LocalFlags(t *testing.T) {
	flags := pflag.NewFlagSet("symbols", pflag.ContinueOnError)
	flags.String("format", "table", "")
	require.NoError(t, flags.Parse([]string{"--format=yaml"}))

	cfg, err := Load(Options{Dir: t.TempDir(), Flags: flags, LocalFlags: []string{"format"}, SkipEnv: true})
	require.NoError(t, err)
	assert.Equal(t, DefaultFormat, cfg.Format)

	_, err = Load(Options{Dir: t.TempDir(), Flags: flags, SkipEnv: true})
	assert.ErrorContains(t, err, "format")
}
