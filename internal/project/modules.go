package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is a parsed rustdex.toml.
type Manifest struct {
	Path  string   // absolute path of the manifest
	Dir   string   // directory the roots are relative to
	Name  string   // [crate].name, may be empty
	Roots []string // absolute root file paths, in manifest order
}

var (
	// ErrCrateSectionMissing indicates that [crate] is missing in a manifest.
	ErrCrateSectionMissing = errors.New("missing [crate]")
	// ErrRootsMissing indicates that [crate].roots is missing or empty.
	ErrRootsMissing = errors.New("missing [crate].roots")
)

type manifestFile struct {
	Crate struct {
		Name  string   `toml:"name"`
		Roots []string `toml:"roots"`
	} `toml:"crate"`
}

// LoadManifest parses a rustdex.toml and validates its roots.
func LoadManifest(path string) (*Manifest, error) {
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("crate") {
		return nil, fmt.Errorf("%s: %w", path, ErrCrateSectionMissing)
	}
	if !meta.IsDefined("crate", "roots") || len(cfg.Crate.Roots) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrRootsMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	m := &Manifest{
		Path: abs,
		Dir:  filepath.Dir(abs),
		Name: strings.TrimSpace(cfg.Crate.Name),
	}
	if m.Name != "" && !IsValidIdent(m.Name) {
		return nil, fmt.Errorf("%s: invalid crate name %q", path, m.Name)
	}
	seen := make(map[string]struct{}, len(cfg.Crate.Roots))
	var errs []error
	for _, root := range cfg.Crate.Roots {
		rootPath, err := ResolveRoot(m.Dir, root)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := seen[rootPath]; dup {
			errs = append(errs, fmt.Errorf("duplicate root %q", root))
			continue
		}
		seen[rootPath] = struct{}{}
		m.Roots = append(m.Roots, rootPath)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ResolveRoot resolves and validates a root file relative to the manifest dir.
func ResolveRoot(dir, root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", fmt.Errorf("invalid root: empty path")
	}
	if filepath.IsAbs(root) {
		return "", fmt.Errorf("invalid root %q: must be relative", root)
	}
	rootPath := filepath.Join(dir, filepath.Clean(filepath.FromSlash(root)))
	if !pathWithin(dir, rootPath) {
		return "", fmt.Errorf("invalid root %q: escapes project directory", root)
	}
	info, err := os.Stat(rootPath)
	if err != nil {
		return "", fmt.Errorf("invalid root %q: %w", root, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("invalid root %q: is a directory", root)
	}
	return rootPath, nil
}

// CrateName returns the unit name for a root file: the manifest name for a
// single-root manifest, the file stem otherwise.
func (m *Manifest) CrateName(root string) string {
	if m != nil && m.Name != "" && len(m.Roots) == 1 {
		return m.Name
	}
	return FileStem(root)
}

// FileStem strips the directory and the .rs extension.
func FileStem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), SourceExt)
}

// IsValidIdent reports whether s is an ASCII identifier.
func IsValidIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func pathWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
