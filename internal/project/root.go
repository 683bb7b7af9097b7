package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestName is the crate manifest file looked up by FindManifest.
const ManifestName = "rustdex.toml"

// FindManifest walks up from startDir to locate rustdex.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	return findUp(startDir, ManifestName)
}

// FindProjectRoot returns the directory containing rustdex.toml, if any.
func FindProjectRoot(startDir string) (root string, ok bool, err error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return "", ok, err
	}
	return filepath.Dir(manifestPath), true, nil
}

// findUp ищет name в startDir и во всех родителях.
func findUp(startDir, name string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// FindUpward is findUp for other tool files (rustdex.yaml).
func FindUpward(startDir, name string) (string, bool, error) {
	return findUp(startDir, name)
}
