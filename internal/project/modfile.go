package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// SourceExt is the extension of source files.
const SourceExt = ".rs"

var (
	// ErrModuleFileMissing: neither name.rs nor name/mod.rs exists.
	ErrModuleFileMissing = errors.New("module file not found")
	// ErrModuleFileAmbiguous: both name.rs and name/mod.rs exist.
	ErrModuleFileAmbiguous = errors.New("ambiguous module file")
)

// ModuleFileError carries the candidates that were looked at.
type ModuleFileError struct {
	Name       string
	Candidates []string
	Err        error
}

func (e *ModuleFileError) Error() string {
	return fmt.Sprintf("%s for module '%s' (candidates: %s)", e.Err, e.Name, strings.Join(e.Candidates, ", "))
}

func (e *ModuleFileError) Unwrap() error { return e.Err }

// ModuleCandidates returns the two files `mod name;` may bind to.
// dir is the directory of the declaring file joined with the names of the
// inline modules enclosing the declaration.
func ModuleCandidates(dir, name string) []string {
	return []string{
		filepath.Join(dir, name+SourceExt),
		filepath.Join(dir, name, "mod"+SourceExt),
	}
}

// ModuleDir returns the directory nested `mod` declarations of a file are
// relative to.
func ModuleDir(declFile string, inline ...string) string {
	return filepath.Join(append([]string{filepath.Dir(declFile)}, inline...)...)
}

// ResolveModuleFile binds `mod name;` to exactly one existing file.
func ResolveModuleFile(dir, name string) (string, error) {
	return resolveModuleFile(dir, name, statFile)
}

// ResolveModuleFileFunc is ResolveModuleFile with a custom existence check,
// used for in-memory sources.
func ResolveModuleFileFunc(dir, name string, exists func(string) bool) (string, error) {
	return resolveModuleFile(dir, name, func(p string) (bool, error) { return exists(p), nil })
}

func resolveModuleFile(dir, name string, exists func(string) (bool, error)) (string, error) {
	candidates := ModuleCandidates(dir, name)
	var found []string
	for _, c := range candidates {
		ok, err := exists(c)
		if err != nil {
			return "", fmt.Errorf("module '%s': %w", name, err)
		}
		if ok {
			found = append(found, c)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return "", &ModuleFileError{Name: name, Candidates: candidates, Err: ErrModuleFileMissing}
	default:
		return "", &ModuleFileError{Name: name, Candidates: found, Err: ErrModuleFileAmbiguous}
	}
}

func statFile(p string) (bool, error) {
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// ListSources returns the sorted .rs files under path; a file path is
// returned as is.
func ListSources(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && p != path && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.HasSuffix(p, SourceExt) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}
