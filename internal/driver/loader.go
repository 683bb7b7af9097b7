package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"rustdex/internal/project"
	"rustdex/internal/source"
)

// loader abstracts where sources come from: the disk for the CLI, a map
// for tests and the repl.
type loader interface {
	// expand turns command line inputs into source files.
	expand(paths []string) ([]string, error)
	load(set *source.FileSet, path string) (source.FileID, error)
	resolveModule(dir, name string) (string, error)
}

type diskLoader struct{}

func (diskLoader) expand(paths []string) ([]string, error) {
	var out []string
	var errs []error
	for _, p := range paths {
		files, err := project.ListSources(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		out = append(out, files...)
	}
	return dedupPaths(out), errors.Join(errs...)
}

func (diskLoader) load(set *source.FileSet, path string) (source.FileID, error) {
	return set.Load(path)
}

func (diskLoader) resolveModule(dir, name string) (string, error) {
	return project.ResolveModuleFile(dir, name)
}

// memLoader serves files from memory, keyed by cleaned path.
type memLoader map[string]string

func newMemLoader(files map[string]string) memLoader {
	m := make(memLoader, len(files))
	for name, content := range files {
		m[filepath.Clean(name)] = content
	}
	return m
}

func (m memLoader) expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		p = filepath.Clean(p)
		if _, ok := m[p]; ok {
			out = append(out, p)
			continue
		}
		// каталог: все файлы под ним
		prefix := p + string(filepath.Separator)
		found := false
		for name := range m {
			if p == "." || strings.HasPrefix(name, prefix) {
				out = append(out, name)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%s: %w", p, fs.ErrNotExist)
		}
	}
	return dedupPaths(out), nil
}

func (m memLoader) load(set *source.FileSet, path string) (source.FileID, error) {
	content, ok := m[filepath.Clean(path)]
	if !ok {
		return 0, &os.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return set.AddNormalized(path, []byte(content)), nil
}

func (m memLoader) resolveModule(dir, name string) (string, error) {
	return project.ResolveModuleFileFunc(dir, name, func(p string) bool {
		_, ok := m[filepath.Clean(p)]
		return ok
	})
}

func dedupPaths(paths []string) []string {
	for i, p := range paths {
		paths[i] = filepath.Clean(p)
	}
	slices.Sort(paths)
	return slices.Compact(paths)
}
