package driver

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"rustdex/internal/diag"
	"rustdex/internal/pipeline"
	"rustdex/internal/project"
	"rustdex/internal/source"
	"rustdex/internal/symbols"
	"rustdex/internal/trace"
)

// UnitRecord is the flat form of Unit.
type UnitRecord struct {
	Name   string         `json:"name" msgpack:"name" yaml:"name"`
	Root   string         `json:"root" msgpack:"root" yaml:"root"`
	Files  []string       `json:"files" msgpack:"files" yaml:"files"`
	Digest project.Digest `json:"-" msgpack:"digest" yaml:"-"`
}

// Snapshot is the flat, serializable output of a run: what the disk cache
// stores and what `symbols`/`diag` print.
type Snapshot struct {
	Schema      uint16           `json:"-" msgpack:"schema" yaml:"-"`
	Files       []string         `json:"files" msgpack:"files" yaml:"files"`
	FileHashes  []project.Digest `json:"-" msgpack:"file_hashes" yaml:"-"`
	Units       []UnitRecord     `json:"units" msgpack:"units" yaml:"units"`
	Symbols     []symbols.Record `json:"symbols" msgpack:"symbols" yaml:"symbols"`
	Diagnostics []diag.Record    `json:"diagnostics" msgpack:"diagnostics" yaml:"diagnostics"`
}

// HasErrors reports whether any diagnostic is an error.
func (s *Snapshot) HasErrors() bool {
	return slices.ContainsFunc(s.Diagnostics, func(r diag.Record) bool {
		return r.Severity == diag.SevError.Label()
	})
}

// Snapshot flattens the result.
func (r *Result) Snapshot(ctx context.Context) *Snapshot {
	done := r.Timer.Track(string(pipeline.StageExport))
	_, span := trace.Start(ctx, trace.ScopePass, string(pipeline.StageExport))

	snap := &Snapshot{Schema: diskCacheSchemaVersion}
	for _, pf := range r.Files {
		if !pf.OK() {
			continue
		}
		snap.Files = append(snap.Files, pf.Path)
		snap.FileHashes = append(snap.FileHashes, project.Digest(pf.File.Hash))
	}
	for _, u := range r.Units {
		snap.Units = append(snap.Units, UnitRecord{Name: u.Name, Root: u.Root, Files: u.Files, Digest: u.Digest})
	}
	if r.Table != nil {
		snap.Symbols = r.Table.Export(r.FileSet)
	}
	snap.Diagnostics = diag.Records(r.FileSet, r.Bag.Items())

	note := fmt.Sprintf("%d symbols", len(snap.Symbols))
	span.End(note)
	done(note)
	return snap
}

// CacheKey identifies a run by its inputs and the options that change the
// output. File contents are checked separately through FileHashes.
func CacheKey(paths []string, opts Options) project.Digest {
	var sb strings.Builder
	sb.WriteString("rustdex-snapshot/")
	sb.WriteString(strconv.Itoa(int(diskCacheSchemaVersion)))
	for _, p := range dedupPaths(slices.Clone(paths)) {
		sb.WriteString("\x00in:")
		sb.WriteString(p)
	}
	if opts.Manifest != nil {
		sb.WriteString("\x00manifest:")
		sb.WriteString(opts.Manifest.Path)
		sb.WriteString(":" + opts.Manifest.Name)
		for _, root := range opts.Manifest.Roots {
			sb.WriteString(":" + root)
		}
	}
	for _, p := range opts.Prelude {
		sb.WriteString("\x00prelude:" + p.Name + ":" + p.Kind.String())
	}
	sb.WriteString("\x00max:" + strconv.Itoa(opts.MaxDiagnostics))
	return project.HashString(sb.String())
}

// fresh reports whether every file of a cached snapshot still has the
// recorded content.
func (s *Snapshot) fresh() bool {
	if len(s.Files) != len(s.FileHashes) || len(s.Files) == 0 {
		return false
	}
	fs := source.NewFileSet()
	for i, path := range s.Files {
		id, err := fs.Load(path)
		if err != nil {
			return false
		}
		if project.Digest(fs.Get(id).Hash) != s.FileHashes[i] {
			return false
		}
	}
	return true
}

// AnalyzeCached returns a cached snapshot when all its files are unchanged;
// otherwise it runs Analyze, stores the snapshot and returns the full result
// as well. A nil cache always analyzes.
func AnalyzeCached(ctx context.Context, cache *DiskCache, paths []string, opts Options) (*Snapshot, *Result, error) {
	key := CacheKey(paths, opts)
	if cache != nil {
		var snap Snapshot
		ok, err := cache.Get(key, &snap)
		if err == nil && ok && snap.fresh() {
			trace.Point(trace.FromContext(ctx), trace.ScopeDriver, "cache-hit", key.Hex()[:12])
			return &snap, nil, nil
		}
	}

	res, err := Analyze(ctx, paths, opts)
	if err != nil {
		return nil, nil, err
	}
	snap := res.Snapshot(ctx)
	if cache != nil {
		if err := cache.Put(key, snap); err != nil {
			return snap, res, fmt.Errorf("cache: %w", err)
		}
	}
	return snap, res, nil
}
