package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"rustdex/internal/diag"
	"rustdex/internal/observ"
	"rustdex/internal/pipeline"
	"rustdex/internal/project"
	"rustdex/internal/source"
	"rustdex/internal/symbols"
	"rustdex/internal/trace"
)

// Options configures one analysis run.
type Options struct {
	MaxDiagnostics int
	Jobs           int // <= 0 means GOMAXPROCS
	Prelude        []symbols.PreludeEntry
	// Validate runs Table.Validate after pass 2 and reports violations as ICE.
	Validate bool
	// Manifest, when set, names the roots; otherwise every unclaimed file is one.
	Manifest *project.Manifest
	Progress pipeline.ProgressSink
	Timer    *observ.Timer
}

// Unit is one compilation unit of a run.
type Unit struct {
	ID     symbols.UnitID
	Name   string
	Root   string
	Files  []string // root first, module files sorted
	Digest project.Digest
}

// Result is everything a run produced. Table is sealed and safe for
// concurrent queries.
type Result struct {
	FileSet *source.FileSet
	Strings *source.Interner
	Files   []*ParsedFile // load order
	Table   *symbols.Table
	Bag     *diag.Bag
	Units   []Unit
	Timer   *observ.Timer
}

// File returns the parsed file for path.
func (r *Result) File(path string) (*ParsedFile, bool) {
	path = filepath.Clean(path)
	for _, pf := range r.Files {
		if pf.Path == path {
			return pf, true
		}
	}
	return nil, false
}

// UnitOf returns the unit a file belongs to.
func (r *Result) UnitOf(path string) (Unit, bool) {
	path = filepath.Clean(path)
	for _, u := range r.Units {
		if slices.Contains(u.Files, path) {
			return u, true
		}
	}
	return Unit{}, false
}

type session struct {
	loader   loader
	opts     Options
	fs       *source.FileSet
	strings  *source.Interner
	bag      *diag.Bag
	reporter diag.Reporter

	manifest     *project.Manifest
	manifestRoot map[string]bool

	files     map[string]*ParsedFile
	order     []string
	claimedBy map[string]modDecl
	bindings  []binding
	digests   map[string]project.Digest
}

// Analyze loads paths (files or directories) from disk and runs the whole
// pipeline: load, parallel parse, `mod` mapping, pass 1, pass 2.
func Analyze(ctx context.Context, paths []string, opts Options) (*Result, error) {
	return analyze(ctx, diskLoader{}, paths, opts)
}

// AnalyzeSources is Analyze over in-memory files keyed by path. Every file
// is an input; `mod name;` declarations bind among them.
func AnalyzeSources(ctx context.Context, files map[string]string, opts Options) (*Result, error) {
	ml := newMemLoader(files)
	paths := make([]string, 0, len(ml))
	for name := range ml {
		paths = append(paths, name)
	}
	return analyze(ctx, ml, paths, opts)
}

func analyze(ctx context.Context, ld loader, paths []string, opts Options) (*Result, error) {
	if opts.Timer == nil {
		opts.Timer = observ.NewTimer()
	}
	s := &session{
		loader:       ld,
		opts:         opts,
		fs:           source.NewFileSet(),
		strings:      source.NewInterner(),
		bag:          diag.NewBag(opts.MaxDiagnostics),
		manifest:     opts.Manifest,
		manifestRoot: map[string]bool{},
		files:        map[string]*ParsedFile{},
		claimedBy:    map[string]modDecl{},
	}
	s.reporter = diag.BagReporter{Bag: s.bag}

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "analyze")
	defer func() { span.End(fmt.Sprintf("%d files", len(s.order))) }()

	inputs, err := s.inputs(ctx, paths)
	if err != nil {
		return nil, err
	}

	if err := s.phase(ctx, pipeline.StageParse, func(ctx context.Context) (string, error) {
		pipeline.EmitQueued(s.opts.Progress, inputs)
		if err := s.parseBatch(ctx, s.filesOf(inputs)); err != nil {
			return "", err
		}
		if err := s.mapModules(ctx, inputs); err != nil {
			return "", err
		}
		s.checkModuleGraph()
		return fmt.Sprintf("%d files, %d module files", len(s.order), len(s.bindings)), nil
	}); err != nil {
		return nil, err
	}

	crates, units := s.crates()
	b := symbols.NewBuilder(symbols.NewTable(symbols.Hints{}, s.strings), symbols.Options{
		Reporter: s.reporter,
		Prelude:  opts.Prelude,
		Validate: opts.Validate,
	})
	_ = s.phase(ctx, pipeline.StagePass1, func(context.Context) (string, error) {
		for i, c := range crates {
			units[i].ID = b.Declare(c)
		}
		return fmt.Sprintf("%d units", len(units)), nil
	})
	var table *symbols.Table
	_ = s.phase(ctx, pipeline.StagePass2, func(context.Context) (string, error) {
		table = b.Resolve()
		return fmt.Sprintf("%d refs", len(table.Refs)), nil
	})

	bag := diag.NewBag(opts.MaxDiagnostics)
	files := make([]*ParsedFile, 0, len(s.order))
	for _, path := range s.order {
		pf := s.files[path]
		files = append(files, pf)
		bag.Merge(pf.Bag)
	}
	bag.Merge(s.bag)
	bag.Sort()
	bag.Dedup()

	return &Result{
		FileSet: s.fs,
		Strings: s.strings,
		Files:   files,
		Table:   table,
		Bag:     bag,
		Units:   units,
		Timer:   opts.Timer,
	}, nil
}

// inputs expands the command line (or the manifest roots) and loads it.
func (s *session) inputs(ctx context.Context, paths []string) ([]string, error) {
	var inputs []string
	err := s.phase(ctx, pipeline.StageLoad, func(context.Context) (string, error) {
		var err error
		if s.manifest != nil {
			inputs = dedupPaths(slices.Clone(s.manifest.Roots))
			for _, root := range inputs {
				s.manifestRoot[root] = true
			}
		} else {
			inputs, err = s.loader.expand(paths)
			if err != nil {
				return "", err
			}
		}
		if len(inputs) == 0 {
			return "", fmt.Errorf("no %s files in %s", project.SourceExt, strings.Join(paths, ", "))
		}
		s.register(s.loadBatch(inputs))
		return fmt.Sprintf("%d files", len(inputs)), nil
	})
	return inputs, err
}

func (s *session) register(batch []*ParsedFile) {
	for _, pf := range batch {
		if _, dup := s.files[pf.Path]; dup {
			continue
		}
		s.files[pf.Path] = pf
		s.order = append(s.order, pf.Path)
	}
}

func (s *session) filesOf(paths []string) []*ParsedFile {
	out := make([]*ParsedFile, 0, len(paths))
	for _, p := range paths {
		if pf, ok := s.files[p]; ok {
			out = append(out, pf)
		}
	}
	return out
}

// phase wraps fn in a trace span, a timer phase and pipeline events.
func (s *session) phase(ctx context.Context, stage pipeline.Stage, fn func(context.Context) (string, error)) error {
	start := time.Now()
	done := s.opts.Timer.Track(string(stage))
	ctx, span := trace.Start(ctx, trace.ScopePass, string(stage))
	pipeline.Emit(s.opts.Progress, pipeline.Event{Stage: stage, Status: pipeline.StatusWorking})

	note, err := fn(ctx)
	status := pipeline.StatusDone
	if err != nil {
		status = pipeline.StatusError
		note = err.Error()
	}
	span.End(note)
	done(note)
	pipeline.Emit(s.opts.Progress, pipeline.Event{Stage: stage, Status: status, Err: err, Elapsed: time.Since(start)})
	return err
}
