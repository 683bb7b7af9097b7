package driver

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"rustdex/internal/ast"
	"rustdex/internal/diag"
	"rustdex/internal/pipeline"
	"rustdex/internal/source"
	"rustdex/internal/trace"
)

// ParsedFile is one loaded and parsed source file.
type ParsedFile struct {
	Path    string
	File    *source.File // nil when loading failed
	AST     *ast.Builder
	ASTFile ast.FileID
	Bag     *diag.Bag
}

// OK reports whether the file was loaded.
func (pf *ParsedFile) OK() bool { return pf != nil && pf.File != nil }

// loadBatch reads paths in order so FileIDs are deterministic.
func (s *session) loadBatch(paths []string) []*ParsedFile {
	out := make([]*ParsedFile, len(paths))
	for i, path := range paths {
		pf := &ParsedFile{Path: path, Bag: diag.NewBag(s.opts.MaxDiagnostics)}
		id, err := s.loader.load(s.fs, path)
		if err != nil {
			// Файл не загрузился: I/O диагностика без позиции
			pf.Bag.Add(diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.IOLoadFileError,
				Message:  "failed to load file: " + err.Error(),
			})
			pipeline.Emit(s.opts.Progress, pipeline.Event{File: path, Stage: pipeline.StageLoad, Status: pipeline.StatusError, Err: err})
		} else {
			pf.File = s.fs.Get(id)
		}
		out[i] = pf
	}
	return out
}

// parseBatch lexes and parses files in parallel. Every goroutine writes
// only its own *ParsedFile; the shared interner is safe for concurrent use.
func (s *session) parseBatch(ctx context.Context, files []*ParsedFile) error {
	if len(files) == 0 {
		return nil
	}
	jobs := s.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for _, pf := range files {
		if !pf.OK() {
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			start := time.Now()
			_, span := trace.Start(gctx, trace.ScopeModule, "parse-file")
			span.WithExtra("file", pf.Path)
			pipeline.Emit(s.opts.Progress, pipeline.Event{File: pf.Path, Stage: pipeline.StageParse, Status: pipeline.StatusWorking})

			pf.AST = ast.NewBuilder(ast.Hints{}, s.strings)
			astFile, err := parseInto(pf.File, pf.AST, pf.Bag, s.opts.MaxDiagnostics)
			if err != nil {
				span.End(err.Error())
				return err
			}
			pf.ASTFile = astFile

			status := pipeline.StatusDone
			if pf.Bag.HasErrors() {
				status = pipeline.StatusError
			}
			span.End(string(status))
			pipeline.Emit(s.opts.Progress, pipeline.Event{File: pf.Path, Stage: pipeline.StageParse, Status: status, Elapsed: time.Since(start)})
			return nil
		})
	}
	return g.Wait()
}
