package driver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"rustdex/internal/ast"
	"rustdex/internal/diag"
	"rustdex/internal/project"
	"rustdex/internal/project/dag"
	"rustdex/internal/source"
	"rustdex/internal/symbols"
)

// modDecl is an out-of-line `mod name;` found in a parsed file.
type modDecl struct {
	file string
	key  symbols.ModuleKey
	name string
	span source.Span
	dir  string
}

// binding ties a declaration to the file holding the module body.
type binding struct {
	decl   modDecl
	target string
}

// moduleDecls lists `mod name;` items, descending into inline modules:
// `mod a { mod b; }` in x/main.rs looks for x/a/b.rs.
func moduleDecls(pf *ParsedFile) []modDecl {
	if pf.AST == nil {
		return nil
	}
	file := pf.AST.Files.Get(pf.ASTFile)
	if file == nil {
		return nil
	}
	var out []modDecl
	var walk func(items []ast.ItemID, dir string)
	walk = func(items []ast.ItemID, dir string) {
		for _, id := range items {
			item := pf.AST.Items.Get(id)
			if item == nil || item.Kind != ast.ItemModule {
				continue
			}
			m, ok := pf.AST.Items.Module(id)
			if !ok {
				continue
			}
			name := pf.AST.Name(item.Name)
			if name == "" {
				continue
			}
			if m.Inline {
				walk(m.Items, filepath.Join(dir, name))
				continue
			}
			out = append(out, modDecl{
				file: pf.Path,
				key:  symbols.ModuleKey{File: item.Span.File, Item: id},
				name: name,
				span: item.Span,
				dir:  dir,
			})
		}
	}
	walk(file.Items, project.ModuleDir(pf.Path))
	return out
}

// mapModules binds every `mod name;` to its file, loading and parsing new
// files round by round until no declaration points at an unseen file.
func (s *session) mapModules(ctx context.Context, pending []string) error {
	for len(pending) > 0 {
		var next []string
		for _, path := range pending {
			pf := s.files[path]
			if !pf.OK() {
				continue
			}
			for _, d := range moduleDecls(pf) {
				target, ok := s.bindModule(d)
				if !ok {
					continue
				}
				if _, loaded := s.files[target]; !loaded && !slices.Contains(next, target) {
					next = append(next, target)
				}
			}
		}
		if len(next) == 0 {
			break
		}
		slices.Sort(next)
		batch := s.loadBatch(next)
		s.register(batch)
		if err := s.parseBatch(ctx, batch); err != nil {
			return err
		}
		pending = next
	}
	return nil
}

// bindModule resolves d and records the binding; problems become PRJ diagnostics.
func (s *session) bindModule(d modDecl) (string, bool) {
	target, err := s.loader.resolveModule(d.dir, d.name)
	if err != nil {
		code := diag.IOLoadFileError
		switch {
		case errors.Is(err, project.ErrModuleFileMissing):
			code = diag.ProjMissingModuleFile
		case errors.Is(err, project.ErrModuleFileAmbiguous):
			code = diag.ProjAmbiguousModuleFile
		}
		diag.ReportError(s.reporter, code, d.span, err.Error()).Emit()
		return "", false
	}
	target = filepath.Clean(target)

	switch prev, claimed := s.claimedBy[target]; {
	case target == d.file:
		diag.ReportError(s.reporter, diag.ProjModuleFileReused, d.span,
			fmt.Sprintf("module '%s' resolves to the file declaring it", d.name)).Emit()
		return "", false
	case claimed:
		diag.ReportError(s.reporter, diag.ProjModuleFileReused, d.span,
			fmt.Sprintf("file %q is already loaded as a module", source.BaseName(target))).
			WithNote(prev.span, "first declared here").
			Emit()
		return "", false
	case s.manifestRoot[target]:
		diag.ReportError(s.reporter, diag.ProjModuleFileReused, d.span,
			fmt.Sprintf("file %q is a crate root and cannot be a module", source.BaseName(target))).Emit()
		return "", false
	}
	s.claimedBy[target] = d
	s.bindings = append(s.bindings, binding{decl: d, target: target})
	return target, true
}

// checkModuleGraph drops bindings that form `mod` cycles and computes
// per-file digests covering every module file below them.
func (s *session) checkModuleGraph() {
	edges := make([]dag.Edge, 0, len(s.bindings))
	for _, b := range s.bindings {
		edges = append(edges, dag.Edge{From: b.decl.file, To: b.target, Span: b.decl.span})
	}
	present := make([]string, 0, len(s.order))
	for _, path := range s.order {
		if s.files[path].OK() {
			present = append(present, path)
		}
	}
	idx := dag.BuildIndex(present, edges)
	g := dag.BuildGraph(idx, present, edges)
	topo := dag.ToposortKahn(g)
	dag.ReportCycles(idx, edges, topo, s.reporter)

	if topo.Cyclic {
		inCycle := make(map[string]bool, len(topo.Cycles))
		for _, id := range topo.Cycles {
			inCycle[idx.IDToName[int(id)]] = true
		}
		kept := s.bindings[:0]
		for _, b := range s.bindings {
			if inCycle[b.decl.file] && inCycle[b.target] {
				delete(s.claimedBy, b.target)
				continue
			}
			kept = append(kept, b)
		}
		s.bindings = kept
	}

	digests := dag.Digests(g, topo, func(id dag.NodeID) project.Digest {
		if pf := s.files[idx.IDToName[int(id)]]; pf.OK() {
			return project.Digest(pf.File.Hash)
		}
		return project.Digest{}
	})
	s.digests = make(map[string]project.Digest, len(present))
	for _, path := range present {
		s.digests[path] = digests[idx.NameToID[path]]
	}
}

// crates builds one crate per root. Without a manifest every loaded file
// no `mod` declaration claims is a root.
func (s *session) crates() ([]symbols.Crate, []Unit) {
	mods := make(map[symbols.ModuleKey]symbols.Source, len(s.bindings))
	children := make(map[string][]string, len(s.bindings))
	for _, b := range s.bindings {
		pf := s.files[b.target]
		if !pf.OK() || pf.AST == nil {
			continue
		}
		mods[b.decl.key] = symbols.Source{AST: pf.AST, File: pf.ASTFile}
		children[b.decl.file] = append(children[b.decl.file], b.target)
	}

	var roots []string
	if s.manifest != nil {
		roots = slices.Clone(s.manifest.Roots)
	} else {
		for _, path := range s.order {
			if _, claimed := s.claimedBy[path]; !claimed {
				roots = append(roots, path)
			}
		}
	}

	var crates []symbols.Crate
	var units []Unit
	for _, root := range roots {
		pf := s.files[filepath.Clean(root)]
		if !pf.OK() || pf.AST == nil {
			continue
		}
		crates = append(crates, symbols.Crate{
			Name:    s.manifest.CrateName(pf.Path),
			Root:    symbols.Source{AST: pf.AST, File: pf.ASTFile},
			Modules: mods,
		})
		units = append(units, Unit{
			Name:   s.manifest.CrateName(pf.Path),
			Root:   pf.Path,
			Files:  unitFiles(pf.Path, children),
			Digest: s.digests[pf.Path],
		})
	}
	return crates, units
}

func unitFiles(root string, children map[string][]string) []string {
	out := []string{root}
	seen := map[string]bool{root: true}
	for i := 0; i < len(out); i++ {
		for _, child := range children[out[i]] {
			if !seen[child] {
				seen[child] = true
				out = append(out, child)
			}
		}
	}
	slices.Sort(out[1:])
	return out
}
