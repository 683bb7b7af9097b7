package dag

import (
	"fmt"
	"slices"
	"strings"

	"rustdex/internal/diag"
	"rustdex/internal/source"
)

// Edge is one `mod name;` binding: From declares a module stored in To.
type Edge struct {
	From string
	To   string
	Span source.Span // the declaration
}

type Graph struct {
	Edges   [][]NodeID // Edges[from] = []to
	Indeg   []int      // входящие степени для Kahn
	Present []bool     // файл реально загружен
}

// BuildGraph builds the file graph. present lists loaded files; edges to
// files that are not present are dropped (they were already reported as
// missing module files).
func BuildGraph(idx Index, present []string, edges []Edge) Graph {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]NodeID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	for _, p := range present {
		if id, ok := idx.NameToID[p]; ok {
			g.Present[int(id)] = true
		}
	}
	seen := make(map[[2]NodeID]struct{}, len(edges))
	for _, e := range edges {
		from, okFrom := idx.NameToID[e.From]
		to, okTo := idx.NameToID[e.To]
		if !okFrom || !okTo || !g.Present[int(from)] || !g.Present[int(to)] {
			continue
		}
		key := [2]NodeID{from, to}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		g.Edges[int(from)] = append(g.Edges[int(from)], to)
		g.Indeg[int(to)]++
	}
	for from := range g.Edges {
		if len(g.Edges[from]) > 1 {
			slices.Sort(g.Edges[from])
		}
	}
	return g
}

// ReportCycles reports every declaration whose edge stays inside a cycle.
func ReportCycles(idx Index, edges []Edge, topo *Topo, reporter diag.Reporter) {
	if topo == nil || !topo.Cyclic || len(topo.Cycles) == 0 || reporter == nil {
		return
	}
	inCycle := make(map[string]bool, len(topo.Cycles))
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		name := idx.IDToName[int(id)]
		inCycle[name] = true
		names = append(names, source.BaseName(name))
	}
	summary := strings.Join(names, " -> ")

	for _, e := range edges {
		if !inCycle[e.From] || !inCycle[e.To] {
			continue
		}
		msg := fmt.Sprintf("module file %q is part of a `mod` cycle: %s", source.BaseName(e.To), summary)
		diag.ReportError(reporter, diag.ProjModuleFileReused, e.Span, msg).Emit()
	}
}
