package dag

import (
	"slices"
	"testing"

	"rustdex/internal/diag"
	"rustdex/internal/project"
	"rustdex/internal/source"
)

func idsToNames(idx Index, ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}

func TestBuildIndexIncludesEdgeEnds(t *testing.T) {
	edges := []Edge{{From: "/p/main.rs", To: "/p/a.rs"}}
	idx := BuildIndex([]string{"/p/main.rs", "/p/b.rs"}, edges)

	want := []string{"/p/a.rs", "/p/b.rs", "/p/main.rs"}
	if !slices.Equal(idx.IDToName, want) {
		t.Fatalf("IDToName = %v, want %v", idx.IDToName, want)
	}
	for i, name := range want {
		if id := idx.NameToID[name]; int(id) != i {
			t.Fatalf("NameToID[%q] = %d, want %d", name, id, i)
		}
	}
}

func TestToposortOrdersDeclaringFilesFirst(t *testing.T) {
	files := []string{"/p/main.rs", "/p/a.rs", "/p/a/b.rs"}
	edges := []Edge{
		{From: "/p/a.rs", To: "/p/a/b.rs"},
		{From: "/p/main.rs", To: "/p/a.rs"},
	}
	idx := BuildIndex(files, edges)
	g := BuildGraph(idx, files, edges)
	topo := ToposortKahn(g)

	if topo.Cyclic {
		t.Fatalf("unexpected cycle: %v", idsToNames(idx, topo.Cycles))
	}
	got := idsToNames(idx, topo.Order)
	want := []string{"/p/main.rs", "/p/a.rs", "/p/a/b.rs"}
	if !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if len(topo.Batches) != 3 {
		t.Fatalf("batches = %d, want 3", len(topo.Batches))
	}
}

func TestBuildGraphDropsAbsentTargets(t *testing.T) {
	files := []string{"/p/main.rs"}
	edges := []Edge{{From: "/p/main.rs", To: "/p/gone.rs"}}
	idx := BuildIndex(files, edges)
	g := BuildGraph(idx, files, edges)

	if n := len(g.Edges[int(idx.NameToID["/p/main.rs"])]); n != 0 {
		t.Fatalf("edges from main = %d, want 0", n)
	}
	if topo := ToposortKahn(g); len(topo.Order) != 1 {
		t.Fatalf("order = %v, want only main", idsToNames(idx, topo.Order))
	}
}

func TestReportCycles(t *testing.T) {
	files := []string{"/p/a.rs", "/p/b.rs", "/p/main.rs"}
	edges := []Edge{
		{From: "/p/main.rs", To: "/p/a.rs", Span: source.Span{File: 3, Start: 0, End: 6}},
		{From: "/p/a.rs", To: "/p/b.rs", Span: source.Span{File: 1, Start: 0, End: 6}},
		{From: "/p/b.rs", To: "/p/a.rs", Span: source.Span{File: 2, Start: 0, End: 6}},
	}
	idx := BuildIndex(files, edges)
	topo := ToposortKahn(BuildGraph(idx, files, edges))
	if !topo.Cyclic {
		t.Fatal("expected a cycle")
	}
	if got := idsToNames(idx, topo.Cycles); !slices.Equal(got, []string{"/p/a.rs", "/p/b.rs"}) {
		t.Fatalf("cycles = %v", got)
	}

	bag := diag.NewBag(10)
	ReportCycles(idx, edges, topo, diag.BagReporter{Bag: bag})
	if bag.Len() != 2 {
		t.Fatalf("reports = %d, want 2", bag.Len())
	}
	for _, d := range bag.Items() {
		if d.Code != diag.ProjModuleFileReused {
			t.Fatalf("code = %v", d.Code)
		}
	}
}

func TestDigestsCoverModuleFiles(t *testing.T) {
	files := []string{"/p/main.rs", "/p/a.rs"}
	edges := []Edge{{From: "/p/main.rs", To: "/p/a.rs"}}
	idx := BuildIndex(files, edges)
	g := BuildGraph(idx, files, edges)
	topo := ToposortKahn(g)

	content := map[string]string{"/p/main.rs": "mod a;", "/p/a.rs": "fn f() {}"}
	hash := func(id NodeID) project.Digest {
		return project.HashString(content[idx.IDToName[int(id)]])
	}
	before := Digests(g, topo, hash)[idx.NameToID["/p/main.rs"]]

	content["/p/a.rs"] = "fn g() {}"
	after := Digests(g, topo, hash)[idx.NameToID["/p/main.rs"]]
	if before == after {
		t.Fatal("root digest must change when a module file changes")
	}
}
