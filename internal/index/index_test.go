package index

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rustdex/internal/driver"
	"rustdex/internal/testkit"
)

var fixture = map[string]string{
	"main.rs": `mod a;
use a::inner as m;
struct S { x: int }
fn main() {
    let v = 1;
    m::g(v);
}
`,
	"a.rs": `pub fn f() {}
pub mod inner {
    pub fn g(x: int) {}
}
`,
}

func buildFixture(t *testing.T) *Index {
	t.Helper()
	res, err := driver.AnalyzeSources(context.Background(), fixture, driver.Options{MaxDiagnostics: 100})
	require.NoError(t, err)
	require.False(t, res.Bag.HasErrors(), "%v", res.Bag.Items())
	return Build(res, Options{})
}

func findRow(rows []Row, kind, qual string) (Row, bool) {
	for _, r := range rows {
		if r.Kind == kind && r.Qualname == qual {
			return r, true
		}
	}
	return Row{}, false
}

func TestBuild_Defs(t *testing.T) {
	ix := buildFixture(t)

	for _, tc := range []struct{ kind, qual string }{
		{KindModule, "main"},
		{KindModule, "main::a"},
		{KindModule, "main::a::inner"},
		{KindModuleAlias, "main::m"},
		{KindStruct, "main::S"},
		{KindField, "main::S::x"},
		{KindFunction, "main::main"},
		{KindFunction, "main::a::f"},
		{KindFunction, "main::a::inner::g"},
		{KindVariable, "main::main::v"},
		{KindVariable, "main::a::inner::g::x"},
	} {
		_, ok := findRow(ix.Rows, tc.kind, tc.qual)
		assert.True(t, ok, "missing %s %s", tc.kind, tc.qual)
	}

	root, _ := findRow(ix.Rows, KindModule, "main")
	assert.Equal(t, "main.rs", root.File)
	assert.Equal(t, uint32(1), root.Line)
	assert.Equal(t, uint32(0), root.ExtentStart)

	s, _ := findRow(ix.Rows, KindStruct, "main::S")
	assert.Equal(t, "S", s.Name)
	assert.Equal(t, uint32(3), s.Line)
	assert.Equal(t, uint32(8), s.Col)
	assert.Equal(t, uint32(strings.Index(fixture["main.rs"], "S {")), s.ExtentStart)
	assert.Equal(t, s.ExtentStart+1, s.ExtentEnd)
	assert.NotZero(t, s.ID)

	require.Len(t, ix.Files, 2)
	for _, f := range ix.Files {
		assert.Equal(t, "main", f.Unit)
		assert.Len(t, f.Hash, 64)
	}
}

func TestBuild_Refs(t *testing.T) {
	ix := buildFixture(t)

	g, ok := findRow(ix.Rows, KindFunction, "main::a::inner::g")
	require.True(t, ok)
	call, ok := findRow(ix.Rows, "function_ref", "main::a::inner::g")
	require.True(t, ok)
	assert.True(t, call.IsRef())
	assert.Equal(t, g.ID, call.RefID)
	assert.Equal(t, "main.rs", call.File)
	assert.Equal(t, uint32(6), call.Line)
	assert.Equal(t, uint32(8), call.Col)

	v, ok := findRow(ix.Rows, KindVariable, "main::main::v")
	require.True(t, ok)
	use, ok := findRow(ix.Rows, "variable_ref", "main::main::v")
	require.True(t, ok)
	assert.Equal(t, v.ID, use.RefID)
	assert.Greater(t, use.ExtentStart, v.ExtentStart)

	// int is a builtin: no ref rows point at the prelude
	for _, r := range ix.Rows {
		if r.IsRef() {
			assert.NotEqual(t, "int", r.Name)
		}
	}

	noRefs := func() *Index {
		res, err := driver.AnalyzeSources(context.Background(), fixture, driver.Options{})
		require.NoError(t, err)
		return Build(res, Options{SkipRefs: true})
	}()
	for _, r := range noRefs.Rows {
		assert.False(t, r.IsRef(), "%+v", r)
	}
}

func TestBuild_Sorted(t *testing.T) {
	ix := buildFixture(t)
	for i := 1; i < len(ix.Rows); i++ {
		assert.LessOrEqual(t, compareRows(ix.Rows[i-1], ix.Rows[i]), 0)
	}
}

func TestBuild_BaseDir(t *testing.T) {
	dir := t.TempDir()
	files := make(map[string]string, len(fixture))
	for name, text := range fixture {
		files[filepath.Join(dir, name)] = text
	}
	res, err := driver.AnalyzeSources(context.Background(), files, driver.Options{})
	require.NoError(t, err)
	ix := Build(res, Options{BaseDir: dir})
	for _, r := range ix.Rows {
		assert.False(t, filepath.IsAbs(r.File), r.File)
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	ix := buildFixture(t)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ix.Records()))

	assert.Contains(t, buf.String(),
		"\nmodule,name,main,qualname,main,file_name,main.rs,file_line,1,file_col,1,extent_start,0,extent_end,0,id,")

	recs, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, recs, len(ix.Rows))
	rep := Compare(ix.Records(), recs, CompareOptions{})
	assert.True(t, rep.OK(), "%v", rep.Mismatches)
	assert.Equal(t, len(ix.Rows), rep.Matched)
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("function,name,f\nfunction,name\n"))
	require.ErrorIs(t, err, ErrOddFields)
	assert.Contains(t, err.Error(), "line 2")

	recs, err := ReadCSV(strings.NewReader("function,name,f,name,g\n"))
	require.NoError(t, err)
	v, _ := recs[0].Get("name")
	assert.Equal(t, "g", v)
}

func mustRead(t *testing.T, text string) []Record {
	t.Helper()
	recs, err := ReadCSV(strings.NewReader(text))
	require.NoError(t, err)
	return recs
}

func kinds(rep *Report) []MismatchKind {
	var out []MismatchKind
	for _, m := range rep.Mismatches {
		out = append(out, m.Kind)
	}
	return out
}

func TestCompare(t *testing.T) {
	expected := mustRead(t, `function,name,f,extent_start,10,qualname,a::f
variable,name,x,extent_start,20
module,name,m
`)

	tests := []struct {
		name  string
		found string
		opts  CompareOptions
		want  []MismatchKind
	}{
		{
			name:  "exact",
			found: "variable,extent_start,20,name,x\nfunction,name,f,extent_start,10,qualname,a::f\n",
		},
		{
			name:  "missing row",
			found: "function,name,f,extent_start,10,qualname,a::f\n",
			want:  []MismatchKind{MissingRow},
		},
		{
			name:  "same offset other kind",
			found: "function,name,f,extent_start,10,qualname,a::f\nfunction,name,x,extent_start,20\n",
			want:  []MismatchKind{MissingRow, ExtraRow},
		},
		{
			name:  "wrong value and missing column",
			found: "function,name,g,extent_start,10\nvariable,name,x,extent_start,20\n",
			want:  []MismatchKind{WrongValue, MissingCol},
		},
		{
			name:  "extra column",
			found: "function,name,f,extent_start,10,qualname,a::f,id,3\nvariable,name,x,extent_start,20\n",
			want:  []MismatchKind{ExtraCol},
		},
		{
			name:  "extra column allowed",
			found: "function,name,f,extent_start,10,qualname,a::f,id,3\nvariable,name,x,extent_start,20\n",
			opts:  CompareOptions{AllowExtraCols: true},
		},
		{
			name:  "extra row",
			found: "function,name,f,extent_start,10,qualname,a::f\nvariable,name,x,extent_start,20\nvariable,name,y,extent_start,30\n",
			want:  []MismatchKind{ExtraRow},
		},
		{
			name:  "extra row allowed",
			found: "function,name,f,extent_start,10,qualname,a::f\nvariable,name,x,extent_start,20\nvariable,name,y,extent_start,30\n",
			opts:  CompareOptions{AllowExtraRows: true},
		},
		{
			name:  "last duplicate wins",
			found: "function,name,old,extent_start,10,qualname,a::f\nfunction,name,f,extent_start,10,qualname,a::f\nvariable,name,x,extent_start,20\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := Compare(expected, mustRead(t, tt.found), tt.opts)
			assert.Equal(t, tt.want, kinds(rep))
			assert.Equal(t, len(tt.want) == 0, rep.OK())
			// the module row has no extent_start and is never compared
			assert.GreaterOrEqual(t, rep.Skipped, 1)
			for _, m := range rep.Mismatches {
				assert.NotEmpty(t, m.String())
			}
		})
	}
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, ":memory:", testkit.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	v, err := st.Version(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v, int64(1))

	ix := buildFixture(t)
	run, err := st.Save(ctx, ix, RunMeta{Tool: "test", BaseDir: "."})
	require.NoError(t, err)
	assert.Len(t, run.ID, 36)
	assert.Equal(t, RunCompleted, run.Status)

	stored, err := st.Run(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, len(ix.Files), stored.Files)
	assert.Equal(t, len(ix.Rows), stored.Symbols+stored.Refs)
	assert.Equal(t, "test", stored.Tool)
	assert.False(t, stored.CompletedAt.Before(stored.StartedAt))

	loaded, err := st.Load(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, ix.Files, loaded.Files)
	rep := Compare(ix.Records(), loaded.Records(), CompareOptions{})
	assert.True(t, rep.OK(), "%v", rep.Mismatches)

	defs, err := st.FindQualname(ctx, run.ID, "main::a::f")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, KindFunction, defs[0].Kind)
	assert.Equal(t, "a.rs", defs[0].File)

	second, err := st.Save(ctx, ix, RunMeta{Tool: "test"})
	require.NoError(t, err)
	runs, err := st.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	latest, err := st.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	require.NoError(t, st.DeleteRun(ctx, run.ID))
	_, err = st.Run(ctx, run.ID)
	require.ErrorIs(t, err, ErrRunNotFound)
	require.ErrorIs(t, st.DeleteRun(ctx, run.ID), ErrRunNotFound)
}

func TestStore_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")
	st, err := Open(ctx, path, nil)
	require.NoError(t, err)
	_, err = st.Save(ctx, buildFixture(t), RunMeta{})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	// reopening applies no migration twice
	st, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	runs, err := st.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
