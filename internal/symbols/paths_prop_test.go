package symbols

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// genModuleTree renders a random module nesting and returns the qualified
// paths it must produce.
func genModuleTree(t *rapid.T) (string, []string) {
	var src strings.Builder
	var want []string
	var gen func(prefix string, depth int)
	gen = func(prefix string, depth int) {
		n := 0
		if depth < 4 {
			n = rapid.IntRange(0, 3).Draw(t, "mods")
		}
		for i := range n {
			name := fmt.Sprintf("m%d", i)
			qual := qualJoin(prefix, name)
			want = append(want, qual)
			src.WriteString("pub mod " + name + " {\n")
			gen(qual, depth+1)
			src.WriteString("}\n")
		}
		if rapid.Bool().Draw(t, "fn") {
			want = append(want, qualJoin(prefix, "hello"))
			src.WriteString("pub fn hello() { }\n")
		}
		if rapid.Bool().Draw(t, "struct") {
			want = append(want, qualJoin(prefix, "S"), qualJoin(prefix, "S::f"))
			src.WriteString("pub struct S { pub f: u32 }\n")
		}
	}
	gen("", 0)
	slices.Sort(want)
	return src.String(), want
}

func TestQualifiedPaths_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src, want := genModuleTree(rt)
		b := buildSource(rt, src)
		b.mustClean(rt)
		got := b.table.QualifiedPaths()
		if !slices.Equal(got, want) {
			rt.Fatalf("source:\n%s\n got %v\nwant %v", src, got, want)
		}
		for _, q := range want {
			if strings.HasSuffix(q, "::f") {
				continue // fields are not path members
			}
			res, err := b.table.LookupString(q, b.root(), NoPos)
			if err != nil {
				rt.Fatalf("%s: %v", q, err)
			}
			if sym := b.table.Symbols.Get(res.Symbol); sym.Qual != q {
				rt.Fatalf("%s resolved to %s", q, sym.Qual)
			}
		}
	})
}
