package diagfmt

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"rustdex/internal/ast"
	"rustdex/internal/diag"
	"rustdex/internal/driver"
	"rustdex/internal/lexer"
	"rustdex/internal/parser"
	"rustdex/internal/source"
	"rustdex/internal/symbols"
)

const astSample = `pub struct P { pub x: int }
impl P {
    fn get(&self) -> int { self.x }
}
fn main() {
    let p = P { x: 1 };
    p.get();
}
`

func parseSample(t *testing.T, text string) (*source.FileSet, *ast.Builder, ast.FileID) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("sample.rs", []byte(text)))
	bag := diag.NewBag(10)
	rep := diag.BagReporter{Bag: bag}
	b := ast.NewBuilder(ast.Hints{}, nil)
	res := parser.ParseFile(file, lexer.New(file, lexer.Options{Reporter: rep}), b, parser.Options{Reporter: rep, MaxErrors: 10})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	return fs, b, res.File
}

func TestBuildAST(t *testing.T) {
	_, b, file := parseSample(t, astSample)
	root, err := BuildAST(b, file)
	if err != nil {
		t.Fatal(err)
	}
	if len(root.Children) != 3 {
		t.Fatalf("expected 3 items, got %d", len(root.Children))
	}
	st := root.Children[0]
	if st.Kind != "struct" || st.Text != "P" || st.Fields["pub"] != true {
		t.Errorf("unexpected struct node %+v", st)
	}
	if len(st.Children) != 1 || st.Children[0].Type != "Field" || st.Children[0].Text != "x" {
		t.Errorf("unexpected fields %+v", st.Children)
	}

	impl := root.Children[1]
	if impl.Kind != "impl" || impl.Children[0].Type != "Target" || impl.Children[0].Text != "P" {
		t.Errorf("unexpected impl node %+v", impl)
	}
	method := impl.Children[1]
	if method.Text != "get" || method.Children[0].Kind != "self" || method.Children[0].Text != "&self" {
		t.Errorf("unexpected method node %+v", method)
	}

	if _, err := BuildAST(b, ast.FileID(99)); err == nil {
		t.Error("expected error for unknown file")
	}
}

func TestFormatASTPretty(t *testing.T) {
	fs, b, file := parseSample(t, astSample)
	var buf bytes.Buffer
	if err := FormatASTPretty(&buf, b, file, fs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"sample.rs (span: 1:1-",
		"├─ Item:struct P [pub=true] (span: 1:1-1:28)",
		"└─ Item:fn main (span: 5:1-8:2)",
		"Expr:MethodCall get",
		"Expr:Struct P",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestFormatASTTree(t *testing.T) {
	fs, b, file := parseSample(t, "fn a() {}\nfn b() {}\n")
	var buf bytes.Buffer
	if err := FormatASTTree(&buf, b, file, fs); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) < 3 {
		t.Fatalf("tree too short:\n%s", buf.String())
	}
	if strings.TrimSpace(lines[0]) != "sample.rs" {
		t.Errorf("root line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "/") || !strings.Contains(lines[1], "\\") {
		t.Errorf("connector line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "Item:fn a") || !strings.Contains(lines[2], "Item:fn b") {
		t.Errorf("children line = %q", lines[2])
	}
}

func TestFormatASTJSON(t *testing.T) {
	_, b, file := parseSample(t, astSample)
	var buf bytes.Buffer
	if err := FormatASTJSON(&buf, b, file); err != nil {
		t.Fatal(err)
	}
	var root ASTNodeOutput
	if err := json.Unmarshal(buf.Bytes(), &root); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if root.Type != "File" || len(root.Children) != 3 {
		t.Errorf("unexpected root %+v", root)
	}
}

func TestFormatTokens(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("t.rs", []byte("// hi\nfn f")))
	toks := lexer.New(file, lexer.Options{KeepTrivia: true}).Tokens()

	var buf bytes.Buffer
	if err := FormatTokensPretty(&buf, toks, fs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "  1: fn") || !strings.Contains(out, "at 2:1-2:3") {
		t.Errorf("unexpected pretty tokens:\n%s", out)
	}
	if !strings.Contains(out, "leading: LineComment, Newline") {
		t.Errorf("expected leading trivia:\n%s", out)
	}

	buf.Reset()
	if err := FormatTokensJSON(&buf, toks, fs); err != nil {
		t.Fatal(err)
	}
	var got []TokenOutput
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[2].Kind != "EOF" || got[1].Text != "f" || got[1].Line != 2 {
		t.Errorf("unexpected JSON tokens %+v", got)
	}
}

func TestFormatSymbols(t *testing.T) {
	res, err := driver.AnalyzeSources(context.Background(), map[string]string{"lib.rs": astSample}, driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	recs := res.Table.Export(res.FileSet)

	var buf bytes.Buffer
	if err := FormatSymbols(&buf, recs, ListTable); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "P::x") || !strings.Contains(buf.String(), "symbol(s)") {
		t.Errorf("unexpected table:\n%s", buf.String())
	}

	buf.Reset()
	if err := FormatSymbols(&buf, recs, ListYAML); err != nil {
		t.Fatal(err)
	}
	var fromYAML []symbols.Record
	if err := yaml.Unmarshal(buf.Bytes(), &fromYAML); err != nil {
		t.Fatal(err)
	}
	if len(fromYAML) != len(recs) {
		t.Errorf("yaml: got %d records, want %d", len(fromYAML), len(recs))
	}

	buf.Reset()
	if err := FormatSymbols(&buf, recs, ListMsgpack); err != nil {
		t.Fatal(err)
	}
	var fromMsgpack []symbols.Record
	if err := msgpack.Unmarshal(buf.Bytes(), &fromMsgpack); err != nil {
		t.Fatal(err)
	}
	if len(fromMsgpack) != len(recs) || fromMsgpack[0].QualifiedPath != recs[0].QualifiedPath {
		t.Errorf("msgpack records differ")
	}

	refs := RefRecords(res.Table, res.FileSet)
	var sawMethod bool
	for _, r := range refs {
		if r.Text == "P" && r.Kind == "type_ref" && r.Target == "P" {
			sawMethod = true
		}
	}
	if !sawMethod {
		t.Errorf("expected a type_ref to P in %+v", refs)
	}
	buf.Reset()
	if err := FormatRefs(&buf, refs, ListTable); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "reference(s)") {
		t.Errorf("unexpected refs table:\n%s", buf.String())
	}

	if _, err := ParseListFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}
