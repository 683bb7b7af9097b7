package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rustdex/internal/driver"
	"rustdex/internal/observ"
	"rustdex/internal/resolve"
)

const replFixture = `mod sub {
    pub mod sub2 {
        pub fn hello() {}
    }
}
use sub::sub2 as alias;
fn main() {
    sub::sub2::hello();
    alias::hello();
}
`

func newTestQuerier(t *testing.T) *querier {
	t.Helper()
	res, err := driver.AnalyzeSources(context.Background(), map[string]string{"src/main.rs": replFixture}, driver.Options{})
	require.NoError(t, err)
	require.False(t, res.Bag.HasErrors(), "%v", res.Bag.Items())
	eng, err := resolve.FromResult(res)
	require.NoError(t, err)
	q, err := newQuerier(eng, "")
	require.NoError(t, err)
	return q
}

func TestQuerier_Position(t *testing.T) {
	q := newTestQuerier(t)

	_, off, err := q.position("src/main.rs:8:5")
	require.NoError(t, err)
	assert.Equal(t, uint32(strings.Index(replFixture, "sub::sub2::hello")), off) // #nosec G115 -- test input

	// суффикс пути тоже подходит
	_, off2, err := q.position("main.rs:8:5")
	require.NoError(t, err)
	assert.Equal(t, off, off2)

	for _, bad := range []string{"main.rs", "main.rs:8", "main.rs:x:1", "main.rs:1:y", "other.rs:1:1"} {
		_, _, err := q.position(bad)
		assert.Error(t, err, bad)
	}
}

func TestQuerier_ResolveAndDescribe(t *testing.T) {
	q := newTestQuerier(t)

	def, err := q.resolvePath("sub::sub2::hello", "")
	require.NoError(t, err)
	got := q.describe(def)
	assert.True(t, strings.HasPrefix(got, "function "), got)
	assert.Contains(t, got, "sub::sub2::hello at ")
	assert.Contains(t, got, ":3:")

	def, err = q.definitionAt("src/main.rs:9:5")
	require.NoError(t, err)
	assert.Contains(t, q.describe(def), "module")
	assert.Contains(t, q.describe(def), "sub::sub2")

	_, err = q.resolvePath("sub::missing", "")
	assert.Error(t, err)
}

func TestQuerier_RefsTo(t *testing.T) {
	q := newTestQuerier(t)

	refs, err := q.refsTo("sub::sub2::hello")
	require.NoError(t, err)
	assert.Len(t, refs, 2)

	_, err = q.refsTo("nope")
	assert.Error(t, err)
}

func TestQuerier_UseUnit(t *testing.T) {
	q := newTestQuerier(t)
	assert.Equal(t, "main", q.unit.Name)
	assert.Error(t, q.useUnit("other"))
	require.NoError(t, q.useUnit("main"))
	assert.Equal(t, "main> ", replPrompt(q))
}

func TestQuerier_Exec(t *testing.T) {
	q := newTestQuerier(t)
	var out bytes.Buffer

	assert.False(t, q.exec(&out, "resolve alias::hello"))
	assert.Contains(t, out.String(), "sub::sub2::hello")

	out.Reset()
	assert.False(t, q.exec(&out, "units"))
	assert.Equal(t, "* main\n", out.String())

	out.Reset()
	assert.False(t, q.exec(&out, "symbols function"))
	assert.Contains(t, out.String(), "sub::sub2::hello")

	out.Reset()
	assert.False(t, q.exec(&out, "def"))
	assert.Contains(t, out.String(), "usage: def")

	out.Reset()
	assert.False(t, q.exec(&out, "frobnicate"))
	assert.Contains(t, out.String(), "unknown command")

	out.Reset()
	assert.False(t, q.exec(&out, "unit nope"))
	assert.Contains(t, out.String(), "error:")

	assert.True(t, q.exec(&out, "quit"))
}

func TestPrintTimings(t *testing.T) {
	var out bytes.Buffer
	printTimings(&out, observ.NewTimer())
	assert.Empty(t, out.String())

	timer := observ.NewTimer()
	idx := timer.Begin("parse")
	timer.End(idx, "2 files")
	printTimings(&out, timer)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "parse "), lines[0])
	assert.True(t, strings.HasSuffix(lines[0], "ms (2 files)"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "total "), lines[1])
}

func TestWatchDirs(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	file := filepath.Join(sub, "lib.rs")
	require.NoError(t, os.WriteFile(file, []byte("fn f() {}\n"), 0o600))

	dirs, err := watchDirs([]string{file, sub, dir})
	require.NoError(t, err)
	assert.Equal(t, []string{sub, dir}, dirs)

	_, err = watchDirs([]string{filepath.Join(dir, "missing.rs")})
	assert.Error(t, err)
}

func TestRelevantChange(t *testing.T) {
	assert.True(t, relevantChange("/x/src/lib.rs"))
	assert.True(t, relevantChange("/x/rustdex.toml"))
	assert.False(t, relevantChange("/x/notes.md"))
	assert.False(t, relevantChange("/x/lib.rs.swp"))
}
