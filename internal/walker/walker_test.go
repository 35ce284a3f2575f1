package walker

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	return root
}

// collect returns rel path -> skip reason for every entry without an error.
func collect(t *testing.T, w *Walker, root string) map[string]SkipReason {
	t.Helper()
	got := make(map[string]SkipReason)
	for e := range w.Walk(context.Background(), root) {
		require.NoError(t, e.Err, e.RelPath)
		_, dup := got[e.RelPath]
		require.False(t, dup, "entry %s reported twice", e.RelPath)
		got[e.RelPath] = e.Skip
	}
	return got
}

func keys(m map[string]SkipReason) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// scanned returns the sorted rel paths that were not skipped.
func scanned(m map[string]SkipReason) []string {
	var out []string
	for k, r := range m {
		if r == NotSkipped {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

var sampleTree = []string{
	"src/app.js",
	"src/app.min.js",
	"src/server/main.go",
	"lib/config.py",
	"node_modules/x.js",
	"node_modules/pkg/index.js",
	"README.md",
	"a/top.js",
	"a/b/mid.js",
	"a/b/c/deep.js",
}

func TestWalk_Policy(t *testing.T) {
	root := writeTree(t, sampleTree...)

	for _, parallel := range []bool{false, true} {
		t.Run(map[bool]string{false: "sequential", true: "parallel"}[parallel], func(t *testing.T) {
			w, err := New(Options{
				Include:  []string{"*.js", "*.go", "*.py"},
				Exclude:  []string{"node_modules", "*.min.js"},
				Parallel: parallel,
				Workers:  4,
			})
			require.NoError(t, err)

			got := collect(t, w, root)
			assert.Equal(t, map[string]SkipReason{
				"src/app.js":         NotSkipped,
				"src/app.min.js":     SkipExcluded,
				"src/server/main.go": NotSkipped,
				"lib/config.py":      NotSkipped,
				"README.md":          SkipNotIncluded,
				"a/top.js":           NotSkipped,
				"a/b/mid.js":         NotSkipped,
				"a/b/c/deep.js":      NotSkipped,
			}, got)
		})
	}
}

func TestWalk_ParallelMatchesSequential(t *testing.T) {
	var files []string
	for _, d := range []string{"a", "b", "c", "d"} {
		for _, s := range []string{"x", "y", "z"} {
			for _, f := range []string{"1.js", "2.py", "3.txt"} {
				files = append(files, d+"/"+s+"/"+f)
			}
		}
	}
	root := writeTree(t, files...)

	seq, err := New(Options{Include: []string{"*.js", "*.py"}})
	require.NoError(t, err)
	par, err := New(Options{Include: []string{"*.js", "*.py"}, Parallel: true, Workers: 3})
	require.NoError(t, err)

	assert.Equal(t, collect(t, seq, root), collect(t, par, root))
}

func TestWalk_SequentialOrder(t *testing.T) {
	root := writeTree(t, "b.js", "a/z.js", "a/y.js", "c.js")
	w, err := New(Options{})
	require.NoError(t, err)

	var got []string
	for e := range w.Walk(context.Background(), root) {
		got = append(got, e.RelPath)
	}
	assert.Equal(t, []string{"a/y.js", "a/z.js", "b.js", "c.js"}, got)
}

func TestWalk_MaxDepth(t *testing.T) {
	root := writeTree(t, sampleTree...)

	tests := []struct {
		maxDepth int
		want     []string
	}{
		{1, []string{"README.md"}},
		{2, []string{"README.md", "a/top.js", "lib/config.py", "src/app.js"}},
		{3, []string{"README.md", "a/b/mid.js", "a/top.js", "lib/config.py", "src/app.js", "src/server/main.go"}},
		{0, []string{"README.md", "a/b/c/deep.js", "a/b/mid.js", "a/top.js", "lib/config.py", "src/app.js", "src/server/main.go"}},
	}

	for _, tt := range tests {
		for _, parallel := range []bool{false, true} {
			w, err := New(Options{
				Exclude:  []string{"node_modules", "*.min.js"},
				MaxDepth: tt.maxDepth,
				Parallel: parallel,
				Workers:  2,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, scanned(collect(t, w, root)), "max depth %d parallel %v", tt.maxDepth, parallel)
		}
	}
}

func TestWalk_ExcludedDirNeverRead(t *testing.T) {
	root := writeTree(t, "node_modules/deep/x.js", "app.js")

	orig := readDir
	t.Cleanup(func() { readDir = orig })
	readDir = func(name string) ([]fs.DirEntry, error) {
		if filepath.Base(name) == "node_modules" {
			t.Errorf("excluded directory %s was read", name)
		}
		return orig(name)
	}

	w, err := New(Options{Exclude: []string{"node_modules"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"app.js"}, keys(collect(t, w, root)))
}

func TestWalk_PathPatterns(t *testing.T) {
	root := writeTree(t, "src/config/keys.js", "src/app.js", "config/other.js")

	w, err := New(Options{Exclude: []string{"src/config"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"config/other.js", "src/app.js"}, keys(collect(t, w, root)))

	w, err = New(Options{Include: []string{"src/**/*.js"}})
	require.NoError(t, err)
	got := collect(t, w, root)
	assert.Equal(t, NotSkipped, got["src/app.js"])
	assert.Equal(t, NotSkipped, got["src/config/keys.js"])
	assert.Equal(t, SkipNotIncluded, got["config/other.js"])
}

func TestWalk_Symlink(t *testing.T) {
	root := writeTree(t, "real/app.js")
	if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "loop")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "real", "app.js"), filepath.Join(root, "link.js")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	for _, parallel := range []bool{false, true} {
		w, err := New(Options{Parallel: parallel, Workers: 2})
		require.NoError(t, err)
		assert.Equal(t, map[string]SkipReason{
			"real/app.js": NotSkipped,
			"loop":        SkipSymlink,
			"link.js":     SkipSymlink,
		}, collect(t, w, root))
	}
}

func TestWalk_ReadDirError(t *testing.T) {
	root := writeTree(t, "ok/a.js", "bad/b.js")
	boom := errors.New("permission denied")

	orig := readDir
	t.Cleanup(func() { readDir = orig })
	readDir = func(name string) ([]fs.DirEntry, error) {
		if filepath.Base(name) == "bad" {
			return nil, boom
		}
		return orig(name)
	}

	for _, parallel := range []bool{false, true} {
		w, err := New(Options{Parallel: parallel, Workers: 2})
		require.NoError(t, err)

		var files []string
		var failed []Entry
		for e := range w.Walk(context.Background(), root) {
			if e.Err != nil {
				failed = append(failed, e)
				continue
			}
			files = append(files, e.RelPath)
		}
		assert.Equal(t, []string{"ok/a.js"}, files)
		require.Len(t, failed, 1)
		assert.Equal(t, "bad", failed[0].RelPath)
		assert.True(t, failed[0].Dir)
		assert.ErrorIs(t, failed[0].Err, boom)
	}
}

func TestWalk_StopEarly(t *testing.T) {
	var files []string
	for i := 0; i < 50; i++ {
		files = append(files, filepath.ToSlash(filepath.Join("d", string(rune('a'+i%26)), "f"+string(rune('a'+i/26))+".js")))
	}
	root := writeTree(t, files...)

	for _, parallel := range []bool{false, true} {
		w, err := New(Options{Parallel: parallel, Workers: 4})
		require.NoError(t, err)

		n := 0
		for range w.Walk(context.Background(), root) {
			n++
			if n == 3 {
				break
			}
		}
		assert.Equal(t, 3, n)
	}
}

func TestWalk_Cancelled(t *testing.T) {
	root := writeTree(t, sampleTree...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, parallel := range []bool{false, true} {
		w, err := New(Options{Parallel: parallel, Workers: 2})
		require.NoError(t, err)

		n := 0
		for range w.Walk(ctx, root) {
			n++
		}
		assert.Zero(t, n)
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New(Options{Exclude: []string{"[abc"}})
	assert.ErrorIs(t, err, ErrInvalidPattern)

	_, err = New(Options{Include: []string{"{a,b"}})
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestSkipReason_String(t *testing.T) {
	assert.Equal(t, "excluded", SkipExcluded.String())
	assert.Equal(t, "symlink", SkipSymlink.String())
	assert.Equal(t, "SkipReason(42)", SkipReason(42).String())
}
