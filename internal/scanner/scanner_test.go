package scanner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/jenian/envscan/internal/languages"
	"github.com/jenian/envscan/internal/parser"
	"github.com/jenian/envscan/internal/walker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func newScanner(t *testing.T, opts ...Option) *Scanner {
	t.Helper()
	reg, err := languages.NewBuiltinRegistry()
	require.NoError(t, err)
	return New(reg, opts...)
}

func modes() map[string]ScanOptions {
	seq := DefaultOptions()
	seq.Parallel = false
	par := DefaultOptions()
	par.Parallel = true
	par.Workers = 4
	return map[string]ScanOptions{"sequential": seq, "parallel": par}
}

func TestScan_EndToEnd(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/app.js":        "const a = process.env.API_KEY;\nconsole.log(a);\nconst b = process.env.API_KEY;\n",
		"lib/config.py":     "import os\nKEY = os.getenv('API_KEY')\n",
		"node_modules/x.js": "module.exports = process.env.API_KEY;\n",
	})

	for name, opts := range modes() {
		t.Run(name, func(t *testing.T) {
			res, err := newScanner(t).Scan(context.Background(), root, opts)
			require.NoError(t, err)

			require.Contains(t, res.Variables, "API_KEY")
			api := res.Variables["API_KEY"]
			assert.Equal(t, 3, api.TotalCount)
			assert.Equal(t, []string{"lib/config.py", "src/app.js"}, api.Files)
			assert.Equal(t, 2, res.FilesScanned)
			assert.Zero(t, res.FilesSkipped)
			assert.Empty(t, res.Errors)
			assert.Equal(t, map[string]int{"javascript": 1, "python": 1}, res.Languages)

			lines := []int{}
			for _, r := range api.Records {
				lines = append(lines, r.LineNumber)
			}
			assert.Equal(t, []int{2, 1, 3}, lines)
		})
	}
}

func TestScan_SameVariableAcrossLanguages(t *testing.T) {
	root := writeTree(t, map[string]string{
		"cmd/server/main.go": "package main\n\nimport \"os\"\n\nvar dsn = os.Getenv(\"DB_URL\")\n",
		"worker/src/main.rs": "fn main() {\n    let url = std::env::var(\"DB_URL\").unwrap();\n}\n",
	})

	res, err := newScanner(t).Scan(context.Background(), root, DefaultOptions())
	require.NoError(t, err)

	require.Contains(t, res.Variables, "DB_URL")
	assert.Equal(t, []string{"cmd/server/main.go", "worker/src/main.rs"}, res.Variables["DB_URL"].Files)
	assert.Equal(t, "go", res.Variables["DB_URL"].Records[0].Language)
	assert.Equal(t, "rust", res.Variables["DB_URL"].Records[1].Language)
}

func TestScan_ParallelMatchesSequential(t *testing.T) {
	files := map[string]string{}
	for i := range 40 {
		dir := fmt.Sprintf("pkg%d/sub%d", i%5, i%3)
		files[fmt.Sprintf("%s/f%d.js", dir, i)] = fmt.Sprintf("process.env.SHARED\nprocess.env.VAR_%d // process.env.NOPE\n", i%7)
		files[fmt.Sprintf("%s/f%d.py", dir, i)] = fmt.Sprintf("os.environ['SHARED']\nos.getenv('PY_%d')\n", i%4)
		files[fmt.Sprintf("%s/notes%d.txt", dir, i)] = "process.env.IGNORED\n"
	}
	files["bin.js"] = "process.env.A\x00"
	root := writeTree(t, files)

	m := modes()
	seq, err := newScanner(t).Scan(context.Background(), root, m["sequential"])
	require.NoError(t, err)
	par, err := newScanner(t).Scan(context.Background(), root, m["parallel"])
	require.NoError(t, err)

	assert.Equal(t, seq, par)
	assert.Equal(t, 80, seq.FilesScanned)
	assert.Equal(t, 41, seq.FilesSkipped)
	assert.Equal(t, 80, seq.Variables["SHARED"].TotalCount)
	assert.NotContains(t, seq.Variables, "NOPE")
	assert.NotContains(t, seq.Variables, "IGNORED")

	again, err := newScanner(t).Scan(context.Background(), root, m["parallel"])
	require.NoError(t, err)
	assert.Equal(t, par, again)
}

func TestScan_MaxDepth(t *testing.T) {
	root := writeTree(t, map[string]string{
		"top.js":       "process.env.DEPTH_1",
		"a/mid.js":     "process.env.DEPTH_2",
		"a/b/deep.js":  "process.env.DEPTH_3",
		"a/b/c/too.js": "process.env.DEPTH_4",
	})

	for name, opts := range modes() {
		t.Run(name, func(t *testing.T) {
			opts.MaxDepth = 2
			res, err := newScanner(t).Scan(context.Background(), root, opts)
			require.NoError(t, err)

			assert.Equal(t, []string{"DEPTH_1", "DEPTH_2"}, res.Names())
			assert.Equal(t, 2, res.FilesScanned)
		})
	}
}

func TestScan_ExcludeWinsOverInclude(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app.js":        "process.env.APP",
		"bundle.min.js": "process.env.MINIFIED",
		"tool.py":       "os.getenv('PY')",
	})

	opts := DefaultOptions()
	opts.Include = []string{"*.js"}
	res, err := newScanner(t).Scan(context.Background(), root, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"APP"}, res.Names())
	assert.Equal(t, 1, res.FilesScanned)
	assert.Equal(t, 2, res.FilesSkipped)
}

func TestScan_UnknownExtension(t *testing.T) {
	root := writeTree(t, map[string]string{
		"README.md": "Set process.env.FROM_DOCS before running.",
		"Makefile":  "run:\n\techo $(API)\n",
	})

	res, err := newScanner(t).Scan(context.Background(), root, DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, res.Variables)
	assert.Zero(t, res.FilesScanned)
	assert.Equal(t, 2, res.FilesSkipped)
	assert.Empty(t, res.Errors)
}

func TestScan_PerFileErrors(t *testing.T) {
	root := writeTree(t, map[string]string{
		"ok.js":    "process.env.OK",
		"bin.js":   "process.env.BIN\x00\x00",
		"large.py": "os.getenv('LARGE')\n# padding padding padding padding\n",
	})

	opts := DefaultOptions()
	opts.MaxFileSize = 32
	res, err := newScanner(t).Scan(context.Background(), root, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"OK"}, res.Names())
	assert.Equal(t, 1, res.FilesScanned)
	assert.Equal(t, 2, res.FilesSkipped)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "bin.js", res.Errors[0].Path)
	assert.Contains(t, res.Errors[0].Message, "not a text file")
	assert.Equal(t, "large.py", res.Errors[1].Path)
	assert.Contains(t, res.Errors[1].Message, "file too large")
}

func TestScan_InvalidRoot(t *testing.T) {
	s := newScanner(t)

	_, err := s.Scan(context.Background(), filepath.Join(t.TempDir(), "missing"), DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidRoot)

	root := writeTree(t, map[string]string{"file.js": ""})
	_, err = s.Scan(context.Background(), filepath.Join(root, "file.js"), DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidRoot)
}

func TestScan_InvalidPattern(t *testing.T) {
	opts := DefaultOptions()
	opts.Exclude = append(opts.Exclude, "[broken")

	_, err := newScanner(t).Scan(context.Background(), t.TempDir(), opts)
	assert.ErrorIs(t, err, walker.ErrInvalidPattern)
}

func TestScan_Cancelled(t *testing.T) {
	root := writeTree(t, map[string]string{"a.js": "process.env.A", "b/c.js": "process.env.C"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, opts := range modes() {
		t.Run(name, func(t *testing.T) {
			res, err := newScanner(t).Scan(ctx, root, opts)
			assert.ErrorIs(t, err, context.Canceled)
			require.NotNil(t, res)
			assert.Zero(t, res.FilesScanned)
			assert.NotNil(t, res.Variables)
		})
	}
}

// cancelAfter cancels a scan once the parser has logged n scanned files.
// It counts every file the scan got to, including ones logged after the
// cancel while workers drain.
type cancelAfter struct {
	mu      sync.Mutex
	n       int
	scanned int
	cancel  context.CancelFunc
}

func (c *cancelAfter) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if bytes.Contains(p, []byte("scanned file")) {
		c.scanned++
		if c.scanned == c.n {
			c.cancel()
		}
	}
	return len(p), nil
}

func (c *cancelAfter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scanned
}

func TestScan_CancelledMidScan(t *testing.T) {
	files := make(map[string]string)
	for d := range 20 {
		for f := range 10 {
			files[fmt.Sprintf("pkg%02d/f%02d.js", d, f)] = fmt.Sprintf("process.env.VAR_%d_%d", d, f)
		}
	}
	root := writeTree(t, files)

	for name, opts := range modes() {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			hook := &cancelAfter{n: 5, cancel: cancel}
			logger := log.New(hook)
			logger.SetLevel(log.DebugLevel)
			s := newScanner(t, WithParser(parser.New(parser.WithLogger(logger))))

			res, err := s.Scan(ctx, root, opts)
			assert.ErrorIs(t, err, context.Canceled)
			require.NotNil(t, res)

			visited := hook.count()
			assert.GreaterOrEqual(t, visited, 5)
			assert.Less(t, visited, len(files))
			assert.Equal(t, visited, res.FilesScanned+res.FilesSkipped)
			assert.Len(t, res.Variables, res.FilesScanned)
		})
	}
}

func TestScan_SharedParser(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/index.js": "process.env.SAME",
		"b/index.js": "process.env.SAME",
	})

	p := parser.New()
	s := newScanner(t, WithParser(p))
	res, err := s.Scan(context.Background(), root, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, p.CacheLen())
	assert.Equal(t, []string{"a/index.js", "b/index.js"}, res.Variables["SAME"].Files)
}

func TestScan_SymlinkNotFollowed(t *testing.T) {
	root := writeTree(t, map[string]string{"real/app.js": "process.env.REAL"})
	if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "alias")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	res, err := newScanner(t).Scan(context.Background(), root, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"real/app.js"}, res.Variables["REAL"].Files)
	assert.Equal(t, 1, res.FilesSkipped)
}
