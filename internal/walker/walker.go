// Package walker enumerates the candidate files under a root directory.
//
// The walk never follows symlinks, prunes excluded directories without reading
// them and stops descending at a configured depth. Files that are seen but not
// wanted are still reported, with a skip reason, so callers can account for
// them.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidPattern is returned by New when an include or exclude glob does
// not parse.
var ErrInvalidPattern = errors.New("invalid glob pattern")

// SkipReason says why an entry is reported but not meant to be scanned.
type SkipReason int

const (
	NotSkipped SkipReason = iota
	SkipExcluded
	SkipNotIncluded
	SkipSymlink
	SkipIrregular
)

func (r SkipReason) String() string {
	switch r {
	case NotSkipped:
		return "none"
	case SkipExcluded:
		return "excluded"
	case SkipNotIncluded:
		return "not included"
	case SkipSymlink:
		return "symlink"
	case SkipIrregular:
		return "irregular file"
	default:
		return fmt.Sprintf("SkipReason(%d)", int(r))
	}
}

// Entry is one item produced by a walk.
type Entry struct {
	// Path is the root joined with RelPath, in OS form.
	Path string
	// RelPath is relative to the walk root and always slash separated.
	RelPath string
	// Depth is 1 for direct children of the root.
	Depth int
	// Dir is set for directory entries, which only appear when Err is set.
	Dir  bool
	Skip SkipReason
	Err  error
}

// Options controls a walk.
type Options struct {
	// Include globs select files. Empty means every file.
	Include []string
	// Exclude globs prune directories and drop files. Exclude wins over
	// Include.
	Exclude []string
	// MaxDepth stops descent into directories at this depth or deeper.
	// Zero or less means unlimited.
	MaxDepth int
	Parallel bool
	// Workers bounds concurrent directory reads in parallel mode.
	// Zero or less means GOMAXPROCS.
	Workers int
}

// Walker walks directory trees with a fixed policy. It is safe for concurrent
// use.
type Walker struct {
	opts Options
}

// New validates the globs in opts and returns a Walker.
func New(opts Options) (*Walker, error) {
	for _, p := range append(append([]string(nil), opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, p)
		}
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Walker{opts: opts}, nil
}

// Walk returns the entries under root. The sequence is lazy: nothing is read
// until it is ranged over, and breaking out of the loop or cancelling ctx
// stops the traversal. Entry order is only stable in sequential mode.
func (w *Walker) Walk(ctx context.Context, root string) iter.Seq[Entry] {
	if w.opts.Parallel && w.opts.Workers > 1 {
		return w.walkParallel(ctx, root)
	}
	return w.walkSequential(ctx, root)
}

func (w *Walker) walkSequential(ctx context.Context, root string) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		w.visitSequential(ctx, root, ".", 0, yield)
	}
}

// visitSequential walks dir depth first in lexical order. It returns false
// once the consumer stops or ctx ends.
func (w *Walker) visitSequential(ctx context.Context, dir, rel string, depth int, yield func(Entry) bool) bool {
	if ctx.Err() != nil {
		return false
	}

	entries, err := readDir(dir)
	if err != nil && !yield(Entry{Path: dir, RelPath: rel, Depth: depth, Dir: true, Err: err}) {
		return false
	}

	for _, d := range entries {
		childRel := d.Name()
		if rel != "." {
			childRel = path.Join(rel, d.Name())
		}
		e, descend, emit := w.classify(filepath.Join(dir, d.Name()), childRel, depth+1, d)
		if descend {
			if !w.visitSequential(ctx, e.Path, e.RelPath, e.Depth, yield) {
				return false
			}
			continue
		}
		if emit && !yield(e) {
			return false
		}
		if ctx.Err() != nil {
			return false
		}
	}
	return true
}

// classify decides what to do with one directory entry. descend is only set
// for directories that should be read; emit is set when the entry should be
// reported.
func (w *Walker) classify(p, rel string, depth int, d fs.DirEntry) (e Entry, descend, emit bool) {
	e = Entry{Path: p, RelPath: rel, Depth: depth}

	switch t := d.Type(); {
	case t&fs.ModeSymlink != 0:
		e.Skip = SkipSymlink
		return e, false, true
	case t.IsDir():
		if matchAny(w.opts.Exclude, rel) {
			return e, false, false
		}
		if w.opts.MaxDepth > 0 && depth >= w.opts.MaxDepth {
			return e, false, false
		}
		return e, true, false
	case !t.IsRegular():
		e.Skip = SkipIrregular
		return e, false, true
	}

	switch {
	case matchAny(w.opts.Exclude, rel):
		e.Skip = SkipExcluded
	case len(w.opts.Include) > 0 && !matchAny(w.opts.Include, rel):
		e.Skip = SkipNotIncluded
	}
	return e, false, true
}

// matchAny reports whether rel matches one of patterns. Patterns without a
// slash are also tried against the base name, so "node_modules" or "*.min.js"
// match at any depth.
func matchAny(patterns []string, rel string) bool {
	base := path.Base(rel)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, _ := doublestar.Match(p, base); ok {
				return true
			}
		}
	}
	return false
}

// readDir is os.ReadDir; tests swap it to inject failures.
var readDir = os.ReadDir
