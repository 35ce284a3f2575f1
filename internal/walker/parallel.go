package walker

import (
	"context"
	"iter"
	"path"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// walkParallel reads directories concurrently, at most Workers at a time.
// When the limit is reached a directory is read inline by the goroutine that
// found it, so the walk never blocks waiting for a free slot.
func (w *Walker) walkParallel(ctx context.Context, root string) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		out := make(chan Entry, w.opts.Workers*8)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(w.opts.Workers)

		send := func(e Entry) bool {
			select {
			case out <- e:
				return true
			case <-gctx.Done():
				return false
			}
		}

		var visit func(dir, rel string, depth int) error
		visit = func(dir, rel string, depth int) error {
			if gctx.Err() != nil {
				return nil
			}

			// ReadDir returns what it managed to read alongside the error.
			entries, err := readDir(dir)
			if err != nil && !send(Entry{Path: dir, RelPath: rel, Depth: depth, Dir: true, Err: err}) {
				return nil
			}

			for _, d := range entries {
				childRel := d.Name()
				if rel != "." {
					childRel = path.Join(rel, d.Name())
				}
				e, descend, emit := w.classify(filepath.Join(dir, d.Name()), childRel, depth+1, d)
				if descend {
					if !g.TryGo(func() error { return visit(e.Path, e.RelPath, e.Depth) }) {
						_ = visit(e.Path, e.RelPath, e.Depth)
					}
					continue
				}
				if emit && !send(e) {
					return nil
				}
			}
			return nil
		}

		go func() {
			_ = visit(root, ".", 0)
			_ = g.Wait()
			close(out)
		}()

		for e := range out {
			if !yield(e) {
				cancel()
				for range out {
				}
				return
			}
		}
	}
}
