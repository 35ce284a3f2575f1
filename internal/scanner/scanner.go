// Package scanner is the entry point of a scan: it walks a directory tree,
// scans each recognized file and folds everything into one ScanResult.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/jenian/envscan/internal/analyzer"
	"github.com/jenian/envscan/internal/languages"
	"github.com/jenian/envscan/internal/parser"
	"github.com/jenian/envscan/internal/walker"
)

// ErrInvalidRoot is returned when the scan root does not exist or is not a
// directory.
var ErrInvalidRoot = errors.New("invalid scan root")

// Scanner handles file discovery and hands each file to the parser
type Scanner struct {
	registry *languages.Registry
	parser   *parser.Parser
	logger   *log.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithParser uses p for every scan instead of a parser built from the scan
// options. Its cache then lives across scans.
func WithParser(p *parser.Parser) Option {
	return func(s *Scanner) {
		s.parser = p
	}
}

// WithLogger sets the logger for walk and per-file diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a scanner for the languages in registry.
func New(registry *languages.Registry, opts ...Option) *Scanner {
	s := &Scanner{
		registry: registry,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks root and returns the aggregated usages.
//
// Only an invalid root or an invalid glob fail the scan. Per-file problems are
// reported in ScanResult.Errors. When ctx ends, files already being scanned
// are finished and the result so far is returned together with ctx.Err().
func (s *Scanner) Scan(ctx context.Context, root string, opts ScanOptions) (*analyzer.ScanResult, error) {
	root, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}

	w, err := walker.New(walker.Options{
		Include:  opts.Include,
		Exclude:  opts.Exclude,
		MaxDepth: opts.MaxDepth,
		Parallel: opts.Parallel,
		Workers:  opts.workers(),
	})
	if err != nil {
		return nil, err
	}

	p := s.parser
	if p == nil {
		p = parser.New(parser.WithMaxFileSize(opts.MaxFileSize), parser.WithLogger(s.logger))
	}

	s.logger.Debug("starting scan", "root", root, "parallel", opts.Parallel, "workers", opts.workers(),
		"max_depth", opts.MaxDepth)

	entries := w.Walk(ctx, root)

	var agg *analyzer.Aggregator
	if opts.Parallel && opts.workers() > 1 {
		agg = s.scanParallel(ctx, p, entries, opts.workers())
	} else {
		agg = analyzer.NewAggregator()
		for e := range entries {
			s.visit(agg, p, e)
		}
	}

	result := agg.Result()
	s.logger.Debug("scan finished", "scanned", result.FilesScanned, "skipped", result.FilesSkipped,
		"variables", len(result.Variables), "errors", len(result.Errors))

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// scanParallel feeds walker entries to a fixed pool of workers. Each worker
// owns an Aggregator; they are merged once every worker is done.
func (s *Scanner) scanParallel(ctx context.Context, p *parser.Parser, entries iter.Seq[walker.Entry], workers int) *analyzer.Aggregator {
	jobs := make(chan walker.Entry, workers*4)
	partials := make([]*analyzer.Aggregator, workers)

	var wg sync.WaitGroup

	// Start worker pool
	for i := range workers {
		partials[i] = analyzer.NewAggregator()
		wg.Add(1)

		go func(agg *analyzer.Aggregator) {
			defer wg.Done()

			for e := range jobs {
				s.visit(agg, p, e)
			}
		}(partials[i])
	}

	// Send jobs to workers
dispatch:
	for e := range entries {
		select {
		case jobs <- e:
		case <-ctx.Done():
			break dispatch
		}
	}

	close(jobs)

	// Wait for all workers to complete
	wg.Wait()

	agg := partials[0]
	for _, other := range partials[1:] {
		agg.Merge(other)
	}
	return agg
}

// visit accounts for one walker entry.
func (s *Scanner) visit(agg *analyzer.Aggregator, p *parser.Parser, e walker.Entry) {
	switch {
	case e.Err != nil:
		s.logger.Warn("cannot read path", "path", e.RelPath, "error", e.Err)
		agg.AddError(e.RelPath, e.Err)
		if !e.Dir {
			agg.AddSkipped()
		}
		return
	case e.Skip != walker.NotSkipped:
		s.logger.Debug("skipping file", "path", e.RelPath, "reason", e.Skip)
		agg.AddSkipped()
		return
	}

	lang, ok := s.registry.Lookup(e.RelPath)
	if !ok {
		agg.AddSkipped()
		return
	}

	res, err := p.ParseFile(e.Path, e.RelPath, lang)
	if err != nil {
		s.logger.Debug("skipping unreadable file", "path", e.RelPath, "error", err)
		agg.AddError(e.RelPath, err)
		agg.AddSkipped()
		return
	}
	agg.AddFile(res)
}

// resolveRoot makes root absolute and checks that it is a directory. A root
// that is itself a symlink is resolved; links below it are not followed.
func resolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidRoot, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidRoot, root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidRoot, root, err)
	}
	return resolved, nil
}
