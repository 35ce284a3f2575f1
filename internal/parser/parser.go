// Package parser scans a single source file for environment variable reads.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/jenian/envscan/internal/analyzer"
	"github.com/jenian/envscan/internal/languages"
	"github.com/jenian/envscan/internal/secrets"
)

const (
	// DefaultMaxFileSize is the size guard applied when none is configured.
	DefaultMaxFileSize = 2 << 20
	// DefaultCacheSize is the number of distinct file contents remembered.
	DefaultCacheSize = 1024
)

var (
	// ErrFileTooLarge is returned for files over the size guard.
	ErrFileTooLarge = errors.New("file too large")
	// ErrNotText is returned for content with NUL bytes or invalid UTF-8.
	ErrNotText = errors.New("not a text file")
)

// Parser reads files and applies a language's detection patterns to them.
// It is safe for concurrent use.
type Parser struct {
	maxFileSize int64
	cacheSize   int
	cache       *resultCache
	secrets     *secrets.Detector
	logger      *log.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxFileSize sets the size guard in bytes. Zero or less keeps the default.
func WithMaxFileSize(n int64) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxFileSize = n
		}
	}
}

// WithCacheSize sets how many file contents are cached. Zero disables the cache.
func WithCacheSize(n int) Option {
	return func(p *Parser) {
		p.cacheSize = n
	}
}

// WithSecrets enables credential checks on every scanned line.
func WithSecrets(d *secrets.Detector) Option {
	return func(p *Parser) {
		p.secrets = d
	}
}

// WithLogger sets the logger for per-file debug output.
func WithLogger(l *log.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a new parser instance
func New(opts ...Option) *Parser {
	p := &Parser{
		maxFileSize: DefaultMaxFileSize,
		cacheSize:   DefaultCacheSize,
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.cache = newResultCache(p.cacheSize)
	return p
}

// ParseFile reads filePath and returns every environment variable read found
// in it. relPath is the slash separated path recorded in the result.
//
// Errors are per file: the file could not be read, is over the size guard or
// is not text. Callers record them and carry on.
func (p *Parser) ParseFile(filePath, relPath string, lang *languages.Language) (analyzer.FileResult, error) {
	res := analyzer.FileResult{Path: relPath, Language: lang.Name}

	info, err := os.Stat(filePath)
	if err != nil {
		return res, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > p.maxFileSize {
		return res, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, info.Size(), p.maxFileSize)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return res, fmt.Errorf("failed to read file: %w", err)
	}
	// The file may have grown since the stat.
	if int64(len(content)) > p.maxFileSize {
		return res, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, len(content), p.maxFileSize)
	}

	return p.ParseContent(content, relPath, lang)
}

// ParseContent scans content that is already in memory. It applies the same
// text checks as ParseFile but no size guard.
func (p *Parser) ParseContent(content []byte, relPath string, lang *languages.Language) (analyzer.FileResult, error) {
	res := analyzer.FileResult{Path: relPath, Language: lang.Name}
	scanned, hit := p.scanCached(content, lang)
	if scanned.err != nil {
		return res, scanned.err
	}
	res.Records, res.Dynamic = scanned.records(relPath, lang.Name)
	res.Findings = scanned.findings(relPath)

	p.logger.Debug("scanned file", "path", relPath, "language", lang.Name,
		"records", len(res.Records), "dynamic", len(res.Dynamic), "cached", hit)

	return res, nil
}

func (p *Parser) scanCached(content []byte, lang *languages.Language) (*fileScan, bool) {
	key := newCacheKey(lang.Name, content, p.secrets != nil)
	if cached, ok := p.cache.get(key); ok {
		return cached, true
	}
	scanned := p.scan(content, lang)
	p.cache.add(key, scanned)
	return scanned, false
}

// match is a capture placed on a line, without a file path.
type match struct {
	name    string
	line    int
	column  int
	context string
	dynamic bool
}

type lineFinding struct {
	line int
	secrets.Match
}

// fileScan is the path independent outcome of scanning some content.
type fileScan struct {
	matches []match
	secrets []lineFinding
	err     error
}

// records splits the matches into named reads and dynamic key reads.
func (s *fileScan) records(relPath, language string) (named, dynamic []analyzer.UsageRecord) {
	for _, m := range s.matches {
		rec := analyzer.UsageRecord{
			VariableName: m.name,
			FilePath:     relPath,
			LineNumber:   m.line,
			Column:       m.column,
			Context:      m.context,
			Language:     language,
		}
		if m.dynamic {
			dynamic = append(dynamic, rec)
		} else {
			named = append(named, rec)
		}
	}
	return named, dynamic
}

func (s *fileScan) findings(relPath string) []secrets.Finding {
	if len(s.secrets) == 0 {
		return nil
	}
	out := make([]secrets.Finding, len(s.secrets))
	for i, f := range s.secrets {
		out[i] = f.At(relPath, f.line)
	}
	return out
}

func (p *Parser) scan(content []byte, lang *languages.Language) *fileScan {
	if bytes.IndexByte(content, 0) >= 0 || !utf8.Valid(content) {
		return &fileScan{err: ErrNotText}
	}

	text := string(content)
	original := strings.Split(text, "\n")
	// Stripping keeps every newline and the byte length, so stripped lines
	// line up with the original ones.
	stripped := original
	if lang.HasComments() {
		stripped = strings.Split(lang.StripComments(text), "\n")
	}

	s := &fileScan{}
	for i, line := range stripped {
		ctx := strings.TrimSuffix(original[i], "\r")
		captures := lang.Detect(line)
		for _, c := range captures {
			s.matches = append(s.matches, match{
				name:    c.Name,
				line:    i + 1,
				column:  c.Column,
				context: ctx,
				dynamic: c.Dynamic,
			})
		}
		// A line that reads the environment is not hard-coding the value.
		if p.secrets != nil && len(captures) == 0 {
			for _, m := range p.secrets.ScanLine(ctx) {
				s.secrets = append(s.secrets, lineFinding{line: i + 1, Match: m})
			}
		}
	}
	return s
}
