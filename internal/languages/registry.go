// Package languages holds the table of supported languages and the rules used
// to find environment variable reads in each of them.
//
// Detection is lexical: every language is a list of regular expressions whose
// designated capture group yields the variable name. There is no per-language
// code, only per-language data.
package languages

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DetectionPattern is a regular expression plus the index of the capture group
// holding the variable name.
type DetectionPattern struct {
	Pattern string
	Group   int
	// Dynamic patterns capture a key expression evaluated at run time
	// (process.env[key], os.Getenv("APP_" + name)) instead of a name.
	Dynamic bool
}

// LanguageConfig describes how one language is scanned.
type LanguageConfig struct {
	Name string
	// FileMatchers are doublestar globs matched against the lowercased base
	// name of a file (e.g. "*.js", "dockerfile").
	FileMatchers      []string
	DetectionPatterns []DetectionPattern
	// CommentPatterns are stripped from the content before detection. Optional.
	CommentPatterns []string
}

// PatternError reports a language pattern that could not be used.
type PatternError struct {
	Language string
	Pattern  string
	Err      error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("language %s: pattern %q: %v", e.Language, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

var errGroupOutOfRange = errors.New("capture group out of range")

// Capture is one variable name found on a line.
type Capture struct {
	Name string
	// Column is the 1-based byte offset of the match start.
	Column int
	// Pattern is the index of the detection pattern that matched.
	Pattern int
	// Dynamic is set when Name is a key expression rather than a name.
	Dynamic bool
}

type detector struct {
	re      *regexp.Regexp
	group   int
	dynamic bool
}

// Language is a compiled LanguageConfig. It is immutable and safe for
// concurrent use.
type Language struct {
	Name      string
	matchers  []string
	detectors []detector
	// comments is the alternation of all comment patterns, so the leftmost
	// comment wins when markers overlap (e.g. "//" inside "/* */").
	comments *regexp.Regexp
}

// Registry is the ordered, immutable set of languages.
type Registry struct {
	languages []*Language
	byName    map[string]*Language
}

// NewRegistry compiles configs into a Registry. The order of configs is the
// lookup order. Any pattern that does not compile, any capture group the
// pattern does not have, and any invalid file matcher is an error.
func NewRegistry(configs []LanguageConfig) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*Language, len(configs)),
	}

	for _, cfg := range configs {
		if cfg.Name == "" {
			return nil, errors.New("language with empty name")
		}
		if _, dup := r.byName[cfg.Name]; dup {
			return nil, fmt.Errorf("language %s registered twice", cfg.Name)
		}

		lang, err := compile(cfg)
		if err != nil {
			return nil, err
		}
		r.languages = append(r.languages, lang)
		r.byName[cfg.Name] = lang
	}

	return r, nil
}

func compile(cfg LanguageConfig) (*Language, error) {
	lang := &Language{Name: cfg.Name}

	for _, m := range cfg.FileMatchers {
		m = strings.ToLower(m)
		if !doublestar.ValidatePattern(m) {
			return nil, &PatternError{Language: cfg.Name, Pattern: m, Err: doublestar.ErrBadPattern}
		}
		lang.matchers = append(lang.matchers, m)
	}

	for _, dp := range cfg.DetectionPatterns {
		re, err := regexp.Compile(dp.Pattern)
		if err != nil {
			return nil, &PatternError{Language: cfg.Name, Pattern: dp.Pattern, Err: err}
		}
		if dp.Group < 1 || dp.Group > re.NumSubexp() {
			return nil, &PatternError{
				Language: cfg.Name,
				Pattern:  dp.Pattern,
				Err:      fmt.Errorf("%w: group %d, pattern has %d", errGroupOutOfRange, dp.Group, re.NumSubexp()),
			}
		}
		lang.detectors = append(lang.detectors, detector{re: re, group: dp.Group, dynamic: dp.Dynamic})
	}

	if len(cfg.CommentPatterns) > 0 {
		alts := make([]string, 0, len(cfg.CommentPatterns))
		for _, c := range cfg.CommentPatterns {
			if _, err := regexp.Compile(c); err != nil {
				return nil, &PatternError{Language: cfg.Name, Pattern: c, Err: err}
			}
			alts = append(alts, "(?:"+c+")")
		}
		re, err := regexp.Compile(strings.Join(alts, "|"))
		if err != nil {
			return nil, &PatternError{Language: cfg.Name, Pattern: strings.Join(cfg.CommentPatterns, " | "), Err: err}
		}
		lang.comments = re
	}

	return lang, nil
}

// Lookup returns the first registered language whose file matchers accept
// filePath. Matching is case-insensitive and uses the base name only.
func (r *Registry) Lookup(filePath string) (*Language, bool) {
	base := strings.ToLower(path.Base(strings.ReplaceAll(filePath, "\\", "/")))
	for _, lang := range r.languages {
		if lang.Matches(base) {
			return lang, true
		}
	}
	return nil, false
}

// Get returns a language by name.
func (r *Registry) Get(name string) (*Language, bool) {
	lang, ok := r.byName[name]
	return lang, ok
}

// Languages returns the languages in lookup order.
func (r *Registry) Languages() []*Language {
	out := make([]*Language, len(r.languages))
	copy(out, r.languages)
	return out
}

// Matches reports whether the lowercased base name is accepted by one of the
// language's file matchers.
func (l *Language) Matches(base string) bool {
	for _, m := range l.matchers {
		if ok, _ := doublestar.Match(m, base); ok {
			return true
		}
	}
	return false
}

// HasComments reports whether the language defines comment patterns.
func (l *Language) HasComments() bool {
	return l.comments != nil
}

// StripComments blanks every comment match in content with spaces. Newlines
// inside a match are kept, so line numbers and byte columns still line up
// with the original text.
//
// This is a heuristic: comment markers inside string literals are stripped
// as well.
func (l *Language) StripComments(content string) string {
	if l.comments == nil {
		return content
	}
	return l.comments.ReplaceAllStringFunc(content, blank)
}

func blank(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] != '\n' {
			b[i] = ' '
		}
	}
	return string(b)
}

// Detect applies every detection pattern, in order, to a single line and
// returns one capture per match. Dynamic captures come from the same pass.
func (l *Language) Detect(line string) []Capture {
	var captures []Capture
	for i, d := range l.detectors {
		for _, loc := range d.re.FindAllStringSubmatchIndex(line, -1) {
			start, end := loc[2*d.group], loc[2*d.group+1]
			if start < 0 {
				continue
			}
			name := line[start:end]
			if d.dynamic {
				name = strings.TrimSpace(name)
			}
			captures = append(captures, Capture{
				Name:    name,
				Column:  loc[0] + 1,
				Pattern: i,
				Dynamic: d.dynamic,
			})
		}
	}
	return captures
}
