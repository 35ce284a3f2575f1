// Package secrets flags source lines that look like hard-coded credentials.
package secrets

import (
	"fmt"
	"regexp"
	"strings"
)

// Severity ranks a finding. Higher is worse.
type Severity int

const (
	Low Severity = iota
	Medium
	High
	Critical
)

var severityNames = [...]string{"low", "medium", "high", "critical"}

func (s Severity) String() string {
	if s < Low || s > Critical {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

// MarshalText renders the severity by name in JSON and YAML output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name, case-insensitively.
func (s *Severity) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for i, n := range severityNames {
		if n == name {
			*s = Severity(i)
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", text)
}

// Rule is one credential heuristic.
type Rule struct {
	ID          string
	Description string
	Severity    Severity
	Pattern     *regexp.Regexp
}

// DefaultRules returns the built-in rule set.
func DefaultRules() []Rule {
	return []Rule{
		{"password", "hard-coded password", High, regexp.MustCompile(`(?i)password\s*=\s*["']?[^"'\s]+["']?`)},
		{"secret", "hard-coded secret", High, regexp.MustCompile(`(?i)secret.*=\s*["']?[^"'\s]{8,}`)},
		{"api-key", "hard-coded API key", Medium, regexp.MustCompile(`(?i)api[_-]?key.*=\s*["']?[^"'\s]{16,}`)},
		{"token", "hard-coded token", Medium, regexp.MustCompile(`(?i)token.*=\s*["']?[^"'\s]{16,}`)},
		{"private-key", "private key material", Critical, regexp.MustCompile(`(?i)private[_-]?key`)},
		{"aws-secret", "AWS secret", Critical, regexp.MustCompile(`(?i)aws[_-]?secret`)},
		{"database-url", "database URL with credentials", High, regexp.MustCompile(`(?i)database[_-]?url.*=.*://.*:`)},
		{"connection-string", "connection string with password", High, regexp.MustCompile(`(?i)connection[_-]?string.*=.*password`)},
	}
}

// AtLeast returns the rules ranked floor or higher.
func AtLeast(rules []Rule, floor Severity) []Rule {
	var out []Rule
	for _, r := range rules {
		if r.Severity >= floor {
			out = append(out, r)
		}
	}
	return out
}

// Match is a rule that fired on a line. It carries no location so it can be
// cached per content.
type Match struct {
	Rule     string
	Severity Severity
	Message  string
}

// Finding is a Match placed in a file.
type Finding struct {
	File     string   `json:"file_path" yaml:"file_path"`
	Line     int      `json:"line_number" yaml:"line_number"`
	Rule     string   `json:"rule" yaml:"rule"`
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
}

// Detector applies a fixed rule set. It is safe for concurrent use.
type Detector struct {
	rules []Rule
}

// NewDetector returns a Detector for rules, or for DefaultRules when none
// are given.
func NewDetector(rules ...Rule) *Detector {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Detector{rules: rules}
}

// Rules returns the detector's rules.
func (d *Detector) Rules() []Rule {
	return append([]Rule(nil), d.rules...)
}

// ScanLine returns one match per rule that fires on line. The line text is
// deliberately left out of the message.
func (d *Detector) ScanLine(line string) []Match {
	var out []Match
	for _, r := range d.rules {
		if r.Pattern.MatchString(line) {
			out = append(out, Match{Rule: r.ID, Severity: r.Severity, Message: r.Description})
		}
	}
	return out
}

// At places m in file at line.
func (m Match) At(file string, line int) Finding {
	return Finding{File: file, Line: line, Rule: m.Rule, Severity: m.Severity, Message: m.Message}
}
