package analyzer

import (
	"sort"

	"github.com/jenian/envscan/internal/secrets"
)

// UsageRecord represents a single read of an environment variable in code
type UsageRecord struct {
	VariableName string `json:"variable_name" yaml:"variable_name"`
	FilePath     string `json:"file_path" yaml:"file_path"` // Slash separated, relative to the scan root
	LineNumber   int    `json:"line_number" yaml:"line_number"`
	Column       int    `json:"column" yaml:"column"`   // 1-based byte offset of the match
	Context      string `json:"context" yaml:"context"` // The original source line
	Language     string `json:"language" yaml:"language"`
}

// VariableUsage groups every record of one variable.
type VariableUsage struct {
	TotalCount int           `json:"total_count" yaml:"total_count"`
	Files      []string      `json:"files" yaml:"files"`
	Records    []UsageRecord `json:"records" yaml:"records"`
}

// Location is a distinct (file, line) pair.
type Location struct {
	File string
	Line int
}

// Locations returns the distinct (file, line) pairs of the records, in
// record order. Several matches on one line count once here.
func (v *VariableUsage) Locations() []Location {
	seen := make(map[Location]bool, len(v.Records))
	var out []Location
	for _, r := range v.Records {
		loc := Location{File: r.FilePath, Line: r.LineNumber}
		if !seen[loc] {
			seen[loc] = true
			out = append(out, loc)
		}
	}
	return out
}

// FileError is a per-file problem that did not stop the scan.
type FileError struct {
	Path    string `json:"path" yaml:"path"`
	Message string `json:"message" yaml:"message"`
}

// FileResult is what scanning one file produced.
type FileResult struct {
	Path     string
	Language string
	Records  []UsageRecord
	// Dynamic holds reads whose key is computed at run time. Their
	// VariableName is the key expression as written.
	Dynamic  []UsageRecord
	Findings []secrets.Finding
}

// ScanResult contains the complete, deterministic output of a scan
type ScanResult struct {
	Variables      map[string]*VariableUsage `json:"variables" yaml:"variables"`
	FilesScanned   int                       `json:"files_scanned" yaml:"files_scanned"`
	FilesSkipped   int                       `json:"files_skipped" yaml:"files_skipped"`
	Errors         []FileError               `json:"errors" yaml:"errors"`
	Languages      map[string]int            `json:"languages" yaml:"languages"`
	// PatternsMatched counts every detection match, dynamic ones included.
	PatternsMatched int               `json:"patterns_matched" yaml:"patterns_matched"`
	Dynamic         []UsageRecord     `json:"dynamic,omitempty" yaml:"dynamic,omitempty"`
	SecurityIssues  []secrets.Finding `json:"security_issues,omitempty" yaml:"security_issues,omitempty"`
}

// Names returns the variable names in ascending order.
func (r *ScanResult) Names() []string {
	names := make([]string, 0, len(r.Variables))
	for name := range r.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TotalUsages is the number of records across all variables.
func (r *ScanResult) TotalUsages() int {
	n := 0
	for _, v := range r.Variables {
		n += v.TotalCount
	}
	return n
}

// Report is the outcome of comparing scanned usages with declared variables.
type Report struct {
	Missing            map[string][]UsageRecord `json:"missing" yaml:"missing"`   // In code but not declared, by variable
	Dynamic            map[string][]UsageRecord `json:"dynamic" yaml:"dynamic"`   // Computed keys no declared variable accounts for
	Unused             []string                 `json:"unused" yaml:"unused"`     // Declared in env files but never read
	Declared           map[string]string        `json:"-" yaml:"-"`               // Variables from env files
	Sources            map[string]string        `json:"sources" yaml:"sources"`   // Variable -> env file that declared it
	IgnoredMissing     int                      `json:"ignored_missing" yaml:"ignored_missing"`
	IgnoredFromFolders int                      `json:"ignored_from_folders" yaml:"ignored_from_folders"`
}

// HasIssues reports whether anything is missing or unused.
func (r *Report) HasIssues() bool {
	return len(r.Missing) > 0 || len(r.Unused) > 0
}
