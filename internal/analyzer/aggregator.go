package analyzer

import (
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/jenian/envscan/internal/secrets"
)

// Aggregator folds per-file results into a ScanResult. It is not safe for
// concurrent use; parallel scans give each worker its own Aggregator and
// Merge them at the end. The final Result does not depend on the order in
// which files were added or aggregators merged.
type Aggregator struct {
	vars      map[string]*VariableUsage
	files     map[string]map[string]struct{}
	scanned   int
	skipped   int
	errors    []FileError
	languages map[string]int
	matched   int
	dynamic   []UsageRecord
	findings  []secrets.Finding
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		vars:      make(map[string]*VariableUsage),
		files:     make(map[string]map[string]struct{}),
		languages: make(map[string]int),
	}
}

// AddFile records a scanned file and all of its usages.
func (a *Aggregator) AddFile(res FileResult) {
	a.scanned++
	if res.Language != "" {
		a.languages[res.Language]++
	}
	for _, rec := range res.Records {
		a.add(rec)
	}
	a.matched += len(res.Records) + len(res.Dynamic)
	a.dynamic = append(a.dynamic, res.Dynamic...)
	a.findings = append(a.findings, res.Findings...)
}

func (a *Aggregator) add(rec UsageRecord) {
	v, ok := a.vars[rec.VariableName]
	if !ok {
		v = &VariableUsage{}
		a.vars[rec.VariableName] = v
		a.files[rec.VariableName] = make(map[string]struct{})
	}
	v.TotalCount++
	v.Records = append(v.Records, rec)
	a.files[rec.VariableName][rec.FilePath] = struct{}{}
}

// AddSkipped counts a file that was seen but not scanned.
func (a *Aggregator) AddSkipped() {
	a.skipped++
}

// AddError records a per-file error. It does not count the file as skipped;
// callers do that when the error means the file was not scanned.
func (a *Aggregator) AddError(path string, err error) {
	a.errors = append(a.errors, FileError{Path: path, Message: err.Error()})
}

// Merge adds everything other has collected. other must not be used
// afterwards.
func (a *Aggregator) Merge(other *Aggregator) {
	if other == nil {
		return
	}
	for _, ov := range other.vars {
		for _, rec := range ov.Records {
			a.add(rec)
		}
	}
	a.matched += other.matched
	a.dynamic = append(a.dynamic, other.dynamic...)
	a.scanned += other.scanned
	a.skipped += other.skipped
	a.errors = append(a.errors, other.errors...)
	for lang, n := range other.languages {
		a.languages[lang] += n
	}
	a.findings = append(a.findings, other.findings...)
}

// Result returns a sorted snapshot. The Aggregator can keep collecting
// afterwards without affecting the returned value.
func (a *Aggregator) Result() *ScanResult {
	res := &ScanResult{
		Variables:       make(map[string]*VariableUsage, len(a.vars)),
		FilesScanned:    a.scanned,
		FilesSkipped:    a.skipped,
		Errors:          slices.Clone(a.errors),
		Languages:       maps.Clone(a.languages),
		PatternsMatched: a.matched,
	}
	if res.Errors == nil {
		res.Errors = []FileError{}
	}

	for name, v := range a.vars {
		records := slices.Clone(v.Records)
		sortRecords(records)

		files := make([]string, 0, len(a.files[name]))
		for f := range a.files[name] {
			files = append(files, f)
		}
		sort.Strings(files)

		res.Variables[name] = &VariableUsage{
			TotalCount: v.TotalCount,
			Files:      files,
			Records:    records,
		}
	}

	if len(a.dynamic) > 0 {
		res.Dynamic = slices.Clone(a.dynamic)
		sortRecords(res.Dynamic)
	}

	sort.SliceStable(res.Errors, func(i, j int) bool {
		if res.Errors[i].Path != res.Errors[j].Path {
			return res.Errors[i].Path < res.Errors[j].Path
		}
		return res.Errors[i].Message < res.Errors[j].Message
	})

	if len(a.findings) > 0 {
		res.SecurityIssues = slices.Clone(a.findings)
		sort.SliceStable(res.SecurityIssues, func(i, j int) bool {
			fi, fj := res.SecurityIssues[i], res.SecurityIssues[j]
			if fi.File != fj.File {
				return fi.File < fj.File
			}
			if fi.Line != fj.Line {
				return fi.Line < fj.Line
			}
			return strings.Compare(fi.Rule, fj.Rule) < 0
		})
	}

	return res
}

// sortRecords orders records by file, line and column. Ties on position
// fall back to the variable name so merged dynamic records stay stable.
func sortRecords(records []UsageRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		ri, rj := records[i], records[j]
		if ri.FilePath != rj.FilePath {
			return ri.FilePath < rj.FilePath
		}
		if ri.LineNumber != rj.LineNumber {
			return ri.LineNumber < rj.LineNumber
		}
		if ri.Column != rj.Column {
			return ri.Column < rj.Column
		}
		return ri.VariableName < rj.VariableName
	})
}
