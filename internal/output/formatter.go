// Package output renders scan results, check reports and .env.example files.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jenian/envscan/internal/analyzer"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "text", "json", "yaml" and "yml", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "human":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// palette hands out color codes, or nothing when colors are off.
type palette struct {
	enabled bool
}

// paletteFor enables colors only for terminals, and never when NO_COLOR is
// set.
func paletteFor(w io.Writer) palette {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return palette{}
	}
	if !term.IsTerminal(int(f.Fd())) {
		return palette{}
	}
	// On Windows, enable ANSI escape sequences (handled in formatter_windows.go)
	return palette{enabled: enableANSI(f)}
}

func (p palette) c(code string) string {
	if p.enabled {
		return code
	}
	return ""
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

// ReportOptions controls WriteReport.
type ReportOptions struct {
	Format     Format
	SkipUnused bool
	// Dynamic includes keys computed at run time.
	Dynamic bool
	// ConfigName is shown in the notes about ignored variables.
	ConfigName string
}

// ReportOutput represents the JSON and YAML form of a check report
type ReportOutput struct {
	Missing            []MissingVar `json:"missing" yaml:"missing"`
	Unused             []string     `json:"unused" yaml:"unused"`
	PartialMatches     []MissingVar `json:"partial_matches" yaml:"partial_matches"`
	IgnoredMissing     int          `json:"ignored_missing" yaml:"ignored_missing"`
	IgnoredFromFolders int          `json:"ignored_from_folders" yaml:"ignored_from_folders"`
}

// MissingVar represents a missing environment variable with its locations
type MissingVar struct {
	Key       string   `json:"key" yaml:"key"`
	Locations []string `json:"locations" yaml:"locations"`
}

// WriteReport writes a check report.
func WriteReport(w io.Writer, report analyzer.Report, opts ReportOptions) error {
	if opts.ConfigName == "" {
		opts.ConfigName = ".envscan.yaml"
	}
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, reportOutput(report, opts))
	case FormatYAML:
		return writeYAML(w, reportOutput(report, opts))
	default:
		return writeReportText(w, report, opts)
	}
}

func reportOutput(report analyzer.Report, opts ReportOptions) ReportOutput {
	out := ReportOutput{
		Missing:            []MissingVar{},
		Unused:             []string{},
		PartialMatches:     []MissingVar{},
		IgnoredMissing:     report.IgnoredMissing,
		IgnoredFromFolders: report.IgnoredFromFolders,
	}

	for _, key := range sortedKeys(report.Missing) {
		out.Missing = append(out.Missing, MissingVar{Key: key, Locations: locations(report.Missing[key])})
	}

	// Only include partial matches if dynamic mode is enabled
	if opts.Dynamic {
		for _, key := range sortedKeys(report.Dynamic) {
			out.PartialMatches = append(out.PartialMatches, MissingVar{Key: key, Locations: locations(report.Dynamic[key])})
		}
	}

	// Add unused vars if not skipped
	if !opts.SkipUnused {
		out.Unused = append(out.Unused, report.Unused...)
		sort.Strings(out.Unused)
	}
	return out
}

func locations(usages []analyzer.UsageRecord) []string {
	out := make([]string, 0, len(usages))
	for _, usage := range usages {
		loc := fmt.Sprintf("%s:%d", usage.FilePath, usage.LineNumber)
		if snippet := strings.TrimSpace(usage.Context); snippet != "" {
			loc += fmt.Sprintf(" (%s)", snippet)
		}
		out = append(out, loc)
	}
	return out
}

// writeUsages prints the "used in" lines under a key.
func writeUsages(w io.Writer, p palette, usages []analyzer.UsageRecord) {
	for _, usage := range usages {
		fmt.Fprintf(w, "    %sused in:%s %s%s%s:%s%d%s", p.c(colorGray), p.c(colorReset), p.c(colorCyan), usage.FilePath, p.c(colorReset), p.c(colorYellow), usage.LineNumber, p.c(colorReset))
		if snippet := strings.TrimSpace(usage.Context); snippet != "" {
			fmt.Fprintf(w, " %s%s%s", p.c(colorGray), truncate(snippet, 80), p.c(colorReset))
		}
		fmt.Fprintln(w)
	}
}

// writeReportText outputs a check report in human-readable format
func writeReportText(w io.Writer, report analyzer.Report, opts ReportOptions) error {
	p := paletteFor(w)
	hasIssues := false

	// Missing variables
	if len(report.Missing) > 0 {
		hasIssues = true
		fmt.Fprintf(w, "%s%sMissing environment variables:%s\n\n", p.c(colorBold), p.c(colorRed), p.c(colorReset))

		for _, key := range sortedKeys(report.Missing) {
			fmt.Fprintf(w, "  %s%s%s\n", p.c(colorRed), key, p.c(colorReset))
			writeUsages(w, p, report.Missing[key])
			fmt.Fprintln(w)
		}
	}

	// Partial matches (dynamic patterns) - only show if dynamic mode is enabled
	if opts.Dynamic && len(report.Dynamic) > 0 {
		hasIssues = true
		fmt.Fprintf(w, "%s%sDynamic patterns (runtime-evaluated expressions):%s\n\n", p.c(colorBold), p.c(colorYellow), p.c(colorReset))
		for _, key := range sortedKeys(report.Dynamic) {
			fmt.Fprintf(w, "  %s%s%s\n", p.c(colorYellow), key, p.c(colorReset))
			writeUsages(w, p, report.Dynamic[key])
			fmt.Fprintln(w)
		}
	}

	// Unused variables
	if !opts.SkipUnused && len(report.Unused) > 0 {
		hasIssues = true
		fmt.Fprintf(w, "%s%sUnused variables:%s\n\n", p.c(colorBold), p.c(colorYellow), p.c(colorReset))
		unused := append([]string(nil), report.Unused...)
		sort.Strings(unused)
		for _, key := range unused {
			sourceFile := report.Sources[key]
			if sourceFile == "" {
				sourceFile = ".env"
			}
			fmt.Fprintf(w, "  %s%s%s=%s%s%s %s(in %s)%s\n", p.c(colorYellow), key, p.c(colorReset), p.c(colorGray), redactValue(report.Declared[key]), p.c(colorReset), p.c(colorGray), sourceFile, p.c(colorReset))
		}
		fmt.Fprintln(w)
	}

	if report.IgnoredMissing > 0 {
		fmt.Fprintf(w, "%s%sNote:%s %d missing variable(s) were ignored (configured in %s)\n", p.c(colorGray), p.c(colorBold), p.c(colorReset), report.IgnoredMissing, opts.ConfigName)
	}
	if report.IgnoredFromFolders > 0 {
		fmt.Fprintf(w, "%s%sNote:%s %d variable(s) used only in ignored folders were not reported (configured in %s)\n", p.c(colorGray), p.c(colorBold), p.c(colorReset), report.IgnoredFromFolders, opts.ConfigName)
	}
	if report.IgnoredMissing > 0 || report.IgnoredFromFolders > 0 {
		fmt.Fprintln(w)
	}

	// No issues found
	if !hasIssues {
		var parts []string
		if report.IgnoredMissing > 0 {
			parts = append(parts, fmt.Sprintf("%d ignored via config", report.IgnoredMissing))
		}
		if report.IgnoredFromFolders > 0 {
			parts = append(parts, fmt.Sprintf("%d from ignored folders", report.IgnoredFromFolders))
		}
		if len(parts) > 0 {
			fmt.Fprintf(w, "%s%s✓ No issues found (excluding %s).%s\n", p.c(colorGreen), p.c(colorBold), strings.Join(parts, ", "), p.c(colorReset))
		} else {
			fmt.Fprintf(w, "%s%s✓ No issues found. All environment variables are properly configured.%s\n", p.c(colorGreen), p.c(colorBold), p.c(colorReset))
		}
	}

	return nil
}

// HasIssues returns true if there are any issues in the report
// Note: Ignored missing variables don't count as issues
// dynamic: whether to include partial matches in the issue count
func HasIssues(report analyzer.Report, skipUnused, dynamic bool) bool {
	if len(report.Missing) > 0 {
		return true
	}
	if dynamic && len(report.Dynamic) > 0 {
		return true
	}
	return !skipUnused && len(report.Unused) > 0
}

// redactValue redacts sensitive values while showing the type
func redactValue(value string) string {
	if value == "" {
		return `""`
	}
	// If it looks like a secret (long, random-looking), redact it
	if len(value) > 20 {
		return "[REDACTED]"
	}
	// If it contains special characters that suggest it's a secret
	if strings.ContainsAny(value, "=+/") && len(value) > 10 {
		return "[REDACTED]"
	}
	// For short values, show first and last char
	if len(value) > 4 {
		return string(value[0]) + "..." + string(value[len(value)-1])
	}
	// For very short values, just show asterisks
	return "***"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatError formats an error message
func FormatError(err error) string {
	return fmt.Sprintf("Error: %s\n", err)
}
