package output

import (
	"fmt"
	"io"
	"time"

	"github.com/jenian/envscan/internal/analyzer"
	"github.com/jenian/envscan/internal/secrets"
)

// severitySections lists the security issue headings, worst first.
var severitySections = []struct {
	severity secrets.Severity
	title    string
}{
	{secrets.Critical, "Critical Issues"},
	{secrets.High, "High Severity Issues"},
	{secrets.Medium, "Medium Severity Issues"},
	{secrets.Low, "Low Severity Issues"},
}

// WriteDocs writes a markdown document describing every variable the scan
// found. duration is left out when zero.
func WriteDocs(w io.Writer, result *analyzer.ScanResult, duration time.Duration) error {
	fmt.Fprintf(w, "# Environment Variables Documentation\n\n")
	if duration > 0 {
		fmt.Fprintf(w, "Scan completed in: %s\n", duration.Round(time.Millisecond))
	}
	fmt.Fprintf(w, "Files scanned: %d\n", result.FilesScanned)
	fmt.Fprintf(w, "Patterns matched: %d\n", result.PatternsMatched)
	fmt.Fprintf(w, "Variables found: %d\n\n", len(result.Variables))

	fmt.Fprintf(w, "## Language Distribution\n\n")
	for _, lc := range languageCounts(result) {
		fmt.Fprintf(w, "- %s: %d files\n", lc.name, lc.files)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "## Environment Variables\n\n")
	for _, name := range result.Names() {
		usage := result.Variables[name]
		fmt.Fprintf(w, "### %s\n", name)
		fmt.Fprintf(w, "- Used in %d files\n", len(usage.Files))
		first := "unknown"
		if len(usage.Files) > 0 {
			first = usage.Files[0]
		}
		fmt.Fprintf(w, "- First seen in: %s\n", first)
		if len(usage.Files) > 1 {
			fmt.Fprintf(w, "- Usage locations:\n")
			for _, file := range usage.Files {
				fmt.Fprintf(w, "  - %s\n", file)
			}
		}
		fmt.Fprintln(w)
	}

	if len(result.SecurityIssues) == 0 {
		return nil
	}
	fmt.Fprintf(w, "## Security Issues\n\n")
	for _, section := range severitySections {
		var lines []string
		for _, f := range result.SecurityIssues {
			if f.Severity == section.severity {
				lines = append(lines, fmt.Sprintf("- %s: %s:%d\n", f.Message, f.File, f.Line))
			}
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(w, "### %s\n\n", section.title)
		for _, line := range lines {
			io.WriteString(w, line)
		}
		fmt.Fprintln(w)
	}
	return nil
}
