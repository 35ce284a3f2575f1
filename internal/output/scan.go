package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jenian/envscan/internal/analyzer"
	"github.com/olekukonko/tablewriter"
)

// maxLocations is how many locations the text output lists per variable.
const maxLocations = 5

// ScanOptions controls WriteScan.
type ScanOptions struct {
	Format Format
	// Duration is how long the scan took. Zero leaves it out.
	Duration time.Duration
}

// scanDocument is the JSON and YAML form of a scan. The duration is not
// part of the result because it differs between identical scans.
type scanDocument struct {
	analyzer.ScanResult `yaml:",inline"`
	ScanDurationMS      int64 `json:"scan_duration_ms,omitempty" yaml:"scan_duration_ms,omitempty"`
}

// WriteScan writes a scan result in the given format.
func WriteScan(w io.Writer, result *analyzer.ScanResult, opts ScanOptions) error {
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, scanDocument{ScanResult: *result, ScanDurationMS: opts.Duration.Milliseconds()})
	case FormatYAML:
		return writeYAML(w, scanDocument{ScanResult: *result, ScanDurationMS: opts.Duration.Milliseconds()})
	default:
		return writeScanText(w, result, opts)
	}
}

func writeScanText(w io.Writer, result *analyzer.ScanResult, opts ScanOptions) error {
	p := paletteFor(w)

	fmt.Fprintf(w, "%sScan summary%s\n", p.c(colorBold), p.c(colorReset))
	fmt.Fprintf(w, "  Files scanned:     %d\n", result.FilesScanned)
	fmt.Fprintf(w, "  Files skipped:     %d\n", result.FilesSkipped)
	fmt.Fprintf(w, "  Variables:         %d\n", len(result.Variables))
	fmt.Fprintf(w, "  Usages:            %d\n", result.TotalUsages())
	fmt.Fprintf(w, "  Patterns matched:  %d\n", result.PatternsMatched)
	if len(result.Dynamic) > 0 {
		fmt.Fprintf(w, "  Dynamic keys:      %d\n", len(result.Dynamic))
	}
	if opts.Duration > 0 {
		fmt.Fprintf(w, "  Scan duration:     %s\n", opts.Duration.Round(time.Millisecond))
	}
	fmt.Fprintln(w)

	if len(result.Languages) > 0 {
		fmt.Fprintf(w, "%sLanguages%s\n", p.c(colorBold), p.c(colorReset))
		writeLanguageTable(w, result)
		fmt.Fprintln(w)
	}

	if len(result.Variables) > 0 {
		fmt.Fprintf(w, "%sEnvironment variables%s\n\n", p.c(colorBold), p.c(colorReset))
		for _, name := range result.Names() {
			usage := result.Variables[name]
			fmt.Fprintf(w, "  %s%s%s %s(%d usage%s)%s\n", p.c(colorCyan), name, p.c(colorReset), p.c(colorGray), usage.TotalCount, plural(usage.TotalCount), p.c(colorReset))

			locs := usage.Locations()
			for i, loc := range locs {
				if i == maxLocations {
					fmt.Fprintf(w, "    %s... and %d more%s\n", p.c(colorGray), len(locs)-maxLocations, p.c(colorReset))
					break
				}
				fmt.Fprintf(w, "    %s:%s%d%s\n", loc.File, p.c(colorYellow), loc.Line, p.c(colorReset))
			}
		}
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "No environment variable usages found.\n\n")
	}

	if len(result.Dynamic) > 0 {
		fmt.Fprintf(w, "%sDynamic keys (runtime-evaluated expressions)%s\n\n", p.c(colorBold), p.c(colorReset))
		for _, rec := range result.Dynamic {
			fmt.Fprintf(w, "  %s:%s%d%s %s%s%s\n", rec.FilePath, p.c(colorYellow), rec.LineNumber, p.c(colorReset), p.c(colorCyan), rec.VariableName, p.c(colorReset))
		}
		fmt.Fprintln(w)
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(w, "%s%sErrors (%d):%s\n", p.c(colorBold), p.c(colorRed), len(result.Errors), p.c(colorReset))
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s: %s\n", e.Path, e.Message)
		}
		fmt.Fprintln(w)
	}

	if len(result.SecurityIssues) > 0 {
		fmt.Fprintf(w, "%s%sPotential secrets (%d):%s\n", p.c(colorBold), p.c(colorRed), len(result.SecurityIssues), p.c(colorReset))
		for _, f := range result.SecurityIssues {
			fmt.Fprintf(w, "  [%s] %s:%d %s\n", strings.ToUpper(f.Severity.String()), f.File, f.Line, f.Message)
		}
		fmt.Fprintln(w)
	}

	return nil
}

type languageCount struct {
	name  string
	files int
}

// languageCounts returns the per-language file counts, largest first.
func languageCounts(result *analyzer.ScanResult) []languageCount {
	rows := make([]languageCount, 0, len(result.Languages))
	for name, n := range result.Languages {
		rows = append(rows, languageCount{name, n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].files != rows[j].files {
			return rows[i].files > rows[j].files
		}
		return rows[i].name < rows[j].name
	})
	return rows
}

// writeLanguageTable renders the per-language file counts, largest first.
func writeLanguageTable(w io.Writer, result *analyzer.ScanResult) {
	rows := languageCounts(result)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Language", "Files", "Share"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})

	for _, r := range rows {
		share := 0.0
		if result.FilesScanned > 0 {
			share = float64(r.files) * 100 / float64(result.FilesScanned)
		}
		table.Append([]string{r.name, strconv.Itoa(r.files), fmt.Sprintf("%.1f%%", share)})
	}
	table.Render()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
