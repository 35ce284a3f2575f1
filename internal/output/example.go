package output

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/jenian/envscan/internal/analyzer"
)

// Category names used when grouping .env.example entries.
const (
	CategoryDatabase = "Database"
	CategoryAPI      = "API & Authentication"
	CategorySecurity = "Security"
	CategoryNetwork  = "Network"
	CategoryLogging  = "Logging & Debugging"
	CategoryGeneral  = "General"
)

// categoryOrder is the order categories appear in the generated file.
var categoryOrder = []string{
	CategoryDatabase,
	CategoryAPI,
	CategorySecurity,
	CategoryNetwork,
	CategoryLogging,
	CategoryGeneral,
}

// Categorize assigns a variable to a category from substrings of its
// uppercased name. The first rule that matches wins.
func Categorize(name string) string {
	upper := strings.ToUpper(name)
	has := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(upper, s) {
				return true
			}
		}
		return false
	}

	switch {
	case has("DATABASE", "DB"):
		return CategoryDatabase
	case has("API", "TOKEN"):
		return CategoryAPI
	case has("LOG", "DEBUG"):
		return CategoryLogging
	case has("PORT", "HOST"):
		return CategoryNetwork
	case has("SECRET", "KEY"):
		return CategorySecurity
	default:
		return CategoryGeneral
	}
}

// WriteExample writes a .env.example file listing every variable of result
// with an empty value, grouped by category. With comments, each entry is
// preceded by its usage count and up to three files.
func WriteExample(w io.Writer, result *analyzer.ScanResult, comments bool) error {
	groups := make(map[string][]string)
	for _, name := range result.Names() {
		cat := Categorize(name)
		groups[cat] = append(groups[cat], name)
	}

	fmt.Fprintln(w, "# Environment variables used by this project")
	fmt.Fprintln(w, "# Copy to .env and fill in the values")
	fmt.Fprintln(w)

	for _, cat := range categoryOrder {
		names := groups[cat]
		if len(names) == 0 {
			continue
		}
		fmt.Fprintf(w, "# %s\n# ----------------------------\n", cat)
		for _, name := range names {
			usage := result.Variables[name]
			if comments {
				// One location per file, not per read
				fmt.Fprintf(w, "# Used in %d location(s)\n", len(usage.Files))
				fmt.Fprintf(w, "# Locations: %s\n", summarizeFiles(usage.Files))
			}
			fmt.Fprintf(w, "%s=\n", name)
			if comments {
				fmt.Fprintln(w)
			}
		}
		if !comments {
			fmt.Fprintln(w)
		}
	}
	return nil
}

// summarizeFiles lists up to three file names, or the first two and a count
// of the rest.
func summarizeFiles(files []string) string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = path.Base(f)
	}
	if len(names) <= 3 {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(names[:2], ", "), len(names)-2)
}
