package analyzer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jenian/envscan/internal/config"
)

// Analyze compares the variables read in code with those declared in env files
// envVars: all environment variables (from env files + exported env vars) - used for missing check
// envVarsFromFiles: only variables from env files - used for unused check
// sources: maps variable key to the env file that declared it
// cfg: configuration for ignoring variables
func Analyze(scan *ScanResult, envVars, envVarsFromFiles, sources map[string]string, cfg *config.Config) Report {
	report := Report{
		Missing:  make(map[string][]UsageRecord),
		Dynamic:  make(map[string][]UsageRecord),
		Unused:   []string{},
		Declared: envVarsFromFiles,
		Sources:  sources,
	}
	if cfg == nil {
		cfg = config.Default()
	}

	// Track unique variables from ignored folders that would have been missing
	ignoredFolderVars := make(map[string]bool)

	for _, name := range scan.Names() {
		if _, exists := envVars[name]; exists {
			continue
		}

		var kept []UsageRecord
		hasIgnoredFolderUsage := false
		for _, rec := range scan.Variables[name].Records {
			if cfg.InIgnoredFolder(rec.FilePath) {
				hasIgnoredFolderUsage = true
				continue
			}
			kept = append(kept, rec)
		}

		// If all usages are from ignored folders, count it but don't report as missing
		if len(kept) == 0 {
			if hasIgnoredFolderUsage {
				ignoredFolderVars[name] = true
			}
			continue
		}

		if cfg.ShouldIgnoreMissing(name) {
			report.IgnoredMissing++
			continue
		}
		report.Missing[name] = kept
	}

	report.IgnoredFromFolders = len(ignoredFolderVars)

	// Dynamic keys, grouped by the expression as written
	for _, rec := range scan.Dynamic {
		if cfg.InIgnoredFolder(rec.FilePath) {
			continue
		}
		report.Dynamic[rec.VariableName] = append(report.Dynamic[rec.VariableName], rec)
	}
	for expr := range report.Dynamic {
		fragments := literalFragments(expr)
		// A bare variable reference can be anything, so it always stays
		if len(fragments) > 0 && anyKeyContains(envVars, fragments) {
			delete(report.Dynamic, expr)
		}
	}

	// Only env files count for unused, not the exported environment
	for key := range envVarsFromFiles {
		if _, used := scan.Variables[key]; !used {
			report.Unused = append(report.Unused, key)
		}
	}
	sort.Strings(report.Unused)

	return report
}

var (
	quotedPattern        = regexp.MustCompile("\"([^\"]*)\"|'([^']*)'|`([^`]*)`")
	interpolationPattern = regexp.MustCompile(`[$#]?\{[^}]*\}`)
)

// literalFragments returns the constant pieces of a key expression: the
// contents of its string literals with any interpolations cut out.
func literalFragments(expr string) []string {
	var out []string
	for _, m := range quotedPattern.FindAllStringSubmatch(expr, -1) {
		lit := m[1] + m[2] + m[3]
		for _, piece := range interpolationPattern.Split(lit, -1) {
			if piece != "" {
				out = append(out, piece)
			}
		}
	}
	return out
}

// anyKeyContains reports whether one key holds every fragment, so that
// "DB_" + name is satisfied by DB_HOST.
func anyKeyContains(envVars map[string]string, fragments []string) bool {
	for key := range envVars {
		all := true
		for _, f := range fragments {
			if !strings.Contains(key, f) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}
