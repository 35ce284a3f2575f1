package cli

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jenian/envscan/internal/config"
	"github.com/jenian/envscan/internal/output"
	"github.com/jenian/envscan/internal/scanner"
	"github.com/jenian/envscan/internal/secrets"
	"github.com/spf13/cobra"
)

// scanFlags are shared by every command that scans a tree.
type scanFlags struct {
	path        string
	format      string
	jsonOutput  bool
	silent      bool
	noHeader    bool
	include     []string
	exclude     []string
	maxDepth    int
	parallel    bool
	workers     int
	maxFileSize int64
	secrets     bool
	minSeverity string
}

func (f *scanFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.path, "path", "p", ".", "Path to scan (default: current directory)")
	flags.StringVar(&f.format, "format", "text", "Output format: text, json or yaml")
	flags.BoolVar(&f.jsonOutput, "json", false, "Output results in JSON format (same as --format json)")
	flags.BoolVar(&f.silent, "silent", false, "Silent mode (exit code only)")
	flags.BoolVar(&f.noHeader, "no-header", false, "Skip printing the header")
	flags.StringSliceVar(&f.include, "include", []string{}, "Glob patterns to include (replaces the config value)")
	flags.StringSliceVar(&f.exclude, "exclude", []string{}, "Glob patterns to exclude, added to the built-in exclusions")
	flags.IntVar(&f.maxDepth, "max-depth", config.DefaultMaxDepth, "Maximum directory depth to descend (0 for unlimited)")
	flags.BoolVar(&f.parallel, "parallel", true, "Scan files concurrently")
	flags.IntVar(&f.workers, "workers", 0, "Number of concurrent workers (0 for one per CPU)")
	flags.Int64Var(&f.maxFileSize, "max-file-size", config.DefaultMaxFileSize, "Skip files larger than this many bytes")
	flags.BoolVar(&f.secrets, "secrets", false, "Also report lines that look like hard-coded secrets")
	flags.StringVar(&f.minSeverity, "min-severity", "low", "Lowest secret severity to report: low, medium, high or critical")
}

// root resolves the directory to scan from the positional argument or --path.
func (f *scanFlags) root(args []string) (string, error) {
	p := f.path
	if len(args) > 0 {
		p = args[0]
	}

	absPath, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("path does not exist: %s", absPath)
	}
	return absPath, nil
}

func (f *scanFlags) outputFormat() (output.Format, error) {
	if f.jsonOutput {
		return output.FormatJSON, nil
	}
	return output.ParseFormat(f.format)
}

// loadConfig reads the config in root. A broken config file is reported and
// replaced by the defaults, so a typo never blocks a scan.
func loadConfig(root string, logger *log.Logger) *config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		logger.Warn("failed to load config, using defaults", "error", err)
		return config.Default()
	}
	if cfg.Path != "" {
		logger.Debug("loaded config", "file", cfg.Path)
	}
	return cfg
}

// options merges the built-in defaults, the config file and the flags that
// were set explicitly, in that order.
func (f *scanFlags) options(cmd *cobra.Command, cfg *config.Config) scanner.ScanOptions {
	opts := scanner.DefaultOptions()

	if len(cfg.Scan.Include) > 0 {
		opts.Include = cfg.Scan.Include
	}
	opts.Exclude = append(opts.Exclude, cfg.Scan.Exclude...)
	opts.MaxDepth = cfg.Scan.MaxDepth
	opts.Parallel = cfg.Scan.Parallel
	if cfg.Scan.Workers > 0 {
		opts.Workers = cfg.Scan.Workers
	}
	if cfg.Scan.MaxFileSize > 0 {
		opts.MaxFileSize = cfg.Scan.MaxFileSize
	}

	flags := cmd.Flags()
	if flags.Changed("include") {
		opts.Include = f.include
	}
	opts.Exclude = append(opts.Exclude, f.exclude...)
	if flags.Changed("max-depth") {
		opts.MaxDepth = f.maxDepth
	}
	if flags.Changed("parallel") {
		opts.Parallel = f.parallel
	}
	if flags.Changed("workers") && f.workers > 0 {
		opts.Workers = f.workers
	}
	if flags.Changed("max-file-size") && f.maxFileSize > 0 {
		opts.MaxFileSize = f.maxFileSize
	}
	return opts
}

func (f *scanFlags) secretsEnabled(cmd *cobra.Command, cfg *config.Config) bool {
	if cmd.Flags().Changed("secrets") {
		return f.secrets
	}
	return cfg.Scan.Secrets
}

// secretsDetector builds the credential detector, or returns nil when
// secret detection is off.
func (f *scanFlags) secretsDetector(cmd *cobra.Command, cfg *config.Config, logger *log.Logger) (*secrets.Detector, error) {
	if !f.secretsEnabled(cmd, cfg) {
		return nil, nil
	}
	name := cfg.Scan.MinSeverity
	if cmd.Flags().Changed("min-severity") || name == "" {
		name = f.minSeverity
	}
	var floor secrets.Severity
	if err := floor.UnmarshalText([]byte(name)); err != nil {
		return nil, fmt.Errorf("invalid minimum severity: %w", err)
	}
	d := secrets.NewDetector(secrets.AtLeast(secrets.DefaultRules(), floor)...)
	logger.Debug("secret detection enabled", "min_severity", floor, "rules", len(d.Rules()))
	return d, nil
}

// configName is the config file name shown in notes.
func configName(cfg *config.Config) string {
	if cfg.Path == "" {
		return config.FileName + ".yaml"
	}
	return filepath.Base(cfg.Path)
}

// languageSummary renders per-language counts like "js: 3, go: 1".
func languageSummary(counts map[string]int) string {
	short := map[string]string{"javascript": "js", "typescript": "ts"}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	// most files first, then by name
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	parts := make([]string, 0, len(names))
	for _, name := range names {
		display := name
		if s, ok := short[name]; ok {
			display = s
		}
		parts = append(parts, fmt.Sprintf("%s: %d", display, counts[name]))
	}
	return strings.Join(parts, ", ")
}
