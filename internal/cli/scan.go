package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jenian/envscan/internal/analyzer"
	"github.com/jenian/envscan/internal/config"
	"github.com/jenian/envscan/internal/languages"
	"github.com/jenian/envscan/internal/output"
	"github.com/jenian/envscan/internal/parser"
	"github.com/jenian/envscan/internal/scanner"
	"github.com/spf13/cobra"
)

// scanRun is the shared outcome of scanning a tree for a command.
type scanRun struct {
	root     string
	cfg      *config.Config
	format   output.Format
	result   *analyzer.ScanResult
	duration time.Duration
	stdout   io.Writer
}

func newScanCmd(newLogger loggerFunc) *cobra.Command {
	var f scanFlags

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a codebase for environment variable usages",
		Long:  "Recursively scan a directory and report every environment variable read, where it happens, and in which language.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := runScanner(cmd, &f, args, newLogger(cmd))
			if err != nil {
				return err
			}
			if err := output.WriteScan(run.stdout, run.result, output.ScanOptions{
				Format:   run.format,
				Duration: run.duration,
			}); err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

// runScanner resolves the root, config and options, then scans.
func runScanner(cmd *cobra.Command, f *scanFlags, args []string, logger *log.Logger) (*scanRun, error) {
	format, err := f.outputFormat()
	if err != nil {
		return nil, err
	}

	root, err := f.root(args)
	if err != nil {
		return nil, err
	}

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	if f.silent {
		stdout, stderr = io.Discard, io.Discard
	}

	// Print header unless disabled or in JSON/silent mode
	if !f.noHeader && format == output.FormatText {
		printHeader(stdout)
	}

	cfg := loadConfig(root, logger)
	opts := f.options(cmd, cfg)

	registry, err := languages.NewBuiltinRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build language registry: %w", err)
	}

	parserOpts := []parser.Option{
		parser.WithMaxFileSize(opts.MaxFileSize),
		parser.WithLogger(logger),
	}
	detector, err := f.secretsDetector(cmd, cfg, logger)
	if err != nil {
		return nil, err
	}
	if detector != nil {
		parserOpts = append(parserOpts, parser.WithSecrets(detector))
	}
	s := scanner.New(registry,
		scanner.WithParser(parser.New(parserOpts...)),
		scanner.WithLogger(logger),
	)

	fmt.Fprintf(stderr, "Scanning %s...\n", root)
	start := time.Now()
	result, err := s.Scan(cmd.Context(), root, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}
	elapsed := time.Since(start)
	logger.Debug("scan finished", "files", result.FilesScanned, "duration", elapsed)

	if len(result.Languages) > 0 {
		fmt.Fprintf(stderr, "Found %d files (%s)\n", result.FilesScanned, languageSummary(result.Languages))
	} else {
		fmt.Fprintf(stderr, "Found %d files to parse\n", result.FilesScanned)
	}

	return &scanRun{
		root:     root,
		cfg:      cfg,
		format:   format,
		result:   result,
		duration: elapsed,
		stdout:   stdout,
	}, nil
}
