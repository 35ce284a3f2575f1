// Package cli builds the envscan command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/jenian/envscan/internal/output"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags
var Version = "dev"

// ErrIssuesFound makes the process exit with status 1 without printing an
// error, after check has reported missing or unused variables.
var ErrIssuesFound = errors.New("environment issues found")

// NewRootCmd returns the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "envscan",
		Short: "Scan codebase for environment variable usages",
		Long: `envscan finds every place a codebase reads an environment variable, in
JavaScript, TypeScript, Python, Go, Rust, Java and a dozen more languages,
and compares the result with .env files and other environment definitions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	newLogger := func(cmd *cobra.Command) *log.Logger {
		logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
			Prefix: "envscan",
			Level:  log.WarnLevel,
		})
		if debug {
			logger.SetLevel(log.DebugLevel)
			logger.SetReportTimestamp(true)
		}
		return logger
	}

	rootCmd.AddCommand(
		newScanCmd(newLogger),
		newCheckCmd(newLogger),
		newGenerateCmd(newLogger),
		newInitConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

type loggerFunc func(cmd *cobra.Command) *log.Logger

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  "Print the version number of envscan",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return run(ctx, NewRootCmd(), os.Args[1:], os.Stderr)
}

func run(ctx context.Context, rootCmd *cobra.Command, args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrIssuesFound):
		return 1
	default:
		fmt.Fprint(stderr, output.FormatError(err))
		return 1
	}
}

func printHeader(w io.Writer) {
	header := `
  ___  _ __  __   __ ___   ___  __ _  _ __
 / _ \| '_ \ \ \ / // __| / __|/ _' || '_ \
|  __/| | | | \ V / \__ \| (__| (_| || | | |
 \___||_| |_|  \_/  |___/ \___|\__,_||_| |_|

`
	fmt.Fprint(w, header)
	fmt.Fprintf(w, "Version: %s\n\n", Version)
}
