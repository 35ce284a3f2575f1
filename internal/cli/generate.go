package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jenian/envscan/internal/output"
	"github.com/spf13/cobra"
)

func newGenerateCmd(newLogger loggerFunc) *cobra.Command {
	var (
		f        scanFlags
		outPath  string
		comments bool
		docs     bool
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "generate [path]",
		Short: "Generate a .env.example file from the variables used in code",
		Long:  "Scan a codebase and write every variable it reads to a .env.example file, grouped by category.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.noHeader = true

			run, err := runScanner(cmd, &f, args, newLogger(cmd))
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := output.WriteExample(&buf, run.result, comments); err != nil {
				return fmt.Errorf("failed to render example: %w", err)
			}
			var docBuf bytes.Buffer
			if docs {
				if err := output.WriteDocs(&docBuf, run.result, run.duration); err != nil {
					return fmt.Errorf("failed to render documentation: %w", err)
				}
			}

			// On stdout the documentation replaces the example
			if outPath == "" || outPath == "-" {
				out := buf.Bytes()
				if docs {
					out = docBuf.Bytes()
				}
				_, err := run.stdout.Write(out)
				return err
			}

			if err := writeGenerated(outPath, buf.Bytes(), force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d variable(s) to %s\n", len(run.result.Variables), outPath)

			if docs {
				docsPath := docsPathFor(outPath)
				if err := writeGenerated(docsPath, docBuf.Bytes(), force); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote documentation to %s\n", docsPath)
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&outPath, "output", "o", "-", "File to write, - for stdout")
	cmd.Flags().BoolVar(&comments, "comments", false, "Add usage counts and locations above each variable")
	cmd.Flags().BoolVar(&docs, "docs", false, "Also write markdown documentation next to the output file (.md extension)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite the output file if it exists")
	return cmd
}

func writeGenerated(path string, data []byte, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// docsPathFor swaps the extension of the output file for .md, so
// .env.example gets .env.md beside it.
func docsPathFor(outPath string) string {
	return strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".md"
}
