package cli

import (
	"fmt"

	"github.com/jenian/envscan/internal/analyzer"
	"github.com/jenian/envscan/internal/envfile"
	"github.com/jenian/envscan/internal/output"
	"github.com/spf13/cobra"
)

func newCheckCmd(newLogger loggerFunc) *cobra.Command {
	var (
		f          scanFlags
		envFiles   []string
		skipUnused bool
		noDetect   bool
		noDynamic  bool
		onlyFiles  bool
	)

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Compare code usages with .env files",
		Long: `Scan a codebase and compare the variables it reads with the ones declared in
.env files, .envrc, shell exports, docker-compose and Kubernetes manifests.
Exits with status 1 when a variable is missing or unused.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd)

			run, err := runScanner(cmd, &f, args, logger)
			if err != nil {
				return err
			}

			envLoader := envfile.NewLoader()
			envLoader.SetLogger(logger)
			envLoader.SetAutoDetect(!noDetect && !onlyFiles)
			if onlyFiles {
				envLoader.SetEnvFiles(envFiles)
			} else {
				for _, file := range envFiles {
					envLoader.AddEnvFile(file)
				}
			}

			// Exported variables count as defined, but never as unused
			envVars, set, err := envLoader.LoadWithExportedEnv(run.root)
			if err != nil {
				return fmt.Errorf("failed to load env files: %w", err)
			}

			report := analyzer.Analyze(run.result, envVars, set.Vars, set.Sources, run.cfg)

			err = output.WriteReport(run.stdout, report, output.ReportOptions{
				Format:     run.format,
				SkipUnused: skipUnused,
				Dynamic:    !noDynamic,
				ConfigName: configName(run.cfg),
			})
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}

			if output.HasIssues(report, skipUnused, !noDynamic) {
				return ErrIssuesFound
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringSliceVar(&envFiles, "env-file", []string{}, "Additional env file to load (repeatable)")
	cmd.Flags().BoolVar(&skipUnused, "skip-unused", false, "Skip reporting unused variables")
	cmd.Flags().BoolVar(&noDynamic, "no-dynamic", false, "Disable dynamic pattern detection (skip keys computed at run time)")
	cmd.Flags().BoolVar(&onlyFiles, "env-files-only", false, "Load only the --env-file files, not .env and the auto-detected sources")
	cmd.Flags().BoolVar(&noDetect, "no-auto-detect", false, "Only load .env, .env.local, env.example and --env-file files")
	return cmd
}
