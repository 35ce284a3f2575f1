package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jenian/envscan/internal/config"
	"github.com/spf13/cobra"
)

func newInitConfigCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Create a .envscan.yaml file in the current directory",
		Long:  "Creates a .envscan.yaml file with the default configuration, commented, in the current directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := config.FileName + ".yaml"
			configPath := filepath.Join(dir, name)

			// Check if file already exists
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("%s already exists in %s", name, dir)
			}

			if err := os.WriteFile(configPath, []byte(config.Template), 0o644); err != nil {
				return fmt.Errorf("failed to create %s: %w", name, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s in %s\n", name, dir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write the config file to")
	return cmd
}
