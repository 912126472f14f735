package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newInitCmd(g *globals) *cobra.Command {
	var defaultBranch string
	var timezone string

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty gitlet repository",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("%w: init takes at most one path", errIncorrectOperands)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			cfg := repo.DefaultConfig()
			if defaultBranch != "" {
				cfg.Core.DefaultBranch = defaultBranch
			}
			if timezone != "" {
				cfg.Core.Timezone = timezone
			}
			r, err := repo.InitWithConfig(abs, cfg)
			if err != nil {
				return err
			}
			g.logger.Debug("repository initialized", "root", r.RootDir, "branch", cfg.Core.DefaultBranch)

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty Gitlet repository in %s\n", r.GitletDir+string(filepath.Separator))
			return nil
		},
	}
	cmd.Flags().StringVar(&defaultBranch, "default-branch", "", "name of the initial branch (default master)")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA time zone for commit timestamps (default Local)")
	return cmd
}
