package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newReflogCmd(g *globals) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "reflog [branch]",
		Short: "Show branch tip history",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("%w: reflog takes at most one operand", errIncorrectOperands)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(g)
			if err != nil {
				return err
			}

			branch := ""
			if len(args) == 1 {
				branch = args[0]
			}
			entries, err := r.ReadReflog(branch, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				ts := time.Unix(e.Timestamp, 0).UTC().Format(time.RFC3339)
				fmt.Fprintf(out, "%s %s %s %s\n", e.NewHash.Short(r.Config.Core.Abbrev), ts, e.Branch, e.Reason)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to show")
	return cmd
}
