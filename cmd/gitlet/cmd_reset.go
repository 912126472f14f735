package main

import (
	"github.com/spf13/cobra"
)

func newResetCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <commit>",
		Short: "Move the active branch and work tree to a commit",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(g)
			if err != nil {
				return err
			}
			h, err := r.Reset(args[0])
			if err != nil {
				return err
			}
			g.logger.Info("reset", "commit", h)
			return nil
		},
	}
}
