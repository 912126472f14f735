package main

import (
	"errors"
	"fmt"

	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newMergeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the active branch",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(g)
			if err != nil {
				return err
			}

			report, err := r.Merge(args[0])
			out := cmd.OutOrStdout()
			switch {
			case errors.Is(err, repo.ErrMergeConflict):
				for _, f := range report.Files {
					if f.Outcome == repo.OutcomeConflict {
						g.logger.Info("conflict", "path", f.Path)
					}
				}
				fmt.Fprintln(out, "Encountered a merge conflict.")
				return nil
			case err != nil:
				return branchNotFound(err, "A branch with that name does not exist.")
			}

			if report.FastForward {
				fmt.Fprintln(out, "Current branch fast-forwarded.")
			}
			g.logger.Info("merged", "branch", report.OtherBranch, "commit", report.MergeCommit, "files", len(report.Files))
			return nil
		},
	}
}
