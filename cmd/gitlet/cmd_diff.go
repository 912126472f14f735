package main

import (
	"fmt"

	"github.com/odvcencio/gitlet/pkg/diff"
	"github.com/spf13/cobra"
)

func newDiffCmd(g *globals) *cobra.Command {
	var stat bool
	var context int

	cmd := &cobra.Command{
		Use:   "diff [paths...]",
		Short: "Show work tree changes against HEAD",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(g)
			if err != nil {
				return err
			}
			diffs, err := r.Diff(args...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if stat {
				fmt.Fprint(out, diff.FormatStat(diffs))
				return nil
			}
			for _, d := range diffs {
				text, err := diff.FormatUnified(d, context)
				if err != nil {
					return err
				}
				fmt.Fprint(out, text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stat, "stat", false, "show a per-file summary instead of patches")
	cmd.Flags().IntVarP(&context, "unified", "U", diff.DefaultContext, "lines of context")
	return cmd
}
