package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newStatusCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show branches, staged files and work tree changes",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(g)
			if err != nil {
				return err
			}
			s, err := r.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			section(out, "Branches", func() {
				for _, b := range s.Branches {
					if b == s.ActiveBranch {
						fmt.Fprintf(out, "*%s\n", b)
					} else {
						fmt.Fprintln(out, b)
					}
				}
			})
			section(out, "Staged Files", func() {
				for _, p := range s.Staged {
					fmt.Fprintln(out, p)
				}
			})
			section(out, "Removed Files", func() {
				for _, p := range s.Removed {
					fmt.Fprintln(out, p)
				}
			})
			section(out, "Modifications Not Staged For Commit", func() {
				for _, c := range s.Unstaged {
					fmt.Fprintf(out, "%s (%s)\n", c.Path, c.Kind)
				}
			})
			section(out, "Untracked Files", func() {
				for _, p := range s.Untracked {
					fmt.Fprintln(out, p)
				}
			})
			return nil
		},
	}
}

func section(out io.Writer, title string, body func()) {
	fmt.Fprintf(out, "=== %s ===\n", title)
	body()
	fmt.Fprintln(out)
}
