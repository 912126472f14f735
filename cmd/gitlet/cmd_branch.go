package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBranchCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "branch [name]",
		Short: "Create a branch at HEAD, or list branches",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("%w: branch takes at most one operand", errIncorrectOperands)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(g)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return r.CreateBranch(args[0])
			}

			branches, err := r.ListBranches()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, b := range branches {
				marker := " "
				if b.Active {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s %s\n", marker, b.Name, b.Tip.Short(r.Config.Core.Abbrev))
			}
			return nil
		},
	}
}

func newRmBranchCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "rm-branch <name>",
		Short: "Delete a branch pointer",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(g)
			if err != nil {
				return err
			}
			return branchNotFound(r.DeleteBranch(args[0]), "A branch with that name does not exist.")
		},
	}
}
