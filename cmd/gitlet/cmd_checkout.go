package main

import (
	"github.com/spf13/cobra"
)

func newCheckoutCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <branch> | -- <file> | <commit> -- <file>",
		Short: "Switch branches or restore a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			dash := cmd.ArgsLenAtDash()
			switch {
			case dash < 0 && len(args) == 1:
				r, err := openRepo(g)
				if err != nil {
					return err
				}
				return branchNotFound(r.CheckoutBranch(args[0]), "No such branch exists.")
			case dash == 0 && len(args) == 1:
				r, err := openRepo(g)
				if err != nil {
					return err
				}
				return r.CheckoutFile(args[0])
			case dash == 1 && len(args) == 2:
				r, err := openRepo(g)
				if err != nil {
					return err
				}
				return r.CheckoutFileAt(args[0], args[1])
			default:
				return errIncorrectOperands
			}
		},
	}
}
