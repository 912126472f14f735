package main

import (
	"github.com/spf13/cobra"
)

func newAddCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>",
		Short: "Stage a file for the next commit",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(g)
			if err != nil {
				return err
			}
			return r.Add(args[0])
		},
	}
}
