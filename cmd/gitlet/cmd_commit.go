package main

import (
	"github.com/spf13/cobra"
)

func newCommitCmd(g *globals) *cobra.Command {
	var sign bool
	var signingKey string

	cmd := &cobra.Command{
		Use:   "commit <message>",
		Short: "Record the staged changes",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(g)
			if err != nil {
				return err
			}

			if sign || r.Config.Commit.Sign {
				keyPath := signingKey
				if keyPath == "" {
					keyPath = r.Config.Commit.SigningKey
				}
				signer, resolved, err := newSSHCommitSigner(keyPath)
				if err != nil {
					return err
				}
				r.Signer = signer
				g.logger.Debug("signing commit", "key", resolved)
			}

			_, err = r.Commit(args[0])
			return err
		},
	}
	cmd.Flags().BoolVarP(&sign, "sign", "S", false, "sign the commit with an SSH key")
	cmd.Flags().StringVar(&signingKey, "key", "", "SSH private key used with --sign (default from config or ~/.ssh)")
	return cmd
}
