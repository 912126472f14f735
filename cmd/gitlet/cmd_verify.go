package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
)

func newVerifyCmd(g *globals) *cobra.Command {
	var trustedKeys string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify object integrity, branch refs and commit signatures",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(g)
			if err != nil {
				return err
			}

			var trusted []ssh.PublicKey
			if trustedKeys != "" {
				trusted, err = loadTrustedKeys(trustedKeys)
				if err != nil {
					return err
				}
			}
			report, err := r.Verify(newSSHSignatureVerifier(trusted))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			abbrev := r.Config.Core.Abbrev
			for _, p := range report.Objects.Problems {
				fmt.Fprintf(out, "bad %s %s: %s\n", p.Type, p.Hash.Short(abbrev), p.Reason)
			}
			for _, p := range report.Problems {
				fmt.Fprintf(out, "bad ref: %s\n", p)
			}
			for _, s := range report.Signed {
				if s.Err != nil {
					fmt.Fprintf(out, "bad signature %s: %v\n", s.Commit.Short(abbrev), s.Err)
				}
			}
			fmt.Fprintf(out,
				"verified %d blob(s), %d commit(s): %d signed, %d unsigned, %d unreachable\n",
				report.Objects.Blobs,
				report.Objects.Commits,
				len(report.Signed),
				report.Unsigned,
				report.Unreachable,
			)
			if !report.OK() {
				return errVerifyFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&trustedKeys, "trusted-keys", "", "authorized_keys file listing accepted signing keys")
	return cmd
}
