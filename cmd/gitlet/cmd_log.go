package main

import (
	"fmt"
	"io"

	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

// logDateLayout renders commit times as "Thu Jan 01 00:00:00 1970 +0000".
const logDateLayout = "Mon Jan 02 15:04:05 2006 -0700"

func newLogCmd(g *globals) *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show first-parent history of the active branch",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(g)
			if err != nil {
				return err
			}
			entries, err := r.Log()
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			printLog(cmd.OutOrStdout(), entries, oneline, r.Config.Core.Abbrev)
			return nil
		},
	}
	cmd.Flags().BoolVar(&oneline, "oneline", false, "show each commit on a single line")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of commits to show")
	return cmd
}

func newGlobalLogCmd(g *globals) *cobra.Command {
	var oneline bool

	cmd := &cobra.Command{
		Use:   "global-log",
		Short: "Show every commit ever made",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(g)
			if err != nil {
				return err
			}
			entries, err := r.GlobalLog()
			if err != nil {
				return err
			}
			printLog(cmd.OutOrStdout(), entries, oneline, r.Config.Core.Abbrev)
			return nil
		},
	}
	cmd.Flags().BoolVar(&oneline, "oneline", false, "show each commit on a single line")
	return cmd
}

func newFindCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "find <message>",
		Short: "Print the ids of all commits with the given message",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(g)
			if err != nil {
				return err
			}
			hashes, err := r.Find(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, h := range hashes {
				fmt.Fprintln(out, h)
			}
			return nil
		},
	}
}

// printLog writes entries in gitlet's log format:
//
//	===
//	commit <digest>
//	Merge: <first parent> <second parent>
//	Date: Thu Jan 01 00:00:00 1970 +0000
//	<message>
//
// The Merge line appears for merge commits only.
func printLog(out io.Writer, entries []repo.LogEntry, oneline bool, abbrev int) {
	for _, e := range entries {
		c := e.Commit
		if oneline {
			fmt.Fprintf(out, "%s %s\n", e.Hash.Short(abbrev), firstLine(c.Message))
			continue
		}
		fmt.Fprintln(out, "===")
		fmt.Fprintf(out, "commit %s\n", e.Hash)
		if c.IsMerge() {
			fmt.Fprintf(out, "Merge: %s %s\n", c.Parents[0].Short(abbrev), c.Parents[1].Short(abbrev))
		}
		fmt.Fprintf(out, "Date: %s\n", c.Time().Format(logDateLayout))
		fmt.Fprintln(out, c.Message)
		fmt.Fprintln(out)
	}
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
