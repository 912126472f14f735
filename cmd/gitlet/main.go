package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code. Every
// failure prints a single line to stderr.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, userMessage(err))
		return 1
	}
	return 0
}

// globals holds the persistent flags and what is derived from them.
type globals struct {
	logLevel  string
	logFormat string
	logger    *slog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "gitlet",
		Short:         "A small local version-control system",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := setupLogger(cmd.ErrOrStderr(), g.logLevel, g.logFormat)
			if err != nil {
				return err
			}
			g.logger = logger
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return errNoCommand
		},
	}
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "log format (text, json)")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errIncorrectOperands, err)
	})
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(g))
	root.AddCommand(newAddCmd(g))
	root.AddCommand(newCommitCmd(g))
	root.AddCommand(newRmCmd(g))
	root.AddCommand(newLogCmd(g))
	root.AddCommand(newGlobalLogCmd(g))
	root.AddCommand(newFindCmd(g))
	root.AddCommand(newStatusCmd(g))
	root.AddCommand(newCheckoutCmd(g))
	root.AddCommand(newBranchCmd(g))
	root.AddCommand(newRmBranchCmd(g))
	root.AddCommand(newResetCmd(g))
	root.AddCommand(newMergeCmd(g))
	root.AddCommand(newReflogCmd(g))
	root.AddCommand(newDiffCmd(g))
	root.AddCommand(newVerifyCmd(g))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  exactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gitlet %s\n", version)
		},
	}
}

func setupLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn", "":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("%w: unknown log level %q", errIncorrectOperands, level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("%w: unknown log format %q", errIncorrectOperands, format)
	}
	return slog.New(handler), nil
}

// openRepo opens the repository containing the process working directory
// and attaches the command-line logger.
func openRepo(g *globals) (*repo.Repo, error) {
	r, err := repo.Open(".")
	if err != nil {
		return nil, err
	}
	if g.logger != nil {
		r.Logger = g.logger
	}
	return r, nil
}

// exactArgs is cobra.ExactArgs reporting gitlet's operand error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: %s takes %d operand(s), got %d", errIncorrectOperands, cmd.Name(), n, len(args))
		}
		return nil
	}
}
