package main

import (
	"errors"
	"strings"

	"github.com/odvcencio/gitlet/pkg/repo"
)

var (
	errNoCommand         = errors.New("no command given")
	errIncorrectOperands = errors.New("incorrect operands")
	errVerifyFailed      = errors.New("verification failed")
)

// userMessages maps error kinds to the sentence printed for them. The
// first match wins.
var userMessages = []struct {
	err error
	msg string
}{
	{errNoCommand, "Please enter a command."},
	{errIncorrectOperands, "Incorrect operands."},
	{repo.ErrNotRepository, "Not in an initialized Gitlet directory."},
	{repo.ErrRepoExists, "A Gitlet version-control system already exists in the current directory."},
	{repo.ErrFileNotInCommit, "File does not exist in that commit."},
	{repo.ErrFileNotFound, "File does not exist."},
	{repo.ErrNothingToRemove, "No reason to remove the file."},
	{repo.ErrEmptyMessage, "Please enter a commit message."},
	{repo.ErrNoChanges, "No changes added to the commit."},
	{repo.ErrAmbiguousIdentifier, "Ambiguous commit id."},
	{repo.ErrNoMatchingCommit, "Found no commit with that message."},
	{repo.ErrUntrackedFileConflict, "There is an untracked file in the way; delete it, or add and commit it first."},
	{repo.ErrAlreadyOnBranch, "No need to checkout the current branch."},
	{repo.ErrBranchExists, "A branch with that name already exists."},
	{repo.ErrCannotRemoveActive, "Cannot remove the current branch."},
	{repo.ErrSelfMerge, "Cannot merge a branch with itself."},
	{repo.ErrUncommittedChanges, "You have uncommitted changes."},
	{repo.ErrAlreadyUpToDate, "Given branch is an ancestor of the current branch."},
	{repo.ErrInvalidBranchName, "Invalid branch name."},
}

// userMessage renders err as the one line shown to the user. Branch
// lookups word the miss differently per command, so ErrBranchNotFound is
// resolved by the caller through branchNotFound. Only an unknown commit id
// gets the commit sentence; other missing objects print their error.
func userMessage(err error) string {
	var bnf *branchNotFoundError
	if errors.As(err, &bnf) {
		return bnf.msg
	}
	var unknown *repo.UnknownCommitError
	if errors.As(err, &unknown) {
		return "No commit with that id exists."
	}
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	if strings.HasPrefix(err.Error(), "unknown command") {
		return "No command with that name exists."
	}
	return err.Error()
}

type branchNotFoundError struct {
	msg string
	err error
}

func (e *branchNotFoundError) Error() string { return e.err.Error() }
func (e *branchNotFoundError) Unwrap() error { return e.err }

// branchNotFound attaches msg to err when err reports a missing branch.
func branchNotFound(err error, msg string) error {
	if errors.Is(err, repo.ErrBranchNotFound) {
		return &branchNotFoundError{msg: msg, err: err}
	}
	return err
}
