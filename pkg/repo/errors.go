package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
)

// ErrObjectNotFound is the store's not-found error re-exported so callers
// of this package can classify it without importing pkg/object.
var ErrObjectNotFound = object.ErrNotFound

var (
	ErrAmbiguousIdentifier   = errors.New("ambiguous commit identifier")
	ErrFileNotFound          = errors.New("file does not exist")
	ErrNothingToRemove       = errors.New("nothing to remove")
	ErrEmptyMessage          = errors.New("empty commit message")
	ErrNoChanges             = errors.New("no changes added to the commit")
	ErrBranchExists          = errors.New("branch already exists")
	ErrBranchNotFound        = errors.New("branch not found")
	ErrCannotRemoveActive    = errors.New("cannot remove the active branch")
	ErrUntrackedFileConflict = errors.New("untracked file would be overwritten")
	ErrSelfMerge             = errors.New("cannot merge a branch with itself")
	ErrUncommittedChanges    = errors.New("uncommitted changes")
	ErrAlreadyUpToDate       = errors.New("given branch is an ancestor of the current branch")
	ErrMergeConflict         = errors.New("merge conflict")
	ErrFileNotInCommit       = errors.New("file does not exist in that commit")

	ErrAlreadyOnBranch   = errors.New("already on branch")
	ErrNoMatchingCommit  = errors.New("found no commit with that message")
	ErrRepoExists        = errors.New("repository already exists")
	ErrNotRepository     = errors.New("not a gitlet repository")
	ErrInvalidBranchName = errors.New("invalid branch name")
)

// UnknownCommitError reports a commit identifier that names no stored
// commit. It matches ErrObjectNotFound.
type UnknownCommitError struct {
	ID string
}

func (e *UnknownCommitError) Error() string {
	return fmt.Sprintf("no commit matches %q: %s", e.ID, ErrObjectNotFound)
}

func (e *UnknownCommitError) Unwrap() error {
	return ErrObjectNotFound
}

// UntrackedError lists the untracked working files that an operation
// would have overwritten. It matches ErrUntrackedFileConflict.
type UntrackedError struct {
	Paths []string
}

func (e *UntrackedError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", ErrUntrackedFileConflict, strings.Join(e.Paths, ", "))
}

func (e *UntrackedError) Unwrap() error {
	return ErrUntrackedFileConflict
}
