package repo

import (
	"fmt"

	"github.com/odvcencio/gitlet/pkg/object"
)

// CheckoutBranch makes name the active branch and rewrites the work tree
// to its tip. Files tracked by the old tip but not the new one are deleted
// and staging is cleared. The untracked-file check runs before any write.
func (r *Repo) CheckoutBranch(name string) error {
	st, err := r.LoadState()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	targetHash, ok := st.Branches[name]
	if !ok {
		return fmt.Errorf("checkout %q: %w", name, ErrBranchNotFound)
	}
	if name == st.ActiveBranch {
		return fmt.Errorf("checkout %q: %w", name, ErrAlreadyOnBranch)
	}

	if err := r.switchWorkTree(st, targetHash); err != nil {
		return fmt.Errorf("checkout %q: %w", name, err)
	}

	from := st.ActiveBranch
	st.switchTo(name)
	st.ClearStaging()
	if err := r.SaveState(st); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	r.log().Debug("branch checked out", "from", from, "to", name, "head", targetHash)
	return nil
}

// CheckoutFile restores path in the work tree to its version at HEAD.
// Staging is unchanged.
func (r *Repo) CheckoutFile(path string) error {
	rel, err := r.RelPath(path)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	st, err := r.LoadState()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if err := r.restoreFile(st.Head, rel); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return nil
}

// CheckoutFileAt restores path in the work tree to its version in the
// commit named by the full or abbreviated id.
func (r *Repo) CheckoutFileAt(id, path string) error {
	h, err := r.ResolveCommit(id)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	rel, err := r.RelPath(path)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if err := r.restoreFile(h, rel); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return nil
}

// switchWorkTree checks for untracked conflicts and then materializes
// target over the current head and staged additions.
func (r *Repo) switchWorkTree(st *State, target object.Hash) error {
	current, err := r.Store.ReadCommit(st.Head)
	if err != nil {
		return fmt.Errorf("read head commit: %w", err)
	}
	next, err := r.Store.ReadCommit(target)
	if err != nil {
		return fmt.Errorf("read commit %s: %w", target, err)
	}
	if err := r.checkUntracked(next.Tracked, current.Tracked, st.Additions); err != nil {
		return err
	}
	return r.materialize(next.Tracked, current.Tracked, st.Additions)
}
