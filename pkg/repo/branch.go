package repo

import (
	"fmt"

	"github.com/odvcencio/gitlet/pkg/object"
)

// BranchInfo describes one entry of the branch table.
type BranchInfo struct {
	Name   string
	Tip    object.Hash
	Active bool
}

// CreateBranch creates a branch pointing at HEAD. It does not switch the
// active branch.
func (r *Repo) CreateBranch(name string) error {
	if err := ValidateBranchName(name); err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	st, err := r.LoadState()
	if err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	if _, ok := st.Branches[name]; ok {
		return fmt.Errorf("create branch %q: %w", name, ErrBranchExists)
	}

	st.moveBranch(name, st.Head, "branch: created from "+st.ActiveBranch)
	if err := r.SaveState(st); err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	r.log().Debug("branch created", "branch", name, "tip", st.Head)
	return nil
}

// DeleteBranch removes a branch pointer. Commits it pointed at are left
// in the store.
func (r *Repo) DeleteBranch(name string) error {
	st, err := r.LoadState()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if name == st.ActiveBranch {
		return fmt.Errorf("delete branch %q: %w", name, ErrCannotRemoveActive)
	}
	if _, ok := st.Branches[name]; !ok {
		return fmt.Errorf("delete branch %q: %w", name, ErrBranchNotFound)
	}

	delete(st.Branches, name)
	if err := r.SaveState(st); err != nil {
		return fmt.Errorf("delete branch %q: %w", name, err)
	}
	if err := r.removeReflog(name); err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	r.log().Debug("branch deleted", "branch", name)
	return nil
}

// ListBranches returns the branch table sorted by name.
func (r *Repo) ListBranches() ([]BranchInfo, error) {
	st, err := r.LoadState()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	out := make([]BranchInfo, 0, len(st.Branches))
	for _, name := range st.BranchNames() {
		out = append(out, BranchInfo{
			Name:   name,
			Tip:    st.Branches[name],
			Active: name == st.ActiveBranch,
		})
	}
	return out, nil
}

// CurrentBranch returns the active branch name.
func (r *Repo) CurrentBranch() (string, error) {
	st, err := r.LoadState()
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	return st.ActiveBranch, nil
}
