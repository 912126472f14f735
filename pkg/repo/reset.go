package repo

import (
	"fmt"

	"github.com/odvcencio/gitlet/pkg/object"
)

// Reset moves the active branch tip and HEAD to the commit named by the
// full or abbreviated id, rewrites the work tree to it and clears staging.
// The untracked-file check runs before any write.
func (r *Repo) Reset(id string) (object.Hash, error) {
	target, err := r.ResolveCommit(id)
	if err != nil {
		return "", fmt.Errorf("reset: %w", err)
	}
	st, err := r.LoadState()
	if err != nil {
		return "", fmt.Errorf("reset: %w", err)
	}

	if err := r.switchWorkTree(st, target); err != nil {
		return "", fmt.Errorf("reset %s: %w", target.Short(DefaultAbbrev), err)
	}

	old := st.Head
	st.moveBranch(st.ActiveBranch, target, "reset: moving to "+string(target))
	st.ClearStaging()
	if err := r.SaveState(st); err != nil {
		return "", fmt.Errorf("reset: %w", err)
	}
	r.log().Debug("branch reset", "branch", st.ActiveBranch, "from", old, "to", target)
	return target, nil
}
