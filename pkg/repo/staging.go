package repo

import (
	"fmt"

	"github.com/odvcencio/gitlet/pkg/object"
)

// Add stages the file at path for the next commit.
//
// If the active tip already tracks byte-identical content, the path is
// dropped from both staging sets instead; staging a file back to its
// committed state therefore cancels an earlier stage. Otherwise the
// content is stored as a blob and recorded as a staged addition, which
// also cancels a staged removal of the same path.
func (r *Repo) Add(path string) error {
	rel, err := r.RelPath(path)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	data, ok, err := r.readWorkingFile(rel)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	if !ok {
		return fmt.Errorf("add %q: %w", rel, ErrFileNotFound)
	}

	st, err := r.LoadState()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	tip, err := r.Store.ReadCommit(st.Head)
	if err != nil {
		return fmt.Errorf("add: read head commit: %w", err)
	}

	h := object.HashBlob(data)
	if tracked, ok := tip.Tracked[rel]; ok && tracked == h {
		st.Unstage(rel)
		r.log().Debug("add: content matches head, unstaged", "path", rel)
	} else {
		if _, err := r.Store.WriteBlob(&object.Blob{Data: data}); err != nil {
			return fmt.Errorf("add: write blob %q: %w", rel, err)
		}
		st.StageAddition(rel, h)
		r.log().Debug("add: staged", "path", rel, "blob", h)
	}

	if err := r.SaveState(st); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// Remove unstages path if it is staged for addition, and if the active tip
// tracks it, stages its removal and deletes the working file. A path that
// is neither staged nor tracked fails with ErrNothingToRemove.
func (r *Repo) Remove(path string) error {
	rel, err := r.RelPath(path)
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	st, err := r.LoadState()
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	tip, err := r.Store.ReadCommit(st.Head)
	if err != nil {
		return fmt.Errorf("rm: read head commit: %w", err)
	}

	_, staged := st.Additions[rel]
	_, tracked := tip.Tracked[rel]
	if !staged && !tracked {
		return fmt.Errorf("rm %q: %w", rel, ErrNothingToRemove)
	}

	if staged {
		delete(st.Additions, rel)
	}
	if tracked {
		st.StageRemoval(rel)
	}
	if err := r.SaveState(st); err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	if tracked {
		if err := r.removeWorkingFile(rel); err != nil {
			return fmt.Errorf("rm: %w", err)
		}
	}
	r.log().Debug("rm", "path", rel, "unstaged", staged, "removal_staged", tracked)
	return nil
}
