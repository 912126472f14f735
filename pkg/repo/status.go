package repo

import (
	"fmt"
	"sort"

	"github.com/odvcencio/gitlet/pkg/object"
)

// ChangeKind classifies an unstaged modification.
type ChangeKind string

const (
	ChangeModified ChangeKind = "modified"
	ChangeDeleted  ChangeKind = "deleted"
)

// UnstagedChange is a work tree difference not yet staged for commit.
type UnstagedChange struct {
	Path string
	Kind ChangeKind
}

// Status summarizes the branch table, staging area and work tree. Every
// list is sorted.
type Status struct {
	ActiveBranch string
	Branches     []string
	Staged       []string
	Removed      []string
	Unstaged     []UnstagedChange
	Untracked    []string
}

// Status computes the repository status.
//
// A file is modified-but-unstaged when it is tracked at HEAD and changed
// in the work tree without being staged, or staged for addition with
// different work tree content. It is deleted-but-unstaged when it is
// staged for addition, or tracked and not staged for removal, and missing
// from the work tree. A file is untracked when it is present in the work
// tree but neither tracked nor staged for addition, or staged for removal
// and re-created.
func (r *Repo) Status() (*Status, error) {
	st, err := r.LoadState()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	head, err := r.Store.ReadCommit(st.Head)
	if err != nil {
		return nil, fmt.Errorf("status: read head commit: %w", err)
	}
	files, err := r.workingFiles()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	work := make(map[string]object.Hash, len(files))
	for _, p := range files {
		data, ok, err := r.readWorkingFile(p)
		if err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
		if ok {
			work[p] = object.HashBlob(data)
		}
	}

	out := &Status{
		ActiveBranch: st.ActiveBranch,
		Branches:     st.BranchNames(),
		Staged:       st.AdditionPaths(),
		Removed:      st.RemovalPaths(),
	}

	for p, staged := range st.Additions {
		wh, ok := work[p]
		switch {
		case !ok:
			out.Unstaged = append(out.Unstaged, UnstagedChange{Path: p, Kind: ChangeDeleted})
		case wh != staged:
			out.Unstaged = append(out.Unstaged, UnstagedChange{Path: p, Kind: ChangeModified})
		}
	}
	for p, tracked := range head.Tracked {
		if _, staged := st.Additions[p]; staged {
			continue
		}
		if _, removed := st.Removals[p]; removed {
			continue
		}
		wh, ok := work[p]
		switch {
		case !ok:
			out.Unstaged = append(out.Unstaged, UnstagedChange{Path: p, Kind: ChangeDeleted})
		case wh != tracked:
			out.Unstaged = append(out.Unstaged, UnstagedChange{Path: p, Kind: ChangeModified})
		}
	}
	sort.Slice(out.Unstaged, func(i, j int) bool { return out.Unstaged[i].Path < out.Unstaged[j].Path })

	for _, p := range files {
		_, tracked := head.Tracked[p]
		_, staged := st.Additions[p]
		_, removed := st.Removals[p]
		if (!tracked && !staged) || removed {
			out.Untracked = append(out.Untracked, p)
		}
	}
	return out, nil
}
