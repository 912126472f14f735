package repo

import (
	"fmt"
	"maps"
	"slices"

	"github.com/odvcencio/gitlet/pkg/diff"
	"github.com/odvcencio/gitlet/pkg/object"
)

// Diff compares HEAD with the work tree. It covers files tracked at HEAD
// and files staged for addition; paths, when given, restrict the result.
// Files with no change are omitted.
func (r *Repo) Diff(paths ...string) ([]*diff.FileDiff, error) {
	st, err := r.LoadState()
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	head, err := r.Store.ReadCommit(st.Head)
	if err != nil {
		return nil, fmt.Errorf("diff: read head commit: %w", err)
	}

	candidates := make(map[string]object.Hash, len(head.Tracked)+len(st.Additions))
	maps.Copy(candidates, head.Tracked)
	for p := range st.Additions {
		if _, ok := candidates[p]; !ok {
			candidates[p] = ""
		}
	}
	if len(paths) > 0 {
		filter := make(map[string]bool, len(paths))
		for _, p := range paths {
			rel, err := r.RelPath(p)
			if err != nil {
				return nil, fmt.Errorf("diff: %w", err)
			}
			filter[rel] = true
		}
		for p := range candidates {
			if !filter[p] {
				delete(candidates, p)
			}
		}
	}

	var out []*diff.FileDiff
	for _, p := range slices.Sorted(maps.Keys(candidates)) {
		before, err := r.readBlobData(candidates[p])
		if err != nil {
			return nil, fmt.Errorf("diff: read %q at head: %w", p, err)
		}
		if candidates[p] != "" && before == nil {
			before = []byte{}
		}
		after, ok, err := r.readWorkingFile(p)
		if err != nil {
			return nil, fmt.Errorf("diff: %w", err)
		}
		if ok && after == nil {
			after = []byte{}
		}
		if d := diff.DiffFiles(p, before, after); d != nil {
			out = append(out, d)
		}
	}
	return out, nil
}
