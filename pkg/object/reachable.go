package object

import (
	"fmt"
	"sort"
	"strings"
)

// ReachableSet holds the commits and blobs reachable from a set of roots.
type ReachableSet struct {
	Commits map[Hash]struct{}
	Blobs   map[Hash]struct{}
}

// Reachable returns every commit and blob reachable from the root commits
// by following parent links and tracked-file references. Missing roots are
// ignored; a missing parent or blob stops that branch of the walk.
func (s *Store) Reachable(roots []Hash) (*ReachableSet, error) {
	roots = uniqueNormalizedHashes(roots)
	out := &ReachableSet{
		Commits: make(map[Hash]struct{}, len(roots)),
		Blobs:   make(map[Hash]struct{}),
	}

	stack := make([]Hash, 0, len(roots))
	stack = append(stack, roots...)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := out.Commits[h]; ok {
			continue
		}
		if !s.Has(TypeCommit, h) {
			continue
		}
		out.Commits[h] = struct{}{}

		c, err := s.ReadCommit(h)
		if err != nil {
			return nil, fmt.Errorf("reachable set read %s: %w", h, err)
		}
		for _, ref := range referencedHashes(c) {
			switch ref.objType {
			case TypeCommit:
				stack = append(stack, ref.hash)
			case TypeBlob:
				if s.Has(TypeBlob, ref.hash) {
					out.Blobs[ref.hash] = struct{}{}
				}
			}
		}
	}
	return out, nil
}

type objectRef struct {
	objType ObjectType
	hash    Hash
}

func referencedHashes(c *CommitObj) []objectRef {
	refs := make([]objectRef, 0, len(c.Parents)+len(c.Tracked))
	for _, p := range c.Parents {
		refs = append(refs, objectRef{objType: TypeCommit, hash: p})
	}
	for _, p := range c.TrackedPaths() {
		refs = append(refs, objectRef{objType: TypeBlob, hash: c.Tracked[p]})
	}
	return refs
}

func uniqueNormalizedHashes(in []Hash) []Hash {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[Hash]struct{}, len(in))
	out := make([]Hash, 0, len(in))
	for _, h := range in {
		h = Hash(strings.TrimSpace(string(h)))
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
