package repo

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
)

var errNoCommonAncestor = errors.New("no common ancestor")

// ResolveCommit expands a full or abbreviated commit digest. An exact
// match wins; otherwise every stored commit digest is scanned by prefix.
// No match yields an *UnknownCommitError (matching ErrObjectNotFound) and
// more than one yields ErrAmbiguousIdentifier.
func (r *Repo) ResolveCommit(id string) (object.Hash, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return "", &UnknownCommitError{ID: id}
	}
	if object.ValidHash(object.Hash(id)) {
		if r.Store.Has(object.TypeCommit, object.Hash(id)) {
			return object.Hash(id), nil
		}
		return "", &UnknownCommitError{ID: id}
	}

	all, err := r.Store.ListCommits()
	if err != nil {
		return "", fmt.Errorf("resolve commit %s: %w", id, err)
	}
	var matches []object.Hash
	for _, h := range all {
		if strings.HasPrefix(string(h), id) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return "", &UnknownCommitError{ID: id}
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("resolve commit %s: %d candidates: %w", id, len(matches), ErrAmbiguousIdentifier)
	}
}

// Ancestors lazily walks the commit DAG breadth-first from h over every
// parent edge, first parents enqueued first. h itself is yielded first and
// every commit is yielded once. A read failure is yielded as the final
// element.
func (r *Repo) Ancestors(h object.Hash) iter.Seq2[object.Hash, error] {
	return func(yield func(object.Hash, error) bool) {
		arena := newCommitArena(r.Store)
		limit := graphTraversalLimit()
		seen := map[object.Hash]struct{}{h: {}}
		queue := []object.Hash{h}
		steps := 0
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			steps++
			if steps > limit {
				yield("", graphStepsLimitError("ancestors", limit))
				return
			}
			c, err := arena.get(cur)
			if err != nil {
				yield("", fmt.Errorf("ancestors: %w", err))
				return
			}
			if !yield(cur, nil) {
				return
			}
			for _, p := range c.Parents {
				if _, ok := seen[p]; ok {
					continue
				}
				seen[p] = struct{}{}
				queue = append(queue, p)
			}
		}
	}
}

// IsAncestor reports whether ancestor is reachable from descendant. A
// commit is its own ancestor.
func (r *Repo) IsAncestor(ancestor, descendant object.Hash) (bool, error) {
	for h, err := range r.Ancestors(descendant) {
		if err != nil {
			return false, err
		}
		if h == ancestor {
			return true, nil
		}
	}
	return false, nil
}

// MergeBase returns the nearest common ancestor of a and b.
//
// Candidates are the common ancestors first reached by a breadth-first walk
// from b. Candidates that are ancestors of another candidate are dropped.
// Among the rest the one with the smallest distance sum from a and b wins,
// then the one closest to b, then the smallest digest.
func (r *Repo) MergeBase(a, b object.Hash) (object.Hash, error) {
	arena := newCommitArena(r.Store)
	if a == b {
		if _, err := arena.get(a); err != nil {
			return "", fmt.Errorf("merge base: %w", err)
		}
		return a, nil
	}

	distA, err := arena.distances("merge base", a)
	if err != nil {
		return "", err
	}
	if _, ok := distA[b]; ok {
		return b, nil
	}

	distB, candidates, err := commonFrontier(arena, b, distA)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("merge base %s %s: %w", a.Short(DefaultAbbrev), b.Short(DefaultAbbrev), errNoCommonAncestor)
	}

	best, err := bestCandidates(arena, candidates)
	if err != nil {
		return "", err
	}
	sort.Slice(best, func(i, j int) bool {
		si := distA[best[i]] + distB[best[i]]
		sj := distA[best[j]] + distB[best[j]]
		if si != sj {
			return si < sj
		}
		if distB[best[i]] != distB[best[j]] {
			return distB[best[i]] < distB[best[j]]
		}
		return best[i] < best[j]
	})
	r.log().Debug("merge base computed", "a", a, "b", b, "base", best[0], "candidates", len(candidates))
	return best[0], nil
}

// commonFrontier walks breadth-first from start and stops at commits that
// appear in inA, returning the distance of every visited commit and the
// common commits reached.
func commonFrontier(arena *commitArena, start object.Hash, inA map[object.Hash]int) (map[object.Hash]int, []object.Hash, error) {
	limit := graphTraversalLimit()
	dist := map[object.Hash]int{start: 0}
	queue := []graphQueueItem{{hash: start}}
	var found []object.Hash
	steps := 0
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		steps++
		if steps > limit {
			return nil, nil, graphStepsLimitError("merge base", limit)
		}
		if _, common := inA[item.hash]; common {
			found = append(found, item.hash)
			continue
		}
		c, err := arena.get(item.hash)
		if err != nil {
			return nil, nil, fmt.Errorf("merge base: %w", err)
		}
		for _, p := range c.Parents {
			if _, seen := dist[p]; seen {
				continue
			}
			dist[p] = item.dist + 1
			queue = append(queue, graphQueueItem{hash: p, dist: item.dist + 1})
		}
	}
	return dist, found, nil
}

// bestCandidates drops every candidate that is a proper ancestor of another.
func bestCandidates(arena *commitArena, candidates []object.Hash) ([]object.Hash, error) {
	if len(candidates) == 1 {
		return candidates, nil
	}
	dominated := make(map[object.Hash]bool, len(candidates))
	for _, c := range candidates {
		if dominated[c] {
			continue
		}
		reach, err := arena.distances("merge base", c)
		if err != nil {
			return nil, err
		}
		for _, other := range candidates {
			if other == c {
				continue
			}
			if _, ok := reach[other]; ok {
				dominated[other] = true
			}
		}
	}
	out := make([]object.Hash, 0, len(candidates))
	for _, c := range candidates {
		if !dominated[c] {
			out = append(out, c)
		}
	}
	return out, nil
}
