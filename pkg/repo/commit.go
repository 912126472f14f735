package repo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
)

// LogEntry pairs a commit with its digest.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// Commit records a new commit on the active branch: the tip's tracked
// mapping with staged additions overlaid and staged removals dropped. The
// branch tip and HEAD move to it and staging is cleared.
func (r *Repo) Commit(message string) (object.Hash, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("commit: %w", ErrEmptyMessage)
	}
	st, err := r.LoadState()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if !st.HasStagedChanges() {
		return "", fmt.Errorf("commit: %w", ErrNoChanges)
	}

	parent, err := r.Store.ReadCommit(st.Head)
	if err != nil {
		return "", fmt.Errorf("commit: read head commit: %w", err)
	}
	tracked := parent.CloneTracked()
	for p, h := range st.Additions {
		tracked[p] = h
	}
	for p := range st.Removals {
		delete(tracked, p)
	}

	h, err := r.writeCommit(message, tracked, st.Head)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	st.moveBranch(st.ActiveBranch, h, "commit: "+firstLine(message))
	st.ClearStaging()
	if err := r.SaveState(st); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	r.log().Debug("commit created", "commit", h, "branch", st.ActiveBranch, "files", len(tracked))
	return h, nil
}

// writeCommit builds, signs when a signer is configured, and stores a
// commit timestamped now.
func (r *Repo) writeCommit(message string, tracked map[string]object.Hash, parents ...object.Hash) (object.Hash, error) {
	now := r.commitTime()
	c := &object.CommitObj{
		Message:   message,
		Timestamp: now.Unix(),
		Timezone:  object.FormatZoneOffset(now),
		Parents:   parents,
		Tracked:   tracked,
	}
	if r.Signer != nil {
		signature, err := r.Signer(object.CommitSigningPayload(c))
		if err != nil {
			return "", fmt.Errorf("sign commit: %w", err)
		}
		c.Signature = signature
	}
	h, err := r.Store.WriteCommit(c)
	if err != nil {
		return "", fmt.Errorf("write commit: %w", err)
	}
	return h, nil
}

// Log walks first-parent history from HEAD back to the root commit.
func (r *Repo) Log() ([]LogEntry, error) {
	st, err := r.LoadState()
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	return r.LogFrom(st.Head)
}

// LogFrom walks first-parent history from start back to the root commit.
func (r *Repo) LogFrom(start object.Hash) ([]LogEntry, error) {
	arena := newCommitArena(r.Store)
	limit := graphTraversalLimit()
	var entries []LogEntry
	for cur := start; cur != ""; {
		if len(entries) >= limit {
			return nil, graphStepsLimitError("log", limit)
		}
		c, err := arena.get(cur)
		if err != nil {
			return nil, fmt.Errorf("log: %w", err)
		}
		entries = append(entries, LogEntry{Hash: cur, Commit: c})
		cur = c.FirstParent()
	}
	return entries, nil
}

// GlobalLog returns every commit ever made, newest first. Commits with the
// same timestamp are ordered by digest.
func (r *Repo) GlobalLog() ([]LogEntry, error) {
	all, err := r.Store.ListCommits()
	if err != nil {
		return nil, fmt.Errorf("global log: %w", err)
	}
	entries := make([]LogEntry, 0, len(all))
	for _, h := range all {
		c, err := r.Store.ReadCommit(h)
		if err != nil {
			return nil, fmt.Errorf("global log: %w", err)
		}
		entries = append(entries, LogEntry{Hash: h, Commit: c})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Commit.Timestamp != entries[j].Commit.Timestamp {
			return entries[i].Commit.Timestamp > entries[j].Commit.Timestamp
		}
		return entries[i].Hash < entries[j].Hash
	})
	return entries, nil
}

// Find returns the digests of every commit whose message is exactly
// message, in digest order. No match fails with ErrNoMatchingCommit.
func (r *Repo) Find(message string) ([]object.Hash, error) {
	all, err := r.Store.ListCommits()
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	var out []object.Hash
	for _, h := range all {
		c, err := r.Store.ReadCommit(h)
		if err != nil {
			return nil, fmt.Errorf("find: %w", err)
		}
		if c.Message == message {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("find %q: %w", message, ErrNoMatchingCommit)
	}
	return out, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
