package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
)

// State is the repository's mutable state: the branch table, the active
// branch, HEAD and the staging area. It is loaded at the start of an
// operation and persisted in full at its end.
//
// Invariants: Branches[ActiveBranch] == Head, and the keys of Additions
// and Removals are disjoint.
type State struct {
	ActiveBranch string
	Head         object.Hash
	Branches     map[string]object.Hash
	Additions    map[string]object.Hash
	Removals     map[string]struct{}

	reflog []reflogUpdate
}

type reflogUpdate struct {
	branch   string
	old, new object.Hash
	reason   string
}

// Tip returns the active branch tip.
func (s *State) Tip() object.Hash {
	return s.Branches[s.ActiveBranch]
}

// HasStagedChanges reports whether either staging set is non-empty.
func (s *State) HasStagedChanges() bool {
	return len(s.Additions) > 0 || len(s.Removals) > 0
}

// ClearStaging empties both staging sets.
func (s *State) ClearStaging() {
	s.Additions = make(map[string]object.Hash)
	s.Removals = make(map[string]struct{})
}

// StageAddition records path as added with blob h.
func (s *State) StageAddition(path string, h object.Hash) {
	delete(s.Removals, path)
	s.Additions[path] = h
}

// StageRemoval records path as removed.
func (s *State) StageRemoval(path string) {
	delete(s.Additions, path)
	s.Removals[path] = struct{}{}
}

// Unstage drops path from both staging sets.
func (s *State) Unstage(path string) {
	delete(s.Additions, path)
	delete(s.Removals, path)
}

// RemovalPaths returns the staged removals in sorted order.
func (s *State) RemovalPaths() []string {
	return slices.Sorted(maps.Keys(s.Removals))
}

// AdditionPaths returns the staged additions in sorted order.
func (s *State) AdditionPaths() []string {
	return slices.Sorted(maps.Keys(s.Additions))
}

// BranchNames returns all branch names in sorted order.
func (s *State) BranchNames() []string {
	return slices.Sorted(maps.Keys(s.Branches))
}

// moveBranch points branch at h, keeps HEAD in sync when branch is active,
// and queues a reflog entry written by SaveState.
func (s *State) moveBranch(branch string, h object.Hash, reason string) {
	old := s.Branches[branch]
	s.Branches[branch] = h
	if branch == s.ActiveBranch {
		s.Head = h
	}
	if old != h {
		s.reflog = append(s.reflog, reflogUpdate{branch: branch, old: old, new: h, reason: reason})
	}
}

// switchTo makes branch active and moves HEAD to its tip.
func (s *State) switchTo(branch string) {
	s.ActiveBranch = branch
	s.Head = s.Branches[branch]
}

func (r *Repo) headsDir() string {
	return filepath.Join(r.GitletDir, "refs", "heads")
}

func (r *Repo) stagingDir() string {
	return filepath.Join(r.GitletDir, "staging")
}

// LoadState reads the full repository state from .gitlet/.
func (r *Repo) LoadState() (*State, error) {
	st := &State{
		Branches:  make(map[string]object.Hash),
		Additions: make(map[string]object.Hash),
		Removals:  make(map[string]struct{}),
	}

	active, err := readTrimmed(filepath.Join(r.GitletDir, "ACTIVE"))
	if err != nil {
		return nil, fmt.Errorf("load state: active branch: %w", err)
	}
	head, err := readTrimmed(filepath.Join(r.GitletDir, "HEAD"))
	if err != nil {
		return nil, fmt.Errorf("load state: head: %w", err)
	}
	st.ActiveBranch = active
	st.Head = object.Hash(head)

	entries, err := os.ReadDir(r.headsDir())
	if err != nil {
		return nil, fmt.Errorf("load state: branches: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		tip, err := readTrimmed(filepath.Join(r.headsDir(), e.Name()))
		if err != nil {
			return nil, fmt.Errorf("load state: branch %q: %w", e.Name(), err)
		}
		st.Branches[e.Name()] = object.Hash(tip)
	}

	tip, ok := st.Branches[st.ActiveBranch]
	if !ok {
		return nil, fmt.Errorf("load state: active branch %q has no tip", st.ActiveBranch)
	}
	if tip != st.Head {
		return nil, fmt.Errorf("load state: HEAD %s does not match tip of %q (%s)", st.Head, st.ActiveBranch, tip)
	}

	if err := readJSON(filepath.Join(r.stagingDir(), "additions.json"), &st.Additions); err != nil {
		return nil, fmt.Errorf("load state: staged additions: %w", err)
	}
	if st.Additions == nil {
		st.Additions = make(map[string]object.Hash)
	}
	var removals []string
	if err := readJSON(filepath.Join(r.stagingDir(), "removals.json"), &removals); err != nil {
		return nil, fmt.Errorf("load state: staged removals: %w", err)
	}
	for _, p := range removals {
		if _, dup := st.Additions[p]; dup {
			return nil, fmt.Errorf("load state: %q staged for both addition and removal", p)
		}
		st.Removals[p] = struct{}{}
	}
	return st, nil
}

// SaveState persists st in full. Each file is replaced atomically; the set
// of files as a whole is not.
func (r *Repo) SaveState(st *State) error {
	if st.Branches[st.ActiveBranch] != st.Head {
		return fmt.Errorf("save state: HEAD %s does not match tip of %q", st.Head, st.ActiveBranch)
	}

	if err := os.MkdirAll(r.headsDir(), 0o755); err != nil {
		return fmt.Errorf("save state: mkdir: %w", err)
	}
	for _, name := range st.BranchNames() {
		if err := writeFileAtomic(filepath.Join(r.headsDir(), name), []byte(string(st.Branches[name])+"\n")); err != nil {
			return fmt.Errorf("save state: branch %q: %w", name, err)
		}
	}
	entries, err := os.ReadDir(r.headsDir())
	if err != nil {
		return fmt.Errorf("save state: branches: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if _, ok := st.Branches[e.Name()]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(r.headsDir(), e.Name())); err != nil {
			return fmt.Errorf("save state: delete branch %q: %w", e.Name(), err)
		}
	}

	if err := writeFileAtomic(filepath.Join(r.GitletDir, "HEAD"), []byte(string(st.Head)+"\n")); err != nil {
		return fmt.Errorf("save state: head: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(r.GitletDir, "ACTIVE"), []byte(st.ActiveBranch+"\n")); err != nil {
		return fmt.Errorf("save state: active branch: %w", err)
	}

	if err := os.MkdirAll(r.stagingDir(), 0o755); err != nil {
		return fmt.Errorf("save state: mkdir: %w", err)
	}
	if err := writeJSON(filepath.Join(r.stagingDir(), "additions.json"), st.Additions); err != nil {
		return fmt.Errorf("save state: staged additions: %w", err)
	}
	removals := st.RemovalPaths()
	if removals == nil {
		removals = []string{}
	}
	if err := writeJSON(filepath.Join(r.stagingDir(), "removals.json"), removals); err != nil {
		return fmt.Errorf("save state: staged removals: %w", err)
	}

	for _, u := range st.reflog {
		if err := r.appendReflog(u); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}
	st.reflog = nil
	return nil
}

func readTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// readJSON decodes path into v. A missing file leaves v untouched.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
