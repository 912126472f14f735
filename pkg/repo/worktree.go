package repo

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/odvcencio/gitlet/pkg/object"
)

// RelPath converts a path (absolute, or relative to the process working
// directory) into a slash-separated path relative to the repository root.
// Paths outside the work tree, inside the control directory, or containing
// a line break (commit headers are line-based) are rejected with
// ErrFileNotFound.
func (r *Repo) RelPath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("empty path: %w", ErrFileNotFound)
	}
	if strings.ContainsAny(p, "\n\r") {
		return "", fmt.Errorf("%q contains a line break: %w", p, ErrFileNotFound)
	}
	abs := p
	if !filepath.IsAbs(abs) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve %q: %w", p, err)
		}
		abs = filepath.Join(cwd, p)
		// A path that does not land inside the work tree from the process
		// directory is taken as repository-relative.
		if rel, err := filepath.Rel(r.RootDir, abs); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			abs = filepath.Join(r.RootDir, p)
		}
	}
	rel, err := filepath.Rel(r.RootDir, filepath.Clean(abs))
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", p, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%q is outside the repository: %w", p, ErrFileNotFound)
	}
	for _, name := range alwaysIgnored {
		if rel == name || strings.HasPrefix(rel, name+"/") {
			return "", fmt.Errorf("%q is inside %s: %w", p, name, ErrFileNotFound)
		}
	}
	return rel, nil
}

func (r *Repo) absPath(rel string) string {
	return filepath.Join(r.RootDir, filepath.FromSlash(rel))
}

// workingFiles returns every managed regular file in the work tree as a
// sorted list of repository-relative paths.
func (r *Repo) workingFiles() ([]string, error) {
	ic := NewIgnoreChecker(r.RootDir)
	var files []string
	err := filepath.WalkDir(r.RootDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if ic.IsIgnored(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk work tree: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// readWorkingFile returns the content of a work tree file, or nil and
// false when it does not exist as a regular file.
func (r *Repo) readWorkingFile(rel string) ([]byte, bool, error) {
	abs := r.absPath(rel)
	info, err := os.Lstat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("stat %q: %w", rel, err)
	}
	if !info.Mode().IsRegular() {
		return nil, false, nil
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, false, fmt.Errorf("read %q: %w", rel, err)
	}
	return data, true, nil
}

// checkUntracked fails with an *UntrackedError when switching the work
// tree from current to target would overwrite an untracked file: a managed
// working file that current does not track, that is not staged for
// addition, and that target tracks with different content. A file that
// sits where target needs a directory, or a directory of untracked files
// where target needs a file, also counts. Nothing is written.
func (r *Repo) checkUntracked(target, current, additions map[string]object.Hash) error {
	files, err := r.workingFiles()
	if err != nil {
		return err
	}
	untracked := make(map[string]bool)
	for _, p := range files {
		if _, ok := current[p]; ok {
			continue
		}
		if _, ok := additions[p]; ok {
			continue
		}
		untracked[p] = true
	}
	if len(untracked) == 0 {
		return nil
	}

	var offending []string
	for p := range untracked {
		want, ok := target[p]
		if ok {
			data, _, err := r.readWorkingFile(p)
			if err != nil {
				return err
			}
			if object.HashBlob(data) != want {
				offending = append(offending, p)
			}
			continue
		}
		// p is in the way of a directory target needs, or lives under a
		// directory that target replaces with a file.
		for dir := p; ; {
			i := strings.LastIndexByte(dir, '/')
			if i < 0 {
				break
			}
			dir = dir[:i]
			if _, ok := target[dir]; ok {
				offending = append(offending, p)
				break
			}
		}
	}
	for tp := range target {
		for dir := tp; ; {
			i := strings.LastIndexByte(dir, '/')
			if i < 0 {
				break
			}
			dir = dir[:i]
			if untracked[dir] {
				offending = append(offending, dir)
			}
		}
	}
	if len(offending) == 0 {
		return nil
	}
	sort.Strings(offending)
	return &UntrackedError{Paths: compactStrings(offending)}
}

func compactStrings(in []string) []string {
	out := in[:0]
	for i, s := range in {
		if i > 0 && s == in[i-1] {
			continue
		}
		out = append(out, s)
	}
	return out
}

// materialize rewrites the work tree from the files current tracks (plus
// staged additions) to the files target tracks. Every target blob is read
// before the first write; managed files absent from target are deleted and
// emptied directories pruned. Untracked files are left alone.
func (r *Repo) materialize(target, current, additions map[string]object.Hash) error {
	contents := make(map[string][]byte, len(target))
	for p, h := range target {
		blob, err := r.Store.ReadBlob(h)
		if err != nil {
			return fmt.Errorf("materialize: read blob for %q: %w", p, err)
		}
		contents[p] = blob.Data
	}

	var removed []string
	for _, set := range []map[string]object.Hash{current, additions} {
		for p := range set {
			if _, keep := target[p]; keep {
				continue
			}
			removed = append(removed, p)
		}
	}
	sort.Strings(removed)
	for _, p := range compactStrings(removed) {
		if err := r.removeWorkingFile(p); err != nil {
			return fmt.Errorf("materialize: %w", err)
		}
	}

	paths := make([]string, 0, len(contents))
	for p := range contents {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	written := 0
	for _, p := range paths {
		changed, err := r.writeWorkingFile(p, contents[p])
		if err != nil {
			return fmt.Errorf("materialize: %w", err)
		}
		if changed {
			written++
		}
	}
	r.log().Debug("work tree materialized", "files", len(paths), "written", written, "removed", len(removed))
	return nil
}

// restoreFile overwrites one work tree file with its version in commit h.
func (r *Repo) restoreFile(h object.Hash, path string) error {
	c, err := r.Store.ReadCommit(h)
	if err != nil {
		return fmt.Errorf("read commit %s: %w", h, err)
	}
	bh, ok := c.Tracked[path]
	if !ok {
		return fmt.Errorf("%q in %s: %w", path, h.Short(DefaultAbbrev), ErrFileNotInCommit)
	}
	blob, err := r.Store.ReadBlob(bh)
	if err != nil {
		return fmt.Errorf("read blob for %q: %w", path, err)
	}
	if _, err := r.writeWorkingFile(path, blob.Data); err != nil {
		return err
	}
	return nil
}

// writeWorkingFile writes data to rel, creating parent directories. It
// reports false when the file already held exactly data.
func (r *Repo) writeWorkingFile(rel string, data []byte) (bool, error) {
	existing, ok, err := r.readWorkingFile(rel)
	if err != nil {
		return false, err
	}
	if ok && bytes.Equal(existing, data) {
		return false, nil
	}
	abs := r.absPath(rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return false, fmt.Errorf("mkdir for %q: %w", rel, err)
	}
	if info, err := os.Lstat(abs); err == nil && info.IsDir() {
		if err := os.Remove(abs); err != nil {
			return false, fmt.Errorf("replace directory %q: %w", rel, err)
		}
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return false, fmt.Errorf("write %q: %w", rel, err)
	}
	return true, nil
}

func (r *Repo) removeWorkingFile(rel string) error {
	abs := r.absPath(rel)
	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		if info, statErr := os.Lstat(abs); statErr == nil && info.IsDir() {
			return nil
		}
		return fmt.Errorf("remove %q: %w", rel, err)
	}
	r.removeEmptyParents(filepath.Dir(abs))
	return nil
}

// removeEmptyParents removes empty directories up to (but not including)
// the repository root.
func (r *Repo) removeEmptyParents(dir string) {
	for {
		if dir == r.RootDir || !strings.HasPrefix(dir, r.RootDir+string(filepath.Separator)) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		os.Remove(dir)
		dir = filepath.Dir(dir)
	}
}
