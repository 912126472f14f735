package repo

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
)

// zeroHash stands in for the old tip of a branch that did not exist yet.
const zeroHash = "0000000000000000000000000000000000000000000000000000000000000000"

// ReflogEntry is one recorded movement of a branch tip. On disk each entry
// is a line "<old> <new> <unix seconds> <reason>".
type ReflogEntry struct {
	Branch    string
	OldHash   object.Hash
	NewHash   object.Hash
	Timestamp int64
	Reason    string
}

func (r *Repo) reflogPath(branch string) string {
	return filepath.Join(r.GitletDir, "logs", "refs", "heads", branch)
}

func orZeroHash(h object.Hash) object.Hash {
	if strings.TrimSpace(string(h)) == "" {
		return zeroHash
	}
	return h
}

func (r *Repo) appendReflog(u reflogUpdate) error {
	reason := strings.Join(strings.Fields(u.reason), " ")
	if reason == "" {
		reason = "update"
	}
	line := fmt.Sprintf("%s %s %d %s\n", orZeroHash(u.old), orZeroHash(u.new), r.now().Unix(), reason)

	path := r.reflogPath(u.branch)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("reflog %q: %w", u.branch, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reflog %q: %w", u.branch, err)
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("reflog %q: %w", u.branch, err)
	}
	return f.Close()
}

// parseReflogLine decodes one reflog line; malformed lines report false.
func parseReflogLine(branch, line string) (ReflogEntry, bool) {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 4)
	if len(fields) != 4 {
		return ReflogEntry{}, false
	}
	ts, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return ReflogEntry{}, false
	}
	return ReflogEntry{
		Branch:    branch,
		OldHash:   object.Hash(fields[0]),
		NewHash:   object.Hash(fields[1]),
		Timestamp: ts,
		Reason:    fields[3],
	}, true
}

// ReadReflog returns the reflog of branch, newest first. An empty branch
// name means the active branch. limit <= 0 returns every entry. A branch
// without a reflog yields no entries and no error.
func (r *Repo) ReadReflog(branch string, limit int) ([]ReflogEntry, error) {
	if branch == "" {
		st, err := r.LoadState()
		if err != nil {
			return nil, fmt.Errorf("reflog: %w", err)
		}
		branch = st.ActiveBranch
	}
	if err := ValidateBranchName(branch); err != nil {
		return nil, fmt.Errorf("reflog: %w", err)
	}

	f, err := os.Open(r.reflogPath(branch))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reflog %q: %w", branch, err)
	}
	defer f.Close()

	var entries []ReflogEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if e, ok := parseReflogLine(branch, sc.Text()); ok {
			entries = append(entries, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reflog %q: %w", branch, err)
	}

	slices.Reverse(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *Repo) removeReflog(branch string) error {
	if err := os.Remove(r.reflogPath(branch)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove reflog %q: %w", branch, err)
	}
	return nil
}
