// Package diff computes line-level differences between two revisions of a
// file.
package diff

import (
	"bytes"

	"github.com/pmezard/go-difflib/difflib"
)

// ChangeType classifies what happened to a file between two revisions.
type ChangeType int

const (
	Added    ChangeType = iota // File exists only in the after revision.
	Removed                    // File exists only in the before revision.
	Modified                   // File exists in both revisions with different content.
)

func (c ChangeType) String() string {
	switch c {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "modified"
	}
}

// FileDiff holds the line-level diff for a single file.
type FileDiff struct {
	Path     string
	Type     ChangeType
	Before   []string // lines of the before revision, newline-terminated
	After    []string
	Inserted int
	Deleted  int
}

// DiffFiles compares two revisions of the file at path. A nil side means
// the file is absent in that revision. It returns nil when both revisions
// are byte-identical.
func DiffFiles(path string, before, after []byte) *FileDiff {
	if before != nil && after != nil && bytes.Equal(before, after) {
		return nil
	}
	if before == nil && after == nil {
		return nil
	}

	fd := &FileDiff{
		Path:   path,
		Type:   Modified,
		Before: splitLines(before),
		After:  splitLines(after),
	}
	switch {
	case before == nil:
		fd.Type = Added
	case after == nil:
		fd.Type = Removed
	}

	matcher := difflib.NewMatcher(fd.Before, fd.After)
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'd':
			fd.Deleted += op.I2 - op.I1
		case 'i':
			fd.Inserted += op.J2 - op.J1
		case 'r':
			fd.Deleted += op.I2 - op.I1
			fd.Inserted += op.J2 - op.J1
		}
	}
	return fd
}

// splitLines splits data into newline-terminated lines. A final line
// without a newline gets one, so that unified output stays line-aligned.
func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	lines := difflib.SplitLines(string(data))
	// SplitLines appends a trailing "\n" element for newline-terminated input.
	if n := len(lines); n > 0 && lines[n-1] == "\n" && bytes.HasSuffix(data, []byte("\n")) {
		lines = lines[:n-1]
	}
	return lines
}
