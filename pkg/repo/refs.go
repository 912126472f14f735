package repo

import (
	"fmt"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
)

// ValidateBranchName rejects names that cannot be stored as a single file
// under refs/heads/ or that would be confused with command syntax.
func ValidateBranchName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty name", ErrInvalidBranchName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidBranchName, name)
	case strings.HasPrefix(name, "-"), strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q must not start with %q", ErrInvalidBranchName, name, name[:1])
	case strings.ContainsAny(name, "/\\ \t\r\n\x00:~^?*["):
		return fmt.Errorf("%w: %q contains a reserved character", ErrInvalidBranchName, name)
	}
	return nil
}

// BranchTip returns the commit the named branch points at.
func (r *Repo) BranchTip(name string) (object.Hash, error) {
	st, err := r.LoadState()
	if err != nil {
		return "", fmt.Errorf("branch tip: %w", err)
	}
	tip, ok := st.Branches[name]
	if !ok {
		return "", fmt.Errorf("branch tip %q: %w", name, ErrBranchNotFound)
	}
	return tip, nil
}
