package diff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of unchanged lines shown around each hunk.
const DefaultContext = 3

// FormatUnified renders d as a unified diff:
//
//	--- a/path
//	+++ b/path
//	@@ -1,2 +1,2 @@
//	-old line
//	+new line
//
// An added file is shown against /dev/null, and so is a removed one.
func FormatUnified(d *FileDiff, context int) (string, error) {
	if d == nil {
		return "", nil
	}
	if context < 0 {
		context = DefaultContext
	}
	from, to := "a/"+d.Path, "b/"+d.Path
	switch d.Type {
	case Added:
		from = "/dev/null"
	case Removed:
		to = "/dev/null"
	}
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        d.Before,
		B:        d.After,
		FromFile: from,
		ToFile:   to,
		Context:  context,
	})
	if err != nil {
		return "", fmt.Errorf("format diff %s: %w", d.Path, err)
	}
	return out, nil
}

// FormatStat renders a one-line-per-file summary:
//
//	path | +3 -1 (modified)
func FormatStat(diffs []*FileDiff) string {
	width := 0
	for _, d := range diffs {
		if d != nil && len(d.Path) > width {
			width = len(d.Path)
		}
	}
	var b strings.Builder
	for _, d := range diffs {
		if d == nil {
			continue
		}
		fmt.Fprintf(&b, "%-*s | +%d -%d (%s)\n", width, d.Path, d.Inserted, d.Deleted, d.Type)
	}
	return b.String()
}
