package object

import (
	"maps"
	"slices"
	"time"
)

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeCommit ObjectType = "commit"
)

// Root commit constants. Every repository starts from the same root.
const (
	RootMessage  = "initial commit"
	RootTimezone = "+0000"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// CommitObj is an immutable snapshot of the tracked-file mapping plus
// metadata. Parents holds zero (root), one, or two (merge) digests; for a
// merge the first parent is the branch merged into.
type CommitObj struct {
	Message   string
	Timestamp int64  // unix seconds
	Timezone  string // "+hhmm" / "-hhmm" offset the commit was made in
	Parents   []Hash
	Tracked   map[string]Hash // path -> blob digest
	Signature string
}

// NewRootCommit returns the universal root commit: no parents, nothing
// tracked, timestamped at the Unix epoch.
func NewRootCommit() *CommitObj {
	return &CommitObj{
		Message:   RootMessage,
		Timestamp: 0,
		Timezone:  RootTimezone,
		Tracked:   map[string]Hash{},
	}
}

// Time returns the commit timestamp in the zone it was recorded in.
func (c *CommitObj) Time() time.Time {
	t := time.Unix(c.Timestamp, 0)
	offset, ok := parseZoneOffset(c.Timezone)
	if !ok {
		return t.UTC()
	}
	return t.In(time.FixedZone("", offset))
}

// IsMerge reports whether c has two parents.
func (c *CommitObj) IsMerge() bool {
	return len(c.Parents) > 1
}

// FirstParent returns the first parent digest, or "" for the root.
func (c *CommitObj) FirstParent() Hash {
	if len(c.Parents) == 0 {
		return ""
	}
	return c.Parents[0]
}

// CloneTracked returns a copy of the tracked mapping that is safe to mutate.
func (c *CommitObj) CloneTracked() map[string]Hash {
	out := make(map[string]Hash, len(c.Tracked))
	maps.Copy(out, c.Tracked)
	return out
}

// TrackedPaths returns the tracked paths in sorted order.
func (c *CommitObj) TrackedPaths() []string {
	return slices.Sorted(maps.Keys(c.Tracked))
}

// FormatZoneOffset renders the UTC offset of t as "+hhmm".
func FormatZoneOffset(t time.Time) string {
	return t.Format("-0700")
}

func parseZoneOffset(s string) (int, bool) {
	if len(s) != 5 || (s[0] != '+' && s[0] != '-') {
		return 0, false
	}
	n := 0
	for _, ch := range s[1:] {
		if ch < '0' || ch > '9' {
			return 0, false
		}
		n = n*10 + int(ch-'0')
	}
	secs := (n/100)*3600 + (n%100)*60
	if s[0] == '-' {
		secs = -secs
	}
	return secs, true
}
