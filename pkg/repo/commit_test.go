package repo

import (
	"errors"
	"testing"

	"github.com/odvcencio/gitlet/pkg/object"
)

// Test 1: Commit snapshots staged files on top of the parent and clears staging.
func TestCommit_Basic(t *testing.T) {
	r := newTestRepo(t)
	root := mustState(t, r).Head
	writeFile(t, r, "a.txt", "a")
	writeFile(t, r, "b.txt", "b")

	h := addAndCommit(t, r, "first", "a.txt", "b.txt")

	c, err := r.Store.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if c.Message != "first" {
		t.Errorf("Message = %q, want first", c.Message)
	}
	if len(c.Parents) != 1 || c.Parents[0] != root {
		t.Errorf("Parents = %v, want [%s]", c.Parents, root)
	}
	if len(c.Tracked) != 2 || c.Tracked["a.txt"] != object.HashBlob([]byte("a")) {
		t.Errorf("Tracked = %v", c.Tracked)
	}
	if c.Timestamp == 0 {
		t.Error("Timestamp not set")
	}

	st := mustState(t, r)
	if st.Head != h || st.Branches[DefaultBranch] != h {
		t.Errorf("HEAD/tip = %s/%s, want %s", st.Head, st.Branches[DefaultBranch], h)
	}
	if st.HasStagedChanges() {
		t.Error("staging not cleared after commit")
	}
}

// Test 2: unchanged files are inherited from the parent.
func TestCommit_InheritsParentFiles(t *testing.T) {
	r := newTestRepo(t)
	writeFile(t, r, "a.txt", "a")
	first := addAndCommit(t, r, "first", "a.txt")
	writeFile(t, r, "b.txt", "b")
	second := addAndCommit(t, r, "second", "b.txt")

	c1, _ := r.Store.ReadCommit(first)
	c2, err := r.Store.ReadCommit(second)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if c2.Tracked["a.txt"] != c1.Tracked["a.txt"] {
		t.Errorf("a.txt digest changed: %s -> %s", c1.Tracked["a.txt"], c2.Tracked["a.txt"])
	}
	if _, ok := c2.Tracked["b.txt"]; !ok {
		t.Error("b.txt missing from second commit")
	}
}

func TestCommit_EmptyMessage(t *testing.T) {
	r := newTestRepo(t)
	writeFile(t, r, "a.txt", "a")
	if err := r.Add("a.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	for _, msg := range []string{"", "   \n"} {
		if _, err := r.Commit(msg); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("Commit(%q) error = %v, want ErrEmptyMessage", msg, err)
		}
	}
	if !mustState(t, r).HasStagedChanges() {
		t.Error("failed commit cleared staging")
	}
}

func TestCommit_NoChanges(t *testing.T) {
	r := newTestRepo(t)
	before := mustState(t, r).Head
	if _, err := r.Commit("nothing"); !errors.Is(err, ErrNoChanges) {
		t.Fatalf("Commit error = %v, want ErrNoChanges", err)
	}
	if after := mustState(t, r).Head; after != before {
		t.Errorf("HEAD moved from %s to %s", before, after)
	}
}

// Test 3: the working file is read at add time, not at commit time.
func TestCommit_UsesStagedContent(t *testing.T) {
	r := newTestRepo(t)
	writeFile(t, r, "a.txt", "staged")
	if err := r.Add("a.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	writeFile(t, r, "a.txt", "edited later")
	h, err := r.Commit("snapshot")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	c, _ := r.Store.ReadCommit(h)
	if c.Tracked["a.txt"] != object.HashBlob([]byte("staged")) {
		t.Error("commit recorded work tree content instead of staged content")
	}
}

func TestCommit_Signer(t *testing.T) {
	r := newTestRepo(t)
	var signed []byte
	r.Signer = func(payload []byte) (string, error) {
		signed = payload
		return "sig-1", nil
	}
	writeFile(t, r, "a.txt", "a")
	h := addAndCommit(t, r, "signed", "a.txt")

	c, err := r.Store.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if c.Signature != "sig-1" {
		t.Errorf("Signature = %q, want sig-1", c.Signature)
	}
	if string(signed) != string(object.CommitSigningPayload(c)) {
		t.Error("signer did not receive the commit signing payload")
	}
}

func TestCommit_SignerError(t *testing.T) {
	r := newTestRepo(t)
	r.Signer = func([]byte) (string, error) { return "", errors.New("no key") }
	writeFile(t, r, "a.txt", "a")
	if err := r.Add("a.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	before := mustState(t, r).Head
	if _, err := r.Commit("signed"); err == nil {
		t.Fatal("Commit should fail when signing fails")
	}
	if mustState(t, r).Head != before {
		t.Error("HEAD moved after failed signing")
	}
}

// Test 4: Log walks first parents back to the root.
func TestLog_FirstParentChain(t *testing.T) {
	r := newTestRepo(t)
	root := mustState(t, r).Head
	writeFile(t, r, "a.txt", "1")
	c1 := addAndCommit(t, r, "one", "a.txt")
	writeFile(t, r, "a.txt", "2")
	c2 := addAndCommit(t, r, "two", "a.txt")

	entries, err := r.Log()
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	want := []object.Hash{c2, c1, root}
	if len(entries) != len(want) {
		t.Fatalf("Log returned %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.Hash != want[i] {
			t.Errorf("entry %d = %s, want %s", i, e.Hash, want[i])
		}
	}
	if entries[2].Commit.Message != object.RootMessage {
		t.Errorf("last entry message = %q, want root", entries[2].Commit.Message)
	}
}

func TestLog_StepLimit(t *testing.T) {
	r := newTestRepo(t)
	for _, v := range []string{"1", "2", "3"} {
		writeFile(t, r, "a.txt", v)
		addAndCommit(t, r, "c"+v, "a.txt")
	}
	setGraphTraversalLimitForTest(t, 2)
	if _, err := r.Log(); err == nil {
		t.Fatal("Log should fail past the traversal limit")
	}
}

// Test 5: GlobalLog lists every commit, including ones no branch reaches.
func TestGlobalLog_IncludesUnreachable(t *testing.T) {
	r := newTestRepo(t)
	writeFile(t, r, "a.txt", "1")
	c1 := addAndCommit(t, r, "one", "a.txt")
	writeFile(t, r, "a.txt", "2")
	c2 := addAndCommit(t, r, "two", "a.txt")
	if _, err := r.Reset(string(c1)); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	entries, err := r.GlobalLog()
	if err != nil {
		t.Fatalf("GlobalLog: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("GlobalLog returned %d entries, want 3", len(entries))
	}
	if entries[0].Hash != c2 || entries[1].Hash != c1 {
		t.Errorf("GlobalLog order = %s, %s; want newest first %s, %s", entries[0].Hash, entries[1].Hash, c2, c1)
	}
}

func TestFind(t *testing.T) {
	r := newTestRepo(t)
	writeFile(t, r, "a.txt", "1")
	c1 := addAndCommit(t, r, "same", "a.txt")
	writeFile(t, r, "a.txt", "2")
	c2 := addAndCommit(t, r, "same", "a.txt")
	writeFile(t, r, "a.txt", "3")
	addAndCommit(t, r, "different", "a.txt")

	got, err := r.Find("same")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Find returned %v, want two commits", got)
	}
	want := map[object.Hash]bool{c1: true, c2: true}
	for _, h := range got {
		if !want[h] {
			t.Errorf("unexpected commit %s", h)
		}
	}
	if got[0] > got[1] {
		t.Error("Find results not in digest order")
	}

	if _, err := r.Find("missing"); !errors.Is(err, ErrNoMatchingCommit) {
		t.Fatalf("Find(missing) error = %v, want ErrNoMatchingCommit", err)
	}
	if _, err := r.Find("initial commit"); err != nil {
		t.Fatalf("Find(initial commit): %v", err)
	}
}
