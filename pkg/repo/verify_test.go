package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestVerify_CleanRepo(t *testing.T) {
	r := newTestRepo(t)
	writeFile(t, r, "a.txt", "a")
	addAndCommit(t, r, "one", "a.txt")

	report, err := r.Verify(nil)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !report.OK() {
		t.Fatalf("report not OK: %+v %+v", report.Objects, report.Problems)
	}
	if report.Unsigned != 2 || len(report.Signed) != 0 {
		t.Errorf("Unsigned/Signed = %d/%d, want 2/0", report.Unsigned, len(report.Signed))
	}
}

func TestVerify_CountsUnreachable(t *testing.T) {
	r := newTestRepo(t)
	root := mustState(t, r).Head
	writeFile(t, r, "a.txt", "a")
	addAndCommit(t, r, "one", "a.txt")
	if _, err := r.Reset(string(root)); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	report, err := r.Verify(nil)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if report.Unreachable != 1 {
		t.Errorf("Unreachable = %d, want 1", report.Unreachable)
	}
	if !report.OK() {
		t.Error("unreachable commits should not fail verification")
	}
}

func TestVerify_DetectsCorruptBlob(t *testing.T) {
	r := newTestRepo(t)
	writeFile(t, r, "a.txt", "a")
	addAndCommit(t, r, "one", "a.txt")

	blobs, err := r.Store.ListBlobs()
	if err != nil || len(blobs) != 1 {
		t.Fatalf("ListBlobs = %v, %v", blobs, err)
	}
	path := filepath.Join(r.GitletDir, "objects", "blobs", string(blobs[0]))
	if err := os.WriteFile(path, []byte("blob 1\x00b"), 0o644); err != nil {
		t.Fatalf("corrupt blob: %v", err)
	}

	report, err := r.Verify(nil)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if report.OK() || len(report.Objects.Problems) == 0 {
		t.Fatalf("corruption not detected: %+v", report.Objects)
	}
}

func TestVerify_Signatures(t *testing.T) {
	r := newTestRepo(t)
	r.Signer = func(payload []byte) (string, error) { return "good", nil }
	writeFile(t, r, "a.txt", "a")
	addAndCommit(t, r, "signed", "a.txt")

	verifier := func(payload []byte, signature string) error {
		if signature != "good" {
			return errors.New("bad signature")
		}
		return nil
	}
	report, err := r.Verify(verifier)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(report.Signed) != 1 || report.Signed[0].Err != nil || !report.OK() {
		t.Fatalf("Signed = %+v", report.Signed)
	}

	report, err = r.Verify(nil)
	if err != nil {
		t.Fatalf("Verify(nil): %v", err)
	}
	if report.OK() {
		t.Error("signed commit without a verifier should not verify")
	}
}
