package main

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/odvcencio/gitlet/pkg/object"
	"github.com/odvcencio/gitlet/pkg/repo"
	"golang.org/x/crypto/ssh"
)

func chdirForTest(t *testing.T, dir string) func() {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%s): %v", dir, err)
	}
	return func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore cwd %s: %v", wd, err)
		}
	}
}

// runGitlet runs the command line inside dir.
func runGitlet(t *testing.T, dir string, args ...string) (string, string, int) {
	t.Helper()
	restore := chdirForTest(t, dir)
	defer restore()

	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

// mustRun runs the command line and fails the test unless it exits 0.
func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	stdout, stderr, code := runGitlet(t, dir, args...)
	if code != 0 {
		t.Fatalf("gitlet %v exited %d\nstderr: %s", args, code, stderr)
	}
	return stdout
}

// expectFailure runs the command line and checks it exits 1 with msg as
// its only output line on stderr.
func expectFailure(t *testing.T, dir, msg string, args ...string) {
	t.Helper()
	stdout, stderr, code := runGitlet(t, dir, args...)
	if code != 1 {
		t.Fatalf("gitlet %v exited %d, want 1\nstdout: %s", args, code, stdout)
	}
	if stderr != msg+"\n" {
		t.Fatalf("gitlet %v stderr = %q, want %q", args, stderr, msg+"\n")
	}
}

func writeRepoFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

func readRepoFile(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", rel, err)
	}
	return string(data)
}

func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	mustRun(t, dir, "init", "--timezone", "UTC")
	return dir
}

func commitFile(t *testing.T, dir, rel, content, msg string) {
	t.Helper()
	writeRepoFile(t, dir, rel, content)
	mustRun(t, dir, "add", rel)
	mustRun(t, dir, "commit", msg)
}

func TestRun_NoCommand(t *testing.T) {
	expectFailure(t, t.TempDir(), "Please enter a command.")
}

func TestRun_UnknownCommand(t *testing.T) {
	expectFailure(t, t.TempDir(), "No command with that name exists.", "frobnicate")
}

func TestRun_NotInRepository(t *testing.T) {
	dir := t.TempDir()
	for _, args := range [][]string{{"status"}, {"log"}, {"add", "a.txt"}, {"branch", "x"}} {
		expectFailure(t, dir, "Not in an initialized Gitlet directory.", args...)
	}
}

func TestRun_IncorrectOperands(t *testing.T) {
	dir := initTestRepo(t)
	cases := [][]string{
		{"add"},
		{"commit"},
		{"commit", "a", "b"},
		{"rm-branch"},
		{"status", "extra"},
		{"checkout"},
		{"checkout", "a", "b"},
		{"checkout", "a", "b", "--", "c"},
		{"checkout", "--", "a", "b"},
		{"add", "--bogus", "a.txt"},
	}
	for _, args := range cases {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			expectFailure(t, dir, "Incorrect operands.", args...)
		})
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	out := mustRun(t, dir, "init")
	want := fmt.Sprintf("Initialized empty Gitlet repository in %s\n", filepath.Join(dir, repo.ControlDir)+string(filepath.Separator))
	if out != want {
		t.Errorf("init output = %q, want %q", out, want)
	}
	expectFailure(t, dir, "A Gitlet version-control system already exists in the current directory.", "init")
}

func TestCommitErrors(t *testing.T) {
	dir := initTestRepo(t)
	expectFailure(t, dir, "No changes added to the commit.", "commit", "nothing")
	writeRepoFile(t, dir, "a.txt", "a")
	mustRun(t, dir, "add", "a.txt")
	expectFailure(t, dir, "Please enter a commit message.", "commit", "")
	expectFailure(t, dir, "File does not exist.", "add", "missing.txt")
	expectFailure(t, dir, "No reason to remove the file.", "rm", "other.txt")
}

var logEntryPattern = regexp.MustCompile(`^===\ncommit [0-9a-f]{64}\nDate: [A-Z][a-z]{2} [A-Z][a-z]{2} \d{2} \d{2}:\d{2}:\d{2} \d{4} \+0000\nsecond\n\n` +
	`===\ncommit [0-9a-f]{64}\nDate: [A-Z][a-z]{2} [A-Z][a-z]{2} \d{2} \d{2}:\d{2}:\d{2} \d{4} \+0000\nfirst\n\n` +
	`===\ncommit [0-9a-f]{64}\nDate: Thu Jan 01 00:00:00 1970 \+0000\ninitial commit\n\n$`)

func TestLog(t *testing.T) {
	dir := initTestRepo(t)
	commitFile(t, dir, "a.txt", "1", "first")
	commitFile(t, dir, "a.txt", "2", "second")

	out := mustRun(t, dir, "log")
	if !logEntryPattern.MatchString(out) {
		t.Fatalf("log output does not match:\n%s", out)
	}

	oneline := mustRun(t, dir, "log", "--oneline", "-n", "2")
	lines := strings.Split(strings.TrimSpace(oneline), "\n")
	if len(lines) != 2 || !strings.HasSuffix(lines[0], " second") || len(strings.Fields(lines[0])[0]) != repo.DefaultAbbrev {
		t.Errorf("log --oneline = %q", oneline)
	}
}

func TestLog_MergeLine(t *testing.T) {
	dir := initTestRepo(t)
	commitFile(t, dir, "a.txt", "a", "base")
	mustRun(t, dir, "branch", "other")
	commitFile(t, dir, "b.txt", "b", "on master")
	mustRun(t, dir, "checkout", "other")
	commitFile(t, dir, "c.txt", "c", "on other")
	mustRun(t, dir, "checkout", "master")
	mustRun(t, dir, "merge", "other")

	out := mustRun(t, dir, "log")
	merge := regexp.MustCompile(`^===\ncommit [0-9a-f]{64}\nMerge: [0-9a-f]{7} [0-9a-f]{7}\nDate: .+\nMerged other into master\.\n\n`)
	if !merge.MatchString(out) {
		t.Fatalf("log output lacks merge header:\n%s", out)
	}
	if got := readRepoFile(t, dir, "c.txt"); got != "c" {
		t.Errorf("c.txt = %q after merge", got)
	}
}

func TestGlobalLogAndFind(t *testing.T) {
	dir := initTestRepo(t)
	commitFile(t, dir, "a.txt", "1", "same message")
	mustRun(t, dir, "branch", "side")
	commitFile(t, dir, "a.txt", "2", "same message")

	global := mustRun(t, dir, "global-log")
	if n := strings.Count(global, "===\n"); n != 3 {
		t.Errorf("global-log shows %d commits, want 3", n)
	}

	found := strings.Fields(mustRun(t, dir, "find", "same message"))
	if len(found) != 2 {
		t.Fatalf("find returned %v, want two ids", found)
	}
	expectFailure(t, dir, "Found no commit with that message.", "find", "nope")
}

func TestStatusOutput(t *testing.T) {
	dir := initTestRepo(t)
	commitFile(t, dir, "tracked.txt", "t", "base")
	mustRun(t, dir, "branch", "other")
	writeRepoFile(t, dir, "staged.txt", "s")
	mustRun(t, dir, "add", "staged.txt")
	mustRun(t, dir, "rm", "tracked.txt")
	writeRepoFile(t, dir, "junk.txt", "j")

	want := "=== Branches ===\n*master\nother\n\n" +
		"=== Staged Files ===\nstaged.txt\n\n" +
		"=== Removed Files ===\ntracked.txt\n\n" +
		"=== Modifications Not Staged For Commit ===\n\n" +
		"=== Untracked Files ===\njunk.txt\n\n"
	if got := mustRun(t, dir, "status"); got != want {
		t.Errorf("status output:\n%s\nwant:\n%s", got, want)
	}

	writeRepoFile(t, dir, "staged.txt", "changed")
	got := mustRun(t, dir, "status")
	if !strings.Contains(got, "=== Modifications Not Staged For Commit ===\nstaged.txt (modified)\n\n") {
		t.Errorf("status does not list the modification:\n%s", got)
	}
}

func TestCheckoutForms(t *testing.T) {
	dir := initTestRepo(t)
	commitFile(t, dir, "a.txt", "old", "old")
	old := strings.Fields(mustRun(t, dir, "find", "old"))[0]
	commitFile(t, dir, "a.txt", "new", "new")

	writeRepoFile(t, dir, "a.txt", "scribble")
	mustRun(t, dir, "checkout", "--", "a.txt")
	if got := readRepoFile(t, dir, "a.txt"); got != "new" {
		t.Errorf("checkout -- a.txt gave %q, want new", got)
	}

	mustRun(t, dir, "checkout", old[:8], "--", "a.txt")
	if got := readRepoFile(t, dir, "a.txt"); got != "old" {
		t.Errorf("checkout <commit> -- a.txt gave %q, want old", got)
	}

	expectFailure(t, dir, "File does not exist in that commit.", "checkout", "--", "none.txt")
	expectFailure(t, dir, "No commit with that id exists.", "checkout", "0000000", "--", "a.txt")
	expectFailure(t, dir, "No such branch exists.", "checkout", "nope")
	expectFailure(t, dir, "No need to checkout the current branch.", "checkout", "master")
}

// A blob missing from the store is reported as such, not as an unknown
// commit id.
func TestCheckout_MissingBlobReportsStoreError(t *testing.T) {
	dir := initTestRepo(t)
	commitFile(t, dir, "a.txt", "content", "add a")
	blob := filepath.Join(dir, repo.ControlDir, "objects", "blobs", string(object.HashBlob([]byte("content"))))
	if err := os.Remove(blob); err != nil {
		t.Fatalf("Remove(%s): %v", blob, err)
	}

	_, stderr, code := runGitlet(t, dir, "checkout", "--", "a.txt")
	if code != 1 {
		t.Fatalf("checkout exited %d, want 1", code)
	}
	if strings.Contains(stderr, "No commit with that id exists.") || !strings.Contains(stderr, object.ErrNotFound.Error()) {
		t.Errorf("stderr = %q, want the object store error", stderr)
	}
}

func TestCheckout_UntrackedInTheWay(t *testing.T) {
	dir := initTestRepo(t)
	mustRun(t, dir, "branch", "other")
	mustRun(t, dir, "checkout", "other")
	commitFile(t, dir, "f.txt", "theirs", "add f")
	mustRun(t, dir, "checkout", "master")

	writeRepoFile(t, dir, "f.txt", "mine")
	expectFailure(t, dir, "There is an untracked file in the way; delete it, or add and commit it first.", "checkout", "other")
	if got := readRepoFile(t, dir, "f.txt"); got != "mine" {
		t.Errorf("f.txt = %q, want it untouched", got)
	}
}

func TestBranchCommands(t *testing.T) {
	dir := initTestRepo(t)
	mustRun(t, dir, "branch", "topic")
	expectFailure(t, dir, "A branch with that name already exists.", "branch", "topic")
	expectFailure(t, dir, "Invalid branch name.", "branch", "bad:name")

	list := mustRun(t, dir, "branch")
	lines := strings.Split(strings.TrimSpace(list), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "* master ") || !strings.HasPrefix(lines[1], "  topic ") {
		t.Errorf("branch list = %q", list)
	}

	expectFailure(t, dir, "Cannot remove the current branch.", "rm-branch", "master")
	expectFailure(t, dir, "A branch with that name does not exist.", "rm-branch", "nope")
	mustRun(t, dir, "rm-branch", "topic")
	if list := mustRun(t, dir, "branch"); strings.Contains(list, "topic") {
		t.Errorf("topic still listed: %q", list)
	}
}

func TestReset(t *testing.T) {
	dir := initTestRepo(t)
	commitFile(t, dir, "a.txt", "1", "one")
	first := strings.Fields(mustRun(t, dir, "find", "one"))[0]
	commitFile(t, dir, "a.txt", "2", "two")

	mustRun(t, dir, "reset", first)
	if got := readRepoFile(t, dir, "a.txt"); got != "1" {
		t.Errorf("a.txt = %q after reset, want 1", got)
	}
	expectFailure(t, dir, "No commit with that id exists.", "reset", "abcdef0")
}

func TestMerge_Conflict(t *testing.T) {
	dir := initTestRepo(t)
	commitFile(t, dir, "f.txt", "base\n", "base")
	mustRun(t, dir, "branch", "other")
	commitFile(t, dir, "f.txt", "ours\n", "ours")
	mustRun(t, dir, "checkout", "other")
	commitFile(t, dir, "f.txt", "theirs\n", "theirs")
	mustRun(t, dir, "checkout", "master")

	stdout, stderr, code := runGitlet(t, dir, "merge", "other")
	if code != 0 {
		t.Fatalf("merge exited %d, stderr %q", code, stderr)
	}
	if stdout != "Encountered a merge conflict.\n" {
		t.Errorf("merge stdout = %q", stdout)
	}
	want := "<<<<<<< HEAD\nours\n=======\ntheirs\n>>>>>>> other\n"
	if got := readRepoFile(t, dir, "f.txt"); got != want {
		t.Errorf("f.txt = %q, want %q", got, want)
	}
}

func TestMerge_Preconditions(t *testing.T) {
	dir := initTestRepo(t)
	commitFile(t, dir, "a.txt", "a", "base")
	mustRun(t, dir, "branch", "behind")

	expectFailure(t, dir, "Cannot merge a branch with itself.", "merge", "master")
	expectFailure(t, dir, "A branch with that name does not exist.", "merge", "nope")
	expectFailure(t, dir, "Given branch is an ancestor of the current branch.", "merge", "behind")

	writeRepoFile(t, dir, "b.txt", "b")
	mustRun(t, dir, "add", "b.txt")
	expectFailure(t, dir, "You have uncommitted changes.", "merge", "behind")
}

func TestMerge_FastForward(t *testing.T) {
	dir := initTestRepo(t)
	mustRun(t, dir, "branch", "ahead")
	mustRun(t, dir, "checkout", "ahead")
	commitFile(t, dir, "a.txt", "a", "ahead")
	mustRun(t, dir, "checkout", "master")

	if out := mustRun(t, dir, "merge", "ahead"); out != "Current branch fast-forwarded.\n" {
		t.Errorf("merge output = %q", out)
	}
	if got := readRepoFile(t, dir, "a.txt"); got != "a" {
		t.Errorf("a.txt = %q", got)
	}
}

func TestReflogCmd(t *testing.T) {
	dir := initTestRepo(t)
	commitFile(t, dir, "a.txt", "a", "hello world")

	out := mustRun(t, dir, "reflog")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("reflog lines = %q", out)
	}
	if !strings.HasSuffix(lines[0], " master commit: hello world") || !strings.HasSuffix(lines[1], " master init") {
		t.Errorf("reflog = %q", out)
	}
	if out := mustRun(t, dir, "reflog", "--limit", "1"); strings.Count(out, "\n") != 1 {
		t.Errorf("reflog --limit 1 = %q", out)
	}
}

func TestDiffCmd(t *testing.T) {
	dir := initTestRepo(t)
	commitFile(t, dir, "a.txt", "one\ntwo\n", "base")
	writeRepoFile(t, dir, "a.txt", "one\nTWO\n")

	out := mustRun(t, dir, "diff")
	for _, want := range []string{"--- a/a.txt\n", "+++ b/a.txt\n", "-two\n", "+TWO\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("diff output missing %q:\n%s", want, out)
		}
	}
	stat := mustRun(t, dir, "diff", "--stat")
	if stat != "a.txt | +1 -1 (modified)\n" {
		t.Errorf("diff --stat = %q", stat)
	}
}

func writeTestSigningKey(t *testing.T, dir string) (string, ssh.PublicKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "")
	if err != nil {
		t.Fatalf("MarshalPrivateKey: %v", err)
	}
	path := filepath.Join(dir, "id_ed25519")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("NewPublicKey: %v", err)
	}
	return path, sshPub
}

func TestSignAndVerify(t *testing.T) {
	dir := initTestRepo(t)
	keyDir := t.TempDir()
	keyPath, pub := writeTestSigningKey(t, keyDir)

	writeRepoFile(t, dir, "a.txt", "a")
	mustRun(t, dir, "add", "a.txt")
	mustRun(t, dir, "commit", "--sign", "--key", keyPath, "signed")

	out := mustRun(t, dir, "verify")
	if !strings.Contains(out, "1 signed, 1 unsigned, 0 unreachable") {
		t.Errorf("verify output = %q", out)
	}

	trusted := filepath.Join(keyDir, "trusted")
	if err := os.WriteFile(trusted, ssh.MarshalAuthorizedKey(pub), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", trusted, err)
	}
	mustRun(t, dir, "verify", "--trusted-keys", trusted)

	_, otherPub := writeTestSigningKey(t, t.TempDir())
	if err := os.WriteFile(trusted, ssh.MarshalAuthorizedKey(otherPub), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", trusted, err)
	}
	stdout, stderr, code := runGitlet(t, dir, "verify", "--trusted-keys", trusted)
	if code != 1 || stderr != "verification failed\n" || !strings.Contains(stdout, "is not trusted") {
		t.Errorf("verify with untrusted key: code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}
}

func TestSSHSignatureVerifier_RejectsTampering(t *testing.T) {
	keyPath, _ := writeTestSigningKey(t, t.TempDir())
	signer, _, err := newSSHCommitSigner(keyPath)
	if err != nil {
		t.Fatalf("newSSHCommitSigner: %v", err)
	}
	sig, err := signer([]byte("payload"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	verify := newSSHSignatureVerifier(nil)
	if err := verify([]byte("payload"), sig); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := verify([]byte("tampered"), sig); err == nil {
		t.Error("tampered payload verified")
	}
	if err := verify([]byte("payload"), "pgp:abc"); err == nil {
		t.Error("foreign signature format accepted")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("add \"x\": %w", repo.ErrFileNotFound), "File does not exist."},
		{fmt.Errorf("checkout: %w", repo.ErrFileNotInCommit), "File does not exist in that commit."},
		{&repo.UntrackedError{Paths: []string{"a"}}, "There is an untracked file in the way; delete it, or add and commit it first."},
		{fmt.Errorf("reset: %w", &repo.UnknownCommitError{ID: "abc"}), "No commit with that id exists."},
		{fmt.Errorf("checkout: read blob: %w", repo.ErrObjectNotFound), "checkout: read blob: object not found"},
		{branchNotFound(fmt.Errorf("x: %w", repo.ErrBranchNotFound), "custom"), "custom"},
		{errors.New("unknown command \"x\" for \"gitlet\""), "No command with that name exists."},
		{errors.New("disk on fire"), "disk on fire"},
	}
	for _, tc := range tests {
		if got := userMessage(tc.err); got != tc.want {
			t.Errorf("userMessage(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
