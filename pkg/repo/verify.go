package repo

import (
	"fmt"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
)

// SignatureVerifier checks a commit signature over its signing payload.
type SignatureVerifier func(payload []byte, signature string) error

// SignatureResult is the verification outcome of one signed commit.
type SignatureResult struct {
	Commit object.Hash
	Err    error
}

// VerifyReport combines object store verification with reference and
// signature checks.
type VerifyReport struct {
	Objects     *object.VerifyReport
	Problems    []string // branch table and HEAD problems
	Signed      []SignatureResult
	Unsigned    int
	Unreachable int // commits no branch reaches; kept, since nothing is collected
}

// OK reports whether no problem of any kind was found.
func (v *VerifyReport) OK() bool {
	if v.Objects != nil && !v.Objects.OK() {
		return false
	}
	if len(v.Problems) > 0 {
		return false
	}
	for _, s := range v.Signed {
		if s.Err != nil {
			return false
		}
	}
	return true
}

// Verify recomputes every object digest, checks that every branch tip and
// HEAD name stored commits, and checks signatures of signed commits with
// verifier. A nil verifier skips signature checks and counts signed
// commits as unverified.
func (r *Repo) Verify(verifier SignatureVerifier) (*VerifyReport, error) {
	objects, err := r.Store.Verify()
	if err != nil {
		return nil, err
	}
	report := &VerifyReport{Objects: objects}

	st, err := r.LoadState()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	var tips []object.Hash
	for _, name := range st.BranchNames() {
		tip := st.Branches[name]
		if !r.Store.Has(object.TypeCommit, tip) {
			report.Problems = append(report.Problems, fmt.Sprintf("branch %s points at missing commit %s", name, tip))
			continue
		}
		tips = append(tips, tip)
	}

	reachable, err := r.Store.Reachable(tips)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	all, err := r.Store.ListCommits()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	for _, h := range all {
		if _, ok := reachable.Commits[h]; !ok {
			report.Unreachable++
		}
		c, err := r.Store.ReadCommit(h)
		if err != nil {
			// Already reported by the object pass.
			continue
		}
		if strings.TrimSpace(c.Signature) == "" {
			report.Unsigned++
			continue
		}
		res := SignatureResult{Commit: h}
		if verifier == nil {
			res.Err = fmt.Errorf("no signature verifier configured")
		} else if err := verifier(object.CommitSigningPayload(c), c.Signature); err != nil {
			res.Err = err
		}
		report.Signed = append(report.Signed, res)
	}
	r.log().Debug("verify finished", "blobs", objects.Blobs, "commits", objects.Commits, "problems", len(objects.Problems)+len(report.Problems))
	return report, nil
}
