package object

import (
	"fmt"
	"sort"
)

// VerifyProblem describes one object that failed verification.
type VerifyProblem struct {
	Type   ObjectType
	Hash   Hash
	Reason string
}

// VerifyReport summarizes a full store verification.
type VerifyReport struct {
	Blobs    int
	Commits  int
	Problems []VerifyProblem
}

// OK reports whether no problems were found.
func (r *VerifyReport) OK() bool {
	return len(r.Problems) == 0
}

// Verify recomputes the digest of every stored object and checks that
// every commit's references (parents and tracked blobs) are present.
func (s *Store) Verify() (*VerifyReport, error) {
	report := &VerifyReport{}

	blobs, err := s.ListBlobs()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	for _, h := range blobs {
		report.Blobs++
		data, err := s.Read(TypeBlob, h)
		if err != nil {
			report.add(TypeBlob, h, err.Error())
			continue
		}
		if got := HashBlob(data); got != h {
			report.add(TypeBlob, h, fmt.Sprintf("digest mismatch: content hashes to %s", got))
		}
	}

	commits, err := s.ListCommits()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	for _, h := range commits {
		report.Commits++
		c, err := s.ReadCommit(h)
		if err != nil {
			report.add(TypeCommit, h, err.Error())
			continue
		}
		if got := HashCommit(c); got != h {
			report.add(TypeCommit, h, fmt.Sprintf("digest mismatch: content hashes to %s", got))
		}
		for _, ref := range referencedHashes(c) {
			if !s.Has(ref.objType, ref.hash) {
				report.add(TypeCommit, h, fmt.Sprintf("missing %s %s", ref.objType, ref.hash))
			}
		}
	}

	sort.SliceStable(report.Problems, func(i, j int) bool {
		if report.Problems[i].Type != report.Problems[j].Type {
			return report.Problems[i].Type < report.Problems[j].Type
		}
		return report.Problems[i].Hash < report.Problems[j].Hash
	})
	return report, nil
}

func (r *VerifyReport) add(objType ObjectType, h Hash, reason string) {
	r.Problems = append(r.Problems, VerifyProblem{Type: objType, Hash: h, Reason: reason})
}
