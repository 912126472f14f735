package repo

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/odvcencio/gitlet/pkg/object"
)

// MergeOutcome is the classification of one path in a three-way merge.
type MergeOutcome string

const (
	OutcomeKeep      MergeOutcome = "keep"       // active version stays
	OutcomeTakeOther MergeOutcome = "take-other" // other branch's version written and staged
	OutcomeRemove    MergeOutcome = "remove"     // deleted and staged for removal
	OutcomeConflict  MergeOutcome = "conflict"   // both versions written with markers
)

// FileMergeReport records the merge outcome for a single file.
type FileMergeReport struct {
	Path    string
	Outcome MergeOutcome
}

// MergeReport is the overall result of a repository-level merge.
type MergeReport struct {
	ActiveBranch string
	OtherBranch  string
	Base         object.Hash
	FastForward  bool
	Files        []FileMergeReport // paths whose outcome is not OutcomeKeep
	HasConflicts bool
	Conflicts    int
	MergeCommit  object.Hash // new tip: the merge commit, or the other tip on fast-forward
}

type mergeAction struct {
	path    string
	outcome MergeOutcome
	blob    object.Hash
	content []byte
	theirs  object.Hash // other side's blob, for conflicts
}

// Merge merges branch other into the active branch.
//
// All validation (self merge, unknown branch, staged changes, untracked
// files in the way) runs before any write. If other is already contained
// in the active branch, ErrAlreadyUpToDate is returned and nothing
// changes. If the active tip is an ancestor of other, the branch is
// fast-forwarded without a merge commit. Otherwise every path is
// classified against the merge base, the results are written and staged,
// and a two-parent merge commit is recorded. When any path conflicted the
// report is returned together with ErrMergeConflict; the commit exists.
func (r *Repo) Merge(other string) (*MergeReport, error) {
	// Validating.
	st, err := r.LoadState()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if other == st.ActiveBranch {
		return nil, fmt.Errorf("merge %q: %w", other, ErrSelfMerge)
	}
	otherTip, ok := st.Branches[other]
	if !ok {
		return nil, fmt.Errorf("merge %q: %w", other, ErrBranchNotFound)
	}
	if st.HasStagedChanges() {
		return nil, fmt.Errorf("merge %q: %w", other, ErrUncommittedChanges)
	}
	activeTip := st.Head
	activeCommit, err := r.Store.ReadCommit(activeTip)
	if err != nil {
		return nil, fmt.Errorf("merge: read head commit: %w", err)
	}
	otherCommit, err := r.Store.ReadCommit(otherTip)
	if err != nil {
		return nil, fmt.Errorf("merge: read branch commit: %w", err)
	}
	if err := r.checkUntracked(otherCommit.Tracked, activeCommit.Tracked, st.Additions); err != nil {
		return nil, fmt.Errorf("merge %q: %w", other, err)
	}

	// ComputingBase.
	base, err := r.MergeBase(activeTip, otherTip)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	report := &MergeReport{
		ActiveBranch: st.ActiveBranch,
		OtherBranch:  other,
		Base:         base,
	}
	if base == otherTip {
		return nil, fmt.Errorf("merge %q: %w", other, ErrAlreadyUpToDate)
	}
	if base == activeTip {
		if err := r.materialize(otherCommit.Tracked, activeCommit.Tracked, st.Additions); err != nil {
			return nil, fmt.Errorf("merge %q: fast-forward: %w", other, err)
		}
		st.moveBranch(st.ActiveBranch, otherTip, "merge "+other+": fast-forward")
		st.ClearStaging()
		if err := r.SaveState(st); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		report.FastForward = true
		report.MergeCommit = otherTip
		r.log().Debug("merge fast-forward", "branch", st.ActiveBranch, "to", otherTip)
		return report, nil
	}

	// Classifying.
	baseCommit, err := r.Store.ReadCommit(base)
	if err != nil {
		return nil, fmt.Errorf("merge: read base commit: %w", err)
	}
	actions, err := r.classifyMerge(baseCommit.Tracked, activeCommit.Tracked, otherCommit.Tracked, other)
	if err != nil {
		return nil, fmt.Errorf("merge %q: %w", other, err)
	}
	if err := r.checkConflictTargets(actions, activeCommit.Tracked); err != nil {
		return nil, fmt.Errorf("merge %q: %w", other, err)
	}

	// Applying.
	for _, a := range actions {
		if a.outcome == OutcomeConflict {
			if _, err := r.Store.WriteBlob(&object.Blob{Data: a.content}); err != nil {
				return nil, fmt.Errorf("merge: write conflict blob %q: %w", a.path, err)
			}
		}
	}
	for _, a := range actions {
		switch a.outcome {
		case OutcomeTakeOther, OutcomeConflict:
			if _, err := r.writeWorkingFile(a.path, a.content); err != nil {
				return nil, fmt.Errorf("merge: %w", err)
			}
			st.StageAddition(a.path, a.blob)
		case OutcomeRemove:
			if err := r.removeWorkingFile(a.path); err != nil {
				return nil, fmt.Errorf("merge: %w", err)
			}
			st.StageRemoval(a.path)
		}
		report.Files = append(report.Files, FileMergeReport{Path: a.path, Outcome: a.outcome})
		if a.outcome == OutcomeConflict {
			report.HasConflicts = true
			report.Conflicts++
		}
		r.log().Debug("merge path", "path", a.path, "outcome", a.outcome)
	}

	// Done.
	tracked := activeCommit.CloneTracked()
	for p, h := range st.Additions {
		tracked[p] = h
	}
	for p := range st.Removals {
		delete(tracked, p)
	}
	message := fmt.Sprintf("Merged %s into %s.", other, st.ActiveBranch)
	h, err := r.writeCommit(message, tracked, activeTip, otherTip)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	st.moveBranch(st.ActiveBranch, h, "merge "+other)
	st.ClearStaging()
	if err := r.SaveState(st); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	report.MergeCommit = h
	r.log().Debug("merge commit created", "commit", h, "base", base, "conflicts", report.Conflicts)

	if report.HasConflicts {
		return report, fmt.Errorf("merge %q: %d conflicted files: %w", other, report.Conflicts, ErrMergeConflict)
	}
	return report, nil
}

// classifyMerge decides the outcome of every path in the union of the
// three mappings and reads every blob the outcome needs. An absent path is
// treated as the empty digest, so deletion compares like any other change:
//
//	active == other           keep (includes identical changes on both sides)
//	active == base            take other's version, or remove if other deleted it
//	other  == base            keep active's version
//	otherwise                 conflict
//
// Paths whose outcome is keep are omitted from the result.
func (r *Repo) classifyMerge(base, active, other map[string]object.Hash, otherBranch string) ([]mergeAction, error) {
	union := make(map[string]struct{}, len(active)+len(other))
	for _, m := range []map[string]object.Hash{base, active, other} {
		for p := range m {
			union[p] = struct{}{}
		}
	}

	var actions []mergeAction
	for _, p := range slices.Sorted(maps.Keys(union)) {
		b, a, o := base[p], active[p], other[p]
		switch {
		case a == o:
			continue
		case a == b:
			if o == "" {
				actions = append(actions, mergeAction{path: p, outcome: OutcomeRemove})
				continue
			}
			data, err := r.readBlobData(o)
			if err != nil {
				return nil, fmt.Errorf("read %q from %s: %w", p, otherBranch, err)
			}
			actions = append(actions, mergeAction{path: p, outcome: OutcomeTakeOther, blob: o, content: data})
		case o == b:
			continue
		default:
			ours, err := r.readBlobData(a)
			if err != nil {
				return nil, fmt.Errorf("read %q from head: %w", p, err)
			}
			theirs, err := r.readBlobData(o)
			if err != nil {
				return nil, fmt.Errorf("read %q from %s: %w", p, otherBranch, err)
			}
			content := renderFileConflict(ours, theirs, otherBranch)
			actions = append(actions, mergeAction{
				path:    p,
				outcome: OutcomeConflict,
				blob:    object.HashBlob(content),
				content: content,
				theirs:  o,
			})
		}
	}
	return actions, nil
}

// checkConflictTargets refuses to write a conflict file over an untracked
// working file. As in checkUntracked, a file whose content equals the other
// side's version is not in the way; neither is one that already holds the
// conflict file.
func (r *Repo) checkConflictTargets(actions []mergeAction, active map[string]object.Hash) error {
	var offending []string
	for _, a := range actions {
		if a.outcome != OutcomeConflict {
			continue
		}
		if _, tracked := active[a.path]; tracked {
			continue
		}
		data, exists, err := r.readWorkingFile(a.path)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}
		if h := object.HashBlob(data); h == a.theirs || h == a.blob {
			continue
		}
		offending = append(offending, a.path)
	}
	if len(offending) > 0 {
		return &UntrackedError{Paths: offending}
	}
	return nil
}

// renderFileConflict writes both versions between markers. A missing side
// renders as empty content; a side without a trailing newline gets one.
func renderFileConflict(ours, theirs []byte, otherBranch string) []byte {
	var buf bytes.Buffer
	buf.WriteString("<<<<<<< HEAD\n")
	writeWithNewline(&buf, ours)
	buf.WriteString("=======\n")
	writeWithNewline(&buf, theirs)
	buf.WriteString(">>>>>>> " + otherBranch + "\n")
	return buf.Bytes()
}

func writeWithNewline(buf *bytes.Buffer, data []byte) {
	if len(data) == 0 {
		return
	}
	buf.Write(data)
	if data[len(data)-1] != '\n' {
		buf.WriteByte('\n')
	}
}

// readBlobData returns the content of blob h, or nil for the empty digest.
func (r *Repo) readBlobData(h object.Hash) ([]byte, error) {
	if h == "" {
		return nil, nil
	}
	blob, err := r.Store.ReadBlob(h)
	if err != nil {
		return nil, err
	}
	return blob.Data, nil
}
