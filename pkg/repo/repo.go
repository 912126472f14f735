package repo

import (
	"log/slog"
	"time"

	"github.com/odvcencio/gitlet/pkg/object"
)

// ControlDir is the name of the directory holding all repository state.
const ControlDir = ".gitlet"

// Repo represents an opened gitlet repository. Mutable state (branches,
// HEAD, staging) is not cached here: every operation loads a fresh State
// and persists it before returning.
type Repo struct {
	RootDir   string        // working directory root
	GitletDir string        // .gitlet/ directory
	Store     *object.Store // content-addressed object store
	Config    *Config

	// Logger receives debug-level records of state transitions. It
	// discards everything unless the caller replaces it.
	Logger *slog.Logger

	// Signer, when set, signs every new commit.
	Signer CommitSigner

	now func() time.Time
}

// CommitSigner signs canonical commit payload bytes and returns an encoded
// signature string to be persisted in CommitObj.Signature.
type CommitSigner func(payload []byte) (string, error)

func newRepo(root, gitletDir string, cfg *Config) *Repo {
	return &Repo{
		RootDir:   root,
		GitletDir: gitletDir,
		Store:     object.NewStore(gitletDir),
		Config:    cfg,
		Logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
	}
}

// SetClock replaces the time source used for commit and reflog timestamps.
func (r *Repo) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	r.now = now
}

// commitTime returns the current time in the configured commit timezone.
func (r *Repo) commitTime() time.Time {
	t := r.now()
	if loc, err := r.Config.Location(); err == nil {
		t = t.In(loc)
	}
	return t
}

func (r *Repo) log() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
