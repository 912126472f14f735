package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/gitlet/pkg/object"
)

// Init creates a new repository at path with the default configuration.
func Init(path string) (*Repo, error) {
	return InitWithConfig(path, nil)
}

// InitWithConfig creates a new repository at path. It creates the .gitlet/
// directory structure, writes the root commit, points the default branch
// at it and leaves both staging sets empty. It fails with ErrRepoExists if
// a .gitlet/ directory is already present.
func InitWithConfig(path string, cfg *Config) (*Repo, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	gitletDir := filepath.Join(abs, ControlDir)

	if _, err := os.Stat(gitletDir); err == nil {
		return nil, fmt.Errorf("init: %s: %w", abs, ErrRepoExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("init: %w", err)
	}

	dirs := []string{
		filepath.Join(gitletDir, "objects", "blobs"),
		filepath.Join(gitletDir, "objects", "commits"),
		filepath.Join(gitletDir, "refs", "heads"),
		filepath.Join(gitletDir, "logs", "refs", "heads"),
		filepath.Join(gitletDir, "staging"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	if err := WriteConfig(gitletDir, cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	r := newRepo(abs, gitletDir, cfg)
	root, err := r.Store.WriteCommit(object.NewRootCommit())
	if err != nil {
		return nil, fmt.Errorf("init: write root commit: %w", err)
	}

	branch := cfg.Core.DefaultBranch
	st := &State{
		ActiveBranch: branch,
		Branches:     map[string]object.Hash{},
	}
	st.ClearStaging()
	st.moveBranch(branch, root, "init")
	if err := r.SaveState(st); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	return r, nil
}

// Open searches upward from path for a .gitlet/ directory and opens the
// repository. It fails with ErrNotRepository if none is found.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gitletDir := filepath.Join(cur, ControlDir)
		info, err := os.Stat(gitletDir)
		if err == nil && info.IsDir() {
			cfg, err := ReadConfig(gitletDir)
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			return newRepo(cur, gitletDir, cfg), nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: %s: %w", abs, ErrNotRepository)
		}
		cur = parent
	}
}
