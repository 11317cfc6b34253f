package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GitWorkspace is a Workspace backed by a local git working tree.
type GitWorkspace struct {
	root   string
	runner CommandRunner
}

// NewGitWorkspace creates a workspace rooted at the given directory.
func NewGitWorkspace(root string, runner CommandRunner) *GitWorkspace {
	if runner == nil {
		runner = NewRunner()
	}
	return &GitWorkspace{root: root, runner: runner}
}

// Root returns the workspace root directory.
func (w *GitWorkspace) Root() string {
	return w.root
}

// WriteFile writes content to a workspace-relative path.
func (w *GitWorkspace) WriteFile(path string, content []byte) error {
	abs := filepath.Join(w.root, path)
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Errorf("create directories for %s: %w", path, err)
	}
	if err := os.WriteFile(abs, content, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadFile reads a workspace-relative path.
func (w *GitWorkspace) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(w.root, path))
}

// ExecCommand runs a shell command inside the workspace.
func (w *GitWorkspace) ExecCommand(ctx context.Context, command string) ([]byte, error) {
	return w.runner.RunShell(ctx, w.root, command)
}

// CreateBranch creates and checks out a branch (git checkout -b). If the
// branch already exists it is checked out instead, so re-triggered wave
// cycles stay idempotent.
func (w *GitWorkspace) CreateBranch(ctx context.Context, name string) error {
	out, err := w.runner.Run(ctx, w.root, "git", "checkout", "-b", name)
	if err != nil {
		if strings.Contains(string(out), "already exists") {
			if _, err := w.runner.Run(ctx, w.root, "git", "checkout", name); err == nil {
				return nil
			}
		}
		return fmt.Errorf("git checkout -b %s: %w: %s", name, err, string(out))
	}
	return nil
}

// Commit stages all changes and commits them. A tree with nothing to commit
// is not an error; duplicate triggers land here after a completed wave.
func (w *GitWorkspace) Commit(ctx context.Context, message string) error {
	if out, err := w.runner.Run(ctx, w.root, "git", "add", "-A"); err != nil {
		return fmt.Errorf("git add: %w: %s", err, string(out))
	}
	out, err := w.runner.Run(ctx, w.root, "git", "commit", "-m", message)
	if err != nil {
		if strings.Contains(string(out), "nothing to commit") {
			return nil
		}
		return fmt.Errorf("git commit: %w: %s", err, string(out))
	}
	return nil
}

// Push pushes the current branch to origin.
func (w *GitWorkspace) Push(ctx context.Context) error {
	branch, err := w.currentBranch(ctx)
	if err != nil {
		return err
	}
	if out, err := w.runner.Run(ctx, w.root, "git", "push", "-u", "origin", branch); err != nil {
		return fmt.Errorf("git push: %w: %s", err, string(out))
	}
	return nil
}

func (w *GitWorkspace) currentBranch(ctx context.Context) (string, error) {
	out, err := w.runner.Run(ctx, w.root, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w: %s", err, string(out))
	}
	return strings.TrimSpace(string(out)), nil
}

// Verify GitWorkspace implements Workspace at compile time.
var _ Workspace = (*GitWorkspace)(nil)
