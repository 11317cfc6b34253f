package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// recordingRunner records commands and returns scripted outputs.
type recordingRunner struct {
	commands [][]string
	outputs  map[string][]byte
	fails    map[string]error
}

func newRecordingRunner() *recordingRunner {
	return &recordingRunner{
		outputs: make(map[string][]byte),
		fails:   make(map[string]error),
	}
}

func (r *recordingRunner) Run(ctx context.Context, workDir, name string, args ...string) ([]byte, error) {
	full := append([]string{name}, args...)
	r.commands = append(r.commands, full)
	key := strings.Join(full, " ")
	if err, ok := r.fails[key]; ok {
		return r.outputs[key], err
	}
	return r.outputs[key], nil
}

func (r *recordingRunner) RunShell(ctx context.Context, workDir, command string) ([]byte, error) {
	return r.Run(ctx, workDir, "sh", "-c", command)
}

func (r *recordingRunner) ran(prefix string) bool {
	for _, c := range r.commands {
		if strings.HasPrefix(strings.Join(c, " "), prefix) {
			return true
		}
	}
	return false
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	root := t.TempDir()
	w := NewGitWorkspace(root, newRecordingRunner())

	if err := w.WriteFile("src/app/main.ts", []byte("export {}")); err != nil {
		t.Fatalf("write file: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "src", "app", "main.ts"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "export {}" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestCreateBranch(t *testing.T) {
	r := newRecordingRunner()
	w := NewGitWorkspace(t.TempDir(), r)

	if err := w.CreateBranch(context.Background(), "wave-3"); err != nil {
		t.Fatalf("create branch: %v", err)
	}
	if !r.ran("git checkout -b wave-3") {
		t.Errorf("expected checkout -b, got %v", r.commands)
	}
}

func TestCreateBranchFallsBackToCheckout(t *testing.T) {
	r := newRecordingRunner()
	r.fails["git checkout -b wave-3"] = errors.New("exit 128")
	r.outputs["git checkout -b wave-3"] = []byte("fatal: a branch named 'wave-3' already exists")
	w := NewGitWorkspace(t.TempDir(), r)

	if err := w.CreateBranch(context.Background(), "wave-3"); err != nil {
		t.Fatalf("expected existing branch to be checked out, got %v", err)
	}
	if !r.ran("git checkout wave-3") {
		t.Errorf("expected plain checkout fallback, got %v", r.commands)
	}
}

func TestCommitTreatsEmptyTreeAsSuccess(t *testing.T) {
	r := newRecordingRunner()
	r.fails["git commit -m wave 2: task output"] = errors.New("exit 1")
	r.outputs["git commit -m wave 2: task output"] = []byte("nothing to commit, working tree clean")
	w := NewGitWorkspace(t.TempDir(), r)

	if err := w.Commit(context.Background(), "wave 2: task output"); err != nil {
		t.Fatalf("expected clean-tree commit to be a no-op, got %v", err)
	}
}

func TestPushUsesCurrentBranch(t *testing.T) {
	r := newRecordingRunner()
	r.outputs["git rev-parse --abbrev-ref HEAD"] = []byte("wave-5\n")
	w := NewGitWorkspace(t.TempDir(), r)

	if err := w.Push(context.Background()); err != nil {
		t.Fatalf("push: %v", err)
	}
	if !r.ran("git push -u origin wave-5") {
		t.Errorf("expected push of wave-5, got %v", r.commands)
	}
}
