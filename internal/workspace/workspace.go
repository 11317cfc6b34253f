// Package workspace exposes the project workspace and version-control
// collaborators the coordinator calls as side effects of wave execution.
// Implementations of the external provider live behind these interfaces.
package workspace

import "context"

// CommandRunner defines the interface for running external commands.
// This abstraction allows mocking command execution in tests.
type CommandRunner interface {
	// Run executes a command and returns combined stdout/stderr output.
	// The working directory is set to workDir if non-empty.
	Run(ctx context.Context, workDir string, name string, args ...string) (output []byte, err error)

	// RunShell executes a shell command through "sh -c".
	RunShell(ctx context.Context, workDir string, command string) (output []byte, err error)
}

// Workspace is the mutable project working tree plus its version-control
// provider. One wave at a time holds write access; within a wave, concurrent
// agents writing disjoint files is permitted.
type Workspace interface {
	// WriteFile writes content to a workspace-relative path, creating
	// parent directories as needed.
	WriteFile(path string, content []byte) error

	// ReadFile reads a workspace-relative path. Missing files return
	// an error satisfying os.IsNotExist.
	ReadFile(path string) ([]byte, error)

	// ExecCommand runs a verification or build command inside the workspace.
	ExecCommand(ctx context.Context, command string) (output []byte, err error)

	// CreateBranch creates and checks out a branch for a wave.
	CreateBranch(ctx context.Context, name string) error

	// Commit stages everything and records a commit with the given message.
	Commit(ctx context.Context, message string) error

	// Push pushes the current branch to the remote.
	Push(ctx context.Context) error
}
