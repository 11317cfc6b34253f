// Package agent defines the uniform execution adapter every specialized
// agent implements. The coordinator hands a Request in and gets a Result
// back; what happens inside (LLM calls, tool use) is the runner's business.
package agent

import (
	"context"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

// Request describes one agent invocation.
type Request struct {
	// ProjectID is the owning project.
	ProjectID string
	// Blueprint is the source blueprint text, for phase-level invocations.
	Blueprint string
	// Phase is the project phase driving the invocation.
	Phase models.Phase
	// Task is the task being executed, nil for single-shot phase calls.
	Task *models.Task
	// FixMode indicates the agent is resolving critic-reported issues in
	// previously generated output rather than generating new output.
	FixMode bool
	// Issues are the critic findings to resolve, fix mode only.
	Issues []models.Issue
	// FileContents carries the current contents of the affected files,
	// fix mode only. Fix mode gets the files, not the original task.
	FileContents map[string]string
	// Attempt is the fix attempt number (1-indexed), 0 outside fix mode.
	Attempt int
}

// GeneratedFile is one file produced by an agent.
type GeneratedFile struct {
	// Path is the workspace-relative file path.
	Path string
	// Content is the full file content.
	Content string
}

// Result is the outcome of one agent invocation.
type Result struct {
	// Success indicates the invocation met its success criteria.
	Success bool
	// Output is the agent's textual output (analysis, plan JSON, logs).
	Output string
	// Files are the files the agent generated or rewrote.
	Files []GeneratedFile
	// Issues are critic findings, produced by critic agents only.
	Issues []models.Issue
	// ErrorKind classifies the failure; empty on success.
	ErrorKind models.ErrorKind
	// Error is the failure message; empty on success.
	Error string
}

// Runner executes agent invocations for one agent category. Implementations
// must honor ctx cancellation; the coordinator wraps every call in a
// deadline and records timeouts with a distinguished error kind.
type Runner interface {
	// Kind returns the agent category this runner serves.
	Kind() models.AgentKind
	// Execute performs one invocation.
	Execute(ctx context.Context, req Request) (Result, error)
}
