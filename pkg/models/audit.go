package models

import "time"

// ErrorKind classifies an agent execution failure for the audit log and the
// fix/retry path. Control decisions read task and wave state, never this log.
type ErrorKind string

const (
	// ErrorKindNone indicates the execution succeeded.
	ErrorKindNone ErrorKind = ""
	// ErrorKindTransient indicates a tool or model call failure.
	ErrorKindTransient ErrorKind = "transient"
	// ErrorKindTimeout indicates the execution exceeded its deadline.
	ErrorKindTimeout ErrorKind = "timeout"
	// ErrorKindVerification indicates the task's success criteria were not met
	// even though the agent call itself succeeded.
	ErrorKindVerification ErrorKind = "verification"
)

// AgentExecution is an append-only audit record of one agent invocation
// attempt. It is written after every agent call regardless of outcome.
type AgentExecution struct {
	// ID is the unique identifier for this record.
	ID string `json:"id"`
	// ProjectID is the owning project.
	ProjectID string `json:"project_id"`
	// Agent is the worker category that was invoked.
	Agent AgentKind `json:"agent"`
	// Phase is the project phase during the invocation.
	Phase Phase `json:"phase"`
	// WaveNumber is the wave the invocation belonged to, 0 for single-shot phases.
	WaveNumber int `json:"wave_number,omitempty"`
	// TaskIndex is the plan-phase task index, -1 for non-task invocations.
	TaskIndex int `json:"task_index"`
	// FixAttempt is the fix-mode attempt number, 0 for normal executions.
	FixAttempt int `json:"fix_attempt,omitempty"`
	// Success indicates whether the invocation succeeded.
	Success bool `json:"success"`
	// Duration is how long the invocation took.
	Duration time.Duration `json:"duration"`
	// ErrorKind classifies the failure, empty on success.
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	// Error is the failure message, empty on success.
	Error string `json:"error,omitempty"`
	// Timestamp is when the invocation finished.
	Timestamp time.Time `json:"timestamp"`
}

// IssueSeverity grades a critic-reported issue.
type IssueSeverity string

const (
	// SeverityError must be fixed before the wave can complete.
	SeverityError IssueSeverity = "error"
	// SeverityWarning should be fixed but does not block completion.
	SeverityWarning IssueSeverity = "warning"
	// SeverityInfo is advisory only.
	SeverityInfo IssueSeverity = "info"
)

// Issue is a critic-reported defect in generated work. Issues live only for
// the fix cycle that resolves them; they are never persisted beyond it.
type Issue struct {
	// File is the path of the defective artifact.
	File string `json:"file"`
	// Severity grades the issue.
	Severity IssueSeverity `json:"severity"`
	// Message describes the defect.
	Message string `json:"message"`
	// SuggestedFix is the critic's proposed remedy, if any.
	SuggestedFix string `json:"suggested_fix,omitempty"`
	// AutoFixable indicates the owning agent can resolve it in fix mode.
	AutoFixable bool `json:"auto_fixable"`
	// SourceAgent is the agent category that produced the artifact.
	SourceAgent AgentKind `json:"source_agent"`
	// TaskIndex is the plan-phase index of the originating task.
	TaskIndex int `json:"task_index"`
}
