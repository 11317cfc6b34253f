package models

import "time"

// WaveStatus represents the state of a wave.
type WaveStatus string

const (
	// WaveStatusPending indicates the wave has been built but not dispatched.
	WaveStatusPending WaveStatus = "pending"
	// WaveStatusRunning indicates agents are executing the wave's tasks.
	WaveStatusRunning WaveStatus = "running"
	// WaveStatusCompleted indicates every task in the wave succeeded.
	WaveStatusCompleted WaveStatus = "completed"
	// WaveStatusFailed indicates at least one task did not succeed.
	WaveStatusFailed WaveStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s WaveStatus) Valid() bool {
	switch s {
	case WaveStatusPending, WaveStatusRunning, WaveStatusCompleted, WaveStatusFailed:
		return true
	default:
		return false
	}
}

// Wave is a single batch of tasks selected for concurrent execution.
// Only the execution coordinator writes wave status.
type Wave struct {
	// ID is the unique identifier for this wave.
	ID string `json:"id"`
	// ProjectID is the owning project.
	ProjectID string `json:"project_id"`
	// Number is the 1-based, monotonically increasing wave number per project.
	Number int `json:"number"`
	// PlanPhase is the plan phase the wave's tasks belong to.
	PlanPhase string `json:"plan_phase"`
	// TaskIndexes lists the plan-phase task indices included in the wave.
	TaskIndexes []int `json:"task_indexes"`
	// Status is the current wave state.
	Status WaveStatus `json:"status"`
	// CreatedAt is when the wave record was created.
	CreatedAt time.Time `json:"created_at"`
	// CompletedAt is when the wave resolved, if it has.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
