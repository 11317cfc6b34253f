package engine

import "errors"

var (
	// ErrProjectCancelled is returned when a trigger arrives for a project
	// that has been cancelled. Cancelled projects refuse all further work.
	ErrProjectCancelled = errors.New("project is cancelled")

	// ErrConcurrencyViolation is returned when a trigger arrives while a
	// wave is still executing. The trigger is rejected, never queued.
	ErrConcurrencyViolation = errors.New("a wave is already running for this project")

	// ErrAwaitingApproval is returned by wave-execution paths reached
	// before the plan was approved.
	ErrAwaitingApproval = errors.New("plan has not been approved")

	// ErrWaveFailed is returned when the latest wave resolved as failed
	// and the trigger did not request a retry. A retry trigger schedules
	// the failed tasks into a fresh wave under a new wave number.
	ErrWaveFailed = errors.New("latest wave failed; re-trigger with retry to schedule a new wave")

	// ErrNoPlan is returned when wave execution is reached without a
	// persisted plan.
	ErrNoPlan = errors.New("no plan persisted for project")
)
