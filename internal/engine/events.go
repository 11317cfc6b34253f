package engine

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

// EventType represents the type of engine event.
type EventType string

const (
	// EventPhaseAdvanced indicates the project moved to a new phase.
	EventPhaseAdvanced EventType = "phase_advanced"
	// EventAwaitingApproval indicates the plan is waiting for human sign-off.
	EventAwaitingApproval EventType = "awaiting_approval"
	// EventWaveStarted indicates a wave began executing.
	EventWaveStarted EventType = "wave_started"
	// EventWaveCompleted indicates every task in a wave succeeded.
	EventWaveCompleted EventType = "wave_completed"
	// EventWaveFailed indicates a wave resolved with unfixed failures.
	EventWaveFailed EventType = "wave_failed"
	// EventTaskStarted indicates a task's agent invocation began.
	EventTaskStarted EventType = "task_started"
	// EventTaskCompleted indicates a task completed successfully.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskFailed indicates a task failed.
	EventTaskFailed EventType = "task_failed"
	// EventFixAttempt indicates a fix-mode invocation was dispatched.
	EventFixAttempt EventType = "fix_attempt"
)

// Event is emitted by the engine as work progresses. Subscribers (the
// watch command, status reporting) receive these on a buffered channel.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// ProjectID is the owning project.
	ProjectID string
	// Phase is the project phase at emission time.
	Phase models.Phase
	// WaveNumber is the related wave, if applicable.
	WaveNumber int
	// TaskIndex is the related task, -1 if not task-scoped.
	TaskIndex int
	// Agent is the related agent kind, if applicable.
	Agent models.AgentKind
	// Message provides additional context about the event.
	Message string
	// Progress is the overall completion percentage at emission time.
	Progress int
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// EventEmitter handles event emission for the engine.
// It provides a simple, thread-safe way to emit events to subscribers.
type EventEmitter struct {
	events       chan Event
	droppedCount atomic.Uint64
}

// NewEventEmitter creates a new EventEmitter with the given buffer size.
func NewEventEmitter(bufferSize int) *EventEmitter {
	return &EventEmitter{
		events: make(chan Event, bufferSize),
	}
}

// Emit sends an event to the events channel.
// If the channel is full, it tries with a timeout before dropping the event.
func (e *EventEmitter) Emit(event Event) {
	if e == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case e.events <- event:
		return
	default:
	}

	select {
	case e.events <- event:
		return
	case <-time.After(100 * time.Millisecond):
		count := e.droppedCount.Add(1)
		if count%10 == 1 {
			log.Printf("[engine] WARNING: event channel full, dropped event (total dropped: %d): type=%s", count, event.Type)
		}
	}
}

// DroppedCount returns the total number of events that have been dropped.
func (e *EventEmitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Events returns a read-only channel of events for subscribers.
func (e *EventEmitter) Events() <-chan Event {
	return e.events
}

// Close closes the events channel.
// This should be called once no more events will be emitted.
func (e *EventEmitter) Close() {
	close(e.events)
}
