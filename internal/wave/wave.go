// Package wave groups pending plan-phase tasks into executable waves.
// A wave is the set of tasks whose dependencies are all satisfied, truncated
// per agent so no single agent is handed more work than its concurrency cap.
package wave

import (
	"errors"
	"sort"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

// DefaultAgentCap is the per-agent concurrency cap applied when the caller
// passes a non-positive cap. Excess eligible tasks for an agent spill into
// the following wave.
const DefaultAgentCap = 3

// ErrDeadlock indicates the builder cannot make progress: tasks remain but
// none of them has all dependencies satisfied. This should only occur if
// plan validation was bypassed; it is fatal and surfaced for manual
// intervention.
var ErrDeadlock = errors.New("wave deadlock: remaining tasks have unsatisfiable dependencies")

// Set is the outcome of building one wave.
type Set struct {
	// TaskIndexes are the selected task indices in ascending order.
	TaskIndexes []int
	// ByAgent groups the selected indices by assigned agent, original order.
	ByAgent map[models.AgentKind][]int
	// Deferred counts eligible tasks pushed to a later wave by the agent cap.
	Deferred int
	// Remaining counts pending tasks left after this wave, including deferred.
	Remaining int
	// PhaseDone is true when no tasks remain at all: the phase is complete.
	PhaseDone bool
}

// Empty returns true if the wave selects no tasks.
func (s *Set) Empty() bool {
	return len(s.TaskIndexes) == 0
}

// Build selects the next wave from a plan phase's task list.
//
// Eligible tasks are those still pending (not complete, failed, or already
// assigned to a prior wave) whose every dependency index appears in
// completed. Eligible tasks are grouped by agent and each group truncated to
// capPerAgent, deterministically by original task order: the first N win and
// the remainder waits for the following wave even though already eligible.
//
// Returns ErrDeadlock when no task is eligible yet pending tasks remain.
func Build(tasks []models.Task, completed map[int]bool, capPerAgent int) (*Set, error) {
	if capPerAgent <= 0 {
		capPerAgent = DefaultAgentCap
	}

	pending := 0
	var eligible []int
	for i := range tasks {
		t := &tasks[i]
		if t.Status != models.TaskStatusPending || completed[i] {
			continue
		}
		pending++

		ready := true
		for _, dep := range t.DependsOn {
			if !completed[dep] {
				ready = false
				break
			}
		}
		if ready {
			eligible = append(eligible, i)
		}
	}

	if pending == 0 {
		return &Set{ByAgent: map[models.AgentKind][]int{}, PhaseDone: true}, nil
	}
	if len(eligible) == 0 {
		return nil, ErrDeadlock
	}

	set := &Set{ByAgent: make(map[models.AgentKind][]int)}
	for _, i := range eligible {
		agent := tasks[i].Agent
		if len(set.ByAgent[agent]) >= capPerAgent {
			set.Deferred++
			continue
		}
		set.ByAgent[agent] = append(set.ByAgent[agent], i)
		set.TaskIndexes = append(set.TaskIndexes, i)
	}
	sort.Ints(set.TaskIndexes)
	set.Remaining = pending - len(set.TaskIndexes)

	return set, nil
}

// CompletedSet derives the completed-index set from task statuses. Build
// callers use it to seed dependency resolution from persisted state.
func CompletedSet(tasks []models.Task) map[int]bool {
	completed := make(map[int]bool)
	for i := range tasks {
		if tasks[i].Status == models.TaskStatusComplete {
			completed[tasks[i].Index] = true
		}
	}
	return completed
}

// Partition repeatedly builds waves over a task list, marking each wave's
// tasks complete, until the phase is done. It returns the full ordered wave
// sequence. Used for plan preview and for bounding total wave counts.
func Partition(tasks []models.Task, capPerAgent int) ([][]int, error) {
	// Work on a copy so caller task statuses are untouched.
	work := make([]models.Task, len(tasks))
	copy(work, tasks)

	completed := CompletedSet(work)
	var waves [][]int

	for {
		set, err := Build(work, completed, capPerAgent)
		if err != nil {
			return nil, err
		}
		if set.PhaseDone {
			return waves, nil
		}
		waves = append(waves, set.TaskIndexes)
		for _, i := range set.TaskIndexes {
			completed[i] = true
			work[i].Status = models.TaskStatusComplete
		}
	}
}
