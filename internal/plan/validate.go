package plan

import (
	"fmt"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

// MalformedPlanError reports a structural defect in the task graph found at
// plan acceptance. It is fatal and never retried.
type MalformedPlanError struct {
	// Phase is the plan phase containing the defect.
	Phase string
	// TaskIndex is the offending task, -1 when the defect is phase-wide.
	TaskIndex int
	// Reason describes the defect.
	Reason string
}

func (e *MalformedPlanError) Error() string {
	if e.TaskIndex >= 0 {
		return fmt.Sprintf("malformed plan: phase %q task %d: %s", e.Phase, e.TaskIndex, e.Reason)
	}
	return fmt.Sprintf("malformed plan: phase %q: %s", e.Phase, e.Reason)
}

// Validate checks the plan's structure: dependency indices in range, no
// dependency cycles, known agent kinds, and task detail payloads matching
// their agent category. Returns a *MalformedPlanError on the first defect.
func Validate(p *Plan) error {
	if len(p.Phases) == 0 {
		return &MalformedPlanError{Phase: "", TaskIndex: -1, Reason: "plan has no phases"}
	}

	for i := range p.Phases {
		ph := &p.Phases[i]
		if err := validatePhase(ph); err != nil {
			return err
		}
	}
	return nil
}

func validatePhase(ph *Phase) error {
	n := len(ph.Tasks)

	for i := range ph.Tasks {
		t := &ph.Tasks[i]

		if !t.Agent.Valid() {
			return &MalformedPlanError{Phase: ph.Name, TaskIndex: i, Reason: fmt.Sprintf("unknown agent kind %q", t.Agent)}
		}

		for _, dep := range t.DependsOn {
			if dep < 0 || dep >= n {
				return &MalformedPlanError{Phase: ph.Name, TaskIndex: i, Reason: fmt.Sprintf("dependency index %d out of range (phase has %d tasks)", dep, n)}
			}
			if dep == i {
				return &MalformedPlanError{Phase: ph.Name, TaskIndex: i, Reason: "task depends on itself"}
			}
		}

		if err := validateDetails(t); err != nil {
			return &MalformedPlanError{Phase: ph.Name, TaskIndex: i, Reason: err.Error()}
		}
	}

	if cycleAt := findCycle(ph.Tasks); cycleAt >= 0 {
		return &MalformedPlanError{Phase: ph.Name, TaskIndex: cycleAt, Reason: "circular dependency detected"}
	}

	return nil
}

// findCycle runs depth-first search with coloring and returns the index of a
// task on a dependency cycle, or -1 if the phase is acyclic.
// Color states: 0 = white (unvisited), 1 = gray (in progress), 2 = black (done).
func findCycle(tasks []models.Task) int {
	colors := make([]int, len(tasks))

	var visit func(i int) bool
	visit = func(i int) bool {
		colors[i] = 1

		for _, dep := range tasks[i].DependsOn {
			switch colors[dep] {
			case 1:
				// Back edge: cycle.
				return true
			case 0:
				if visit(dep) {
					return true
				}
			}
		}

		colors[i] = 2
		return false
	}

	for i := range tasks {
		if colors[i] == 0 {
			if visit(i) {
				return i
			}
		}
	}
	return -1
}

// validateDetails checks that at most one detail variant is set and that it
// matches the task's agent kind.
func validateDetails(t *models.Task) error {
	d := t.Details
	if d == nil {
		return nil
	}

	variants := map[models.AgentKind]bool{
		models.AgentPlanner: d.Planner != nil,
		models.AgentCoder:   d.Coder != nil,
		models.AgentInfra:   d.Infra != nil,
		models.AgentCritic:  d.Critic != nil,
		models.AgentDeploy:  d.Deploy != nil,
		models.AgentMonitor: d.Monitor != nil,
	}

	set := 0
	for _, present := range variants {
		if present {
			set++
		}
	}
	if set > 1 {
		return fmt.Errorf("multiple detail variants set")
	}
	if set == 1 && !variants[t.Agent] {
		return fmt.Errorf("detail variant does not match agent %q", t.Agent)
	}

	// Narrow per-variant schema checks.
	switch {
	case d.Coder != nil && d.Coder.Language == "":
		return fmt.Errorf("coder details missing language")
	case d.Infra != nil && d.Infra.Provider == "":
		return fmt.Errorf("infra details missing provider")
	case d.Deploy != nil && d.Deploy.Environment == "":
		return fmt.Errorf("deploy details missing environment")
	}

	return nil
}
