// Package plan defines the persisted execution plan and its acceptance
// validation. A plan is validated once, at acceptance time; structural
// defects are never discovered mid-execution.
package plan

import (
	"encoding/json"
	"fmt"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

// Phase is one named stage of an execution plan, holding an ordered task list.
// Task dependency indices refer to positions within the same phase.
type Phase struct {
	// Name identifies the phase (e.g. "scaffolding", "features").
	Name string `json:"name"`
	// Tasks is the ordered task list for this phase.
	Tasks []models.Task `json:"tasks"`
}

// Plan is the full execution plan for a project: an ordered list of phases,
// each a list of tasks. Immutable once accepted.
type Plan struct {
	// ProjectID is the owning project.
	ProjectID string `json:"project_id"`
	// Phases is the ordered list of plan phases.
	Phases []Phase `json:"phases"`
}

// Marshal encodes the plan for storage.
func (p *Plan) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// Unmarshal decodes a stored plan. Task indices are normalized to their
// position within the phase; the position is canonical, whatever the JSON
// claims.
func Unmarshal(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	p.Normalize()
	return &p, nil
}

// Normalize sets every task's Index to its position within its phase.
func (p *Plan) Normalize() {
	for i := range p.Phases {
		for j := range p.Phases[i].Tasks {
			p.Phases[i].Tasks[j].Index = j
		}
	}
}

// PhaseByName returns the named plan phase, or nil if not present.
func (p *Plan) PhaseByName(name string) *Phase {
	for i := range p.Phases {
		if p.Phases[i].Name == name {
			return &p.Phases[i]
		}
	}
	return nil
}

// TotalTasks returns the number of tasks across all phases.
func (p *Plan) TotalTasks() int {
	n := 0
	for i := range p.Phases {
		n += len(p.Phases[i].Tasks)
	}
	return n
}
