package models

import "time"

// Project represents one blueprint-to-app build. It is owned exclusively by
// the orchestrator and mutated only through phase transitions.
type Project struct {
	// ID is the unique identifier for this project.
	ID string `json:"id"`
	// Owner is the identifier of the owning user.
	Owner string `json:"owner"`
	// Phase is the current lifecycle phase.
	Phase Phase `json:"phase"`
	// CompletedPhases lists phases that have finished, in order.
	CompletedPhases []Phase `json:"completed_phases,omitempty"`
	// Blueprint points to the source natural-language blueprint.
	Blueprint string `json:"blueprint"`
	// Cancelled marks a project that refuses further triggers.
	Cancelled bool `json:"cancelled,omitempty"`
	// CreatedAt is when the project was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the project state last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// PhaseCompleted returns true if the given phase is in CompletedPhases.
func (p *Project) PhaseCompleted(phase Phase) bool {
	for _, ph := range p.CompletedPhases {
		if ph == phase {
			return true
		}
	}
	return false
}
