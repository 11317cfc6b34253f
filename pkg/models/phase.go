package models

// Phase represents one stage of the project lifecycle.
type Phase string

const (
	// PhaseInitializing is the state of a freshly created project.
	PhaseInitializing Phase = "initializing"
	// PhaseAnalysis analyzes the blueprint requirements.
	PhaseAnalysis Phase = "analysis"
	// PhaseResearch gathers supporting context for the plan.
	PhaseResearch Phase = "research"
	// PhaseValidation validates the analyzed requirements.
	PhaseValidation Phase = "validation"
	// PhasePlanning produces the execution plan.
	PhasePlanning Phase = "planning"
	// PhasePlanReview waits for human approval of the plan.
	PhasePlanReview Phase = "plan_review"
	// PhaseWaveExecution executes plan tasks in dependency-ordered waves.
	PhaseWaveExecution Phase = "wave_execution"
	// PhaseDeployment deploys the generated application.
	PhaseDeployment Phase = "deployment"
	// PhaseMonitoring monitors the deployed application.
	PhaseMonitoring Phase = "monitoring"
	// PhaseComplete is the terminal state of a successful build.
	PhaseComplete Phase = "complete"
)

// phaseOrder is the fixed forward order of phases.
var phaseOrder = []Phase{
	PhaseInitializing,
	PhaseAnalysis,
	PhaseResearch,
	PhaseValidation,
	PhasePlanning,
	PhasePlanReview,
	PhaseWaveExecution,
	PhaseDeployment,
	PhaseMonitoring,
	PhaseComplete,
}

// AllPhases returns the phases in their fixed forward order.
func AllPhases() []Phase {
	out := make([]Phase, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}

// Valid returns true if the phase is a known value.
func (p Phase) Valid() bool {
	for _, ph := range phaseOrder {
		if p == ph {
			return true
		}
	}
	return false
}

// Next returns the phase that follows p, or empty string at the end.
func (p Phase) Next() Phase {
	for i, ph := range phaseOrder {
		if p == ph && i+1 < len(phaseOrder) {
			return phaseOrder[i+1]
		}
	}
	return ""
}

// Index returns the position of the phase in the fixed order, or -1 if unknown.
func (p Phase) Index() int {
	for i, ph := range phaseOrder {
		if p == ph {
			return i
		}
	}
	return -1
}

// SingleShot returns true for phases that run exactly one agent call per
// invocation (analysis through planning, plus deployment and monitoring).
// plan_review and wave_execution have their own advancement rules.
func (p Phase) SingleShot() bool {
	switch p {
	case PhaseAnalysis, PhaseResearch, PhaseValidation, PhasePlanning, PhaseDeployment, PhaseMonitoring:
		return true
	default:
		return false
	}
}
