package engine

import "github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"

// phaseProgress maps each phase to the completion percentage reported on
// entering it. Wave execution interpolates between 50 and 80.
var phaseProgress = map[models.Phase]int{
	models.PhaseInitializing:  5,
	models.PhaseAnalysis:      15,
	models.PhaseResearch:      25,
	models.PhaseValidation:    35,
	models.PhasePlanning:      45,
	models.PhasePlanReview:    50,
	models.PhaseWaveExecution: 50,
	models.PhaseDeployment:    85,
	models.PhaseMonitoring:    95,
	models.PhaseComplete:      100,
}

// Progress projects an overall completion percentage from the current
// phase. During wave execution the 50 to 80 band is split evenly across
// waves: 50 + 30 * completed / total. A zero total reports the band floor.
func Progress(phase models.Phase, wavesCompleted, wavesTotal int) int {
	base, ok := phaseProgress[phase]
	if !ok {
		return 0
	}
	if phase != models.PhaseWaveExecution {
		return base
	}
	if wavesTotal <= 0 {
		return base
	}
	if wavesCompleted > wavesTotal {
		wavesCompleted = wavesTotal
	}
	return base + 30*wavesCompleted/wavesTotal
}

// phaseAgent names the agent kind responsible for a single-shot phase.
var phaseAgent = map[models.Phase]models.AgentKind{
	models.PhaseAnalysis:   models.AgentPlanner,
	models.PhaseResearch:   models.AgentPlanner,
	models.PhaseValidation: models.AgentPlanner,
	models.PhasePlanning:   models.AgentPlanner,
	models.PhaseDeployment: models.AgentDeploy,
	models.PhaseMonitoring: models.AgentMonitor,
}

// AgentForPhase returns the agent kind that executes a single-shot phase.
func AgentForPhase(phase models.Phase) (models.AgentKind, bool) {
	kind, ok := phaseAgent[phase]
	return kind, ok
}
