package engine

import (
	"testing"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

func TestProgressPerPhase(t *testing.T) {
	cases := []struct {
		phase models.Phase
		want  int
	}{
		{models.PhaseInitializing, 5},
		{models.PhaseAnalysis, 15},
		{models.PhaseResearch, 25},
		{models.PhaseValidation, 35},
		{models.PhasePlanning, 45},
		{models.PhasePlanReview, 50},
		{models.PhaseDeployment, 85},
		{models.PhaseMonitoring, 95},
		{models.PhaseComplete, 100},
	}
	for _, tc := range cases {
		if got := Progress(tc.phase, 0, 0); got != tc.want {
			t.Errorf("Progress(%s) = %d, want %d", tc.phase, got, tc.want)
		}
	}
}

func TestProgressWaveInterpolation(t *testing.T) {
	cases := []struct {
		completed, total int
		want             int
	}{
		{0, 4, 50},
		{1, 2, 65},
		{2, 4, 65},
		{3, 4, 72},
		{4, 4, 80},
		{0, 0, 50},
		{5, 4, 80},
	}
	for _, tc := range cases {
		got := Progress(models.PhaseWaveExecution, tc.completed, tc.total)
		if got != tc.want {
			t.Errorf("Progress(wave_execution, %d, %d) = %d, want %d", tc.completed, tc.total, got, tc.want)
		}
	}
}

func TestAgentForPhase(t *testing.T) {
	if kind, ok := AgentForPhase(models.PhaseDeployment); !ok || kind != models.AgentDeploy {
		t.Errorf("deployment agent = %v %v", kind, ok)
	}
	if kind, ok := AgentForPhase(models.PhaseMonitoring); !ok || kind != models.AgentMonitor {
		t.Errorf("monitoring agent = %v %v", kind, ok)
	}
	if _, ok := AgentForPhase(models.PhaseWaveExecution); ok {
		t.Error("wave_execution is not single-shot")
	}
}
