package plan

import (
	"errors"
	"testing"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

func validPlan() *Plan {
	return &Plan{
		ProjectID: "proj-1",
		Phases: []Phase{
			{
				Name: "scaffolding",
				Tasks: []models.Task{
					{Index: 0, Description: "init repo", Agent: models.AgentInfra, Details: &models.TaskDetails{Infra: &models.InfraDetails{Provider: "docker"}}},
					{Index: 1, Description: "base layout", Agent: models.AgentCoder, DependsOn: []int{0}, Details: &models.TaskDetails{Coder: &models.CoderDetails{Language: "typescript"}}},
				},
			},
		},
	}
}

func TestValidateAcceptsValidPlan(t *testing.T) {
	if err := Validate(validPlan()); err != nil {
		t.Fatalf("expected valid plan, got %v", err)
	}
}

func TestValidateRejectsEmptyPlan(t *testing.T) {
	err := Validate(&Plan{ProjectID: "proj-1"})
	var mpe *MalformedPlanError
	if !errors.As(err, &mpe) {
		t.Fatalf("expected MalformedPlanError, got %v", err)
	}
}

func TestValidateRejectsOutOfRangeDependency(t *testing.T) {
	p := validPlan()
	p.Phases[0].Tasks[1].DependsOn = []int{5}

	err := Validate(p)
	var mpe *MalformedPlanError
	if !errors.As(err, &mpe) {
		t.Fatalf("expected MalformedPlanError, got %v", err)
	}
	if mpe.TaskIndex != 1 {
		t.Errorf("expected defect at task 1, got %d", mpe.TaskIndex)
	}
}

func TestValidateRejectsNegativeDependency(t *testing.T) {
	p := validPlan()
	p.Phases[0].Tasks[1].DependsOn = []int{-1}

	var mpe *MalformedPlanError
	if !errors.As(Validate(p), &mpe) {
		t.Fatal("expected MalformedPlanError for negative index")
	}
}

func TestValidateRejectsSelfDependency(t *testing.T) {
	p := validPlan()
	p.Phases[0].Tasks[0].DependsOn = []int{0}

	var mpe *MalformedPlanError
	if !errors.As(Validate(p), &mpe) {
		t.Fatal("expected MalformedPlanError for self dependency")
	}
}

func TestValidateRejectsCycle(t *testing.T) {
	p := &Plan{
		ProjectID: "proj-1",
		Phases: []Phase{
			{
				Name: "features",
				Tasks: []models.Task{
					{Index: 0, Agent: models.AgentCoder, DependsOn: []int{2}},
					{Index: 1, Agent: models.AgentCoder, DependsOn: []int{0}},
					{Index: 2, Agent: models.AgentCoder, DependsOn: []int{1}},
				},
			},
		},
	}

	var mpe *MalformedPlanError
	if !errors.As(Validate(p), &mpe) {
		t.Fatal("expected MalformedPlanError for cycle")
	}
}

func TestValidateRejectsUnknownAgent(t *testing.T) {
	p := validPlan()
	p.Phases[0].Tasks[0].Agent = "wizard"
	p.Phases[0].Tasks[0].Details = nil

	var mpe *MalformedPlanError
	if !errors.As(Validate(p), &mpe) {
		t.Fatal("expected MalformedPlanError for unknown agent")
	}
}

func TestValidateRejectsMismatchedDetails(t *testing.T) {
	p := validPlan()
	// Coder task carrying infra details.
	p.Phases[0].Tasks[1].Details = &models.TaskDetails{Infra: &models.InfraDetails{Provider: "docker"}}

	var mpe *MalformedPlanError
	if !errors.As(Validate(p), &mpe) {
		t.Fatal("expected MalformedPlanError for mismatched details")
	}
}

func TestValidateRejectsIncompleteVariant(t *testing.T) {
	p := validPlan()
	p.Phases[0].Tasks[1].Details = &models.TaskDetails{Coder: &models.CoderDetails{}}

	var mpe *MalformedPlanError
	if !errors.As(Validate(p), &mpe) {
		t.Fatal("expected MalformedPlanError for coder details without language")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	p := validPlan()
	data, err := p.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ProjectID != p.ProjectID {
		t.Errorf("expected project %q, got %q", p.ProjectID, got.ProjectID)
	}
	if got.TotalTasks() != 2 {
		t.Errorf("expected 2 tasks, got %d", got.TotalTasks())
	}
}
