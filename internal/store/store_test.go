package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/plan"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testProject(t *testing.T, db *DB, id string) *models.Project {
	t.Helper()
	p := &models.Project{
		ID:        id,
		Owner:     "user-1",
		Phase:     models.PhaseInitializing,
		Blueprint: "a todo app",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.CreateProject(p); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func TestProjectRoundTrip(t *testing.T) {
	db := testDB(t)
	p := testProject(t, db, "proj-1")

	got, err := db.GetProject("proj-1")
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if got.Owner != p.Owner || got.Phase != models.PhaseInitializing {
		t.Errorf("unexpected project: %+v", got)
	}

	got.Phase = models.PhaseAnalysis
	got.CompletedPhases = []models.Phase{models.PhaseInitializing}
	if err := db.UpdateProject(got); err != nil {
		t.Fatalf("update project: %v", err)
	}

	got2, err := db.GetProject("proj-1")
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if got2.Phase != models.PhaseAnalysis {
		t.Errorf("expected phase analysis, got %s", got2.Phase)
	}
	if !got2.PhaseCompleted(models.PhaseInitializing) {
		t.Error("expected initializing in completed phases")
	}
}

func TestGetProjectNotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetProject("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlanSaveLoadAndApproval(t *testing.T) {
	db := testDB(t)
	testProject(t, db, "proj-1")

	pl := &plan.Plan{
		ProjectID: "proj-1",
		Phases: []plan.Phase{
			{Name: "scaffolding", Tasks: []models.Task{
				{Index: 0, Agent: models.AgentInfra, Status: models.TaskStatusPending},
				{Index: 1, Agent: models.AgentCoder, DependsOn: []int{0}, Status: models.TaskStatusPending},
			}},
		},
	}
	if err := db.SavePlan(pl); err != nil {
		t.Fatalf("save plan: %v", err)
	}

	got, err := db.GetPlan("proj-1")
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if got.TotalTasks() != 2 {
		t.Errorf("expected 2 tasks, got %d", got.TotalTasks())
	}

	states, err := db.TaskStates("proj-1", "scaffolding")
	if err != nil {
		t.Fatalf("task states: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("expected 2 seeded task rows, got %d", len(states))
	}
	if states[0].Status != models.TaskStatusPending {
		t.Errorf("expected pending, got %s", states[0].Status)
	}

	approved, err := db.IsApproved("proj-1")
	if err != nil {
		t.Fatalf("is approved: %v", err)
	}
	if approved {
		t.Error("plan should not be approved yet")
	}

	if err := db.RecordApproval("proj-1", "user-1"); err != nil {
		t.Fatalf("record approval: %v", err)
	}
	approved, err = db.IsApproved("proj-1")
	if err != nil {
		t.Fatalf("is approved: %v", err)
	}
	if !approved {
		t.Error("plan should be approved")
	}
}

func TestSetTaskStatus(t *testing.T) {
	db := testDB(t)
	testProject(t, db, "proj-1")

	pl := &plan.Plan{
		ProjectID: "proj-1",
		Phases: []plan.Phase{
			{Name: "features", Tasks: []models.Task{{Index: 0, Agent: models.AgentCoder}}},
		},
	}
	if err := db.SavePlan(pl); err != nil {
		t.Fatalf("save plan: %v", err)
	}

	if err := db.SetTaskStatus("proj-1", "features", 0, models.TaskStatusFailed, "boom"); err != nil {
		t.Fatalf("set task status: %v", err)
	}

	states, err := db.TaskStates("proj-1", "features")
	if err != nil {
		t.Fatalf("task states: %v", err)
	}
	if states[0].Status != models.TaskStatusFailed || states[0].Error != "boom" {
		t.Errorf("unexpected state: %+v", states[0])
	}
}

func TestStartWaveRejectsConcurrentRunning(t *testing.T) {
	db := testDB(t)
	testProject(t, db, "proj-1")

	w1 := &models.Wave{ID: "wave-1", ProjectID: "proj-1", PlanPhase: "features", TaskIndexes: []int{0, 1}}
	if err := db.StartWave(w1); err != nil {
		t.Fatalf("start wave 1: %v", err)
	}
	if w1.Number != 1 {
		t.Errorf("expected wave number 1, got %d", w1.Number)
	}

	w2 := &models.Wave{ID: "wave-2", ProjectID: "proj-1", PlanPhase: "features", TaskIndexes: []int{2}}
	if err := db.StartWave(w2); !errors.Is(err, ErrWaveRunning) {
		t.Fatalf("expected ErrWaveRunning, got %v", err)
	}

	if err := db.ResolveWave("wave-1", models.WaveStatusCompleted); err != nil {
		t.Fatalf("resolve wave: %v", err)
	}

	if err := db.StartWave(w2); err != nil {
		t.Fatalf("start wave 2 after resolution: %v", err)
	}
	if w2.Number != 2 {
		t.Errorf("expected monotonic wave number 2, got %d", w2.Number)
	}
}

func TestWaveCounts(t *testing.T) {
	db := testDB(t)
	testProject(t, db, "proj-1")

	for i, status := range []models.WaveStatus{models.WaveStatusCompleted, models.WaveStatusCompleted, models.WaveStatusFailed} {
		w := &models.Wave{ID: "wave-" + string(rune('a'+i)), ProjectID: "proj-1", PlanPhase: "features", TaskIndexes: []int{i}}
		if err := db.StartWave(w); err != nil {
			t.Fatalf("start wave: %v", err)
		}
		if err := db.ResolveWave(w.ID, status); err != nil {
			t.Fatalf("resolve wave: %v", err)
		}
	}

	completed, total, err := db.WaveCounts("proj-1")
	if err != nil {
		t.Fatalf("wave counts: %v", err)
	}
	if completed != 2 || total != 3 {
		t.Errorf("expected 2/3, got %d/%d", completed, total)
	}
}

func TestExecutionAuditLog(t *testing.T) {
	db := testDB(t)
	testProject(t, db, "proj-1")

	execs := []*models.AgentExecution{
		{ID: "ex-1", ProjectID: "proj-1", Agent: models.AgentCoder, Phase: models.PhaseWaveExecution, WaveNumber: 3, TaskIndex: 0, Success: true, Duration: 2 * time.Second},
		{ID: "ex-2", ProjectID: "proj-1", Agent: models.AgentCoder, Phase: models.PhaseWaveExecution, WaveNumber: 3, TaskIndex: 0, FixAttempt: 1, Success: false, ErrorKind: models.ErrorKindVerification, Error: "criteria unmet"},
		{ID: "ex-3", ProjectID: "proj-1", Agent: models.AgentCoder, Phase: models.PhaseWaveExecution, WaveNumber: 3, TaskIndex: 0, FixAttempt: 2, Success: true},
	}
	for _, e := range execs {
		if err := db.AppendExecution(e); err != nil {
			t.Fatalf("append execution: %v", err)
		}
	}

	got, err := db.ListExecutions("proj-1", 0)
	if err != nil {
		t.Fatalf("list executions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}

	fixes, err := db.CountFixAttempts("proj-1", 3)
	if err != nil {
		t.Fatalf("count fix attempts: %v", err)
	}
	if fixes != 2 {
		t.Errorf("expected 2 fix attempts, got %d", fixes)
	}
}

func TestPurgeOldExecutions(t *testing.T) {
	db := testDB(t)
	testProject(t, db, "proj-1")

	old := &models.AgentExecution{
		ID: "ex-old", ProjectID: "proj-1", Agent: models.AgentPlanner,
		Phase: models.PhaseAnalysis, TaskIndex: -1, Success: true,
		Timestamp: time.Now().Add(-48 * time.Hour),
	}
	recent := &models.AgentExecution{
		ID: "ex-new", ProjectID: "proj-1", Agent: models.AgentPlanner,
		Phase: models.PhaseAnalysis, TaskIndex: -1, Success: true,
	}
	if err := db.AppendExecution(old); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := db.AppendExecution(recent); err != nil {
		t.Fatalf("append: %v", err)
	}

	n, err := db.PurgeOldExecutions(24 * time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 purged, got %d", n)
	}
}
