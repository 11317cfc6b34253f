package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/agent"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/plan"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/store"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/wave"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/workspace"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

// Options configures engine behavior. Zero values fall back to defaults.
type Options struct {
	// AgentCap is the per-agent-kind concurrency cap within a wave.
	AgentCap int
	// MaxFixAttempts bounds fix-mode invocations per wave.
	MaxFixAttempts int
	// GlobalConcurrency caps agent invocations running at once.
	GlobalConcurrency int
	// TaskTimeout is the per-invocation deadline. Zero disables it.
	TaskTimeout time.Duration
	// GitPush pushes the wave branch after a successful wave commit.
	GitPush bool
	// BranchPrefix is prepended to wave branch names.
	BranchPrefix string
}

func (o Options) withDefaults() Options {
	if o.AgentCap <= 0 {
		o.AgentCap = wave.DefaultAgentCap
	}
	if o.MaxFixAttempts < 0 {
		o.MaxFixAttempts = 0
	}
	if o.GlobalConcurrency <= 0 {
		o.GlobalConcurrency = 10
	}
	if o.BranchPrefix == "" {
		o.BranchPrefix = "neuralaunch/"
	}
	return o
}

// Engine advances projects through the lifecycle. It holds no per-project
// state; everything is loaded from the store on each call.
type Engine struct {
	db       *store.DB
	registry *agent.Registry
	ws       workspace.Workspace
	emitter  *EventEmitter
	logger   *DebugLogger
	opts     Options
}

// New creates an engine. Emitter and logger may be nil.
func New(db *store.DB, registry *agent.Registry, ws workspace.Workspace, emitter *EventEmitter, logger *DebugLogger, opts Options) *Engine {
	if logger == nil {
		logger = NopLogger()
	}
	return &Engine{
		db:       db,
		registry: registry,
		ws:       ws,
		emitter:  emitter,
		logger:   logger,
		opts:     opts.withDefaults(),
	}
}

// AdvanceResult reports the outcome of one Advance invocation.
type AdvanceResult struct {
	// ProjectID is the project that was advanced.
	ProjectID string
	// PhaseBefore is the phase when the trigger arrived.
	PhaseBefore models.Phase
	// PhaseAfter is the phase after the transition, equal to PhaseBefore
	// when no transition happened.
	PhaseAfter models.Phase
	// Progress is the overall completion percentage after the call.
	Progress int
	// AwaitingApproval is true when the project is parked in plan review.
	AwaitingApproval bool
	// Cycle describes the wave that ran, if one did.
	Cycle *CycleResult
}

// Advance performs at most one lifecycle transition for the project. It is
// the single entry point for triggers: each call loads state, does one unit
// of work, persists, and returns. Re-delivering a trigger for work that
// already finished is a no-op, not an error.
//
// retryWave permits scheduling the tasks of a terminally failed wave into a
// fresh wave; the failed wave's number is never reused.
func (e *Engine) Advance(ctx context.Context, projectID string, retryWave bool) (*AdvanceResult, error) {
	project, err := e.db.GetProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}
	if project.Cancelled {
		return nil, ErrProjectCancelled
	}

	res := &AdvanceResult{
		ProjectID:   project.ID,
		PhaseBefore: project.Phase,
		PhaseAfter:  project.Phase,
	}

	e.logger.Log("advance project=%s phase=%s retry=%v", project.ID, project.Phase, retryWave)

	switch project.Phase {
	case models.PhaseComplete:
		res.Progress = Progress(project.Phase, 0, 0)
		return res, nil

	case models.PhaseInitializing:
		if err := e.completePhase(project); err != nil {
			return nil, err
		}

	case models.PhaseAnalysis, models.PhaseResearch, models.PhaseValidation,
		models.PhaseDeployment, models.PhaseMonitoring:
		if err := e.advanceSingleShot(ctx, project); err != nil {
			return nil, err
		}

	case models.PhasePlanning:
		if err := e.advancePlanning(ctx, project); err != nil {
			return nil, err
		}

	case models.PhasePlanReview:
		approved, err := e.db.IsApproved(project.ID)
		if err != nil {
			return nil, fmt.Errorf("check approval: %w", err)
		}
		if !approved {
			res.AwaitingApproval = true
			res.Progress = Progress(project.Phase, 0, 0)
			e.emitter.Emit(Event{
				Type:      EventAwaitingApproval,
				ProjectID: project.ID,
				Phase:     project.Phase,
				TaskIndex: -1,
				Message:   "plan awaiting human approval",
				Progress:  res.Progress,
			})
			return res, nil
		}
		if err := e.completePhase(project); err != nil {
			return nil, err
		}

	case models.PhaseWaveExecution:
		cycle, err := e.advanceWaveExecution(ctx, project, retryWave)
		if err != nil {
			return nil, err
		}
		res.Cycle = cycle

	default:
		return nil, fmt.Errorf("project %s is in unknown phase %q", project.ID, project.Phase)
	}

	res.PhaseAfter = project.Phase
	res.Progress, err = e.projectProgress(project)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// advanceSingleShot runs the phase's agent once and moves on. If the phase
// is already recorded complete (a re-delivered trigger after a crash between
// the phase work and the transition) the agent is skipped.
func (e *Engine) advanceSingleShot(ctx context.Context, project *models.Project) error {
	if project.PhaseCompleted(project.Phase) {
		return e.transition(project)
	}

	kind, ok := AgentForPhase(project.Phase)
	if !ok {
		return fmt.Errorf("no agent mapped for phase %s", project.Phase)
	}

	result, err := e.runPhaseAgent(ctx, project, kind)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("%s agent failed in phase %s: %s", kind, project.Phase, result.Error)
	}

	return e.completePhase(project)
}

// advancePlanning runs the planner, parses and validates the produced plan,
// and persists it before entering review. A malformed plan rejects the
// transition; nothing is persisted.
func (e *Engine) advancePlanning(ctx context.Context, project *models.Project) error {
	if project.PhaseCompleted(project.Phase) {
		return e.transition(project)
	}

	result, err := e.runPhaseAgent(ctx, project, models.AgentPlanner)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("planner failed: %s", result.Error)
	}

	pl, err := extractPlan(result.Output)
	if err != nil {
		return fmt.Errorf("planner output: %w", err)
	}
	pl.ProjectID = project.ID
	if err := plan.Validate(pl); err != nil {
		return fmt.Errorf("plan rejected: %w", err)
	}
	if err := e.db.SavePlan(pl); err != nil {
		return fmt.Errorf("persist plan: %w", err)
	}

	e.logger.Log("plan saved project=%s phases=%d tasks=%d", project.ID, len(pl.Phases), pl.TotalTasks())
	return e.completePhase(project)
}

// runPhaseAgent executes one single-shot phase invocation and records it in
// the audit log regardless of outcome.
func (e *Engine) runPhaseAgent(ctx context.Context, project *models.Project, kind models.AgentKind) (agent.Result, error) {
	runner, err := e.registry.Get(kind)
	if err != nil {
		return agent.Result{}, err
	}

	req := agent.Request{
		ProjectID: project.ID,
		Blueprint: project.Blueprint,
		Phase:     project.Phase,
	}

	start := time.Now()
	result, err := agent.ExecuteWithTimeout(ctx, runner, req, e.opts.TaskTimeout)
	if err != nil {
		return agent.Result{}, fmt.Errorf("%s agent: %w", kind, err)
	}

	exec := &models.AgentExecution{
		ID:         uuid.NewString(),
		ProjectID:  project.ID,
		Agent:      kind,
		Phase:      project.Phase,
		WaveNumber: 0,
		TaskIndex:  -1,
		Success:    result.Success,
		Duration:   time.Since(start),
		ErrorKind:  result.ErrorKind,
		Error:      result.Error,
		Timestamp:  time.Now().UTC(),
	}
	if err := e.db.AppendExecution(exec); err != nil {
		return agent.Result{}, fmt.Errorf("record execution: %w", err)
	}
	return result, nil
}

// completePhase records the current phase as done and transitions.
func (e *Engine) completePhase(project *models.Project) error {
	if !project.PhaseCompleted(project.Phase) {
		project.CompletedPhases = append(project.CompletedPhases, project.Phase)
	}
	return e.transition(project)
}

// transition moves the project to the next phase and persists it.
func (e *Engine) transition(project *models.Project) error {
	next := project.Phase.Next()
	if next == "" || next == project.Phase {
		return nil
	}
	from := project.Phase
	project.Phase = next
	project.UpdatedAt = time.Now().UTC()
	if err := e.db.UpdateProject(project); err != nil {
		return fmt.Errorf("persist phase transition %s -> %s: %w", from, next, err)
	}

	e.logger.Log("phase %s -> %s project=%s", from, next, project.ID)
	e.emitter.Emit(Event{
		Type:      EventPhaseAdvanced,
		ProjectID: project.ID,
		Phase:     next,
		TaskIndex: -1,
		Message:   fmt.Sprintf("phase %s complete", from),
		Progress:  Progress(next, 0, 0),
	})
	return nil
}

// projectProgress computes the overall percentage, consulting wave counts
// only when the project is mid wave-execution.
func (e *Engine) projectProgress(project *models.Project) (int, error) {
	if project.Phase != models.PhaseWaveExecution {
		return Progress(project.Phase, 0, 0), nil
	}

	completed, _, err := e.db.WaveCounts(project.ID)
	if err != nil {
		return 0, fmt.Errorf("wave counts: %w", err)
	}
	total, err := e.estimateTotalWaves(project, completed)
	if err != nil {
		return 0, err
	}
	return Progress(project.Phase, completed, total), nil
}

// estimateTotalWaves projects how many waves the whole plan needs: waves
// already completed plus a dry-run partition of every unfinished task.
func (e *Engine) estimateTotalWaves(project *models.Project, completedWaves int) (int, error) {
	pl, err := e.db.GetPlan(project.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return completedWaves, nil
		}
		return 0, fmt.Errorf("load plan: %w", err)
	}

	total := completedWaves
	for i := range pl.Phases {
		ph := &pl.Phases[i]
		states, err := e.db.TaskStates(project.ID, ph.Name)
		if err != nil {
			return 0, fmt.Errorf("task states for %s: %w", ph.Name, err)
		}

		tasks := make([]models.Task, len(ph.Tasks))
		copy(tasks, ph.Tasks)
		applyStates(tasks, states)
		// Failed tasks will re-enter a retry wave eventually; count them
		// as pending for estimation purposes.
		for i := range tasks {
			if tasks[i].Status == models.TaskStatusFailed || tasks[i].Status == models.TaskStatusAssigned || tasks[i].Status == models.TaskStatusInProgress {
				tasks[i].Status = models.TaskStatusPending
			}
		}

		waves, err := wave.Partition(tasks, e.opts.AgentCap)
		if err != nil {
			return 0, err
		}
		total += len(waves)
	}
	return total, nil
}

// applyStates overlays persisted task statuses onto a plan's task list.
func applyStates(tasks []models.Task, states map[int]store.TaskState) {
	for i := range tasks {
		if st, ok := states[tasks[i].Index]; ok {
			tasks[i].Status = st.Status
			tasks[i].Error = st.Error
		}
	}
}

// extractPlan pulls the plan JSON out of a planner response, tolerating
// prose around the JSON body.
func extractPlan(output string) (*plan.Plan, error) {
	start := strings.Index(output, "{")
	end := strings.LastIndex(output, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no plan JSON found in planner output")
	}
	return plan.Unmarshal([]byte(output[start : end+1]))
}
