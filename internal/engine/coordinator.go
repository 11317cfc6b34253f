package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/agent"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/plan"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/store"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/wave"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

// CycleResult describes one wave cycle.
type CycleResult struct {
	// WaveNumber is the wave that ran, 0 when no wave was scheduled.
	WaveNumber int
	// PlanPhase is the plan phase the wave belonged to.
	PlanPhase string
	// Succeeded lists task indexes that completed, including after fixes.
	Succeeded []int
	// Failed lists task indexes still failed after fix attempts.
	Failed []int
	// PhaseDone is true when every plan phase's tasks are complete and
	// the project advanced out of wave execution.
	PhaseDone bool
}

// taskOutcome is the result of one task's dispatch within a wave.
type taskOutcome struct {
	index  int
	task   *models.Task
	result agent.Result
}

// advanceWaveExecution runs one wave cycle: reconcile any stale wave,
// select the next wave, dispatch its tasks concurrently, run the fix loop
// on failures, and resolve. When nothing is left to run the project
// advances to deployment.
func (e *Engine) advanceWaveExecution(ctx context.Context, project *models.Project, retryWave bool) (*CycleResult, error) {
	pl, err := e.db.GetPlan(project.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoPlan
		}
		return nil, fmt.Errorf("load plan: %w", err)
	}

	if err := e.reconcileRunningWave(project.ID); err != nil {
		return nil, err
	}

	phase, tasks, err := e.activePlanPhase(project.ID, pl)
	if err != nil {
		return nil, err
	}
	if phase == nil {
		if err := e.completePhase(project); err != nil {
			return nil, err
		}
		return &CycleResult{PhaseDone: true}, nil
	}

	if err := e.prepareTasks(project.ID, phase.Name, tasks, retryWave); err != nil {
		return nil, err
	}

	set, err := wave.Build(tasks, wave.CompletedSet(tasks), e.opts.AgentCap)
	if err != nil {
		return nil, fmt.Errorf("build wave for %s: %w", phase.Name, err)
	}
	if set.PhaseDone {
		// Every remaining task is terminal; the phase scan will pick up
		// the next plan phase on the following trigger.
		return &CycleResult{PlanPhase: phase.Name}, nil
	}

	wv := &models.Wave{
		ID:        uuid.NewString(),
		ProjectID: project.ID,
		PlanPhase: phase.Name,
	}
	wv.TaskIndexes = append(wv.TaskIndexes, set.TaskIndexes...)
	if err := e.db.StartWave(wv); err != nil {
		if errors.Is(err, store.ErrWaveRunning) {
			return nil, ErrConcurrencyViolation
		}
		return nil, fmt.Errorf("start wave: %w", err)
	}

	e.logger.Log("wave %d started project=%s phase=%s tasks=%v deferred=%d",
		wv.Number, project.ID, phase.Name, wv.TaskIndexes, set.Deferred)
	e.emitter.Emit(Event{
		Type:       EventWaveStarted,
		ProjectID:  project.ID,
		Phase:      project.Phase,
		WaveNumber: wv.Number,
		TaskIndex:  -1,
		Message:    fmt.Sprintf("wave %d: %d tasks in plan phase %s", wv.Number, len(wv.TaskIndexes), phase.Name),
	})

	for _, idx := range wv.TaskIndexes {
		if err := e.db.SetTaskStatus(project.ID, phase.Name, idx, models.TaskStatusAssigned, ""); err != nil {
			return nil, fmt.Errorf("assign task %d: %w", idx, err)
		}
	}

	branch := fmt.Sprintf("%swave-%d", e.opts.BranchPrefix, wv.Number)
	if err := e.ws.CreateBranch(ctx, branch); err != nil {
		return nil, fmt.Errorf("create wave branch: %w", err)
	}

	outcomes := e.dispatchWave(ctx, project, wv, tasks)

	cycle := &CycleResult{WaveNumber: wv.Number, PlanPhase: phase.Name}
	fixer := e.newFixController()
	for _, out := range outcomes {
		if out.result.Success {
			cycle.Succeeded = append(cycle.Succeeded, out.index)
			continue
		}
		fixed, err := fixer.Fix(ctx, project, wv, phase.Name, out.task, out.result)
		if err != nil {
			return nil, err
		}
		if fixed {
			cycle.Succeeded = append(cycle.Succeeded, out.index)
		} else {
			cycle.Failed = append(cycle.Failed, out.index)
		}
	}

	if len(cycle.Failed) > 0 {
		if err := e.db.ResolveWave(wv.ID, models.WaveStatusFailed); err != nil {
			return nil, fmt.Errorf("resolve wave %d: %w", wv.Number, err)
		}
		e.logger.Log("wave %d failed project=%s failed_tasks=%v", wv.Number, project.ID, cycle.Failed)
		e.emitter.Emit(Event{
			Type:       EventWaveFailed,
			ProjectID:  project.ID,
			Phase:      project.Phase,
			WaveNumber: wv.Number,
			TaskIndex:  -1,
			Message:    fmt.Sprintf("wave %d: %d of %d tasks failed", wv.Number, len(cycle.Failed), len(wv.TaskIndexes)),
		})
		return cycle, nil
	}

	if err := e.db.ResolveWave(wv.ID, models.WaveStatusCompleted); err != nil {
		return nil, fmt.Errorf("resolve wave %d: %w", wv.Number, err)
	}
	if err := e.ws.Commit(ctx, fmt.Sprintf("wave %d: %s", wv.Number, phase.Name)); err != nil {
		return nil, fmt.Errorf("commit wave %d: %w", wv.Number, err)
	}
	if e.opts.GitPush {
		if err := e.ws.Push(ctx); err != nil {
			return nil, fmt.Errorf("push wave %d: %w", wv.Number, err)
		}
	}

	e.logger.Log("wave %d completed project=%s", wv.Number, project.ID)
	e.emitter.Emit(Event{
		Type:       EventWaveCompleted,
		ProjectID:  project.ID,
		Phase:      project.Phase,
		WaveNumber: wv.Number,
		TaskIndex:  -1,
		Message:    fmt.Sprintf("wave %d complete", wv.Number),
	})

	done, err := e.allPlanPhasesDone(project.ID, pl)
	if err != nil {
		return nil, err
	}
	if done {
		if err := e.completePhase(project); err != nil {
			return nil, err
		}
		cycle.PhaseDone = true
	}
	return cycle, nil
}

// reconcileRunningWave handles a wave left running by a crashed invocation.
// If any of its tasks is still assigned or in progress another invocation
// may be live, so the trigger is rejected. If every task is terminal the
// wave is resolved from the persisted statuses and scheduling continues.
func (e *Engine) reconcileRunningWave(projectID string) error {
	rw, err := e.db.RunningWave(projectID)
	if err != nil {
		return fmt.Errorf("check running wave: %w", err)
	}
	if rw == nil {
		return nil
	}

	states, err := e.db.TaskStates(projectID, rw.PlanPhase)
	if err != nil {
		return fmt.Errorf("task states for %s: %w", rw.PlanPhase, err)
	}

	allComplete := true
	for _, idx := range rw.TaskIndexes {
		switch states[idx].Status {
		case models.TaskStatusAssigned, models.TaskStatusInProgress:
			return ErrConcurrencyViolation
		case models.TaskStatusComplete:
		default:
			allComplete = false
		}
	}

	status := models.WaveStatusFailed
	if allComplete {
		status = models.WaveStatusCompleted
	}
	e.logger.Log("reconciled stale wave %d project=%s as %s", rw.Number, projectID, status)
	return e.db.ResolveWave(rw.ID, status)
}

// activePlanPhase returns the first plan phase with unfinished tasks, with
// persisted statuses overlaid, or nil when every phase is complete.
func (e *Engine) activePlanPhase(projectID string, pl *plan.Plan) (*plan.Phase, []models.Task, error) {
	for i := range pl.Phases {
		ph := &pl.Phases[i]
		states, err := e.db.TaskStates(projectID, ph.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("task states for %s: %w", ph.Name, err)
		}

		tasks := make([]models.Task, len(ph.Tasks))
		copy(tasks, ph.Tasks)
		applyStates(tasks, states)

		for j := range tasks {
			if tasks[j].Status != models.TaskStatusComplete {
				return ph, tasks, nil
			}
		}
	}
	return nil, nil, nil
}

// allPlanPhasesDone reports whether every task in every plan phase is
// complete.
func (e *Engine) allPlanPhasesDone(projectID string, pl *plan.Plan) (bool, error) {
	ph, _, err := e.activePlanPhase(projectID, pl)
	if err != nil {
		return false, err
	}
	return ph == nil, nil
}

// prepareTasks resets stale statuses before wave selection. Tasks stuck in
// assigned or in_progress belong to a wave that no longer runs and go back
// to pending. Failed tasks go back to pending only on an explicit retry;
// otherwise their presence rejects the trigger so failures stay visible
// until someone asks for a new wave.
func (e *Engine) prepareTasks(projectID, planPhase string, tasks []models.Task, retryWave bool) error {
	hasFailed := false
	for i := range tasks {
		switch tasks[i].Status {
		case models.TaskStatusAssigned, models.TaskStatusInProgress:
			if err := e.db.SetTaskStatus(projectID, planPhase, tasks[i].Index, models.TaskStatusPending, ""); err != nil {
				return fmt.Errorf("reset stale task %d: %w", tasks[i].Index, err)
			}
			tasks[i].Status = models.TaskStatusPending
			tasks[i].Error = ""
		case models.TaskStatusFailed:
			hasFailed = true
		}
	}

	if !hasFailed {
		return nil
	}
	if !retryWave {
		return ErrWaveFailed
	}
	for i := range tasks {
		if tasks[i].Status != models.TaskStatusFailed {
			continue
		}
		if err := e.db.SetTaskStatus(projectID, planPhase, tasks[i].Index, models.TaskStatusPending, ""); err != nil {
			return fmt.Errorf("reset failed task %d: %w", tasks[i].Index, err)
		}
		tasks[i].Status = models.TaskStatusPending
		tasks[i].Error = ""
	}
	return nil
}

// dispatchWave runs the wave's tasks concurrently under the global
// concurrency cap and returns one outcome per task.
func (e *Engine) dispatchWave(ctx context.Context, project *models.Project, wv *models.Wave, tasks []models.Task) []taskOutcome {
	sem := make(chan struct{}, e.opts.GlobalConcurrency)
	outcomes := make([]taskOutcome, len(wv.TaskIndexes))

	var wg sync.WaitGroup
	for i, idx := range wv.TaskIndexes {
		wg.Add(1)
		go func(slot, idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			task := &tasks[idx]
			outcomes[slot] = taskOutcome{
				index:  idx,
				task:   task,
				result: e.runTask(ctx, project, wv, task),
			}
		}(i, idx)
	}
	wg.Wait()

	return outcomes
}

// runTask executes one task's agent invocation, applies its output to the
// workspace, verifies it, and persists status plus an audit record.
func (e *Engine) runTask(ctx context.Context, project *models.Project, wv *models.Wave, task *models.Task) agent.Result {
	fail := func(kind models.ErrorKind, msg string) agent.Result {
		return agent.Result{Success: false, ErrorKind: kind, Error: msg}
	}

	if err := e.db.SetTaskStatus(project.ID, wv.PlanPhase, task.Index, models.TaskStatusInProgress, ""); err != nil {
		return fail(models.ErrorKindTransient, fmt.Sprintf("mark task in progress: %v", err))
	}
	e.emitter.Emit(Event{
		Type:       EventTaskStarted,
		ProjectID:  project.ID,
		Phase:      project.Phase,
		WaveNumber: wv.Number,
		TaskIndex:  task.Index,
		Agent:      task.Agent,
		Message:    task.Description,
	})

	start := time.Now()
	result := e.executeTask(ctx, project, wv, task)

	status := models.TaskStatusComplete
	eventType := EventTaskCompleted
	if !result.Success {
		status = models.TaskStatusFailed
		eventType = EventTaskFailed
	}
	if err := e.db.SetTaskStatus(project.ID, wv.PlanPhase, task.Index, status, result.Error); err != nil {
		e.logger.Log("persist task %d status: %v", task.Index, err)
	}

	exec := &models.AgentExecution{
		ID:         uuid.NewString(),
		ProjectID:  project.ID,
		Agent:      task.Agent,
		Phase:      project.Phase,
		WaveNumber: wv.Number,
		TaskIndex:  task.Index,
		Success:    result.Success,
		Duration:   time.Since(start),
		ErrorKind:  result.ErrorKind,
		Error:      result.Error,
		Timestamp:  time.Now().UTC(),
	}
	if err := e.db.AppendExecution(exec); err != nil {
		e.logger.Log("record execution for task %d: %v", task.Index, err)
	}

	e.emitter.Emit(Event{
		Type:       eventType,
		ProjectID:  project.ID,
		Phase:      project.Phase,
		WaveNumber: wv.Number,
		TaskIndex:  task.Index,
		Agent:      task.Agent,
		Message:    result.Error,
	})
	return result
}

// executeTask performs the agent call, file writes, and verification for
// one task without touching task status.
func (e *Engine) executeTask(ctx context.Context, project *models.Project, wv *models.Wave, task *models.Task) agent.Result {
	runner, err := e.registry.Get(task.Agent)
	if err != nil {
		return agent.Result{Success: false, ErrorKind: models.ErrorKindTransient, Error: err.Error()}
	}

	req := agent.Request{
		ProjectID: project.ID,
		Blueprint: project.Blueprint,
		Phase:     project.Phase,
		Task:      task,
	}
	result, err := agent.ExecuteWithTimeout(ctx, runner, req, e.opts.TaskTimeout)
	if err != nil {
		return agent.Result{Success: false, ErrorKind: models.ErrorKindTransient, Error: err.Error()}
	}
	if !result.Success {
		return result
	}

	if err := e.applyFiles(result.Files); err != nil {
		result.Success = false
		result.ErrorKind = models.ErrorKindTransient
		result.Error = err.Error()
		return result
	}

	if err := e.verifyTask(ctx, task); err != nil {
		result.Success = false
		result.ErrorKind = models.ErrorKindVerification
		result.Error = err.Error()
		return result
	}
	return result
}

// applyFiles writes agent-generated files into the workspace.
func (e *Engine) applyFiles(files []agent.GeneratedFile) error {
	for _, f := range files {
		if err := e.ws.WriteFile(f.Path, []byte(f.Content)); err != nil {
			return fmt.Errorf("apply %s: %w", f.Path, err)
		}
	}
	return nil
}

// verifyTask runs the task's verify commands inside the workspace. The
// first failing command fails the task.
func (e *Engine) verifyTask(ctx context.Context, task *models.Task) error {
	for _, cmd := range task.VerifyCommands {
		out, err := e.ws.ExecCommand(ctx, cmd)
		if err != nil {
			msg := strings.TrimSpace(string(out))
			if msg == "" {
				msg = err.Error()
			}
			return fmt.Errorf("verify %q: %s", cmd, msg)
		}
	}
	return nil
}
