package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/agent"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

// fixController drives the bounded fix loop for one wave. Fix attempts are
// counted in the audit log, so the bound holds across crashed and resumed
// invocations of the same wave.
type fixController struct {
	e *Engine
}

func (e *Engine) newFixController() *fixController {
	return &fixController{e: e}
}

// Fix attempts to repair a failed task. Issues are grouped by the agent
// that produced the faulty output and each group is dispatched to that
// agent in fix mode with the current file contents. The task succeeds when
// every group resolves and verification passes. Returns false once the
// attempt budget for the wave is spent.
func (f *fixController) Fix(ctx context.Context, project *models.Project, wv *models.Wave, planPhase string, task *models.Task, failed agent.Result) (bool, error) {
	e := f.e
	if e.opts.MaxFixAttempts <= 0 {
		return false, nil
	}

	used, err := e.db.CountFixAttempts(project.ID, wv.Number)
	if err != nil {
		return false, fmt.Errorf("count fix attempts: %w", err)
	}

	issues := failed.Issues
	if len(issues) == 0 {
		issues = []models.Issue{{
			Severity:    models.SeverityError,
			Message:     failed.Error,
			SourceAgent: task.Agent,
			TaskIndex:   task.Index,
		}}
	}

	for attempt := used + 1; attempt <= e.opts.MaxFixAttempts; attempt++ {
		e.logger.Log("fix attempt %d task=%d wave=%d project=%s", attempt, task.Index, wv.Number, project.ID)

		allResolved := true
		var nextIssues []models.Issue
		for source, group := range groupBySource(issues, task.Agent) {
			resolved, reported, err := f.dispatchFix(ctx, project, wv, task, source, group, attempt)
			if err != nil {
				return false, err
			}
			if !resolved {
				allResolved = false
			}
			nextIssues = append(nextIssues, reported...)
		}

		if allResolved {
			if err := e.verifyTask(ctx, task); err == nil {
				if err := e.db.SetTaskStatus(project.ID, planPhase, task.Index, models.TaskStatusComplete, ""); err != nil {
					return false, fmt.Errorf("mark task %d fixed: %w", task.Index, err)
				}
				e.emitter.Emit(Event{
					Type:       EventTaskCompleted,
					ProjectID:  project.ID,
					Phase:      project.Phase,
					WaveNumber: wv.Number,
					TaskIndex:  task.Index,
					Agent:      task.Agent,
					Message:    fmt.Sprintf("fixed on attempt %d", attempt),
				})
				return true, nil
			} else {
				nextIssues = append(nextIssues, models.Issue{
					Severity:    models.SeverityError,
					Message:     err.Error(),
					SourceAgent: task.Agent,
					TaskIndex:   task.Index,
				})
			}
		}

		if len(nextIssues) > 0 {
			issues = nextIssues
		}
	}

	e.logger.Log("fix budget exhausted task=%d wave=%d project=%s", task.Index, wv.Number, project.ID)
	return false, nil
}

// dispatchFix sends one fix-mode invocation to the agent whose output the
// issues blame, applies any rewritten files, and records the attempt.
func (f *fixController) dispatchFix(ctx context.Context, project *models.Project, wv *models.Wave, task *models.Task, source models.AgentKind, issues []models.Issue, attempt int) (resolved bool, reported []models.Issue, err error) {
	e := f.e

	runner, err := e.registry.Get(source)
	if err != nil {
		return false, nil, err
	}

	req := agent.Request{
		ProjectID:    project.ID,
		Blueprint:    project.Blueprint,
		Phase:        project.Phase,
		Task:         task,
		FixMode:      true,
		Issues:       issues,
		FileContents: f.collectFiles(task, issues),
		Attempt:      attempt,
	}

	e.emitter.Emit(Event{
		Type:       EventFixAttempt,
		ProjectID:  project.ID,
		Phase:      project.Phase,
		WaveNumber: wv.Number,
		TaskIndex:  task.Index,
		Agent:      source,
		Message:    fmt.Sprintf("fix attempt %d: %d issues", attempt, len(issues)),
	})

	start := time.Now()
	result, err := agent.ExecuteWithTimeout(ctx, runner, req, e.opts.TaskTimeout)
	if err != nil {
		return false, nil, fmt.Errorf("fix dispatch to %s: %w", source, err)
	}

	exec := &models.AgentExecution{
		ID:         uuid.NewString(),
		ProjectID:  project.ID,
		Agent:      source,
		Phase:      project.Phase,
		WaveNumber: wv.Number,
		TaskIndex:  task.Index,
		FixAttempt: attempt,
		Success:    result.Success,
		Duration:   time.Since(start),
		ErrorKind:  result.ErrorKind,
		Error:      result.Error,
		Timestamp:  time.Now().UTC(),
	}
	if err := e.db.AppendExecution(exec); err != nil {
		return false, nil, fmt.Errorf("record fix attempt: %w", err)
	}

	if !result.Success {
		return false, result.Issues, nil
	}
	if err := e.applyFiles(result.Files); err != nil {
		return false, nil, err
	}
	return true, result.Issues, nil
}

// collectFiles gathers current contents of the task's files plus any files
// the issues point at. Files that don't exist yet are skipped.
func (f *fixController) collectFiles(task *models.Task, issues []models.Issue) map[string]string {
	paths := make(map[string]bool)
	for _, p := range task.Files {
		paths[p] = true
	}
	for _, issue := range issues {
		if issue.File != "" {
			paths[issue.File] = true
		}
	}

	contents := make(map[string]string, len(paths))
	for p := range paths {
		data, err := f.e.ws.ReadFile(p)
		if err != nil {
			continue
		}
		contents[p] = string(data)
	}
	return contents
}

// groupBySource buckets issues by the agent whose output they blame,
// defaulting to the owning task's agent.
func groupBySource(issues []models.Issue, fallback models.AgentKind) map[models.AgentKind][]models.Issue {
	groups := make(map[models.AgentKind][]models.Issue)
	for _, issue := range issues {
		source := issue.SourceAgent
		if source == "" {
			source = fallback
		}
		groups[source] = append(groups[source], issue)
	}
	return groups
}
