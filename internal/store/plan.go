package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/plan"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

// SavePlan persists an accepted execution plan and seeds one task-status row
// per plan task, all within a single transaction. The plan must already have
// passed plan.Validate.
func (db *DB) SavePlan(p *plan.Plan) error {
	data, err := p.Marshal()
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	now := formatTime(time.Now())

	return db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO plans (project_id, plan_json, accepted_at) VALUES (?, ?, ?)
			ON CONFLICT(project_id) DO UPDATE SET plan_json = excluded.plan_json, accepted_at = excluded.accepted_at
		`, p.ProjectID, string(data), now); err != nil {
			return fmt.Errorf("save plan: %w", err)
		}

		for i := range p.Phases {
			ph := &p.Phases[i]
			for j := range ph.Tasks {
				t := &ph.Tasks[j]
				status := t.Status
				if status == "" {
					status = models.TaskStatusPending
				}
				if _, err := tx.Exec(`
					INSERT INTO tasks (project_id, plan_phase, task_index, agent, status, updated_at)
					VALUES (?, ?, ?, ?, ?, ?)
					ON CONFLICT(project_id, plan_phase, task_index) DO NOTHING
				`, p.ProjectID, ph.Name, j, string(t.Agent), string(status), now); err != nil {
					return fmt.Errorf("seed task %s/%d: %w", ph.Name, j, err)
				}
			}
		}
		return nil
	})
}

// GetPlan loads the accepted plan for a project. Returns ErrNotFound if none.
func (db *DB) GetPlan(projectID string) (*plan.Plan, error) {
	var data string
	err := db.QueryRow(`SELECT plan_json FROM plans WHERE project_id = ?`, projectID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return plan.Unmarshal([]byte(data))
}

// RecordApproval marks the project's plan as approved by the given actor.
// The plan_review phase waits on this signal.
func (db *DB) RecordApproval(projectID, approvedBy string) error {
	res, err := db.Exec(`
		UPDATE plans SET approved_at = ?, approved_by = ? WHERE project_id = ?
	`, formatTime(time.Now()), approvedBy, projectID)
	if err != nil {
		return fmt.Errorf("record approval: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// IsApproved reports whether the project's plan has been approved.
func (db *DB) IsApproved(projectID string) (bool, error) {
	var approvedAt sql.NullString
	err := db.QueryRow(`SELECT approved_at FROM plans WHERE project_id = ?`, projectID).Scan(&approvedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check approval: %w", err)
	}
	return approvedAt.Valid, nil
}

// TaskState is a task's persisted execution state.
type TaskState struct {
	// Status is the task's current status.
	Status models.TaskStatus
	// Error is the failure message, if any.
	Error string
}

// SetTaskStatus updates one task's status row.
func (db *DB) SetTaskStatus(projectID, planPhase string, taskIndex int, status models.TaskStatus, errMsg string) error {
	res, err := db.Exec(`
		UPDATE tasks SET status = ?, error = ?, updated_at = ?
		WHERE project_id = ? AND plan_phase = ? AND task_index = ?
	`, string(status), errMsg, formatTime(time.Now()), projectID, planPhase, taskIndex)
	if err != nil {
		return fmt.Errorf("set task status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// TaskStates returns the persisted state of every task in a plan phase,
// keyed by task index.
func (db *DB) TaskStates(projectID, planPhase string) (map[int]TaskState, error) {
	rows, err := db.Query(`
		SELECT task_index, status, COALESCE(error, '')
		FROM tasks WHERE project_id = ? AND plan_phase = ?
	`, projectID, planPhase)
	if err != nil {
		return nil, fmt.Errorf("list task states: %w", err)
	}
	defer rows.Close()

	states := make(map[int]TaskState)
	for rows.Next() {
		var idx int
		var status, errMsg string
		if err := rows.Scan(&idx, &status, &errMsg); err != nil {
			return nil, fmt.Errorf("scan task state: %w", err)
		}
		states[idx] = TaskState{Status: models.TaskStatus(status), Error: errMsg}
	}
	return states, rows.Err()
}
