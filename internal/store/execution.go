package store

import (
	"fmt"
	"time"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

// AppendExecution writes one agent-invocation audit record. The log is
// append-only and written after every agent call regardless of outcome.
func (db *DB) AppendExecution(e *models.AgentExecution) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	_, err := db.Exec(`
		INSERT INTO executions (id, project_id, agent, phase, wave_number, task_index, fix_attempt, success, duration_ms, error_kind, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.ProjectID, string(e.Agent), string(e.Phase), e.WaveNumber, e.TaskIndex,
		e.FixAttempt, boolToInt(e.Success), e.Duration.Milliseconds(),
		string(e.ErrorKind), e.Error, formatTime(e.Timestamp))
	if err != nil {
		return fmt.Errorf("append execution: %w", err)
	}
	return nil
}

// ListExecutions returns the most recent audit records for a project, newest
// first, up to limit (all if limit <= 0).
func (db *DB) ListExecutions(projectID string, limit int) ([]*models.AgentExecution, error) {
	query := `
		SELECT id, project_id, agent, phase, wave_number, task_index, fix_attempt, success, duration_ms, COALESCE(error_kind, ''), COALESCE(error, ''), created_at
		FROM executions WHERE project_id = ? ORDER BY created_at DESC
	`
	args := []any{projectID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	var execs []*models.AgentExecution
	for rows.Next() {
		var e models.AgentExecution
		var agent, phase, errorKind, errMsg, createdAt string
		var success int
		var durationMS int64

		if err := rows.Scan(&e.ID, &e.ProjectID, &agent, &phase, &e.WaveNumber, &e.TaskIndex,
			&e.FixAttempt, &success, &durationMS, &errorKind, &errMsg, &createdAt); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}

		e.Agent = models.AgentKind(agent)
		e.Phase = models.Phase(phase)
		e.Success = success != 0
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.ErrorKind = models.ErrorKind(errorKind)
		e.Error = errMsg
		if t, err := parseTime(createdAt); err == nil {
			e.Timestamp = t
		}
		execs = append(execs, &e)
	}
	return execs, rows.Err()
}

// CountFixAttempts returns the number of fix-mode executions recorded for a
// given wave of a project.
func (db *DB) CountFixAttempts(projectID string, waveNumber int) (int, error) {
	var n int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM executions
		WHERE project_id = ? AND wave_number = ? AND fix_attempt > 0
	`, projectID, waveNumber).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count fix attempts: %w", err)
	}
	return n, nil
}

// PurgeOldExecutions deletes audit records older than the given duration.
// Returns the number of records deleted.
func (db *DB) PurgeOldExecutions(olderThan time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-olderThan))

	result, err := db.Exec(`DELETE FROM executions WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge old executions: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return count, nil
}
