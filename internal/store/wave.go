package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

// StartWave atomically creates a new running wave for the project. The wave
// number is assigned inside the transaction (max existing + 1) so numbers are
// monotonic per project. If any wave for the project is already running, the
// insert is rejected with ErrWaveRunning: no two waves for one project may
// run simultaneously.
func (db *DB) StartWave(w *models.Wave) error {
	indexes, err := json.Marshal(w.TaskIndexes)
	if err != nil {
		return fmt.Errorf("encode task indexes: %w", err)
	}

	return db.Transaction(func(tx *sql.Tx) error {
		var running int
		err := tx.QueryRow(`
			SELECT COUNT(*) FROM waves WHERE project_id = ? AND status = ?
		`, w.ProjectID, string(models.WaveStatusRunning)).Scan(&running)
		if err != nil {
			return fmt.Errorf("check running waves: %w", err)
		}
		if running > 0 {
			return ErrWaveRunning
		}

		if err := tx.QueryRow(`
			SELECT COALESCE(MAX(number), 0) + 1 FROM waves WHERE project_id = ?
		`, w.ProjectID).Scan(&w.Number); err != nil {
			return fmt.Errorf("next wave number: %w", err)
		}

		w.Status = models.WaveStatusRunning
		if w.CreatedAt.IsZero() {
			w.CreatedAt = time.Now()
		}

		if _, err := tx.Exec(`
			INSERT INTO waves (id, project_id, number, plan_phase, task_indexes, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, w.ID, w.ProjectID, w.Number, w.PlanPhase, string(indexes),
			string(w.Status), formatTime(w.CreatedAt)); err != nil {
			return fmt.Errorf("insert wave: %w", err)
		}
		return nil
	})
}

// ResolveWave marks a running wave completed or failed and stamps completion.
func (db *DB) ResolveWave(waveID string, status models.WaveStatus) error {
	if status != models.WaveStatusCompleted && status != models.WaveStatusFailed {
		return fmt.Errorf("invalid resolution status %q", status)
	}
	res, err := db.Exec(`
		UPDATE waves SET status = ?, completed_at = ? WHERE id = ? AND status = ?
	`, string(status), formatTime(time.Now()), waveID, string(models.WaveStatusRunning))
	if err != nil {
		return fmt.Errorf("resolve wave: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RunningWave returns the project's running wave, or nil if none.
func (db *DB) RunningWave(projectID string) (*models.Wave, error) {
	row := db.QueryRow(`
		SELECT id, project_id, number, plan_phase, task_indexes, status, created_at, completed_at
		FROM waves WHERE project_id = ? AND status = ?
	`, projectID, string(models.WaveStatusRunning))

	w, err := scanWave(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get running wave: %w", err)
	}
	return w, nil
}

// ListWaves returns all waves for a project ordered by number.
func (db *DB) ListWaves(projectID string) ([]*models.Wave, error) {
	rows, err := db.Query(`
		SELECT id, project_id, number, plan_phase, task_indexes, status, created_at, completed_at
		FROM waves WHERE project_id = ? ORDER BY number
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list waves: %w", err)
	}
	defer rows.Close()

	var waves []*models.Wave
	for rows.Next() {
		w, err := scanWave(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wave: %w", err)
		}
		waves = append(waves, w)
	}
	return waves, rows.Err()
}

// WaveCounts returns the number of completed waves and total waves recorded
// for the project. Used by the progress projector.
func (db *DB) WaveCounts(projectID string) (completed, total int, err error) {
	err = db.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COUNT(*)
		FROM waves WHERE project_id = ?
	`, string(models.WaveStatusCompleted), projectID).Scan(&completed, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("wave counts: %w", err)
	}
	return completed, total, nil
}

func scanWave(s scanner) (*models.Wave, error) {
	var w models.Wave
	var indexesJSON, status, createdAt string
	var completedAt sql.NullString

	if err := s.Scan(&w.ID, &w.ProjectID, &w.Number, &w.PlanPhase, &indexesJSON, &status, &createdAt, &completedAt); err != nil {
		return nil, err
	}

	w.Status = models.WaveStatus(status)
	if err := json.Unmarshal([]byte(indexesJSON), &w.TaskIndexes); err != nil {
		return nil, fmt.Errorf("decode task indexes: %w", err)
	}
	if t, err := parseTime(createdAt); err == nil {
		w.CreatedAt = t
	}
	w.CompletedAt = parseNullableTime(completedAt)
	return &w, nil
}
