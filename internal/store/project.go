package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

// CreateProject inserts a new project record.
func (db *DB) CreateProject(p *models.Project) error {
	completed, err := json.Marshal(p.CompletedPhases)
	if err != nil {
		return fmt.Errorf("encode completed phases: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO projects (id, owner, phase, completed_phases, blueprint, cancelled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Owner, string(p.Phase), string(completed), p.Blueprint,
		boolToInt(p.Cancelled), formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// GetProject loads a project by ID. Returns ErrNotFound if absent.
func (db *DB) GetProject(id string) (*models.Project, error) {
	row := db.QueryRow(`
		SELECT id, owner, phase, completed_phases, blueprint, cancelled, created_at, updated_at
		FROM projects WHERE id = ?
	`, id)

	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// UpdateProject writes the project's mutable fields (phase, completed phases,
// cancelled flag) and bumps updated_at.
func (db *DB) UpdateProject(p *models.Project) error {
	completed, err := json.Marshal(p.CompletedPhases)
	if err != nil {
		return fmt.Errorf("encode completed phases: %w", err)
	}

	res, err := db.Exec(`
		UPDATE projects
		SET phase = ?, completed_phases = ?, cancelled = ?, updated_at = ?
		WHERE id = ?
	`, string(p.Phase), string(completed), boolToInt(p.Cancelled), formatTime(time.Now()), p.ID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListProjects returns all projects ordered by creation time.
func (db *DB) ListProjects() ([]*models.Project, error) {
	rows, err := db.Query(`
		SELECT id, owner, phase, completed_phases, blueprint, cancelled, created_at, updated_at
		FROM projects ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*models.Project, error) {
	var p models.Project
	var phase, completedJSON, createdAt, updatedAt string
	var cancelled int

	if err := s.Scan(&p.ID, &p.Owner, &phase, &completedJSON, &p.Blueprint, &cancelled, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	p.Phase = models.Phase(phase)
	p.Cancelled = cancelled != 0
	if err := json.Unmarshal([]byte(completedJSON), &p.CompletedPhases); err != nil {
		return nil, fmt.Errorf("decode completed phases: %w", err)
	}
	if t, err := parseTime(createdAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := parseTime(updatedAt); err == nil {
		p.UpdatedAt = t
	}
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
