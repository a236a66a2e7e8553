package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/slok/wbs/internal/model"
)

const projectColumns = `
	id, code, name, description, status, methodology,
	progress_percentage, created_at, updated_at
`

// CreateProject creates a new project in the repository.
func (r *Repository) CreateProject(ctx context.Context, p model.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.q.ExecContext(ctx, query,
		p.ID,
		nullString(p.Code),
		p.Name,
		p.Description,
		p.Status,
		p.Methodology,
		p.ProgressPercentage,
		p.CreatedAt.Unix(),
		p.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("could not insert project: %w", constraintErr(err, "project"))
	}

	r.logger.Debugf("Created project in repository: %s", p.ID)
	return nil
}

// GetProject retrieves a project by ID.
func (r *Repository) GetProject(ctx context.Context, id string) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	p, err := scanProject(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query project: %w", err)
	}

	return &p, nil
}

// GetProjectByCode retrieves a project by code.
func (r *Repository) GetProjectByCode(ctx context.Context, code string) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE code = ?`

	p, err := scanProject(r.q.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project with code %s: %w", code, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query project: %w", err)
	}

	return &p, nil
}

// ListProjects returns all projects, newest first.
func (r *Repository) ListProjects(ctx context.Context) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC, id DESC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not query projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return projects, nil
}

// UpdateProject updates an existing project.
func (r *Repository) UpdateProject(ctx context.Context, p model.Project) error {
	query := `
		UPDATE projects
		SET
			code = ?,
			name = ?,
			description = ?,
			status = ?,
			methodology = ?,
			progress_percentage = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.q.ExecContext(ctx, query,
		nullString(p.Code),
		p.Name,
		p.Description,
		p.Status,
		p.Methodology,
		p.ProgressPercentage,
		p.UpdatedAt.Unix(),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update project: %w", constraintErr(err, "project"))
	}
	if err := checkAffected(result, fmt.Errorf("project %s: %w", p.ID, model.ErrNotFound)); err != nil {
		return err
	}

	r.logger.Debugf("Updated project in repository: %s", p.ID)
	return nil
}

// UpdateProjectProgress sets the progress of a project.
func (r *Repository) UpdateProjectProgress(ctx context.Context, id string, progress int) error {
	query := `UPDATE projects SET progress_percentage = ?, updated_at = ? WHERE id = ?`

	result, err := r.q.ExecContext(ctx, query, progress, time.Now().UTC().Unix(), id)
	if err != nil {
		return fmt.Errorf("could not update project progress: %w", constraintErr(err, "project"))
	}

	return checkAffected(result, fmt.Errorf("project %s: %w", id, model.ErrNotFound))
}

// DeleteProject deletes a project, tasks are removed by the foreign key cascade.
func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete project: %w", err)
	}
	if err := checkAffected(result, fmt.Errorf("project %s: %w", id, model.ErrNotFound)); err != nil {
		return err
	}

	r.logger.Debugf("Deleted project from repository: %s", id)
	return nil
}

func scanProject(s scanner) (model.Project, error) {
	var p model.Project
	var code sql.NullString
	var createdAt, updatedAt int64

	err := s.Scan(
		&p.ID,
		&code,
		&p.Name,
		&p.Description,
		&p.Status,
		&p.Methodology,
		&p.ProgressPercentage,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.Project{}, err
	}

	p.Code = code.String
	p.CreatedAt = timeFromUnix(createdAt)
	p.UpdatedAt = timeFromUnix(updatedAt)

	return p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
