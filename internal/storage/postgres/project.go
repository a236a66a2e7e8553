package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/slok/wbs/internal/model"
)

const projectColumns = `id, code, name, description, status, methodology, progress_percentage, created_at, updated_at`

// CreateProject creates a new project in the repository.
func (r *Repository) CreateProject(ctx context.Context, p model.Project) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, nullable(p.Code), p.Name, p.Description, string(p.Status), string(p.Methodology),
		p.ProgressPercentage, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("could not insert project: %w", constraintErr(err, "project"))
	}

	r.logger.Debugf("Created project in repository: %s", p.ID)
	return nil
}

// GetProject retrieves a project by ID.
func (r *Repository) GetProject(ctx context.Context, id string) (*model.Project, error) {
	p, err := scanProject(r.q.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query project: %w", conflictErr(err))
	}
	return &p, nil
}

// GetProjectByCode retrieves a project by code, case insensitive.
func (r *Repository) GetProjectByCode(ctx context.Context, code string) (*model.Project, error) {
	p, err := scanProject(r.q.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE lower(code) = lower($1)`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project with code %s: %w", code, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query project: %w", conflictErr(err))
	}
	return &p, nil
}

// ListProjects returns all projects, newest first.
func (r *Repository) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := r.q.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("could not query projects: %w", conflictErr(err))
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
		return nil, fmt.Errorf("error iterating rows: %w", conflictErr(err))
	}

	return projects, nil
}

// UpdateProject updates an existing project.
func (r *Repository) UpdateProject(ctx context.Context, p model.Project) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE projects
		SET code = $1, name = $2, description = $3, status = $4, methodology = $5,
			progress_percentage = $6, updated_at = $7
		WHERE id = $8`,
		nullable(p.Code), p.Name, p.Description, string(p.Status), string(p.Methodology),
		p.ProgressPercentage, p.UpdatedAt.UTC(), p.ID)
	if err != nil {
		return fmt.Errorf("could not update project: %w", constraintErr(err, "project"))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", p.ID, model.ErrNotFound)
	}

	r.logger.Debugf("Updated project in repository: %s", p.ID)
	return nil
}

// UpdateProjectProgress sets the progress of a project.
func (r *Repository) UpdateProjectProgress(ctx context.Context, id string, progress int) error {
	tag, err := r.q.Exec(ctx, `UPDATE projects SET progress_percentage = $1, updated_at = $2 WHERE id = $3`, progress, now(), id)
	if err != nil {
		return fmt.Errorf("could not update project progress: %w", constraintErr(err, "project"))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// DeleteProject deletes a project, tasks are removed by the foreign key cascade.
func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("could not delete project: %w", conflictErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted project from repository: %s", id)
	return nil
}

func scanProject(row pgx.Row) (model.Project, error) {
	var p model.Project
	var code *string
	var status, methodology string

	err := row.Scan(&p.ID, &code, &p.Name, &p.Description, &status, &methodology,
		&p.ProgressPercentage, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Project{}, err
	}

	if code != nil {
		p.Code = *code
	}
	p.Status = model.ProjectStatus(status)
	p.Methodology = model.ProjectMethodology(methodology)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()

	return p, nil
}
