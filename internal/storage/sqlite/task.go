package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/slok/wbs/internal/model"
)

const taskColumns = `
	id, project_id, parent_task_id, wbs_code, name, description, notes,
	status, priority, estimated_hours, actual_hours, progress_percentage,
	is_milestone, sort_order, created_at, updated_at
`

const taskOrder = `ORDER BY sort_order ASC, created_at ASC, id ASC`

// CreateTask creates a new task in the repository.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.q.ExecContext(ctx, query,
		t.ID,
		t.ProjectID,
		nullString(t.ParentID),
		t.WBSCode,
		t.Name,
		t.Description,
		t.Notes,
		t.Status,
		t.Priority,
		t.EstimatedHours,
		t.ActualHours,
		t.ProgressPercentage,
		t.IsMilestone,
		t.SortOrder,
		t.CreatedAt.Unix(),
		t.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("could not insert task: %w", constraintErr(err, "task"))
	}

	r.logger.Debugf("Created task in repository: %s", t.ID)
	return nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	t, err := scanTask(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query task: %w", err)
	}

	return &t, nil
}

// UpdateTask updates the editable fields of an existing task. The project,
// parent and WBS code of a task never change.
func (r *Repository) UpdateTask(ctx context.Context, t model.Task) error {
	query := `
		UPDATE tasks
		SET
			name = ?,
			description = ?,
			notes = ?,
			status = ?,
			priority = ?,
			estimated_hours = ?,
			actual_hours = ?,
			progress_percentage = ?,
			is_milestone = ?,
			sort_order = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.q.ExecContext(ctx, query,
		t.Name,
		t.Description,
		t.Notes,
		t.Status,
		t.Priority,
		t.EstimatedHours,
		t.ActualHours,
		t.ProgressPercentage,
		t.IsMilestone,
		t.SortOrder,
		t.UpdatedAt.Unix(),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update task: %w", constraintErr(err, "task"))
	}
	if err := checkAffected(result, fmt.Errorf("task %s: %w", t.ID, model.ErrNotFound)); err != nil {
		return err
	}

	r.logger.Debugf("Updated task in repository: %s", t.ID)
	return nil
}

// UpdateTaskStatusProgress sets the status and progress of a task.
func (r *Repository) UpdateTaskStatusProgress(ctx context.Context, id string, status model.TaskStatus, progress int) error {
	query := `UPDATE tasks SET status = ?, progress_percentage = ?, updated_at = ? WHERE id = ?`

	result, err := r.q.ExecContext(ctx, query, status, progress, time.Now().UTC().Unix(), id)
	if err != nil {
		return fmt.Errorf("could not update task progress: %w", constraintErr(err, "task"))
	}

	return checkAffected(result, fmt.Errorf("task %s: %w", id, model.ErrNotFound))
}

// DeleteTask deletes a task, descendants are removed by the foreign key cascade.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete task: %w", err)
	}
	if err := checkAffected(result, fmt.Errorf("task %s: %w", id, model.ErrNotFound)); err != nil {
		return err
	}

	r.logger.Debugf("Deleted task from repository: %s", id)
	return nil
}

// ListChildTasks returns the direct children of a task.
func (r *Repository) ListChildTasks(ctx context.Context, parentID string) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE parent_task_id = ? ` + taskOrder
	return r.listTasks(ctx, query, parentID)
}

// ListRootTasks returns the tasks of a project without parent.
func (r *Repository) ListRootTasks(ctx context.Context, projectID string) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ? AND parent_task_id IS NULL ` + taskOrder
	return r.listTasks(ctx, query, projectID)
}

// ListProjectTasks returns all the tasks of a project.
func (r *Repository) ListProjectTasks(ctx context.Context, projectID string) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ? ` + taskOrder
	return r.listTasks(ctx, query, projectID)
}

// CountSiblingTasks satisfies storage.Repository interface.
func (r *Repository) CountSiblingTasks(ctx context.Context, projectID, parentID string) (int, error) {
	query := `SELECT COUNT(*) FROM tasks WHERE project_id = ? AND parent_task_id IS ?`

	var n int
	if err := r.q.QueryRowContext(ctx, query, projectID, nullString(parentID)).Scan(&n); err != nil {
		return 0, fmt.Errorf("could not count tasks: %w", err)
	}

	return n, nil
}

func (r *Repository) listTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tasks, nil
}

func scanTask(s scanner) (model.Task, error) {
	var t model.Task
	var parentID sql.NullString
	var createdAt, updatedAt int64

	err := s.Scan(
		&t.ID,
		&t.ProjectID,
		&parentID,
		&t.WBSCode,
		&t.Name,
		&t.Description,
		&t.Notes,
		&t.Status,
		&t.Priority,
		&t.EstimatedHours,
		&t.ActualHours,
		&t.ProgressPercentage,
		&t.IsMilestone,
		&t.SortOrder,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.Task{}, err
	}

	t.ParentID = parentID.String
	t.CreatedAt = timeFromUnix(createdAt)
	t.UpdatedAt = timeFromUnix(updatedAt)

	return t, nil
}
