package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/slok/wbs/internal/model"
)

const taskColumns = `id, project_id, parent_task_id, wbs_code, name, description, notes,
	status, priority, estimated_hours, actual_hours, progress_percentage,
	is_milestone, sort_order, created_at, updated_at`

const taskOrder = `ORDER BY sort_order ASC, created_at ASC, id ASC`

// CreateTask creates a new task in the repository.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		t.ID, t.ProjectID, nullable(t.ParentID), t.WBSCode, t.Name, t.Description, t.Notes,
		string(t.Status), string(t.Priority), t.EstimatedHours, t.ActualHours, t.ProgressPercentage,
		t.IsMilestone, t.SortOrder, t.CreatedAt.UTC(), t.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("could not insert task: %w", constraintErr(err, "task"))
	}

	r.logger.Debugf("Created task in repository: %s", t.ID)
	return nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	t, err := scanTask(r.q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query task: %w", conflictErr(err))
	}
	return &t, nil
}

// UpdateTask updates the editable fields of an existing task.
func (r *Repository) UpdateTask(ctx context.Context, t model.Task) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE tasks
		SET name = $1, description = $2, notes = $3, status = $4, priority = $5,
			estimated_hours = $6, actual_hours = $7, progress_percentage = $8,
			is_milestone = $9, sort_order = $10, updated_at = $11
		WHERE id = $12`,
		t.Name, t.Description, t.Notes, string(t.Status), string(t.Priority),
		t.EstimatedHours, t.ActualHours, t.ProgressPercentage,
		t.IsMilestone, t.SortOrder, t.UpdatedAt.UTC(), t.ID)
	if err != nil {
		return fmt.Errorf("could not update task: %w", constraintErr(err, "task"))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %s: %w", t.ID, model.ErrNotFound)
	}

	r.logger.Debugf("Updated task in repository: %s", t.ID)
	return nil
}

// UpdateTaskStatusProgress sets the status and progress of a task.
func (r *Repository) UpdateTaskStatusProgress(ctx context.Context, id string, status model.TaskStatus, progress int) error {
	tag, err := r.q.Exec(ctx, `UPDATE tasks SET status = $1, progress_percentage = $2, updated_at = $3 WHERE id = $4`,
		string(status), progress, now(), id)
	if err != nil {
		return fmt.Errorf("could not update task progress: %w", constraintErr(err, "task"))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// DeleteTask deletes a task, descendants are removed by the foreign key cascade.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("could not delete task: %w", conflictErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted task from repository: %s", id)
	return nil
}

// ListChildTasks returns the direct children of a task.
func (r *Repository) ListChildTasks(ctx context.Context, parentID string) ([]model.Task, error) {
	return r.listTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE parent_task_id = $1 `+taskOrder, parentID)
}

// ListRootTasks returns the tasks of a project without parent.
func (r *Repository) ListRootTasks(ctx context.Context, projectID string) ([]model.Task, error) {
	return r.listTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 AND parent_task_id IS NULL `+taskOrder, projectID)
}

// ListProjectTasks returns all the tasks of a project.
func (r *Repository) ListProjectTasks(ctx context.Context, projectID string) ([]model.Task, error) {
	return r.listTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 `+taskOrder, projectID)
}

// CountSiblingTasks satisfies storage.Repository interface.
func (r *Repository) CountSiblingTasks(ctx context.Context, projectID, parentID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE project_id = $1 AND parent_task_id IS NOT DISTINCT FROM $2`,
		projectID, nullable(parentID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("could not count tasks: %w", conflictErr(err))
	}
	return n, nil
}

func (r *Repository) listTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", conflictErr(err))
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
		return nil, fmt.Errorf("error iterating rows: %w", conflictErr(err))
	}

	return tasks, nil
}

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	var parentID *string
	var status, priority string

	err := row.Scan(&t.ID, &t.ProjectID, &parentID, &t.WBSCode, &t.Name, &t.Description, &t.Notes,
		&status, &priority, &t.EstimatedHours, &t.ActualHours, &t.ProgressPercentage,
		&t.IsMilestone, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Task{}, err
	}

	if parentID != nil {
		t.ParentID = *parentID
	}
	t.Status = model.TaskStatus(status)
	t.Priority = model.TaskPriority(priority)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()

	return t, nil
}
