package lib

import (
	"context"
	"fmt"

	"github.com/slok/wbs/internal/app/taskcreate"
	"github.com/slok/wbs/internal/app/tasklist"
	"github.com/slok/wbs/internal/app/taskrecalc"
	"github.com/slok/wbs/internal/app/taskremove"
	"github.com/slok/wbs/internal/app/taskupdate"
	"github.com/slok/wbs/internal/model"
)

// CreateTask creates a task on a project (referenced by ID or code). The new
// task status and progress are synchronized and propagated to its ancestors
// and the project.
//
// Returns [ErrNotFound] if the project or parent doesn't exist, or
// [ErrNotValid] on invalid options.
func (c *Client) CreateTask(ctx context.Context, projectIDOrCode string, opts CreateTaskOpts) (*Task, error) {
	svc, err := taskcreate.NewService(taskcreate.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	t, err := svc.Run(ctx, taskcreate.Request{
		ProjectRef:         projectIDOrCode,
		ParentID:           opts.ParentID,
		Name:               opts.Name,
		Description:        opts.Description,
		Notes:              opts.Notes,
		Status:             model.TaskStatus(opts.Status),
		Priority:           model.TaskPriority(opts.Priority),
		EstimatedHours:     opts.EstimatedHours,
		ActualHours:        opts.ActualHours,
		ProgressPercentage: opts.ProgressPercentage,
		IsMilestone:        opts.IsMilestone,
		SortOrder:          opts.SortOrder,
	})
	if err != nil {
		return nil, mapError(err)
	}

	out := fromInternalTask(*t)
	return &out, nil
}

// GetTask returns a task.
//
// Returns [ErrNotFound] if the task does not exist.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	t, err := c.repo.GetTask(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}

	out := fromInternalTask(*t)
	return &out, nil
}

// UpdateTask updates the set fields of a task and propagates status and
// progress changes through the task tree.
//
// Returns [ErrNotFound] if the task does not exist, or [ErrNotValid] if
// nothing is set.
func (c *Client) UpdateTask(ctx context.Context, id string, opts UpdateTaskOpts) (*Task, error) {
	svc, err := taskupdate.NewService(taskupdate.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	t, err := svc.Run(ctx, taskupdate.Request{
		TaskID:          id,
		Patch:           toInternalTaskPatch(opts),
		NoPropagateDown: opts.NoPropagateDown,
	})
	if err != nil {
		return nil, mapError(err)
	}

	out := fromInternalTask(*t)
	return &out, nil
}

// RemoveTask removes a task with all its descendants and recomputes its
// former ancestors and project.
//
// Returns [ErrNotFound] if the task does not exist.
func (c *Client) RemoveTask(ctx context.Context, id string) (*Task, error) {
	svc, err := taskremove.NewService(taskremove.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	t, err := svc.Run(ctx, taskremove.Request{TaskID: id})
	if err != nil {
		return nil, mapError(err)
	}

	out := fromInternalTask(*t)
	return &out, nil
}

// ListTasks lists the tasks of a project in WBS order. Pass nil opts to list all.
//
// Returns [ErrNotFound] if the project does not exist.
func (c *Client) ListTasks(ctx context.Context, projectIDOrCode string, opts *ListTasksOpts) ([]Task, error) {
	svc, err := tasklist.NewService(tasklist.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	req := tasklist.Request{ProjectRef: projectIDOrCode}
	if opts != nil {
		req.ParentID = opts.ParentID
		if opts.Status != nil {
			s := model.TaskStatus(*opts.Status)
			req.StatusFilter = &s
		}
	}

	tasks, err := svc.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalTaskList(tasks), nil
}

// RecalculateTask re-derives a task subtree bottom-up, then its ancestors and
// project.
//
// Returns [ErrNotFound] if the task does not exist.
func (c *Client) RecalculateTask(ctx context.Context, id string) (*Task, *RecalcReport, error) {
	svc, err := taskrecalc.NewService(taskrecalc.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, taskrecalc.Request{TaskID: id})
	if err != nil {
		return nil, nil, mapError(err)
	}

	t := fromInternalTask(res.Task)
	report := fromInternalReport(res.Report)
	return &t, &report, nil
}
