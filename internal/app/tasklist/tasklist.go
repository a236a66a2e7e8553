package tasklist

import (
	"context"
	"fmt"

	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/storage"
)

// ServiceConfig is the configuration for the task list service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskList"})
	return nil
}

// Service handles task listing.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new task list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request is the request for listing tasks.
type Request struct {
	// ProjectRef is the project ID or code.
	ProjectRef string
	// ParentID is an optional filter to only show the direct children of a task.
	ParentID string
	// StatusFilter is an optional filter to only show tasks with this status.
	StatusFilter *model.TaskStatus
}

// Run lists the tasks of a project in WBS order.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Task, error) {
	if req.ProjectRef == "" {
		return nil, fmt.Errorf("project is required: %w", model.ErrNotValid)
	}

	p, err := storage.GetProjectByRef(ctx, s.repo, req.ProjectRef)
	if err != nil {
		return nil, fmt.Errorf("could not get project: %w", err)
	}

	tasks, err := s.listTasks(ctx, p.ID, req.ParentID)
	if err != nil {
		return nil, err
	}

	if req.StatusFilter != nil {
		filtered := make([]model.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.Status == *req.StatusFilter {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}
	model.SortTasksByWBS(tasks)

	s.logger.Debugf("found %d tasks", len(tasks))
	return tasks, nil
}

func (s *Service) listTasks(ctx context.Context, projectID, parentID string) ([]model.Task, error) {
	if parentID == "" {
		tasks, err := s.repo.ListProjectTasks(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("could not list tasks: %w", err)
		}
		return tasks, nil
	}

	parent, err := s.repo.GetTask(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("could not get parent task: %w", err)
	}
	if parent.ProjectID != projectID {
		return nil, fmt.Errorf("task %s belongs to another project: %w", parent.ID, model.ErrNotValid)
	}

	tasks, err := s.repo.ListChildTasks(ctx, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}
	return tasks, nil
}
