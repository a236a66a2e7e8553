package projectstatus

import (
	"context"
	"fmt"

	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/storage"
)

// ServiceConfig is the configuration for the project status service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.ProjectStatus"})
	return nil
}

// Service gets a project with its task tree.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new project status service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request is the request for getting the project status.
type Request struct {
	// ProjectRef is the project ID or code.
	ProjectRef string
}

// Result is a project with all its tasks in WBS order.
type Result struct {
	Project model.Project
	Tasks   []model.Task
}

// Run returns the project and its task tree.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.ProjectRef == "" {
		return nil, fmt.Errorf("project is required: %w", model.ErrNotValid)
	}

	var res Result
	err := s.repo.WithinTx(ctx, func(ctx context.Context, repo storage.Repository) error {
		p, err := storage.GetProjectByRef(ctx, repo, req.ProjectRef)
		if err != nil {
			return fmt.Errorf("could not get project: %w", err)
		}

		tasks, err := repo.ListProjectTasks(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("could not list project tasks: %w", err)
		}
		model.SortTasksByWBS(tasks)

		res = Result{Project: *p, Tasks: tasks}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &res, nil
}
