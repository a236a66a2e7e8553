package planimport

import (
	"context"
	"fmt"

	"github.com/slok/wbs/internal/app/projectcreate"
	"github.com/slok/wbs/internal/app/taskcreate"
	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/storage"
)

// ServiceConfig is the configuration for the plan import service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.PlanImport"})
	return nil
}

// Service imports whole project plans.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new plan import service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request is the request for importing a plan.
type Request struct {
	Plan model.Plan
}

// Result is the imported project.
type Result struct {
	Project model.Project
	Tasks   int
}

// Run creates the plan project and all its tasks in a single unit of work,
// either the whole plan is imported or nothing is.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	var res Result
	err := storage.Transact(ctx, s.repo, func(ctx context.Context, repo storage.Repository) error {
		projectSvc, err := projectcreate.NewService(projectcreate.ServiceConfig{Repository: repo, Logger: s.logger})
		if err != nil {
			return fmt.Errorf("could not create project service: %w", err)
		}
		taskSvc, err := taskcreate.NewService(taskcreate.ServiceConfig{Repository: repo, Logger: s.logger})
		if err != nil {
			return fmt.Errorf("could not create task service: %w", err)
		}

		pp := req.Plan.Project
		p, err := projectSvc.Run(ctx, projectcreate.Request{
			Code:        pp.Code,
			Name:        pp.Name,
			Description: pp.Description,
			Status:      pp.Status,
			Methodology: pp.Methodology,
		})
		if err != nil {
			return fmt.Errorf("could not create project: %w", err)
		}

		n, err := s.createTasks(ctx, taskSvc, p.ID, "", req.Plan.Tasks)
		if err != nil {
			return err
		}

		p, err = repo.GetProject(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("could not get project: %w", err)
		}

		res = Result{Project: *p, Tasks: n}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Imported project %s (%s) with %d tasks", res.Project.Name, res.Project.ID, res.Tasks)

	return &res, nil
}

// createTasks creates the tasks depth first so every parent exists before its children.
func (s *Service) createTasks(ctx context.Context, svc *taskcreate.Service, projectID, parentID string, tasks []model.PlanTask) (int, error) {
	count := 0
	for _, pt := range tasks {
		t, err := svc.Run(ctx, taskcreate.Request{
			ProjectRef:         projectID,
			ParentID:           parentID,
			Name:               pt.Name,
			Description:        pt.Description,
			Notes:              pt.Notes,
			Status:             pt.Status,
			Priority:           pt.Priority,
			EstimatedHours:     pt.EstimatedHours,
			ActualHours:        pt.ActualHours,
			ProgressPercentage: pt.ProgressPercentage,
			IsMilestone:        pt.IsMilestone,
		})
		if err != nil {
			return 0, fmt.Errorf("could not create task %q: %w", pt.Name, err)
		}

		n, err := s.createTasks(ctx, svc, projectID, t.ID, pt.Children)
		if err != nil {
			return 0, err
		}
		count += n + 1
	}

	return count, nil
}
