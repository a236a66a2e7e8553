package taskrecalc

import (
	"context"
	"fmt"

	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/propagation"
	"github.com/slok/wbs/internal/storage"
)

// ServiceConfig is the configuration for the task recalculation service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskRecalc"})
	return nil
}

// Service recalculates the subtree of a task.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new task recalculation service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request is the request for recalculating a task.
type Request struct {
	TaskID string
}

// Result is the recalculated task with the recalculation summary.
type Result struct {
	Task   model.Task
	Report propagation.RecalcReport
}

// Run re-derives the task subtree bottom-up, then its ancestors and project.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.TaskID == "" {
		return nil, fmt.Errorf("task is required: %w", model.ErrNotValid)
	}

	var res Result
	err := storage.Transact(ctx, s.repo, func(ctx context.Context, repo storage.Repository) error {
		driver, err := propagation.NewDriver(propagation.DriverConfig{Store: repo, Logger: s.logger})
		if err != nil {
			return fmt.Errorf("could not create propagation driver: %w", err)
		}

		report, err := driver.RecalculateSubtree(ctx, req.TaskID)
		if err != nil {
			return fmt.Errorf("could not recalculate task: %w", err)
		}

		task, err := repo.GetTask(ctx, req.TaskID)
		if err != nil {
			return fmt.Errorf("could not get task: %w", err)
		}

		res = Result{Task: *task, Report: *report}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Recalculated task %s: %d tasks visited, %d updated", req.TaskID, res.Report.Visited, len(res.Report.Updated))

	return &res, nil
}
