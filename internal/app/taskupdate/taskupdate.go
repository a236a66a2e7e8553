package taskupdate

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/propagation"
	"github.com/slok/wbs/internal/storage"
)

// ServiceConfig is the configuration for the task update service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskUpdate"})
	return nil
}

// Service handles task updates.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new task update service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request is the request for updating a task.
type Request struct {
	TaskID string
	Patch  model.TaskPatch
	// NoPropagateDown stops a task that becomes completed from completing
	// all its descendants.
	NoPropagateDown bool
}

// Run applies the patch to the task, resolving its status and progress and
// propagating the change through the task tree.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	if req.TaskID == "" {
		return nil, fmt.Errorf("task is required: %w", model.ErrNotValid)
	}
	if err := req.Patch.Validate(); err != nil {
		return nil, fmt.Errorf("invalid patch: %w", err)
	}

	var res *model.Task
	err := storage.Transact(ctx, s.repo, func(ctx context.Context, repo storage.Repository) error {
		task, err := repo.GetTask(ctx, req.TaskID)
		if err != nil {
			return fmt.Errorf("could not get task: %w", err)
		}

		req.Patch.ApplyFields(task)
		task.UpdatedAt = time.Now().UTC()
		if err := task.Validate(); err != nil {
			return fmt.Errorf("invalid task: %w", err)
		}
		if err := repo.UpdateTask(ctx, *task); err != nil {
			return fmt.Errorf("could not update task: %w", err)
		}

		driver, err := propagation.NewDriver(propagation.DriverConfig{Store: repo, Logger: s.logger})
		if err != nil {
			return fmt.Errorf("could not create propagation driver: %w", err)
		}

		switch {
		case req.Patch.ChangesProgress():
			_, err := driver.OnTaskStatusChanged(ctx, propagation.StatusChange{
				TaskID:        task.ID,
				Status:        req.Patch.Status,
				Progress:      req.Patch.ProgressPercentage,
				PropagateDown: !req.NoPropagateDown,
			})
			if err != nil {
				return fmt.Errorf("could not propagate task status: %w", err)
			}
		case req.Patch.ChangesWeight():
			if err := driver.OnTaskWeightChanged(ctx, task.ID); err != nil {
				return fmt.Errorf("could not propagate task weight: %w", err)
			}
		}

		res, err = repo.GetTask(ctx, task.ID)
		if err != nil {
			return fmt.Errorf("could not get task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Updated task: %s %s (%s/%d%%)", res.WBSCode, res.Name, res.Status, res.ProgressPercentage)

	return res, nil
}
