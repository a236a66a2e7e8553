package taskremove

import (
	"context"
	"fmt"

	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/propagation"
	"github.com/slok/wbs/internal/storage"
)

// ServiceConfig is the configuration for the task remove service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskRemove"})
	return nil
}

// Service handles task removal.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new task remove service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request is the request for removing a task.
type Request struct {
	TaskID string
}

// Run removes a task with its descendants and recomputes its former
// ancestors and project. Returns the removed task.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	if req.TaskID == "" {
		return nil, fmt.Errorf("task is required: %w", model.ErrNotValid)
	}

	var res *model.Task
	err := storage.Transact(ctx, s.repo, func(ctx context.Context, repo storage.Repository) error {
		driver, err := propagation.NewDriver(propagation.DriverConfig{Store: repo, Logger: s.logger})
		if err != nil {
			return fmt.Errorf("could not create propagation driver: %w", err)
		}

		res, err = driver.OnTaskDeleted(ctx, req.TaskID)
		if err != nil {
			return fmt.Errorf("could not remove task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Removed task: %s %s (%s)", res.WBSCode, res.Name, res.ID)

	return res, nil
}
