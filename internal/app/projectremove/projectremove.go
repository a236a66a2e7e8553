package projectremove

import (
	"context"
	"fmt"

	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/storage"
)

// ServiceConfig is the configuration for the project remove service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.ProjectRemove"})
	return nil
}

// Service handles project removal.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new project remove service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request is the request for removing a project.
type Request struct {
	// ProjectRef is the project ID or code.
	ProjectRef string
}

// Run removes a project with all its tasks and returns the removed project.
func (s *Service) Run(ctx context.Context, req Request) (*model.Project, error) {
	if req.ProjectRef == "" {
		return nil, fmt.Errorf("project is required: %w", model.ErrNotValid)
	}

	var res *model.Project
	err := storage.Transact(ctx, s.repo, func(ctx context.Context, repo storage.Repository) error {
		p, err := storage.GetProjectByRef(ctx, repo, req.ProjectRef)
		if err != nil {
			return fmt.Errorf("could not get project: %w", err)
		}

		if err := repo.DeleteProject(ctx, p.ID); err != nil {
			return fmt.Errorf("could not delete project: %w", err)
		}

		res = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Removed project: %s (%s)", res.Name, res.ID)

	return res, nil
}
