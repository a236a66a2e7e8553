package projectlist

import (
	"context"
	"fmt"

	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/storage"
)

// ServiceConfig is the configuration for the project list service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.ProjectList"})
	return nil
}

// Service handles project listing.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new project list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request is the request for listing projects.
type Request struct {
	// StatusFilter is an optional filter to only show projects with this status.
	StatusFilter *model.ProjectStatus
}

// Run lists all projects, optionally filtered by status.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Project, error) {
	s.logger.Debugf("listing projects with filter: %v", req.StatusFilter)

	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list projects: %w", err)
	}

	if req.StatusFilter != nil {
		filtered := make([]model.Project, 0, len(projects))
		for _, p := range projects {
			if p.Status == *req.StatusFilter {
				filtered = append(filtered, p)
			}
		}
		projects = filtered
	}

	s.logger.Debugf("found %d projects", len(projects))
	return projects, nil
}
