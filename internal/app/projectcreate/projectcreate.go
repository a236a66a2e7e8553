package projectcreate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/storage"
)

// ServiceConfig is the configuration for the project create service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.ProjectCreate"})
	return nil
}

// Service handles project creation.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new project create service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request is the request for creating a project.
type Request struct {
	Code        string
	Name        string
	Description string
	// Status defaults to planning.
	Status model.ProjectStatus
	// Methodology defaults to waterfall.
	Methodology model.ProjectMethodology
}

// Run creates a new project without tasks.
func (s *Service) Run(ctx context.Context, req Request) (*model.Project, error) {
	now := time.Now().UTC()
	p := model.Project{
		ID:          ulid.Make().String(),
		Code:        strings.TrimSpace(req.Code),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Status:      req.Status,
		Methodology: req.Methodology,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Status == "" {
		p.Status = model.ProjectStatusPlanning
	}
	if p.Methodology == "" {
		p.Methodology = model.ProjectMethodologyWaterfall
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project: %w", err)
	}

	err := storage.Transact(ctx, s.repo, func(ctx context.Context, repo storage.Repository) error {
		if p.Code != "" {
			_, err := repo.GetProjectByCode(ctx, p.Code)
			if err == nil {
				return fmt.Errorf("project with code %q already exists: %w", p.Code, model.ErrAlreadyExists)
			}
			if !errors.Is(err, model.ErrNotFound) {
				return fmt.Errorf("could not check code uniqueness: %w", err)
			}
		}

		if err := repo.CreateProject(ctx, p); err != nil {
			return fmt.Errorf("could not save project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Created project: %s (%s)", p.Name, p.ID)

	return &p, nil
}
