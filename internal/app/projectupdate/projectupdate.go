package projectupdate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/storage"
)

// ServiceConfig is the configuration for the project update service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.ProjectUpdate"})
	return nil
}

// Service handles project updates.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new project update service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request is the request for updating a project.
type Request struct {
	// ProjectRef is the project ID or code.
	ProjectRef string
	Patch      model.ProjectPatch
}

// Run applies the patch to the project and returns the updated project.
func (s *Service) Run(ctx context.Context, req Request) (*model.Project, error) {
	if req.ProjectRef == "" {
		return nil, fmt.Errorf("project is required: %w", model.ErrNotValid)
	}
	if req.Patch.Code != nil {
		code := strings.TrimSpace(*req.Patch.Code)
		req.Patch.Code = &code
	}
	if err := req.Patch.Validate(); err != nil {
		return nil, fmt.Errorf("invalid patch: %w", err)
	}

	var res *model.Project
	err := storage.Transact(ctx, s.repo, func(ctx context.Context, repo storage.Repository) error {
		p, err := storage.GetProjectByRef(ctx, repo, req.ProjectRef)
		if err != nil {
			return fmt.Errorf("could not get project: %w", err)
		}

		if req.Patch.Code != nil && *req.Patch.Code != "" && !strings.EqualFold(*req.Patch.Code, p.Code) {
			_, err := repo.GetProjectByCode(ctx, *req.Patch.Code)
			if err == nil {
				return fmt.Errorf("project with code %q already exists: %w", *req.Patch.Code, model.ErrAlreadyExists)
			}
			if !errors.Is(err, model.ErrNotFound) {
				return fmt.Errorf("could not check code uniqueness: %w", err)
			}
		}

		req.Patch.Apply(p)
		p.UpdatedAt = time.Now().UTC()
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid project: %w", err)
		}

		if err := repo.UpdateProject(ctx, *p); err != nil {
			return fmt.Errorf("could not update project: %w", err)
		}

		res = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Updated project: %s (%s)", res.Name, res.ID)

	return res, nil
}
