package projectrecalc

import (
	"context"
	"fmt"

	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/propagation"
	"github.com/slok/wbs/internal/storage"
)

// ServiceConfig is the configuration for the project recalculation service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.ProjectRecalc"})
	return nil
}

// Service recalculates the whole task tree of a project.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new project recalculation service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request is the request for recalculating a project.
type Request struct {
	// ProjectRef is the project ID or code.
	ProjectRef string
}

// Result is the recalculated project with the recalculation summary.
type Result struct {
	Project model.Project
	Report  propagation.RecalcReport
}

// Run re-derives every task of the project bottom-up and the project progress.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.ProjectRef == "" {
		return nil, fmt.Errorf("project is required: %w", model.ErrNotValid)
	}

	var res Result
	err := storage.Transact(ctx, s.repo, func(ctx context.Context, repo storage.Repository) error {
		p, err := storage.GetProjectByRef(ctx, repo, req.ProjectRef)
		if err != nil {
			return fmt.Errorf("could not get project: %w", err)
		}

		driver, err := propagation.NewDriver(propagation.DriverConfig{Store: repo, Logger: s.logger})
		if err != nil {
			return fmt.Errorf("could not create propagation driver: %w", err)
		}

		report, err := driver.RecalculateAll(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("could not recalculate project: %w", err)
		}

		p, err = repo.GetProject(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("could not get project: %w", err)
		}

		res = Result{Project: *p, Report: *report}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Recalculated project %s: %d tasks visited, %d updated", res.Project.ID, res.Report.Visited, len(res.Report.Updated))

	return &res, nil
}
