package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/propagation"
	"github.com/slok/wbs/internal/storage"
)

// ServiceConfig is the configuration for the doctor service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Doctor"})
	return nil
}

// Service checks the storage and the consistency of the project task trees
// without changing them.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new doctor service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request is the request for the checks.
type Request struct {
	// ProjectRef limits the checks to one project (ID or code), all projects when empty.
	ProjectRef string
}

// errDryRun discards the recalculation unit of work.
var errDryRun = errors.New("dry run")

// Run runs the checks. A project that is not consistent is a warning, it can
// be fixed with a project recalculation.
func (s *Service) Run(ctx context.Context, req Request) ([]model.CheckResult, error) {
	var projects []model.Project
	if req.ProjectRef != "" {
		p, err := storage.GetProjectByRef(ctx, s.repo, req.ProjectRef)
		if err != nil {
			return nil, fmt.Errorf("could not get project: %w", err)
		}
		projects = []model.Project{*p}
	} else {
		ps, err := s.repo.ListProjects(ctx)
		if err != nil {
			return []model.CheckResult{{
				ID:      "storage",
				Message: fmt.Sprintf("Storage is not readable: %s", err),
				Status:  model.CheckStatusError,
			}}, nil
		}
		projects = ps
	}

	results := []model.CheckResult{{
		ID:      "storage",
		Message: fmt.Sprintf("Storage is readable (%d projects)", len(projects)),
		Status:  model.CheckStatusOK,
	}}
	for _, p := range projects {
		results = append(results, s.checkProject(ctx, p))
	}

	return results, nil
}

func (s *Service) checkProject(ctx context.Context, p model.Project) model.CheckResult {
	id := p.Code
	if id == "" {
		id = p.ID
	}

	var (
		report      *propagation.RecalcReport
		expProgress int
	)
	err := s.repo.WithinTx(ctx, func(ctx context.Context, repo storage.Repository) error {
		driver, err := propagation.NewDriver(propagation.DriverConfig{Store: repo, Logger: s.logger})
		if err != nil {
			return fmt.Errorf("could not create propagation driver: %w", err)
		}

		report, err = driver.RecalculateAll(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("could not recalculate project: %w", err)
		}

		got, err := repo.GetProject(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("could not get project: %w", err)
		}
		expProgress = got.ProgressPercentage

		return errDryRun
	})
	if !errors.Is(err, errDryRun) {
		return model.CheckResult{
			ID:      id,
			Message: fmt.Sprintf("Could not check project: %s", err),
			Status:  model.CheckStatusError,
		}
	}

	switch {
	case len(report.Updated) > 0:
		s.logger.Warningf("Project %s has %d tasks out of sync", p.ID, len(report.Updated))
		return model.CheckResult{
			ID:      id,
			Message: fmt.Sprintf("%d of %d tasks out of sync, run a project recalc", len(report.Updated), report.Visited),
			Status:  model.CheckStatusWarning,
		}
	case expProgress != p.ProgressPercentage:
		return model.CheckResult{
			ID:      id,
			Message: fmt.Sprintf("Project progress is %d%%, expected %d%%, run a project recalc", p.ProgressPercentage, expProgress),
			Status:  model.CheckStatusWarning,
		}
	}

	return model.CheckResult{
		ID:      id,
		Message: fmt.Sprintf("Consistent (%d tasks)", report.Visited),
		Status:  model.CheckStatusOK,
	}
}
