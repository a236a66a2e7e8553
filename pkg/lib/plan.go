package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slok/wbs/internal/app/planimport"
	storageio "github.com/slok/wbs/internal/storage/io"
)

// ImportPlan creates a project with its whole task tree from a YAML plan file.
// Either the whole plan is imported or nothing is.
//
// Plan file format:
//
//	project:
//	  code: CRM
//	  name: CRM rollout
//	  methodology: agile
//	tasks:
//	  - name: Design
//	    priority: high
//	    estimated_hours: 10
//	    tasks:
//	      - name: Wireframes
//	        progress: 100
//
// Returns [ErrNotValid] if the plan is not valid, or [ErrAlreadyExists] if the
// project code is in use.
func (c *Client) ImportPlan(ctx context.Context, path string) (*ImportResult, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve plan path: %w", err)
	}

	plans := storageio.NewPlanYAMLRepository(os.DirFS(filepath.Dir(path)))
	plan, err := plans.GetPlan(ctx, filepath.Base(path))
	if err != nil {
		return nil, mapError(fmt.Errorf("could not load plan: %w", err))
	}

	svc, err := planimport.NewService(planimport.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, planimport.Request{Plan: *plan})
	if err != nil {
		return nil, mapError(err)
	}

	return &ImportResult{
		Project: fromInternalProject(res.Project),
		Tasks:   res.Tasks,
	}, nil
}
