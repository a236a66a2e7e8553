package lib

import (
	"context"
	"fmt"

	"github.com/slok/wbs/internal/app/projectcreate"
	"github.com/slok/wbs/internal/app/projectlist"
	"github.com/slok/wbs/internal/app/projectrecalc"
	"github.com/slok/wbs/internal/app/projectremove"
	"github.com/slok/wbs/internal/app/projectstatus"
	"github.com/slok/wbs/internal/app/projectupdate"
	"github.com/slok/wbs/internal/model"
)

// CreateProject creates a new project without tasks.
//
// Returns [ErrAlreadyExists] if the code is in use, or [ErrNotValid] on invalid options.
func (c *Client) CreateProject(ctx context.Context, opts CreateProjectOpts) (*Project, error) {
	svc, err := projectcreate.NewService(projectcreate.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	p, err := svc.Run(ctx, projectcreate.Request{
		Code:        opts.Code,
		Name:        opts.Name,
		Description: opts.Description,
		Status:      model.ProjectStatus(opts.Status),
		Methodology: model.ProjectMethodology(opts.Methodology),
	})
	if err != nil {
		return nil, mapError(err)
	}

	out := fromInternalProject(*p)
	return &out, nil
}

// GetProject returns a project with its whole task tree in WBS order.
// The project can be referenced by ID or code.
//
// Returns [ErrNotFound] if the project does not exist.
func (c *Client) GetProject(ctx context.Context, idOrCode string) (*ProjectTree, error) {
	svc, err := projectstatus.NewService(projectstatus.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, projectstatus.Request{ProjectRef: idOrCode})
	if err != nil {
		return nil, mapError(err)
	}

	return &ProjectTree{
		Project: fromInternalProject(res.Project),
		Tasks:   fromInternalTaskList(res.Tasks),
	}, nil
}

// ListProjects lists projects, newest first. Pass nil opts to list all.
func (c *Client) ListProjects(ctx context.Context, opts *ListProjectsOpts) ([]Project, error) {
	svc, err := projectlist.NewService(projectlist.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	req := projectlist.Request{}
	if opts != nil && opts.Status != nil {
		s := model.ProjectStatus(*opts.Status)
		req.StatusFilter = &s
	}

	projects, err := svc.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalProjectList(projects), nil
}

// UpdateProject updates the set fields of a project.
//
// Returns [ErrNotFound] if the project does not exist, [ErrAlreadyExists] if
// the new code is in use, or [ErrNotValid] if nothing is set.
func (c *Client) UpdateProject(ctx context.Context, idOrCode string, opts UpdateProjectOpts) (*Project, error) {
	svc, err := projectupdate.NewService(projectupdate.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	p, err := svc.Run(ctx, projectupdate.Request{
		ProjectRef: idOrCode,
		Patch:      toInternalProjectPatch(opts),
	})
	if err != nil {
		return nil, mapError(err)
	}

	out := fromInternalProject(*p)
	return &out, nil
}

// RemoveProject removes a project with all its tasks.
//
// Returns [ErrNotFound] if the project does not exist.
func (c *Client) RemoveProject(ctx context.Context, idOrCode string) (*Project, error) {
	svc, err := projectremove.NewService(projectremove.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	p, err := svc.Run(ctx, projectremove.Request{ProjectRef: idOrCode})
	if err != nil {
		return nil, mapError(err)
	}

	out := fromInternalProject(*p)
	return &out, nil
}

// RecalculateProject re-derives the status and progress of every task of a
// project bottom-up, and the project progress. Running it on a consistent
// project doesn't change anything.
//
// Returns [ErrNotFound] if the project does not exist.
func (c *Client) RecalculateProject(ctx context.Context, idOrCode string) (*Project, *RecalcReport, error) {
	svc, err := projectrecalc.NewService(projectrecalc.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, projectrecalc.Request{ProjectRef: idOrCode})
	if err != nil {
		return nil, nil, mapError(err)
	}

	p := fromInternalProject(res.Project)
	report := fromInternalReport(res.Report)
	return &p, &report, nil
}
