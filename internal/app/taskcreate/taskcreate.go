package taskcreate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/propagation"
	"github.com/slok/wbs/internal/storage"
)

// ServiceConfig is the configuration for the task create service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskCreate"})
	return nil
}

// Service handles task creation.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new task create service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request is the request for creating a task.
type Request struct {
	// ProjectRef is the project ID or code.
	ProjectRef string
	// ParentID is the parent task, empty for root tasks.
	ParentID    string
	Name        string
	Description string
	Notes       string
	// Status defaults to todo.
	Status model.TaskStatus
	// Priority defaults to medium.
	Priority           model.TaskPriority
	EstimatedHours     float64
	ActualHours        float64
	ProgressPercentage int
	IsMilestone        bool
	// SortOrder defaults to the position of the task among its siblings.
	SortOrder *int
}

// Run creates a task, assigns its WBS code and propagates its progress to
// its ancestors and project.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	if req.ProjectRef == "" {
		return nil, fmt.Errorf("project is required: %w", model.ErrNotValid)
	}

	var res *model.Task
	err := storage.Transact(ctx, s.repo, func(ctx context.Context, repo storage.Repository) error {
		p, err := storage.GetProjectByRef(ctx, repo, req.ProjectRef)
		if err != nil {
			return fmt.Errorf("could not get project: %w", err)
		}

		now := time.Now().UTC()
		task := model.Task{
			ID:                 ulid.Make().String(),
			ProjectID:          p.ID,
			ParentID:           req.ParentID,
			Name:               strings.TrimSpace(req.Name),
			Description:        req.Description,
			Notes:              req.Notes,
			Status:             req.Status,
			Priority:           req.Priority,
			EstimatedHours:     req.EstimatedHours,
			ActualHours:        req.ActualHours,
			ProgressPercentage: req.ProgressPercentage,
			IsMilestone:        req.IsMilestone,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if task.Status == "" {
			task.Status = model.TaskStatusTodo
		}
		if task.Priority == "" {
			task.Priority = model.TaskPriorityMedium
		}
		if err := task.Validate(); err != nil {
			return fmt.Errorf("invalid task: %w", err)
		}

		parentCode := ""
		if task.ParentID != "" {
			parent, err := repo.GetTask(ctx, task.ParentID)
			if err != nil {
				return fmt.Errorf("could not get parent task: %w", err)
			}
			if parent.ProjectID != p.ID {
				return fmt.Errorf("parent task %s belongs to another project: %w", parent.ID, model.ErrNotValid)
			}
			parentCode = parent.WBSCode
		}

		siblings, err := repo.CountSiblingTasks(ctx, p.ID, task.ParentID)
		if err != nil {
			return fmt.Errorf("could not count sibling tasks: %w", err)
		}
		task.WBSCode = model.ChildWBSCode(parentCode, siblings+1)
		task.SortOrder = siblings
		if req.SortOrder != nil {
			task.SortOrder = *req.SortOrder
		}

		if err := repo.CreateTask(ctx, task); err != nil {
			return fmt.Errorf("could not save task: %w", err)
		}

		driver, err := propagation.NewDriver(propagation.DriverConfig{Store: repo, Logger: s.logger})
		if err != nil {
			return fmt.Errorf("could not create propagation driver: %w", err)
		}

		res, err = driver.OnTaskCreated(ctx, task)
		if err != nil {
			return fmt.Errorf("could not propagate task creation: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Created task: %s %s (%s)", res.WBSCode, res.Name, res.ID)

	return res, nil
}
