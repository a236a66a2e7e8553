package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/storage"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

type data struct {
	projects map[string]model.Project
	tasks    map[string]model.Task
}

func (d data) clone() data {
	return data{
		projects: maps.Clone(d.projects),
		tasks:    maps.Clone(d.tasks),
	}
}

// Repository is an in-memory implementation of storage.Repository.
//
// Units of work are serialized, they run on a copy of the data that replaces
// the repository data only when the unit of work succeeds.
type Repository struct {
	data   data
	mu     sync.RWMutex
	logger log.Logger
}

var _ storage.Repository = &Repository{}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		data: data{
			projects: make(map[string]model.Project),
			tasks:    make(map[string]model.Task),
		},
		logger: cfg.Logger,
	}, nil
}

// WithinTx satisfies storage.Repository interface.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, repo storage.Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &Repository{
		data:   r.data.clone(),
		logger: r.logger,
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	r.data = tx.data
	return nil
}

// CreateProject creates a new project in the repository.
func (r *Repository) CreateProject(ctx context.Context, p model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data.projects[p.ID]; ok {
		return fmt.Errorf("project with id %s: %w", p.ID, model.ErrAlreadyExists)
	}
	if err := r.checkCode(p); err != nil {
		return err
	}

	r.data.projects[p.ID] = p
	r.logger.Debugf("Created project in repository: %s", p.ID)

	return nil
}

// GetProject retrieves a project by ID.
func (r *Repository) GetProject(ctx context.Context, id string) (*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.data.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, model.ErrNotFound)
	}

	return &p, nil
}

// GetProjectByCode retrieves a project by code.
func (r *Repository) GetProjectByCode(ctx context.Context, code string) (*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if code != "" {
		for _, p := range r.data.projects {
			if strings.EqualFold(p.Code, code) {
				return &p, nil
			}
		}
	}

	return nil, fmt.Errorf("project with code %s: %w", code, model.ErrNotFound)
}

// ListProjects returns all projects, newest first.
func (r *Repository) ListProjects(ctx context.Context) ([]model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	projects := make([]model.Project, 0, len(r.data.projects))
	for _, p := range r.data.projects {
		projects = append(projects, p)
	}
	sort.SliceStable(projects, func(i, j int) bool {
		if !projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].CreatedAt.After(projects[j].CreatedAt)
		}
		return projects[i].ID > projects[j].ID
	})

	return projects, nil
}

// UpdateProject updates an existing project.
func (r *Repository) UpdateProject(ctx context.Context, p model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data.projects[p.ID]; !ok {
		return fmt.Errorf("project %s: %w", p.ID, model.ErrNotFound)
	}
	if err := r.checkCode(p); err != nil {
		return err
	}

	r.data.projects[p.ID] = p
	r.logger.Debugf("Updated project in repository: %s", p.ID)

	return nil
}

// UpdateProjectProgress sets the progress of a project.
func (r *Repository) UpdateProjectProgress(ctx context.Context, id string, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.data.projects[id]
	if !ok {
		return fmt.Errorf("project %s: %w", id, model.ErrNotFound)
	}
	p.ProgressPercentage = progress
	p.UpdatedAt = time.Now().UTC()
	r.data.projects[id] = p

	return nil
}

// DeleteProject deletes a project with all its tasks.
func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data.projects[id]; !ok {
		return fmt.Errorf("project %s: %w", id, model.ErrNotFound)
	}

	for tid, t := range r.data.tasks {
		if t.ProjectID == id {
			delete(r.data.tasks, tid)
		}
	}
	delete(r.data.projects, id)
	r.logger.Debugf("Deleted project from repository: %s", id)

	return nil
}

// checkCode must be called with the lock held.
func (r *Repository) checkCode(p model.Project) error {
	if p.Code == "" {
		return nil
	}
	for _, existing := range r.data.projects {
		if existing.ID != p.ID && strings.EqualFold(existing.Code, p.Code) {
			return fmt.Errorf("project with code %s: %w", p.Code, model.ErrAlreadyExists)
		}
	}
	return nil
}

// CreateTask creates a new task in the repository.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data.tasks[t.ID]; ok {
		return fmt.Errorf("task with id %s: %w", t.ID, model.ErrAlreadyExists)
	}
	if _, ok := r.data.projects[t.ProjectID]; !ok {
		return fmt.Errorf("missing project %s: %w", t.ProjectID, model.ErrNotValid)
	}
	if t.ParentID != "" {
		if _, ok := r.data.tasks[t.ParentID]; !ok {
			return fmt.Errorf("missing parent task %s: %w", t.ParentID, model.ErrNotValid)
		}
	}

	r.data.tasks[t.ID] = t
	r.logger.Debugf("Created task in repository: %s", t.ID)

	return nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.data.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	return &t, nil
}

// UpdateTask updates an existing task.
func (r *Repository) UpdateTask(ctx context.Context, t model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data.tasks[t.ID]; !ok {
		return fmt.Errorf("task %s: %w", t.ID, model.ErrNotFound)
	}

	r.data.tasks[t.ID] = t
	r.logger.Debugf("Updated task in repository: %s", t.ID)

	return nil
}

// UpdateTaskStatusProgress sets the status and progress of a task.
func (r *Repository) UpdateTaskStatusProgress(ctx context.Context, id string, status model.TaskStatus, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.data.tasks[id]
	if !ok {
		return fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}
	t.Status = status
	t.ProgressPercentage = progress
	t.UpdatedAt = time.Now().UTC()
	r.data.tasks[id] = t

	return nil
}

// DeleteTask deletes a task with all its descendants.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data.tasks[id]; !ok {
		return fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	queue := []string{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for tid, t := range r.data.tasks {
			if t.ParentID == current {
				queue = append(queue, tid)
			}
		}
		delete(r.data.tasks, current)
	}
	r.logger.Debugf("Deleted task from repository: %s", id)

	return nil
}

// ListChildTasks returns the direct children of a task.
func (r *Repository) ListChildTasks(ctx context.Context, parentID string) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filterTasks(func(t model.Task) bool { return parentID != "" && t.ParentID == parentID }), nil
}

// ListRootTasks returns the tasks of a project without parent.
func (r *Repository) ListRootTasks(ctx context.Context, projectID string) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filterTasks(func(t model.Task) bool { return t.ProjectID == projectID && t.ParentID == "" }), nil
}

// ListProjectTasks returns all the tasks of a project.
func (r *Repository) ListProjectTasks(ctx context.Context, projectID string) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filterTasks(func(t model.Task) bool { return t.ProjectID == projectID }), nil
}

// CountSiblingTasks satisfies storage.Repository interface.
func (r *Repository) CountSiblingTasks(ctx context.Context, projectID, parentID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := r.filterTasks(func(t model.Task) bool { return t.ProjectID == projectID && t.ParentID == parentID })
	return len(tasks), nil
}

// filterTasks must be called with the lock held.
func (r *Repository) filterTasks(keep func(t model.Task) bool) []model.Task {
	tasks := []model.Task{}
	for _, t := range r.data.tasks {
		if keep(t) {
			tasks = append(tasks, t)
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	return tasks
}
