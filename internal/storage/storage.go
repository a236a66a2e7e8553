package storage

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/slok/wbs/internal/model"
)

//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name Repository --structname MockRepository

// ProjectRepository is the interface for project persistence.
type ProjectRepository interface {
	CreateProject(ctx context.Context, p model.Project) error
	GetProject(ctx context.Context, id string) (*model.Project, error)
	GetProjectByCode(ctx context.Context, code string) (*model.Project, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
	UpdateProject(ctx context.Context, p model.Project) error
	UpdateProjectProgress(ctx context.Context, id string, progress int) error
	// DeleteProject deletes a project and all its tasks.
	DeleteProject(ctx context.Context, id string) error
}

// TaskRepository is the interface for task persistence.
//
// Task lists are ordered by sort order and creation.
type TaskRepository interface {
	CreateTask(ctx context.Context, t model.Task) error
	GetTask(ctx context.Context, id string) (*model.Task, error)
	UpdateTask(ctx context.Context, t model.Task) error
	UpdateTaskStatusProgress(ctx context.Context, id string, status model.TaskStatus, progress int) error
	// DeleteTask deletes a task and all its descendants.
	DeleteTask(ctx context.Context, id string) error
	ListChildTasks(ctx context.Context, parentID string) ([]model.Task, error)
	ListRootTasks(ctx context.Context, projectID string) ([]model.Task, error)
	ListProjectTasks(ctx context.Context, projectID string) ([]model.Task, error)
	// CountSiblingTasks counts the tasks under a parent, the project root tasks when parentID is empty.
	CountSiblingTasks(ctx context.Context, projectID, parentID string) (int, error)
}

// Repository is the interface for the project and task persistence.
type Repository interface {
	ProjectRepository
	TaskRepository

	// WithinTx runs fn in a single unit of work, all the writes made through
	// the received repository are committed if fn succeeds or discarded
	// otherwise. Calling it on a repository already inside a unit of work
	// joins it.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}

const transactMaxElapsed = 10 * time.Second

func newTransactBackoff() backoff.BackOff {
	// BackOff implementations are stateful, always use a fresh one.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 20 * time.Millisecond
	bo.MaxElapsedTime = transactMaxElapsed
	return bo
}

// Transact runs fn as a single unit of work on the repository. When the unit
// of work collides with a concurrent one (model.ErrConflict) the whole fn is
// retried with exponential backoff, any other error is returned right away.
func Transact(ctx context.Context, repo Repository, fn func(ctx context.Context, repo Repository) error) error {
	return backoff.Retry(func() error {
		err := repo.WithinTx(ctx, fn)
		if err == nil {
			return nil
		}
		if errors.Is(err, model.ErrConflict) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(newTransactBackoff(), ctx))
}

// GetProjectByRef gets a project by its ID or, when no project has that ID, by its code.
func GetProjectByRef(ctx context.Context, repo ProjectRepository, ref string) (*model.Project, error) {
	p, err := repo.GetProject(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	return repo.GetProjectByCode(ctx, ref)
}
