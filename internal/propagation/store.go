package propagation

import (
	"context"

	"github.com/slok/wbs/internal/model"
)

//go:generate mockery --case underscore --output propagationmock --outpkg propagationmock --name Store --structname MockStore

// Store is the persistence the propagation driver needs.
// Missing tasks and projects are reported with model.ErrNotFound.
type Store interface {
	GetTask(ctx context.Context, id string) (*model.Task, error)
	ListChildTasks(ctx context.Context, parentID string) ([]model.Task, error)
	ListRootTasks(ctx context.Context, projectID string) ([]model.Task, error)
	ListProjectTasks(ctx context.Context, projectID string) ([]model.Task, error)
	UpdateTaskStatusProgress(ctx context.Context, id string, status model.TaskStatus, progress int) error
	UpdateProjectProgress(ctx context.Context, projectID string, progress int) error
	DeleteTask(ctx context.Context, id string) error
}
