package memory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/storage"
	"github.com/slok/wbs/internal/storage/memory"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newProject(id, code string) model.Project {
	return model.Project{
		ID:          id,
		Code:        code,
		Name:        "project " + id,
		Status:      model.ProjectStatusPlanning,
		Methodology: model.ProjectMethodologyWaterfall,
		CreatedAt:   t0,
		UpdatedAt:   t0,
	}
}

func newTask(id, projectID, parentID string, sortOrder int) model.Task {
	return model.Task{
		ID:        id,
		ProjectID: projectID,
		ParentID:  parentID,
		Name:      "task " + id,
		Status:    model.TaskStatusTodo,
		Priority:  model.TaskPriorityMedium,
		SortOrder: sortOrder,
		CreatedAt: t0,
		UpdatedAt: t0,
	}
}

func taskIDs(ts []model.Task) []string {
	ids := []string{}
	for _, t := range ts {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestRepositoryCRUD(t *testing.T) {
	tests := map[string]struct {
		actions func(ctx context.Context, t *testing.T, repo *memory.Repository) error
		expErr  error
	}{
		"Creating a project should work": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				err := repo.CreateProject(ctx, newProject("p1", "CRM"))
				require.NoError(t, err)

				got, err := repo.GetProject(ctx, "p1")
				require.NoError(t, err)
				assert.Equal(t, "CRM", got.Code)

				got, err = repo.GetProjectByCode(ctx, "CRM")
				require.NoError(t, err)
				assert.Equal(t, "p1", got.ID)

				return nil
			},
		},

		"Creating a duplicated project ID should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateProject(ctx, newProject("p1", "")))
				return repo.CreateProject(ctx, newProject("p1", ""))
			},
			expErr: model.ErrAlreadyExists,
		},

		"Creating a project with a used code should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateProject(ctx, newProject("p1", "CRM")))
				return repo.CreateProject(ctx, newProject("p2", "crm"))
			},
			expErr: model.ErrAlreadyExists,
		},

		"Projects without code shouldn't collide.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateProject(ctx, newProject("p1", "")))
				return repo.CreateProject(ctx, newProject("p2", ""))
			},
		},

		"Getting a missing project should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				_, err := repo.GetProject(ctx, "missing")
				return err
			},
			expErr: model.ErrNotFound,
		},

		"Updating the project progress should work": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateProject(ctx, newProject("p1", "")))
				require.NoError(t, repo.UpdateProjectProgress(ctx, "p1", 57))

				got, err := repo.GetProject(ctx, "p1")
				require.NoError(t, err)
				assert.Equal(t, 57, got.ProgressPercentage)
				return nil
			},
		},

		"Creating a task on a missing project should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				return repo.CreateTask(ctx, newTask("t1", "missing", "", 0))
			},
			expErr: model.ErrNotValid,
		},

		"Creating a task on a missing parent should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateProject(ctx, newProject("p1", "")))
				return repo.CreateTask(ctx, newTask("t1", "p1", "missing", 0))
			},
			expErr: model.ErrNotValid,
		},

		"Listing tasks should be ordered by sort order and creation.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateProject(ctx, newProject("p1", "")))
				require.NoError(t, repo.CreateTask(ctx, newTask("r2", "p1", "", 1)))
				require.NoError(t, repo.CreateTask(ctx, newTask("r1", "p1", "", 0)))
				require.NoError(t, repo.CreateTask(ctx, newTask("c2", "p1", "r1", 0)))
				require.NoError(t, repo.CreateTask(ctx, newTask("c1", "p1", "r1", 0)))

				roots, err := repo.ListRootTasks(ctx, "p1")
				require.NoError(t, err)
				assert.Equal(t, []string{"r1", "r2"}, taskIDs(roots))

				children, err := repo.ListChildTasks(ctx, "r1")
				require.NoError(t, err)
				assert.Equal(t, []string{"c1", "c2"}, taskIDs(children))

				all, err := repo.ListProjectTasks(ctx, "p1")
				require.NoError(t, err)
				assert.Len(t, all, 4)

				n, err := repo.CountSiblingTasks(ctx, "p1", "")
				require.NoError(t, err)
				assert.Equal(t, 2, n)

				n, err = repo.CountSiblingTasks(ctx, "p1", "r1")
				require.NoError(t, err)
				assert.Equal(t, 2, n)

				return nil
			},
		},

		"Updating the task status and progress should work": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateProject(ctx, newProject("p1", "")))
				require.NoError(t, repo.CreateTask(ctx, newTask("t1", "p1", "", 0)))
				require.NoError(t, repo.UpdateTaskStatusProgress(ctx, "t1", model.TaskStatusInProgress, 40))

				got, err := repo.GetTask(ctx, "t1")
				require.NoError(t, err)
				assert.Equal(t, model.TaskStatusInProgress, got.Status)
				assert.Equal(t, 40, got.ProgressPercentage)
				assert.Equal(t, "task t1", got.Name)
				return nil
			},
		},

		"Updating a missing task should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				return repo.UpdateTaskStatusProgress(ctx, "missing", model.TaskStatusInProgress, 40)
			},
			expErr: model.ErrNotFound,
		},

		"Deleting a task should delete its descendants.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateProject(ctx, newProject("p1", "")))
				require.NoError(t, repo.CreateTask(ctx, newTask("r1", "p1", "", 0)))
				require.NoError(t, repo.CreateTask(ctx, newTask("c1", "p1", "r1", 0)))
				require.NoError(t, repo.CreateTask(ctx, newTask("g1", "p1", "c1", 0)))
				require.NoError(t, repo.CreateTask(ctx, newTask("r2", "p1", "", 1)))

				require.NoError(t, repo.DeleteTask(ctx, "r1"))

				all, err := repo.ListProjectTasks(ctx, "p1")
				require.NoError(t, err)
				assert.Equal(t, []string{"r2"}, taskIDs(all))
				return nil
			},
		},

		"Deleting a project should delete its tasks.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateProject(ctx, newProject("p1", "")))
				require.NoError(t, repo.CreateTask(ctx, newTask("r1", "p1", "", 0)))
				require.NoError(t, repo.DeleteProject(ctx, "p1"))

				_, err := repo.GetTask(ctx, "r1")
				return err
			},
			expErr: model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			repo, err := memory.NewRepository(memory.RepositoryConfig{
				Logger: log.Noop,
			})
			require.NoError(t, err)

			err = test.actions(context.Background(), t, repo)

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else {
				assert.NoError(err)
			}
		})
	}
}

func TestRepositoryWithinTx(t *testing.T) {
	tests := map[string]struct {
		fnErr   error
		expTask bool
	}{
		"A successful unit of work should commit its writes.": {
			expTask: true,
		},

		"A failed unit of work should discard its writes.": {
			fnErr:   fmt.Errorf("something"),
			expTask: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()

			repo, err := memory.NewRepository(memory.RepositoryConfig{})
			require.NoError(err)
			require.NoError(repo.CreateProject(ctx, newProject("p1", "")))

			err = repo.WithinTx(ctx, func(ctx context.Context, tx storage.Repository) error {
				require.NoError(tx.CreateTask(ctx, newTask("t1", "p1", "", 0)))
				require.NoError(tx.UpdateProjectProgress(ctx, "p1", 10))

				// Visible inside the unit of work.
				_, err := tx.GetTask(ctx, "t1")
				require.NoError(err)

				return test.fnErr
			})
			if test.fnErr != nil {
				require.ErrorIs(err, test.fnErr)
			} else {
				require.NoError(err)
			}

			_, err = repo.GetTask(ctx, "t1")
			p, perr := repo.GetProject(ctx, "p1")
			require.NoError(perr)
			if test.expTask {
				require.NoError(err)
				require.Equal(10, p.ProgressPercentage)
			} else {
				require.True(errors.Is(err, model.ErrNotFound))
				require.Equal(0, p.ProgressPercentage)
			}
		})
	}
}
