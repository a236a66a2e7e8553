package taskremove_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/wbs/internal/app/projectcreate"
	"github.com/slok/wbs/internal/app/taskcreate"
	"github.com/slok/wbs/internal/app/taskremove"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/storage"
	"github.com/slok/wbs/internal/storage/memory"
	"github.com/slok/wbs/internal/storage/storagemock"
)

func TestService_Run(t *testing.T) {
	// Tree: a (root) with children a1 (completed) and a2 (0%), a2 has child a21.
	tests := map[string]struct {
		task       string
		expGone    []string
		expParent  *model.Task
		expProject int
		expErr     error
	}{
		"removing the pending child should complete the parent": {
			task:       "a2",
			expGone:    []string{"a2", "a21"},
			expParent:  &model.Task{Status: model.TaskStatusCompleted, ProgressPercentage: 100},
			expProject: 100,
		},
		"removing the completed child should drop the parent progress": {
			task:       "a1",
			expGone:    []string{"a1"},
			expParent:  &model.Task{Status: model.TaskStatusInProgress, ProgressPercentage: 0},
			expProject: 0,
		},
		"removing the only root should keep the project progress": {
			task:       "a",
			expGone:    []string{"a", "a1", "a2", "a21"},
			expProject: 50,
		},
		"removing a missing task should fail": {
			task:       "missing",
			expErr:     model.ErrNotFound,
			expProject: 50,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()

			repo, err := memory.NewRepository(memory.RepositoryConfig{})
			require.NoError(err)
			projectSvc, err := projectcreate.NewService(projectcreate.ServiceConfig{Repository: repo})
			require.NoError(err)
			taskSvc, err := taskcreate.NewService(taskcreate.ServiceConfig{Repository: repo})
			require.NoError(err)

			p, err := projectSvc.Run(ctx, projectcreate.Request{Name: "p"})
			require.NoError(err)
			ids := map[string]string{"missing": "missing"}
			for _, tc := range []struct {
				name, parent string
				status       model.TaskStatus
			}{{"a", "", ""}, {"a1", "a", model.TaskStatusCompleted}, {"a2", "a", ""}, {"a21", "a2", ""}} {
				task, err := taskSvc.Run(ctx, taskcreate.Request{ProjectRef: p.ID, ParentID: ids[tc.parent], Name: tc.name, Status: tc.status})
				require.NoError(err)
				ids[tc.name] = task.ID
			}

			svc, err := taskremove.NewService(taskremove.ServiceConfig{Repository: repo})
			require.NoError(err)

			got, err := svc.Run(ctx, taskremove.Request{TaskID: ids[test.task]})
			if test.expErr != nil {
				require.ErrorIs(err, test.expErr)
			} else {
				require.NoError(err)
				assert.Equal(t, ids[test.task], got.ID)
			}

			for _, name := range test.expGone {
				_, err := repo.GetTask(ctx, ids[name])
				assert.ErrorIs(t, err, model.ErrNotFound, "task %s", name)
			}
			if test.expParent != nil {
				parent, err := repo.GetTask(ctx, ids["a"])
				require.NoError(err)
				assert.Equal(t, test.expParent.Status, parent.Status)
				assert.Equal(t, test.expParent.ProgressPercentage, parent.ProgressPercentage)
			}

			gotProject, err := repo.GetProject(ctx, p.ID)
			require.NoError(err)
			assert.Equal(t, test.expProject, gotProject.ProgressPercentage)
		})
	}
}

func TestService_RunStorageError(t *testing.T) {
	require := require.New(t)

	m := storagemock.NewMockRepository(t)
	m.On("WithinTx", mock.Anything, mock.Anything).Once().Return(func(ctx context.Context, fn func(ctx context.Context, repo storage.Repository) error) error {
		return fn(ctx, m)
	})
	m.On("GetTask", mock.Anything, "t1").Once().Return(&model.Task{ID: "t1", ProjectID: "p1"}, nil)
	m.On("DeleteTask", mock.Anything, "t1").Once().Return(fmt.Errorf("something"))

	svc, err := taskremove.NewService(taskremove.ServiceConfig{Repository: m})
	require.NoError(err)

	_, err = svc.Run(context.Background(), taskremove.Request{TaskID: "t1"})
	require.Error(err)
}
