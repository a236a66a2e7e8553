package taskrecalc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/wbs/internal/app/projectcreate"
	"github.com/slok/wbs/internal/app/taskcreate"
	"github.com/slok/wbs/internal/app/taskrecalc"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/storage/memory"
)

func TestService_Run(t *testing.T) {
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
	a, err := taskSvc.Run(ctx, taskcreate.Request{ProjectRef: p.ID, Name: "a"})
	require.NoError(err)
	a1, err := taskSvc.Run(ctx, taskcreate.Request{ProjectRef: p.ID, ParentID: a.ID, Name: "a1"})
	require.NoError(err)
	_, err = taskSvc.Run(ctx, taskcreate.Request{ProjectRef: p.ID, ParentID: a1.ID, Name: "a11", Status: model.TaskStatusCompleted})
	require.NoError(err)
	_, err = taskSvc.Run(ctx, taskcreate.Request{ProjectRef: p.ID, ParentID: a1.ID, Name: "a12", Status: model.TaskStatusCancelled})
	require.NoError(err)
	b, err := taskSvc.Run(ctx, taskcreate.Request{ProjectRef: p.ID, Name: "b"})
	require.NoError(err)

	// Break the subtree behind the engine back.
	require.NoError(repo.UpdateTaskStatusProgress(ctx, a1.ID, model.TaskStatusTodo, 0))
	require.NoError(repo.UpdateTaskStatusProgress(ctx, a.ID, model.TaskStatusTodo, 0))
	require.NoError(repo.UpdateProjectProgress(ctx, p.ID, 0))

	svc, err := taskrecalc.NewService(taskrecalc.ServiceConfig{Repository: repo})
	require.NoError(err)

	got, err := svc.Run(ctx, taskrecalc.Request{TaskID: a1.ID})
	require.NoError(err)
	assert.Equal(t, model.TaskStatusInProgress, got.Task.Status)
	assert.Equal(t, 50, got.Task.ProgressPercentage)
	assert.Equal(t, 3, got.Report.Visited)

	parent, err := repo.GetTask(ctx, a.ID)
	require.NoError(err)
	assert.Equal(t, model.TaskStatusInProgress, parent.Status)
	assert.Equal(t, 50, parent.ProgressPercentage)

	gotProject, err := repo.GetProject(ctx, p.ID)
	require.NoError(err)
	assert.Equal(t, 25, gotProject.ProgressPercentage)

	// A second run doesn't change anything.
	got, err = svc.Run(ctx, taskrecalc.Request{TaskID: a1.ID})
	require.NoError(err)
	assert.Empty(t, got.Report.Updated)
	assert.Equal(t, 50, got.Task.ProgressPercentage)

	// Leaves are left as they are.
	got, err = svc.Run(ctx, taskrecalc.Request{TaskID: b.ID})
	require.NoError(err)
	assert.Equal(t, model.TaskStatusTodo, got.Task.Status)

	_, err = svc.Run(ctx, taskrecalc.Request{TaskID: "missing"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}
