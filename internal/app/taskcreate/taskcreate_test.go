package taskcreate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/wbs/internal/app/projectcreate"
	"github.com/slok/wbs/internal/app/taskcreate"
	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/storage/memory"
	"github.com/slok/wbs/internal/storage/storagemock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config taskcreate.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: taskcreate.ServiceConfig{
				Repository: &storagemock.MockRepository{},
				Logger:     log.Noop,
			},
		},
		"missing repository should fail": {
			config: taskcreate.ServiceConfig{Logger: log.Noop},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			svc, err := taskcreate.NewService(test.config)

			if test.expErr {
				require.Error(err)
				require.Nil(svc)
			} else {
				require.NoError(err)
				require.NotNil(svc)
			}
		})
	}
}

func TestService_RunWBSCodes(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(err)
	projectSvc, err := projectcreate.NewService(projectcreate.ServiceConfig{Repository: repo})
	require.NoError(err)
	svc, err := taskcreate.NewService(taskcreate.ServiceConfig{Repository: repo})
	require.NoError(err)

	p, err := projectSvc.Run(ctx, projectcreate.Request{Name: "p", Code: "CRM"})
	require.NoError(err)

	create := func(parentID, name string) *model.Task {
		t, err := svc.Run(ctx, taskcreate.Request{ProjectRef: "CRM", ParentID: parentID, Name: name})
		require.NoError(err)
		return t
	}

	t1 := create("", "design")
	t2 := create("", "build")
	t11 := create(t1.ID, "wireframes")
	t12 := create(t1.ID, "mockups")
	t121 := create(t12.ID, "review")

	assert.Equal("1", t1.WBSCode)
	assert.Equal("2", t2.WBSCode)
	assert.Equal("1.1", t11.WBSCode)
	assert.Equal("1.2", t12.WBSCode)
	assert.Equal("1.2.1", t121.WBSCode)

	assert.Equal(p.ID, t121.ProjectID)
	assert.Equal(0, t11.SortOrder)
	assert.Equal(1, t12.SortOrder)
	assert.Equal(model.TaskStatusTodo, t1.Status)
	assert.Equal(model.TaskPriorityMedium, t1.Priority)
}

func TestService_Run(t *testing.T) {
	tests := map[string]struct {
		req        func(projectID, parentID, otherProjectTaskID string) taskcreate.Request
		expTask    func(t *testing.T, task *model.Task)
		expParent  model.TaskStatus
		expPParent int
		expProject int
		expErr     error
	}{
		"a root task with progress should start and move the project": {
			req: func(projectID, _, _ string) taskcreate.Request {
				return taskcreate.Request{ProjectRef: projectID, Name: "b", ProgressPercentage: 40}
			},
			expTask: func(t *testing.T, task *model.Task) {
				assert.Equal(t, model.TaskStatusInProgress, task.Status)
				assert.Equal(t, 40, task.ProgressPercentage)
				assert.Equal(t, "2", task.WBSCode)
			},
			expParent:  model.TaskStatusTodo,
			expProject: 20,
		},
		"a completed child should complete its only child parent": {
			req: func(projectID, parentID, _ string) taskcreate.Request {
				return taskcreate.Request{ProjectRef: projectID, ParentID: parentID, Name: "c", Status: model.TaskStatusCompleted}
			},
			expTask: func(t *testing.T, task *model.Task) {
				assert.Equal(t, model.TaskStatusCompleted, task.Status)
				assert.Equal(t, 100, task.ProgressPercentage)
				assert.Equal(t, "1.1", task.WBSCode)
			},
			expParent:  model.TaskStatusCompleted,
			expPParent: 100,
			expProject: 100,
		},
		"a missing project should fail": {
			req: func(_, _, _ string) taskcreate.Request {
				return taskcreate.Request{ProjectRef: "missing", Name: "c"}
			},
			expErr: model.ErrNotFound,
		},
		"a missing parent should fail": {
			req: func(projectID, _, _ string) taskcreate.Request {
				return taskcreate.Request{ProjectRef: projectID, ParentID: "missing", Name: "c"}
			},
			expErr: model.ErrNotFound,
		},
		"a parent from another project should fail": {
			req: func(projectID, _, other string) taskcreate.Request {
				return taskcreate.Request{ProjectRef: projectID, ParentID: other, Name: "c"}
			},
			expErr: model.ErrNotValid,
		},
		"a task without name should fail": {
			req: func(projectID, _, _ string) taskcreate.Request {
				return taskcreate.Request{ProjectRef: projectID, Name: " "}
			},
			expErr: model.ErrNotValid,
		},
		"a task with an invalid progress should fail": {
			req: func(projectID, _, _ string) taskcreate.Request {
				return taskcreate.Request{ProjectRef: projectID, Name: "c", ProgressPercentage: 101}
			},
			expErr: model.ErrNotValid,
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
			svc, err := taskcreate.NewService(taskcreate.ServiceConfig{Repository: repo})
			require.NoError(err)

			p, err := projectSvc.Run(ctx, projectcreate.Request{Name: "p"})
			require.NoError(err)
			parent, err := svc.Run(ctx, taskcreate.Request{ProjectRef: p.ID, Name: "a"})
			require.NoError(err)
			other, err := projectSvc.Run(ctx, projectcreate.Request{Name: "other"})
			require.NoError(err)
			otherTask, err := svc.Run(ctx, taskcreate.Request{ProjectRef: other.ID, Name: "x"})
			require.NoError(err)

			got, err := svc.Run(ctx, test.req(p.ID, parent.ID, otherTask.ID))
			if test.expErr != nil {
				require.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)
			test.expTask(t, got)

			stored, err := repo.GetTask(ctx, got.ID)
			require.NoError(err)
			assert.Equal(t, got.Summary(), stored.Summary())
			assert.Equal(t, got.WBSCode, stored.WBSCode)

			gotParent, err := repo.GetTask(ctx, parent.ID)
			require.NoError(err)
			assert.Equal(t, test.expParent, gotParent.Status)
			assert.Equal(t, test.expPParent, gotParent.ProgressPercentage)

			gotProject, err := repo.GetProject(ctx, p.ID)
			require.NoError(err)
			assert.Equal(t, test.expProject, gotProject.ProgressPercentage)
		})
	}
}
