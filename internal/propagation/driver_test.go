package propagation_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/propagation"
	"github.com/slok/wbs/internal/propagation/propagationmock"
	"github.com/slok/wbs/internal/storage/memory"
)

const projectID = "p1"

func statusPtr(s model.TaskStatus) *model.TaskStatus { return &s }
func intPtr(i int) *int                            { return &i }

type node struct {
	id       string
	parent   string
	status   model.TaskStatus
	priority model.TaskPriority
	hours    float64
	progress int
}

type state struct {
	status   model.TaskStatus
	progress int
}

// newRepo returns a memory repository with a project and the tasks stored as
// they are, without any synchronization.
func newRepo(t *testing.T, nodes []node) *memory.Repository {
	t.Helper()
	ctx := context.Background()

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, repo.CreateProject(ctx, model.Project{
		ID:          projectID,
		Name:        "test",
		Status:      model.ProjectStatusInProgress,
		Methodology: model.ProjectMethodologyWaterfall,
		CreatedAt:   now,
		UpdatedAt:   now,
	}))

	for i, n := range nodes {
		priority := n.priority
		if priority == "" {
			priority = model.TaskPriorityMedium
		}
		status := n.status
		if status == "" {
			status = model.TaskStatusTodo
		}
		require.NoError(t, repo.CreateTask(ctx, model.Task{
			ID:                 n.id,
			ProjectID:          projectID,
			ParentID:           n.parent,
			Name:               n.id,
			Status:             status,
			Priority:           priority,
			EstimatedHours:     n.hours,
			ProgressPercentage: n.progress,
			SortOrder:          i,
			CreatedAt:          now,
			UpdatedAt:          now,
		}))
	}

	return repo
}

func newDriver(t *testing.T, store propagation.Store) *propagation.Driver {
	t.Helper()
	d, err := propagation.NewDriver(propagation.DriverConfig{Store: store})
	require.NoError(t, err)
	return d
}

func assertState(t *testing.T, repo *memory.Repository, expTasks map[string]state, expProject int) {
	t.Helper()
	ctx := context.Background()

	for id, exp := range expTasks {
		task, err := repo.GetTask(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, exp, state{status: task.Status, progress: task.ProgressPercentage}, "task %s", id)
	}

	p, err := repo.GetProject(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, expProject, p.ProgressPercentage, "project progress")
}

func TestDriverOnTaskStatusChanged(t *testing.T) {
	tests := map[string]struct {
		nodes      []node
		change     propagation.StatusChange
		expTask    state
		expTasks   map[string]state
		expProject int
		expErr     error
	}{
		"Completing a root task should weight the project progress by priority and hours.": {
			nodes: []node{
				{id: "a", status: model.TaskStatusInProgress, priority: model.TaskPriorityHigh, hours: 10, progress: 50},
				{id: "b", priority: model.TaskPriorityLow, hours: 5},
			},
			change:  propagation.StatusChange{TaskID: "b", Status: statusPtr(model.TaskStatusCompleted)},
			expTask: state{model.TaskStatusCompleted, 100},
			expTasks: map[string]state{
				"a": {model.TaskStatusInProgress, 50},
			},
			expProject: 57,
		},

		"A parent whose children are all completed should be completed.": {
			nodes: []node{
				{id: "a", status: model.TaskStatusInProgress, progress: 80},
				{id: "c1", parent: "a", status: model.TaskStatusCompleted, hours: 4, progress: 100},
				{id: "c2", parent: "a", status: model.TaskStatusInProgress, hours: 4, progress: 60},
			},
			change:  propagation.StatusChange{TaskID: "c2", Progress: intPtr(100)},
			expTask: state{model.TaskStatusCompleted, 100},
			expTasks: map[string]state{
				"a":  {model.TaskStatusCompleted, 100},
				"c1": {model.TaskStatusCompleted, 100},
			},
			expProject: 100,
		},

		"Progress on a todo leaf should start it and its ancestors.": {
			nodes: []node{
				{id: "a"},
				{id: "b", parent: "a"},
				{id: "c1", parent: "b", priority: model.TaskPriorityUrgent, hours: 2},
				{id: "c2", parent: "b", priority: model.TaskPriorityLow, hours: 2},
			},
			change:  propagation.StatusChange{TaskID: "c1", Progress: intPtr(50)},
			expTask: state{model.TaskStatusInProgress, 50},
			expTasks: map[string]state{
				"b":  {model.TaskStatusInProgress, 40},
				"a":  {model.TaskStatusInProgress, 40},
				"c2": {model.TaskStatusTodo, 0},
			},
			expProject: 40,
		},

		"Completing a parent with downwards propagation should complete all its descendants.": {
			nodes: []node{
				{id: "a", status: model.TaskStatusInProgress, progress: 20},
				{id: "c1", parent: "a"},
				{id: "c2", parent: "a", status: model.TaskStatusInProgress, progress: 30},
				{id: "g1", parent: "c2", status: model.TaskStatusInProgress, progress: 30},
				{id: "other"},
			},
			change:  propagation.StatusChange{TaskID: "a", Status: statusPtr(model.TaskStatusCompleted), PropagateDown: true},
			expTask: state{model.TaskStatusCompleted, 100},
			expTasks: map[string]state{
				"c1":    {model.TaskStatusCompleted, 100},
				"c2":    {model.TaskStatusCompleted, 100},
				"g1":    {model.TaskStatusCompleted, 100},
				"other": {model.TaskStatusTodo, 0},
			},
			expProject: 50,
		},

		"Completing a parent without downwards propagation should leave its children untouched.": {
			nodes: []node{
				{id: "a", status: model.TaskStatusInProgress, progress: 20},
				{id: "c1", parent: "a"},
			},
			change:  propagation.StatusChange{TaskID: "a", Status: statusPtr(model.TaskStatusCompleted)},
			expTask: state{model.TaskStatusCompleted, 100},
			expTasks: map[string]state{
				"c1": {model.TaskStatusTodo, 0},
			},
			expProject: 100,
		},

		"Regressing a completed child should reopen its completed parent.": {
			nodes: []node{
				{id: "a", status: model.TaskStatusCompleted, progress: 100},
				{id: "c1", parent: "a", status: model.TaskStatusCompleted, hours: 4, progress: 100},
				{id: "c2", parent: "a", status: model.TaskStatusCompleted, hours: 4, progress: 100},
			},
			change:  propagation.StatusChange{TaskID: "c2", Progress: intPtr(40)},
			expTask: state{model.TaskStatusInProgress, 40},
			expTasks: map[string]state{
				"a": {model.TaskStatusInProgress, 70},
			},
			expProject: 70,
		},

		"Reaching 100% through aggregation should silently complete the parent.": {
			nodes: []node{
				{id: "a", status: model.TaskStatusInProgress, progress: 50},
				{id: "c1", parent: "a", status: model.TaskStatusCancelled, progress: 100},
				{id: "c2", parent: "a", status: model.TaskStatusInProgress, progress: 0},
			},
			change:  propagation.StatusChange{TaskID: "c2", Progress: intPtr(100)},
			expTask: state{model.TaskStatusCompleted, 100},
			expTasks: map[string]state{
				"a":  {model.TaskStatusCompleted, 100},
				"c1": {model.TaskStatusCancelled, 100},
			},
			expProject: 100,
		},

		"Cancelled tasks should keep a 100% progress without completing.": {
			nodes: []node{
				{id: "a", status: model.TaskStatusInProgress, progress: 10},
			},
			change:     propagation.StatusChange{TaskID: "a", Status: statusPtr(model.TaskStatusCancelled), Progress: intPtr(100)},
			expTask:    state{model.TaskStatusCancelled, 100},
			expProject: 100,
		},

		"An explicit review status on a completed task should be kept.": {
			nodes: []node{
				{id: "a", status: model.TaskStatusCompleted, progress: 100},
			},
			change:     propagation.StatusChange{TaskID: "a", Status: statusPtr(model.TaskStatusReview), Progress: intPtr(90)},
			expTask:    state{model.TaskStatusReview, 90},
			expProject: 90,
		},

		"A missing task should fail without changes.": {
			nodes: []node{
				{id: "a", status: model.TaskStatusInProgress, progress: 10},
			},
			change:     propagation.StatusChange{TaskID: "missing", Progress: intPtr(50)},
			expTasks:   map[string]state{"a": {model.TaskStatusInProgress, 10}},
			expProject: 0,
			expErr:     model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			repo := newRepo(t, test.nodes)
			d := newDriver(t, repo)

			if test.expTasks == nil {
				test.expTasks = map[string]state{}
			}

			got, err := d.OnTaskStatusChanged(context.Background(), test.change)
			if test.expErr != nil {
				require.ErrorIs(err, test.expErr)
			} else {
				require.NoError(err)
				assert.Equal(t, test.expTask, state{got.Status, got.ProgressPercentage})
				test.expTasks[test.change.TaskID] = test.expTask
			}

			assertState(t, repo, test.expTasks, test.expProject)
		})
	}
}

func TestDriverOnTaskCreated(t *testing.T) {
	tests := map[string]struct {
		nodes      []node
		newTask    node
		expTask    state
		expTasks   map[string]state
		expProject int
	}{
		"A new todo child should dilute its parent progress.": {
			nodes: []node{
				{id: "a", status: model.TaskStatusCompleted, progress: 100},
				{id: "c1", parent: "a", status: model.TaskStatusCompleted, progress: 100},
			},
			newTask: node{id: "c2", parent: "a"},
			expTask: state{model.TaskStatusTodo, 0},
			expTasks: map[string]state{
				"a": {model.TaskStatusInProgress, 50},
			},
			expProject: 50,
		},

		"A new task created with full progress should be completed.": {
			nodes: []node{
				{id: "a"},
			},
			newTask: node{id: "c1", parent: "a", progress: 100},
			expTask: state{model.TaskStatusCompleted, 100},
			expTasks: map[string]state{
				"a": {model.TaskStatusCompleted, 100},
			},
			expProject: 100,
		},

		"A new root task should update the project progress.": {
			nodes: []node{
				{id: "a", status: model.TaskStatusCompleted, progress: 100},
			},
			newTask:    node{id: "b", progress: 50},
			expTask:    state{model.TaskStatusInProgress, 50},
			expProject: 75,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()

			repo := newRepo(t, append(test.nodes, test.newTask))
			d := newDriver(t, repo)

			task, err := repo.GetTask(ctx, test.newTask.id)
			require.NoError(err)

			got, err := d.OnTaskCreated(ctx, *task)
			require.NoError(err)
			assert.Equal(t, test.expTask, state{got.Status, got.ProgressPercentage})

			if test.expTasks == nil {
				test.expTasks = map[string]state{}
			}
			test.expTasks[test.newTask.id] = test.expTask
			assertState(t, repo, test.expTasks, test.expProject)
		})
	}
}

func TestDriverOnTaskDeleted(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	repo := newRepo(t, []node{
		{id: "a", status: model.TaskStatusInProgress, progress: 50},
		{id: "c1", parent: "a", status: model.TaskStatusCompleted, progress: 100},
		{id: "c2", parent: "a"},
		{id: "g1", parent: "c2"},
	})
	d := newDriver(t, repo)

	deleted, err := d.OnTaskDeleted(ctx, "c2")
	require.NoError(err)
	assert.Equal(t, "a", deleted.ParentID)

	_, err = repo.GetTask(ctx, "g1")
	require.ErrorIs(err, model.ErrNotFound)

	assertState(t, repo, map[string]state{
		"a": {model.TaskStatusCompleted, 100},
	}, 100)

	_, err = d.OnTaskDeleted(ctx, "c2")
	require.ErrorIs(err, model.ErrNotFound)
}

func TestDriverOnTaskWeightChanged(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	repo := newRepo(t, []node{
		{id: "a", status: model.TaskStatusInProgress, progress: 50},
		{id: "c1", parent: "a", status: model.TaskStatusCompleted, progress: 100, hours: 1},
		{id: "c2", parent: "a", hours: 1},
	})
	d := newDriver(t, repo)

	c1, err := repo.GetTask(ctx, "c1")
	require.NoError(err)
	c1.Priority = model.TaskPriorityUrgent
	c1.EstimatedHours = 6
	require.NoError(repo.UpdateTask(ctx, *c1))

	require.NoError(d.OnTaskWeightChanged(ctx, "c1"))

	// 100*24 / (24+2).
	assertState(t, repo, map[string]state{
		"a": {model.TaskStatusInProgress, 92},
	}, 92)
}

func TestDriverRecalculate(t *testing.T) {
	// Stale tree, every parent is out of sync with its children.
	nodes := []node{
		{id: "a", status: model.TaskStatusTodo},
		{id: "b", parent: "a", status: model.TaskStatusCompleted, progress: 100},
		{id: "c1", parent: "b", status: model.TaskStatusCompleted, progress: 100},
		{id: "c2", parent: "b", status: model.TaskStatusInProgress, progress: 50},
		{id: "d", parent: "a", status: model.TaskStatusCompleted, progress: 100},
		{id: "e", status: model.TaskStatusInProgress, progress: 10},
		{id: "e1", parent: "e", status: model.TaskStatusCompleted, progress: 100},
	}
	expTasks := map[string]state{
		"b":  {model.TaskStatusInProgress, 75},
		"a":  {model.TaskStatusInProgress, 88},
		"e":  {model.TaskStatusCompleted, 100},
		"c2": {model.TaskStatusInProgress, 50},
	}

	t.Run("Recalculating a project should fix every task and be idempotent.", func(t *testing.T) {
		require := require.New(t)
		ctx := context.Background()
		repo := newRepo(t, nodes)
		d := newDriver(t, repo)

		report, err := d.RecalculateAll(ctx, projectID)
		require.NoError(err)
		assert.Equal(t, len(nodes), report.Visited)
		assert.Len(t, report.Updated, 3)
		assertState(t, repo, expTasks, 94)

		report, err = d.RecalculateAll(ctx, projectID)
		require.NoError(err)
		assert.Empty(t, report.Updated)
		assertState(t, repo, expTasks, 94)
	})

	t.Run("Recalculating a subtree should fix the subtree and its ancestors.", func(t *testing.T) {
		require := require.New(t)
		ctx := context.Background()
		repo := newRepo(t, nodes)
		d := newDriver(t, repo)

		report, err := d.RecalculateSubtree(ctx, "b")
		require.NoError(err)
		assert.Equal(t, 3, report.Visited)
		assert.Len(t, report.Updated, 1)

		// The sibling subtree of "e" is not touched.
		assertState(t, repo, map[string]state{
			"b": {model.TaskStatusInProgress, 75},
			"a": {model.TaskStatusInProgress, 88},
			"e": {model.TaskStatusInProgress, 10},
		}, 49)

		report, err = d.RecalculateSubtree(ctx, "b")
		require.NoError(err)
		assert.Empty(t, report.Updated)
	})
}

func TestDriverStoreErrors(t *testing.T) {
	errStore := fmt.Errorf("store error")
	leaf := func() *model.Task {
		return &model.Task{ID: "c1", ProjectID: projectID, ParentID: "a", Status: model.TaskStatusTodo, Priority: model.TaskPriorityMedium}
	}

	tests := map[string]struct {
		mock func(m *propagationmock.MockStore)
		exec func(d *propagation.Driver) error
	}{
		"Failing to get the task should fail.": {
			mock: func(m *propagationmock.MockStore) {
				m.On("GetTask", mock.Anything, "c1").Once().Return(nil, errStore)
			},
			exec: func(d *propagation.Driver) error {
				_, err := d.OnTaskStatusChanged(context.Background(), propagation.StatusChange{TaskID: "c1", Progress: intPtr(10)})
				return err
			},
		},

		"Failing to store the task should stop the propagation.": {
			mock: func(m *propagationmock.MockStore) {
				m.On("GetTask", mock.Anything, "c1").Once().Return(leaf(), nil)
				m.On("UpdateTaskStatusProgress", mock.Anything, "c1", model.TaskStatusInProgress, 10).Once().Return(errStore)
			},
			exec: func(d *propagation.Driver) error {
				_, err := d.OnTaskStatusChanged(context.Background(), propagation.StatusChange{TaskID: "c1", Progress: intPtr(10)})
				return err
			},
		},

		"Failing to list the children of an ancestor should fail.": {
			mock: func(m *propagationmock.MockStore) {
				m.On("GetTask", mock.Anything, "c1").Once().Return(leaf(), nil)
				m.On("UpdateTaskStatusProgress", mock.Anything, "c1", model.TaskStatusInProgress, 10).Once().Return(nil)
				m.On("GetTask", mock.Anything, "a").Once().Return(&model.Task{ID: "a", ProjectID: projectID}, nil)
				m.On("ListChildTasks", mock.Anything, "a").Once().Return(nil, errStore)
			},
			exec: func(d *propagation.Driver) error {
				_, err := d.OnTaskStatusChanged(context.Background(), propagation.StatusChange{TaskID: "c1", Progress: intPtr(10)})
				return err
			},
		},

		"Failing to store the project progress should fail.": {
			mock: func(m *propagationmock.MockStore) {
				m.On("ListRootTasks", mock.Anything, projectID).Once().Return([]model.Task{{ID: "a", Status: model.TaskStatusTodo}}, nil)
				m.On("UpdateProjectProgress", mock.Anything, projectID, 0).Once().Return(errStore)
			},
			exec: func(d *propagation.Driver) error {
				return d.RecomputeProject(context.Background(), projectID)
			},
		},

		"Failing to delete the task should fail.": {
			mock: func(m *propagationmock.MockStore) {
				m.On("GetTask", mock.Anything, "c1").Once().Return(leaf(), nil)
				m.On("DeleteTask", mock.Anything, "c1").Once().Return(errStore)
			},
			exec: func(d *propagation.Driver) error {
				_, err := d.OnTaskDeleted(context.Background(), "c1")
				return err
			},
		},

		"Failing to load the project tasks should fail the recalculation.": {
			mock: func(m *propagationmock.MockStore) {
				m.On("ListProjectTasks", mock.Anything, projectID).Once().Return(nil, errStore)
			},
			exec: func(d *propagation.Driver) error {
				_, err := d.RecalculateAll(context.Background(), projectID)
				return err
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			m := propagationmock.NewMockStore(t)
			test.mock(m)

			d := newDriver(t, m)
			err := test.exec(d)
			assert.ErrorIs(t, err, errStore)
		})
	}
}

func TestDriverProjectWithoutTasks(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	repo := newRepo(t, nil)
	require.NoError(repo.UpdateProjectProgress(ctx, projectID, 33))
	d := newDriver(t, repo)

	require.NoError(d.RecomputeProject(ctx, projectID))
	report, err := d.RecalculateAll(ctx, projectID)
	require.NoError(err)
	assert.Equal(t, 0, report.Visited)

	assertState(t, repo, nil, 33)
}
