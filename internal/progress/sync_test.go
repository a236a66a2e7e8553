package progress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/progress"
)

func statusPtr(s model.TaskStatus) *model.TaskStatus { return &s }
func intPtr(i int) *int                            { return &i }

func TestSynchronize(t *testing.T) {
	tests := map[string]struct {
		req         progress.SyncRequest
		expStatus   model.TaskStatus
		expProgress int
	}{
		"Nothing requested should keep a consistent state.": {
			req:         progress.SyncRequest{PrevStatus: model.TaskStatusInProgress, PrevProgress: 30},
			expStatus:   model.TaskStatusInProgress,
			expProgress: 30,
		},
		"Requesting completed should force progress 100.": {
			req:         progress.SyncRequest{Status: statusPtr(model.TaskStatusCompleted), PrevStatus: model.TaskStatusTodo},
			expStatus:   model.TaskStatusCompleted,
			expProgress: 100,
		},
		"Requesting completed with a lower progress should still force 100.": {
			req: progress.SyncRequest{
				Status:     statusPtr(model.TaskStatusCompleted),
				Progress:   intPtr(20),
				PrevStatus: model.TaskStatusTodo,
			},
			expStatus:   model.TaskStatusCompleted,
			expProgress: 100,
		},
		"Progress 100 should promote to completed.": {
			req:         progress.SyncRequest{Progress: intPtr(100), PrevStatus: model.TaskStatusInProgress, PrevProgress: 60},
			expStatus:   model.TaskStatusCompleted,
			expProgress: 100,
		},
		"Progress 100 from review should promote to completed.": {
			req:         progress.SyncRequest{Progress: intPtr(100), PrevStatus: model.TaskStatusReview, PrevProgress: 90},
			expStatus:   model.TaskStatusCompleted,
			expProgress: 100,
		},
		"Progress 100 on a cancelled task should not promote.": {
			req:         progress.SyncRequest{Progress: intPtr(100), PrevStatus: model.TaskStatusCancelled, PrevProgress: 10},
			expStatus:   model.TaskStatusCancelled,
			expProgress: 100,
		},
		"Requesting cancelled with progress 100 should not promote.": {
			req: progress.SyncRequest{
				Status:     statusPtr(model.TaskStatusCancelled),
				Progress:   intPtr(100),
				PrevStatus: model.TaskStatusInProgress,
			},
			expStatus:   model.TaskStatusCancelled,
			expProgress: 100,
		},
		"Progress regression on a completed task should demote to in_progress.": {
			req:         progress.SyncRequest{Progress: intPtr(40), PrevStatus: model.TaskStatusCompleted, PrevProgress: 100},
			expStatus:   model.TaskStatusInProgress,
			expProgress: 40,
		},
		"Progress regression to 0 on a completed task should demote to in_progress, never todo.": {
			req:         progress.SyncRequest{Progress: intPtr(0), PrevStatus: model.TaskStatusCompleted, PrevProgress: 100},
			expStatus:   model.TaskStatusInProgress,
			expProgress: 0,
		},
		"Explicit cancelled on a completed task with lower progress should be honored.": {
			req: progress.SyncRequest{
				Status:       statusPtr(model.TaskStatusCancelled),
				Progress:     intPtr(40),
				PrevStatus:   model.TaskStatusCompleted,
				PrevProgress: 100,
			},
			expStatus:   model.TaskStatusCancelled,
			expProgress: 40,
		},
		"Explicit cancelled on a completed task without progress should keep progress.": {
			req: progress.SyncRequest{
				Status:       statusPtr(model.TaskStatusCancelled),
				PrevStatus:   model.TaskStatusCompleted,
				PrevProgress: 100,
			},
			expStatus:   model.TaskStatusCancelled,
			expProgress: 100,
		},
		"Explicit review on a completed task with lower progress should be honored.": {
			req: progress.SyncRequest{
				Status:       statusPtr(model.TaskStatusReview),
				Progress:     intPtr(90),
				PrevStatus:   model.TaskStatusCompleted,
				PrevProgress: 100,
			},
			expStatus:   model.TaskStatusReview,
			expProgress: 90,
		},
		"Reopening a completed task with only a status should keep it completed.": {
			req: progress.SyncRequest{
				Status:       statusPtr(model.TaskStatusInProgress),
				PrevStatus:   model.TaskStatusCompleted,
				PrevProgress: 100,
			},
			expStatus:   model.TaskStatusCompleted,
			expProgress: 100,
		},
		"Progress on a todo task should move it to in_progress.": {
			req:         progress.SyncRequest{Progress: intPtr(10), PrevStatus: model.TaskStatusTodo},
			expStatus:   model.TaskStatusInProgress,
			expProgress: 10,
		},
		"Requesting todo with progress should move it to in_progress.": {
			req: progress.SyncRequest{
				Status:       statusPtr(model.TaskStatusTodo),
				Progress:     intPtr(5),
				PrevStatus:   model.TaskStatusReview,
				PrevProgress: 80,
			},
			expStatus:   model.TaskStatusInProgress,
			expProgress: 5,
		},
		"Requesting todo with progress 0 should stay todo.": {
			req: progress.SyncRequest{
				Status:       statusPtr(model.TaskStatusTodo),
				Progress:     intPtr(0),
				PrevStatus:   model.TaskStatusInProgress,
				PrevProgress: 30,
			},
			expStatus:   model.TaskStatusTodo,
			expProgress: 0,
		},
		"Out of range progress should be clamped.": {
			req:         progress.SyncRequest{Progress: intPtr(150), PrevStatus: model.TaskStatusInProgress},
			expStatus:   model.TaskStatusCompleted,
			expProgress: 100,
		},
		"A completed task with an inconsistent stored progress should be repaired.": {
			req:         progress.SyncRequest{PrevStatus: model.TaskStatusCompleted, PrevProgress: 70},
			expStatus:   model.TaskStatusCompleted,
			expProgress: 100,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			gotStatus, gotProgress := progress.Synchronize(test.req)

			assert.Equal(t, test.expStatus, gotStatus)
			assert.Equal(t, test.expProgress, gotProgress)
		})
	}
}

func TestSynchronizeProgress100CompletesAnyNonCancelled(t *testing.T) {
	statuses := []model.TaskStatus{model.TaskStatusTodo, model.TaskStatusInProgress, model.TaskStatusReview, model.TaskStatusCompleted}
	for _, prev := range statuses {
		for prevProgress := 0; prevProgress <= 100; prevProgress += 25 {
			status, p := progress.Synchronize(progress.SyncRequest{Progress: intPtr(100), PrevStatus: prev, PrevProgress: prevProgress})
			assert.Equal(t, model.TaskStatusCompleted, status)
			assert.Equal(t, 100, p)
		}
	}
}

func TestSynchronizeRegressionFromCompleted(t *testing.T) {
	for p := 0; p < 100; p++ {
		status, got := progress.Synchronize(progress.SyncRequest{Progress: intPtr(p), PrevStatus: model.TaskStatusCompleted, PrevProgress: 100})
		assert.Equal(t, model.TaskStatusInProgress, status)
		assert.Equal(t, p, got)
	}
}

func TestRollup(t *testing.T) {
	tests := map[string]struct {
		task        model.TaskSummary
		children    []model.TaskSummary
		expStatus   model.TaskStatus
		expProgress int
		expOK       bool
	}{
		"A leaf task should keep its values.": {
			task:        summary(model.TaskStatusReview, model.TaskPriorityMedium, 1, 80),
			expStatus:   model.TaskStatusReview,
			expProgress: 80,
			expOK:       false,
		},
		"All completed children should complete the parent.": {
			task: summary(model.TaskStatusTodo, model.TaskPriorityMedium, 1, 0),
			children: []model.TaskSummary{
				summary(model.TaskStatusCompleted, model.TaskPriorityMedium, 4, 100),
				summary(model.TaskStatusCompleted, model.TaskPriorityMedium, 4, 100),
			},
			expStatus:   model.TaskStatusCompleted,
			expProgress: 100,
			expOK:       true,
		},
		"Manual parent progress should be overwritten by the children.": {
			task: summary(model.TaskStatusInProgress, model.TaskPriorityMedium, 1, 90),
			children: []model.TaskSummary{
				summary(model.TaskStatusTodo, model.TaskPriorityMedium, 1, 0),
			},
			expStatus:   model.TaskStatusInProgress,
			expProgress: 0,
			expOK:       true,
		},
		"A completed parent gaining an unfinished child should be demoted.": {
			task: summary(model.TaskStatusCompleted, model.TaskPriorityMedium, 1, 100),
			children: []model.TaskSummary{
				summary(model.TaskStatusCompleted, model.TaskPriorityMedium, 1, 100),
				summary(model.TaskStatusTodo, model.TaskPriorityMedium, 1, 0),
			},
			expStatus:   model.TaskStatusInProgress,
			expProgress: 50,
			expOK:       true,
		},
		"Children progress reaching 100 without all completed should complete the parent.": {
			task: summary(model.TaskStatusInProgress, model.TaskPriorityMedium, 1, 50),
			children: []model.TaskSummary{
				summary(model.TaskStatusCompleted, model.TaskPriorityMedium, 1, 100),
				summary(model.TaskStatusCancelled, model.TaskPriorityMedium, 1, 100),
			},
			expStatus:   model.TaskStatusCompleted,
			expProgress: 100,
			expOK:       true,
		},
		"A todo parent with started children should move to in_progress.": {
			task: summary(model.TaskStatusTodo, model.TaskPriorityMedium, 1, 0),
			children: []model.TaskSummary{
				summary(model.TaskStatusInProgress, model.TaskPriorityMedium, 1, 30),
			},
			expStatus:   model.TaskStatusInProgress,
			expProgress: 30,
			expOK:       true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			status, p, ok := progress.Rollup(test.task, test.children)

			assert.Equal(t, test.expOK, ok)
			assert.Equal(t, test.expStatus, status)
			assert.Equal(t, test.expProgress, p)
		})
	}
}
