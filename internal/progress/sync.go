package progress

import "github.com/slok/wbs/internal/model"

// SyncRequest is a requested status and/or progress change on a task.
// Nil fields keep the previous value.
type SyncRequest struct {
	Status       *model.TaskStatus
	Progress     *int
	PrevStatus   model.TaskStatus
	PrevProgress int
}

// Synchronize resolves the final status and progress of a task after a change.
// Rules are evaluated in order and the first one that matches wins:
//
//  1. Completed status forces progress 100. A completed status inherited from
//     the previous state doesn't apply when a progress was requested.
//  2. Progress 100 promotes to completed, except cancelled tasks.
//  3. Progress under 100 on a previously completed task without an explicit
//     status demotes it to in_progress.
//  4. Progress over 0 on a todo task moves it to in_progress.
//  5. Otherwise the resolved values stand.
func Synchronize(r SyncRequest) (model.TaskStatus, int) {
	status := r.PrevStatus
	if r.Status != nil {
		status = *r.Status
	}
	progress := clampProgress(r.PrevProgress)
	if r.Progress != nil {
		progress = clampProgress(*r.Progress)
	}
	explicitStatus := r.Status != nil

	switch {
	case status == model.TaskStatusCompleted && (explicitStatus || r.Progress == nil):
		return model.TaskStatusCompleted, 100
	case progress == 100 && status != model.TaskStatusCancelled:
		return model.TaskStatusCompleted, 100
	case r.PrevStatus == model.TaskStatusCompleted && progress < 100 && !explicitStatus:
		return model.TaskStatusInProgress, progress
	case progress > 0 && status == model.TaskStatusTodo:
		return model.TaskStatusInProgress, progress
	}

	return status, progress
}

// Rollup resolves the status and progress of a task from its direct children.
// When the task has no children ok is false and the task values stand.
func Rollup(task model.TaskSummary, children []model.TaskSummary) (status model.TaskStatus, progress int, ok bool) {
	agg := Aggregate(children)
	if !agg.HasChildren {
		return task.Status, task.ProgressPercentage, false
	}

	if agg.AllCompleted {
		return model.TaskStatusCompleted, 100, true
	}

	status, progress = Synchronize(SyncRequest{
		Progress:     &agg.WeightedProgress,
		PrevStatus:   task.Status,
		PrevProgress: task.ProgressPercentage,
	})
	return status, progress, true
}
