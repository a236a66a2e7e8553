// Package propagation keeps the status and progress of a project task tree
// consistent after a single task changes.
//
// Every write is done through the Store in the order the walk visits the
// tasks, callers are expected to run a whole operation inside a single unit
// of work so a failure halfway doesn't leave the tree partially updated.
package propagation

import (
	"context"
	"fmt"

	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/progress"
)

// DriverConfig is the configuration for the propagation driver.
type DriverConfig struct {
	Store  Store
	Logger log.Logger
}

func (c *DriverConfig) defaults() error {
	if c.Store == nil {
		return fmt.Errorf("store is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "propagation.Driver"})
	return nil
}

// Driver walks task trees upwards and downwards applying the progress rules.
type Driver struct {
	store  Store
	logger log.Logger
}

// NewDriver returns a new propagation driver.
func NewDriver(cfg DriverConfig) (*Driver, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Driver{
		store:  cfg.Store,
		logger: cfg.Logger,
	}, nil
}

// OnTaskCreated synchronizes the initial status and progress of a stored new
// task and propagates it to its ancestors and project.
func (d *Driver) OnTaskCreated(ctx context.Context, task model.Task) (*model.Task, error) {
	status, p := progress.Synchronize(progress.SyncRequest{
		Status:       &task.Status,
		Progress:     &task.ProgressPercentage,
		PrevStatus:   model.TaskStatusTodo,
		PrevProgress: 0,
	})

	if err := d.store.UpdateTaskStatusProgress(ctx, task.ID, status, p); err != nil {
		return nil, fmt.Errorf("could not store task %s progress: %w", task.ID, err)
	}
	task.Status = status
	task.ProgressPercentage = p

	if err := d.propagateUp(ctx, task); err != nil {
		return nil, err
	}

	return &task, nil
}

// StatusChange is a requested status and/or progress change on a task.
type StatusChange struct {
	TaskID   string
	Status   *model.TaskStatus
	Progress *int
	// PropagateDown forces all the descendants to completed when the task
	// becomes completed.
	PropagateDown bool
}

// OnTaskStatusChanged applies a status/progress change to a task and
// propagates it through the tree.
func (d *Driver) OnTaskStatusChanged(ctx context.Context, change StatusChange) (*model.Task, error) {
	task, err := d.store.GetTask(ctx, change.TaskID)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}
	prevStatus := task.Status

	status, p := progress.Synchronize(progress.SyncRequest{
		Status:       change.Status,
		Progress:     change.Progress,
		PrevStatus:   task.Status,
		PrevProgress: task.ProgressPercentage,
	})
	if err := d.setTask(ctx, task.Summary(), status, p); err != nil {
		return nil, err
	}
	task.Status = status
	task.ProgressPercentage = p

	if change.PropagateDown && status == model.TaskStatusCompleted && prevStatus != model.TaskStatusCompleted {
		n, err := d.completeDescendants(ctx, task.ID)
		if err != nil {
			return nil, err
		}
		d.logger.Debugf("Task %s completion forced on %d descendants", task.ID, n)
	}

	if err := d.propagateUp(ctx, *task); err != nil {
		return nil, err
	}

	return task, nil
}

// OnTaskWeightChanged propagates a change in how a task weights on its parent
// (priority or estimated effort).
func (d *Driver) OnTaskWeightChanged(ctx context.Context, taskID string) error {
	task, err := d.store.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("could not get task: %w", err)
	}

	return d.propagateUp(ctx, *task)
}

// OnTaskDeleted deletes a task (and its descendants) and recomputes its
// former parent chain and project.
func (d *Driver) OnTaskDeleted(ctx context.Context, taskID string) (*model.Task, error) {
	task, err := d.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	if err := d.store.DeleteTask(ctx, taskID); err != nil {
		return nil, fmt.Errorf("could not delete task: %w", err)
	}

	if err := d.propagateUp(ctx, *task); err != nil {
		return nil, err
	}

	return task, nil
}

// RecomputeAncestors recomputes a task from its direct children and then
// every ancestor up to the root. It stops on the first task without children.
func (d *Driver) RecomputeAncestors(ctx context.Context, taskID string) error {
	for id := taskID; id != ""; {
		task, err := d.store.GetTask(ctx, id)
		if err != nil {
			return fmt.Errorf("could not get task: %w", err)
		}

		children, err := d.store.ListChildTasks(ctx, id)
		if err != nil {
			return fmt.Errorf("could not list task %s children: %w", id, err)
		}

		status, p, ok := progress.Rollup(task.Summary(), summaries(children))
		if !ok {
			return nil
		}
		if err := d.setTask(ctx, task.Summary(), status, p); err != nil {
			return err
		}

		id = task.ParentID
	}

	return nil
}

// RecomputeProject sets the project progress from its root tasks. Projects
// without tasks keep their progress.
func (d *Driver) RecomputeProject(ctx context.Context, projectID string) error {
	roots, err := d.store.ListRootTasks(ctx, projectID)
	if err != nil {
		return fmt.Errorf("could not list project %s root tasks: %w", projectID, err)
	}

	agg := progress.Aggregate(summaries(roots))
	if !agg.HasChildren {
		return nil
	}

	if err := d.store.UpdateProjectProgress(ctx, projectID, agg.WeightedProgress); err != nil {
		return fmt.Errorf("could not store project %s progress: %w", projectID, err)
	}

	return nil
}

// RecalcReport summarizes a recalculation.
type RecalcReport struct {
	// Visited is the number of recalculated tasks.
	Visited int
	// Updated are the tasks whose status or progress changed.
	Updated []model.TaskSummary
}

// RecalculateSubtree re-derives a task and all its descendants bottom-up, then
// its ancestors and project.
func (d *Driver) RecalculateSubtree(ctx context.Context, taskID string) (*RecalcReport, error) {
	task, err := d.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	tree, err := d.loadTree(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}

	visited, changed := tree.Fold(task.ID)
	if err := d.storeChanged(ctx, changed); err != nil {
		return nil, err
	}

	if err := d.propagateUp(ctx, *task); err != nil {
		return nil, err
	}

	d.logger.Debugf("Recalculated subtree of %s: %d visited, %d updated", taskID, visited, len(changed))

	return &RecalcReport{Visited: visited, Updated: changed}, nil
}

// RecalculateAll re-derives every task of a project bottom-up and then the
// project progress. Used to repair trees left inconsistent.
func (d *Driver) RecalculateAll(ctx context.Context, projectID string) (*RecalcReport, error) {
	tree, err := d.loadTree(ctx, projectID)
	if err != nil {
		return nil, err
	}

	visited, changed := tree.FoldAll()
	if err := d.storeChanged(ctx, changed); err != nil {
		return nil, err
	}

	agg := progress.Aggregate(tree.Roots())
	if agg.HasChildren {
		if err := d.store.UpdateProjectProgress(ctx, projectID, agg.WeightedProgress); err != nil {
			return nil, fmt.Errorf("could not store project %s progress: %w", projectID, err)
		}
	}

	if visited != tree.Len() {
		d.logger.Warningf("Project %s has %d tasks unreachable from its roots", projectID, tree.Len()-visited)
	}
	d.logger.Debugf("Recalculated project %s: %d visited, %d updated", projectID, visited, len(changed))

	return &RecalcReport{Visited: visited, Updated: changed}, nil
}

// propagateUp recomputes the ancestors of a task and its project.
func (d *Driver) propagateUp(ctx context.Context, task model.Task) error {
	if !task.IsRoot() {
		if err := d.RecomputeAncestors(ctx, task.ParentID); err != nil {
			return fmt.Errorf("could not recompute task %s ancestors: %w", task.ID, err)
		}
	}

	if err := d.RecomputeProject(ctx, task.ProjectID); err != nil {
		return fmt.Errorf("could not recompute project: %w", err)
	}

	return nil
}

// completeDescendants forces every descendant of a task to completed,
// bypassing the synchronization rules.
func (d *Driver) completeDescendants(ctx context.Context, taskID string) (int, error) {
	count := 0
	queue := []string{taskID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		children, err := d.store.ListChildTasks(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("could not list task %s children: %w", id, err)
		}

		for _, c := range children {
			if err := d.setTask(ctx, c.Summary(), model.TaskStatusCompleted, 100); err != nil {
				return 0, err
			}
			queue = append(queue, c.ID)
			count++
		}
	}

	return count, nil
}

func (d *Driver) loadTree(ctx context.Context, projectID string) (*progress.Tree, error) {
	tasks, err := d.store.ListProjectTasks(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("could not list project %s tasks: %w", projectID, err)
	}

	return progress.NewTree(summaries(tasks)), nil
}

func (d *Driver) storeChanged(ctx context.Context, changed []model.TaskSummary) error {
	for _, t := range changed {
		if err := d.store.UpdateTaskStatusProgress(ctx, t.ID, t.Status, t.ProgressPercentage); err != nil {
			return fmt.Errorf("could not store task %s progress: %w", t.ID, err)
		}
	}
	return nil
}

// setTask stores the status and progress of a task when they differ from the current ones.
func (d *Driver) setTask(ctx context.Context, current model.TaskSummary, status model.TaskStatus, p int) error {
	if current.Status == status && current.ProgressPercentage == p {
		return nil
	}

	if err := d.store.UpdateTaskStatusProgress(ctx, current.ID, status, p); err != nil {
		return fmt.Errorf("could not store task %s progress: %w", current.ID, err)
	}

	d.logger.Debugf("Task %s: %s/%d%% -> %s/%d%%", current.ID, current.Status, current.ProgressPercentage, status, p)
	return nil
}

func summaries(tasks []model.Task) []model.TaskSummary {
	res := make([]model.TaskSummary, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, t.Summary())
	}
	return res
}
