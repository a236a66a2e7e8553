package lib

import (
	"time"

	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/propagation"
)

// ProjectStatus is the status of a project.
type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "planning"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusOnHold     ProjectStatus = "on_hold"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

// Methodology is the delivery methodology of a project.
type Methodology string

const (
	MethodologyWaterfall Methodology = "waterfall"
	MethodologyAgile     Methodology = "agile"
	MethodologyHybrid    Methodology = "hybrid"
)

// TaskStatus is the status of a task.
//
// Status and progress are kept consistent by the progress engine: a
// completed task is always at 100% and a task at 100% is completed, unless
// it's cancelled.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskPriority is the priority of a task, it's also how much the task weights
// on its parent progress (low 1, medium 2, high 3, urgent 4).
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Project is a project returned by the SDK.
type Project struct {
	ID          string
	Code        string
	Name        string
	Description string
	Status      ProjectStatus
	Methodology Methodology
	// ProgressPercentage is the weighted progress of the root tasks.
	ProgressPercentage int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Task is a task returned by the SDK.
type Task struct {
	ID        string
	ProjectID string
	// ParentID is empty on root tasks.
	ParentID           string
	WBSCode            string
	Name               string
	Description        string
	Notes              string
	Status             TaskStatus
	Priority           TaskPriority
	EstimatedHours     float64
	ActualHours        float64
	ProgressPercentage int
	IsMilestone        bool
	SortOrder          int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ProjectTree is a project with all its tasks in WBS order.
type ProjectTree struct {
	Project Project
	Tasks   []Task
}

// TaskChange is a task whose status or progress was changed by a recalculation.
type TaskChange struct {
	ID                 string
	Status             TaskStatus
	ProgressPercentage int
}

// RecalcReport is the summary of a recalculation.
type RecalcReport struct {
	// Visited is the number of recalculated tasks.
	Visited int
	// Updated are the tasks that changed.
	Updated []TaskChange
}

// CreateProjectOpts configures project creation. Name is required.
type CreateProjectOpts struct {
	// Code is an optional unique (case insensitive) short code.
	Code        string
	Name        string
	Description string
	// Status defaults to planning.
	Status ProjectStatus
	// Methodology defaults to waterfall.
	Methodology Methodology
}

// UpdateProjectOpts configures a project update, only the set fields change.
type UpdateProjectOpts struct {
	Code        *string
	Name        *string
	Description *string
	Status      *ProjectStatus
	Methodology *Methodology
}

// ListProjectsOpts configures project listing.
//
// Pass nil to [Client.ListProjects] to list all projects.
type ListProjectsOpts struct {
	// Status filters projects by status. Nil means all statuses.
	Status *ProjectStatus
}

// CreateTaskOpts configures task creation. Name is required.
type CreateTaskOpts struct {
	// ParentID is the parent task, empty for root tasks.
	ParentID    string
	Name        string
	Description string
	Notes       string
	// Status defaults to todo.
	Status TaskStatus
	// Priority defaults to medium.
	Priority           TaskPriority
	EstimatedHours     float64
	ActualHours        float64
	ProgressPercentage int
	IsMilestone        bool
	// SortOrder defaults to the position of the task among its siblings.
	SortOrder *int
}

// UpdateTaskOpts configures a task update, only the set fields change.
//
// Status and ProgressPercentage changes are resolved by the progress engine
// and propagated to the ancestors and descendants of the task.
type UpdateTaskOpts struct {
	Name               *string
	Description        *string
	Notes              *string
	Status             *TaskStatus
	Priority           *TaskPriority
	EstimatedHours     *float64
	ActualHours        *float64
	ProgressPercentage *int
	IsMilestone        *bool
	SortOrder          *int
	// NoPropagateDown stops a task that becomes completed from completing
	// all its descendants.
	NoPropagateDown bool
}

// ListTasksOpts configures task listing.
//
// Pass nil to [Client.ListTasks] to list all the project tasks.
type ListTasksOpts struct {
	// ParentID only lists the direct children of this task.
	ParentID string
	// Status filters tasks by status. Nil means all statuses.
	Status *TaskStatus
}

// ImportResult is the result of importing a plan.
type ImportResult struct {
	Project Project
	// Tasks is the number of imported tasks.
	Tasks int
}

// --- Conversion helpers ---

func fromInternalProject(p model.Project) Project {
	return Project{
		ID:                 p.ID,
		Code:               p.Code,
		Name:               p.Name,
		Description:        p.Description,
		Status:             ProjectStatus(p.Status),
		Methodology:        Methodology(p.Methodology),
		ProgressPercentage: p.ProgressPercentage,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func fromInternalProjectList(ps []model.Project) []Project {
	result := make([]Project, len(ps))
	for i, p := range ps {
		result[i] = fromInternalProject(p)
	}
	return result
}

func fromInternalTask(t model.Task) Task {
	return Task{
		ID:                 t.ID,
		ProjectID:          t.ProjectID,
		ParentID:           t.ParentID,
		WBSCode:            t.WBSCode,
		Name:               t.Name,
		Description:        t.Description,
		Notes:              t.Notes,
		Status:             TaskStatus(t.Status),
		Priority:           TaskPriority(t.Priority),
		EstimatedHours:     t.EstimatedHours,
		ActualHours:        t.ActualHours,
		ProgressPercentage: t.ProgressPercentage,
		IsMilestone:        t.IsMilestone,
		SortOrder:          t.SortOrder,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

func fromInternalTaskList(ts []model.Task) []Task {
	result := make([]Task, len(ts))
	for i, t := range ts {
		result[i] = fromInternalTask(t)
	}
	return result
}

func fromInternalReport(r propagation.RecalcReport) RecalcReport {
	report := RecalcReport{
		Visited: r.Visited,
		Updated: make([]TaskChange, len(r.Updated)),
	}
	for i, s := range r.Updated {
		report.Updated[i] = TaskChange{
			ID:                 s.ID,
			Status:             TaskStatus(s.Status),
			ProgressPercentage: s.ProgressPercentage,
		}
	}
	return report
}

func toInternalProjectPatch(opts UpdateProjectOpts) model.ProjectPatch {
	patch := model.ProjectPatch{
		Code:        opts.Code,
		Name:        opts.Name,
		Description: opts.Description,
	}
	if opts.Status != nil {
		s := model.ProjectStatus(*opts.Status)
		patch.Status = &s
	}
	if opts.Methodology != nil {
		m := model.ProjectMethodology(*opts.Methodology)
		patch.Methodology = &m
	}
	return patch
}

func toInternalTaskPatch(opts UpdateTaskOpts) model.TaskPatch {
	patch := model.TaskPatch{
		Name:               opts.Name,
		Description:        opts.Description,
		Notes:              opts.Notes,
		EstimatedHours:     opts.EstimatedHours,
		ActualHours:        opts.ActualHours,
		ProgressPercentage: opts.ProgressPercentage,
		IsMilestone:        opts.IsMilestone,
		SortOrder:          opts.SortOrder,
	}
	if opts.Status != nil {
		s := model.TaskStatus(*opts.Status)
		patch.Status = &s
	}
	if opts.Priority != nil {
		p := model.TaskPriority(*opts.Priority)
		patch.Priority = &p
	}
	return patch
}
