package model

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus represents the state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Valid returns true if the status is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// ParseTaskStatus parses a task status in a case insensitive way.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown task status %q (must be: todo, in_progress, review, completed, cancelled): %w", s, ErrNotValid)
	}
	return status, nil
}

// TaskPriority represents how urgent a task is.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// DefaultPriorityWeight is the weight used for unknown or missing priorities.
const DefaultPriorityWeight = 2

// Weight returns the aggregation weight of the priority.
// Unknown priorities weight as medium.
func (p TaskPriority) Weight() int {
	switch p {
	case TaskPriorityLow:
		return 1
	case TaskPriorityMedium:
		return 2
	case TaskPriorityHigh:
		return 3
	case TaskPriorityUrgent:
		return 4
	}
	return DefaultPriorityWeight
}

// Valid returns true if the priority is a known task priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// ParseTaskPriority parses a task priority in a case insensitive way.
func ParseTaskPriority(s string) (TaskPriority, error) {
	p := TaskPriority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown task priority %q (must be: low, medium, high, urgent): %w", s, ErrNotValid)
	}
	return p, nil
}

// Task is a node of a project work breakdown structure.
type Task struct {
	ID                 string
	ProjectID          string
	ParentID           string // Empty on root tasks.
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

// IsRoot returns true when the task has no parent task.
func (t Task) IsRoot() bool { return t.ParentID == "" }

// Summary returns the progress related view of the task.
func (t Task) Summary() TaskSummary {
	return TaskSummary{
		ID:                 t.ID,
		ProjectID:          t.ProjectID,
		ParentID:           t.ParentID,
		Status:             t.Status,
		Priority:           t.Priority,
		EstimatedHours:     t.EstimatedHours,
		ProgressPercentage: t.ProgressPercentage,
	}
}

// Validate validates the task.
func (t *Task) Validate() error {
	if t.ProjectID == "" {
		return fmt.Errorf("project id is required: %w", ErrNotValid)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("name is required: %w", ErrNotValid)
	}
	if t.ParentID != "" && t.ParentID == t.ID {
		return fmt.Errorf("task can't be its own parent: %w", ErrNotValid)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("invalid status %q: %w", t.Status, ErrNotValid)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("invalid priority %q: %w", t.Priority, ErrNotValid)
	}
	if t.EstimatedHours < 0 {
		return fmt.Errorf("estimated hours can't be negative: %w", ErrNotValid)
	}
	if t.ActualHours < 0 {
		return fmt.Errorf("actual hours can't be negative: %w", ErrNotValid)
	}
	if t.ProgressPercentage < 0 || t.ProgressPercentage > 100 {
		return fmt.Errorf("progress must be between 0 and 100: %w", ErrNotValid)
	}
	return nil
}

// TaskSummary is the subset of a task that progress aggregation works with.
type TaskSummary struct {
	ID                 string
	ProjectID          string
	ParentID           string
	Status             TaskStatus
	Priority           TaskPriority
	EstimatedHours     float64
	ProgressPercentage int
}
