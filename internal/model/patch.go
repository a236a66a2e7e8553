package model

import (
	"fmt"
	"strings"
)

// TaskPatch is a partial task update, only the set fields are applied.
//
// Status and ProgressPercentage are never applied directly to a task, they
// are resolved by the progress engine so the tree invariants are kept.
type TaskPatch struct {
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
}

// IsEmpty returns true when the patch doesn't set any field.
func (p TaskPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Notes == nil &&
		p.Status == nil && p.Priority == nil && p.EstimatedHours == nil &&
		p.ActualHours == nil && p.ProgressPercentage == nil &&
		p.IsMilestone == nil && p.SortOrder == nil
}

// ChangesProgress returns true when the patch requests a status or progress change.
func (p TaskPatch) ChangesProgress() bool {
	return p.Status != nil || p.ProgressPercentage != nil
}

// ChangesWeight returns true when the patch changes how the task weights on its parent.
func (p TaskPatch) ChangesWeight() bool {
	return p.Priority != nil || p.EstimatedHours != nil
}

// Validate validates the set fields of the patch.
func (p TaskPatch) Validate() error {
	if p.IsEmpty() {
		return fmt.Errorf("nothing to update: %w", ErrNotValid)
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("name can't be empty: %w", ErrNotValid)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("invalid status %q: %w", *p.Status, ErrNotValid)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("invalid priority %q: %w", *p.Priority, ErrNotValid)
	}
	if p.EstimatedHours != nil && *p.EstimatedHours < 0 {
		return fmt.Errorf("estimated hours can't be negative: %w", ErrNotValid)
	}
	if p.ActualHours != nil && *p.ActualHours < 0 {
		return fmt.Errorf("actual hours can't be negative: %w", ErrNotValid)
	}
	if p.ProgressPercentage != nil && (*p.ProgressPercentage < 0 || *p.ProgressPercentage > 100) {
		return fmt.Errorf("progress must be between 0 and 100: %w", ErrNotValid)
	}
	return nil
}

// ApplyFields applies the set non progress fields to the task.
func (p TaskPatch) ApplyFields(t *Task) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.EstimatedHours != nil {
		t.EstimatedHours = *p.EstimatedHours
	}
	if p.ActualHours != nil {
		t.ActualHours = *p.ActualHours
	}
	if p.IsMilestone != nil {
		t.IsMilestone = *p.IsMilestone
	}
	if p.SortOrder != nil {
		t.SortOrder = *p.SortOrder
	}
}

// ProjectPatch is a partial project update, only the set fields are applied.
type ProjectPatch struct {
	Code               *string
	Name               *string
	Description        *string
	Status             *ProjectStatus
	Methodology        *ProjectMethodology
	ProgressPercentage *int
}

// IsEmpty returns true when the patch doesn't set any field.
func (p ProjectPatch) IsEmpty() bool {
	return p.Code == nil && p.Name == nil && p.Description == nil &&
		p.Status == nil && p.Methodology == nil && p.ProgressPercentage == nil
}

// Validate validates the set fields of the patch.
func (p ProjectPatch) Validate() error {
	if p.IsEmpty() {
		return fmt.Errorf("nothing to update: %w", ErrNotValid)
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("name can't be empty: %w", ErrNotValid)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("invalid status %q: %w", *p.Status, ErrNotValid)
	}
	if p.Methodology != nil && !p.Methodology.Valid() {
		return fmt.Errorf("invalid methodology %q: %w", *p.Methodology, ErrNotValid)
	}
	if p.ProgressPercentage != nil && (*p.ProgressPercentage < 0 || *p.ProgressPercentage > 100) {
		return fmt.Errorf("progress must be between 0 and 100: %w", ErrNotValid)
	}
	return nil
}

// Apply applies the set fields to the project.
func (p ProjectPatch) Apply(pr *Project) {
	if p.Code != nil {
		pr.Code = *p.Code
	}
	if p.Name != nil {
		pr.Name = *p.Name
	}
	if p.Description != nil {
		pr.Description = *p.Description
	}
	if p.Status != nil {
		pr.Status = *p.Status
	}
	if p.Methodology != nil {
		pr.Methodology = *p.Methodology
	}
	if p.ProgressPercentage != nil {
		pr.ProgressPercentage = *p.ProgressPercentage
	}
}
