package model

import (
	"fmt"
	"strings"
	"time"
)

// ProjectStatus represents the status of a project.
type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "planning"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusOnHold     ProjectStatus = "on_hold"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

// Valid returns true if the status is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusInProgress, ProjectStatusOnHold, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// ParseProjectStatus parses a project status in a case insensitive way.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	status := ProjectStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown project status %q (must be: planning, in_progress, on_hold, completed, cancelled): %w", s, ErrNotValid)
	}
	return status, nil
}

// ProjectMethodology is the delivery methodology of a project.
type ProjectMethodology string

const (
	ProjectMethodologyWaterfall ProjectMethodology = "waterfall"
	ProjectMethodologyAgile     ProjectMethodology = "agile"
	ProjectMethodologyHybrid    ProjectMethodology = "hybrid"
)

// Valid returns true if the methodology is known.
func (m ProjectMethodology) Valid() bool {
	switch m {
	case ProjectMethodologyWaterfall, ProjectMethodologyAgile, ProjectMethodologyHybrid:
		return true
	}
	return false
}

// Project owns a forest of root tasks.
type Project struct {
	ID                 string
	Code               string // Optional, unique when set.
	Name               string
	Description        string
	Status             ProjectStatus
	Methodology        ProjectMethodology
	ProgressPercentage int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validate validates the project.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required: %w", ErrNotValid)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("invalid status %q: %w", p.Status, ErrNotValid)
	}
	if !p.Methodology.Valid() {
		return fmt.Errorf("invalid methodology %q: %w", p.Methodology, ErrNotValid)
	}
	if p.ProgressPercentage < 0 || p.ProgressPercentage > 100 {
		return fmt.Errorf("progress must be between 0 and 100: %w", ErrNotValid)
	}
	return nil
}
