package io

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/slok/wbs/internal/model"
)

// PlanYAMLRepository loads project plans from YAML files.
type PlanYAMLRepository struct {
	fs fs.FS
}

// NewPlanYAMLRepository creates a new YAML plan repository.
func NewPlanYAMLRepository(filesystem fs.FS) *PlanYAMLRepository {
	return &PlanYAMLRepository{fs: filesystem}
}

// GetPlan loads a project plan from a YAML file and returns a validated domain model.
func (r *PlanYAMLRepository) GetPlan(ctx context.Context, path string) (*model.Plan, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var plan PlanConfig
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	p, err := plan.toModel()
	if err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	return p, nil
}

// PlanConfig represents the YAML structure of a project plan.
type PlanConfig struct {
	Project ProjectConfig `yaml:"project"`
	Tasks   []TaskConfig  `yaml:"tasks"`
}

// ProjectConfig represents the YAML structure of the plan project.
type ProjectConfig struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Status      string `yaml:"status"`
	Methodology string `yaml:"methodology"`
}

// TaskConfig represents the YAML structure of a plan task, subtasks nest under tasks.
type TaskConfig struct {
	Name           string       `yaml:"name"`
	Description    string       `yaml:"description"`
	Notes          string       `yaml:"notes"`
	Status         string       `yaml:"status"`
	Priority       string       `yaml:"priority"`
	EstimatedHours float64      `yaml:"estimated_hours"`
	ActualHours    float64      `yaml:"actual_hours"`
	Progress       int          `yaml:"progress"`
	Milestone      bool         `yaml:"milestone"`
	Tasks          []TaskConfig `yaml:"tasks"`
}

func (c PlanConfig) toModel() (*model.Plan, error) {
	if c.Project.Name == "" {
		return nil, fmt.Errorf("project name is required: %w", model.ErrNotValid)
	}

	plan := &model.Plan{
		Project: model.Project{
			Code:        c.Project.Code,
			Name:        c.Project.Name,
			Description: c.Project.Description,
			Status:      model.ProjectStatusPlanning,
			Methodology: model.ProjectMethodologyWaterfall,
		},
	}

	if c.Project.Status != "" {
		s, err := model.ParseProjectStatus(c.Project.Status)
		if err != nil {
			return nil, fmt.Errorf("project: %w", err)
		}
		plan.Project.Status = s
	}
	if c.Project.Methodology != "" {
		m := model.ProjectMethodology(c.Project.Methodology)
		if !m.Valid() {
			return nil, fmt.Errorf("project: unknown methodology %q: %w", c.Project.Methodology, model.ErrNotValid)
		}
		plan.Project.Methodology = m
	}

	tasks, err := tasksToModel(c.Tasks, "tasks")
	if err != nil {
		return nil, err
	}
	plan.Tasks = tasks

	return plan, nil
}

func tasksToModel(tcs []TaskConfig, path string) ([]model.PlanTask, error) {
	var tasks []model.PlanTask
	for i, tc := range tcs {
		taskPath := fmt.Sprintf("%s[%d]", path, i)
		t, err := tc.toModel(taskPath)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (c TaskConfig) toModel(path string) (model.PlanTask, error) {
	if c.Name == "" {
		return model.PlanTask{}, fmt.Errorf("%s: name is required: %w", path, model.ErrNotValid)
	}
	if c.EstimatedHours < 0 || c.ActualHours < 0 {
		return model.PlanTask{}, fmt.Errorf("%s: hours can't be negative: %w", path, model.ErrNotValid)
	}
	if c.Progress < 0 || c.Progress > 100 {
		return model.PlanTask{}, fmt.Errorf("%s: progress must be between 0 and 100, got: %d: %w", path, c.Progress, model.ErrNotValid)
	}

	t := model.PlanTask{
		Name:               c.Name,
		Description:        c.Description,
		Notes:              c.Notes,
		Status:             model.TaskStatusTodo,
		Priority:           model.TaskPriorityMedium,
		EstimatedHours:     c.EstimatedHours,
		ActualHours:        c.ActualHours,
		ProgressPercentage: c.Progress,
		IsMilestone:        c.Milestone,
	}

	if c.Status != "" {
		s, err := model.ParseTaskStatus(c.Status)
		if err != nil {
			return model.PlanTask{}, fmt.Errorf("%s: %w", path, err)
		}
		t.Status = s
	}
	if c.Priority != "" {
		p, err := model.ParseTaskPriority(c.Priority)
		if err != nil {
			return model.PlanTask{}, fmt.Errorf("%s: %w", path, err)
		}
		t.Priority = p
	}

	children, err := tasksToModel(c.Tasks, path+".tasks")
	if err != nil {
		return model.PlanTask{}, err
	}
	t.Children = children

	return t, nil
}
