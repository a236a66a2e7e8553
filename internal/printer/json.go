package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/propagation"
)

// JSONPrinter prints project information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type projectOutput struct {
	ID                 string    `json:"id"`
	Code               string    `json:"code,omitempty"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	Status             string    `json:"status"`
	Methodology        string    `json:"methodology"`
	ProgressPercentage int       `json:"progress_percentage"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type taskOutput struct {
	ID                 string    `json:"id"`
	ProjectID          string    `json:"project_id"`
	ParentID           string    `json:"parent_task_id,omitempty"`
	WBSCode            string    `json:"wbs_code"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	Status             string    `json:"status"`
	Priority           string    `json:"priority"`
	EstimatedHours     float64   `json:"estimated_hours"`
	ActualHours        float64   `json:"actual_hours"`
	ProgressPercentage int       `json:"progress_percentage"`
	IsMilestone        bool      `json:"is_milestone"`
	SortOrder          int       `json:"sort_order"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// taskTreeOutput is a task with its children nested.
type taskTreeOutput struct {
	taskOutput
	Children []*taskTreeOutput `json:"children,omitempty"`
}

type projectStatusOutput struct {
	projectOutput
	Tasks []*taskTreeOutput `json:"tasks"`
}

type recalcOutput struct {
	Visited int                `json:"visited"`
	Updated []taskChangeOutput `json:"updated"`
}

type taskChangeOutput struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	ProgressPercentage int    `json:"progress_percentage"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func mapProject(p model.Project) projectOutput {
	return projectOutput{
		ID:                 p.ID,
		Code:               p.Code,
		Name:               p.Name,
		Description:        p.Description,
		Status:             string(p.Status),
		Methodology:        string(p.Methodology),
		ProgressPercentage: p.ProgressPercentage,
		CreatedAt:          p.CreatedAt.UTC(),
		UpdatedAt:          p.UpdatedAt.UTC(),
	}
}

func mapTask(t model.Task) taskOutput {
	return taskOutput{
		ID:                 t.ID,
		ProjectID:          t.ProjectID,
		ParentID:           t.ParentID,
		WBSCode:            t.WBSCode,
		Name:               t.Name,
		Description:        t.Description,
		Notes:              t.Notes,
		Status:             string(t.Status),
		Priority:           string(t.Priority),
		EstimatedHours:     t.EstimatedHours,
		ActualHours:        t.ActualHours,
		ProgressPercentage: t.ProgressPercentage,
		IsMilestone:        t.IsMilestone,
		SortOrder:          t.SortOrder,
		CreatedAt:          t.CreatedAt.UTC(),
		UpdatedAt:          t.UpdatedAt.UTC(),
	}
}

// PrintProjectList prints projects in JSON format.
func (j *JSONPrinter) PrintProjectList(projects []model.Project) error {
	items := make([]projectOutput, 0, len(projects))
	for _, p := range projects {
		items = append(items, mapProject(p))
	}
	return j.encode(items)
}

// PrintProject prints a project in JSON format.
func (j *JSONPrinter) PrintProject(project model.Project) error {
	return j.encode(mapProject(project))
}

// PrintProjectStatus prints the project with its tasks nested as a tree.
func (j *JSONPrinter) PrintProjectStatus(project model.Project, tasks []model.Task) error {
	nodes := make(map[string]*taskTreeOutput, len(tasks))
	for _, t := range tasks {
		nodes[t.ID] = &taskTreeOutput{taskOutput: mapTask(t)}
	}

	roots := []*taskTreeOutput{}
	for _, t := range tasks {
		node := nodes[t.ID]
		parent, ok := nodes[t.ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	return j.encode(projectStatusOutput{
		projectOutput: mapProject(project),
		Tasks:         roots,
	})
}

// PrintTaskList prints tasks in JSON format.
func (j *JSONPrinter) PrintTaskList(tasks []model.Task) error {
	items := make([]taskOutput, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, mapTask(t))
	}
	return j.encode(items)
}

// PrintTask prints a task in JSON format.
func (j *JSONPrinter) PrintTask(task model.Task) error {
	return j.encode(mapTask(task))
}

// PrintRecalcReport prints the summary of a recalculation in JSON format.
func (j *JSONPrinter) PrintRecalcReport(report propagation.RecalcReport) error {
	out := recalcOutput{
		Visited: report.Visited,
		Updated: make([]taskChangeOutput, 0, len(report.Updated)),
	}
	for _, s := range report.Updated {
		out.Updated = append(out.Updated, taskChangeOutput{
			ID:                 s.ID,
			Status:             string(s.Status),
			ProgressPercentage: s.ProgressPercentage,
		})
	}
	return j.encode(out)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}
