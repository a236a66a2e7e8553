package printer

import (
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/propagation"
)

// Printer knows how to print projects and tasks in different formats.
type Printer interface {
	PrintProjectList(projects []model.Project) error
	PrintProject(project model.Project) error
	PrintProjectStatus(project model.Project, tasks []model.Task) error
	PrintTaskList(tasks []model.Task) error
	PrintTask(task model.Task) error
	PrintRecalcReport(report propagation.RecalcReport) error
	PrintMessage(msg string) error
}
