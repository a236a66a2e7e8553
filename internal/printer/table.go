package printer

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/propagation"
)

// TablePrinter prints project information in a human friendly table format.
type TablePrinter struct {
	writer io.Writer
	styles styles
}

// NewTablePrinter creates a new table printer, color enables status colors
// on terminals that support them.
func NewTablePrinter(w io.Writer, color bool) *TablePrinter {
	return &TablePrinter{
		writer: w,
		styles: newStyles(w, color),
	}
}

type row struct {
	cells []string
	style lipgloss.Style
}

// printTable aligns the rows and then colors each one as a whole, escape
// sequences inside cells would break the tabwriter alignment.
func (t *TablePrinter) printTable(header []string, rows []row) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r.cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("could not format table: %w", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	fmt.Fprintln(t.writer, lines[0])
	for i, line := range lines[1:] {
		fmt.Fprintln(t.writer, t.styles.render(rows[i].style, strings.TrimRight(line, " ")))
	}

	return nil
}

// PrintProjectList prints projects in a table format.
func (t *TablePrinter) PrintProjectList(projects []model.Project) error {
	if len(projects) == 0 {
		return nil
	}

	rows := make([]row, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, row{
			style: t.styles.project(p.Status),
			cells: []string{
				p.ID,
				orDash(p.Code),
				p.Name,
				string(p.Status),
				ProgressBar(p.ProgressPercentage),
				TimeAgo(p.CreatedAt),
			},
		})
	}

	return t.printTable([]string{"ID", "CODE", "NAME", "STATUS", "PROGRESS", "CREATED"}, rows)
}

// PrintProject prints the project details.
func (t *TablePrinter) PrintProject(project model.Project) error {
	fmt.Fprintf(t.writer, "Name:         %s\n", t.styles.render(t.styles.header, project.Name))
	fmt.Fprintf(t.writer, "ID:           %s\n", project.ID)
	if project.Code != "" {
		fmt.Fprintf(t.writer, "Code:         %s\n", project.Code)
	}
	if project.Description != "" {
		fmt.Fprintf(t.writer, "Description:  %s\n", project.Description)
	}
	fmt.Fprintf(t.writer, "Status:       %s\n", t.styles.render(t.styles.project(project.Status), string(project.Status)))
	fmt.Fprintf(t.writer, "Methodology:  %s\n", project.Methodology)
	fmt.Fprintf(t.writer, "Progress:     %s\n", ProgressBar(project.ProgressPercentage))
	fmt.Fprintf(t.writer, "Created:      %s\n", FormatTimestamp(project.CreatedAt))
	fmt.Fprintf(t.writer, "Updated:      %s\n", FormatTimestamp(project.UpdatedAt))

	return nil
}

// PrintProjectStatus prints the project details followed by its task tree,
// tasks are expected in WBS order.
func (t *TablePrinter) PrintProjectStatus(project model.Project, tasks []model.Task) error {
	if err := t.PrintProject(project); err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Fprintln(t.writer, "\nNo tasks.")
		return nil
	}
	fmt.Fprintln(t.writer)

	rows := make([]row, 0, len(tasks))
	for _, task := range tasks {
		name := strings.Repeat("  ", TaskDepth(task.WBSCode)) + task.Name
		if task.IsMilestone {
			name += " (milestone)"
		}
		rows = append(rows, row{
			style: t.styles.task(task.Status),
			cells: []string{
				task.WBSCode,
				name,
				string(task.Status),
				string(task.Priority),
				FormatHours(task.EstimatedHours),
				ProgressBar(task.ProgressPercentage),
				task.ID,
			},
		})
	}

	return t.printTable([]string{"WBS", "TASK", "STATUS", "PRIORITY", "ESTIMATED", "PROGRESS", "ID"}, rows)
}

// PrintTaskList prints tasks in a table format.
func (t *TablePrinter) PrintTaskList(tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	rows := make([]row, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, row{
			style: t.styles.task(task.Status),
			cells: []string{
				task.ID,
				task.WBSCode,
				task.Name,
				string(task.Status),
				string(task.Priority),
				ProgressBar(task.ProgressPercentage),
			},
		})
	}

	return t.printTable([]string{"ID", "WBS", "NAME", "STATUS", "PRIORITY", "PROGRESS"}, rows)
}

// PrintTask prints detailed task information.
func (t *TablePrinter) PrintTask(task model.Task) error {
	fmt.Fprintf(t.writer, "Name:         %s\n", t.styles.render(t.styles.header, task.Name))
	fmt.Fprintf(t.writer, "ID:           %s\n", task.ID)
	fmt.Fprintf(t.writer, "WBS:          %s\n", task.WBSCode)
	fmt.Fprintf(t.writer, "Project:      %s\n", task.ProjectID)
	if task.ParentID != "" {
		fmt.Fprintf(t.writer, "Parent:       %s\n", task.ParentID)
	}
	fmt.Fprintf(t.writer, "Status:       %s\n", t.styles.render(t.styles.task(task.Status), string(task.Status)))
	fmt.Fprintf(t.writer, "Priority:     %s\n", task.Priority)
	fmt.Fprintf(t.writer, "Progress:     %s\n", ProgressBar(task.ProgressPercentage))
	fmt.Fprintf(t.writer, "Estimated:    %s\n", FormatHours(task.EstimatedHours))
	fmt.Fprintf(t.writer, "Actual:       %s\n", FormatHours(task.ActualHours))
	if task.IsMilestone {
		fmt.Fprintf(t.writer, "Milestone:    yes\n")
	}
	if task.Description != "" {
		fmt.Fprintf(t.writer, "Description:  %s\n", task.Description)
	}
	if task.Notes != "" {
		fmt.Fprintf(t.writer, "Notes:        %s\n", task.Notes)
	}
	fmt.Fprintf(t.writer, "Created:      %s\n", FormatTimestamp(task.CreatedAt))
	fmt.Fprintf(t.writer, "Updated:      %s\n", FormatTimestamp(task.UpdatedAt))

	return nil
}

// PrintRecalcReport prints the summary of a recalculation.
func (t *TablePrinter) PrintRecalcReport(report propagation.RecalcReport) error {
	fmt.Fprintf(t.writer, "Visited:  %d\n", report.Visited)
	fmt.Fprintf(t.writer, "Updated:  %d\n", len(report.Updated))

	if len(report.Updated) == 0 {
		return nil
	}
	fmt.Fprintln(t.writer)

	rows := make([]row, 0, len(report.Updated))
	for _, s := range report.Updated {
		rows = append(rows, row{
			style: t.styles.task(s.Status),
			cells: []string{s.ID, string(s.Status), ProgressBar(s.ProgressPercentage)},
		})
	}

	return t.printTable([]string{"ID", "STATUS", "PROGRESS"}, rows)
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
