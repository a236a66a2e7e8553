package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/wbs/internal/app/taskcreate"
	"github.com/slok/wbs/internal/model"
)

type TaskCreateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	projectRef     string
	name           string
	parentID       string
	description    string
	notes          string
	status         string
	priority       string
	estimatedHours float64
	actualHours    float64
	progress       int
	milestone      bool
	sortOrder      int
	sortOrderSet   bool
	format         string
}

// NewTaskCreateCommand returns the task create command.
func NewTaskCreateCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskCreateCommand {
	c := &TaskCreateCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Command("create", "Create a new task on a project.")
	c.Cmd.Arg("project", "ID or code of the project.").Required().StringVar(&c.projectRef)
	c.Cmd.Arg("name", "Name of the task.").Required().StringVar(&c.name)
	c.Cmd.Flag("parent", "ID of the parent task, root task if missing.").StringVar(&c.parentID)
	c.Cmd.Flag("description", "Description of the task.").StringVar(&c.description)
	c.Cmd.Flag("notes", "Notes of the task.").StringVar(&c.notes)
	c.Cmd.Flag("status", "Task status (todo, in_progress, review, completed, cancelled).").Default(string(model.TaskStatusTodo)).StringVar(&c.status)
	c.Cmd.Flag("priority", "Task priority (low, medium, high, urgent).").Default(string(model.TaskPriorityMedium)).StringVar(&c.priority)
	c.Cmd.Flag("estimated-hours", "Estimated effort in hours.").Float64Var(&c.estimatedHours)
	c.Cmd.Flag("actual-hours", "Spent effort in hours.").Float64Var(&c.actualHours)
	c.Cmd.Flag("progress", "Progress percentage (0-100).").IntVar(&c.progress)
	c.Cmd.Flag("milestone", "Mark the task as a milestone.").BoolVar(&c.milestone)
	c.Cmd.Flag("sort-order", "Position among its siblings, defaults to the last one.").IsSetByUser(&c.sortOrderSet).IntVar(&c.sortOrder)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TaskCreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskCreateCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	status, err := model.ParseTaskStatus(c.status)
	if err != nil {
		return err
	}
	priority, err := model.ParseTaskPriority(c.priority)
	if err != nil {
		return err
	}
	var sortOrder *int
	if c.sortOrderSet {
		sortOrder = &c.sortOrder
	}

	repo, closeRepo, err := c.rootCmd.OpenRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepository(logger, closeRepo)

	svc, err := taskcreate.NewService(taskcreate.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	task, err := svc.Run(ctx, taskcreate.Request{
		ProjectRef:         c.projectRef,
		ParentID:           c.parentID,
		Name:               c.name,
		Description:        c.description,
		Notes:              c.notes,
		Status:             status,
		Priority:           priority,
		EstimatedHours:     c.estimatedHours,
		ActualHours:        c.actualHours,
		ProgressPercentage: c.progress,
		IsMilestone:        c.milestone,
		SortOrder:          sortOrder,
	})
	if err != nil {
		return fmt.Errorf("could not create task: %w", err)
	}

	return c.rootCmd.Printer(c.format).PrintTask(*task)
}
