package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/wbs/internal/app/taskupdate"
	"github.com/slok/wbs/internal/model"
)

type TaskUpdateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID          string
	noPropagateDown bool
	format          string

	name           string
	description    string
	notes          string
	status         string
	priority       string
	estimatedHours float64
	actualHours    float64
	progress       int
	milestone      bool
	sortOrder      int

	set map[string]*bool
}

// NewTaskUpdateCommand returns the task update command.
func NewTaskUpdateCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskUpdateCommand {
	c := &TaskUpdateCommand{rootCmd: rootCmd, set: map[string]*bool{}}

	c.Cmd = taskCmd.Command("update", "Update task fields, only the set flags are changed. Status and progress changes propagate through the task tree.")
	c.Cmd.Arg("task", "ID of the task.").Required().StringVar(&c.taskID)
	c.Cmd.Flag("no-propagate-down", "Don't complete the descendants when the task becomes completed.").BoolVar(&c.noPropagateDown)
	addFormatFlag(c.Cmd, &c.format)

	c.flag("name", "Name of the task.").StringVar(&c.name)
	c.flag("description", "Description of the task.").StringVar(&c.description)
	c.flag("notes", "Notes of the task.").StringVar(&c.notes)
	c.flag("status", "Task status (todo, in_progress, review, completed, cancelled).").StringVar(&c.status)
	c.flag("priority", "Task priority (low, medium, high, urgent).").StringVar(&c.priority)
	c.flag("estimated-hours", "Estimated effort in hours.").Float64Var(&c.estimatedHours)
	c.flag("actual-hours", "Spent effort in hours.").Float64Var(&c.actualHours)
	c.flag("progress", "Progress percentage (0-100).").IntVar(&c.progress)
	c.flag("milestone", "Mark the task as a milestone (--no-milestone to unmark).").BoolVar(&c.milestone)
	c.flag("sort-order", "Position among its siblings.").IntVar(&c.sortOrder)

	return c
}

// flag registers a patch flag tracking if the user set it.
func (c *TaskUpdateCommand) flag(name, help string) *kingpin.FlagClause {
	set := new(bool)
	c.set[name] = set
	return c.Cmd.Flag(name, help).IsSetByUser(set)
}

func (c TaskUpdateCommand) isSet(name string) bool { return *c.set[name] }

func (c TaskUpdateCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskUpdateCommand) patch() (model.TaskPatch, error) {
	var patch model.TaskPatch
	if c.isSet("name") {
		patch.Name = &c.name
	}
	if c.isSet("description") {
		patch.Description = &c.description
	}
	if c.isSet("notes") {
		patch.Notes = &c.notes
	}
	if c.isSet("status") {
		status, err := model.ParseTaskStatus(c.status)
		if err != nil {
			return patch, err
		}
		patch.Status = &status
	}
	if c.isSet("priority") {
		priority, err := model.ParseTaskPriority(c.priority)
		if err != nil {
			return patch, err
		}
		patch.Priority = &priority
	}
	if c.isSet("estimated-hours") {
		patch.EstimatedHours = &c.estimatedHours
	}
	if c.isSet("actual-hours") {
		patch.ActualHours = &c.actualHours
	}
	if c.isSet("progress") {
		patch.ProgressPercentage = &c.progress
	}
	if c.isSet("milestone") {
		patch.IsMilestone = &c.milestone
	}
	if c.isSet("sort-order") {
		patch.SortOrder = &c.sortOrder
	}
	return patch, nil
}

func (c TaskUpdateCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	patch, err := c.patch()
	if err != nil {
		return err
	}

	repo, closeRepo, err := c.rootCmd.OpenRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepository(logger, closeRepo)

	svc, err := taskupdate.NewService(taskupdate.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	task, err := svc.Run(ctx, taskupdate.Request{
		TaskID:          c.taskID,
		Patch:           patch,
		NoPropagateDown: c.noPropagateDown,
	})
	if err != nil {
		return fmt.Errorf("could not update task: %w", err)
	}

	return c.rootCmd.Printer(c.format).PrintTask(*task)
}
