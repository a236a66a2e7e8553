package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/wbs/internal/app/taskrecalc"
)

type TaskRecalcCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	format string
}

// NewTaskRecalcCommand returns the task recalc command.
func NewTaskRecalcCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskRecalcCommand {
	c := &TaskRecalcCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Command("recalc", "Recalculate the status and progress of a task subtree and its ancestors.")
	c.Cmd.Arg("task", "ID of the task.").Required().StringVar(&c.taskID)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TaskRecalcCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskRecalcCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, closeRepo, err := c.rootCmd.OpenRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepository(logger, closeRepo)

	svc, err := taskrecalc.NewService(taskrecalc.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, taskrecalc.Request{TaskID: c.taskID})
	if err != nil {
		return fmt.Errorf("could not recalculate task: %w", err)
	}

	p := c.rootCmd.Printer(c.format)
	if err := p.PrintRecalcReport(res.Report); err != nil {
		return fmt.Errorf("could not print report: %w", err)
	}
	if c.format == formatTable {
		return p.PrintMessage(fmt.Sprintf("Task %s: %s %d%%", res.Task.WBSCode, res.Task.Status, res.Task.ProgressPercentage))
	}

	return nil
}
