package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/wbs/internal/app/projectlist"
	"github.com/slok/wbs/internal/model"
)

type ProjectListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	statusFilter string
	format       string
}

// NewProjectListCommand returns the project list command.
func NewProjectListCommand(rootCmd *RootCommand, projectCmd *kingpin.CmdClause) *ProjectListCommand {
	c := &ProjectListCommand{rootCmd: rootCmd}

	c.Cmd = projectCmd.Command("list", "List all projects.").Alias("ls")
	c.Cmd.Flag("status", "Filter by status (planning, in_progress, on_hold, completed, cancelled).").StringVar(&c.statusFilter)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c ProjectListCommand) Name() string { return c.Cmd.FullCommand() }

func (c ProjectListCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	var statusFilter *model.ProjectStatus
	if c.statusFilter != "" {
		status, err := model.ParseProjectStatus(c.statusFilter)
		if err != nil {
			return fmt.Errorf("invalid status filter: %w", err)
		}
		statusFilter = &status
	}

	repo, closeRepo, err := c.rootCmd.OpenRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepository(logger, closeRepo)

	svc, err := projectlist.NewService(projectlist.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	projects, err := svc.Run(ctx, projectlist.Request{StatusFilter: statusFilter})
	if err != nil {
		return fmt.Errorf("could not list projects: %w", err)
	}

	if err := c.rootCmd.Printer(c.format).PrintProjectList(projects); err != nil {
		return fmt.Errorf("could not print list: %w", err)
	}

	return nil
}
