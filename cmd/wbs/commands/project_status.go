package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/wbs/internal/app/projectstatus"
)

type ProjectStatusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	projectRef string
	format     string
}

// NewProjectStatusCommand returns the project status command.
func NewProjectStatusCommand(rootCmd *RootCommand, projectCmd *kingpin.CmdClause) *ProjectStatusCommand {
	c := &ProjectStatusCommand{rootCmd: rootCmd}

	c.Cmd = projectCmd.Command("status", "Show a project with its task tree.")
	c.Cmd.Arg("project", "ID or code of the project.").Required().StringVar(&c.projectRef)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c ProjectStatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c ProjectStatusCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, closeRepo, err := c.rootCmd.OpenRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepository(logger, closeRepo)

	svc, err := projectstatus.NewService(projectstatus.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, projectstatus.Request{ProjectRef: c.projectRef})
	if err != nil {
		return fmt.Errorf("could not get project status: %w", err)
	}

	if err := c.rootCmd.Printer(c.format).PrintProjectStatus(res.Project, res.Tasks); err != nil {
		return fmt.Errorf("could not print status: %w", err)
	}

	return nil
}
