package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/wbs/internal/app/projectremove"
)

type ProjectRmCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	projectRef string
}

// NewProjectRmCommand returns the project rm command.
func NewProjectRmCommand(rootCmd *RootCommand, projectCmd *kingpin.CmdClause) *ProjectRmCommand {
	c := &ProjectRmCommand{rootCmd: rootCmd}

	c.Cmd = projectCmd.Command("rm", "Remove a project with all its tasks.")
	c.Cmd.Arg("project", "ID or code of the project.").Required().StringVar(&c.projectRef)

	return c
}

func (c ProjectRmCommand) Name() string { return c.Cmd.FullCommand() }

func (c ProjectRmCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, closeRepo, err := c.rootCmd.OpenRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepository(logger, closeRepo)

	svc, err := projectremove.NewService(projectremove.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	p, err := svc.Run(ctx, projectremove.Request{ProjectRef: c.projectRef})
	if err != nil {
		return fmt.Errorf("could not remove project: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Project removed: %s (%s)\n", p.Name, p.ID)
	return nil
}
