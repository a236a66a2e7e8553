package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/wbs/internal/app/projectrecalc"
)

type ProjectRecalcCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	projectRef string
	format     string
}

// NewProjectRecalcCommand returns the project recalc command.
func NewProjectRecalcCommand(rootCmd *RootCommand, projectCmd *kingpin.CmdClause) *ProjectRecalcCommand {
	c := &ProjectRecalcCommand{rootCmd: rootCmd}

	c.Cmd = projectCmd.Command("recalc", "Recalculate the status and progress of every task of a project.")
	c.Cmd.Arg("project", "ID or code of the project.").Required().StringVar(&c.projectRef)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c ProjectRecalcCommand) Name() string { return c.Cmd.FullCommand() }

func (c ProjectRecalcCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, closeRepo, err := c.rootCmd.OpenRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepository(logger, closeRepo)

	svc, err := projectrecalc.NewService(projectrecalc.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, projectrecalc.Request{ProjectRef: c.projectRef})
	if err != nil {
		return fmt.Errorf("could not recalculate project: %w", err)
	}

	p := c.rootCmd.Printer(c.format)
	if err := p.PrintRecalcReport(res.Report); err != nil {
		return fmt.Errorf("could not print report: %w", err)
	}
	if c.format == formatTable {
		return p.PrintMessage(fmt.Sprintf("Project progress: %d%%", res.Project.ProgressPercentage))
	}

	return nil
}
