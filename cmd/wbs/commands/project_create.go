package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/wbs/internal/app/projectcreate"
	"github.com/slok/wbs/internal/model"
)

type ProjectCreateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	name        string
	code        string
	description string
	status      string
	methodology string
	format      string
}

// NewProjectCreateCommand returns the project create command.
func NewProjectCreateCommand(rootCmd *RootCommand, projectCmd *kingpin.CmdClause) *ProjectCreateCommand {
	c := &ProjectCreateCommand{rootCmd: rootCmd}

	c.Cmd = projectCmd.Command("create", "Create a new project.")
	c.Cmd.Arg("name", "Name of the project.").Required().StringVar(&c.name)
	c.Cmd.Flag("code", "Unique short code of the project.").StringVar(&c.code)
	c.Cmd.Flag("description", "Description of the project.").StringVar(&c.description)
	c.Cmd.Flag("status", "Project status (planning, in_progress, on_hold, completed, cancelled).").Default(string(model.ProjectStatusPlanning)).StringVar(&c.status)
	c.Cmd.Flag("methodology", "Project methodology.").Default(string(model.ProjectMethodologyWaterfall)).EnumVar(&c.methodology,
		string(model.ProjectMethodologyWaterfall), string(model.ProjectMethodologyAgile), string(model.ProjectMethodologyHybrid))
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c ProjectCreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c ProjectCreateCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	status, err := model.ParseProjectStatus(c.status)
	if err != nil {
		return err
	}

	repo, closeRepo, err := c.rootCmd.OpenRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepository(logger, closeRepo)

	svc, err := projectcreate.NewService(projectcreate.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	p, err := svc.Run(ctx, projectcreate.Request{
		Code:        c.code,
		Name:        c.name,
		Description: c.description,
		Status:      status,
		Methodology: model.ProjectMethodology(c.methodology),
	})
	if err != nil {
		return fmt.Errorf("could not create project: %w", err)
	}

	return c.rootCmd.Printer(c.format).PrintProject(*p)
}
