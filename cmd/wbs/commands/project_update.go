package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/wbs/internal/app/projectupdate"
	"github.com/slok/wbs/internal/model"
)

type ProjectUpdateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	projectRef     string
	code           string
	codeSet        bool
	name           string
	nameSet        bool
	description    string
	descriptionSet bool
	status         string
	methodology    string
	format         string
}

// NewProjectUpdateCommand returns the project update command.
func NewProjectUpdateCommand(rootCmd *RootCommand, projectCmd *kingpin.CmdClause) *ProjectUpdateCommand {
	c := &ProjectUpdateCommand{rootCmd: rootCmd}

	c.Cmd = projectCmd.Command("update", "Update project fields, only the set flags are changed.")
	c.Cmd.Arg("project", "ID or code of the project.").Required().StringVar(&c.projectRef)
	c.Cmd.Flag("code", "Unique short code of the project, empty to remove it.").IsSetByUser(&c.codeSet).StringVar(&c.code)
	c.Cmd.Flag("name", "Name of the project.").IsSetByUser(&c.nameSet).StringVar(&c.name)
	c.Cmd.Flag("description", "Description of the project.").IsSetByUser(&c.descriptionSet).StringVar(&c.description)
	c.Cmd.Flag("status", "Project status (planning, in_progress, on_hold, completed, cancelled).").StringVar(&c.status)
	c.Cmd.Flag("methodology", "Project methodology.").EnumVar(&c.methodology,
		string(model.ProjectMethodologyWaterfall), string(model.ProjectMethodologyAgile), string(model.ProjectMethodologyHybrid))
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c ProjectUpdateCommand) Name() string { return c.Cmd.FullCommand() }

func (c ProjectUpdateCommand) patch() (model.ProjectPatch, error) {
	var patch model.ProjectPatch
	if c.codeSet {
		patch.Code = &c.code
	}
	if c.nameSet {
		patch.Name = &c.name
	}
	if c.descriptionSet {
		patch.Description = &c.description
	}
	if c.status != "" {
		status, err := model.ParseProjectStatus(c.status)
		if err != nil {
			return patch, err
		}
		patch.Status = &status
	}
	if c.methodology != "" {
		m := model.ProjectMethodology(c.methodology)
		patch.Methodology = &m
	}
	return patch, nil
}

func (c ProjectUpdateCommand) Run(ctx context.Context) error {
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

	svc, err := projectupdate.NewService(projectupdate.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	p, err := svc.Run(ctx, projectupdate.Request{ProjectRef: c.projectRef, Patch: patch})
	if err != nil {
		return fmt.Errorf("could not update project: %w", err)
	}

	return c.rootCmd.Printer(c.format).PrintProject(*p)
}
