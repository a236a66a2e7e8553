package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/wbs/internal/app/planimport"
	storageio "github.com/slok/wbs/internal/storage/io"
)

type ImportCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	planPath string
	format   string
}

// NewImportCommand returns the import command.
func NewImportCommand(rootCmd *RootCommand, app *kingpin.Application) *ImportCommand {
	c := &ImportCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("import", "Import a project with its task tree from a YAML plan file.")
	c.Cmd.Arg("plan", "Path to the YAML plan file.").Required().StringVar(&c.planPath)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c ImportCommand) Name() string { return c.Cmd.FullCommand() }

func (c ImportCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	path, err := filepath.Abs(c.planPath)
	if err != nil {
		return fmt.Errorf("could not resolve plan path: %w", err)
	}
	plans := storageio.NewPlanYAMLRepository(os.DirFS(filepath.Dir(path)))
	plan, err := plans.GetPlan(ctx, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("could not load plan: %w", err)
	}

	repo, closeRepo, err := c.rootCmd.OpenRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepository(logger, closeRepo)

	svc, err := planimport.NewService(planimport.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, planimport.Request{Plan: *plan})
	if err != nil {
		return fmt.Errorf("could not import plan: %w", err)
	}

	p := c.rootCmd.Printer(c.format)
	if err := p.PrintProject(res.Project); err != nil {
		return fmt.Errorf("could not print project: %w", err)
	}
	if c.format == formatTable {
		return p.PrintMessage(fmt.Sprintf("Imported tasks: %d", res.Tasks))
	}

	return nil
}
