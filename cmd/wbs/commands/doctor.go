package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/wbs/internal/app/doctor"
	"github.com/slok/wbs/internal/model"
)

type DoctorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	projectRef string
}

// NewDoctorCommand returns the doctor command.
func NewDoctorCommand(rootCmd *RootCommand, app *kingpin.Application) *DoctorCommand {
	c := &DoctorCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("doctor", "Check the storage and the consistency of the project task trees without changing them.")
	c.Cmd.Flag("project", "Only check this project (ID or code).").StringVar(&c.projectRef)

	return c
}

func (c DoctorCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoctorCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	out := c.rootCmd.Stdout

	repo, closeRepo, err := c.rootCmd.OpenRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepository(logger, closeRepo)

	svc, err := doctor.NewService(doctor.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	results, err := svc.Run(ctx, doctor.Request{ProjectRef: c.projectRef})
	if err != nil {
		return fmt.Errorf("could not run checks: %w", err)
	}

	for _, r := range results {
		fmt.Fprintf(out, "  %s %-20s %s\n", getStatusIcon(r.Status), r.ID, r.Message)
	}

	fmt.Fprintln(out)
	summary := model.SummarizeChecks(results)
	if summary.Errors == 0 && summary.Warnings == 0 {
		fmt.Fprintln(out, "All checks passed!")
		return nil
	}

	var parts []string
	if summary.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", summary.Errors))
	}
	if summary.Warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", summary.Warnings))
	}
	fmt.Fprintln(out, strings.Join(parts, ", "))

	// Out of sync projects are repaired with a recalc, only errors fail.
	if summary.Errors > 0 {
		return fmt.Errorf("checks failed with %d error(s)", summary.Errors)
	}

	return nil
}

func getStatusIcon(status model.CheckStatus) string {
	switch status {
	case model.CheckStatusOK:
		return "OK"
	case model.CheckStatusWarning:
		return "!!"
	case model.CheckStatusError:
		return "XX"
	default:
		return "??"
	}
}
