package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v3"

	"github.com/contractpulse/pulse/pkg/cmd"
)

var errInvalidSteps = errors.New("invalid steps found")

// NewValidateCommand checks every stored workflow: struct-level validation
// of the workflow and its steps, plus schema validation of each step
// configuration against the registered executor.
func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate workflow definitions and step configurations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			validate := validator.New(validator.WithRequiredStructEnabled())

			logger := slog.With(
				"module", "pulse-worker",
				"action", "validate",
			)

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			dispatcher := cmd.NewDispatcher(ctx, persistence, logger)
			registry := cmd.NewStepRegistry(dispatcher, persistence, logger)

			workflows, err := persistence.WorkflowRepository().Workflows(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch workflows: %w", err)
			}

			logger.InfoContext(ctx, "Validating workflows", "count", len(workflows))

			_, _ = fmt.Fprintln(os.Stdout, "Workflow Validation Results:")
			_, _ = fmt.Fprintln(os.Stdout, "============================")

			validSteps := 0
			invalidSteps := 0

			for _, wf := range workflows {
				_, _ = fmt.Fprintf(os.Stdout, "\nWorkflow: %s (%s)\n", wf.Name, wf.ID)

				if err := validate.Struct(wf); err != nil {
					_, _ = fmt.Fprintf(os.Stdout, "  INVALID: %v\n", err)
					invalidSteps++

					continue
				}

				stepList, err := persistence.WorkflowRepository().StepsByWorkflowID(ctx, wf.ID)
				if err != nil {
					return fmt.Errorf("failed to fetch steps for workflow %s: %w", wf.ID, err)
				}

				if len(stepList) == 0 {
					_, _ = fmt.Fprintf(os.Stdout, "  INVALID: workflow has no steps\n")
					invalidSteps++

					continue
				}

				for _, step := range stepList {
					_, _ = fmt.Fprintf(os.Stdout, "  Step: %s (%s)\n", step.Name, step.Type)

					if err := validate.Struct(step); err != nil {
						_, _ = fmt.Fprintf(os.Stdout, "    INVALID: %v\n", err)
						invalidSteps++

						continue
					}

					if err := registry.ValidateConfig(step.Type, step.Configuration); err != nil {
						_, _ = fmt.Fprintf(os.Stdout, "    INVALID: %v\n", err)
						invalidSteps++

						continue
					}

					_, _ = fmt.Fprintf(os.Stdout, "    VALID\n")
					validSteps++
				}
			}

			_, _ = fmt.Fprintf(os.Stdout, "\nValidation Summary:\n")
			_, _ = fmt.Fprintf(os.Stdout, "  Total steps: %d\n", validSteps+invalidSteps)
			_, _ = fmt.Fprintf(os.Stdout, "  Valid steps: %d\n", validSteps)
			_, _ = fmt.Fprintf(os.Stdout, "  Invalid steps: %d\n", invalidSteps)

			if invalidSteps > 0 {
				return fmt.Errorf("%w: %d", errInvalidSteps, invalidSteps)
			}

			_, _ = fmt.Fprintln(os.Stdout, "All workflows and steps are valid!")

			return nil
		},
	}
}
