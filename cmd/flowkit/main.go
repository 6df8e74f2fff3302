// Package main provides the flowkit command line tool for inspecting stored
// workflow definitions.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/hdts/flowkit/pkg/cmd"
	"github.com/hdts/flowkit/pkg/log"
	"github.com/hdts/flowkit/pkg/services"
)

func main() {
	command := &cli.Command{
		Name:                  "flowkit",
		Usage:                 "Inspect and export workflow definitions",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "error",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			validateCommand(),
			exportCommand(),
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newService(ctx context.Context, command *cli.Command) (*services.Workflow, func(), error) {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("cli")

	persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := persistence.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}

	return services.NewWorkflow(persistence, nil, nil), cleanup, nil
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Run the validator over stored definitions",
		ArgsUsage: "[workflow-id]",
		Action: func(ctx context.Context, command *cli.Command) error {
			service, cleanup, err := newService(ctx, command)
			if err != nil {
				return err
			}
			defer cleanup()

			ids := command.Args().Slice()
			if len(ids) == 0 {
				result, err := service.List(ctx, services.ListRequest{Limit: 100})
				if err != nil {
					return err
				}

				for _, wf := range result.Workflows {
					ids = append(ids, wf.ID)
				}
			}

			failed := 0

			for _, id := range ids {
				problems, err := service.Validate(ctx, id)
				if err != nil {
					return err
				}

				if len(problems) == 0 {
					fmt.Printf("%s: ok\n", id)

					continue
				}

				failed++

				fmt.Printf("%s: %d problem(s)\n", id, len(problems))

				for _, p := range problems {
					fmt.Printf("  - %s\n", p)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d workflow(s) failed validation", failed)
			}

			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Aliases:   []string{"e"},
		Usage:     "Print the backend payload of one definition",
		ArgsUsage: "<workflow-id>",
		Action: func(ctx context.Context, command *cli.Command) error {
			id := command.Args().First()
			if id == "" {
				return fmt.Errorf("workflow id is required")
			}

			service, cleanup, err := newService(ctx, command)
			if err != nil {
				return err
			}
			defer cleanup()

			payload, err := service.Export(ctx, id)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return err
			}

			fmt.Println(string(out))

			return nil
		},
	}
}
