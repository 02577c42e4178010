// Package main provides the scrapeflow-conflicts CLI, which runs the conflict
// detection pipeline against the stored jobs and reports the findings.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/scrapeflow/scrapeflow/pkg/cmd"
	"github.com/scrapeflow/scrapeflow/pkg/log"
	"github.com/scrapeflow/scrapeflow/pkg/scheduling"
	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "scrapeflow-conflicts",
		Usage:                 "Detect scheduling conflicts across stored jobs",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL (file://, redis://, postgres://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit conflicts as JSON instead of text",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: run,
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"), command.String("log-format"))

	logger := log.WithModule("conflicts")

	persistence := cmd.NewPersistence(ctx, command.String("database-url"))

	defer func() {
		if err := persistence.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	jobs, err := persistence.JobRepository().ListJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	conflicts := scheduling.DetectConflicts(jobs)

	if command.Bool("json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(conflicts); err != nil {
			return err
		}
	} else {
		fmt.Printf("Checked %d jobs, found %d conflicts\n", len(jobs), len(conflicts))

		for _, conflict := range conflicts {
			fmt.Printf("  job %s: %s\n", conflict.JobID, conflict.Message)
		}
	}

	if len(conflicts) > 0 {
		return cli.Exit("", 1)
	}

	return nil
}
