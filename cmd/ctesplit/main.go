package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cybertec-postgresql/ctesplit/internal/cli"
	"github.com/cybertec-postgresql/ctesplit/internal/config"
	"github.com/cybertec-postgresql/ctesplit/internal/logger"
	urfavecli "github.com/urfave/cli/v3"
)

const version = "1.0.0"

func main() {
	app := &urfavecli.Command{
		Name:    "ctesplit",
		Usage:   "Split CTE-chained SQL scripts into one model file per CTE",
		Version: version,
		Commands: []*urfavecli.Command{
			{
				Name:   "run",
				Usage:  "Split every model listed in the config file",
				Action: runCommand,
				Flags: append([]urfavecli.Flag{
					&urfavecli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "YAML config file with the models_to_split list",
						Value:   "ctesplit.yaml",
					},
					&urfavecli.IntFlag{
						Name:  "parallel",
						Usage: "Maximum concurrent split jobs (1 = sequential)",
					},
				}, commonFlags()...),
			},
			{
				Name:   "split",
				Usage:  "Split a single model given via flags",
				Action: splitCommand,
				Flags: append([]urfavecli.Flag{
					&urfavecli.StringFlag{
						Name:     "path",
						Usage:    "Base directory searched for the model script",
						Required: true,
					},
					&urfavecli.StringFlag{
						Name:     "model",
						Usage:    "Base name of the script to split (without .sql)",
						Required: true,
					},
					&urfavecli.StringFlag{
						Name:     "final",
						Usage:    "Base name for the final model's output file",
						Required: true,
					},
					&urfavecli.BoolFlag{
						Name:  "drop-intermediate",
						Usage: "Add drop-table post hooks for intermediate models",
					},
				}, commonFlags()...),
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// commonFlags are shared by the run and split commands
func commonFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.BoolFlag{
			Name:  "dry-run",
			Usage: "Plan outputs without writing or deleting files",
		},
		&urfavecli.BoolFlag{
			Name:  "lenient",
			Usage: "Warn instead of failing on content before the final query",
		},
		&urfavecli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug output",
		},
	}
}

// buildConfig assembles runtime configuration from command flags
func buildConfig(cmd *urfavecli.Command) (*cli.Config, error) {
	cfg := cli.DefaultConfig
	cli.ApplyFlagsToConfig(&cfg,
		cmd.Int("parallel"),
		cmd.Bool("dry-run"),
		cmd.Bool("lenient"),
		cmd.Bool("verbose"))
	logger.SetVerbose(cfg.Verbose)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// runCommand handles the 'ctesplit run' command
func runCommand(ctx context.Context, cmd *urfavecli.Command) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	jobs, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	exitCode, err := cli.RunJobs(ctx, cfg, jobs)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}

// splitCommand handles the 'ctesplit split' command
func splitCommand(ctx context.Context, cmd *urfavecli.Command) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	job := config.Job{
		ScriptsBasePath:  cmd.String("path"),
		InitialScript:    cmd.String("model"),
		FinalScript:      cmd.String("final"),
		DropIntermediate: cmd.Bool("drop-intermediate"),
	}
	if err := job.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	exitCode, err := cli.RunJobs(ctx, cfg, []config.Job{job})
	if err != nil {
		return err
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}
