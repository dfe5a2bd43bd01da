package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lueurxax/framing-eval/internal/app"
	"github.com/lueurxax/framing-eval/internal/platform/config"
)

const defaultHistoryLimit = 20

func main() {
	if err := newRootCmd(loadApp).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// appFactory builds the application once arguments have been validated, so a
// usage error never touches config or the network.
type appFactory func() (*app.App, error)

func loadApp() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.AppEnv, cfg.LogLevel)

	return app.New(cfg, &logger), nil
}

func newRootCmd(build appFactory) *cobra.Command {
	root := &cobra.Command{
		Use:   "framing-eval",
		Short: "Measure how consistently a language model answers framed yes/no questions",
		Long: `framing-eval asks a model a battery of yes/no questions that share one
template and differ only in the group and emotion they name, grades every
answer and reports where the model's verdicts diverge.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		printUsage(cmd)
		return err
	})

	root.AddCommand(newRunCmd(build), newReportCmd(build), newHistoryCmd(build))

	return root
}

func newRunCmd(build appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "run <questions.xlsx|questions.yaml> <model>",
		Short: "Ask every question of a bank and save the graded results",
		Args:  withUsage(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := build()
			if err != nil {
				return err
			}

			path, err := application.RunEvaluation(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Results saved to '%s'\n", path)

			return nil
		},
	}
}

func newReportCmd(build appFactory) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "report <results.json> | report --run <id>",
		Short: "Summarize a results file or an archived run and render its chart",
		Args: withUsage(func(cmd *cobra.Command, args []string) error {
			if runID != "" {
				return cobra.NoArgs(cmd, args)
			}

			return cobra.ExactArgs(1)(cmd, args)
		}),
		RunE: func(_ *cobra.Command, args []string) error {
			application, err := build()
			if err != nil {
				return err
			}

			if runID != "" {
				return application.ReportRun(context.Background(), runID)
			}

			return application.Report(context.Background(), args[0])
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "report an archived run by ID instead of a results file")

	return cmd
}

func newHistoryCmd(build appFactory) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived runs, newest first",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(_ *cobra.Command, _ []string) error {
			application, err := build()
			if err != nil {
				return err
			}

			return application.History(context.Background(), limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultHistoryLimit, "maximum number of runs to list")

	return cmd
}

// withUsage prints the command usage when argument validation fails. Runtime
// errors stay usage-free through SilenceUsage.
func withUsage(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			printUsage(cmd)
			return err
		}

		return nil
	}
}

func printUsage(cmd *cobra.Command) {
	fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
}

func newLogger(appEnv, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).Level(lvl).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
