package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gti/practice-automation-e2e/e2e/scenario"
	"github.com/gti/practice-automation-e2e/e2e/suites"
	"github.com/gti/practice-automation-e2e/e2e/testenv"
	"github.com/gti/practice-automation-e2e/internal/config"
	"github.com/gti/practice-automation-e2e/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errScenariosFailed = errors.New("scenarios failed")

type runOptions struct {
	suites  []string
	baseURL string
	soft    bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run suites and exit non-zero if any scenario fails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuites(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.suites, "suite", nil, "Suite to run (repeatable, default: all)")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Site to test (default: BASE_URL or the bundled fixture site)")
	cmd.Flags().BoolVar(&opts.soft, "soft", false, "Keep running checks after assertion failures")
	return cmd
}

func runSuites(cmd *cobra.Command, opts runOptions) error {
	selected, err := suites.Select(opts.suites)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.baseURL != "" {
		cfg.BaseURL = opts.baseURL
	}
	if cmd.Flags().Changed("soft") {
		cfg.SoftAssertions = opts.soft
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	env, err := testenv.Setup(setupCtx, testenv.FromConfig(cfg, logger))
	if err != nil {
		return err
	}
	defer env.Teardown()

	runner := env.NewRunner()
	logger.Info("starting run",
		zap.String("run_id", runner.RunID().String()),
		zap.String("site_url", env.SiteURL),
		zap.Int("suites", len(selected)),
	)

	var all []scenario.Result
	for _, s := range selected {
		scenarios, err := s.Build()
		if err != nil {
			return fmt.Errorf("failed to build suite %s: %w", s.Name, err)
		}
		all = append(all, runner.Run(ctx, s.Name, scenarios)...)
	}

	sum := printResults(cmd.OutOrStdout(), all)
	if sum.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", errScenariosFailed, sum.Failed, sum.Total)
	}
	return nil
}

// printResults writes one line per result and a summary line.
func printResults(w io.Writer, results []scenario.Result) scenario.Summary {
	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(w, "%s  %s/%s (%s)\n", status, r.Suite, r.Scenario, r.Duration.Round(time.Millisecond))
		for _, f := range r.Failures {
			fmt.Fprintf(w, "      %v\n", f)
		}
	}

	sum := scenario.Summarize(results)
	fmt.Fprintf(w, "\n%d scenarios, %d passed, %d failed (%d timed out)\n", sum.Total, sum.Passed, sum.Failed, sum.TimedOut)
	return sum
}
