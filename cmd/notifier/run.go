// run.go implements "notifier run", a one-shot reconciliation for cron hosts
// and manual backfills.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"absence_notifier/internal/app"
	"absence_notifier/internal/infra/config"
	"absence_notifier/internal/infra/logger"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the absence job once and print the summary",
	Args:  cobra.NoArgs,
	RunE:  runOnce,
}

var (
	dateFlag  string
	forceFlag bool
)

func init() {
	runCmd.Flags().StringVar(&dateFlag, "date", "", "Date to process, YYYY-MM-DD (default: today, UTC)")
	runCmd.Flags().BoolVar(&forceFlag, "force", false, "Replace an existing reconciliation for the date")
}

func runOnce(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.JobTimeout)
	defer cancel()

	a, err := buildApplication(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, runErr := a.service.Run(ctx, app.RunRequest{Date: dateFlag, Force: forceFlag})

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	if runErr != nil {
		return fmt.Errorf("absence run failed: %w", runErr)
	}
	return nil
}
