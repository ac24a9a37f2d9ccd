package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

//nolint:gochecknoglobals // Cobra commands are typically global
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load a deck and serve the inspection API",
	Long: `Load a deck, then run the metrics, health check and API servers until
SIGINT or SIGTERM is received.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := loadEngine(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := svc.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()

		return nil
	})

	// Wait for shutdown signal
	g.Go(func() error {
		<-ctx.Done()

		logger.Info("Shutdown signal received")

		return svc.Stop()
	})

	return g.Wait()
}
