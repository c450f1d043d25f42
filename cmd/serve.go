package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"teamsync/internal/daemon"
	"teamsync/internal/logger"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the status daemon without watching for changes",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	eng, err := buildEngine()
	if err != nil {
		return err
	}

	srv := daemon.NewServer(eng.orchestrator, eng.resolver, cfg.DaemonPort)
	srv.Start()

	logger.Log.Info("teamsync daemon started",
		zap.Int("port", cfg.DaemonPort))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Log.Info("shutting down",
			zap.String("signal", sig.String()))
	case <-srv.StopCh():
		logger.Log.Info("stop requested via API")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
