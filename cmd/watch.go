package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"teamsync/internal/daemon"
	"teamsync/internal/logger"
	"teamsync/internal/model"
	"teamsync/internal/syncer"
	"teamsync/internal/watcher"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the shared root and sync automatically on change",
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	eng, err := buildEngine()
	if err != nil {
		return err
	}

	w, err := watcher.New(64)
	if err != nil {
		return err
	}

	if err := w.Watch(cfg.SharedPath()); err != nil {
		return err
	}
	defer w.Stop()

	changes := watcher.Debounce(
		watcher.Filter(w.Changes(), cfg.IgnoreList),
		time.Duration(cfg.DebounceMs)*time.Millisecond,
	)

	srv := daemon.NewServer(eng.orchestrator, eng.resolver, cfg.DaemonPort)
	srv.Start()

	logger.Log.Info("teamsync watch started",
		zap.String("shared_root", cfg.SharedPath()),
		zap.Int("port", cfg.DaemonPort))

	go func() {
		for change := range changes {
			syncOnChange(eng.orchestrator, change)
		}
	}()

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

func syncOnChange(o *syncer.Orchestrator, change watcher.Change) {
	logger.Log.Info("shared file changed",
		zap.String("path", change.Path))

	result, err := o.Sync(false, false, false)
	if errors.Is(err, syncer.ErrNetworkUnavailable) {
		if qErr := o.QueueOfflineOperation(model.OpMerge, nil); qErr != nil {
			logger.Log.Error("failed to queue offline sync", zap.Error(qErr))
		}
		return
	}
	if err != nil {
		logger.Log.Error("auto-sync failed", zap.Error(err))
		return
	}

	if result.Operation.Status == model.StatusConflict {
		fmt.Printf("conflicts detected on %d file(s); run 'teamsync conflicts' to resolve\n",
			len(result.Conflicts))
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
