package cmd

import (
	"errors"
	"fmt"
	"teamsync/internal/logger"
	"teamsync/internal/model"
	"teamsync/internal/syncer"

	"github.com/spf13/cobra"
)

var (
	syncPushOnly bool
	syncPullOnly bool
	syncForce    bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull, resolve and push shared files once",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		if syncPushOnly && syncPullOnly {
			return fmt.Errorf("--push-only and --pull-only are mutually exclusive")
		}

		eng, err := buildEngine()
		if err != nil {
			return err
		}

		result, err := eng.orchestrator.Sync(syncPushOnly, syncPullOnly, syncForce)
		if errors.Is(err, syncer.ErrNetworkUnavailable) {
			fmt.Println("remote unreachable; queueing sync for later (run 'teamsync pending process' when online)")
			return eng.orchestrator.QueueOfflineOperation(result.Operation.Type, nil)
		}
		if err != nil {
			return err
		}

		printResult(result)
		return nil
	},
}

func printResult(result model.SyncResult) {
	switch result.Operation.Status {
	case model.StatusSuccess:
		if len(result.PushedFiles) == 0 {
			fmt.Println("already up to date")
			return
		}

		fmt.Printf("synced, %d file(s) pushed:\n", len(result.PushedFiles))
		for _, path := range result.PushedFiles {
			fmt.Printf("  %s\n", path)
		}

	case model.StatusConflict:
		fmt.Printf("sync stopped: %d conflicting file(s)\n", len(result.Conflicts))
		for _, rec := range result.Conflicts {
			fmt.Printf("  %s  (id %s)\n", rec.FilePath, rec.ID)
		}
		fmt.Println("resolve with 'teamsync conflicts resolve <id> <keep-local|keep-remote|manual>'")

	case model.StatusError:
		fmt.Printf("sync failed: %s\n", result.ErrorMessage)
	}
}

func init() {
	syncCmd.Flags().BoolVar(&syncPushOnly, "push-only", false, "Skip the pull phase")
	syncCmd.Flags().BoolVar(&syncPullOnly, "pull-only", false, "Skip the push phase")
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "Auto-resolve conflicts by keeping local versions")
	rootCmd.AddCommand(syncCmd)
}
