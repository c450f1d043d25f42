package cmd

import (
	"fmt"
	"strings"
	"teamsync/internal/logger"

	"github.com/spf13/cobra"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List sync operations queued while offline",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		eng, err := buildEngine()
		if err != nil {
			return err
		}

		pending, err := eng.orchestrator.PendingOperations()
		if err != nil {
			return err
		}

		if len(pending) == 0 {
			fmt.Println("no pending operations")
			return nil
		}

		for _, p := range pending {
			files := "all shared files"
			if len(p.Files) > 0 {
				files = strings.Join(p.Files, ", ")
			}
			fmt.Printf("[%s] %-5s %s\n", p.QueuedAt.Format("2006-01-02 15:04:05"), p.Type, files)
		}

		return nil
	},
}

var pendingProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Replay the offline queue against the remote",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		eng, err := buildEngine()
		if err != nil {
			return err
		}

		results, err := eng.orchestrator.ProcessPendingOperations()
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("nothing to process")
			return nil
		}

		for _, result := range results {
			printResult(result)
		}

		return nil
	},
}

func init() {
	pendingCmd.AddCommand(pendingProcessCmd)
	rootCmd.AddCommand(pendingCmd)
}
