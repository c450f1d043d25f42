package cmd

import (
	"fmt"
	"sort"
	"teamsync/internal/logger"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync state of the shared files",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		eng, err := buildEngine()
		if err != nil {
			return err
		}

		snapshot, err := eng.orchestrator.GetStatus()
		if err != nil {
			return err
		}

		online := "offline"
		if snapshot.Online {
			online = "online"
		}

		lastSync := "never"
		if snapshot.LastSyncAt != nil {
			lastSync = snapshot.LastSyncAt.Format("2006-01-02 15:04:05")
		}

		fmt.Printf("branch: %s (%s), ahead %d / behind %d, last sync: %s\n",
			snapshot.Branch, online, snapshot.Ahead, snapshot.Behind, lastSync)

		if len(snapshot.Files) == 0 {
			fmt.Println("no shared files tracked, use 'teamsync files track <path>'")
			return nil
		}

		paths := make([]string, 0, len(snapshot.Files))
		for path := range snapshot.Files {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		fmt.Printf("%-50s %s\n", "FILE", "STATE")
		for _, path := range paths {
			fmt.Printf("%-50s %s\n", path, snapshot.Files[path])
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
