package cmd

import (
	"fmt"
	"net/http"
	"teamsync/internal/logger"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running watch daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		resp, err := http.Post(daemonURL("/stop"), "application/json", nil)
		if err != nil {
			return fmt.Errorf("watch daemon not running: %w", err)
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		fmt.Println("watch daemon stopping")
		return nil
	},
}

func daemonURL(path string) string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", cfg.DaemonPort, path)
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
