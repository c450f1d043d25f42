package cmd

import (
	"fmt"
	"teamsync/internal/logger"
	"teamsync/internal/registry"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List tracked shared files",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		files, err := registry.New().List()
		if err != nil {
			return err
		}

		if len(files) == 0 {
			fmt.Println("no shared files tracked")
			return nil
		}

		fmt.Printf("%-50s %-10s %-25s %s\n", "FILE", "SIZE", "MODIFIED BY", "VERSION")
		for _, f := range files {
			version := f.Version
			if len(version) > 8 {
				version = version[:8]
			}
			fmt.Printf("%-50s %-10d %-25s %s\n", f.Path, f.SizeBytes, f.ModifiedBy, version)
		}

		return nil
	},
}

var filesTrackCmd = &cobra.Command{
	Use:   "track <path>",
	Short: "Add a file to the shared set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		if _, err := registry.New().Track(args[0]); err != nil {
			return err
		}

		fmt.Printf("tracking %s\n", args[0])
		return nil
	},
}

var filesUntrackCmd = &cobra.Command{
	Use:   "untrack <path>",
	Short: "Remove a file from the shared set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		if err := registry.New().Untrack(args[0]); err != nil {
			return err
		}

		fmt.Printf("stopped tracking %s\n", args[0])
		return nil
	},
}

func init() {
	filesCmd.AddCommand(filesTrackCmd, filesUntrackCmd)
	rootCmd.AddCommand(filesCmd)
}
