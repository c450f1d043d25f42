package cmd

import (
	"fmt"
	"os"
	"teamsync/autostart"
	"teamsync/internal/logger"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Run the watch daemon automatically at login",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		execPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to locate executable: %w", err)
		}

		starter := autostart.New()
		if installed, _ := starter.IsInstalled(); installed {
			fmt.Println("already installed")
			return nil
		}

		if err := starter.Install(execPath); err != nil {
			return err
		}

		fmt.Println("installed: teamsync watch will start at login")
		return nil
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the login item for the watch daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		if err := autostart.New().Uninstall(); err != nil {
			return err
		}

		fmt.Println("uninstalled")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd, uninstallCmd)
}
