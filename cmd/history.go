package cmd

import (
	"fmt"
	"strings"
	"teamsync/internal/logger"
	"teamsync/internal/model"

	"github.com/spf13/cobra"
)

var historyN int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recent sync operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		eng, err := buildEngine()
		if err != nil {
			return err
		}

		ops, err := eng.orchestrator.GetSyncHistory(historyN)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("no sync history yet")
			return nil
		}

		for _, op := range ops {
			marker := "✓"
			switch op.Status {
			case model.StatusError:
				marker = "✗"
			case model.StatusConflict:
				marker = "!"
			}

			detail := ""
			if len(op.FilesAffected) > 0 {
				detail = " " + strings.Join(op.FilesAffected, ", ")
			}
			if op.ErrorMessage != "" {
				detail = " " + op.ErrorMessage
			}

			fmt.Printf("%s [%s] %-5s %-8s%s\n",
				marker,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Type,
				op.Status,
				detail,
			)
		}

		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyN, "n", 20, "number of history entries to show")
	rootCmd.AddCommand(historyCmd)
}
