package cmd

import (
	"fmt"
	"strings"
	"teamsync/internal/conflict"
	"teamsync/internal/logger"
	"teamsync/internal/model"

	"github.com/spf13/cobra"
)

var (
	archivedN      int
	diffSideBySide bool
	diffContext    int
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Inspect and resolve shared-file conflicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		eng, err := buildEngine()
		if err != nil {
			return err
		}

		records, err := eng.resolver.ActiveConflicts()
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("no active conflicts")
			return nil
		}

		for _, rec := range records {
			fmt.Printf("%s  %s  (local by %s)\n", rec.ID, rec.FilePath, rec.LocalVersion.ModifiedBy)
		}

		return nil
	},
}

var conflictShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show both versions of a conflict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		eng, err := buildEngine()
		if err != nil {
			return err
		}

		rec, err := eng.resolver.Conflict(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("file: %s (sync operation %s)\n", rec.FilePath, rec.SyncOperationID)
		fmt.Printf("--- local (%s @ %s)\n%s\n", rec.LocalVersion.ModifiedBy,
			rec.LocalVersion.CommitRef, rec.LocalVersion.Content)
		fmt.Printf("--- remote (%s)\n%s\n", rec.RemoteVersion.ModifiedBy,
			rec.RemoteVersion.Content)
		return nil
	},
}

var conflictResolveCmd = &cobra.Command{
	Use:   "resolve <id> <keep-local|keep-remote|manual>",
	Short: "Resolve one conflict",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		resolution, err := parseResolution(args[1])
		if err != nil {
			return err
		}

		eng, err := buildEngine()
		if err != nil {
			return err
		}

		rec, err := eng.resolver.Resolve(args[0], resolution, eng.identity.Email)
		if err != nil {
			return err
		}

		fmt.Printf("resolved %s (%s), archived as %s\n", rec.FilePath, rec.Resolution, rec.ID)
		return nil
	},
}

var conflictResolveAllCmd = &cobra.Command{
	Use:   "resolve-all <keep-local|keep-remote|manual>",
	Short: "Resolve every active conflict with one strategy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		resolution, err := parseResolution(args[0])
		if err != nil {
			return err
		}

		eng, err := buildEngine()
		if err != nil {
			return err
		}

		resolved, err := eng.resolver.ResolveAll(resolution, eng.identity.Email)
		if err != nil {
			return err
		}

		fmt.Printf("resolved %d conflict(s)\n", len(resolved))
		return nil
	},
}

var conflictClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Abandon all active conflicts without resolving them",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		eng, err := buildEngine()
		if err != nil {
			return err
		}

		n, err := eng.resolver.ClearActive()
		if err != nil {
			return err
		}

		fmt.Printf("cleared %d conflict(s)\n", n)
		return nil
	},
}

var conflictArchivedCmd = &cobra.Command{
	Use:   "archived",
	Short: "List resolved conflicts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		eng, err := buildEngine()
		if err != nil {
			return err
		}

		records, err := eng.resolver.ArchivedConflicts(archivedN)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("no archived conflicts")
			return nil
		}

		for _, rec := range records {
			fmt.Printf("%s  %s  %s by %s\n",
				rec.ResolvedAt.Format("2006-01-02 15:04:05"),
				rec.FilePath, rec.Resolution, rec.ResolvedBy)
		}

		return nil
	},
}

var conflictDiffCmd = &cobra.Command{
	Use:   "diff <id>",
	Short: "Compare the two versions of a conflict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		eng, err := buildEngine()
		if err != nil {
			return err
		}

		rec, err := eng.resolver.Conflict(args[0])
		if err != nil {
			return err
		}

		if diffSideBySide {
			for _, pair := range conflict.SideBySideDiff(rec, diffContext) {
				marker := " "
				if pair.Changed {
					marker = "|"
				}
				fmt.Printf("%-40s %s %s\n", pair.Local, marker, pair.Remote)
			}
			return nil
		}

		fmt.Println(strings.Join(conflict.Diff(rec), "\n"))
		return nil
	},
}

func parseResolution(arg string) (model.Resolution, error) {
	switch arg {
	case "keep-local":
		return model.KeepLocal, nil
	case "keep-remote":
		return model.KeepRemote, nil
	case "manual":
		return model.ManualMerge, nil
	default:
		return "", fmt.Errorf("unknown resolution %q, expected keep-local, keep-remote or manual", arg)
	}
}

func init() {
	conflictArchivedCmd.Flags().IntVar(&archivedN, "n", 20, "number of archived conflicts to show")
	conflictDiffCmd.Flags().BoolVar(&diffSideBySide, "side-by-side", false, "Show versions side by side")
	conflictDiffCmd.Flags().IntVar(&diffContext, "context", 3, "Unchanged lines to keep around each change")

	conflictsCmd.AddCommand(conflictShowCmd, conflictResolveCmd, conflictResolveAllCmd,
		conflictClearCmd, conflictArchivedCmd, conflictDiffCmd)
	rootCmd.AddCommand(conflictsCmd)
}
