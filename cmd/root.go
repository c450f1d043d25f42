package cmd

import (
	"fmt"
	"os"
	"teamsync/internal/access"
	"teamsync/internal/config"
	"teamsync/internal/conflict"
	"teamsync/internal/db"
	"teamsync/internal/gitops"
	"teamsync/internal/logger"
	"teamsync/internal/registry"
	"teamsync/internal/store"
	"teamsync/internal/syncer"

	"github.com/spf13/cobra"
)

var (
	cfg         *config.Config
	debug       bool
	projectRoot string
)

var rootCmd = &cobra.Command{
	Use:   "teamsync",
	Short: "Keep team-shared project files in sync through a git remote",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		logger.Init(debug)

		var err error
		cfg, err = config.Load(projectRoot)
		if err != nil {
			return err
		}

		return db.Init(cfg.RegistryPath())
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// engine wires the library once per invocation; each CLI process loads the
// persisted state fresh and writes it back on every mutation.
type engine struct {
	orchestrator *syncer.Orchestrator
	resolver     *conflict.Resolver
	registry     *registry.Registry
	git          *gitops.Client
	identity     gitops.Identity
}

func buildEngine() (*engine, error) {
	git := gitops.NewClient(cfg.ProjectRoot, cfg.Remote)

	identity, err := git.CurrentIdentity()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve git identity: %w", err)
	}

	conflicts := store.NewConflictStore(cfg.ConflictsPath(), cfg.ArchiveDir())
	resolver := conflict.NewResolver(git, conflicts, cfg.ProjectRoot, cfg.SharedRoot)
	reg := registry.New()
	checker := access.NewRoleChecker(cfg.Members, identity.Email)

	orchestrator := syncer.NewOrchestrator(
		git,
		store.NewSyncLogStore(cfg.SyncLogPath()),
		resolver,
		reg,
		checker,
		syncer.Options{
			ProjectRoot:   cfg.ProjectRoot,
			CommitMessage: cfg.CommitMessage,
			MemberID:      identity.Email,
		},
	)

	return &engine{
		orchestrator: orchestrator,
		resolver:     resolver,
		registry:     reg,
		git:          git,
		identity:     identity,
	}, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().StringVarP(&projectRoot, "root", "C", "", "Project root (defaults to current directory)")
}
