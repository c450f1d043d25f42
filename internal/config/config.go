package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	ProjectRoot   string            `mapstructure:"project_root"`
	SharedRoot    string            `mapstructure:"shared_root"`
	StateDir      string            `mapstructure:"state_dir"`
	DBPath        string            `mapstructure:"db_path"`
	Remote        string            `mapstructure:"remote"`
	CommitMessage string            `mapstructure:"commit_message"`
	DaemonPort    int               `mapstructure:"daemon_port"`
	DebounceMs    int               `mapstructure:"debounce_ms"`
	IgnoreList    []string          `mapstructure:"ignore_list"`
	Members       map[string]string `mapstructure:"members"`
}

var Default = Config{
	ProjectRoot:   ".",
	SharedRoot:    "team",
	StateDir:      ".teamsync",
	DBPath:        "registry.db",
	Remote:        "origin",
	CommitMessage: "chore(team): sync shared files",
	DaemonPort:    9400,
	DebounceMs:    1500,
	IgnoreList:    []string{".git", ".teamsync", ".DS_Store", "*.tmp", "*.swp"},
}

func Load(projectRoot string) (*Config, error) {
	if projectRoot == "" {
		projectRoot = Default.ProjectRoot
	}

	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	stateDir := filepath.Join(root, Default.StateDir)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(stateDir)

	viper.SetDefault("project_root", root)
	viper.SetDefault("shared_root", Default.SharedRoot)
	viper.SetDefault("state_dir", Default.StateDir)
	viper.SetDefault("db_path", Default.DBPath)
	viper.SetDefault("remote", Default.Remote)
	viper.SetDefault("commit_message", Default.CommitMessage)
	viper.SetDefault("daemon_port", Default.DaemonPort)
	viper.SetDefault("debounce_ms", Default.DebounceMs)
	viper.SetDefault("ignore_list", Default.IgnoreList)
	viper.SetDefault("members", map[string]string{})

	viper.SetEnvPrefix("TEAMSYNC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := errors.AsType[viper.ConfigFileNotFoundError](err); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ProjectRoot = root
	return &cfg, nil
}

// StatePath returns an absolute path inside the local state directory.
func (c *Config) StatePath(name string) string {
	return filepath.Join(c.ProjectRoot, c.StateDir, name)
}

func (c *Config) SyncLogPath() string {
	return c.StatePath("sync-log.json")
}

func (c *Config) ConflictsPath() string {
	return c.StatePath("conflicts.json")
}

func (c *Config) ArchiveDir() string {
	return c.StatePath("conflict-archive")
}

func (c *Config) RegistryPath() string {
	return c.StatePath(c.DBPath)
}

func (c *Config) SharedPath() string {
	return filepath.Join(c.ProjectRoot, c.SharedRoot)
}
