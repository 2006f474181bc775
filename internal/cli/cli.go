// Package cli implements the cratestack command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cratestack/pkg/buildinfo"
	"github.com/matzehuels/cratestack/pkg/cache"
	"github.com/matzehuels/cratestack/pkg/config"
	"github.com/matzehuels/cratestack/pkg/pipeline"
	"github.com/matzehuels/cratestack/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "cratestack"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded by the root command's PersistentPreRun before
	// any subcommand runs.
	Config *config.Config

	configPath string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	cfg := config.Default()
	return &CLI{
		Logger: newLogger(w, level),
		Config: &cfg,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Cratestack packs rectangular items into a container",
		Long:         `Cratestack is a deterministic 3D packing tool: it places a catalog of rectangular items into a container so nothing overlaps and everything is supported from below, then renders and replays the result.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/cratestack/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable caching")

	root.AddCommand(c.packCommand())
	root.AddCommand(c.obbCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file. An explicitly named file must
// exist; the default location is optional.
func (c *CLI) loadConfig() error {
	if c.configPath != "" {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		c.Config = cfg
		return nil
	}
	cfg, err := config.LoadDefault(defaultConfigPath())
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	ca, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ca, nil, c.Logger), nil
}

// newCache builds the configured cache backend. File cache setup
// failures degrade to no caching rather than failing the command.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache || c.Config.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	if c.Config.Cache.Backend == "redis" {
		return cache.NewRedisCache(ctx, c.Config.Cache.RedisAddr)
	}
	dir := c.Config.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// openStore opens the configured run store, filling in default paths
// for the local backends.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	opts := store.Options{
		Backend:    c.Config.Store.Backend,
		Dir:        c.Config.Store.Dir,
		SQLitePath: c.Config.Store.SQLitePath,
		MongoURI:   c.Config.Store.MongoURI,
		MongoDB:    c.Config.Store.MongoDB,
	}
	if (opts.Backend == "" || opts.Backend == "file") && opts.Dir == "" {
		opts.Dir = filepath.Join(configDir(), "runs")
	}
	if opts.Backend == "sqlite" && opts.SQLitePath == "" {
		opts.SQLitePath = filepath.Join(configDir(), "runs.db")
	}
	return store.Open(ctx, opts)
}

// cacheDir returns the cache directory using the XDG convention
// (~/.cache/cratestack/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the user config directory for the application.
func configDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	return "." + appName
}

// defaultConfigPath returns the optional user-level config file path.
func defaultConfigPath() string {
	return filepath.Join(configDir(), "config.toml")
}
