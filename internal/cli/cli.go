package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/synmed/synviz/pkg/buildinfo"
	"github.com/synmed/synviz/pkg/cache"
	"github.com/synmed/synviz/pkg/observability"
	"github.com/synmed/synviz/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "synviz"

	// redisPasswordEnv holds the Redis password; it is never taken as a flag.
	redisPasswordEnv = "SYNVIZ_REDIS_PASSWORD"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Cache backend selection, shared by every command that renders.
	noCache   bool
	cacheDir  string
	redisAddr string
	redisDB   int
	namespace string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "synviz renders scroll-revealed pie charts and count-up numbers",
		Long:         `synviz turns a small TOML dataset into the animated data section of a landing page: pie charts that reveal slice by slice and numbers that count up once scrolled into view, as SVG, HTML, PNG, PDF or JSON.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			c.installHooks()
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.BoolVar(&c.noCache, "no-cache", false, "disable the artifact cache")
	pf.StringVar(&c.cacheDir, "cache-dir", "", "file cache directory (default: $XDG_CACHE_HOME/synviz)")
	pf.StringVar(&c.redisAddr, "redis", "", "use the Redis cache at host:port (password from $"+redisPasswordEnv+")")
	pf.IntVar(&c.redisDB, "redis-db", 0, "Redis database number")
	pf.StringVar(&c.namespace, "cache-namespace", "", "prefix for cache keys, to share one cache between sites")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.framesCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// installHooks routes library events to the debug log.
func (c *CLI) installHooks() {
	h := newLogHooks(c.Logger)
	observability.SetAnimationHooks(h)
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.namespace != "" {
		keyer = cache.NewScopedKeyer(nil, c.namespace+":")
	}
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

// newCache opens the configured cache backend. An unusable default cache
// directory disables caching rather than failing the command.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	switch {
	case c.noCache:
		return cache.NewNullCache(), nil
	case c.redisAddr != "":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.redisAddr,
			Password: os.Getenv(redisPasswordEnv),
			DB:       c.redisDB,
		})
	case c.cacheDir != "":
		return cache.NewFileCache(c.cacheDir)
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/synviz/).
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

// datasetArg returns the dataset path given on the command line, or "" for
// the built-in dataset.
func datasetArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
