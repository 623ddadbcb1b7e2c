// Package cli implements the tagtree command-line interface.
package cli

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tagtree/internal/config"
	"github.com/matzehuels/tagtree/pkg/archive"
	"github.com/matzehuels/tagtree/pkg/buildinfo"
	"github.com/matzehuels/tagtree/pkg/cache"
	apperr "github.com/matzehuels/tagtree/pkg/errors"
	"github.com/matzehuels/tagtree/pkg/integrations/flickr"
	"github.com/matzehuels/tagtree/pkg/seen"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "tagtree"

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

	errOut io.Writer // spinners and other transient terminal output

	configPath string
	verbose    bool
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), errOut: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Grow a tree of photos linked by shared tags",
		Long: `tagtree searches a photo service for a tag, then keeps growing a tree:
every new photo is found through one of the tags of a photo already in the
tree, and a force simulation settles the layout after each addition.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				registerHooks(c.Logger)
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.Path()+")")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.growCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration once per process.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "load configuration")
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Backends
// =============================================================================

// backends holds the stores a command opened from the configuration.
type backends struct {
	cache   cache.Cache
	seen    seen.Set
	archive archive.Store // nil when archiving is off or not requested
	rdb     *redis.Client
}

type backendOpts struct {
	noCache bool
	archive bool
}

func (c *CLI) openBackends(ctx context.Context, cfg *config.Config, opts backendOpts) (*backends, error) {
	b := &backends{}
	ok := false
	defer func() {
		if !ok {
			b.Close()
		}
	}()

	if cfg.Cache.Backend == config.BackendRedis && !opts.noCache || cfg.Seen.Backend == config.BackendRedis {
		ropts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "redis url")
		}
		b.rdb = redis.NewClient(ropts)
		if err := b.rdb.Ping(ctx).Err(); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeNetwork, err, "connect to redis at %s", ropts.Addr)
		}
	}

	switch {
	case opts.noCache || cfg.Cache.Backend == config.BackendNone:
		b.cache = cache.NewNullCache()
	case cfg.Cache.Backend == config.BackendRedis:
		b.cache = cache.NewRedisCache(b.rdb, cfg.Redis.Prefix)
	default:
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			c.Logger.Warn("File cache unavailable, caching disabled", "dir", cfg.Cache.Dir, "error", err)
			b.cache = cache.NewNullCache()
		} else {
			b.cache = fc
		}
	}

	if cfg.Seen.Backend == config.BackendRedis {
		b.seen = seen.NewRedis(b.rdb, cfg.Seen.Key)
	} else {
		b.seen = seen.NewMemory()
	}

	if opts.archive {
		store, err := openArchive(ctx, cfg.Archive)
		if err != nil {
			return nil, err
		}
		b.archive = store
	}

	ok = true
	return b, nil
}

func openArchive(ctx context.Context, cfg config.ArchiveConfig) (archive.Store, error) {
	switch cfg.Backend {
	case config.BackendNone:
		return nil, nil
	case config.BackendMongo:
		store, err := archive.DialMongo(ctx, cfg.MongoURI, cfg.Database, cfg.Collection)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeNetwork, err, "open run archive")
		}
		return store, nil
	default:
		store, err := archive.NewDir(cfg.Dir)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "open run archive")
		}
		return store, nil
	}
}

// Close releases every backend. The redis cache shares b.rdb, so only the
// client itself is closed.
func (b *backends) Close() {
	if b.archive != nil {
		b.archive.Close()
	}
	if _, shared := b.cache.(*cache.RedisCache); b.cache != nil && !shared {
		b.cache.Close()
	}
	if b.rdb != nil {
		b.rdb.Close()
	}
}

// newFlickr returns a search client configured from cfg.
func newFlickr(cfg *config.Config, c cache.Cache) (*flickr.Client, error) {
	if cfg.Flickr.APIKey == "" {
		return nil, apperr.New(apperr.ErrCodeMissingAPIKey,
			"no Flickr API key: set %s or flickr.api_key in %s", config.EnvAPIKey, config.Path())
	}
	client := flickr.NewClient(cfg.Flickr.APIKey, c, cfg.Cache.TTL)
	client.PerPage = cfg.Flickr.PerPage
	client.Attempts = cfg.Flickr.Attempts
	client.SetHTTPClient(&http.Client{Timeout: cfg.Flickr.Timeout})
	if cfg.Flickr.BaseURL != "" {
		client.SetBaseURL(cfg.Flickr.BaseURL)
	}
	return client, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// Output formats understood by grow and graph.
const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatPDF  = "pdf"
	formatPNG  = "png"
)

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		switch f {
		case formatJSON, formatDOT, formatSVG, formatPDF, formatPNG:
			out = append(out, f)
		case "":
		default:
			return nil, apperr.New(apperr.ErrCodeInvalidInput, "unknown format %q (want json, dot, svg, pdf or png)", f)
		}
	}
	return out, nil
}
