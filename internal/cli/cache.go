package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tagtree/internal/config"
	"github.com/matzehuels/tagtree/pkg/cache"
	apperr "github.com/matzehuels/tagtree/pkg/errors"
	"github.com/matzehuels/tagtree/pkg/seen"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the search cache and the used-photo set",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePruneCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var clearSeen bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached search",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			b, err := c.openBackends(ctx, cfg, backendOpts{})
			if err != nil {
				return err
			}
			defer b.Close()

			if err := clearCache(ctx, b.cache, cfg); err != nil {
				return err
			}
			if clearSeen {
				r, ok := b.seen.(*seen.Redis)
				if !ok {
					printInfo("Used photos are kept in memory per run; nothing to clear")
					return nil
				}
				if err := r.Clear(ctx); err != nil {
					return apperr.Wrap(apperr.ErrCodeNetwork, err, "clear used photos")
				}
				printSuccess("Cleared used photos")
				printDetail("Key: %s", cfg.Seen.Key)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearSeen, "seen", false, "also forget which photos were used (redis backend)")
	return cmd
}

func clearCache(ctx context.Context, c cache.Cache, cfg *config.Config) error {
	switch c := c.(type) {
	case *cache.FileCache:
		if err := c.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		printSuccess("Cleared search cache")
		printDetail("Directory: %s", c.Dir())
	case *cache.RedisCache:
		n, err := c.Clear(ctx)
		if err != nil {
			return apperr.Wrap(apperr.ErrCodeNetwork, err, "clear cache")
		}
		printSuccess("Cleared %d cached searches", n)
		printDetail("Prefix: %s", cfg.Redis.Prefix)
	default:
		printInfo("Cache is disabled")
	}
	return nil
}

// cachePruneCommand creates the "cache prune" subcommand.
func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired entries from the file cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != config.BackendFile {
				printInfo("Only the file cache needs pruning; %s expires entries itself", cfg.Cache.Backend)
				return nil
			}
			fc, err := cache.NewFileCache(cfg.Cache.Dir)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			n, err := fc.Prune()
			if err != nil {
				return fmt.Errorf("prune cache: %w", err)
			}
			printSuccess("Pruned %d expired entries", n)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Println(cfg.Cache.Dir)
			return nil
		},
	}
}
