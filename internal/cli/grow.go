package cli

import (
	"context"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/tagtree/internal/config"
	"github.com/matzehuels/tagtree/pkg/archive"
	apperr "github.com/matzehuels/tagtree/pkg/errors"
	"github.com/matzehuels/tagtree/pkg/grow"
	"github.com/matzehuels/tagtree/pkg/render"
	"github.com/matzehuels/tagtree/pkg/render/nodelink"
	"github.com/matzehuels/tagtree/pkg/server"
)

type growOptions struct {
	maxNodes  int
	seed      uint64
	tick      time.Duration
	output    string
	formats   string
	detailed  bool
	pngScale  float64
	watch     bool
	serve     bool
	addr      string
	noCache   bool
	refresh   bool
	noArchive bool
}

// growCommand creates the grow command.
func (c *CLI) growCommand() *cobra.Command {
	var opts growOptions
	cmd := &cobra.Command{
		Use:   "grow <tag>",
		Short: "Grow a photo tree from a root tag",
		Long: `Grow a photo tree starting from a root tag.

The best photo for the tag becomes the root. The tree then grows one node
at a time: the oldest node with room picks one of its photo's tags, the
best unused photo for that tag is attached, and the layout is simulated
until it settles.`,
		Example: `  tagtree grow ocean --max-nodes 20 -f svg,json
  tagtree grow sunset --watch
  tagtree grow forest --serve --addr :8080`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return classify(c.runGrow(cmd.Context(), args[0], opts))
		},
	}

	cmd.Flags().IntVarP(&opts.maxNodes, "max-nodes", "n", 0, "stop after this many nodes (default from config)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed for tag choice and placement (0 = random)")
	cmd.Flags().DurationVar(&opts.tick, "tick", -1, "pause between simulation ticks (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path without extension (default: the tag)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output formats: json,dot,svg,pdf,png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with their tags")
	cmd.Flags().Float64Var(&opts.pngScale, "png-scale", 2, "PNG resolution multiplier")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "show the growing tree in the terminal")
	cmd.Flags().BoolVar(&opts.serve, "serve", false, "serve the live board over HTTP until interrupted")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address for --serve (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the search cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached searches and fetch again")
	cmd.Flags().BoolVar(&opts.noArchive, "no-archive", false, "do not archive the run")

	return cmd
}

func (c *CLI) runGrow(ctx context.Context, tag string, opts growOptions) error {
	if err := apperr.ValidateTag(tag); err != nil {
		return err
	}
	formats, err := parseFormats(opts.formats)
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	applyGrowFlags(cfg, opts)

	b, err := c.openBackends(ctx, cfg, backendOpts{noCache: opts.noCache, archive: !opts.noArchive})
	if err != nil {
		return err
	}
	defer b.Close()

	fc, err := newFlickr(cfg, b.cache)
	if err != nil {
		return err
	}

	board := render.NewBoard()
	logger := c.Logger
	var renderer render.Renderer = render.NewMulti(board, statusLog{logger: logger})
	if opts.watch {
		// the terminal view owns the screen
		logger = newLogger(io.Discard, LogInfo)
		renderer = board
	}

	orch := grow.NewOrchestrator(photoSearcher{client: fc, refresh: opts.refresh}, b.seen, renderer, logger)
	orch.Config = cfg.Grow
	orch.Physics = cfg.Physics
	orch.Expand = cfg.Expand
	if opts.seed != 0 {
		orch.Rand = rand.New(rand.NewPCG(opts.seed, opts.seed))
	}

	sum, runErr := c.growConcurrently(ctx, tag, orch, board, b.archive, opts, cfg.Server.Addr)

	snap, ok := orch.Snapshot()
	settled := ok && len(snap.Nodes) > 0
	if settled && b.archive != nil {
		if err := b.archive.Save(context.WithoutCancel(ctx), archive.NewRecord(sum, snap)); err != nil {
			c.Logger.Warn("Could not archive run", "error", err)
		} else {
			c.Logger.Debug("Archived run", "id", sum.RunID)
		}
	}

	var paths []string
	if settled && len(formats) > 0 {
		base := opts.output
		if base == "" {
			base = tag
		}
		if dir := filepath.Dir(base); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		var err error
		paths, err = writeOutputs(snap, base, formats, nodelink.Options{Detailed: opts.detailed}, opts.pngScale)
		if err != nil {
			return err
		}
	}

	printSummary(sum)
	for _, p := range paths {
		printFile(p)
	}
	return growResult(ctx, sum, runErr)
}

// growResult is the command's error for a finished run. A run cut short by
// an interrupt reports the context error so the process exits 130; quitting
// the terminal view, or an interrupt that only stops --serve after the run
// finished, is a normal exit.
func growResult(ctx context.Context, sum grow.Summary, runErr error) error {
	if runErr == nil && sum.Reason == grow.StopCancelled && ctx.Err() != nil {
		return ctx.Err()
	}
	return runErr
}

// growConcurrently runs the orchestrator next to the optional terminal view
// and HTTP server.
func (c *CLI) growConcurrently(ctx context.Context, tag string, orch *grow.Orchestrator, board *render.Board,
	store archive.Store, opts growOptions, addr string) (grow.Summary, error) {
	g, gctx := errgroup.WithContext(ctx)
	runCtx, stopRun := context.WithCancel(gctx)
	defer stopRun()

	var prog *tea.Program
	if opts.watch {
		prog = tea.NewProgram(newWatchModel(board, tag), tea.WithContext(gctx), tea.WithAltScreen())
		g.Go(func() error {
			_, err := prog.Run()
			stopRun()
			if gctx.Err() != nil {
				return nil
			}
			return err
		})
	}
	if opts.serve {
		srv := server.New(board, orch.Snapshot, store, c.Logger)
		g.Go(func() error {
			return srv.ListenAndServe(gctx, addr)
		})
	}

	var (
		sum    grow.Summary
		runErr error
	)
	g.Go(func() error {
		sum, runErr = orch.Run(runCtx, tag)
		if prog != nil {
			prog.Send(runDoneMsg{sum: sum, err: runErr})
		}
		if opts.serve && runErr == nil && ctx.Err() == nil {
			c.Logger.Info("Run finished, still serving (Ctrl-C to stop)", "addr", addr)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return sum, err
	}
	return sum, runErr
}

func applyGrowFlags(cfg *config.Config, opts growOptions) {
	if opts.maxNodes > 0 {
		cfg.Grow.MaxNodes = opts.maxNodes
	}
	if opts.tick >= 0 {
		cfg.Physics.TickInterval = opts.tick
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
}
