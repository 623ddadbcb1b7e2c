package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tagtree/pkg/archive"
	apperr "github.com/matzehuels/tagtree/pkg/errors"
	"github.com/matzehuels/tagtree/pkg/graph"
	"github.com/matzehuels/tagtree/pkg/render/nodelink"
)

// graphCommand creates the graph command for archived runs.
func (c *CLI) graphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Inspect and export archived runs",
	}
	cmd.AddCommand(c.graphListCommand())
	cmd.AddCommand(c.graphShowCommand())
	cmd.AddCommand(c.graphExportCommand())
	return cmd
}

func (c *CLI) graphListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return classify(c.withArchive(cmd.Context(), func(store archive.Store) error {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					printInfo("No archived runs")
					return nil
				}
				for _, r := range runs {
					fmt.Printf("%s  %s  %s\n", StyleDim.Render(r.ID), StyleValue.Render(r.RootTag),
						StyleDim.Render(fmt.Sprintf("%d nodes · %s · %s", r.Nodes, r.Reason, r.Started.Local().Format(time.DateTime))))
				}
				return nil
			}))
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "show at most this many runs (0 = all)")
	return cmd
}

func (c *CLI) graphShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the summary and edges of an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := c.loadRun(cmd.Context(), args[0])
			if err != nil {
				return classify(err)
			}
			printRecord(rec)
			return nil
		},
	}
}

func (c *CLI) graphExportCommand() *cobra.Command {
	var (
		input    string
		output   string
		formats  string
		detailed bool
		pngScale float64
	)
	cmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "Render an archived run or a snapshot file",
		Example: `  tagtree graph export 2f1c9f0e-6a55-4b0e-9a4a-0d6c8f2f1e11 -f svg
  tagtree graph export --input ocean.json -f svg,png -o ocean`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := parseFormats(formats)
			if err != nil {
				return err
			}
			if len(fs) == 0 {
				fs = []string{formatSVG}
			}

			var snap graph.Snapshot
			base := output
			switch {
			case input != "" && len(args) == 0:
				snap, err = graph.ReadSnapshotFile(input)
				if err != nil {
					return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "read snapshot")
				}
				if base == "" {
					base = input[:len(input)-len(filepath.Ext(input))]
				}
			case input == "" && len(args) == 1:
				rec, err := c.loadRun(cmd.Context(), args[0])
				if err != nil {
					return classify(err)
				}
				snap = rec.Graph
				if base == "" {
					base = rec.RootTag + "-" + rec.ID[:8]
				}
			default:
				return apperr.New(apperr.ErrCodeInvalidInput, "give either a run id or --input")
			}

			// the snapshot must describe a valid tree
			if _, err := graph.FromSnapshot(snap); err != nil {
				return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid snapshot")
			}
			paths, err := writeOutputs(snap, base, fs, nodelink.Options{Detailed: detailed}, pngScale)
			if err != nil {
				return err
			}
			printSuccess("Exported %d nodes", len(snap.Nodes))
			for _, p := range paths {
				printFile(p)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "snapshot JSON file instead of an archived run")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path without extension")
	cmd.Flags().StringVarP(&formats, "format", "f", formatSVG, "output formats: json,dot,svg,pdf,png")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with their tags")
	cmd.Flags().Float64Var(&pngScale, "png-scale", 2, "PNG resolution multiplier")
	return cmd
}

func (c *CLI) withArchive(ctx context.Context, fn func(archive.Store) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	store, err := openArchive(ctx, cfg.Archive)
	if err != nil {
		return err
	}
	if store == nil {
		return apperr.New(apperr.ErrCodeInvalidConfig, "run archive is disabled (archive.backend = %q)", cfg.Archive.Backend)
	}
	defer store.Close()
	return fn(store)
}

func (c *CLI) loadRun(ctx context.Context, id string) (archive.Record, error) {
	if err := apperr.ValidateRunID(id); err != nil {
		return archive.Record{}, err
	}
	var rec archive.Record
	err := c.withArchive(ctx, func(store archive.Store) error {
		var err error
		rec, err = store.Load(ctx, id)
		return err
	})
	return rec, err
}
