package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/tagtree/pkg/errors"
	"github.com/matzehuels/tagtree/pkg/expand"
)

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		limit   int
		noCache bool
		refresh bool
	)
	cmd := &cobra.Command{
		Use:   "search <tag>",
		Short: "Show the photos a tag search returns and which one would be chosen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return classify(c.runSearch(cmd.Context(), args[0], limit, noCache, refresh))
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "show at most this many photos")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the search cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore the cached result and fetch again")
	return cmd
}

func (c *CLI) runSearch(ctx context.Context, tag string, limit int, noCache, refresh bool) error {
	if err := apperr.ValidateTag(tag); err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	b, err := c.openBackends(ctx, cfg, backendOpts{noCache: noCache})
	if err != nil {
		return err
	}
	defer b.Close()
	fc, err := newFlickr(cfg, b.cache)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	spin := newSpinnerWithContext(ctx, c.errOut, fmt.Sprintf("Searching '%s'...", tag))
	spin.Start()
	photos, err := fc.Search(ctx, tag, refresh)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Found %d photos for '%s'", len(photos), tag))

	cands := candidates(photos)
	best, err := expand.Best(ctx, cands, b.seen)
	if err != nil {
		return err
	}
	if len(cands) == 0 {
		printWarning("No photos tagged '%s'", tag)
		return nil
	}
	if limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}
	fmt.Println(candidateTable(cands, best))
	if best >= 0 {
		printDetail("%s marks the photo that would be chosen", iconArrow)
	}
	return nil
}

// candidateTable lists candidates with their tag counts, marking best.
func candidateTable(cands []expand.Candidate, best int) string {
	rows := make([][]string, len(cands))
	for i, cand := range cands {
		mark := ""
		if i == best {
			mark = iconArrow
		}
		rows[i] = []string{mark, strconv.Itoa(i + 1), strconv.Itoa(cand.Photo().TagCount()), truncate(cand.Tags, 48), cand.ThumbURL}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Tags", "Tag list", "Thumbnail").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case row == best:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case col == 4:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
