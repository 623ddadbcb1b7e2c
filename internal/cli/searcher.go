package cli

import (
	"context"

	"github.com/matzehuels/tagtree/pkg/expand"
	"github.com/matzehuels/tagtree/pkg/integrations/flickr"
)

// photoSearcher adapts the Flickr client to expand.Searcher.
type photoSearcher struct {
	client  *flickr.Client
	refresh bool
}

func (s photoSearcher) Search(ctx context.Context, tag string) ([]expand.Candidate, error) {
	photos, err := s.client.Search(ctx, tag, s.refresh)
	if err != nil {
		return nil, err
	}
	return candidates(photos), nil
}

func candidates(photos []flickr.Photo) []expand.Candidate {
	out := make([]expand.Candidate, len(photos))
	for i, p := range photos {
		out[i] = expand.Candidate{FullURL: p.FullURL, ThumbURL: p.ThumbURL, Tags: p.Tags}
	}
	return out
}
