package cli

import (
	"context"
	"errors"

	"github.com/matzehuels/tagtree/pkg/archive"
	apperr "github.com/matzehuels/tagtree/pkg/errors"
	"github.com/matzehuels/tagtree/pkg/expand"
	"github.com/matzehuels/tagtree/pkg/graph"
	"github.com/matzehuels/tagtree/pkg/grow"
	"github.com/matzehuels/tagtree/pkg/integrations"
	"github.com/matzehuels/tagtree/pkg/integrations/flickr"
)

// classify attaches an error code to library errors. Coded errors and
// cancellation pass through unchanged.
func classify(err error) error {
	var coded *apperr.Error
	switch {
	case err == nil, errors.As(err, &coded), errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, flickr.ErrNoAPIKey):
		return apperr.Wrap(apperr.ErrCodeMissingAPIKey, err, "photo search")
	case errors.Is(err, integrations.ErrUnauthorized):
		return apperr.Wrap(apperr.ErrCodeUnauthorized, err, "photo service rejected the API key")
	case errors.Is(err, integrations.ErrRateLimited):
		return apperr.Wrap(apperr.ErrCodeRateLimited, err, "photo service rate limit")
	case errors.Is(err, integrations.ErrNetwork):
		return apperr.Wrap(apperr.ErrCodeNetwork, err, "photo service unreachable")
	case errors.Is(err, expand.ErrSearch):
		return apperr.Wrap(apperr.ErrCodeSearchFailed, err, "search failed")
	case errors.Is(err, expand.ErrDeadEnd):
		return apperr.Wrap(apperr.ErrCodeDeadEnd, err, "no usable photo")
	case errors.Is(err, graph.ErrSaturated):
		return apperr.Wrap(apperr.ErrCodeSaturated, err, "tree is saturated")
	case errors.Is(err, grow.ErrBusy):
		return apperr.Wrap(apperr.ErrCodeBusy, err, "grow")
	case errors.Is(err, archive.ErrNotFound):
		return apperr.Wrap(apperr.ErrCodeRunNotFound, err, "archive")
	}
	return apperr.Wrap(apperr.ErrCodeInternal, err, "unexpected error")
}
