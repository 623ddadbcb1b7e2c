package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/matzehuels/tagtree/pkg/archive"
	apperr "github.com/matzehuels/tagtree/pkg/errors"
	"github.com/matzehuels/tagtree/pkg/expand"
	"github.com/matzehuels/tagtree/pkg/graph"
	"github.com/matzehuels/tagtree/pkg/grow"
	"github.com/matzehuels/tagtree/pkg/integrations"
	"github.com/matzehuels/tagtree/pkg/integrations/flickr"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Code
	}{
		{"unauthorized search", fmt.Errorf("%w: %w", expand.ErrSearch, integrations.ErrUnauthorized), apperr.ErrCodeUnauthorized},
		{"rate limited", fmt.Errorf("%w: %w", expand.ErrSearch, integrations.ErrRateLimited), apperr.ErrCodeRateLimited},
		{"network", fmt.Errorf("%w: %w", expand.ErrSearch, integrations.ErrNetwork), apperr.ErrCodeNetwork},
		{"search", fmt.Errorf("%w: boom", expand.ErrSearch), apperr.ErrCodeSearchFailed},
		{"dead end", fmt.Errorf("%w: root", expand.ErrDeadEnd), apperr.ErrCodeDeadEnd},
		{"saturated", graph.ErrSaturated, apperr.ErrCodeSaturated},
		{"busy", grow.ErrBusy, apperr.ErrCodeBusy},
		{"no key", flickr.ErrNoAPIKey, apperr.ErrCodeMissingAPIKey},
		{"missing run", archive.ErrNotFound, apperr.ErrCodeRunNotFound},
		{"other", errors.New("disk full"), apperr.ErrCodeInternal},
		{"coded", apperr.New(apperr.ErrCodeInvalidTag, "bad"), apperr.ErrCodeInvalidTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if code := apperr.GetCode(got); code != tt.want {
				t.Errorf("classify() code = %q, want %q", code, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Error("classify() lost the original error")
			}
		})
	}
}

func TestClassifyPassThrough(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) != nil")
	}
	err := fmt.Errorf("run: %w", context.Canceled)
	if got := classify(err); got != err {
		t.Errorf("classify(cancelled) = %v", got)
	}
}
