package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tagtree/pkg/observability"
	"github.com/matzehuels/tagtree/pkg/render"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Found 20 photos (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// =============================================================================
// Status lines
// =============================================================================

// statusLog is a renderer that turns orchestrator status lines into log
// lines. It ignores drawing calls.
type statusLog struct {
	render.Nop
	logger *log.Logger
}

func (s statusLog) SetStatus(status string) {
	if status != "" {
		s.logger.Info(status)
	}
}

// =============================================================================
// Observability hooks
// =============================================================================

// logHooks logs grow, cache and HTTP events at debug level.
type logHooks struct {
	logger *log.Logger
}

func registerHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetGrowHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnExpandStart(_ context.Context, tag string, parent int) {
	h.logger.Debug("expand", "tag", tag, "parent", parent)
}

func (h logHooks) OnExpandComplete(_ context.Context, tag string, node, deadEnds int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("expand failed", "tag", tag, "dead_ends", deadEnds, "duration", d, "error", err)
		return
	}
	h.logger.Debug("expanded", "tag", tag, "node", node, "dead_ends", deadEnds, "duration", d)
}

func (h logHooks) OnSimulateStart(_ context.Context, nodes int) {
	h.logger.Debug("simulate", "nodes", nodes)
}

func (h logHooks) OnSimulateComplete(_ context.Context, ticks int, energy float64, d time.Duration, err error) {
	h.logger.Debug("settled", "ticks", ticks, "energy", energy, "duration", d, "error", err)
}

func (h logHooks) OnCacheHit(_ context.Context, ns string)  { h.logger.Debug("cache hit", "ns", ns) }
func (h logHooks) OnCacheMiss(_ context.Context, ns string) { h.logger.Debug("cache miss", "ns", ns) }
func (h logHooks) OnCacheSet(_ context.Context, ns string, size int) {
	h.logger.Debug("cache set", "ns", ns, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http done", "method", method, "host", host, "status", status, "duration", d)
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "error", err)
}
