package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// all three hook interfaces; register it with [UseLogger].
type LogHooks struct {
	Logger *log.Logger
}

// UseLogger registers [LogHooks] for pipeline, cache and HTTP events.
func UseLogger(l *log.Logger) {
	h := LogHooks{Logger: l}
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h LogHooks) OnFetchStart(_ context.Context, endpoint string) {
	h.Logger.Debug("fetch", "endpoint", endpoint)
}

func (h LogHooks) OnFetchComplete(_ context.Context, endpoint string, n int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("fetch failed", "endpoint", endpoint, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("fetched", "endpoint", endpoint, "items", n, "duration", d)
}

func (h LogHooks) OnLayoutStart(_ context.Context, n int) {
	h.Logger.Debug("layout", "items", n)
}

func (h LogHooks) OnLayoutComplete(_ context.Context, n int, d time.Duration, err error) {
	h.Logger.Debug("layout done", "placements", n, "duration", d, "err", err)
}

func (h LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render", "formats", formats)
}

func (h LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.Logger.Debug("render done", "formats", formats, "duration", d, "err", err)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Debug("request failed", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ PipelineHooks = LogHooks{}
	_ CacheHooks    = LogHooks{}
	_ HTTPHooks     = LogHooks{}
)
