package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnFetchStart(ctx, "/me/top/artists")
	p.OnFetchComplete(ctx, "/me/top/artists", 30, time.Second, nil)
	p.OnLayoutStart(ctx, 60)
	p.OnLayoutComplete(ctx, 60, time.Millisecond, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, errors.New("rsvg missing"))

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "collection")
	c.OnCacheMiss(ctx, "http")
	c.OnCacheSet(ctx, "artifact", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "api.spotify.com", "/v1/me/top/tracks")
	h.OnResponse(ctx, "GET", "api.spotify.com", "/v1/me/top/tracks", 200, time.Second)
	h.OnError(ctx, "GET", "api.spotify.com", "/v1/me/top/tracks", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &recordingPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &recordingPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

func TestRegisteredHooksReceiveEvents(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	rec := &recordingPipelineHooks{}
	SetPipelineHooks(rec)

	ctx := context.Background()
	var wg sync.WaitGroup
	for _, ep := range []string{"/me/top/artists", "/me/top/tracks"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Pipeline().OnFetchStart(ctx, ep)
		}()
	}
	wg.Wait()

	if got := rec.count(); got != 2 {
		t.Errorf("recorded %d fetch starts, want 2", got)
	}
}

type recordingPipelineHooks struct {
	NoopPipelineHooks
	mu     sync.Mutex
	starts []string
}

func (r *recordingPipelineHooks) OnFetchStart(_ context.Context, endpoint string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts = append(r.starts, endpoint)
}

func (r *recordingPipelineHooks) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.starts)
}

type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

func TestUseLogger(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	UseLogger(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))

	ctx := context.Background()
	Pipeline().OnFetchComplete(ctx, "/me/top/artists", 30, time.Millisecond, nil)
	Cache().OnCacheHit(ctx, "collection")
	HTTP().OnResponse(ctx, "GET", "api.spotify.com", "/v1/me", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"fetched", "endpoint=/me/top/artists", "items=30", "cache hit", "type=collection", "status=200"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
