package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnBuildStart(ctx, "row-1", 10, 2)
	p.OnBuildComplete(ctx, "row-1", 4, 1, time.Millisecond, nil)
	p.OnReportStart(ctx, 2)
	p.OnReportComplete(ctx, 2, time.Millisecond, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "rows")
	c.OnCacheMiss(ctx, "rows")
	c.OnCacheSet(ctx, "report", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/api/tasks")
	h.OnResponse(ctx, "GET", "/api/tasks", 200, time.Millisecond)
	h.OnError(ctx, "GET", "/api/tasks", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customPipeline := &testPipelineHooks{}
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

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)

	// Setting nil should be ignored
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	h := NewPrometheusHooks(reg)

	h.OnBuildComplete(ctx, "row-1", 4, 2, time.Millisecond, nil)
	h.OnBuildComplete(ctx, "row-2", 0, 0, time.Millisecond, errors.New("boom"))
	if got := testutil.ToFloat64(h.BuildsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("builds ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.BuildsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("builds error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.OrphanedTasks); got != 2 {
		t.Errorf("orphans = %v, want 2", got)
	}

	h.OnCacheHit(ctx, "rows")
	h.OnCacheSet(ctx, "rows", 100)
	if got := testutil.ToFloat64(h.CacheOps.WithLabelValues("rows", "hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.CacheBytes.WithLabelValues("rows")); got != 100 {
		t.Errorf("cache bytes = %v, want 100", got)
	}

	h.OnRequest(ctx, "GET", "/api/tasks")
	if got := testutil.ToFloat64(h.RequestsInFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	h.OnResponse(ctx, "GET", "/api/tasks", 200, time.Millisecond)
	if got := testutil.ToFloat64(h.RequestsInFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(h.RequestsTotal.WithLabelValues("GET", "/api/tasks", "200")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}

	if n, err := testutil.GatherAndCount(reg); err != nil || n == 0 {
		t.Errorf("GatherAndCount = %d, %v", n, err)
	}
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
