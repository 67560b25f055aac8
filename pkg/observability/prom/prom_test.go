package prom

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/wzrd/pkg/observability"
)

func TestHooksRecordMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.Register()
	defer observability.Reset()

	ctx := context.Background()
	p := observability.Pipeline()
	p.OnImportComplete(ctx, 5, time.Millisecond, nil)
	p.OnLayoutComplete(ctx, 5, time.Millisecond, errors.New("boom"))
	p.OnGenerateComplete(ctx, 0, true, time.Millisecond)

	c := observability.Cache()
	c.OnCacheHit(ctx, "import")
	c.OnCacheMiss(ctx, "import")
	c.OnCacheSet(ctx, "import", 64)

	observability.HTTP().OnResponse(ctx, "POST", "/api/v1/import", 200, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageErrors.WithLabelValues("layout")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.stageErrors.WithLabelValues("import")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheOps.WithLabelValues("import", "hit")))
	assert.Equal(t, 64.0, testutil.ToFloat64(m.cacheBytes.WithLabelValues("import")))

	want := `
# HELP wzrd_http_requests_total HTTP responses by route and status.
# TYPE wzrd_http_requests_total counter
wzrd_http_requests_total{method="POST",route="/api/v1/import",status="200"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(want), "wzrd_http_requests_total"))
}

func TestNewRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) }, "duplicate registration should panic")
}
