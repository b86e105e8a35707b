package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncPageEmit(ResultSuccess)
	pr.IncPageEmit(ResultSuccess)
	pr.IncPageEmit(ResultSkipped)
	pr.IncReconcile("pages", "unlink", ResultSuccess)
	pr.ObserveReconcileDuration("pages", 20*time.Millisecond)
	pr.IncStyleCompile(ResultFailed)
	pr.SetContents(2)
	pr.IncReload()

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.pageEmits.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.reconciles.WithLabelValues("pages", "unlink", "success")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(pr.contents), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.reloads), 0)
}

func TestHTTPHandler_ServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncReload()

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL) //nolint:noctx // test server
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "sitegen_reload_notifications_total 1")
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncReload()
	pr.SetContents(1)
	pr.ObserveBuildDuration(time.Second)
}
