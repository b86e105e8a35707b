package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitegen"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	buildDuration     prom.Histogram
	pageEmits         *prom.CounterVec
	reconciles        *prom.CounterVec
	reconcileDuration *prom.HistogramVec
	styleCompiles     *prom.CounterVec
	contents          prom.Gauge
	reloads           prom.Counter
}

// NewPrometheusRecorder constructs the metrics and registers them on reg. A nil
// reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of full site builds",
			Buckets:   prom.DefBuckets,
		}),
		pageEmits: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "page_emits_total",
			Help:      "Pages rendered by result (success, skipped when unchanged, failed)",
		}, []string{"result"}),
		reconciles: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_events_total",
			Help:      "Watch events reconciled by area, operation and result",
		}, []string{"area", "op", "result"}),
		reconcileDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of watch event reconciliation",
			Buckets:   prom.DefBuckets,
		}, []string{"area"}),
		styleCompiles: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "style_compiles_total",
			Help:      "Style entry point compilations by result",
		}, []string{"result"}),
		contents: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "contents",
			Help:      "Pages currently tracked by the content store",
		}),
		reloads: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reload_notifications_total",
			Help:      "Live reload notifications sent",
		}),
	}
	reg.MustRegister(pr.buildDuration, pr.pageEmits, pr.reconciles, pr.reconcileDuration, pr.styleCompiles, pr.contents, pr.reloads)
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageEmit(result ResultLabel) {
	if p == nil {
		return
	}
	p.pageEmits.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncReconcile(area, op string, result ResultLabel) {
	if p == nil {
		return
	}
	p.reconciles.WithLabelValues(area, op, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveReconcileDuration(area string, d time.Duration) {
	if p == nil {
		return
	}
	p.reconcileDuration.WithLabelValues(area).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStyleCompile(result ResultLabel) {
	if p == nil {
		return
	}
	p.styleCompiles.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetContents(n int) {
	if p == nil {
		return
	}
	p.contents.Set(float64(n))
}

func (p *PrometheusRecorder) IncReload() {
	if p == nil {
		return
	}
	p.reloads.Inc()
}
