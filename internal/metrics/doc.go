// Package metrics provides observability hooks for site builds and watch-mode
// reconciliation.
//
// Components hold a Recorder and default to NoopRecorder, so no call site needs
// a nil check. The dev server swaps in a PrometheusRecorder on a private
// registry when metrics are enabled and exposes it through HTTPHandler.
package metrics
