package metrics

import "time"

// ResultLabel enumerates result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultSkipped ResultLabel = "skipped"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for builds and reconciliation.
// Implementations may forward to Prometheus or any other backend.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncPageEmit(result ResultLabel)
	IncReconcile(area, op string, result ResultLabel)
	ObserveReconcileDuration(area string, d time.Duration)
	IncStyleCompile(result ResultLabel)
	SetContents(n int)
	IncReload()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration)             {}
func (NoopRecorder) IncPageEmit(ResultLabel)                        {}
func (NoopRecorder) IncReconcile(string, string, ResultLabel)       {}
func (NoopRecorder) ObserveReconcileDuration(string, time.Duration) {}
func (NoopRecorder) IncStyleCompile(ResultLabel)                    {}
func (NoopRecorder) SetContents(int)                                {}
func (NoopRecorder) IncReload()                                     {}

// ResultOf maps an error to ResultSuccess or ResultFailed.
func ResultOf(err error) ResultLabel {
	if err != nil {
		return ResultFailed
	}
	return ResultSuccess
}
