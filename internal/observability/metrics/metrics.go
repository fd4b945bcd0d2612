// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "agent_assist"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Transcript channel metrics
	FramesTotal     *prometheus.CounterVec
	FramesMalformed prometheus.Counter
	BindsSent       prometheus.Counter

	// Annotation pipeline metrics
	AnalysisRequests *prometheus.CounterVec

	// Reply composer metrics
	RepliesTotal *prometheus.CounterVec
}

// Default is the global metrics instance.
var Default = New()

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		FramesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcript_frames_total",
			Help:      "Total transcript channel frames received, by kind",
		}, []string{"kind"}),
		FramesMalformed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcript_frames_malformed_total",
			Help:      "Total malformed transcript frames dropped",
		}),
		BindsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcript_binds_sent_total",
			Help:      "Total connection/contact bind messages sent",
		}),
		AnalysisRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_requests_total",
			Help:      "Total language-AI requests, by pipeline and result",
		}, []string{"pipeline", "result"}),
		RepliesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_total",
			Help:      "Total interactive reply submissions, by result",
		}, []string{"result"}),
	}
}

// RecordFrame records a received channel frame.
func (m *Metrics) RecordFrame(kind string) {
	m.FramesTotal.WithLabelValues(kind).Inc()
}

// RecordMalformedFrame records a dropped malformed frame.
func (m *Metrics) RecordMalformedFrame() {
	m.FramesTotal.WithLabelValues("malformed").Inc()
	m.FramesMalformed.Inc()
}

// RecordBindSent records the one-time bind message being sent.
func (m *Metrics) RecordBindSent() {
	m.BindsSent.Inc()
}

// RecordAnalysis records an annotation pipeline request outcome.
func (m *Metrics) RecordAnalysis(pipeline string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.AnalysisRequests.WithLabelValues(pipeline, result).Inc()
}

// RecordReply records a reply composer submission outcome.
func (m *Metrics) RecordReply(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.RepliesTotal.WithLabelValues(result).Inc()
}
