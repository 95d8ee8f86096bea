package metrics

import "github.com/prometheus/client_golang/prometheus"

// FeedbackMetrics counts the work the server does on month data.
type FeedbackMetrics struct {
	UploadsTotal    prometheus.Counter
	UploadRowsTotal prometheus.Counter
	UploadFailures  *prometheus.CounterVec
	DeletesTotal    prometheus.Counter
	ChartRenders    *prometheus.CounterVec
}

// NewFeedbackMetrics creates and registers feedback metrics on reg.
func NewFeedbackMetrics(reg prometheus.Registerer) *FeedbackMetrics {
	m := &FeedbackMetrics{
		UploadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Total number of uploads scored and stored.",
		}),
		UploadRowsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_rows_total",
			Help:      "Total number of feedback rows scored and stored.",
		}),
		UploadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_failures_total",
			Help:      "Total number of rejected uploads, by error type.",
		}, []string{"error_type"}),
		DeletesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deletes_total",
			Help:      "Total number of months deleted.",
		}),
		ChartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_renders_total",
			Help:      "Total number of charts rendered, by chart kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.UploadsTotal, m.UploadRowsTotal, m.UploadFailures, m.DeletesTotal, m.ChartRenders)
	return m
}

// ObserveUpload records a stored upload of rows records.
func (m *FeedbackMetrics) ObserveUpload(rows int) {
	m.UploadsTotal.Inc()
	m.UploadRowsTotal.Add(float64(rows))
}
