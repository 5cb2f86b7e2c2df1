package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AdVideosEnqueuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ads_videos_enqueued_total",
		Help: "Total number of ad video jobs enqueued, by outcome",
	}, []string{"outcome"})

	ScenesPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ads_scenes_published_total",
		Help: "Total number of scenes published, by queue",
	}, []string{"queue"})

	ScenesSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ads_scenes_skipped_total",
		Help: "Total number of scenes with unroutable types skipped from publishing",
	})

	MessagesConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ads_messages_consumed_total",
		Help: "Total number of queue messages consumed, by scene type",
	}, []string{"scene_type"})

	DispatchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ads_dispatch_failures_total",
		Help: "Total number of scene handler failures, by scene type",
	}, []string{"scene_type"})

	ListenerErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ads_listener_errors_total",
		Help: "Total number of transient receive/delete errors in queue loops",
	})

	ActiveListeners = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ads_active_listeners",
		Help: "Number of currently running queue loops",
	})

	EnqueueDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ads_enqueue_duration_seconds",
		Help:    "Duration of the plan+persist+publish enqueue path",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})
)
