package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeedPollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dvr_feed_polls_total",
		Help: "Total number of DVR event feed polls",
	}, []string{"result", "reason"})

	EventsIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dvr_events_ingested_total",
		Help: "Total number of events stored after normalization",
	})

	EventsDuplicateTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dvr_events_duplicate_total",
		Help: "Total number of events suppressed by the dedup window",
	})

	EventsMalformedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dvr_events_malformed_total",
		Help: "Total number of feed records skipped as unparseable",
	})

	PollInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dvr_feed_polls_inflight",
		Help: "Current number of servers being polled",
	})

	StreamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dvr_stream_clients",
		Help: "Current number of WebSocket event stream clients",
	})

	PublishFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dvr_publish_failures_total",
		Help: "Total number of NATS publish failures after retries",
	})
)
