package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onefilellm_requests_total",
		Help: "Processed input submissions by classified kind.",
	}, []string{"kind"})

	securityRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onefilellm_security_rejections_total",
		Help: "Submissions rejected by the address safety check.",
	})

	backendFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onefilellm_backend_failures_total",
		Help: "Backend retrieval failures by backend.",
	}, []string{"backend"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "onefilellm_request_duration_seconds",
		Help:    "End-to-end processing duration per submission.",
		Buckets: prometheus.DefBuckets,
	})
)
