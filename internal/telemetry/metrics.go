package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nebula"

var (
	// FetchTotal — ответы на fetch по типу исхода.
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_total",
		Help:      "Task fetch responses by outcome.",
	}, []string{"outcome"})

	// SubmitTotal — ответы на submit по типу исхода.
	SubmitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submit_total",
		Help:      "Result submit responses by outcome.",
	}, []string{"outcome"})

	// RateLimitedTotal — полученные 429 по операции (fetch, submit).
	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Rate-limited responses by operation.",
	}, []string{"op"})

	// ComputeErrorsTotal — неудачные вычисления.
	ComputeErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "compute_errors_total",
		Help:      "Tasks whose computation failed.",
	})

	// ComputeDuration — время вычисления задачи.
	ComputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "compute_duration_seconds",
		Help:      "Wall-clock time of one task computation.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	})

	// WorkersActive — количество работающих циклов.
	WorkersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "workers_active",
		Help:      "Worker loops currently running.",
	})

	// ExpiredTokensTotal — токены, записанные как просроченные.
	ExpiredTokensTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "expired_tokens_total",
		Help:      "Tokens recorded as expired.",
	})
)
