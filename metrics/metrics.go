// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bitmark-inc/kittywatch/fault"
)

const namespace = "kittywatch"

var (
	// Count - latest observed kitty count
	Count = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "count",
		Help:      "Latest observed number of kitties",
	})

	// Batches - completed lookups by kind and result
	Batches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_total",
		Help:      "Batched lookups by kind and result",
	}, []string{"kind", "result"})

	// BatchDuration - lookup latency by kind
	BatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_duration_seconds",
		Help:      "Batched lookup duration in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"kind"})

	// Discarded - completion entries dropped for being out of range
	Discarded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "discarded_total",
		Help:      "Lookup results discarded as outside the current range",
	})

	// Publishes - views published
	Publishes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "publishes_total",
		Help:      "Aggregated views published",
	})

	// Errors - reported failures by class
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "errors_total",
		Help:      "Failures reported to the status slot",
	}, []string{"class"})
)

// Handler - http handler exposing the registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// Failed - count an error by its fault class
func Failed(err error) {
	Errors.WithLabelValues(Class(err)).Inc()
}

// Class - label for an error
func Class(err error) string {
	switch {
	case fault.IsErrConnection(err):
		return "connection"
	case fault.IsErrDecode(err):
		return "decode"
	case fault.IsErrTransport(err):
		return "transport"
	case fault.IsErrProcess(err):
		return "process"
	default:
		return "other"
	}
}
