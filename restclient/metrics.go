// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var requestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "gl2api",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "HTTP requests made to the Graylog API",
	},
	[]string{
		"method",
		"code",
	},
)

var requestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "gl2api",
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Time spent waiting for Graylog API responses",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{
		"method",
	},
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(requestDuration)
}

// observe records one HTTP exchange.  A code of zero means the request
// never got a response.
func observe(method string, code int, elapsed time.Duration) {
	label := "error"
	if code != 0 {
		label = strconv.Itoa(code)
	}
	requestsTotal.With(prometheus.Labels{
		"method": method,
		"code":   label,
	}).Inc()
	requestDuration.With(prometheus.Labels{
		"method": method,
	}).Observe(elapsed.Seconds())
}
