// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	faultCode = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "camera",
		Name:      "fault_code",
		Help:      "Current coordinator.FaultCode; 0 means no fault.",
	})
	commandsServed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camera",
		Name:      "commands_served_total",
		Help:      "Scalar (i32) get/set command dispatches, by catalog id and kind.",
	}, []string{"id", "kind"})
	streamClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "camera",
		Name:      "stream_clients",
		Help:      "Connected image-stream websocket clients.",
	})
)

func init() {
	prometheus.MustRegister(faultCode, commandsServed, streamClients)
}

// registerMetricsHandler wires /metrics (spec 6.1) onto mux.
func registerMetricsHandler(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
}
