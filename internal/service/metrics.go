package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus 指标，/metrics 端点暴露
var (
	parkTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parkmate_park_total",
		Help: "Total number of successful park operations.",
	})

	parkRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parkmate_park_rejected_total",
		Help: "Total number of park operations rejected because the lot was full.",
	})

	unparkTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parkmate_unpark_total",
		Help: "Total number of unpark operations.",
	})

	occupiedSpots = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "parkmate_occupied_spots",
		Help: "Number of currently occupied spots.",
	})
)
