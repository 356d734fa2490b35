package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dircd_registered_sessions",
		Help: "Number of currently registered IRC sessions.",
	})

	inboundRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dircd_inbound_messages_total",
		Help: "Messages relayed from the remote platform to IRC sessions.",
	})

	outboundRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dircd_outbound_messages_total",
		Help: "Messages relayed from IRC sessions to the remote platform.",
	})

	deliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dircd_delivery_failures_total",
		Help: "Outbound deliveries rejected or failed by the remote platform.",
	})

	droppedLines = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dircd_dropped_lines_total",
		Help: "Inbound IRC lines dropped by per-client flood control.",
	})
)
