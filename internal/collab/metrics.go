package collab

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opTypeLabel = "type"
	resultLabel = "result"

	resultOK    = "ok"
	resultError = "error"
	resultHit   = "hit"
	resultMiss  = "miss"
)

var (
	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "editor",
		Subsystem: "collab",
		Name:      "connected_clients",
		Help:      "The number of websocket clients currently connected.",
	})

	activeRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "editor",
		Subsystem: "collab",
		Name:      "active_rooms",
		Help:      "The number of drawings with at least one client.",
	})

	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "editor",
		Subsystem: "collab",
		Name:      "operations_total",
		Help:      "Submitted operations by type and result.",
	}, []string{opTypeLabel, resultLabel})

	hitTestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "editor",
		Subsystem: "collab",
		Name:      "hit_tests_total",
		Help:      "Hit tests answered, by whether a shape was found.",
	}, []string{resultLabel})

	indexRebuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "editor",
		Subsystem: "collab",
		Name:      "index_rebuilds_total",
		Help:      "Quadtree rebuilds triggered by hit tests.",
	})

	savesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "editor",
		Subsystem: "collab",
		Name:      "saves_total",
		Help:      "Drawing saves by result.",
	}, []string{resultLabel})
)
