package drawing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

var (
	rendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "editor",
		Subsystem: "render",
		Name:      "renders_total",
		Help:      "PNG renders by result.",
	}, []string{"result"})

	redrawnArea = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "editor",
		Subsystem: "render",
		Name:      "redrawn_area_pixels",
		Help:      "Area of the dirty region repainted per render.",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
	})
)
