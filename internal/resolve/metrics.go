package resolve

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "warnctx",
	Name:      "resolutions_total",
	Help:      "Warning resolutions by outcome.",
}, []string{"outcome"})
