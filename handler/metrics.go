package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultCreated      = "created"
	resultInvalid      = "invalid"
	resultOK           = "ok"
	resultUnauthorized = "unauthorized"
	resultError        = "error"
)

type metrics struct {
	registry *prometheus.Registry

	// Labels: result (created, invalid, error)
	submissions *prometheus.CounterVec
	// Labels: result (ok, unauthorized, error)
	adminList *prometheus.CounterVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &metrics{
		registry: reg,
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "device_query",
			Name:      "submissions_total",
			Help:      "Total query submissions by result",
		}, []string{"result"}),
		adminList: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "device_query",
			Name:      "admin_list_total",
			Help:      "Total admin list requests by result",
		}, []string{"result"}),
	}
}
