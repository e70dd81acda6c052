package metrics_fx

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"

	"fiesta/internal/services"
)

var Module = fx.Provide(
	provideRegistry, provideMetrics,
)

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}

func provideMetrics(reg *prometheus.Registry) *services.Metrics {
	return services.NewMetrics(reg)
}
