/*
Package observability turns engine lifecycle hooks into Prometheus metrics
and structured log lines.

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	hooks := observability.Combine(metrics.Hooks(), observability.LogHooks(logger))
	eng := abacus.NewEngine(abacus.WithLifecycleHooks(hooks))
*/
package observability
