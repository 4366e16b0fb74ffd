/*
Package observability turns runner lifecycle hooks into logs and Prometheus
metrics.

	m := observability.NewMetrics(prometheus.NewRegistry())
	hooks := observability.Chain(observability.LogHooks(logger), m.Hooks())
	r := runner.New(runner.WithLifecycleHooks(hooks))
*/
package observability
