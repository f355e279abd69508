/*
Package observability turns engine lifecycle hooks into signals.

Metrics exposes Prometheus counters for transitions, undo/redo navigation and
rejected operations. LoggingHooks writes the same events to a slog logger, and
Chain fans a single hook slot out to several hook sets:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.Chain(metrics.Hooks(), observability.LoggingHooks(logger))
	m, err := rewind.New(cfg, rewind.WithLifecycleHooks(hooks))
*/
package observability
