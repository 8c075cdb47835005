// Package metrics provides build metrics for span.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	builder := build.NewBuilder(cfg, runner).WithRecorder(metrics.NoopRecorder{})
//
// PrometheusRecorder registers its collectors on a caller-provided registry.
// Since span is a one-shot command and not a server, the registry is not
// scraped; WriteTextfile dumps it in the text exposition format instead, for
// node_exporter's textfile collector or for inspection:
//
//	reg := prometheus.NewRegistry()
//	recorder := metrics.NewPrometheusRecorder(reg)
//	// ... build ...
//	err := metrics.WriteTextfile(reg, "span.prom")
package metrics
