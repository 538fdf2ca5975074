// Package metrics records what a doctool run did: stage timings and results, external
// process outcomes, and how many symbols the cleaner converted or left alone.
//
// Components receive a Recorder and default to NoopRecorder, so metrics are optional
// everywhere. When metrics.textfile is configured the CLI swaps in a PrometheusRecorder
// and writes its registry in the node-exporter textfile format once the run finishes:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	defer rec.WriteTextfile(cfg.Metrics.Textfile)
package metrics
