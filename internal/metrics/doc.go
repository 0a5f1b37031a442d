// Package metrics provides build observability for docsite.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so call sites never need nil checks. The preview server swaps
// in a PrometheusRecorder and exposes it on /metrics through HTTPHandler.
package metrics
