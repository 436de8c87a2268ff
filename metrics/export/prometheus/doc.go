// Package prometheus renders engine counters in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] wraps an [betterauth.Engine] and exposes an
// [http.Handler] suitable for mounting at /metrics. Counter names are
// prefixed betterauth_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate engine state.
package prometheus
