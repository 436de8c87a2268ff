// Package internaldefs holds the metric name definitions shared by the
// exporter implementations.
//
// Both the Prometheus and OTel exporters read from this table so a counter
// keeps the same name regardless of which exporter renders it.
package internaldefs
