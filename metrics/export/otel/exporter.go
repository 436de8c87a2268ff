package otel

import (
	"context"
	"errors"
	"fmt"

	betterauth "github.com/AlexeyZoz/better-auth"
	"github.com/AlexeyZoz/better-auth/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() betterauth.MetricsSnapshot
	AuditDropped() uint64
}

type observedCounter struct {
	id         betterauth.MetricID
	instrument metric.Int64ObservableCounter
}

// OTelExporter publishes engine counters through a caller-supplied Meter.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration
	counters     []observedCounter
	auditDropped metric.Int64ObservableCounter
}

// NewOTelExporter registers instruments for the given engine's counters.
func NewOTelExporter(meter metric.Meter, engine *betterauth.Engine) (*OTelExporter, error) {
	return NewOTelExporterFromSource(meter, engine)
}

// NewOTelExporterFromSource registers instruments over any snapshot source.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &OTelExporter{
		source:   source,
		counters: make([]observedCounter, 0, len(internaldefs.CounterDefs)),
	}

	observables := make([]metric.Observable, 0, len(internaldefs.CounterDefs)+1)

	for _, def := range internaldefs.CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		exporter.counters = append(exporter.counters, observedCounter{id: def.ID, instrument: ins})
		observables = append(observables, ins)
	}

	auditDropped, err := meter.Int64ObservableCounter(
		internaldefs.AuditDroppedName,
		metric.WithDescription(internaldefs.AuditDroppedHelp),
	)
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	exporter.auditDropped = auditDropped
	observables = append(observables, auditDropped)

	registration, err := meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		snapshot := exporter.source.MetricsSnapshot()
		for _, c := range exporter.counters {
			observer.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
		}
		observer.ObserveInt64(exporter.auditDropped, int64(exporter.source.AuditDropped()))
		return nil
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	exporter.registration = registration
	return exporter, nil
}

// Close unregisters the collection callback. Safe on a nil exporter.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
