package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	betterauth "github.com/AlexeyZoz/better-auth"
	"github.com/AlexeyZoz/better-auth/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() betterauth.MetricsSnapshot
	AuditDropped() uint64
}

// PrometheusExporter renders engine counters in text exposition format.
type PrometheusExporter struct {
	source metricsSource
}

// NewPrometheusExporter creates an exporter that reads from the given engine.
func NewPrometheusExporter(engine *betterauth.Engine) *PrometheusExporter {
	return &PrometheusExporter{source: engine}
}

// NewPrometheusExporterFromSource creates an exporter from any snapshot source.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler returns an http.Handler that serves the current counters.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render writes every counter in Prometheus text exposition format.
// Output is empty when metrics are disabled and nothing was dropped.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	if len(snapshot.Counters) == 0 && dropped == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(4096)

	for _, def := range internaldefs.CounterDefs {
		writeCounter(&b, def.Name, def.Help, snapshot.Counters[def.ID])
	}

	writeCounter(&b, internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, dropped)

	return b.String()
}

func writeCounter(b *strings.Builder, name, help string, value uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" counter\n")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}
