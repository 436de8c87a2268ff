package betterauth

import (
	"context"
	"time"

	internalaudit "github.com/AlexeyZoz/better-auth/internal/audit"
	internalmetrics "github.com/AlexeyZoz/better-auth/internal/metrics"
)

// Engine is the phone-number authentication core. It owns no transport and
// no storage: every collaborator is injected through [Builder].
//
// Engine is safe for concurrent use. Its configuration is immutable after
// Build; all per-request state lives on the stack.
type Engine struct {
	config Config

	users         UserStore
	accounts      AccountStore
	verifications VerificationStore
	passwordHash  PasswordHasher
	sessions      SessionService

	audit   *internalaudit.Dispatcher
	metrics *internalmetrics.Metrics

	now func() time.Time
}

// Close flushes and stops the audit dispatcher. The engine must not be used
// after Close.
func (e *Engine) Close() {
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}

// emitAudit dispatches an audit event asynchronously. metaFn is only invoked
// when auditing is enabled, so callers may defer map construction to it.
func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, userID string, failure error, metaFn func() map[string]string) {
	if e.audit == nil {
		return
	}
	ev := internalaudit.Event{
		Type:      eventType,
		Time:      e.now(),
		Success:   success,
		UserID:    userID,
		ClientIP:  clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
	}
	if failure != nil {
		ev.Error = failure.Error()
	}
	if metaFn != nil {
		ev.Metadata = metaFn()
	}
	e.audit.Dispatch(ev)
}

func (e *Engine) sessionOptions(ctx context.Context, remember bool) SessionOptions {
	return SessionOptions{
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Remember:  remember,
	}
}
