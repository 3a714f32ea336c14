// Package monitor periodically checks that table entries are backed by
// firewall rules and optionally repairs them.
package monitor

import (
	"context"
	"time"

	"github.com/firefly-engineering/sshproxy-ctl/internal/audit"
	"github.com/firefly-engineering/sshproxy-ctl/internal/health"
	"github.com/firefly-engineering/sshproxy-ctl/internal/logging"
)

// Checker probes and repairs proxies. proxy.Service implements it.
type Checker interface {
	Check(ctx context.Context) ([]health.CheckResult, error)
	Repair(ctx context.Context, r health.CheckResult) error
}

// Monitor periodically checks the firewall rules of all table entries.
type Monitor struct {
	interval   time.Duration
	checker    Checker
	autoRepair bool
	auditLog   *audit.Logger
	onResults  func([]health.CheckResult)
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithAutoRepair enables re-inserting missing rules.
func WithAutoRepair(enabled bool) Option {
	return func(m *Monitor) {
		m.autoRepair = enabled
	}
}

// WithAuditLogger sets the audit logger for recording health events.
func WithAuditLogger(logger *audit.Logger) Option {
	return func(m *Monitor) {
		m.auditLog = logger
	}
}

// WithResultHandler registers fn to receive the results of every pass.
func WithResultHandler(fn func([]health.CheckResult)) Option {
	return func(m *Monitor) {
		m.onResults = fn
	}
}

// New creates a new Monitor.
func New(interval time.Duration, checker Checker, opts ...Option) *Monitor {
	m := &Monitor{
		interval: interval,
		checker:  checker,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run starts the monitoring loop. It blocks until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	logging.Debug("starting proxy monitor", "interval", m.interval, "autoRepair", m.autoRepair)

	// Run an immediate check, then loop on interval.
	m.checkAll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Debug("proxy monitor stopping")
			return ctx.Err()
		case <-ticker.C:
			m.checkAll(ctx)
		}
	}
}

// checkAll runs one pass over the table. Healthy entries are not audited.
func (m *Monitor) checkAll(ctx context.Context) []health.CheckResult {
	results, err := m.checker.Check(ctx)
	if err != nil {
		logging.Warn("monitor failed to check proxies", "error", err)
		return nil
	}

	for _, r := range results {
		if ctx.Err() != nil {
			break
		}
		if r.Status == health.StatusHealthy {
			continue
		}

		addr := r.Entry.Address.String()
		logging.Warn("proxy rules out of place", "address", addr, "port", r.Entry.Port, "status", string(r.Status))
		if m.auditLog != nil {
			_ = m.auditLog.LogEvent(audit.EventHealth, addr, r.Entry.Port, string(r.Status))
		}

		// Unknown means the probe itself failed; repairing blind could duplicate rules.
		if m.autoRepair && (r.Status == health.StatusPartial || r.Status == health.StatusMissing) {
			logging.UserInfo("Repairing proxy %s on port %d (status: %s)", addr, r.Entry.Port, r.Status)
			if err := m.checker.Repair(ctx, r); err != nil {
				logging.Warn("auto-repair failed", "address", addr, "error", err)
			}
		}
	}

	if m.onResults != nil {
		m.onResults(results)
	}

	return results
}
