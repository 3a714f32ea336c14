package health

import (
	"context"

	"github.com/firefly-engineering/sshproxy-ctl/internal/firewall"
	"github.com/firefly-engineering/sshproxy-ctl/internal/logging"
	"github.com/firefly-engineering/sshproxy-ctl/internal/port"
	"github.com/firefly-engineering/sshproxy-ctl/internal/rules"
)

// Status represents whether a table entry's firewall rules are installed
type Status string

const (
	StatusHealthy Status = "healthy"
	StatusPartial Status = "partial"
	StatusMissing Status = "missing"
	StatusUnknown Status = "unknown"
)

// CheckResult contains the results of probing one entry
type CheckResult struct {
	Entry  port.Entry
	Status Status
	// Missing lists the absent rules in creation order.
	Missing []rules.Directive
	// Err is the first probe failure when Status is StatusUnknown.
	Err error
}

// Check probes the DNAT, FORWARD and MASQUERADE rules for e.
func Check(ctx context.Context, exec firewall.Executor, e port.Entry, namespace string) CheckResult {
	result := CheckResult{Entry: e}

	directives := rules.Emit(e.Address, e.Port, rules.Check, namespace)
	for _, d := range directives {
		ok, err := exec.Exists(ctx, d)
		if err != nil {
			logging.Debug("rule probe failed", "address", e.Address.String(), "chain", d.Chain, "error", err)
			result.Status = StatusUnknown
			result.Err = err
			return result
		}
		if !ok {
			result.Missing = append(result.Missing, d)
		}
	}

	switch len(result.Missing) {
	case 0:
		result.Status = StatusHealthy
	case len(directives):
		result.Status = StatusMissing
	default:
		result.Status = StatusPartial
	}

	return result
}

// CheckAll probes every entry in table order. It stops early if ctx is done.
func CheckAll(ctx context.Context, exec firewall.Executor, entries []port.Entry, namespace string) []CheckResult {
	results := make([]CheckResult, 0, len(entries))
	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		results = append(results, Check(ctx, exec, e, namespace))
	}
	return results
}

// Unhealthy returns the results whose status is not StatusHealthy.
func Unhealthy(results []CheckResult) []CheckResult {
	var out []CheckResult
	for _, r := range results {
		if r.Status != StatusHealthy {
			out = append(out, r)
		}
	}
	return out
}
