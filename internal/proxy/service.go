package proxy

import (
	"context"
	"fmt"

	"github.com/firefly-engineering/sshproxy-ctl/internal/address"
	"github.com/firefly-engineering/sshproxy-ctl/internal/audit"
	"github.com/firefly-engineering/sshproxy-ctl/internal/errors"
	"github.com/firefly-engineering/sshproxy-ctl/internal/firewall"
	"github.com/firefly-engineering/sshproxy-ctl/internal/health"
	"github.com/firefly-engineering/sshproxy-ctl/internal/logging"
	"github.com/firefly-engineering/sshproxy-ctl/internal/port"
	"github.com/firefly-engineering/sshproxy-ctl/internal/rules"
	"github.com/firefly-engineering/sshproxy-ctl/internal/store"
)

// Options holds the allocation parameters for a Service.
type Options struct {
	// StartPort is the first port handed out by automatic allocation.
	StartPort int
	// MinPort is the lowest port accepted as an explicit assignment.
	MinPort int
	// Namespace scopes firewall directives; empty means the host namespace.
	Namespace string
}

// Service creates and removes SSH proxies.
type Service struct {
	table *store.Table
	exec  firewall.Executor
	audit *audit.Logger
	opts  Options
}

// New creates a Service. auditLog may be nil.
func New(table *store.Table, exec firewall.Executor, auditLog *audit.Logger, opts Options) *Service {
	if opts.StartPort == 0 {
		opts.StartPort = port.DefaultStartPort
	}
	if opts.MinPort == 0 {
		opts.MinPort = port.DefaultMinPort
	}
	return &Service{
		table: table,
		exec:  exec,
		audit: auditLog,
		opts:  opts,
	}
}

// Namespace returns the namespace directives are scoped to.
func (s *Service) Namespace() string {
	return s.opts.Namespace
}

// Create assigns a port to addrText and installs its firewall rules.
// With explicitPort set, the table must already hold that assignment.
func (s *Service) Create(ctx context.Context, addrText string, explicitPort int) (int, error) {
	addr, err := address.Parse(addrText)
	if err != nil {
		return 0, err
	}

	var assigned int
	if explicitPort != 0 {
		err = s.table.View(ctx, func(entries []port.Entry) error {
			p, err := port.Validate(entries, addr, explicitPort, s.opts.MinPort)
			assigned = p
			return err
		})
	} else {
		err = s.table.Update(ctx, func(entries []port.Entry) (store.Change, error) {
			alloc, err := port.Allocate(entries, addr, s.opts.StartPort)
			if err != nil {
				return store.Change{}, err
			}
			assigned = alloc.Port
			if alloc.Appended {
				return store.Change{Append: &port.Entry{Address: addr, Port: alloc.Port}}, nil
			}
			return store.Change{Entries: alloc.Entries}, nil
		})
	}
	if err != nil {
		return 0, err
	}

	logging.Info("port assigned", "address", addr.String(), "port", assigned, "explicit", explicitPort != 0)

	if err := s.apply(ctx, "create", addr, assigned, rules.Create); err != nil {
		return assigned, err
	}

	details := ""
	if explicitPort != 0 {
		details = "explicit"
	}
	s.record(audit.EventCreate, addr.String(), assigned, details)

	return assigned, nil
}

// Delete frees the port held by addrText and removes its firewall rules.
// With explicitPort set, only the rules for that port are removed and the
// table is left as is.
func (s *Service) Delete(ctx context.Context, addrText string, explicitPort int) (int, error) {
	addr, err := address.Parse(addrText)
	if err != nil {
		return 0, err
	}

	var freed int
	if explicitPort != 0 {
		if explicitPort < s.opts.MinPort {
			return 0, errors.InvalidPort(explicitPort, s.opts.MinPort)
		}
		logging.Warn("deleting rules for explicit port, table entry left in place",
			"address", addr.String(), "port", explicitPort)
		freed = explicitPort
	} else {
		err = s.table.Update(ctx, func(entries []port.Entry) (store.Change, error) {
			remaining, p, err := port.Deallocate(entries, addr)
			if err != nil {
				return store.Change{}, err
			}
			freed = p
			return store.Change{Entries: remaining}, nil
		})
		if err != nil {
			return 0, err
		}
		logging.Info("port released", "address", addr.String(), "port", freed)
	}

	if err := s.apply(ctx, "delete", addr, freed, rules.Delete); err != nil {
		return freed, err
	}

	details := ""
	if explicitPort != 0 {
		details = "explicit"
	}
	s.record(audit.EventDelete, addr.String(), freed, details)

	return freed, nil
}

// Clear removes the rules for every entry and then the table itself, under
// a single exclusive lock. It returns the number of entries cleared. The
// table is removed even when some directives fail.
func (s *Service) Clear(ctx context.Context) (int, error) {
	var cleared int

	err := s.table.Clear(ctx, func(entries []port.Entry) error {
		cleared = len(entries)

		directives := make([]rules.Directive, 0, 3*len(entries))
		for _, e := range entries {
			directives = append(directives, rules.Emit(e.Address, e.Port, rules.Delete, s.opts.Namespace)...)
		}
		if len(directives) == 0 {
			return nil
		}

		if err := s.exec.Apply(ctx, directives); err != nil {
			s.record(audit.EventError, "", 0, fmt.Sprintf("clear: %v", err))
			return errors.FirewallError("clear", err)
		}
		return nil
	})
	if err != nil && !errors.HasCode(err, errors.ExitFirewallError) {
		return 0, err
	}

	logging.Info("port table cleared", "entries", cleared)
	s.record(audit.EventClear, "", 0, fmt.Sprintf("entries=%d", cleared))

	return cleared, err
}

// List returns the current NAT rule listing from the firewall.
func (s *Service) List(ctx context.Context) (string, error) {
	out, err := s.exec.List(ctx, s.opts.Namespace)
	if err != nil {
		return out, errors.FirewallError("list", err)
	}
	return out, nil
}

// Lookup returns the table entry for addrText.
func (s *Service) Lookup(ctx context.Context, addrText string) (port.Entry, error) {
	addr, err := address.Parse(addrText)
	if err != nil {
		return port.Entry{}, err
	}

	var entry port.Entry
	err = s.table.View(ctx, func(entries []port.Entry) error {
		e, ok := port.Lookup(entries, addr)
		if !ok {
			return errors.NotFound(addr.String(), 0)
		}
		entry = e
		return nil
	})
	return entry, err
}

// Entries returns the allocation table in file order.
func (s *Service) Entries(ctx context.Context) ([]port.Entry, error) {
	var out []port.Entry
	err := s.table.View(ctx, func(entries []port.Entry) error {
		out = append(out, entries...)
		return nil
	})
	return out, err
}

// Check probes the firewall rules of every table entry.
func (s *Service) Check(ctx context.Context) ([]health.CheckResult, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return health.CheckAll(ctx, s.exec, entries, s.opts.Namespace), nil
}

// Repair inserts the rules a check found missing. Rules already present are
// left alone so nothing is duplicated.
func (s *Service) Repair(ctx context.Context, r health.CheckResult) error {
	if len(r.Missing) == 0 {
		return nil
	}

	directives := make([]rules.Directive, len(r.Missing))
	for i, d := range r.Missing {
		directives[i] = d.WithOp(rules.OpInsert)
	}

	addr := r.Entry.Address.String()
	if err := s.exec.Apply(ctx, directives); err != nil {
		s.record(audit.EventError, addr, r.Entry.Port, fmt.Sprintf("repair: %v", err))
		return errors.FirewallError("repair", err)
	}

	logging.Info("firewall rules repaired", "address", addr, "port", r.Entry.Port, "rules", len(directives))
	s.record(audit.EventRepair, addr, r.Entry.Port, fmt.Sprintf("rules=%d", len(directives)))
	return nil
}

func (s *Service) apply(ctx context.Context, op string, addr address.Address, p int, dir rules.Direction) error {
	directives := rules.Emit(addr, p, dir, s.opts.Namespace)
	if err := s.exec.Apply(ctx, directives); err != nil {
		s.record(audit.EventError, addr.String(), p, fmt.Sprintf("%s: %v", op, err))
		return errors.FirewallError(op, err)
	}
	return nil
}

// record writes an audit event. Failures are logged, not returned.
func (s *Service) record(t audit.EventType, addr string, p int, details string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Log(audit.Event{
		Type:      t,
		Address:   addr,
		Port:      p,
		Namespace: s.opts.Namespace,
		Details:   details,
	})
	if err != nil {
		logging.Warn("failed to write audit event", "type", string(t), "error", err)
	}
}
