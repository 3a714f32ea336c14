package store

import (
	"context"
	"fmt"

	"github.com/firefly-engineering/sshproxy-ctl/internal/logging"
	"github.com/firefly-engineering/sshproxy-ctl/internal/port"
)

// Strategy controls how Update combines its read and write phases.
type Strategy string

const (
	// LockHeld holds a single exclusive lock across read, decide and write.
	LockHeld Strategy = "held"
	// LockSplit reads under a shared lock and writes under a separate
	// exclusive lock. Concurrent writers in the gap are lost.
	LockSplit Strategy = "split"
)

// ParseStrategy validates a lock mode name. Empty selects LockHeld.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", LockHeld:
		return LockHeld, nil
	case LockSplit:
		return LockSplit, nil
	default:
		return "", fmt.Errorf("invalid lock mode %q (use held or split)", s)
	}
}

// Change describes what an Update should commit.
type Change struct {
	// Entries replaces the table when Append is nil.
	Entries []port.Entry
	// Append, when set, is written as a single tail line instead of a rewrite.
	Append *port.Entry
	// None skips the write phase entirely.
	None bool
}

// NoChange is returned by read-only Update callbacks.
var NoChange = Change{None: true}

// Table runs locked transactions against a Store.
type Table struct {
	store    Store
	strategy Strategy
}

// NewTable creates a Table over s.
func NewTable(s Store, strategy Strategy) *Table {
	if strategy == "" {
		strategy = LockHeld
	}
	return &Table{store: s, strategy: strategy}
}

// Strategy returns the configured lock strategy.
func (t *Table) Strategy() Strategy {
	return t.strategy
}

// View loads the table under a shared lock.
func (t *Table) View(ctx context.Context, fn func([]port.Entry) error) error {
	unlock, err := t.store.Lock(ctx, Shared)
	if err != nil {
		return err
	}
	defer unlock()

	entries, err := t.store.Load(ctx)
	if err != nil {
		return err
	}

	return fn(entries)
}

// Update loads the table, lets fn decide on a change, and commits it.
// If fn returns an error nothing is written.
func (t *Table) Update(ctx context.Context, fn func([]port.Entry) (Change, error)) error {
	if t.strategy == LockSplit {
		return t.updateSplit(ctx, fn)
	}

	unlock, err := t.store.Lock(ctx, Exclusive)
	if err != nil {
		return err
	}
	defer unlock()

	entries, err := t.store.Load(ctx)
	if err != nil {
		return err
	}

	change, err := fn(entries)
	if err != nil {
		return err
	}

	return t.commit(ctx, change)
}

func (t *Table) updateSplit(ctx context.Context, fn func([]port.Entry) (Change, error)) error {
	var change Change

	err := t.View(ctx, func(entries []port.Entry) error {
		var ferr error
		change, ferr = fn(entries)
		return ferr
	})
	if err != nil {
		return err
	}

	if change.None {
		return nil
	}

	logging.Debug("read lock released before write", "strategy", t.strategy)

	unlock, err := t.store.Lock(ctx, Exclusive)
	if err != nil {
		return err
	}
	defer unlock()

	return t.commit(ctx, change)
}

func (t *Table) commit(ctx context.Context, change Change) error {
	switch {
	case change.None:
		return nil
	case change.Append != nil:
		logging.Debug("appending table entry", "address", change.Append.Address.String(), "port", change.Append.Port)
		return t.store.Append(ctx, *change.Append)
	default:
		logging.Debug("rewriting table", "entries", len(change.Entries))
		return t.store.Rewrite(ctx, change.Entries)
	}
}

// Clear runs fn over every entry and destroys the table, all under one
// exclusive lock. The table is destroyed even if fn fails; fn's error is
// returned afterwards.
func (t *Table) Clear(ctx context.Context, fn func([]port.Entry) error) error {
	unlock, err := t.store.Lock(ctx, Exclusive)
	if err != nil {
		return err
	}
	defer unlock()

	entries, err := t.store.Load(ctx)
	if err != nil {
		return err
	}

	ferr := fn(entries)

	if err := t.store.Destroy(ctx); err != nil {
		return err
	}

	return ferr
}
