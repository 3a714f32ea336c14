package port

import (
	"github.com/firefly-engineering/sshproxy-ctl/internal/address"
	"github.com/firefly-engineering/sshproxy-ctl/internal/errors"
)

// Port thresholds used when the host config does not override them.
const (
	DefaultStartPort = 3100
	DefaultMinPort   = 1024
)

// Entry is one address to port assignment.
type Entry struct {
	Address address.Address
	Port    int
}

// Allocation is the outcome of Allocate.
type Allocation struct {
	// Entries is the full table including the new entry.
	Entries []Entry
	// Port is the port assigned to the new entry.
	Port int
	// Appended is true when the new entry went to the tail of the table.
	Appended bool
}

// Lookup returns the entry for addr.
func Lookup(entries []Entry, addr address.Address) (Entry, bool) {
	for _, e := range entries {
		if e.Address == addr {
			return e, true
		}
	}
	return Entry{}, false
}

// Allocate assigns the lowest port >= start that no entry holds to addr.
// The new entry goes before the first entry with a higher port, which for
// an ascending table is the first gap. Tables that are out of order still
// never receive a port twice.
func Allocate(entries []Entry, addr address.Address, start int) (Allocation, error) {
	if existing, ok := Lookup(entries, addr); ok {
		return Allocation{}, errors.DuplicateAddress(addr.String(), existing.Port)
	}

	used := make(map[int]bool, len(entries))
	for _, e := range entries {
		used[e.Port] = true
	}

	candidate := start
	for used[candidate] {
		candidate++
	}

	pos := len(entries)
	for i, e := range entries {
		if e.Port > candidate {
			pos = i
			break
		}
	}

	out := make([]Entry, 0, len(entries)+1)
	out = append(out, entries[:pos]...)
	out = append(out, Entry{Address: addr, Port: candidate})
	out = append(out, entries[pos:]...)

	return Allocation{Entries: out, Port: candidate, Appended: pos == len(entries)}, nil
}

// Validate checks an out-of-band assignment: port must be at least min and
// the table must already hold exactly (addr, port). Nothing is inserted.
func Validate(entries []Entry, addr address.Address, port, min int) (int, error) {
	if port < min {
		return 0, errors.InvalidPort(port, min)
	}

	for _, e := range entries {
		if e.Address == addr && e.Port == port {
			return port, nil
		}
	}

	return 0, errors.NotFound(addr.String(), port)
}

// Deallocate removes the first entry for addr and returns the remaining
// entries in their original order along with the freed port.
func Deallocate(entries []Entry, addr address.Address) ([]Entry, int, error) {
	out := make([]Entry, 0, len(entries))
	freed := 0
	found := false

	for _, e := range entries {
		if !found && e.Address == addr {
			freed = e.Port
			found = true
			continue
		}
		out = append(out, e)
	}

	if !found {
		return nil, 0, errors.NotFound(addr.String(), 0)
	}

	return out, freed, nil
}
