// Package port holds the SSH proxy port allocation table.
//
// The table is an ordered list of (address, port) entries. Every address and
// every port appears at most once. This package is pure: it never touches
// the filesystem. Persistence and locking live in the store package.
//
// # Allocation Strategy
//
// Ports are allocated with a linear gap scan: walk the entries in order with a
// candidate counter starting at the configured start port, advancing it for
// every entry that already holds the candidate. The first entry that does not
// match is the gap, and the new entry is inserted in front of it:
//
//	alloc, err := port.Allocate(entries, addr, 3100)
//	if alloc.Appended {
//	    // pure tail append, the store may append a single line
//	}
//
// Entries therefore stay in ascending port order, and a freed port is the
// first one handed out again.
//
// # File Format
//
// Decode and Encode implement the backing file format, one entry per line:
//
//	10.0.0.5\t3100
//	10.0.0.6\t3101
//
// Malformed lines are skipped on Decode.
package port
