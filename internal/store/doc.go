// Package store persists the port allocation table.
//
// FileStore keeps the table in a line-oriented text file and coordinates
// independent processes through an advisory flock(2) on a separate lock file.
// The lock file content is irrelevant; it only exists as a lock target.
//
// # Operations
//
//	Load     read every entry (missing file = empty table)
//	Append   add one line at the tail
//	Rewrite  replace the whole file via temp file + rename
//	Destroy  remove the table file
//
// # Transactions
//
// Table wraps a Store with the locking sequence each command needs:
//
//	tbl := store.NewTable(fs, store.LockHeld)
//	err := tbl.Update(ctx, func(entries []port.Entry) (store.Change, error) {
//	    alloc, err := port.Allocate(entries, addr, start)
//	    ...
//	})
//
// LockHeld keeps one exclusive lock across read, decide and write. LockSplit
// takes a shared lock for the read, releases it, then takes an exclusive lock
// for the write. Between the two another process may commit, and the later
// writer wins.
package store
