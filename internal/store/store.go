package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/firefly-engineering/sshproxy-ctl/internal/errors"
	"github.com/firefly-engineering/sshproxy-ctl/internal/logging"
	"github.com/firefly-engineering/sshproxy-ctl/internal/port"
)

// LockMode selects shared or exclusive locking.
type LockMode int

const (
	Shared LockMode = iota
	Exclusive
)

func (m LockMode) String() string {
	if m == Exclusive {
		return "exclusive"
	}
	return "shared"
}

// Store is the durable repository behind the allocation table.
type Store interface {
	// Lock blocks until the lock is granted. The returned func releases it.
	Lock(ctx context.Context, mode LockMode) (func(), error)

	// Load returns all entries in file order.
	Load(ctx context.Context) ([]port.Entry, error)

	// Append adds a single entry at the end of the table.
	Append(ctx context.Context, e port.Entry) error

	// Rewrite replaces the table contents. Either all entries are written or
	// the previous file is left untouched.
	Rewrite(ctx context.Context, entries []port.Entry) error

	// Destroy removes the table.
	Destroy(ctx context.Context) error
}

// FileStore implements Store on a text file plus a separate lock file.
type FileStore struct {
	path     string
	lockPath string
	minPort  int
}

// NewFileStore creates a FileStore. If lockPath is empty, path + ".lock" is used.
func NewFileStore(path, lockPath string) *FileStore {
	if lockPath == "" {
		lockPath = path + ".lock"
	}
	return &FileStore{path: path, lockPath: lockPath, minPort: port.DefaultMinPort}
}

// WithMinPort sets the lowest port Load accepts; lines below it are dropped.
func (s *FileStore) WithMinPort(min int) *FileStore {
	if min > 0 {
		s.minPort = min
	}
	return s
}

// Path returns the table file path.
func (s *FileStore) Path() string {
	return s.path
}

// LockPath returns the lock file path.
func (s *FileStore) LockPath() string {
	return s.lockPath
}

func (s *FileStore) Lock(ctx context.Context, mode LockMode) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.LockUnavailable(s.lockPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.lockPath), 0755); err != nil {
		return nil, errors.LockUnavailable(s.lockPath, err)
	}

	f, err := os.OpenFile(s.lockPath, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.LockUnavailable(s.lockPath, err)
	}

	logging.Debug("acquiring lock", "path", s.lockPath, "mode", mode)
	if err := flock(f, mode); err != nil {
		f.Close()
		return nil, errors.LockUnavailable(s.lockPath, err)
	}

	return func() {
		if err := funlock(f); err != nil {
			logging.Warn("failed to release lock", "path", s.lockPath, "error", err)
		}
		f.Close()
		logging.Debug("released lock", "path", s.lockPath, "mode", mode)
	}, nil
}

func (s *FileStore) Load(ctx context.Context) ([]port.Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.StoreUnavailable("open", err)
	}
	defer f.Close()

	entries, err := port.Decode(f, s.minPort)
	if err != nil {
		return nil, errors.StoreUnavailable("read", err)
	}

	return entries, nil
}

func (s *FileStore) Append(ctx context.Context, e port.Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.StoreUnavailable("append", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return errors.StoreUnavailable("append", err)
	}
	defer f.Close()

	line := port.FormatLine(e)
	if needsNewline(f) {
		line = "\n" + line
	}

	if _, err := f.WriteString(line); err != nil {
		return errors.StoreUnavailable("append", err)
	}

	return nil
}

// needsNewline reports whether the file ends in an unterminated line.
func needsNewline(f *os.File) bool {
	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return false
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil && err != io.EOF {
		return false
	}
	return last[0] != '\n'
}

func (s *FileStore) Rewrite(ctx context.Context, entries []port.Entry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.StoreUnavailable("rewrite", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return errors.StoreUnavailable("rewrite", err)
	}
	tmpPath := tmp.Name()

	if err := writeAndSync(tmp, entries); err != nil {
		os.Remove(tmpPath)
		return errors.StoreUnavailable("rewrite", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return errors.StoreUnavailable("rewrite", err)
	}

	return nil
}

func writeAndSync(f *os.File, entries []port.Entry) error {
	if err := port.Encode(f, entries); err != nil {
		f.Close()
		return fmt.Errorf("failed to write entries: %w", err)
	}
	if err := f.Chmod(0644); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *FileStore) Destroy(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.StoreUnavailable("remove", err)
	}
	return nil
}
