//go:build !unix

package store

import (
	"fmt"
	"os"
	"runtime"
)

func flock(f *os.File, mode LockMode) error {
	return fmt.Errorf("advisory file locking is not supported on %s", runtime.GOOS)
}

func funlock(f *os.File) error {
	return nil
}
