package system

import (
	"context"
	"os/exec"
)

// osExecutor implements CommandExecutor using real OS operations.
// Arguments are passed as argv; no shell is involved.
type osExecutor struct{}

func (e *osExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}
