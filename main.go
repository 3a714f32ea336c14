package main

import (
	"os"

	"github.com/firefly-engineering/sshproxy-ctl/cmd"
	"github.com/firefly-engineering/sshproxy-ctl/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
