package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/sshproxy-ctl/internal/app"
	"github.com/firefly-engineering/sshproxy-ctl/internal/config"
	"github.com/firefly-engineering/sshproxy-ctl/internal/errors"
	"github.com/firefly-engineering/sshproxy-ctl/internal/logging"
	"github.com/firefly-engineering/sshproxy-ctl/internal/proxy"
)

// initApp loads the host config, applies flag overrides and installs the
// resulting app as app.Default. An explicit --config must exist.
func initApp(cmd *cobra.Command) error {
	path := config.ConfigFile(configPath)

	cfg, err := config.LoadHostConfig(path, configPath != "")
	if err != nil {
		return errors.ConfigError("failed to load config", err)
	}

	if namespace != "" {
		cfg.Namespace = namespace
		if err := cfg.Validate(); err != nil {
			return errors.ConfigError("invalid --namespace", err)
		}
	}

	logging.Debug("config loaded", "path", path, "state_dir", cfg.StateDir, "namespace", cfg.Namespace)

	a, err := app.New(
		app.WithHostConfig(cfg),
		app.WithDryRun(dryRun, cmd.OutOrStdout()),
	)
	if err != nil {
		return err
	}

	app.SetDefault(a)
	return nil
}

// service returns the proxy service of the current app.
func service() *proxy.Service {
	return app.Default.Service
}
