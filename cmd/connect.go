package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/sshproxy-ctl/internal/app"
	"github.com/firefly-engineering/sshproxy-ctl/internal/errors"
	"github.com/firefly-engineering/sshproxy-ctl/internal/ssh"
)

var connectCmd = &cobra.Command{
	Use:   "connect [-- command...]",
	Short: "Show or run the ssh command that reaches an address",
	Long: `Look up the proxy port of an internal address and build the ssh command
that reaches it through the gateway.

By default the command is printed. With --probe it is run in batch mode to
test reachability; with --exec the current process is replaced by it.`,
	RunE: runConnect,
}

var (
	connectAddress string
	connectHost    string
	connectUser    string
	connectProbe   bool
	connectExec    bool
)

func init() {
	connectCmd.Flags().StringVarP(&connectAddress, "address", "a", "", "Internal host address (required)")
	connectCmd.Flags().StringVar(&connectHost, "host", ssh.DefaultHost, "Gateway host name or address")
	connectCmd.Flags().StringVarP(&connectUser, "user", "u", "", "Remote login user")
	connectCmd.Flags().BoolVar(&connectProbe, "probe", false, "Check that the host answers over ssh")
	connectCmd.Flags().BoolVar(&connectExec, "exec", false, "Replace this process with the ssh session")
	connectCmd.MarkFlagsMutuallyExclusive("probe", "exec")
	_ = connectCmd.MarkFlagRequired("address")
	rootCmd.AddCommand(connectCmd)
}

func runConnect(cmd *cobra.Command, args []string) error {
	e, err := service().Lookup(cmd.Context(), connectAddress)
	if err != nil {
		return err
	}

	opts := ssh.DefaultOptions(connectHost, e.Port).WithUser(connectUser)

	switch {
	case connectProbe:
		if err := ssh.CheckConnection(cmd.Context(), app.Default.Runner(), opts); err != nil {
			return errors.Wrap(errors.ExitGeneralError, fmt.Sprintf("%s is not reachable", connectAddress), err)
		}
		logSuccess("%s is reachable on %s port %d", connectAddress, opts.Host, e.Port)
		return nil
	case connectExec:
		return ssh.ReplaceWithSession(opts.WithTTY(), args...)
	default:
		fmt.Fprintln(cmd.OutOrStdout(), opts.CommandLine(args...))
		return nil
	}
}
