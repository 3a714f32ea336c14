// Package firewall applies rule directives to the host firewall.
//
// Three executors implement Executor:
//
//   - CommandExecutor runs each directive's argv through a
//     system.CommandExecutor, prefixing "ip netns exec <ns>" when needed.
//     Nothing passes through a shell.
//   - IPTablesExecutor drives iptables through github.com/coreos/go-iptables,
//     entering the target network namespace with github.com/vishvananda/netns.
//   - PrintExecutor writes the quoted command lines and changes nothing.
//
// Every directive in a batch is attempted; failures are joined into one error.
// Deleting a rule that is already absent succeeds on every backend, so a
// repeated delete is a no-op rather than a FirewallError.
package firewall
