// Package rules turns a port allocation into the firewall directives that
// realise the SSH proxy.
package rules

import (
	"strconv"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/sshproxy-ctl/internal/address"
)

// SSHPort is the destination port on the internal host.
const SSHPort = 22

// DefaultIPTablesPath is the iptables binary used when none is configured.
const DefaultIPTablesPath = "/sbin/iptables"

// Direction selects whether rules are added, removed or probed.
type Direction int

const (
	Create Direction = iota
	Delete
	Check
)

func (d Direction) String() string {
	switch d {
	case Delete:
		return "delete"
	case Check:
		return "check"
	default:
		return "create"
	}
}

// Op is the iptables operation of a directive.
type Op string

const (
	// OpInsert inserts at the head of the chain so these rules take
	// priority over other NAT consumers on the host.
	OpInsert Op = "-I"
	OpDelete Op = "-D"
	OpCheck  Op = "-C"
)

// Directive is a single firewall rule to add or remove.
type Directive struct {
	Op        Op
	Table     string
	Chain     string
	Spec      []string
	Namespace string
}

// Emit returns the three directives for addr/port in a fixed order:
// DNAT prerouting, forward accept, postrouting masquerade.
func Emit(addr address.Address, port int, dir Direction, namespace string) []Directive {
	op := OpInsert
	switch dir {
	case Delete:
		op = OpDelete
	case Check:
		op = OpCheck
	}

	host := addr.String()

	return []Directive{
		{
			Op:    op,
			Table: "nat",
			Chain: "PREROUTING",
			Spec: []string{
				"-p", "tcp",
				"--dport", strconv.Itoa(port),
				"-j", "DNAT",
				"--to-destination", host + ":" + strconv.Itoa(SSHPort),
			},
			Namespace: namespace,
		},
		{
			Op:        op,
			Table:     "filter",
			Chain:     "FORWARD",
			Spec:      []string{"-p", "tcp", "-s", host, "-j", "ACCEPT"},
			Namespace: namespace,
		},
		{
			Op:        op,
			Table:     "nat",
			Chain:     "POSTROUTING",
			Spec:      []string{"-p", "tcp", "-s", host, "-j", "MASQUERADE"},
			Namespace: namespace,
		},
	}
}

// WithOp returns a copy of d with its operation replaced.
func (d Directive) WithOp(op Op) Directive {
	d.Spec = append([]string(nil), d.Spec...)
	d.Op = op
	return d
}

// IPTablesArgs returns the iptables arguments without the binary.
func (d Directive) IPTablesArgs() []string {
	args := []string{"-t", d.Table, string(d.Op), d.Chain}
	return append(args, d.Spec...)
}

// Argv returns the full command line, wrapped in "ip netns exec" when the
// directive targets a namespace.
func (d Directive) Argv(iptablesPath string) []string {
	if iptablesPath == "" {
		iptablesPath = DefaultIPTablesPath
	}
	return NamespaceArgv(d.Namespace, append([]string{iptablesPath}, d.IPTablesArgs()...))
}

// String renders the directive as a quoted shell command line.
func (d Directive) String() string {
	return shellquote.Join(d.Argv("")...)
}

// NamespaceArgv prefixes argv with "ip netns exec <ns>" if ns is set.
func NamespaceArgv(namespace string, argv []string) []string {
	if namespace == "" {
		return argv
	}
	return append([]string{"ip", "netns", "exec", namespace}, argv...)
}

// ListArgv returns the command that lists the NAT table with line numbers.
func ListArgv(iptablesPath, namespace string) []string {
	if iptablesPath == "" {
		iptablesPath = DefaultIPTablesPath
	}
	return NamespaceArgv(namespace, []string{iptablesPath, "-L", "-t", "nat", "--line-numbers"})
}
