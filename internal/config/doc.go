// Package config provides configuration types and loading for sshproxy-ctl.
//
// # Configuration File
//
// HostConfig is read from /etc/sshproxy/config.toml (or the file named by
// --config or $SSHPROXY_CONFIG). Files ending in .yaml or .yml are parsed as
// YAML instead. A missing default file is not an error; defaults apply.
//
//	state_dir     = "/var/lib/sshproxy"
//	table_file    = "ssh-port-table.txt"
//	lock_file     = "ssh-port-table.lock"
//	audit_file    = "events.jsonl"
//	start_port    = 3100
//	min_port      = 1024
//	namespace     = "qrouter-1"
//	backend       = "exec"            # or "iptables"
//	iptables_path = "/sbin/iptables"
//	lock_mode     = "held"            # or "split"
//
// Unknown keys are rejected.
//
// # Paths
//
// Table, lock and audit file names are resolved under state_dir with
// filepath-securejoin, so a name such as "../../etc/passwd" stays inside the
// state directory.
//
// # Validation
//
// LoadHostConfig validates after applying defaults: start_port must not be
// below min_port, and backend and lock_mode must be known values.
package config
