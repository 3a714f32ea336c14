// Package proxy orchestrates SSH port proxies.
//
// A Service ties the allocation table to the firewall: Create assigns a
// port and installs the DNAT, FORWARD and MASQUERADE rules for it, Delete
// frees the port and removes the rules, and Clear tears down every proxy
// and removes the table file.
//
// # Usage
//
//	svc := proxy.New(table, executor, auditLog, proxy.Options{
//	    StartPort: 3100,
//	    MinPort:   1024,
//	    Namespace: "qrouter-1",
//	})
//
//	p, err := svc.Create(ctx, "10.0.0.5", 0)
//
// # Ordering
//
// Table changes commit before firewall directives run. If the executor
// fails the allocation stays in place and a FirewallError is returned;
// rerunning delete removes both.
//
// # Explicit ports
//
// Create with an explicit port records nothing: it checks that the table
// already holds that exact assignment. Delete with an explicit port removes
// the rules for that port and leaves the table untouched.
package proxy
