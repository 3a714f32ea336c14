// Package health checks that table entries are backed by firewall rules.
//
// The allocation table and the firewall can drift apart: a delete with an
// explicit port removes rules but keeps the entry, a failed create keeps
// the entry without its rules, and a host reboot flushes iptables.
//
// # Health Status
//
//	StatusHealthy - DNAT, FORWARD and MASQUERADE rules all present
//	StatusPartial - some of the three rules present
//	StatusMissing - none present
//	StatusUnknown - the firewall could not be probed
//
// # Check Functions
//
//	result := health.Check(ctx, executor, entry, namespace)
//	// result.Status, result.Missing
//
//	results := health.CheckAll(ctx, executor, entries, namespace)
//	bad := health.Unhealthy(results)
//
// Probes use "iptables -C" through the firewall executor, so they run in
// the configured namespace.
package health
