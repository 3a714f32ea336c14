package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/firefly-engineering/sshproxy-ctl/internal/errors"
	"github.com/firefly-engineering/sshproxy-ctl/internal/logging"
	"github.com/firefly-engineering/sshproxy-ctl/internal/testutil"
)

func executeCommand(args ...string) (string, string, error) {
	// Reset flag values before each test
	verbose = false
	jsonOutput = false
	configPath = ""
	namespace = ""
	dryRun = false
	createAddress = ""
	createPort = 0
	deleteAddress = ""
	deletePort = 0
	lookupAddress = ""
	tableFormat = "styled"
	auditLogAddress = ""
	auditLogRaw = false
	checkRepair = false
	monitorInterval = 30 * time.Second
	monitorRepair = false
	connectAddress = ""
	connectHost = "localhost"
	connectUser = ""
	connectProbe = false
	connectExec = false

	// Cobra keeps Changed state between runs; required-flag checks rely on it
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			// The auto-added --help flag keeps its value too; reset it
			if f.Name == "help" {
				_ = f.Value.Set(f.DefValue)
			}
			f.Changed = false
		})
	}

	cmd := rootCmd
	cmd.SetArgs(args)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()

	// Reset args for next test
	cmd.SetArgs(nil)
	cmd.SetOut(nil)
	cmd.SetErr(nil)
	logging.SetUserOutput(nil, nil)

	return stdout.String(), stderr.String(), err
}

func newEnv(t *testing.T) *testutil.TestEnv {
	t.Helper()
	env := testutil.NewTestEnv(t)
	t.Cleanup(env.Cleanup)
	return env
}

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("Help command failed: %v", err)
	}

	if !strings.Contains(stdout, "sshproxy-ctl") {
		t.Error("Help output should contain 'sshproxy-ctl'")
	}

	for _, sub := range []string{"create", "delete", "clear", "list", "lookup", "table", "pick", "audit-log", "check", "monitor", "connect"} {
		if !strings.Contains(stdout, sub) {
			t.Errorf("Help output should list %q", sub)
		}
	}
}

func TestCreateCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("create", "--help")
	if err != nil {
		t.Fatalf("Help command failed: %v", err)
	}

	if !strings.Contains(stdout, "--address") || !strings.Contains(stdout, "--port") {
		t.Error("Create help should document --address and --port")
	}
}

func TestCreateCommand(t *testing.T) {
	env := newEnv(t)

	stdout, _, err := executeCommand("--config", env.ConfigPath, "create", "-a", "10.0.0.5")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if strings.TrimSpace(stdout) != "3100" {
		t.Errorf("stdout = %q, want port 3100", stdout)
	}
	if got := env.ReadTable(); got != "10.0.0.5\t3100\n" {
		t.Errorf("table = %q", got)
	}

	lines := env.Runner.CommandLines()
	if len(lines) != 3 {
		t.Fatalf("ran %d commands, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "/sbin/iptables -t nat -I PREROUTING") {
		t.Errorf("first command = %q", lines[0])
	}
}

func TestCreateCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		table    string
		args     []string
		wantCode int
	}{
		{"duplicate", "10.0.0.5\t3100\n", []string{"create", "-a", "10.0.0.5"}, errors.ExitDuplicateAddress},
		{"invalid address", "", []string{"create", "-a", "10.0.0"}, errors.ExitInvalidAddress},
		{"explicit port below minimum", "", []string{"create", "-a", "10.0.0.5", "-p", "80"}, errors.ExitInvalidPort},
		{"explicit port not recorded", "", []string{"create", "-a", "10.0.0.5", "-p", "4000"}, errors.ExitNotFound},
		{"explicit port zero", "", []string{"create", "-a", "10.0.0.5", "-p", "0"}, errors.ExitInvalidPort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t)
			if tt.table != "" {
				env.WriteTable(tt.table)
			}

			args := append([]string{"--config", env.ConfigPath}, tt.args...)
			_, _, err := executeCommand(args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if code := errors.GetExitCode(err); code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (err: %v)", code, tt.wantCode, err)
			}
			if got := env.ReadTable(); got != tt.table {
				t.Errorf("table changed: %q", got)
			}
			if len(env.Runner.Commands) != 0 {
				t.Errorf("ran %d commands, want 0", len(env.Runner.Commands))
			}
		})
	}
}

func TestCreateCommand_MissingAddress(t *testing.T) {
	env := newEnv(t)

	_, _, err := executeCommand("--config", env.ConfigPath, "create")
	if err == nil {
		t.Fatal("create without --address should fail")
	}
	if !strings.Contains(err.Error(), "address") {
		t.Errorf("error = %v, want it to mention address", err)
	}
}

func TestCreateCommand_FirewallFailure(t *testing.T) {
	env := newEnv(t)
	env.Runner.AddResponse("/sbin/iptables -t filter -I FORWARD", []byte("iptables: No chain/target/match by that name."), fmt.Errorf("exit status 1"))

	_, stderr, err := executeCommand("--config", env.ConfigPath, "create", "-a", "10.0.0.5")
	if code := errors.GetExitCode(err); code != errors.ExitFirewallError {
		t.Fatalf("exit code = %d, want %d (err: %v)", code, errors.ExitFirewallError, err)
	}
	if !strings.Contains(stderr, "Port 3100 is recorded") {
		t.Errorf("stderr = %q, want warning about recorded port", stderr)
	}
	if got := env.ReadTable(); got != "10.0.0.5\t3100\n" {
		t.Errorf("table = %q", got)
	}
}

func TestCreateCommand_DryRun(t *testing.T) {
	env := newEnv(t)

	stdout, _, err := executeCommand("--config", env.ConfigPath, "--dry-run", "create", "-a", "10.0.0.5")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if len(env.Runner.Commands) != 0 {
		t.Errorf("dry run executed %d commands", len(env.Runner.Commands))
	}
	if !strings.Contains(stdout, "--to-destination 10.0.0.5:22") {
		t.Errorf("stdout = %q, want printed DNAT directive", stdout)
	}
}

func TestCreateCommand_Namespace(t *testing.T) {
	env := newEnv(t)

	if _, _, err := executeCommand("--config", env.ConfigPath, "-n", "qrouter-1", "create", "-a", "10.0.0.5"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for _, line := range env.Runner.CommandLines() {
		if !strings.HasPrefix(line, "ip netns exec qrouter-1 ") {
			t.Errorf("command not scoped to namespace: %q", line)
		}
	}
}

func TestCreateCommand_InvalidNamespace(t *testing.T) {
	env := newEnv(t)

	_, _, err := executeCommand("--config", env.ConfigPath, "-n", "../etc", "create", "-a", "10.0.0.5")
	if code := errors.GetExitCode(err); code != errors.ExitConfigError {
		t.Errorf("exit code = %d, want %d", code, errors.ExitConfigError)
	}
}

func TestDeleteCommand(t *testing.T) {
	env := newEnv(t)
	env.WriteTable("10.0.0.5\t3100\n10.0.0.6\t3101\n")

	stdout, _, err := executeCommand("--config", env.ConfigPath, "delete", "-a", "10.0.0.5")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if !strings.Contains(stdout, "port 3100") {
		t.Errorf("stdout = %q", stdout)
	}
	if got := env.ReadTable(); got != "10.0.0.6\t3101\n" {
		t.Errorf("table = %q", got)
	}
	for _, line := range env.Runner.CommandLines() {
		if !strings.Contains(line, " -D ") {
			t.Errorf("unexpected command %q", line)
		}
	}
}

func TestDeleteCommand_NotFound(t *testing.T) {
	env := newEnv(t)

	_, _, err := executeCommand("--config", env.ConfigPath, "delete", "-a", "10.0.0.5")
	if code := errors.GetExitCode(err); code != errors.ExitNotFound {
		t.Errorf("exit code = %d, want %d", code, errors.ExitNotFound)
	}
}

func TestDeleteCommand_ExplicitPortZero(t *testing.T) {
	env := newEnv(t)
	env.WriteTable("10.0.0.5\t3100\n")

	_, _, err := executeCommand("--config", env.ConfigPath, "delete", "-a", "10.0.0.5", "-p", "0")
	if code := errors.GetExitCode(err); code != errors.ExitInvalidPort {
		t.Errorf("exit code = %d, want %d", code, errors.ExitInvalidPort)
	}
	if got := env.ReadTable(); got != "10.0.0.5\t3100\n" {
		t.Errorf("table = %q, want unchanged", got)
	}
	if len(env.Runner.Commands) != 0 {
		t.Errorf("ran %d commands, want 0", len(env.Runner.Commands))
	}
}

func TestDeleteCommand_ExplicitPort(t *testing.T) {
	env := newEnv(t)
	env.WriteTable("10.0.0.5\t3100\n")

	_, stderr, err := executeCommand("--config", env.ConfigPath, "delete", "-a", "10.0.0.5", "-p", "3100")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if got := env.ReadTable(); got != "10.0.0.5\t3100\n" {
		t.Errorf("explicit-port delete changed the table: %q", got)
	}
	if !strings.Contains(stderr, "not changed") {
		t.Errorf("stderr = %q, want table warning", stderr)
	}
	if len(env.Runner.Commands) != 3 {
		t.Errorf("ran %d commands, want 3", len(env.Runner.Commands))
	}
}

func TestClearCommand(t *testing.T) {
	env := newEnv(t)
	env.WriteTable("10.0.0.5\t3100\n10.0.0.6\t3101\n")

	stdout, _, err := executeCommand("--config", env.ConfigPath, "clear")
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	if !strings.Contains(stdout, "Cleared 2 proxies") {
		t.Errorf("stdout = %q", stdout)
	}
	if env.TableExists() {
		t.Error("table file should be removed")
	}
	if len(env.Runner.Commands) != 6 {
		t.Errorf("ran %d commands, want 6", len(env.Runner.Commands))
	}
}

func TestListCommand(t *testing.T) {
	env := newEnv(t)
	listing := "Chain PREROUTING (policy ACCEPT)\nnum  target     prot opt source               destination\n"
	env.Runner.AddResponse("/sbin/iptables -L -t nat --line-numbers", []byte(listing), nil)

	stdout, _, err := executeCommand("--config", env.ConfigPath, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if stdout != listing {
		t.Errorf("stdout = %q, want %q", stdout, listing)
	}
}

func TestLookupCommand(t *testing.T) {
	env := newEnv(t)
	env.WriteTable("10.0.0.5\t3100\n10.0.0.6\t3101\n")

	stdout, _, err := executeCommand("--config", env.ConfigPath, "lookup", "-a", "10.0.0.6")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if strings.TrimSpace(stdout) != "3101" {
		t.Errorf("stdout = %q, want 3101", stdout)
	}

	_, _, err = executeCommand("--config", env.ConfigPath, "lookup", "-a", "10.0.0.7")
	if code := errors.GetExitCode(err); code != errors.ExitNotFound {
		t.Errorf("exit code = %d, want %d", code, errors.ExitNotFound)
	}
}

func TestTableCommand(t *testing.T) {
	env := newEnv(t)
	env.WriteTable("10.0.0.5\t3100\nbogus line\n10.0.0.6\t3101\n")

	t.Run("plain", func(t *testing.T) {
		stdout, _, err := executeCommand("--config", env.ConfigPath, "table", "-f", "plain")
		if err != nil {
			t.Fatalf("table failed: %v", err)
		}
		if stdout != "10.0.0.5\t3100\n10.0.0.6\t3101\n" {
			t.Errorf("stdout = %q", stdout)
		}
	})

	t.Run("json", func(t *testing.T) {
		stdout, _, err := executeCommand("--config", env.ConfigPath, "table", "--format", "json")
		if err != nil {
			t.Fatalf("table failed: %v", err)
		}
		if !strings.Contains(stdout, `"address": "10.0.0.6"`) || !strings.Contains(stdout, `"port": 3101`) {
			t.Errorf("stdout = %q", stdout)
		}
	})

	t.Run("styled", func(t *testing.T) {
		stdout, _, err := executeCommand("--config", env.ConfigPath, "table")
		if err != nil {
			t.Fatalf("table failed: %v", err)
		}
		if !strings.Contains(stdout, "10.0.0.5:22") {
			t.Errorf("stdout = %q", stdout)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, _, err := executeCommand("--config", env.ConfigPath, "table", "-f", "xml"); err == nil {
			t.Error("unknown format should fail")
		}
	})
}

func TestPickCommand_Empty(t *testing.T) {
	env := newEnv(t)

	stdout, _, err := executeCommand("--config", env.ConfigPath, "pick")
	if err != nil {
		t.Fatalf("pick failed: %v", err)
	}
	if !strings.Contains(stdout, "No proxies found") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestAuditLogCommand(t *testing.T) {
	env := newEnv(t)

	executeCommand("--config", env.ConfigPath, "create", "-a", "10.0.0.5")
	executeCommand("--config", env.ConfigPath, "create", "-a", "10.0.0.6")
	executeCommand("--config", env.ConfigPath, "delete", "-a", "10.0.0.5")

	stdout, _, err := executeCommand("--config", env.ConfigPath, "audit-log", "-a", "10.0.0.5")
	if err != nil {
		t.Fatalf("audit-log failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), stdout)
	}
	if !strings.Contains(lines[0], "create") || !strings.Contains(lines[1], "delete") {
		t.Errorf("lines = %q", lines)
	}

	stdout, _, err = executeCommand("--config", env.ConfigPath, "audit-log", "--raw")
	if err != nil {
		t.Fatalf("audit-log --raw failed: %v", err)
	}
	if n := strings.Count(stdout, `"type":`); n != 3 {
		t.Errorf("raw output has %d events, want 3", n)
	}
}

func TestConfigMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.toml")

	_, _, err := executeCommand("--config", missing, "table")
	if code := errors.GetExitCode(err); code != errors.ExitConfigError {
		t.Errorf("exit code = %d, want %d", code, errors.ExitConfigError)
	}
}

func TestCheckCommand(t *testing.T) {
	env := newEnv(t)
	env.WriteTable("10.0.0.5\t3100\n10.0.0.6\t3101\n")

	stdout, _, err := executeCommand("--config", env.ConfigPath, "check")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(stdout, "10.0.0.5\t3100\thealthy") || !strings.Contains(stdout, "10.0.0.6\t3101\thealthy") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestCheckCommand_MissingRules(t *testing.T) {
	env := newEnv(t)
	env.WriteTable("10.0.0.6\t3101\n")

	missing := []byte("iptables: Bad rule (does a matching rule exist in that chain?).\n")
	env.Runner.AddResponse("/sbin/iptables -t nat -C PREROUTING", missing, fmt.Errorf("exit status 1"))

	stdout, _, err := executeCommand("--config", env.ConfigPath, "check")
	if code := errors.GetExitCode(err); code != errors.ExitFirewallError {
		t.Fatalf("exit code = %d, want %d", code, errors.ExitFirewallError)
	}
	if !strings.Contains(stdout, "10.0.0.6\t3101\tpartial") {
		t.Errorf("stdout = %q", stdout)
	}

	env.Runner.Reset()
	env.Runner.AddResponse("/sbin/iptables -t nat -C PREROUTING", missing, fmt.Errorf("exit status 1"))

	stdout, _, err = executeCommand("--config", env.ConfigPath, "check", "--repair")
	if err != nil {
		t.Fatalf("check --repair failed: %v", err)
	}
	if !strings.Contains(stdout, "10.0.0.6\t3101\thealthy") {
		t.Errorf("stdout = %q", stdout)
	}

	var inserted bool
	for _, line := range env.Runner.CommandLines() {
		if strings.HasPrefix(line, "/sbin/iptables -t nat -I PREROUTING -p tcp --dport 3101") {
			inserted = true
		}
	}
	if !inserted {
		t.Errorf("repair did not insert the DNAT rule: %v", env.Runner.CommandLines())
	}
}

func TestCheckCommand_Empty(t *testing.T) {
	env := newEnv(t)

	stdout, _, err := executeCommand("--config", env.ConfigPath, "check")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(stdout, "No proxies to check") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestMonitorCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("monitor", "--help")
	if err != nil {
		t.Fatalf("Help command failed: %v", err)
	}

	if !strings.Contains(stdout, "--interval") || !strings.Contains(stdout, "--repair") {
		t.Error("Monitor help should document --interval and --repair")
	}
}

func TestConnectCommand(t *testing.T) {
	env := newEnv(t)
	env.WriteTable("10.0.0.5\t3100\n")

	stdout, _, err := executeCommand("--config", env.ConfigPath, "connect", "-a", "10.0.0.5", "--host", "gw.example.net", "-u", "ops")
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	want := "ssh -p 3100 -o ConnectTimeout=2 ops@gw.example.net"
	if strings.TrimSpace(stdout) != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestConnectCommand_Probe(t *testing.T) {
	env := newEnv(t)
	env.WriteTable("10.0.0.5\t3100\n")

	stdout, _, err := executeCommand("--config", env.ConfigPath, "connect", "-a", "10.0.0.5", "--probe")
	if err != nil {
		t.Fatalf("connect --probe failed: %v", err)
	}
	if !strings.Contains(stdout, "reachable") {
		t.Errorf("stdout = %q", stdout)
	}

	last, ok := env.Runner.LastCommand()
	if !ok || last.Name != "ssh" {
		t.Fatalf("last command = %v, want ssh", last)
	}

	env.Runner.AddResponse("ssh", []byte("Connection refused"), fmt.Errorf("exit status 255"))
	_, _, err = executeCommand("--config", env.ConfigPath, "connect", "-a", "10.0.0.5", "--probe")
	if code := errors.GetExitCode(err); code != errors.ExitGeneralError {
		t.Errorf("exit code = %d, want %d", code, errors.ExitGeneralError)
	}
}

func TestConnectCommand_NotFound(t *testing.T) {
	env := newEnv(t)

	_, _, err := executeCommand("--config", env.ConfigPath, "connect", "-a", "10.0.0.9")
	if code := errors.GetExitCode(err); code != errors.ExitNotFound {
		t.Errorf("exit code = %d, want %d", code, errors.ExitNotFound)
	}
}
