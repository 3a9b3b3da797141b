package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRootCmdRegistersExpectedSubcommands(t *testing.T) {
	root := NewRootCmd()
	want := []string{"run", "attach", "_daemon", "status", "version"}
	for _, name := range want {
		found, _, err := root.Find([]string{name})
		if err != nil || found == root {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestDaemonSubcommandIsHidden(t *testing.T) {
	root := NewRootCmd()
	found, _, err := root.Find([]string{"_daemon"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !found.Hidden {
		t.Error("_daemon subcommand should be hidden from help output")
	}
}

func TestVersionCmdPrintsVersion(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if strings.TrimSpace(out.String()) == "" {
		t.Error("expected version output")
	}
}

func TestRunCmdRequiresCommandArg(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"run"})
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	if err := root.Execute(); err == nil {
		t.Error("expected error when run is invoked without a command")
	}
}

func TestAttachCmdRequiresExactlyOneArg(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"attach"})
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	if err := root.Execute(); err == nil {
		t.Error("expected error when attach is invoked without a session name")
	}
}
