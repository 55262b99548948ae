package main

import (
	"testing"
)

func TestVersion(t *testing.T) {
	if version == "" {
		t.Error("version should not be empty")
	}
	if version != "dev" {
		t.Logf("version = %s (expected 'dev' but may be set by build)", version)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"render": false, "export": false, "generate": false}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestParseKind(t *testing.T) {
	if _, err := parseKind("hld"); err != nil {
		t.Errorf("parseKind(hld) error = %v", err)
	}
	if _, err := parseKind("lld"); err != nil {
		t.Errorf("parseKind(lld) error = %v", err)
	}
	if _, err := parseKind("mld"); err == nil {
		t.Error("parseKind(mld) should fail")
	}
}
