package main

import "testing"

func TestRunVersionCommand(t *testing.T) {
	if code := run([]string{"version"}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if code := run([]string{"unknown-command"}); code == 0 {
		t.Fatalf("expected non-zero exit code for unknown command")
	}
}

func TestRunMissingConfig(t *testing.T) {
	t.Setenv("SMTP_ADAPTER_CONFIG", t.TempDir()+"/missing.yaml")
	if code := run([]string{"check", "--skip-connect"}); code == 0 {
		t.Fatalf("expected non-zero exit code for missing config")
	}
}
