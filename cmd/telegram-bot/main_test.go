package main

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestMainExitsOnInvalidConfig(t *testing.T) {
	if os.Getenv("CHEFMATE_RUN_MAIN") == "1" {
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestMainExitsOnInvalidConfig$")
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(), "CHEFMATE_RUN_MAIN=1", "CHEFMATE_CONFIG=", "STORE_BACKEND=bogus")
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		t.Fatalf("Expected exit status 1, got %v\n%s", err, out)
	}
	if !strings.Contains(string(out), "Failed to load config") {
		t.Errorf("Expected a config failure message, got %q", out)
	}
	if strings.Contains(string(out), "panic") {
		t.Errorf("Expected no panic, got %q", out)
	}
}
