// ABOUTME: Tests for version command
// ABOUTME: Verifies text and JSON output after SetVersion

package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func withVersion(t *testing.T, version, commit, date string) {
	t.Helper()
	original := versionInfo
	t.Cleanup(func() { versionInfo = original })
	SetVersion(version, commit, date)
}

func TestVersionCmd_Output(t *testing.T) {
	withVersion(t, "1.2.3", "abc123", "2026-01-31")

	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	for _, expected := range []string{"carepath 1.2.3", "Commit: abc123", "Built:  2026-01-31"} {
		if !strings.Contains(out, expected) {
			t.Errorf("output missing %q, got:\n%s", expected, out)
		}
	}
}

func TestVersionCmd_JSON(t *testing.T) {
	withVersion(t, "1.2.3", "abc123", "2026-01-31")

	out, err := runCLI(t, "--format", "json", "version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var got VersionInfo
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got.Version != "1.2.3" || got.Commit != "abc123" {
		t.Errorf("got %+v", got)
	}
}

// runCLI executes the root command and returns stdout
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}
