package cue

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func scriptPlugin(t *testing.T, body string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "plugin.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return &Plugin{
		Manifest:   Manifest{Name: "test", Executable: "plugin.sh"},
		Path:       dir,
		Executable: path,
	}
}

func TestExecutor_Execute(t *testing.T) {
	p := scriptPlugin(t, `echo '{"success":true}'`)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{Event: EventRep, Text: "Rep 1 completed!"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !resp.Success || resp.Error != "" {
		t.Errorf("response = %+v, want success", resp)
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	p := scriptPlugin(t, `input=$(cat)
case "$input" in
  *'"text":"Good, push up!"'*) echo '{"success":true}' ;;
  *) echo '{"success":false,"error":"unexpected input"}' ;;
esac
`)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{Event: EventPhase, Text: "Good, push up!"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !resp.Success {
		t.Errorf("plugin did not see the request on stdin: %s", resp.Error)
	}
}

func TestExecutor_Execute_Failures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		timeout time.Duration
		wantErr string
	}{
		{"non-zero exit", "echo boom >&2\nexit 3", time.Second, "boom"},
		{"bad json", "echo not-json", time.Second, "failed to parse plugin response"},
		{"timeout", "sleep 5", 100 * time.Millisecond, "timed out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := scriptPlugin(t, tt.script)
			_, err := NewExecutor(tt.timeout).Execute(context.Background(), p, &Request{})
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestExecutor_Execute_MissingExecutable(t *testing.T) {
	p := &Plugin{Manifest: Manifest{Name: "ghost"}, Path: t.TempDir(), Executable: "/nonexistent/ghost"}
	if _, err := NewExecutor(0).Execute(context.Background(), p, &Request{}); err == nil {
		t.Error("expected an error for a missing executable")
	}
}
