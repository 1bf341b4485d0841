package cue

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writePlugin(t *testing.T, dir, name, manifest string) string {
	t.Helper()
	pluginDir := filepath.Join(dir, name)
	if err := os.MkdirAll(pluginDir, 0o755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), []byte(manifest), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return pluginDir
}

func TestManager_Discover(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "speak", `{"name":"speak","version":"1.0.0","executable":"speak","events":["phase","rep"]}`)
	writePlugin(t, dir, "beep", `{"name":"beep","version":"0.1.0","executable":"beep.sh"}`)
	writePlugin(t, dir, "broken", `{not json`)
	writePlugin(t, dir, "nameless", `{"executable":"x"}`)
	if err := os.MkdirAll(filepath.Join(dir, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dir, nil)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	list := m.List()
	if len(list) != 2 {
		t.Fatalf("List() returned %d plugins, want 2", len(list))
	}
	if list[0].Manifest.Name != "beep" || list[1].Manifest.Name != "speak" {
		t.Errorf("List() order = %s, %s; want beep, speak", list[0].Manifest.Name, list[1].Manifest.Name)
	}

	p, err := m.Get("speak")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if want := filepath.Join(dir, "speak", "speak"); p.Executable != want {
		t.Errorf("Executable = %q, want %q", p.Executable, want)
	}
	if !p.Manifest.Wants(EventRep) || p.Manifest.Wants(EventStall) {
		t.Errorf("Wants() does not follow the events list: %v", p.Manifest.Events)
	}

	beep, _ := m.Get("beep")
	if !beep.Manifest.Wants(EventStall) {
		t.Error("a plugin without events should want everything")
	}
}

func TestManager_Get_NotFound(t *testing.T) {
	m := NewManager(t.TempDir(), nil)
	if _, err := m.Get("missing"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Get() error = %v, want ErrPluginNotFound", err)
	}
}

func TestManager_Discover_MissingDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "nope"), nil)
	if err := m.Discover(); err != nil {
		t.Errorf("Discover() on missing dir error = %v, want nil", err)
	}
	if len(m.List()) != 0 {
		t.Error("expected no plugins")
	}
}

func TestManager_Discover_Rescan(t *testing.T) {
	dir := t.TempDir()
	speak := writePlugin(t, dir, "speak", `{"name":"speak","executable":"speak"}`)

	m := NewManager(dir, nil)
	if err := m.Discover(); err != nil {
		t.Fatal(err)
	}
	if len(m.List()) != 1 {
		t.Fatalf("expected 1 plugin")
	}

	if err := os.RemoveAll(speak); err != nil {
		t.Fatal(err)
	}
	if err := m.Discover(); err != nil {
		t.Fatal(err)
	}
	if len(m.List()) != 0 {
		t.Error("removed plugin should disappear after rescan")
	}
	if m.PluginDir() != dir {
		t.Errorf("PluginDir() = %q, want %q", m.PluginDir(), dir)
	}
}
