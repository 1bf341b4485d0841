package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trainiq.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "squat", cfg.Exercise)
	assert.Equal(t, 160.0, cfg.Analysis.Phase.Upper)
	assert.Equal(t, 500*time.Millisecond, cfg.Analysis.Phase.MinDwell)
	assert.True(t, cfg.Camera.Mirror)
	assert.Equal(t, 1.0, cfg.Camera.MotionThreshold, "threshold is a percentage of changed pixels")
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
exercise: pushup
analysis:
  alpha: 0.3
  phase:
    min_dwell: 400ms
    stall_timeout: 0s
camera:
  device: 2
  mirror: false
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	if cfg.Server.Addr != ":9090" {
		t.Errorf("server.addr = %q, want %q", cfg.Server.Addr, ":9090")
	}
	assert.Equal(t, "pushup", cfg.Exercise)
	assert.Equal(t, 0.3, cfg.Analysis.Alpha)
	assert.Equal(t, 400*time.Millisecond, cfg.Analysis.Phase.MinDwell)
	assert.Zero(t, cfg.Analysis.Phase.StallTimeout)
	assert.Equal(t, 120.0, cfg.Analysis.Phase.Lower, "unset fields keep their default")
	assert.Equal(t, 2, cfg.Camera.Device)
	assert.False(t, cfg.Camera.Mirror)
	assert.Equal(t, 640, cfg.Camera.Width)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "exercise: pushup\n")
	t.Setenv("TRAINIQ_EXERCISE", "lunge")
	t.Setenv("TRAINIQ_SERVER_ADDR", "127.0.0.1:7000")
	t.Setenv("TRAINIQ_CAMERA_DEVICE", "3")
	t.Setenv("TRAINIQ_CAMERA_MOCK", "true")
	t.Setenv("TRAINIQ_POSE_SCRIPT", "/opt/trainiq/pose_service.py")
	t.Setenv("TRAINIQ_EXERCISEDB_API_KEY", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "lunge", cfg.Exercise)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Camera.Device)
	assert.True(t, cfg.Camera.Mock)
	assert.Equal(t, "/opt/trainiq/pose_service.py", cfg.Camera.PoseScript)
	assert.Equal(t, "secret", cfg.ExerciseDB.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "server: [\n"},
		{"alpha out of range", "analysis:\n  alpha: 1.5\n"},
		{"thresholds out of order", "analysis:\n  phase:\n    mid: 170\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"bad log level", "log:\n  level: loud\n"},
		{"zero fps", "camera:\n  fps_active: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestConfig_Profiles(t *testing.T) {
	t.Run("built-in only", func(t *testing.T) {
		set, err := Default().Profiles()
		require.NoError(t, err)
		_, ok := set.Lookup("squat")
		assert.True(t, ok)
	})

	t.Run("merges profiles file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profiles.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
profiles:
  - key: wallSit
    name: Wall Sit
    phases: [hold]
    targets:
      - {joint: leftKnee, min: 85, max: 95, ideal: 90}
`), 0o644))

		cfg := Default()
		cfg.ProfilesFile = path
		set, err := cfg.Profiles()
		require.NoError(t, err)

		p, ok := set.Lookup("wallSit")
		require.True(t, ok)
		assert.Equal(t, "Wall Sit", p.Name)
	})

	t.Run("missing profiles file", func(t *testing.T) {
		cfg := Default()
		cfg.ProfilesFile = filepath.Join(t.TempDir(), "nope.yaml")
		_, err := cfg.Profiles()
		assert.Error(t, err)
	})
}

func TestConfig_Logger(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "debug"
	assert.NotNil(t, cfg.Logger())
}
