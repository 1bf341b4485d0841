// Package config loads TrainIQ settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/trainiq/internal/analysis"
)

type Config struct {
	Server       ServerConfig     `yaml:"server"`
	Camera       CameraConfig     `yaml:"camera"`
	Analysis     analysis.Config  `yaml:"analysis"`
	Exercise     string           `yaml:"exercise"`
	ProfilesFile string           `yaml:"profiles_file"`
	Store        StoreConfig      `yaml:"store"`
	ExerciseDB   ExerciseDBConfig `yaml:"exercisedb"`
	Cues         CuesConfig       `yaml:"cues"`
	Log          LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

type CameraConfig struct {
	Device          int     `yaml:"device"`
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	IdleFPS         int     `yaml:"fps_idle"`
	ActiveFPS       int     `yaml:"fps_active"`
	MotionThreshold float64 `yaml:"motion_threshold"`
	Mirror          bool    `yaml:"mirror"`
	// Mock replaces the camera and detector with synthetic frames.
	Mock bool `yaml:"mock"`
	// PoseScript is the MediaPipe pose service. Empty searches ./scripts,
	// next to the executable and ~/.trainiq.
	PoseScript string `yaml:"pose_script"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type ExerciseDBConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Host    string        `yaml:"host"`
	Timeout time.Duration `yaml:"timeout"`
}

type CuesConfig struct {
	Enabled   bool          `yaml:"enabled"`
	PluginDir string        `yaml:"plugin_dir"`
	Cooldown  time.Duration `yaml:"cooldown"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".trainiq")

	return &Config{
		Server: ServerConfig{
			Addr:      ":8080",
			StaticDir: "web",
		},
		Camera: CameraConfig{
			Width:           640,
			Height:          480,
			IdleFPS:         5,
			ActiveFPS:       15,
			MotionThreshold: 1.0,
			Mirror:          true,
		},
		Analysis: analysis.DefaultConfig(),
		Exercise: "squat",
		Store: StoreConfig{
			Path: filepath.Join(dataDir, "trainiq.db"),
		},
		ExerciseDB: ExerciseDBConfig{
			BaseURL: "https://gym-fit.p.rapidapi.com",
			Host:    "gym-fit.p.rapidapi.com",
			Timeout: 10 * time.Second,
		},
		Cues: CuesConfig{
			Enabled:   true,
			PluginDir: filepath.Join(dataDir, "plugins"),
			Cooldown:  2 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads config from a YAML file on top of the defaults, then applies
// environment variable overrides. A missing file is not an error.
// Env vars use the prefix TRAINIQ_:
//
//	TRAINIQ_SERVER_ADDR, TRAINIQ_STATIC_DIR,
//	TRAINIQ_CAMERA_DEVICE, TRAINIQ_CAMERA_MIRROR, TRAINIQ_CAMERA_MOCK, TRAINIQ_POSE_SCRIPT,
//	TRAINIQ_EXERCISE, TRAINIQ_PROFILES_FILE, TRAINIQ_STORE_PATH,
//	TRAINIQ_EXERCISEDB_API_KEY, TRAINIQ_EXERCISEDB_BASE_URL,
//	TRAINIQ_CUES_ENABLED, TRAINIQ_CUES_PLUGIN_DIR,
//	TRAINIQ_LOG_LEVEL, TRAINIQ_LOG_FORMAT
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString("TRAINIQ_SERVER_ADDR", &cfg.Server.Addr)
	setString("TRAINIQ_STATIC_DIR", &cfg.Server.StaticDir)
	if v := os.Getenv("TRAINIQ_CAMERA_DEVICE"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			cfg.Camera.Device = id
		}
	}
	setBool("TRAINIQ_CAMERA_MIRROR", &cfg.Camera.Mirror)
	setBool("TRAINIQ_CAMERA_MOCK", &cfg.Camera.Mock)
	setString("TRAINIQ_POSE_SCRIPT", &cfg.Camera.PoseScript)
	setString("TRAINIQ_EXERCISE", &cfg.Exercise)
	setString("TRAINIQ_PROFILES_FILE", &cfg.ProfilesFile)
	setString("TRAINIQ_STORE_PATH", &cfg.Store.Path)
	setString("TRAINIQ_EXERCISEDB_API_KEY", &cfg.ExerciseDB.APIKey)
	setString("TRAINIQ_EXERCISEDB_BASE_URL", &cfg.ExerciseDB.BaseURL)
	setBool("TRAINIQ_CUES_ENABLED", &cfg.Cues.Enabled)
	setString("TRAINIQ_CUES_PLUGIN_DIR", &cfg.Cues.PluginDir)
	setString("TRAINIQ_LOG_LEVEL", &cfg.Log.Level)
	setString("TRAINIQ_LOG_FORMAT", &cfg.Log.Format)
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Camera.IdleFPS <= 0 || c.Camera.ActiveFPS <= 0 {
		return fmt.Errorf("camera fps must be positive")
	}
	if c.Analysis.Alpha <= 0 || c.Analysis.Alpha > 1 {
		return fmt.Errorf("analysis.alpha must be in (0, 1], got %v", c.Analysis.Alpha)
	}
	if c.Analysis.Visibility < 0 || c.Analysis.Visibility > 1 {
		return fmt.Errorf("analysis.visibility must be in [0, 1], got %v", c.Analysis.Visibility)
	}
	if c.Analysis.HistorySize <= 0 {
		return fmt.Errorf("analysis.history_size must be positive")
	}
	if err := c.Analysis.Phase.Validate(); err != nil {
		return fmt.Errorf("analysis.phase: %w", err)
	}
	if c.Exercise == "" {
		return fmt.Errorf("exercise is required")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Profiles returns the built-in exercise profiles merged with ProfilesFile.
func (c *Config) Profiles() (*analysis.ProfileSet, error) {
	set := analysis.DefaultProfiles()
	if c.ProfilesFile == "" {
		return set, nil
	}

	f, err := os.Open(c.ProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("opening profiles file: %w", err)
	}
	defer f.Close()

	profiles, err := analysis.LoadProfiles(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", c.ProfilesFile, err)
	}
	if err := set.Merge(profiles...); err != nil {
		return nil, err
	}
	return set, nil
}

// Logger builds the process logger described by the log section.
func (c *Config) Logger() *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if c.Log.Format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(h)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
