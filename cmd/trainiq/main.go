package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/trainiq/internal/analysis"
	"github.com/ayusman/trainiq/internal/app"
	"github.com/ayusman/trainiq/internal/capture"
	"github.com/ayusman/trainiq/internal/config"
	"github.com/ayusman/trainiq/internal/cue"
	"github.com/ayusman/trainiq/internal/detector"
	"github.com/ayusman/trainiq/internal/exercisedb"
	"github.com/ayusman/trainiq/internal/mcp"
	"github.com/ayusman/trainiq/internal/pose"
	"github.com/ayusman/trainiq/internal/server"
	"github.com/ayusman/trainiq/internal/store"
	"github.com/ayusman/trainiq/internal/tray"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const (
	shutdownTimeout = 5 * time.Second
	pluginTimeout   = 5 * time.Second
	// demoCycleSteps is the number of frames per synthetic squat in mock mode.
	demoCycleSteps = 30
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to config file")
	mcpMode := flag.Bool("mcp", false, "serve MCP tools on stdin/stdout")
	noTray := flag.Bool("no-tray", false, "run without the system tray menu")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("trainiq", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	log := cfg.Logger()
	slog.SetDefault(log)

	if err := run(cfg, *mcpMode, *noTray || *mcpMode, log); err != nil {
		log.Error("trainiq failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, mcpMode, noTray bool, log *slog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.Store.Path, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if n, err := st.Exercises().Seed(); err != nil {
		log.Warn("seeding exercises failed", "error", err)
	} else if n > 0 {
		log.Info("seeded exercise catalogue", "count", n)
	}

	profiles, err := cfg.Profiles()
	if err != nil {
		return err
	}

	camera, det := newCapture(cfg, log)

	var cues *cue.Announcer
	if cfg.Cues.Enabled {
		cues = newAnnouncer(cfg, log)
	}

	trainer, err := app.New(app.Options{
		Analysis:        cfg.Analysis,
		Profiles:        profiles,
		Exercise:        cfg.Exercise,
		Camera:          camera,
		Detector:        det,
		IdleFPS:         cfg.Camera.IdleFPS,
		ActiveFPS:       cfg.Camera.ActiveFPS,
		MotionThreshold: cfg.Camera.MotionThreshold,
		Store:           st,
		Cues:            cues,
		Logger:          log,
	})
	if err != nil {
		return err
	}
	defer trainer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := trainer.Start(ctx); err != nil {
		return err
	}

	srv := server.New(server.Config{
		StaticDir: staticDir(cfg.Server.StaticDir),
		Profiles:  profiles,
		Store:     st,
		Trainer:   trainer,
		Search:    exercisedb.NewClient(cfg.ExerciseDB.BaseURL, cfg.ExerciseDB.APIKey, cfg.ExerciseDB.Host, cfg.ExerciseDB.Timeout),
		Logger:    log,
	})
	go func() {
		log.Info("starting server", "addr", cfg.Server.Addr, "version", Version)
		if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
			log.Error("server failed", "error", err)
			stop()
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("server shutdown", "error", err)
		}
	}()

	if mcpMode {
		go func() {
			s := mcp.New(mcp.Deps{Profiles: profiles, Trainer: trainer, Store: st}, Version, log)
			if err := mcp.ServeStdio(s); err != nil {
				log.Error("mcp server failed", "error", err)
			}
			stop()
		}()
	}

	if noTray {
		<-ctx.Done()
	} else {
		runTray(ctx, stop, trainer, profiles, dashboardURL(cfg.Server.Addr), log)
	}

	log.Info("shutting down")
	return nil
}

// newCapture picks the frame source and pose detector. Mock mode, or a
// missing pose service, falls back to a synthetic squat on blank frames.
func newCapture(cfg *config.Config, log *slog.Logger) (capture.Camera, detector.Detector) {
	if !cfg.Camera.Mock {
		detCfg := detector.DefaultConfig()
		detCfg.Script = cfg.Camera.PoseScript
		det, err := detector.NewMediaPipeDetector(detCfg)
		if err == nil {
			return capture.NewCamera(capture.Options{
				Device: cfg.Camera.Device,
				Width:  cfg.Camera.Width,
				Height: cfg.Camera.Height,
				FPS:    cfg.Camera.IdleFPS,
				Mirror: cfg.Camera.Mirror,
			}), det
		}
		log.Warn("pose service unavailable, using demo mode", "error", err)
	}

	mock := detector.NewMockDetector()
	mock.SetSequence(pose.SquatCycle(demoCycleSteps)...)
	mock.SetLoop(true)
	return capture.NewBlankCamera(cfg.Camera.Width, cfg.Camera.Height), mock
}

func newAnnouncer(cfg *config.Config, log *slog.Logger) *cue.Announcer {
	mgr := cue.NewManager(cfg.Cues.PluginDir, log)
	if err := mgr.Discover(); err != nil {
		log.Warn("discovering cue plugins", "dir", cfg.Cues.PluginDir, "error", err)
	}
	for _, p := range mgr.List() {
		log.Info("cue plugin loaded", "name", p.Manifest.Name, "version", p.Manifest.Version)
	}

	sink := &cue.PluginSink{Manager: mgr, Executor: cue.NewExecutor(pluginTimeout), Log: log}
	return cue.NewAnnouncer(sink, cfg.Cues.Cooldown, log)
}

// runTray blocks on the tray menu until Quit or ctx is done.
func runTray(ctx context.Context, stop context.CancelFunc, trainer *app.Trainer, profiles *analysis.ProfileSet, dashboard string, log *slog.Logger) {
	var items []tray.Exercise
	for _, p := range profiles.All() {
		items = append(items, tray.Exercise{Key: p.Key, Name: p.Name})
	}
	t := tray.New(items, trainer.Profile().Key)

	t.OnToggle(trainer.SetEnabled)
	t.OnExercise(func(key string) {
		if _, err := trainer.SelectExercise(key); err != nil {
			log.Warn("selecting exercise", "exercise", key, "error", err)
		}
	})
	t.OnReset(trainer.ResetSession)
	t.OnDashboard(func() {
		if err := openBrowser(dashboard); err != nil {
			log.Warn("opening dashboard", "url", dashboard, "error", err)
		}
	})
	t.OnQuit(stop)

	results, unsubscribe := trainer.Subscribe()
	go func() {
		defer unsubscribe()
		reps, score := -1, -1
		for {
			select {
			case <-ctx.Done():
				t.Quit()
				return
			case res := <-results:
				if res.Reps != reps || res.Score.Score != score {
					reps, score = res.Reps, res.Score.Score
					t.SetStatus(reps, score)
				}
			}
		}
	}()

	t.Run()
}

// dashboardURL turns a listen address into a browsable URL.
func dashboardURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "trainiq.yaml"
	}
	return filepath.Join(home, ".trainiq", "config.yaml")
}

// staticDir resolves the dashboard directory: the configured path if it
// exists, otherwise the first of a few well-known locations.
func staticDir(configured string) string {
	candidates := []string{configured, "web", "../web", "../../web"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".trainiq", "web"))
	}

	for _, p := range candidates {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
