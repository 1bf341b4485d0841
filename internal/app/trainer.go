// Package app runs the TrainIQ training loop: camera frames in, pose
// analysis, cues and workout records out.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/trainiq/internal/analysis"
	"github.com/ayusman/trainiq/internal/capture"
	"github.com/ayusman/trainiq/internal/cue"
	"github.com/ayusman/trainiq/internal/detector"
	"github.com/ayusman/trainiq/internal/overlay"
	"github.com/ayusman/trainiq/internal/pose"
	"github.com/ayusman/trainiq/internal/store"
)

// Loop constants.
const (
	// IdleAfter is how long without motion or a person before dropping to the idle frame rate.
	IdleAfter = 2 * time.Second
	// JPEGQuality is used for preview frames.
	JPEGQuality = 80
	// subscriberBuffer is the per-subscriber backlog before results are dropped.
	subscriberBuffer = 8
)

// ErrUnknownExercise is returned when no profile matches an exercise name.
var ErrUnknownExercise = errors.New("unknown exercise")

// Options wires a Trainer.
type Options struct {
	Analysis analysis.Config
	Profiles *analysis.ProfileSet
	Exercise string

	Camera          capture.Camera
	Detector        detector.Detector
	IdleFPS         int
	ActiveFPS       int
	MotionThreshold float64

	// Store is optional; without it sessions are not recorded.
	Store *store.Store
	// Cues is optional; without it cues are not announced.
	Cues *cue.Announcer

	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Stats describes the loop itself, not the workout.
type Stats struct {
	Frames      int64     `json:"frames"`
	Detected    int64     `json:"detected"`
	Discarded   int64     `json:"discarded"`
	Errors      int64     `json:"errors"`
	FPS         int       `json:"fps"`
	Active      bool      `json:"active"`
	Enabled     bool      `json:"enabled"`
	Running     bool      `json:"running"`
	Subscribers int       `json:"subscribers"`
	StartedAt   time.Time `json:"startedAt"`
}

// Trainer owns the camera, the detector and the analysis state of the
// current session.
type Trainer struct {
	cfg      analysis.Config
	profiles *analysis.ProfileSet
	camera   capture.Camera
	detector detector.Detector
	motion   *capture.MotionDetector
	gate     *capture.RateGate
	recorder *Recorder
	cues     *cue.Announcer
	log      *slog.Logger
	now      func() time.Time

	mu      sync.RWMutex
	state   analysis.State
	epoch   uint64
	enabled bool
	jpeg    []byte
	stats   Stats
	subs    map[chan analysis.FrameResult]struct{}
	cancel  context.CancelFunc
	done    chan struct{}
}

// New builds a Trainer for opts.Exercise. The exercise may be a profile key
// or a free-form name such as "Goblet Squat".
func New(opts Options) (*Trainer, error) {
	if opts.Camera == nil || opts.Detector == nil {
		return nil, errors.New("app: camera and detector are required")
	}
	if opts.Profiles == nil {
		opts.Profiles = analysis.DefaultProfiles()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MotionThreshold <= 0 {
		opts.MotionThreshold = 1.0
	}

	t := &Trainer{
		cfg:      opts.Analysis,
		profiles: opts.Profiles,
		camera:   opts.Camera,
		detector: opts.Detector,
		motion:   capture.NewMotionDetector(opts.MotionThreshold),
		gate:     capture.NewRateGate(opts.IdleFPS, opts.ActiveFPS, IdleAfter),
		cues:     opts.Cues,
		log:      opts.Logger,
		now:      opts.Now,
		enabled:  true,
		subs:     make(map[chan analysis.FrameResult]struct{}),
	}
	if opts.Store != nil {
		t.recorder = NewRecorder(opts.Store, opts.Logger)
	}

	profile, err := t.resolve(opts.Exercise)
	if err != nil {
		return nil, err
	}
	now := t.now()
	t.state = analysis.NewState(profile, t.cfg, now)
	t.stats.StartedAt = now
	return t, nil
}

func (t *Trainer) resolve(name string) (analysis.Profile, error) {
	if p, ok := t.profiles.Lookup(name); ok {
		return p, nil
	}
	if key, ok := analysis.MatchProfile(name); ok {
		if p, ok := t.profiles.Lookup(key); ok {
			return p, nil
		}
	}
	return analysis.Profile{}, fmt.Errorf("%w: %q", ErrUnknownExercise, name)
}

// Start opens the camera and runs the loop until ctx is done or Stop is called.
func (t *Trainer) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return nil
	}
	if err := t.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	t.camera.SetFPS(t.gate.FPS())

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.run(ctx, t.done)
	if t.cues != nil {
		go t.cues.Run(ctx)
	}

	t.log.Info("trainer started", "exercise", t.state.Profile.Key, "fps", t.gate.FPS())
	return nil
}

// Stop halts the loop, closes the camera and records the open session.
// A frame still being analysed when Stop is called is discarded.
func (t *Trainer) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	if err := t.camera.Close(); err != nil {
		t.log.Warn("closing camera", "error", err)
	}
	t.mu.Lock()
	t.finishSessionLocked()
	t.mu.Unlock()
	t.log.Info("trainer stopped")
}

// Close stops the loop and releases the detector.
func (t *Trainer) Close() error {
	t.Stop()
	t.motion.Close()
	return t.detector.Close()
}

func (t *Trainer) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	interval := t.gate.Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !t.IsEnabled() {
			continue
		}
		t.step(ctx)

		if next := t.gate.Interval(); next != interval {
			interval = next
			ticker.Reset(interval)
		}
	}
}

func (t *Trainer) step(ctx context.Context) {
	frame, err := t.camera.ReadFrame()
	if err != nil {
		t.countError()
		t.log.Debug("reading frame", "error", err)
		return
	}
	defer frame.Close()

	t.HandleFrame(ctx, frame)
}

// HandleFrame runs one camera frame through motion gating, pose detection and
// analysis, then renders the preview. It reports false when the frame was
// dropped, either because detection failed or because the session changed
// or the loop stopped while the frame was being analysed.
func (t *Trainer) HandleFrame(ctx context.Context, frame *gocv.Mat) (analysis.FrameResult, bool) {
	moved, _ := t.motion.Detect(frame)
	epoch := t.currentEpoch()

	p, err := t.detector.Detect(frame)
	if err != nil {
		t.countError()
		t.log.Warn("pose detection failed", "error", err)
		return analysis.FrameResult{}, false
	}
	if ctx.Err() != nil {
		t.discard()
		return analysis.FrameResult{}, false
	}

	res, ok := t.apply(p, t.now(), epoch)
	if !ok {
		return res, false
	}

	if fps, changed := t.gate.Observe(moved || p != nil, res.Timestamp); changed {
		t.camera.SetFPS(fps)
		t.mu.Lock()
		t.stats.FPS, t.stats.Active = fps, t.gate.Active()
		t.mu.Unlock()
		t.log.Debug("frame rate changed", "fps", fps, "active", t.gate.Active())
	}

	overlay.Draw(frame, p, res, t.cfg.Visibility)
	if data, err := capture.EncodeJPEG(frame, JPEGQuality); err == nil {
		t.mu.Lock()
		t.jpeg = data
		t.mu.Unlock()
	}
	return res, true
}

// ProcessPose analyses a pose p observed at now against the current session.
func (t *Trainer) ProcessPose(p *pose.Pose, now time.Time) analysis.FrameResult {
	res, _ := t.apply(p, now, t.currentEpoch())
	return res
}

func (t *Trainer) apply(p *pose.Pose, now time.Time, epoch uint64) (analysis.FrameResult, bool) {
	t.mu.Lock()
	if epoch != t.epoch {
		t.stats.Discarded++
		t.mu.Unlock()
		return analysis.FrameResult{}, false
	}

	next, res := analysis.ProcessFrame(t.state, p, now, t.cfg)
	t.state = next
	t.stats.Frames++
	if res.Detected {
		t.stats.Detected++
	}
	if t.recorder != nil {
		t.recorder.Observe(res)
	}
	subs := make([]chan analysis.FrameResult, 0, len(t.subs))
	for ch := range t.subs {
		subs = append(subs, ch)
	}
	t.mu.Unlock()

	if res.Transition != nil && res.Transition.RepDelta > 0 {
		t.log.Info("rep completed", "exercise", res.Exercise, "reps", res.Reps, "score", res.Score.Score)
	}
	if t.cues != nil {
		t.cues.Observe(res)
	}
	for _, ch := range subs {
		select {
		case ch <- res:
		default:
		}
	}
	return res, true
}

// SelectExercise records the current session and starts a new one for name.
func (t *Trainer) SelectExercise(name string) (analysis.Profile, error) {
	profile, err := t.resolve(name)
	if err != nil {
		return analysis.Profile{}, err
	}

	t.mu.Lock()
	t.finishSessionLocked()
	t.state = analysis.NewState(profile, t.cfg, t.now())
	t.epoch++
	t.mu.Unlock()

	if t.cues != nil {
		t.cues.Reset()
	}
	t.log.Info("exercise selected", "exercise", profile.Key)
	return profile, nil
}

// ResetSession records the current session and starts over with the same exercise.
func (t *Trainer) ResetSession() {
	t.mu.Lock()
	t.finishSessionLocked()
	t.state = t.state.Reset(t.cfg, t.now())
	t.epoch++
	t.mu.Unlock()

	if t.cues != nil {
		t.cues.Reset()
	}
	t.log.Info("session reset")
}

// finishSessionLocked records the open session. t.mu must be held, which
// keeps reps of the next session out of it.
func (t *Trainer) finishSessionLocked() {
	if t.recorder == nil {
		return
	}
	t.recorder.Finish(t.state.Profile.Key, t.state.Stats, t.now())
}

// Subscribe returns a channel of frame results and a function that ends the
// subscription. Results are dropped for subscribers that fall behind.
func (t *Trainer) Subscribe() (<-chan analysis.FrameResult, func()) {
	ch := make(chan analysis.FrameResult, subscriberBuffer)

	t.mu.Lock()
	t.subs[ch] = struct{}{}
	t.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, ch)
			t.mu.Unlock()
		})
	}
}

// Snapshot returns a deep copy of the session state.
func (t *Trainer) Snapshot() analysis.State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Snapshot()
}

// Summary is the live session as shown to users.
type Summary struct {
	Profile     analysis.Profile      `json:"profile"`
	Phase       analysis.Phase        `json:"phase"`
	PhaseLabel  string                `json:"phaseLabel"`
	Reps        int                   `json:"reps"`
	Consistency int                   `json:"consistency"`
	Stats       analysis.SessionStats `json:"stats"`
	Last        analysis.FrameResult  `json:"last"`
	Enabled     bool                  `json:"enabled"`
}

// Summary returns the live session.
func (t *Trainer) Summary() Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.state.Snapshot()
	return Summary{
		Profile:     s.Profile,
		Phase:       s.Tracker.Phase,
		PhaseLabel:  s.Tracker.Phase.Label(s.Profile),
		Reps:        s.Tracker.Reps,
		Consistency: s.Consistency,
		Stats:       s.Stats,
		Last:        s.Last,
		Enabled:     t.enabled,
	}
}

// LastResult returns the most recent frame result.
func (t *Trainer) LastResult() analysis.FrameResult {
	return t.Snapshot().Last
}

// Profile returns the active exercise profile.
func (t *Trainer) Profile() analysis.Profile {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Profile.Clone()
}

// Profiles returns the profile set exercises are chosen from.
func (t *Trainer) Profiles() *analysis.ProfileSet {
	return t.profiles
}

// LatestJPEG returns the last annotated preview frame, or nil before the first.
func (t *Trainer) LatestJPEG() []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.jpeg
}

// SetEnabled pauses or resumes analysis without closing the camera.
func (t *Trainer) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

// IsEnabled reports whether analysis is running.
func (t *Trainer) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Stats returns loop counters.
func (t *Trainer) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.stats
	if s.FPS == 0 {
		s.FPS = t.gate.IdleFPS
	}
	s.Enabled = t.enabled
	s.Running = t.cancel != nil
	s.Subscribers = len(t.subs)
	return s
}

func (t *Trainer) currentEpoch() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.epoch
}

func (t *Trainer) countError() {
	t.mu.Lock()
	t.stats.Errors++
	t.mu.Unlock()
}

func (t *Trainer) discard() {
	t.mu.Lock()
	t.stats.Discarded++
	t.mu.Unlock()
}
