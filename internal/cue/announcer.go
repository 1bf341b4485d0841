package cue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/trainiq/internal/analysis"
)

// Cue kinds, matched against Manifest.Events.
const (
	EventPhase = "phase"
	EventRep   = "rep"
	EventStall = "stall"
)

// DefaultCooldown is how long an identical cue stays muted.
const DefaultCooldown = 2 * time.Second

// Sink receives cues that passed the cooldown.
type Sink interface {
	Deliver(ctx context.Context, req Request)
}

// PluginSink fans a cue out to every discovered plugin that wants it.
type PluginSink struct {
	Manager  *Manager
	Executor *Executor
	Log      *slog.Logger
}

func (s *PluginSink) Deliver(ctx context.Context, req Request) {
	for _, p := range s.Manager.List() {
		if !p.Manifest.Wants(req.Event) {
			continue
		}
		resp, err := s.Executor.Execute(ctx, p, &req)
		switch {
		case err != nil:
			s.Log.Warn("cue plugin failed", "plugin", p.Manifest.Name, "error", err)
		case !resp.Success:
			s.Log.Warn("cue plugin rejected cue", "plugin", p.Manifest.Name, "error", resp.Error)
		}
	}
}

// Milestone returns the celebration for the nth rep, or "" for ordinary reps.
func Milestone(n int) string {
	switch {
	case n == 1:
		return "First rep done! Great start!"
	case n == 5:
		return "5 reps! You're doing amazing!"
	case n == 10:
		return "10 reps! Outstanding! Keep it up!"
	case n > 0 && n%5 == 0:
		return fmt.Sprintf("%d reps! Fantastic work!", n)
	}
	return ""
}

// CueFor picks what to say about a frame, if anything.
func CueFor(res analysis.FrameResult) (Request, bool) {
	tr := res.Transition
	if tr == nil {
		return Request{}, false
	}

	req := Request{Exercise: res.Exercise, Reps: res.Reps, Score: res.Score.Score, Text: tr.Cue}
	switch {
	case tr.RepDelta > 0:
		req.Event = EventRep
		if m := Milestone(res.Reps); m != "" {
			req.Text = m
		}
	case tr.Stalled:
		req.Event = EventStall
	default:
		req.Event = EventPhase
	}
	return req, req.Text != ""
}

// Announcer turns frame results into spoken cues. Identical text is muted
// for the cooldown and only the newest pending cue is kept, so slow speech
// never falls behind the workout.
type Announcer struct {
	sink     Sink
	cooldown time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	last    map[string]time.Time
	pending chan Request
}

// NewAnnouncer creates an Announcer delivering to sink.
func NewAnnouncer(sink Sink, cooldown time.Duration, logger *slog.Logger) *Announcer {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Announcer{
		sink:     sink,
		cooldown: cooldown,
		log:      logger,
		last:     make(map[string]time.Time),
		pending:  make(chan Request, 1),
	}
}

// Observe queues the frame's cue unless the same text was queued within the
// cooldown. It reports whether a cue was queued.
func (a *Announcer) Observe(res analysis.FrameResult) bool {
	req, ok := CueFor(res)
	if !ok {
		return false
	}

	a.mu.Lock()
	if t, seen := a.last[req.Text]; seen && res.Timestamp.Sub(t) < a.cooldown {
		a.mu.Unlock()
		return false
	}
	a.last[req.Text] = res.Timestamp
	a.mu.Unlock()

	for {
		select {
		case a.pending <- req:
			a.log.Debug("cue queued", "event", req.Event, "text", req.Text)
			return true
		default:
		}
		select {
		case dropped := <-a.pending:
			a.log.Debug("cue superseded", "text", dropped.Text)
		default:
		}
	}
}

// Reset forgets cooldowns and drops any pending cue.
func (a *Announcer) Reset() {
	a.mu.Lock()
	a.last = make(map[string]time.Time)
	a.mu.Unlock()

	select {
	case <-a.pending:
	default:
	}
}

// Run delivers queued cues until ctx is done.
func (a *Announcer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-a.pending:
			a.sink.Deliver(ctx, req)
		}
	}
}
