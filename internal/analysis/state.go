package analysis

import (
	"maps"
	"math"
	"slices"
	"time"

	"github.com/ayusman/trainiq/internal/pose"
)

const (
	maxTraces     = 50
	maxTraceLen   = 600
	holdSampleGap = time.Second
)

// Config tunes frame analysis.
type Config struct {
	Alpha       float64     `yaml:"alpha" json:"alpha"`
	Visibility  float64     `yaml:"visibility" json:"visibility"`
	HistorySize int         `yaml:"history_size" json:"historySize"`
	Phase       PhaseConfig `yaml:"phase" json:"phase"`
}

// DefaultConfig returns the default analysis configuration.
func DefaultConfig() Config {
	return Config{
		Alpha:       DefaultAlpha,
		Visibility:  pose.DefaultVisibility,
		HistorySize: DefaultHistorySize,
		Phase:       DefaultPhaseConfig(),
	}
}

// State is everything carried from one frame to the next for a session.
// ProcessFrame never modifies the State it is given.
type State struct {
	Profile  Profile
	Smoothed AngleSample
	History  *History
	Tracker  PhaseTracker
	Stats    SessionStats
	Traces   []Trace
	Last     FrameResult

	// Consistency is the rep consistency score as of the last completed rep.
	Consistency int

	// per-rep accumulation, reset on every rep boundary
	repSum    float64
	repFrames int
	repTrace  Trace
	lastHold  time.Time
}

// FrameResult is what one frame produced, ready to show or broadcast.
type FrameResult struct {
	Timestamp   time.Time    `json:"timestamp"`
	Exercise    string       `json:"exercise"`
	Detected    bool         `json:"detected"`
	Angles      AngleSample  `json:"angles"`
	Score       ScoreResult  `json:"score"`
	Phase       Phase        `json:"phase"`
	PhaseLabel  string       `json:"phaseLabel"`
	Transition  *Transition  `json:"transition,omitempty"`
	Reps        int          `json:"reps"`
	Progress    int          `json:"progress"`
	Consistency int          `json:"consistency"`
	Stats       SessionStats `json:"stats"`
}

// NewState starts a fresh session for profile at now.
func NewState(profile Profile, cfg Config, now time.Time) State {
	return State{
		Profile:  profile.Clone(),
		Smoothed: AngleSample{},
		History:  NewHistory(cfg.HistorySize),
		Tracker:  PhaseTracker{Phase: Standing},
		Stats:    ResetSession(now),

		Consistency: 100,
	}
}

// Reset clears the session but keeps the profile.
func (s State) Reset(cfg Config, now time.Time) State {
	return NewState(s.Profile, cfg, now)
}

// Snapshot returns a deep copy that shares nothing with s.
func (s State) Snapshot() State {
	c := s
	c.Profile = s.Profile.Clone()
	c.Smoothed = s.Smoothed.Clone()
	c.History = s.History.Clone()
	c.Stats.RepScores = slices.Clone(s.Stats.RepScores)
	c.Traces = make([]Trace, len(s.Traces))
	for i, t := range s.Traces {
		c.Traces[i] = slices.Clone(t)
	}
	c.repTrace = slices.Clone(s.repTrace)
	c.Last = s.Last.clone()
	return c
}

// advance copies the parts of s the next frame writes to. Completed traces,
// history entries and the profile are never modified once stored and stay
// shared.
func (s State) advance() State {
	c := s
	c.History = s.History.fork()
	c.Traces = slices.Clip(s.Traces)
	c.repTrace = slices.Clip(s.repTrace)
	return c
}

func (r FrameResult) clone() FrameResult {
	r.Angles = r.Angles.Clone()
	r.Score.Feedback = slices.Clone(r.Score.Feedback)
	r.Score.Joints = maps.Clone(r.Score.Joints)
	if r.Transition != nil {
		t := *r.Transition
		r.Transition = &t
	}
	r.Stats.RepScores = slices.Clone(r.Stats.RepScores)
	return r
}

// ProcessFrame analyses one pose p observed at now and returns the next state
// with the frame's result. A nil pose means nobody is in view: the score is
// 0, the phase is held and nothing is added to the history.
func ProcessFrame(s State, p *pose.Pose, now time.Time, cfg Config) (State, FrameResult) {
	next := s.advance()
	if next.History == nil {
		next.History = NewHistory(cfg.HistorySize)
	}
	if next.Stats.StartedAt.IsZero() {
		next.Stats = ResetSession(now)
	}
	phaseCfg := next.Profile.PhaseConfig(cfg.Phase)

	raw := ExtractAngles(p, cfg.Visibility)
	next.Smoothed = Smooth(raw, s.Smoothed, cfg.Alpha)
	current := next.Smoothed.Only(raw)
	score := Score(current, next.Profile)

	res := FrameResult{
		Timestamp: now,
		Exercise:  next.Profile.Key,
		Detected:  len(raw) > 0,
		Angles:    current,
		Score:     score,
	}

	primary, ok := current.Mean(next.Profile.Primary...)
	repDone := false
	if next.Profile.Counted() {
		tr := next.Tracker.Update(phaseCfg, primary, ok, now)
		if tr.Changed {
			res.Transition = &tr
		}
		if ok && (next.Tracker.Phase != Standing || tr.Changed) {
			next.repSum += float64(score.Score)
			next.repFrames++
			if len(next.repTrace) < maxTraceLen {
				next.repTrace = append(next.repTrace, primary)
			}
		}
		switch {
		case tr.RepDelta > 0:
			repDone = true
		case tr.Stalled:
			next.clearRep()
		}
		if ok {
			res.Progress = Progress(primary, phaseCfg)
		}
	}

	if repDone {
		repScore := score.Score
		if next.repFrames > 0 {
			repScore = int(math.Round(next.repSum / float64(next.repFrames)))
		}
		next.Stats = UpdateSessionStats(next.Stats, repScore, false, true, now, next.Profile)
		next.Traces = append(next.Traces, next.repTrace)
		if len(next.Traces) > maxTraces {
			next.Traces = next.Traces[len(next.Traces)-maxTraces:]
		}
		next.Consistency = Consistency(next.Traces)
		next.clearRep()
	} else {
		holdSample := !next.Profile.Counted() && len(score.Joints) > 0 &&
			now.Sub(next.lastHold) >= holdSampleGap
		if holdSample {
			next.lastHold = now
		}
		next.Stats = UpdateSessionStats(next.Stats, score.Score, holdSample, false, now, next.Profile)
	}

	if res.Detected {
		entry := HistoryEntry{
			Timestamp: now,
			Angles:    current.Clone(),
			Velocity:  map[Joint]float64{},
			Phase:     next.Tracker.Phase,
		}
		if last, ok := next.History.Last(); ok {
			entry.Velocity = Velocity(last.Angles, current, now.Sub(last.Timestamp))
		}
		next.History.Push(entry)
	}

	res.Phase = next.Tracker.Phase
	res.PhaseLabel = next.Tracker.Phase.Label(next.Profile)
	res.Reps = next.Stats.TotalReps
	res.Consistency = next.Consistency
	res.Stats = next.Stats
	res.Stats.RepScores = slices.Clone(next.Stats.RepScores)

	next.Last = res.clone()
	return next, res
}

func (s *State) clearRep() {
	s.repSum = 0
	s.repFrames = 0
	s.repTrace = nil
}
