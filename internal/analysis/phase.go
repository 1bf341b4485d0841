package analysis

import (
	"fmt"
	"math"
	"time"
)

// Phase is a stage of a repetition.
type Phase string

const (
	Standing   Phase = "standing"
	Descending Phase = "descending"
	Bottom     Phase = "bottom"
	Ascending  Phase = "ascending"
)

// Label maps the phase onto the profile's own phase names. Profiles with four
// phases map one to one; three-phase profiles share their middle phase between
// descending and bottom; single-phase profiles always show that phase.
func (p Phase) Label(profile Profile) string {
	idx := map[Phase]int{Standing: 0, Descending: 1, Bottom: 2, Ascending: 3}[p]

	switch n := len(profile.Phases); {
	case n == 0:
		return string(p)
	case n == 1:
		return profile.Phases[0]
	case n == 3:
		return profile.Phases[[]int{0, 1, 1, 2}[idx]]
	case idx < n:
		return profile.Phases[idx]
	default:
		return profile.Phases[n-1]
	}
}

// PhaseConfig holds the thresholds of the repetition state machine. Angles
// are in degrees of the profile's primary joint.
type PhaseConfig struct {
	// Upper: below it the athlete leaves the top position, above it a rep ends.
	Upper float64 `yaml:"upper" json:"upper"`
	// Lower: below it the bottom of the movement is reached.
	Lower float64 `yaml:"lower" json:"lower"`
	// Mid: above it the athlete is on the way back up.
	Mid float64 `yaml:"mid" json:"mid"`
	// Deep: the angle at which depth is rated best.
	Deep float64 `yaml:"deep" json:"deep"`

	MinDwell     time.Duration `yaml:"min_dwell" json:"minDwell"`
	BottomDwell  time.Duration `yaml:"bottom_dwell" json:"bottomDwell"`
	StallTimeout time.Duration `yaml:"stall_timeout" json:"stallTimeout"`
}

// DefaultPhaseConfig returns thresholds tuned on knee-dominant movements.
func DefaultPhaseConfig() PhaseConfig {
	return PhaseConfig{
		Upper:        160,
		Lower:        120,
		Mid:          130,
		Deep:         100,
		MinDwell:     500 * time.Millisecond,
		BottomDwell:  300 * time.Millisecond,
		StallTimeout: 10 * time.Second,
	}
}

// Validate checks the thresholds are ordered Deep <= Lower < Mid < Upper.
func (c PhaseConfig) Validate() error {
	if !(c.Lower < c.Mid && c.Mid < c.Upper) {
		return fmt.Errorf("%w: thresholds must satisfy lower < mid < upper (got %v, %v, %v)",
			ErrInvalidProfile, c.Lower, c.Mid, c.Upper)
	}
	if c.Deep > c.Lower {
		return fmt.Errorf("%w: deep (%v) must not exceed lower (%v)", ErrInvalidProfile, c.Deep, c.Lower)
	}
	if c.MinDwell < 0 || c.BottomDwell < 0 || c.StallTimeout < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidProfile)
	}
	return nil
}

// PhaseOverrides changes selected thresholds; nil fields keep the base value.
type PhaseOverrides struct {
	Upper        *float64       `yaml:"upper"`
	Lower        *float64       `yaml:"lower"`
	Mid          *float64       `yaml:"mid"`
	Deep         *float64       `yaml:"deep"`
	MinDwell     *time.Duration `yaml:"min_dwell"`
	BottomDwell  *time.Duration `yaml:"bottom_dwell"`
	StallTimeout *time.Duration `yaml:"stall_timeout"`
}

// Apply returns base with the set overrides applied.
func (o *PhaseOverrides) Apply(base PhaseConfig) PhaseConfig {
	if o == nil {
		return base
	}
	if o.Upper != nil {
		base.Upper = *o.Upper
	}
	if o.Lower != nil {
		base.Lower = *o.Lower
	}
	if o.Mid != nil {
		base.Mid = *o.Mid
	}
	if o.Deep != nil {
		base.Deep = *o.Deep
	}
	if o.MinDwell != nil {
		base.MinDwell = *o.MinDwell
	}
	if o.BottomDwell != nil {
		base.BottomDwell = *o.BottomDwell
	}
	if o.StallTimeout != nil {
		base.StallTimeout = *o.StallTimeout
	}
	return base
}

// Coaching cues emitted on phase transitions.
const (
	CueDescending = "Good, keep going down"
	CueAscending  = "Good, push up!"
	CueStalled    = "Rep reset, stand up to start again"
)

// Transition describes what a single update did to the tracker.
type Transition struct {
	From       Phase  `json:"from"`
	To         Phase  `json:"to"`
	Changed    bool   `json:"changed"`
	RepDelta   int    `json:"repDelta"`
	Cue        string `json:"cue,omitempty"`
	DepthScore int    `json:"depthScore,omitempty"`
	Stalled    bool   `json:"stalled,omitempty"`
}

// PhaseTracker is the repetition state machine. The zero value starts in
// Standing and begins its dwell clock on the first usable sample. It holds no
// references, so copying a tracker copies its whole state.
type PhaseTracker struct {
	Phase      Phase     `json:"phase"`
	Reps       int       `json:"reps"`
	LastChange time.Time `json:"lastChange"`
	// Deepest is the smallest primary angle seen in the current rep.
	Deepest float64 `json:"deepest"`
}

// DetectPhase advances the tracker by one primary-angle sample and reports
// the transition, if any. ok=false marks a frame without usable landmarks:
// the tracker is returned unchanged.
func DetectPhase(t PhaseTracker, cfg PhaseConfig, angle float64, ok bool, now time.Time) (PhaseTracker, Transition) {
	tr := t.Update(cfg, angle, ok, now)
	return t, tr
}

// Update is the in-place form of DetectPhase.
func (t *PhaseTracker) Update(cfg PhaseConfig, angle float64, ok bool, now time.Time) Transition {
	if t.Phase == "" {
		t.Phase = Standing
	}
	tr := Transition{From: t.Phase, To: t.Phase}
	if !ok {
		return tr
	}
	if t.LastChange.IsZero() {
		t.LastChange = now
		t.Deepest = angle
	}

	dwell := now.Sub(t.LastChange)
	if t.Phase != Standing {
		t.Deepest = math.Min(t.Deepest, angle)
	}

	if t.Phase != Standing && cfg.StallTimeout > 0 && dwell >= cfg.StallTimeout {
		t.move(Standing, now, &tr)
		tr.Cue = CueStalled
		tr.Stalled = true
		return tr
	}

	switch t.Phase {
	case Standing:
		if angle < cfg.Upper && dwell >= cfg.MinDwell {
			t.move(Descending, now, &tr)
			t.Deepest = angle
			tr.Cue = CueDescending
		}
	case Descending:
		if angle < cfg.Lower {
			t.move(Bottom, now, &tr)
			tr.Cue, tr.DepthScore = DepthCue(angle, cfg)
		}
	case Bottom:
		if angle > cfg.Mid && dwell >= cfg.BottomDwell {
			t.move(Ascending, now, &tr)
			tr.Cue = CueAscending
		}
	case Ascending:
		if angle > cfg.Upper && dwell >= cfg.MinDwell {
			t.move(Standing, now, &tr)
			t.Reps++
			tr.RepDelta = 1
			tr.Cue = fmt.Sprintf("Rep %d completed!", t.Reps)
			_, tr.DepthScore = DepthCue(t.Deepest, cfg)
		}
	}
	return tr
}

func (t *PhaseTracker) move(to Phase, now time.Time, tr *Transition) {
	t.Phase = to
	t.LastChange = now
	tr.To = to
	tr.Changed = true
}

// DepthCue rates how deep the movement went relative to cfg.Deep.
func DepthCue(angle float64, cfg PhaseConfig) (string, int) {
	switch {
	case angle < cfg.Deep:
		return "Excellent depth!", 95
	case angle < cfg.Deep+20:
		return "Perfect form!", 85
	case angle < cfg.Deep+40:
		return "Good, try to go deeper", 70
	default:
		return "Good depth!", 50
	}
}

// Progress is the range of motion covered, 0 at cfg.Upper and 100 at cfg.Deep.
func Progress(angle float64, cfg PhaseConfig) int {
	span := cfg.Upper - cfg.Deep
	if span <= 0 {
		return 0
	}
	p := (cfg.Upper - angle) / span * 100
	return int(math.Round(math.Max(0, math.Min(100, p))))
}
