package analysis

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrInvalidProfile is returned when a profile definition is malformed.
var ErrInvalidProfile = errors.New("invalid exercise profile")

// Target is the acceptable angle range of one joint.
type Target struct {
	Joint Joint   `yaml:"joint" json:"joint"`
	Min   float64 `yaml:"min" json:"min"`
	Max   float64 `yaml:"max" json:"max"`
	Ideal float64 `yaml:"ideal" json:"ideal"`
}

// Profile describes how one exercise should look.
type Profile struct {
	Key     string   `yaml:"key" json:"key"`
	Name    string   `yaml:"name" json:"name"`
	Phases  []string `yaml:"phases" json:"phases"`
	Targets []Target `yaml:"targets" json:"targets"`

	// Primary joints drive repetition counting; their mean angle is tracked.
	// Profiles without primary joints are static holds.
	Primary []Joint `yaml:"primary" json:"primary,omitempty"`

	// Thresholds overrides the default phase thresholds for this exercise.
	Thresholds *PhaseOverrides `yaml:"thresholds" json:"-"`

	CaloriesPerRep    float64 `yaml:"calories_per_rep" json:"caloriesPerRep,omitempty"`
	CaloriesPerMinute float64 `yaml:"calories_per_minute" json:"caloriesPerMinute,omitempty"`
	Instructions      string  `yaml:"instructions" json:"instructions,omitempty"`
}

// Target returns the target range for j.
func (p Profile) Target(j Joint) (Target, bool) {
	for _, t := range p.Targets {
		if t.Joint == j {
			return t, true
		}
	}
	return Target{}, false
}

// Counted reports whether the exercise is counted in repetitions.
func (p Profile) Counted() bool {
	return len(p.Primary) > 0
}

// PhaseConfig returns base with the profile's threshold overrides applied.
func (p Profile) PhaseConfig(base PhaseConfig) PhaseConfig {
	return p.Thresholds.Apply(base)
}

// Clone returns a copy sharing no slices with p.
func (p Profile) Clone() Profile {
	p.Phases = slices.Clone(p.Phases)
	p.Targets = slices.Clone(p.Targets)
	p.Primary = slices.Clone(p.Primary)
	if p.Thresholds != nil {
		o := *p.Thresholds
		p.Thresholds = &o
	}
	return p
}

// Validate checks the profile is usable by the scorer and the phase tracker.
func (p Profile) Validate() error {
	if p.Key == "" {
		return fmt.Errorf("%w: missing key", ErrInvalidProfile)
	}
	seen := make(map[Joint]bool, len(p.Targets))
	for _, t := range p.Targets {
		if !t.Joint.Valid() {
			return fmt.Errorf("%w: %s: unknown joint %q", ErrInvalidProfile, p.Key, t.Joint)
		}
		if seen[t.Joint] {
			return fmt.Errorf("%w: %s: duplicate target %q", ErrInvalidProfile, p.Key, t.Joint)
		}
		seen[t.Joint] = true
		if t.Min > t.Max {
			return fmt.Errorf("%w: %s: %s min %v > max %v", ErrInvalidProfile, p.Key, t.Joint, t.Min, t.Max)
		}
		if t.Ideal < t.Min || t.Ideal > t.Max {
			return fmt.Errorf("%w: %s: %s ideal %v outside [%v, %v]", ErrInvalidProfile, p.Key, t.Joint, t.Ideal, t.Min, t.Max)
		}
	}
	for _, j := range p.Primary {
		if !j.Valid() {
			return fmt.Errorf("%w: %s: unknown primary joint %q", ErrInvalidProfile, p.Key, j)
		}
	}
	if p.Counted() {
		if err := p.PhaseConfig(DefaultPhaseConfig()).Validate(); err != nil {
			return fmt.Errorf("%s: %w", p.Key, err)
		}
	}
	return nil
}

func ptr[T any](v T) *T { return &v }

func pair(left, right Joint, lo, hi, ideal float64) []Target {
	return []Target{
		{Joint: left, Min: lo, Max: hi, Ideal: ideal},
		{Joint: right, Min: lo, Max: hi, Ideal: ideal},
	}
}

func targets(groups ...[]Target) []Target {
	return slices.Concat(groups...)
}

var pressThresholds = &PhaseOverrides{
	Upper: ptr(150.0),
	Lower: ptr(110.0),
	Mid:   ptr(120.0),
	Deep:  ptr(90.0),
}

var builtinProfiles = []Profile{
	{
		Key:    "pushup",
		Name:   "Push-ups",
		Phases: []string{"start", "down", "up"},
		Targets: targets(
			pair(LeftElbow, RightElbow, 80, 100, 90),
			pair(LeftShoulder, RightShoulder, 0, 20, 10),
			pair(LeftHip, RightHip, 160, 180, 170),
		),
		Primary:        []Joint{LeftElbow, RightElbow},
		Thresholds:     pressThresholds,
		CaloriesPerRep: 0.36,
		Instructions:   "Keep your body in a straight line from head to heels. Lower until your elbows reach 90 degrees, then press back up.",
	},
	{
		Key:    "squat",
		Name:   "Squats",
		Phases: []string{"start", "down", "hold", "up"},
		Targets: targets(
			pair(LeftKnee, RightKnee, 80, 120, 100),
			pair(LeftHip, RightHip, 80, 120, 100),
			pair(LeftAnkle, RightAnkle, 60, 90, 75),
		),
		Primary:        []Joint{LeftKnee, RightKnee},
		CaloriesPerRep: 0.32,
		Instructions:   "Feet shoulder-width apart. Push your hips back and bend your knees until your thighs are parallel to the floor, then drive up through your heels.",
	},
	{
		Key:    "plank",
		Name:   "Plank",
		Phases: []string{"hold"},
		Targets: targets(
			pair(LeftElbow, RightElbow, 85, 95, 90),
			pair(LeftShoulder, RightShoulder, 0, 10, 5),
			pair(LeftHip, RightHip, 170, 180, 175),
		),
		CaloriesPerMinute: 4,
		Instructions:      "Rest on your forearms with elbows under your shoulders. Keep your hips level and hold a straight line.",
	},
	{
		Key:    "deadlift",
		Name:   "Deadlifts",
		Phases: []string{"start", "down", "lift", "return"},
		Targets: targets(
			pair(LeftHip, RightHip, 100, 140, 120),
			pair(LeftKnee, RightKnee, 60, 100, 80),
			pair(LeftAnkle, RightAnkle, 70, 90, 80),
		),
		Primary: []Joint{LeftHip, RightHip},
		Thresholds: &PhaseOverrides{
			Lower: ptr(130.0),
			Mid:   ptr(140.0),
			Deep:  ptr(110.0),
		},
		CaloriesPerRep: 0.5,
		Instructions:   "Hinge at the hips with a flat back, bar close to your shins. Stand tall by driving your hips forward.",
	},
	{
		Key:    "lunge",
		Name:   "Lunges",
		Phases: []string{"start", "step", "down", "up"},
		Targets: targets(
			pair(LeftHip, RightHip, 80, 120, 100),
			pair(LeftKnee, RightKnee, 80, 120, 100),
		),
		Primary:        []Joint{LeftKnee, RightKnee},
		CaloriesPerRep: 0.3,
		Instructions:   "Step forward and lower until both knees are bent at about 90 degrees. Push back to the starting position.",
	},
	{
		Key:    "benchPress",
		Name:   "Bench Press",
		Phases: []string{"start", "down", "up"},
		Targets: targets(
			pair(LeftElbow, RightElbow, 80, 100, 90),
			pair(LeftShoulder, RightShoulder, 0, 20, 10),
			pair(LeftHip, RightHip, 160, 180, 170),
		),
		Primary:        []Joint{LeftElbow, RightElbow},
		Thresholds:     pressThresholds,
		CaloriesPerRep: 0.4,
		Instructions:   "Lower the bar to mid-chest with elbows at about 45 degrees, then press until your arms are straight.",
	},
}

// ProfileSet is an ordered collection of profiles, safe for concurrent use.
type ProfileSet struct {
	mu    sync.RWMutex
	order []string
	byKey map[string]Profile
}

// NewProfileSet builds a set from the given profiles. Later profiles with the
// same key replace earlier ones but keep their position.
func NewProfileSet(profiles ...Profile) (*ProfileSet, error) {
	s := &ProfileSet{byKey: make(map[string]Profile)}
	if err := s.Merge(profiles...); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultProfiles returns a set holding the built-in profiles.
func DefaultProfiles() *ProfileSet {
	s, err := NewProfileSet(builtinProfiles...)
	if err != nil {
		panic(err)
	}
	return s
}

// Merge validates and adds or replaces profiles.
func (s *ProfileSet) Merge(profiles ...Profile) error {
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range profiles {
		if _, exists := s.byKey[p.Key]; !exists {
			s.order = append(s.order, p.Key)
		}
		s.byKey[p.Key] = p.Clone()
	}
	return nil
}

// Lookup returns a copy of the profile with the given key.
func (s *ProfileSet) Lookup(key string) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byKey[key]
	if !ok {
		return Profile{}, false
	}
	return p.Clone(), true
}

// Keys returns profile keys in insertion order.
func (s *ProfileSet) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// All returns copies of every profile in insertion order.
func (s *ProfileSet) All() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Profile, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.byKey[k].Clone())
	}
	return out
}

var defaults = DefaultProfiles()

// LookupProfile returns a built-in profile by key.
func LookupProfile(key string) (Profile, bool) {
	return defaults.Lookup(key)
}

// ProfileKeys returns the built-in profile keys in a stable order.
func ProfileKeys() []string {
	return defaults.Keys()
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadProfiles reads profile definitions from YAML:
//
//	profiles:
//	  - key: gobletSquat
//	    name: Goblet Squat
//	    phases: [start, down, hold, up]
//	    primary: [leftKnee, rightKnee]
//	    targets:
//	      - {joint: leftKnee, min: 80, max: 120, ideal: 100}
//	    thresholds: {lower: 115, min_dwell: 400ms}
func LoadProfiles(r io.Reader) ([]Profile, error) {
	var f profileFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode profiles: %w", err)
	}

	for _, p := range f.Profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Profiles, nil
}
