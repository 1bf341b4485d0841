package analysis

import (
	"maps"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/trainiq/internal/pose"
)

// AngleSample maps a joint to its angle in degrees, in [0,180].
// Joints whose landmarks were not usable are absent.
type AngleSample map[Joint]float64

// Clone returns an independent copy of the sample.
func (s AngleSample) Clone() AngleSample {
	if s == nil {
		return AngleSample{}
	}
	return maps.Clone(s)
}

// Only returns the entries of s whose joints are also present in keys.
func (s AngleSample) Only(keys AngleSample) AngleSample {
	out := make(AngleSample, len(keys))
	for j := range keys {
		if v, ok := s[j]; ok {
			out[j] = v
		}
	}
	return out
}

// Mean averages the angles of the given joints that are present.
// ok is false if none of them are.
func (s AngleSample) Mean(joints ...Joint) (mean float64, ok bool) {
	var sum float64
	var n int
	for _, j := range joints {
		if v, present := s[j]; present {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Angle returns the angle ABC in whole degrees. A zero-length AB or CB
// yields 0.
func Angle(a, b, c r3.Vec) float64 {
	ab := r3.Sub(a, b)
	cb := r3.Sub(c, b)

	na, nc := r3.Norm(ab), r3.Norm(cb)
	if na == 0 || nc == 0 {
		return 0
	}

	cos := r3.Dot(ab, cb) / (na * nc)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Round(math.Acos(cos) * 180 / math.Pi)
}

func vec(l pose.Landmark) r3.Vec {
	return r3.Vec{X: l.X, Y: l.Y, Z: l.Z}
}

// ExtractAngles measures every joint whose three landmarks are at least
// visibility visible. A nil pose yields an empty sample.
func ExtractAngles(p *pose.Pose, visibility float64) AngleSample {
	out := AngleSample{}
	if p == nil {
		return out
	}

	for _, t := range triples {
		if !p.Visible(t.a, visibility) || !p.Visible(t.b, visibility) || !p.Visible(t.c, visibility) {
			continue
		}
		lm := p.Landmarks
		out[t.joint] = Angle(vec(lm[t.a]), vec(lm[t.b]), vec(lm[t.c]))
	}
	return out
}
