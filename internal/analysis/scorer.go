package analysis

import (
	"fmt"
	"math"
	"strconv"
)

// MaxFeedback caps the corrections returned for one frame.
const MaxFeedback = 3

// ScoreResult is the form score of a single frame.
type ScoreResult struct {
	Score    int           `json:"score"`
	Feedback []string      `json:"feedback"`
	Joints   map[Joint]int `json:"joints,omitempty"`
}

// Score compares angles against the profile's target ranges. Each present
// target joint scores
//
//	clamp(100 - 100*|angle-ideal| / ((max-min)/2), 0, 100)
//
// and the overall score is the rounded mean. Joints missing from angles are
// skipped; if none match, the score is 0.
func Score(angles AngleSample, profile Profile) ScoreResult {
	res := ScoreResult{Feedback: []string{}}

	var sum float64
	for _, t := range profile.Targets {
		angle, ok := angles[t.Joint]
		if !ok {
			continue
		}

		js := jointScore(angle, t)
		sum += js
		if res.Joints == nil {
			res.Joints = make(map[Joint]int, len(profile.Targets))
		}
		res.Joints[t.Joint] = int(math.Round(js))

		if len(res.Feedback) < MaxFeedback {
			if msg := feedback(angle, t); msg != "" {
				res.Feedback = append(res.Feedback, msg)
			}
		}
	}

	if n := len(res.Joints); n > 0 {
		res.Score = int(math.Round(sum / float64(n)))
	}
	return res
}

func jointScore(angle float64, t Target) float64 {
	deviation := math.Abs(angle - t.Ideal)
	maxDeviation := (t.Max - t.Min) / 2
	if maxDeviation <= 0 {
		if deviation == 0 {
			return 100
		}
		return 0
	}
	s := 100 - 100*deviation/maxDeviation
	return math.Max(0, math.Min(100, s))
}

func feedback(angle float64, t Target) string {
	ideal := strconv.FormatFloat(t.Ideal, 'f', -1, 64)
	switch {
	case angle < t.Min:
		return fmt.Sprintf("%s is too small, increase toward %s°", t.Joint.Label(), ideal)
	case angle > t.Max:
		return fmt.Sprintf("%s is too large, decrease toward %s°", t.Joint.Label(), ideal)
	}
	return ""
}
