package analysis

import (
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// SessionStats summarises one workout session.
type SessionStats struct {
	TotalReps      int       `json:"totalReps"`
	AverageScore   float64   `json:"averageScore"`
	BestScore      int       `json:"bestScore"`
	TotalTime      float64   `json:"totalTime"` // seconds
	CaloriesBurned int       `json:"caloriesBurned"`
	StartedAt      time.Time `json:"startedAt"`

	// Scored counts the samples folded into AverageScore: completed reps for
	// counted exercises, scored frames for holds.
	Scored int `json:"scored"`
	// RepScores holds the score of every completed rep, in order.
	RepScores []int `json:"repScores,omitempty"`
}

// ResetSession returns zeroed stats starting at now.
func ResetSession(now time.Time) SessionStats {
	return SessionStats{StartedAt: now}
}

// UpdateSessionStats folds the latest score into prev and refreshes the
// elapsed time and calorie estimate.
//
// When sample is true the score is averaged in:
//
//	avg = round((avg*n + score) / (n+1))
//
// and repCompleted additionally counts a repetition. prev is not modified.
func UpdateSessionStats(prev SessionStats, score int, sample, repCompleted bool, now time.Time, profile Profile) SessionStats {
	next := prev
	next.RepScores = slices.Clone(prev.RepScores)

	if sample || repCompleted {
		n := float64(prev.Scored)
		next.AverageScore = math.Round((prev.AverageScore*n + float64(score)) / (n + 1))
		next.Scored++
		next.BestScore = max(prev.BestScore, score)
	}
	if repCompleted {
		next.TotalReps++
		next.RepScores = append(next.RepScores, score)
	}

	if !prev.StartedAt.IsZero() && now.After(prev.StartedAt) {
		next.TotalTime = now.Sub(prev.StartedAt).Seconds()
	}
	next.CaloriesBurned = int(math.Round(
		float64(next.TotalReps)*profile.CaloriesPerRep + next.TotalTime/60*profile.CaloriesPerMinute,
	))
	return next
}

// RepSpread returns the mean and standard deviation of the rep scores.
// Fewer than two reps give a zero deviation.
func (s SessionStats) RepSpread() (mean, stddev float64) {
	if len(s.RepScores) == 0 {
		return 0, 0
	}
	xs := make([]float64, len(s.RepScores))
	for i, v := range s.RepScores {
		xs[i] = float64(v)
	}
	if len(xs) == 1 {
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, nil)
}
