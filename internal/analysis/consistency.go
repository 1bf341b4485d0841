package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Trace is the primary-joint angle sampled over one repetition.
type Trace []float64

// DTWDistance calculates the Dynamic Time Warping distance between two angle
// traces, normalized by the longer trace length so it reads as an average
// per-sample difference in degrees. Returns +Inf if either trace is empty.
func DTWDistance(a, b Trace) float64 {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return math.Inf(1)
	}

	// Two rolling rows of the (n+1) x (m+1) cost matrix.
	prev := make([]float64, m+1)
	cur := make([]float64, m+1)
	for j := range prev {
		prev[j] = math.Inf(1)
	}
	prev[0] = 0

	for i := 1; i <= n; i++ {
		cur[0] = math.Inf(1)
		for j := 1; j <= m; j++ {
			cost := math.Abs(a[i-1] - b[j-1])
			cur[j] = cost + min(prev[j], cur[j-1], prev[j-1])
		}
		prev, cur = cur, prev
	}

	return prev[m] / float64(max(n, m))
}

// Consistency scores how alike the repetitions are, 0-100. Every rep after
// the first is compared with the first; a mean DTW distance of 10° halves
// the score. Fewer than two usable traces score 100.
func Consistency(traces []Trace) int {
	if len(traces) < 2 || len(traces[0]) == 0 {
		return 100
	}

	var dists []float64
	for _, t := range traces[1:] {
		d := DTWDistance(traces[0], t)
		if !math.IsInf(d, 1) {
			dists = append(dists, d)
		}
	}
	if len(dists) == 0 {
		return 100
	}

	mean := floats.Sum(dists) / float64(len(dists))
	return int(math.Round(100 / (1 + mean/10)))
}
