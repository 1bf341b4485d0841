package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/trainiq/internal/pose"
)

// squatFrames returns one pose per frame: each knee angle held for n frames.
func squatFrames(n int, angles ...float64) []*pose.Pose {
	var out []*pose.Pose
	for _, a := range angles {
		for range n {
			out = append(out, pose.SquatPose(a))
		}
	}
	return out
}

func run(t *testing.T, s State, cfg Config, poses []*pose.Pose, step time.Duration) (State, []FrameResult) {
	t.Helper()
	var results []FrameResult
	now := s.Stats.StartedAt
	for _, p := range poses {
		now = now.Add(step)
		var res FrameResult
		s, res = ProcessFrame(s, p, now, cfg)
		results = append(results, res)
	}
	return s, results
}

func TestProcessFrame_CountsSquatRep(t *testing.T) {
	squat, _ := LookupProfile("squat")
	cfg := DefaultConfig()
	s := NewState(squat, cfg, t0)

	s, results := run(t, s, cfg, squatFrames(15, 170, 90, 175), 100*time.Millisecond)

	assert.Equal(t, 1, s.Stats.TotalReps)
	assert.Equal(t, 1, s.Tracker.Reps)
	assert.Equal(t, Standing, s.Tracker.Phase)
	require.Len(t, s.Stats.RepScores, 1)
	assert.Equal(t, float64(s.Stats.RepScores[0]), s.Stats.AverageScore)
	assert.Len(t, s.Traces, 1)

	var cues []string
	for _, r := range results {
		if r.Transition != nil {
			cues = append(cues, r.Transition.Cue)
		}
	}
	assert.Equal(t, []string{CueDescending, "Perfect form!", CueAscending, "Rep 1 completed!"}, cues)

	last := results[len(results)-1]
	assert.Equal(t, 1, last.Reps)
	assert.Equal(t, "start", last.PhaseLabel)
	assert.Equal(t, 0, last.Progress)
}

func TestProcessFrame_NobodyInFrame(t *testing.T) {
	squat, _ := LookupProfile("squat")
	cfg := DefaultConfig()
	s := NewState(squat, cfg, t0)

	s, _ = run(t, s, cfg, squatFrames(10, 170, 140), 100*time.Millisecond)
	phase := s.Tracker.Phase
	historyLen := s.History.Len()

	next, res := ProcessFrame(s, nil, t0.Add(time.Hour), cfg)

	assert.False(t, res.Detected)
	assert.Equal(t, 0, res.Score.Score)
	assert.Empty(t, res.Angles)
	assert.Nil(t, res.Transition)
	assert.Equal(t, phase, next.Tracker.Phase)
	assert.Equal(t, historyLen, next.History.Len())
}

func TestProcessFrame_DoesNotModifyInput(t *testing.T) {
	squat, _ := LookupProfile("squat")
	cfg := DefaultConfig()
	s := NewState(squat, cfg, t0)
	s, _ = run(t, s, cfg, squatFrames(3, 170), 100*time.Millisecond)

	before := s.Snapshot()
	_, _ = ProcessFrame(s, pose.SquatPose(100), t0.Add(time.Minute), cfg)

	assert.Equal(t, before.Smoothed, s.Smoothed)
	assert.Equal(t, before.History.Len(), s.History.Len())
	assert.Equal(t, before.History.Entries(), s.History.Entries())
	assert.Equal(t, before.Tracker, s.Tracker)
	assert.Equal(t, before.Stats, s.Stats)
}

func TestProcessFrame_SharesCompletedTraces(t *testing.T) {
	squat, _ := LookupProfile("squat")
	cfg := DefaultConfig()
	s := NewState(squat, cfg, t0)
	s, _ = run(t, s, cfg, squatFrames(15, 170, 90, 175), 100*time.Millisecond)
	require.Len(t, s.Traces, 1)
	require.NotEmpty(t, s.Traces[0])

	next, _ := ProcessFrame(s, pose.SquatPose(175), t0.Add(time.Minute), cfg)
	assert.Same(t, &s.Traces[0][0], &next.Traces[0][0])

	snap := s.Snapshot()
	assert.NotSame(t, &s.Traces[0][0], &snap.Traces[0][0])
	assert.Equal(t, s.Traces, snap.Traces)
}

func TestProcessFrame_BranchesAreIndependent(t *testing.T) {
	squat, _ := LookupProfile("squat")
	cfg := DefaultConfig()
	s := NewState(squat, cfg, t0)
	s, _ = run(t, s, cfg, squatFrames(10, 170, 110), 100*time.Millisecond)
	require.NotEqual(t, Standing, s.Tracker.Phase)
	require.NotEmpty(t, s.repTrace)

	before := s.Snapshot()
	at := s.Last.Timestamp.Add(100 * time.Millisecond)
	a, _ := ProcessFrame(s, pose.SquatPose(100), at, cfg)
	b, _ := ProcessFrame(s, pose.SquatPose(140), at, cfg)

	require.Len(t, a.repTrace, len(s.repTrace)+1)
	require.Len(t, b.repTrace, len(s.repTrace)+1)
	assert.NotEqual(t, a.repTrace[len(a.repTrace)-1], b.repTrace[len(b.repTrace)-1])

	lastA, _ := a.History.Last()
	lastB, _ := b.History.Last()
	assert.NotEqual(t, lastA.Angles[LeftKnee], lastB.Angles[LeftKnee])

	assert.Equal(t, before.repTrace, s.repTrace)
	assert.Equal(t, before.History.Entries(), s.History.Entries())
}

func TestProcessFrame_ScoresSmoothedVisibleJoints(t *testing.T) {
	squat, _ := LookupProfile("squat")
	cfg := DefaultConfig()
	s := NewState(squat, cfg, t0)

	_, res := ProcessFrame(s, pose.SquatPose(100), t0.Add(time.Millisecond), cfg)

	// knees and hips on ideal, ankles at the edge of their range
	assert.Equal(t, 67, res.Score.Score)
	assert.Empty(t, res.Score.Feedback)
	assert.Equal(t, 100.0, res.Angles[LeftKnee])
}

func TestProcessFrame_HistoryBounded(t *testing.T) {
	squat, _ := LookupProfile("squat")
	cfg := DefaultConfig()
	cfg.HistorySize = 5
	s := NewState(squat, cfg, t0)

	s, _ = run(t, s, cfg, squatFrames(12, 170), 50*time.Millisecond)

	assert.Equal(t, 5, s.History.Len())
	last, ok := s.History.Last()
	require.True(t, ok)
	assert.Contains(t, last.Velocity, LeftKnee)
}

func TestProcessFrame_HoldSamplesOncePerSecond(t *testing.T) {
	plank, _ := LookupProfile("plank")
	cfg := DefaultConfig()
	s := NewState(plank, cfg, t0)

	s, results := run(t, s, cfg, squatFrames(30, 180), 100*time.Millisecond)

	assert.Zero(t, s.Stats.TotalReps)
	assert.Equal(t, 3, s.Stats.Scored)
	assert.Equal(t, "hold", results[0].PhaseLabel)
	assert.Nil(t, results[len(results)-1].Transition)
}

func TestState_ResetKeepsProfile(t *testing.T) {
	squat, _ := LookupProfile("squat")
	cfg := DefaultConfig()
	s := NewState(squat, cfg, t0)
	s, _ = run(t, s, cfg, squatFrames(15, 170, 90, 175), 100*time.Millisecond)
	require.Equal(t, 1, s.Stats.TotalReps)

	later := t0.Add(time.Hour)
	r := s.Reset(cfg, later)

	assert.Equal(t, "squat", r.Profile.Key)
	assert.Equal(t, ResetSession(later), r.Stats)
	assert.Zero(t, r.History.Len())
	assert.Empty(t, r.Traces)
	assert.Equal(t, 100, r.Consistency)
}
