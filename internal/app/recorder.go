package app

import (
	"log/slog"
	"time"

	"github.com/ayusman/trainiq/internal/analysis"
	"github.com/ayusman/trainiq/internal/store"
)

// Recorder writes the live session to the workout log. The session row is
// created on the first rep, or at Finish for holds, so empty sessions are
// never stored. Store errors are logged and the workout carries on.
// Recorder is not safe for concurrent use.
type Recorder struct {
	store   *store.Store
	log     *slog.Logger
	session *store.Session
	lastRep time.Time
}

// NewRecorder creates a Recorder backed by s.
func NewRecorder(s *store.Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: s, log: logger}
}

// Observe records a completed rep, if res has one.
func (r *Recorder) Observe(res analysis.FrameResult) {
	tr := res.Transition
	if tr == nil || tr.RepDelta <= 0 {
		return
	}
	if !r.ensure(res.Exercise, res.Stats.StartedAt) {
		return
	}

	score := res.Score.Score
	if n := len(res.Stats.RepScores); n > 0 {
		score = res.Stats.RepScores[n-1]
	}
	since := r.lastRep
	if since.IsZero() {
		since = r.session.StartedAt
	}

	rep := &store.Rep{
		SessionID:   r.session.ID,
		Number:      res.Reps,
		Score:       score,
		DepthScore:  tr.DepthScore,
		DurationMs:  res.Timestamp.Sub(since).Milliseconds(),
		CompletedAt: res.Timestamp,
	}
	if err := r.store.Reps().Add(rep); err != nil {
		r.log.Error("recording rep", "session", r.session.ID, "rep", res.Reps, "error", err)
		return
	}
	r.lastRep = res.Timestamp
}

// Finish stores the session totals and forgets the session. Sessions with
// nothing scored are skipped.
func (r *Recorder) Finish(exercise string, stats analysis.SessionStats, at time.Time) {
	defer func() {
		r.session = nil
		r.lastRep = time.Time{}
	}()

	if stats.TotalReps == 0 && stats.Scored == 0 {
		return
	}
	if !r.ensure(exercise, stats.StartedAt) {
		return
	}

	end := at
	r.session.EndedAt = &end
	r.session.TotalReps = stats.TotalReps
	r.session.AverageScore = stats.AverageScore
	r.session.BestScore = stats.BestScore
	r.session.TotalTime = stats.TotalTime
	r.session.Calories = stats.CaloriesBurned

	if err := r.store.Sessions().Finish(r.session); err != nil {
		r.log.Error("finishing session", "session", r.session.ID, "error", err)
		return
	}
	r.log.Info("session recorded", "session", r.session.ID, "exercise", exercise,
		"reps", stats.TotalReps, "average", stats.AverageScore)
}

func (r *Recorder) ensure(exercise string, started time.Time) bool {
	if r.session != nil {
		return true
	}
	sess := &store.Session{Exercise: exercise, StartedAt: started}
	if err := r.store.Sessions().Create(sess); err != nil {
		r.log.Error("creating session", "exercise", exercise, "error", err)
		return false
	}
	r.session = sess
	return true
}
