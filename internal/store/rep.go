package store

import (
	"database/sql"
	"time"
)

// Rep is one completed repetition within a session.
type Rep struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"sessionId"`
	Number      int       `json:"number"`
	Score       int       `json:"score"`
	DepthScore  int       `json:"depthScore"`
	DurationMs  int64     `json:"durationMs"`
	CompletedAt time.Time `json:"completedAt"`
}

// RepRepository stores completed repetitions.
type RepRepository struct {
	db *sql.DB
}

// Reps returns the rep repository for this store.
func (s *Store) Reps() *RepRepository {
	return &RepRepository{db: s.db}
}

// Add appends a rep to its session. The session must exist.
func (r *RepRepository) Add(rep *Rep) error {
	result, err := r.db.Exec(
		`INSERT INTO reps (session_id, number, score, depth_score, duration_ms, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rep.SessionID, rep.Number, rep.Score, rep.DepthScore, rep.DurationMs, rep.CompletedAt,
	)
	if err != nil {
		return err
	}
	rep.ID, err = result.LastInsertId()
	return err
}

// ListBySession returns a session's reps in order.
func (r *RepRepository) ListBySession(sessionID string) ([]Rep, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, number, score, depth_score, duration_ms, completed_at
		 FROM reps WHERE session_id = ? ORDER BY number`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reps := []Rep{}
	for rows.Next() {
		var rep Rep
		if err := rows.Scan(&rep.ID, &rep.SessionID, &rep.Number, &rep.Score,
			&rep.DepthScore, &rep.DurationMs, &rep.CompletedAt); err != nil {
			return nil, err
		}
		reps = append(reps, rep)
	}
	return reps, rows.Err()
}
