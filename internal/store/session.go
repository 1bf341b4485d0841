package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is one finished or in-progress workout.
type Session struct {
	ID           string     `json:"id"`
	Exercise     string     `json:"exercise"`
	StartedAt    time.Time  `json:"startedAt"`
	EndedAt      *time.Time `json:"endedAt,omitempty"`
	TotalReps    int        `json:"totalReps"`
	AverageScore float64    `json:"averageScore"`
	BestScore    int        `json:"bestScore"`
	TotalTime    float64    `json:"totalTime"` // seconds
	Calories     int        `json:"calories"`
}

// SessionRepository stores workout sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

const sessionColumns = `id, exercise, started_at, ended_at, total_reps, average_score, best_score, total_time, calories`

// Create inserts a session, assigning an ID when empty.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	_, err := r.db.Exec(
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Exercise, sess.StartedAt, nullTime(sess.EndedAt), sess.TotalReps,
		sess.AverageScore, sess.BestScore, sess.TotalTime, sess.Calories,
	)
	return err
}

// Get retrieves a session by its ID.
func (r *SessionRepository) Get(id string) (*Session, error) {
	row := r.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sess, err
}

// List returns the most recent sessions first. limit <= 0 returns all.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT `+sessionColumns+` FROM sessions ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []*Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Finish records the final totals of a session and marks it ended.
func (r *SessionRepository) Finish(sess *Session) error {
	if sess.EndedAt == nil {
		now := time.Now().UTC()
		sess.EndedAt = &now
	}
	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, total_reps = ?, average_score = ?, best_score = ?,
		 total_time = ?, calories = ? WHERE id = ?`,
		*sess.EndedAt, sess.TotalReps, sess.AverageScore, sess.BestScore,
		sess.TotalTime, sess.Calories, sess.ID,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Delete removes a session and its reps.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func scanSession(s scanner) (*Session, error) {
	sess := &Session{}
	var ended sql.NullTime
	err := s.Scan(&sess.ID, &sess.Exercise, &sess.StartedAt, &ended, &sess.TotalReps,
		&sess.AverageScore, &sess.BestScore, &sess.TotalTime, &sess.Calories)
	if err != nil {
		return nil, err
	}
	if ended.Valid {
		t := ended.Time
		sess.EndedAt = &t
	}
	return sess, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
