package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Exercise is an entry in the exercise catalogue.
type Exercise struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	MuscleGroups []string  `json:"muscleGroups"`
	Difficulty   string    `json:"difficulty"`
	Instructions []string  `json:"instructions"`
	ImageURL     string    `json:"imageUrl"`
	ProfileKey   string    `json:"profileKey"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ExerciseFilter narrows List. Empty fields match everything.
type ExerciseFilter struct {
	Category   string
	Difficulty string
	// Search matches name, description or any muscle group, case-insensitively.
	Search string
}

// ExerciseRepository provides CRUD operations for exercises.
type ExerciseRepository struct {
	db *sql.DB
}

// Exercises returns the exercise repository for this store.
func (s *Store) Exercises() *ExerciseRepository {
	return &ExerciseRepository{db: s.db}
}

const exerciseColumns = `id, name, description, category, muscle_groups, difficulty, instructions, image_url, profile_key, created_at, updated_at`

// Create inserts e, assigning an ID when empty and defaulting category and
// difficulty like the catalogue does.
func (r *ExerciseRepository) Create(e *Exercise) error {
	return insertExercise(r.db, e)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertExercise(db execer, e *Exercise) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Category == "" {
		e.Category = "strength"
	}
	if e.Difficulty == "" {
		e.Difficulty = "beginner"
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	muscles, instructions, err := encodeLists(e)
	if err != nil {
		return err
	}

	_, err = db.Exec(
		`INSERT INTO exercises (`+exerciseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Description, e.Category, muscles, e.Difficulty, instructions,
		e.ImageURL, e.ProfileKey, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

// Get retrieves an exercise by its ID.
func (r *ExerciseRepository) Get(id string) (*Exercise, error) {
	row := r.db.QueryRow(`SELECT `+exerciseColumns+` FROM exercises WHERE id = ?`, id)
	e, err := scanExercise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// List returns the exercises matching f ordered by name.
func (r *ExerciseRepository) List(f ExerciseFilter) ([]*Exercise, error) {
	query := `SELECT ` + exerciseColumns + ` FROM exercises WHERE 1=1`
	var args []any
	if f.Category != "" {
		query += ` AND lower(category) = lower(?)`
		args = append(args, f.Category)
	}
	if f.Difficulty != "" {
		query += ` AND lower(difficulty) = lower(?)`
		args = append(args, f.Difficulty)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		query += ` AND (lower(name) LIKE ? OR lower(description) LIKE ? OR lower(muscle_groups) LIKE ?)`
		args = append(args, like, like, like)
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises := []*Exercise{}
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}
	return exercises, rows.Err()
}

// Update overwrites every field of an existing exercise.
func (r *ExerciseRepository) Update(e *Exercise) error {
	e.UpdatedAt = time.Now().UTC()

	muscles, instructions, err := encodeLists(e)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(
		`UPDATE exercises SET name = ?, description = ?, category = ?, muscle_groups = ?,
		 difficulty = ?, instructions = ?, image_url = ?, profile_key = ?, updated_at = ?
		 WHERE id = ?`,
		e.Name, e.Description, e.Category, muscles, e.Difficulty, instructions,
		e.ImageURL, e.ProfileKey, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Delete removes an exercise by its ID.
func (r *ExerciseRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM exercises WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Count returns the number of catalogue entries.
func (r *ExerciseRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM exercises`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExercise(s scanner) (*Exercise, error) {
	e := &Exercise{}
	var muscles, instructions string
	err := s.Scan(&e.ID, &e.Name, &e.Description, &e.Category, &muscles, &e.Difficulty,
		&instructions, &e.ImageURL, &e.ProfileKey, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(muscles), &e.MuscleGroups); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(instructions), &e.Instructions); err != nil {
		return nil, err
	}
	return e, nil
}

func encodeLists(e *Exercise) (muscles, instructions string, err error) {
	if e.MuscleGroups == nil {
		e.MuscleGroups = []string{}
	}
	if e.Instructions == nil {
		e.Instructions = []string{}
	}
	m, err := json.Marshal(e.MuscleGroups)
	if err != nil {
		return "", "", err
	}
	i, err := json.Marshal(e.Instructions)
	if err != nil {
		return "", "", err
	}
	return string(m), string(i), nil
}
