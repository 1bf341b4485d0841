package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/trainiq/internal/analysis"
	"github.com/ayusman/trainiq/internal/exercisedb"
	"github.com/ayusman/trainiq/internal/store"
)

// ExerciseSearcher looks exercises up in a remote catalogue.
type ExerciseSearcher interface {
	List(ctx context.Context, bodyPart string) ([]exercisedb.Exercise, error)
}

// ExerciseHandler serves the local exercise catalogue and remote search.
type ExerciseHandler struct {
	store  *store.Store
	search ExerciseSearcher
	log    *slog.Logger
}

// NewExerciseHandler creates an ExerciseHandler. search may be nil, in which
// case remote search answers 503.
func NewExerciseHandler(s *store.Store, search ExerciseSearcher, logger *slog.Logger) *ExerciseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExerciseHandler{store: s, search: search, log: logger}
}

// Routes returns the router mounted at /api/exercises.
func (h *ExerciseHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/search", h.searchRemote)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	return r
}

type exerciseRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	MuscleGroups []string `json:"muscleGroups"`
	Difficulty   string   `json:"difficulty"`
	Instructions []string `json:"instructions"`
	ImageURL     string   `json:"imageUrl"`
	ProfileKey   string   `json:"profileKey"`
}

type listExercisesResponse struct {
	Exercises []*store.Exercise `json:"exercises"`
}

type searchResponse struct {
	Exercises []exercisedb.Exercise `json:"exercises"`
}

var difficulties = map[string]bool{"beginner": true, "intermediate": true, "advanced": true}

// list handles GET /api/exercises?category=&difficulty=&search=.
func (h *ExerciseHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	exercises, err := h.store.Exercises().List(store.ExerciseFilter{
		Category:   q.Get("category"),
		Difficulty: q.Get("difficulty"),
		Search:     q.Get("search"),
	})
	if err != nil {
		h.log.Error("listing exercises", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list exercises")
		return
	}
	writeJSON(w, http.StatusOK, listExercisesResponse{Exercises: exercises})
}

// get handles GET /api/exercises/{id}.
func (h *ExerciseHandler) get(w http.ResponseWriter, r *http.Request) {
	e, ok := h.load(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// create handles POST /api/exercises.
func (h *ExerciseHandler) create(w http.ResponseWriter, r *http.Request) {
	var req exerciseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.Difficulty != "" && !difficulties[req.Difficulty] {
		writeError(w, http.StatusBadRequest, "Invalid difficulty")
		return
	}

	e := &store.Exercise{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Category:     req.Category,
		MuscleGroups: req.MuscleGroups,
		Difficulty:   req.Difficulty,
		Instructions: req.Instructions,
		ImageURL:     req.ImageURL,
		ProfileKey:   profileKeyFor(req.ProfileKey, req.Name),
	}
	if err := h.store.Exercises().Create(e); err != nil {
		h.log.Error("creating exercise", "name", e.Name, "error", err)
		writeError(w, http.StatusConflict, "Failed to create exercise")
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// update handles PUT /api/exercises/{id}. Empty fields keep their value.
func (h *ExerciseHandler) update(w http.ResponseWriter, r *http.Request) {
	e, ok := h.load(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req exerciseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Difficulty != "" && !difficulties[req.Difficulty] {
		writeError(w, http.StatusBadRequest, "Invalid difficulty")
		return
	}

	if req.Name != "" {
		e.Name = req.Name
	}
	if req.Description != "" {
		e.Description = req.Description
	}
	if req.Category != "" {
		e.Category = req.Category
	}
	if req.MuscleGroups != nil {
		e.MuscleGroups = req.MuscleGroups
	}
	if req.Difficulty != "" {
		e.Difficulty = req.Difficulty
	}
	if req.Instructions != nil {
		e.Instructions = req.Instructions
	}
	if req.ImageURL != "" {
		e.ImageURL = req.ImageURL
	}
	if req.ProfileKey != "" {
		e.ProfileKey = profileKeyFor(req.ProfileKey, e.Name)
	}

	if err := h.store.Exercises().Update(e); err != nil {
		h.log.Error("updating exercise", "id", e.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update exercise")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// delete handles DELETE /api/exercises/{id}.
func (h *ExerciseHandler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.store.Exercises().Delete(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Exercise not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete exercise")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// searchRemote handles GET /api/exercises/search?bodyPart=.
func (h *ExerciseHandler) searchRemote(w http.ResponseWriter, r *http.Request) {
	if h.search == nil {
		writeError(w, http.StatusServiceUnavailable, "Exercise search is not configured")
		return
	}

	exercises, err := h.search.List(r.Context(), r.URL.Query().Get("bodyPart"))
	switch {
	case errors.Is(err, exercisedb.ErrNoAPIKey):
		writeError(w, http.StatusServiceUnavailable, "Exercise search is not configured")
		return
	case err != nil:
		h.log.Warn("exercise search failed", "error", err)
		writeError(w, http.StatusBadGateway, "Exercise search failed")
		return
	}
	if exercises == nil {
		exercises = []exercisedb.Exercise{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Exercises: exercises})
}

func (h *ExerciseHandler) load(w http.ResponseWriter, id string) (*store.Exercise, bool) {
	e, err := h.store.Exercises().Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Exercise not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get exercise")
		return nil, false
	}
	return e, true
}

// profileKeyFor keeps a known profile key, otherwise matches the exercise
// name, falling back to the default profile.
func profileKeyFor(key, name string) string {
	if _, ok := analysis.LookupProfile(key); ok {
		return key
	}
	k, _ := analysis.MatchProfile(name)
	return k
}
