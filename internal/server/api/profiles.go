package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/trainiq/internal/analysis"
)

// ProfileHandler serves exercise profiles and stateless scoring.
type ProfileHandler struct {
	profiles *analysis.ProfileSet
}

// NewProfileHandler creates a ProfileHandler. A nil set serves the built-in profiles.
func NewProfileHandler(profiles *analysis.ProfileSet) *ProfileHandler {
	if profiles == nil {
		profiles = analysis.DefaultProfiles()
	}
	return &ProfileHandler{profiles: profiles}
}

// Routes returns the router mounted at /api/profiles.
func (h *ProfileHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{key}", h.get)
	return r
}

type listProfilesResponse struct {
	Profiles []analysis.Profile `json:"profiles"`
}

type scoreRequest struct {
	Exercise string               `json:"exercise"`
	Angles   analysis.AngleSample `json:"angles"`
}

type scoreResponse struct {
	Exercise string `json:"exercise"`
	analysis.ScoreResult
}

func (h *ProfileHandler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listProfilesResponse{Profiles: h.profiles.All()})
}

func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.profiles.Lookup(chi.URLParam(r, "key"))
	if !ok {
		writeError(w, http.StatusNotFound, "Profile not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Score handles POST /api/score. The exercise may be a profile key or a
// free-form exercise name.
func (h *ProfileHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Exercise == "" {
		writeError(w, http.StatusBadRequest, "Exercise is required")
		return
	}
	for j := range req.Angles {
		if !j.Valid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown joint %q", j))
			return
		}
	}

	p, ok := h.profiles.Lookup(req.Exercise)
	if !ok {
		key, matched := analysis.MatchProfile(req.Exercise)
		if p, ok = h.profiles.Lookup(key); !ok || !matched {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
	}

	writeJSON(w, http.StatusOK, scoreResponse{Exercise: p.Key, ScoreResult: analysis.Score(req.Angles, p)})
}
