package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestProfileHandler(t *testing.T) {
	h := NewProfileHandler(nil)
	r := chi.NewRouter()
	r.Mount("/profiles", h.Routes())
	r.Post("/score", h.Score)

	rec := serve(r, http.MethodGet, "/profiles", nil)
	var list listProfilesResponse
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list.Profiles) < 5 {
		t.Errorf("profiles = %d, want the built-in set", len(list.Profiles))
	}

	if rec := serve(r, http.MethodGet, "/profiles/plank", nil); rec.Code != http.StatusOK {
		t.Errorf("GET plank status = %d", rec.Code)
	}
	if rec := serve(r, http.MethodGet, "/profiles/zumba", nil); rec.Code != http.StatusNotFound {
		t.Errorf("GET zumba status = %d", rec.Code)
	}

	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantKey   string
		wantScore int
	}{
		{"by key", `{"exercise":"squat","angles":{"leftKnee":100}}`, http.StatusOK, "squat", 100},
		{"by name", `{"exercise":"Back Squat","angles":{"leftKnee":100}}`, http.StatusOK, "squat", 100},
		{"no matching joints", `{"exercise":"squat","angles":{}}`, http.StatusOK, "squat", 0},
		{"unknown joint", `{"exercise":"squat","angles":{"tail":10}}`, http.StatusBadRequest, "", 0},
		{"unknown exercise", `{"exercise":"Zumba","angles":{"leftKnee":100}}`, http.StatusNotFound, "", 0},
		{"missing exercise", `{"angles":{"leftKnee":100}}`, http.StatusBadRequest, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, http.MethodPost, "/score", []byte(tt.body))
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var res scoreResponse
			json.NewDecoder(rec.Body).Decode(&res)
			if res.Exercise != tt.wantKey || res.Score != tt.wantScore {
				t.Errorf("result = %s %d, want %s %d", res.Exercise, res.Score, tt.wantKey, tt.wantScore)
			}
		})
	}
}
