package exercisedb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", "gym-fit.p.rapidapi.com", time.Second)
}

func TestClient_List(t *testing.T) {
	var gotPath, gotQuery, gotKey, gotHost string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("bodyPart")
		gotKey = r.Header.Get("x-rapidapi-key")
		gotHost = r.Header.Get("x-rapidapi-host")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 12, "name": "Barbell Back Squat", "bodyPart": "legs", "equipment": "barbell",
			 "instructions": [
				{"order": 2, "description": "Descend until thighs are parallel"},
				{"order": 1, "description": "Unrack the bar"},
				{"order": 3, "description": "Drive up through the heels"}
			 ]},
			{"id": "walk-lunge", "name": "Walking Lunge", "bodyPart": "legs",
			 "instructions": ["Step forward", "Lower the back knee"]}
		]`))
	})

	got, err := c.List(context.Background(), "legs")
	require.NoError(t, err)

	assert.Equal(t, "/v1/exercises", gotPath)
	assert.Equal(t, "legs", gotQuery)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "gym-fit.p.rapidapi.com", gotHost)

	require.Len(t, got, 2)
	assert.Equal(t, "12", got[0].ID)
	assert.Equal(t, []string{
		"Unrack the bar",
		"Descend until thighs are parallel",
		"Drive up through the heels",
	}, got[0].Instructions)
	assert.Equal(t, "squat", got[0].ProfileKey)

	assert.Equal(t, "walk-lunge", got[1].ID)
	assert.Equal(t, []string{"Step forward", "Lower the back knee"}, got[1].Instructions)
	assert.Equal(t, "lunge", got[1].ProfileKey)
}

func TestClient_ListWrapped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"results": [{"id": 1, "name": "Jumping Jacks"}]}`))
	})

	got, err := c.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "pushup", got[0].ProfileKey, "unknown exercises fall back")
	assert.NotNil(t, got[0].Instructions)
}

func TestClient_Get(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/exercises/7":
			_, _ = w.Write([]byte(`{"id": 7, "name": "Romanian Deadlift"}`))
		default:
			http.NotFound(w, r)
		}
	})

	e, err := c.Get(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "Romanian Deadlift", e.Name)
	assert.Equal(t, "deadlift", e.ProfileKey)

	_, err = c.Get(context.Background(), "999")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Errors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		})
		_, err := c.List(context.Background(), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("bad json", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"results": "nope"}`))
		})
		_, err := c.List(context.Background(), "")
		assert.Error(t, err)
	})

	t.Run("no api key", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", "", "", 0)
		_, err := c.List(context.Background(), "")
		assert.True(t, errors.Is(err, ErrNoAPIKey))
	})

	t.Run("cancelled context", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.List(ctx, "")
		assert.Error(t, err)
	})
}
