// Package exercisedb looks up exercises in the GymFit catalogue on RapidAPI
// and maps each one to the local pose profile that can score it.
package exercisedb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/ayusman/trainiq/internal/analysis"
)

// ErrNotFound is returned when the catalogue has no exercise with the given ID.
var ErrNotFound = errors.New("exercisedb: exercise not found")

// ErrNoAPIKey is returned when the client has no RapidAPI key configured.
var ErrNoAPIKey = errors.New("exercisedb: api key not configured")

// Exercise is a catalogue entry.
type Exercise struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	BodyPart     string   `json:"bodyPart,omitempty"`
	Equipment    string   `json:"equipment,omitempty"`
	Target       string   `json:"target,omitempty"`
	Instructions []string `json:"instructions"`
	// ProfileKey is the local profile used to score this exercise.
	ProfileKey string `json:"profileKey"`
}

// Client calls the GymFit API.
type Client struct {
	baseURL    string
	apiKey     string
	host       string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. host is sent as x-rapidapi-host.
func NewClient(baseURL, apiKey, host string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		host:       host,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// List returns exercises for a body part, or all exercises when bodyPart is empty.
func (c *Client) List(ctx context.Context, bodyPart string) ([]Exercise, error) {
	params := url.Values{}
	if bodyPart != "" {
		params.Set("bodyPart", bodyPart)
	}

	body, err := c.get(ctx, "/v1/exercises", params)
	if err != nil {
		return nil, err
	}

	items, err := decodeList(body)
	if err != nil {
		return nil, fmt.Errorf("exercisedb: decode exercises: %w", err)
	}

	out := make([]Exercise, 0, len(items))
	for _, it := range items {
		out = append(out, it.toExercise())
	}
	return out, nil
}

// Get returns a single exercise.
func (c *Client) Get(ctx context.Context, id string) (*Exercise, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	body, err := c.get(ctx, "/v1/exercises/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var it remoteExercise
	if err := json.Unmarshal(body, &it); err != nil {
		return nil, fmt.Errorf("exercisedb: decode exercise: %w", err)
	}
	e := it.toExercise()
	return &e, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("exercisedb: create request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exercisedb: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("exercisedb: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("exercisedb: %s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(body))
	}
	return body, nil
}

// remoteExercise is the API's wire shape. Instructions arrive either as plain
// strings or as {order, description} steps.
type remoteExercise struct {
	ID           flexID        `json:"id"`
	Name         string        `json:"name"`
	BodyPart     string        `json:"bodyPart"`
	Equipment    string        `json:"equipment"`
	Target       string        `json:"target"`
	Instructions []instruction `json:"instructions"`
}

// flexID accepts both numeric and string IDs.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

type instruction struct {
	Order       int    `json:"order"`
	Description string `json:"description"`
}

func (in *instruction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		in.Description = s
		return nil
	}
	type plain instruction
	return json.Unmarshal(data, (*plain)(in))
}

func (r remoteExercise) toExercise() Exercise {
	steps := slices.Clone(r.Instructions)
	slices.SortStableFunc(steps, func(a, b instruction) int { return a.Order - b.Order })

	e := Exercise{
		ID:           string(r.ID),
		Name:         r.Name,
		BodyPart:     r.BodyPart,
		Equipment:    r.Equipment,
		Target:       r.Target,
		Instructions: make([]string, 0, len(steps)),
	}
	for _, s := range steps {
		if s.Description != "" {
			e.Instructions = append(e.Instructions, s.Description)
		}
	}
	e.ProfileKey, _ = analysis.MatchProfile(r.Name)
	return e
}

// decodeList accepts a bare array or an object wrapping it in "results" or "data".
func decodeList(body []byte) ([]remoteExercise, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var items []remoteExercise
		err := json.Unmarshal(body, &items)
		return items, err
	}

	var wrapped struct {
		Results []remoteExercise `json:"results"`
		Data    []remoteExercise `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Results != nil {
		return wrapped.Results, nil
	}
	return wrapped.Data, nil
}
