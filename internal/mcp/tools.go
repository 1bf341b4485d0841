package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ayusman/trainiq/internal/analysis"
	"github.com/ayusman/trainiq/internal/store"
)

const maxWorkouts = 100

// --- Tool definitions ---

var toolListProfiles = mcp.NewTool("list_profiles",
	mcp.WithDescription("List the exercise profiles with their joint target ranges (min, max, ideal degrees) and phases."),
)

var toolScorePose = mcp.NewTool("score_pose",
	mcp.WithDescription("Score a set of joint angles against an exercise profile. Returns a 0-100 form score, per-joint scores and up to three feedback messages."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Profile key (e.g. squat, pushup) or an exercise name such as 'Goblet Squat'")),
	mcp.WithString("angles", mcp.Required(), mcp.Description(`JSON object of joint angles in degrees, e.g. {"leftKnee": 95, "rightKnee": 98}. Joints: leftElbow, rightElbow, leftShoulder, rightShoulder, leftHip, rightHip, leftKnee, rightKnee, leftAnkle, rightAnkle`)),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Get the live training session: exercise, phase, rep count, latest score and feedback, session statistics."),
)

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List recorded workouts, newest first, with reps, average and best score, duration and calories."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of workouts. Defaults to 10.")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one recorded workout with every rep's score, depth score and duration."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout ID from list_workouts")),
)

// --- Tool handlers ---

func (h *handlers) listProfiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.deps.Profiles.All())
}

func (h *handlers) scorePose(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	raw, err := req.RequireString("angles")
	if err != nil {
		return mcp.NewToolResultError("angles parameter is required"), nil
	}

	var angles analysis.AngleSample
	if err := json.Unmarshal([]byte(raw), &angles); err != nil {
		return mcp.NewToolResultError("angles must be a JSON object of joint to degrees: " + err.Error()), nil
	}
	for j := range angles {
		if !j.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("unknown joint %q", j)), nil
		}
	}

	p, ok := h.lookup(exercise)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no profile for exercise %q", exercise)), nil
	}

	return jsonResult(map[string]any{
		"exercise": p.Key,
		"result":   analysis.Score(angles, p),
	})
}

func (h *handlers) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.deps.Trainer == nil {
		return mcp.NewToolResultError("no live session: the trainer is not running"), nil
	}
	return jsonResult(h.deps.Trainer.Summary())
}

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.deps.Store == nil {
		return mcp.NewToolResultError("workout log is not available"), nil
	}

	limit := req.GetInt("limit", 10)
	if limit <= 0 || limit > maxWorkouts {
		limit = maxWorkouts
	}

	sessions, err := h.deps.Store.Sessions().List(limit)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(sessions)
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.deps.Store == nil {
		return mcp.NewToolResultError("workout log is not available"), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	sess, err := h.deps.Store.Sessions().Get(id)
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError("workout not found"), nil
	}
	if err != nil {
		h.log.Error("mcp get_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	reps, err := h.deps.Store.Reps().ListBySession(id)
	if err != nil {
		h.log.Error("mcp get_workout reps", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	return jsonResult(map[string]any{
		"workout": sess,
		"reps":    reps,
	})
}

func (h *handlers) lookup(exercise string) (analysis.Profile, bool) {
	if p, ok := h.deps.Profiles.Lookup(exercise); ok {
		return p, true
	}
	key, ok := analysis.MatchProfile(exercise)
	if !ok {
		return analysis.Profile{}, false
	}
	return h.deps.Profiles.Lookup(key)
}
