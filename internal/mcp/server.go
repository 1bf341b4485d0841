// Package mcp exposes TrainIQ to assistants over the Model Context Protocol.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ayusman/trainiq/internal/analysis"
	"github.com/ayusman/trainiq/internal/app"
	"github.com/ayusman/trainiq/internal/store"
)

// Deps are the parts of TrainIQ the tools read from. Trainer and Store may
// be nil; their tools then report that they are unavailable.
type Deps struct {
	Profiles *analysis.ProfileSet
	Trainer  *app.Trainer
	Store    *store.Store
}

// New creates an MCP server with all tools registered.
func New(deps Deps, version string, log *slog.Logger) *server.MCPServer {
	if deps.Profiles == nil {
		deps.Profiles = analysis.DefaultProfiles()
	}
	if log == nil {
		log = slog.Default()
	}

	s := server.NewMCPServer("TrainIQ", version,
		server.WithToolCapabilities(false),
		server.WithInstructions("TrainIQ exercise form coach. Score joint angles against exercise profiles, read the live training session, and browse recorded workouts. Angles are in degrees."),
	)

	h := &handlers{deps: deps, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListProfiles, Handler: h.listProfiles},
		server.ServerTool{Tool: toolScorePose, Handler: h.scorePose},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
	)

	return s
}

// ServeStdio serves s on stdin and stdout until stdin closes.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// handlers holds dependencies for MCP tool handlers.
type handlers struct {
	deps Deps
	log  *slog.Logger
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
