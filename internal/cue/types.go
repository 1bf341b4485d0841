// Package cue delivers coaching cues to external plugins, such as a
// text-to-speech helper, over a JSON stdin/stdout protocol.
package cue

// Manifest describes a cue plugin.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Executable  string `json:"executable"`
	// Events lists the cue kinds the plugin wants, e.g. "phase", "rep".
	// Empty means all.
	Events []string `json:"events"`
}

// Wants reports whether the plugin subscribes to kind.
func (m Manifest) Wants(kind string) bool {
	if len(m.Events) == 0 {
		return true
	}
	for _, e := range m.Events {
		if e == kind {
			return true
		}
	}
	return false
}

// Request is written to a plugin's stdin.
type Request struct {
	Event    string `json:"event"`
	Text     string `json:"text"`
	Exercise string `json:"exercise,omitempty"`
	Reps     int    `json:"reps,omitempty"`
	Score    int    `json:"score,omitempty"`
}

// Response is read from a plugin's stdout.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Plugin is a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
