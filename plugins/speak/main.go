// Package main is a cue plugin that speaks coaching cues aloud with the
// platform text-to-speech command.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Request represents the input from the cue executor.
type Request struct {
	Event    string `json:"event"`
	Text     string `json:"text"`
	Exercise string `json:"exercise,omitempty"`
	Reps     int    `json:"reps,omitempty"`
	Score    int    `json:"score,omitempty"`
}

// Response represents the output to the cue executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeResponse(fmt.Errorf("text is required"))
		return
	}

	name, args, err := speechCommand(runtime.GOOS, text)
	if err != nil {
		writeResponse(err)
		return
	}
	writeResponse(exec.Command(name, args...).Run())
}

// speechCommand picks the TTS program for goos. Rates are words per minute.
func speechCommand(goos, text string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "say", []string{"-r", "180", text}, nil
	case "linux":
		if _, err := exec.LookPath("espeak-ng"); err == nil {
			return "espeak-ng", []string{"-s", "160", text}, nil
		}
		return "espeak", []string{"-s", "160", text}, nil
	case "windows":
		ps := "Add-Type -AssemblyName System.Speech; (New-Object System.Speech.Synthesis.SpeechSynthesizer).Speak('" +
			strings.ReplaceAll(text, "'", "''") + "')"
		return "powershell", []string{"-NoProfile", "-Command", ps}, nil
	}
	return "", nil, fmt.Errorf("speech is not supported on %s", goos)
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
