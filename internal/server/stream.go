package server

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/trainiq/internal/app"
)

// streamInterval paces the MJPEG stream at about 15 frames per second.
const streamInterval = 66 * time.Millisecond

// StreamHandler serves the annotated preview as MJPEG.
type StreamHandler struct {
	trainer *app.Trainer
}

// NewStreamHandler creates a StreamHandler for t.
func NewStreamHandler(t *app.Trainer) *StreamHandler {
	return &StreamHandler{trainer: t}
}

// ServeHTTP writes each new preview frame until the client goes away.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	var last []byte
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		jpeg := h.trainer.LatestJPEG()
		if len(jpeg) == 0 || bytes.Equal(jpeg, last) {
			continue
		}
		last = jpeg

		fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg))
		if _, err := w.Write(jpeg); err != nil {
			return
		}
		fmt.Fprint(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
