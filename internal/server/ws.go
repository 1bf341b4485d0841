package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/trainiq/internal/analysis"
	"github.com/ayusman/trainiq/internal/app"
)

const (
	// liveInterval limits each client to about 15 messages per second.
	liveInterval = 66 * time.Millisecond
	writeTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local dashboard
	},
}

// LiveHandler streams frame results to websocket clients.
type LiveHandler struct {
	trainer *app.Trainer
	log     *slog.Logger
}

// NewLiveHandler creates a LiveHandler for t.
func NewLiveHandler(t *app.Trainer, logger *slog.Logger) *LiveHandler {
	return &LiveHandler{trainer: t, log: logger}
}

// ServeHTTP upgrades the connection and sends the newest result at most once
// per liveInterval until the client disconnects. Results with a phase
// transition are sent immediately.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	results, unsubscribe := h.trainer.Subscribe()
	defer unsubscribe()

	// The reader only notices the client closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(liveInterval)
	defer ticker.Stop()

	var pending *analysis.FrameResult
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case res := <-results:
			pending = &res
			if res.Transition == nil {
				continue
			}
		case <-ticker.C:
		}

		if pending == nil {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(pending); err != nil {
			h.log.Debug("websocket write failed", "error", err)
			return
		}
		pending = nil
	}
}
