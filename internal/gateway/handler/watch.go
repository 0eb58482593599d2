package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"repotutor/internal/job"
)

const (
	watchWSWriteWait = 10 * time.Second
	watchWSPongWait  = 60 * time.Second
	watchWSPingEvery = (watchWSPongWait * 9) / 10
)

var watchWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// watchOutbound is one progress frame pushed to the UI.
type watchOutbound struct {
	Type   string     `json:"type"`
	JobID  string     `json:"jobId"`
	Status job.Status `json:"status,omitempty"`
	Error  string     `json:"error,omitempty"`
	Done   bool       `json:"done,omitempty"`
}

// watchTutorial streams job status transitions until the job reaches a
// terminal state or the client goes away. The finished tutorial itself is
// fetched over plain GET; frames stay small.
func (h *Handler) watchTutorial(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	updates, err := h.jobs.Subscribe(jobID)
	if errors.Is(err, job.ErrNotFound) {
		httpError(w, http.StatusNotFound, "unknown job id")
		return
	}

	conn, err := watchWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(watchWSPongWait)); err != nil {
		log.Printf("watch ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchWSPongWait))
	})

	// Reader goroutine: we never expect inbound frames, but reading keeps
	// pong handling alive and detects the peer closing.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(watchWSPingEvery)
	defer ticker.Stop()

	writeFrame := func(out watchOutbound) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait))
		if err := conn.WriteJSON(out); err != nil {
			return false
		}
		return true
	}

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			out := watchOutbound{
				Type:   "status",
				JobID:  snap.ID,
				Status: snap.Status,
				Error:  snap.Error,
				Done:   snap.IsTerminal(),
			}
			if !writeFrame(out) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readerDone:
			return
		}
	}
}
