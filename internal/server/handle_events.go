package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/radiantplay/tacquiz/internal/realtime"
)

// handleEvents streams the room's change feed over SSE. Clients reload
// the affected table on every event rather than trusting event order.
func handleEvents(feed *realtime.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		ch := feed.Subscribe(room.ID)
		defer feed.Unsubscribe(room.ID, ch)

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev := <-ch:
				data, _ := json.Marshal(ev)
				fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
