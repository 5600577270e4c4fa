package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"nhooyr.io/websocket"

	"github.com/radiantplay/tacquiz/internal/realtime"
)

// handleWS delivers the same change feed as the SSE endpoint over a
// WebSocket, for clients that already hold one open.
func handleWS(logger *slog.Logger, feed *realtime.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		// Write-only stream; CloseRead surfaces client disconnects.
		ctx := conn.CloseRead(r.Context())

		ch := feed.Subscribe(room.ID)
		defer feed.Unsubscribe(room.ID, ch)

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-ch:
				data, _ := json.Marshal(ev)
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}
