package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"github.com/radiantplay/tacquiz/internal/realtime"
)

func TestHandleWSStreams(t *testing.T) {
	h, deps := newTestHandler(t)
	room, host, _ := createRoom(t, h)

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/rooms/" + room.ID + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.CloseNow()

	go func() {
		time.Sleep(100 * time.Millisecond)
		deps.Store.Heartbeat(ctx, host.ID, time.Now().UTC())
	}()

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("reading message: %v", err)
	}

	var ev realtime.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decoding event %q: %v", data, err)
	}
	if ev.Table != realtime.TablePlayers || ev.RoomID != room.ID {
		t.Errorf("event = %+v, want players update for room %s", ev, room.ID)
	}

	conn.Close(websocket.StatusNormalClosure, "")
}
