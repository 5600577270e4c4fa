// Package realtime is an in-process change feed. Every store mutation is
// published as a row-change event keyed by room, mirroring the push
// notifications a hosted realtime database would deliver to subscribed
// clients. Delivery is best effort: subscribers that fall behind lose
// events and are expected to re-derive state from the store.
package realtime

import "sync"

type Table string

const (
	TableRooms   Table = "game_rooms"
	TablePlayers Table = "players"
	TableAnswers Table = "player_answers"
	TableChat    Table = "chat_messages"
)

type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
)

// Event describes a single row change. It intentionally carries no row
// payload: consumers reload from the store, so a dropped or reordered
// event never leaves them with stale derived state.
type Event struct {
	Table  Table  `json:"table"`
	Op     Op     `json:"op"`
	RoomID string `json:"roomId"`
}

// Feed fans out change events to room subscribers.
type Feed struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

func NewFeed() *Feed {
	return &Feed{
		subs: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe returns a channel receiving change events for the given room.
func (f *Feed) Subscribe(roomID string) chan Event {
	ch := make(chan Event, 16)
	f.mu.Lock()
	if f.subs[roomID] == nil {
		f.subs[roomID] = make(map[chan Event]struct{})
	}
	f.subs[roomID][ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the room's subscribers.
func (f *Feed) Unsubscribe(roomID string, ch chan Event) {
	f.mu.Lock()
	delete(f.subs[roomID], ch)
	if len(f.subs[roomID]) == 0 {
		delete(f.subs, roomID)
	}
	f.mu.Unlock()
}

// Publish sends an event to all subscribers of the event's room.
func (f *Feed) Publish(ev Event) {
	f.mu.RLock()
	for ch := range f.subs[ev.RoomID] {
		select {
		case ch <- ev:
		default:
			// Drop if subscriber is slow.
		}
	}
	f.mu.RUnlock()
}
