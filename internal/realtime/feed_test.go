package realtime

import (
	"testing"
	"time"
)

func TestFeedDeliversToRoomSubscribers(t *testing.T) {
	feed := NewFeed()

	a := feed.Subscribe("room-a")
	defer feed.Unsubscribe("room-a", a)
	b := feed.Subscribe("room-b")
	defer feed.Unsubscribe("room-b", b)

	ev := Event{Table: TablePlayers, Op: OpUpdate, RoomID: "room-a"}
	feed.Publish(ev)

	select {
	case got := <-a:
		if got != ev {
			t.Errorf("got %+v, want %+v", got, ev)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber for room-a received nothing")
	}

	select {
	case got := <-b:
		t.Errorf("room-b subscriber received %+v, want nothing", got)
	default:
	}
}

func TestFeedFanOut(t *testing.T) {
	feed := NewFeed()

	first := feed.Subscribe("room")
	second := feed.Subscribe("room")
	defer feed.Unsubscribe("room", first)
	defer feed.Unsubscribe("room", second)

	feed.Publish(Event{Table: TableChat, Op: OpInsert, RoomID: "room"})

	for i, ch := range []chan Event{first, second} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d received nothing", i)
		}
	}
}

func TestFeedDropsWhenSubscriberIsSlow(t *testing.T) {
	feed := NewFeed()

	ch := feed.Subscribe("room")
	defer feed.Unsubscribe("room", ch)

	// Overflow the buffer without reading. Publish must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			feed.Publish(Event{Table: TableAnswers, Op: OpInsert, RoomID: "room"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	if got := len(ch); got != cap(ch) {
		t.Errorf("buffered %d events, want full buffer of %d", got, cap(ch))
	}
}

func TestFeedUnsubscribeStopsDelivery(t *testing.T) {
	feed := NewFeed()

	ch := feed.Subscribe("room")
	feed.Unsubscribe("room", ch)

	feed.Publish(Event{Table: TableRooms, Op: OpUpdate, RoomID: "room"})
	if got := len(ch); got != 0 {
		t.Errorf("received %d events after unsubscribe, want 0", got)
	}
}
