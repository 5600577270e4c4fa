package game

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiantplay/tacquiz/internal/database"
	"github.com/radiantplay/tacquiz/internal/migrations"
	"github.com/radiantplay/tacquiz/internal/quiz"
	"github.com/radiantplay/tacquiz/internal/realtime"
	"github.com/radiantplay/tacquiz/internal/store"
)

const (
	waitFor = 3 * time.Second
	tick    = 10 * time.Millisecond
)

var testConfig = Config{
	HeartbeatInterval: 5 * time.Second,
	QuestionTime:      60 * time.Second,
	RevealDelay:       5 * time.Second,
	KickGrace:         10 * time.Second,
}

type testEnv struct {
	store *store.SQLiteStore
	feed  *realtime.Feed
	bank  *quiz.Bank
	clock *clockwork.FakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))

	feed := realtime.NewFeed()
	return &testEnv{
		store: store.NewSQLiteStore(db, feed),
		feed:  feed,
		bank: quiz.NewBank([]quiz.Question{
			{Text: "q1", Options: []string{"a", "b", "c", "d"}, Correct: 0},
			{Text: "q2", Options: []string{"a", "b", "c", "d"}, Correct: 1},
		}),
		clock: clockwork.NewFakeClock(),
	}
}

func (e *testEnv) session(t *testing.T, room store.Room, player store.Player) *Session {
	t.Helper()
	sess, err := NewSession(Options{
		Store:  e.store,
		Feed:   e.feed,
		Bank:   e.bank,
		Clock:  e.clock,
		Config: testConfig,
		Room:   room,
		Player: player,
	})
	require.NoError(t, err)
	return sess
}

// runSession starts the session loop and returns its eventual error.
func runSession(ctx context.Context, sess *Session) <-chan error {
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()
	return done
}

func phaseIs(sess *Session, phase Phase) func() bool {
	return func() bool { return sess.State().Phase == phase }
}

func TestNewSessionRequiresContext(t *testing.T) {
	_, err := NewSession(Options{})
	require.ErrorIs(t, err, ErrNoSession)
}

func TestSessionFullGame(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	room, alice, err := e.store.CreateRoom(ctx, "Alice")
	require.NoError(t, err)
	_, bob, err := e.store.JoinRoom(ctx, room.Code, "Bob")
	require.NoError(t, err)

	host := e.session(t, room, alice)
	guest := e.session(t, room, bob)
	hostDone := runSession(ctx, host)
	guestDone := runSession(ctx, guest)

	require.Eventually(t, func() bool {
		st := host.State()
		return st.Phase == PhaseLobby && len(st.Players) == 2
	}, waitFor, tick)

	_, err = e.store.StartGame(ctx, room.ID)
	require.NoError(t, err)

	require.Eventually(t, phaseIs(host, PhaseOpen), waitFor, tick)
	require.Eventually(t, phaseIs(guest, PhaseOpen), waitFor, tick)
	require.Equal(t, "q1", host.State().Question.Text)

	// First answer in: the answerer waits, the other player still sees
	// the question open.
	require.NoError(t, host.SubmitAnswer(ctx, 0))
	require.Eventually(t, func() bool {
		st := host.State()
		return st.Phase == PhaseSubmitted && st.WaitingForOthers
	}, waitFor, tick)
	assert.Equal(t, PhaseOpen, guest.State().Phase)

	// Last answer in: both sessions independently conclude resolved.
	require.NoError(t, guest.SubmitAnswer(ctx, 3))
	require.Eventually(t, phaseIs(host, PhaseResolved), waitFor, tick)
	require.Eventually(t, phaseIs(guest, PhaseResolved), waitFor, tick)

	// Only the correct answer scores.
	require.Eventually(t, func() bool {
		p, err := e.store.Player(ctx, alice.ID)
		return err == nil && p.Score == 1
	}, waitFor, tick)
	p, err := e.store.Player(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Score)

	// The reveal delay elapses and the host drives the next question.
	e.clock.Advance(testConfig.RevealDelay)
	require.Eventually(t, func() bool {
		st := guest.State()
		return st.Phase == PhaseOpen && st.Room.CurrentQuestion == 2
	}, waitFor, tick)
	assert.Equal(t, -1, guest.State().SelectedAnswer)
	require.Eventually(t, phaseIs(host, PhaseOpen), waitFor, tick)

	require.NoError(t, host.SubmitAnswer(ctx, 1))
	require.NoError(t, guest.SubmitAnswer(ctx, 1))
	require.Eventually(t, phaseIs(host, PhaseResolved), waitFor, tick)

	// Last question resolved: the next reveal ends the game for everyone.
	e.clock.Advance(testConfig.RevealDelay)
	select {
	case err := <-hostDone:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("host session did not finish")
	}
	select {
	case err := <-guestDone:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("guest session did not finish")
	}

	final, err := e.store.Room(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusFinished, final.Status)

	players, err := e.store.ActivePlayers(ctx, room.ID)
	require.NoError(t, err)
	scores := map[string]int{}
	for _, p := range players {
		scores[p.Nickname] = p.Score
	}
	assert.Equal(t, map[string]int{"Alice": 2, "Bob": 1}, scores)
}

func TestSessionTimeoutKicksIdlePlayer(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	room, alice, err := e.store.CreateRoom(ctx, "Alice")
	require.NoError(t, err)
	_, bob, err := e.store.JoinRoom(ctx, room.Code, "Bob")
	require.NoError(t, err)

	host := e.session(t, room, alice)
	guest := e.session(t, room, bob)
	hostDone := runSession(ctx, host)
	guestDone := runSession(ctx, guest)

	require.Eventually(t, func() bool {
		return len(host.State().Players) == 2 && len(guest.State().Players) == 2
	}, waitFor, tick)

	_, err = e.store.StartGame(ctx, room.ID)
	require.NoError(t, err)
	require.Eventually(t, phaseIs(host, PhaseOpen), waitFor, tick)
	require.Eventually(t, phaseIs(guest, PhaseOpen), waitFor, tick)

	require.NoError(t, host.SubmitAnswer(ctx, 0))
	require.Eventually(t, func() bool {
		return host.State().WaitingForOthers
	}, waitFor, tick)

	// Bob never answers. The countdown expires and his session marks
	// itself timed out without writing an answer record.
	e.clock.Advance(testConfig.QuestionTime)
	require.Eventually(t, func() bool {
		st := guest.State()
		return st.TimedOut && st.Phase == PhaseSubmitted
	}, waitFor, tick)
	assert.Equal(t, PhaseSubmitted, host.State().Phase)

	// The grace expires: Bob deactivates himself, shrinking the roster,
	// which unblocks reconciliation for Alice.
	e.clock.Advance(testConfig.KickGrace)
	select {
	case err := <-guestDone:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("kicked session did not exit")
	}
	assert.True(t, guest.State().Kicked)

	require.Eventually(t, phaseIs(host, PhaseResolved), waitFor, tick)

	players, err := e.store.ActivePlayers(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Alice", players[0].Nickname)

	cancel()
	select {
	case err := <-hostDone:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(waitFor):
		t.Fatal("host session did not stop on cancel")
	}
}

func TestSessionJoinsGameInProgress(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	room, _, err := e.store.CreateRoom(ctx, "Alice")
	require.NoError(t, err)
	_, bob, err := e.store.JoinRoom(ctx, room.Code, "Bob")
	require.NoError(t, err)
	_, err = e.store.StartGame(ctx, room.ID)
	require.NoError(t, err)

	// The session starts after the game did: the initial refresh alone
	// must land it on the current question.
	guest := e.session(t, room, bob)
	done := runSession(ctx, guest)

	require.Eventually(t, func() bool {
		st := guest.State()
		return st.Phase == PhaseOpen && st.Room.CurrentQuestion == 1 && st.Question != nil
	}, waitFor, tick)

	cancel()
	<-done
}

func TestSessionSubmitAnswerValidation(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	room, alice, err := e.store.CreateRoom(ctx, "Alice")
	require.NoError(t, err)
	_, _, err = e.store.JoinRoom(ctx, room.Code, "Bob")
	require.NoError(t, err)

	host := e.session(t, room, alice)
	done := runSession(ctx, host)

	// Answers are rejected before the game starts.
	require.Eventually(t, phaseIs(host, PhaseLobby), waitFor, tick)
	require.ErrorIs(t, host.SubmitAnswer(ctx, 0), ErrNotPlaying)

	_, err = e.store.StartGame(ctx, room.ID)
	require.NoError(t, err)
	require.Eventually(t, phaseIs(host, PhaseOpen), waitFor, tick)

	require.NoError(t, host.SubmitAnswer(ctx, 2))
	require.ErrorIs(t, host.SubmitAnswer(ctx, 1), store.ErrAlreadyAnswered)

	st := host.State()
	assert.Equal(t, 2, st.SelectedAnswer)

	cancel()
	<-done
}

func TestSessionReconcilesRegardlessOfEventOrder(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	room, alice, err := e.store.CreateRoom(ctx, "Alice")
	require.NoError(t, err)
	_, bob, err := e.store.JoinRoom(ctx, room.Code, "Bob")
	require.NoError(t, err)
	_, err = e.store.StartGame(ctx, room.ID)
	require.NoError(t, err)

	// Bob's answer lands in the store before Alice's session ever runs:
	// the answer event is long gone by the time she subscribes.
	_, err = e.store.SubmitAnswer(ctx, room.ID, bob.ID, 1, 1, false)
	require.NoError(t, err)

	host := e.session(t, room, alice)
	done := runSession(ctx, host)
	require.Eventually(t, phaseIs(host, PhaseOpen), waitFor, tick)

	require.NoError(t, host.SubmitAnswer(ctx, 0))
	require.Eventually(t, phaseIs(host, PhaseResolved), waitFor, tick)

	// Duplicate and spurious events only trigger reloads; the resolved
	// conclusion is stable.
	for i := 0; i < 5; i++ {
		e.feed.Publish(realtime.Event{Table: realtime.TableAnswers, Op: realtime.OpInsert, RoomID: room.ID})
		e.feed.Publish(realtime.Event{Table: realtime.TablePlayers, Op: realtime.OpUpdate, RoomID: room.ID})
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, PhaseResolved, host.State().Phase)

	p, err := e.store.Player(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Score)

	cancel()
	err = <-done
	require.True(t, err == nil || errors.Is(err, context.Canceled))
}

func TestSessionStatePlayerViews(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	room, alice, err := e.store.CreateRoom(ctx, "Alice")
	require.NoError(t, err)
	_, bob, err := e.store.JoinRoom(ctx, room.Code, "Bob")
	require.NoError(t, err)
	_, err = e.store.StartGame(ctx, room.ID)
	require.NoError(t, err)

	host := e.session(t, room, alice)
	done := runSession(ctx, host)
	require.Eventually(t, phaseIs(host, PhaseOpen), waitFor, tick)

	require.NoError(t, host.SubmitAnswer(ctx, 0))
	require.Eventually(t, func() bool {
		for _, p := range host.State().Players {
			if p.ID == alice.ID && p.Answered {
				return true
			}
		}
		return false
	}, waitFor, tick)

	var aliceView, bobView *PlayerView
	st := host.State()
	for i := range st.Players {
		switch st.Players[i].ID {
		case alice.ID:
			aliceView = &st.Players[i]
		case bob.ID:
			bobView = &st.Players[i]
		}
	}
	require.NotNil(t, aliceView)
	require.NotNil(t, bobView)

	assert.True(t, aliceView.Answered)
	assert.Equal(t, 0, aliceView.AnswerIndex)
	assert.True(t, aliceView.IsCorrect)
	assert.Equal(t, LivenessFresh, aliceView.Liveness)

	assert.False(t, bobView.Answered)
	assert.Equal(t, -1, bobView.AnswerIndex)

	cancel()
	<-done
}
