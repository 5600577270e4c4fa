// Package game implements the replicated room synchronization engine.
// Each connected client runs its own Session against the shared store and
// change feed; there is no central authority. Every Session re-derives
// the same conclusions from whatever snapshot it currently holds, so
// out-of-order or dropped feed events never corrupt the game: the next
// event triggers a reload and the derivation runs again.
package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/radiantplay/tacquiz/internal/quiz"
	"github.com/radiantplay/tacquiz/internal/realtime"
	"github.com/radiantplay/tacquiz/internal/store"
)

var (
	// ErrNoSession means the session was constructed without a room and
	// player context; callers should send the user back to the join screen.
	ErrNoSession = errors.New("missing room or player context")
	// ErrNotPlaying rejects answers outside a running question.
	ErrNotPlaying = errors.New("game is not in progress")
)

// Phase is the per-question state machine replicated on every client.
type Phase string

const (
	// PhaseLobby: the room has not started yet.
	PhaseLobby Phase = "lobby"
	// PhaseOpen: no local answer submitted for the current question.
	PhaseOpen Phase = "open"
	// PhaseSubmitted: local player answered, awaiting the rest.
	PhaseSubmitted Phase = "submitted"
	// PhaseResolved: every active player has answered; results revealed.
	PhaseResolved Phase = "resolved"
)

// Config holds the session's timing knobs. Zero values fall back to the
// browser client's pacing.
type Config struct {
	HeartbeatInterval time.Duration
	QuestionTime      time.Duration
	RevealDelay       time.Duration
	KickGrace         time.Duration
}

func (c Config) withDefaults() Config {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 5 * time.Second
	}
	if c.QuestionTime <= 0 {
		c.QuestionTime = 60 * time.Second
	}
	if c.RevealDelay <= 0 {
		c.RevealDelay = 5 * time.Second
	}
	if c.KickGrace <= 0 {
		c.KickGrace = 10 * time.Second
	}
	return c
}

// Options wires a Session to its collaborators. Store, Feed and Bank are
// required; Clock and Logger default to the real clock and a discard logger.
type Options struct {
	Store  store.Store
	Feed   *realtime.Feed
	Bank   *quiz.Bank
	Clock  clockwork.Clock
	Logger *slog.Logger
	Config Config

	Room   store.Room
	Player store.Player
}

// Session is one client's view of a multiplayer room. All authoritative
// state lives in the store; the session owns only transient derived state
// which is discarded and rebuilt from the store on every change event.
type Session struct {
	store  store.Store
	feed   *realtime.Feed
	bank   *quiz.Bank
	clock  clockwork.Clock
	logger *slog.Logger
	cfg    Config

	roomID   string
	playerID string
	nickname string
	isHost   bool

	mu       sync.Mutex
	room     store.Room
	players  []store.Player
	answers  []store.Answer
	chat     []store.ChatMessage
	selected int
	answered bool
	resolved bool
	waiting  bool
	credited bool
	timedOut bool
	kicked   bool
	finished bool

	questionTimer clockwork.Timer
	revealTimer   clockwork.Timer
	kickTimer     clockwork.Timer
}

func NewSession(opts Options) (*Session, error) {
	if opts.Room.ID == "" || opts.Player.ID == "" {
		return nil, ErrNoSession
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		store:    opts.Store,
		feed:     opts.Feed,
		bank:     opts.Bank,
		clock:    opts.Clock,
		logger:   opts.Logger.With("room_id", opts.Room.ID, "player", opts.Player.Nickname),
		cfg:      opts.Config.withDefaults(),
		roomID:   opts.Room.ID,
		playerID: opts.Player.ID,
		nickname: opts.Player.Nickname,
		isHost:   opts.Player.IsHost,
		room:     opts.Room,
		selected: -1,
	}, nil
}

// Run drives the session until the game finishes, the player is kicked,
// or ctx is cancelled. It must be called exactly once.
func (s *Session) Run(ctx context.Context) error {
	events := s.feed.Subscribe(s.roomID)
	defer s.feed.Unsubscribe(s.roomID, events)

	heartbeat := s.clock.NewTicker(s.cfg.HeartbeatInterval)
	defer heartbeat.Stop()

	// Align last_seen with the session clock before anything else.
	if err := s.store.Heartbeat(ctx, s.playerID, s.clock.Now()); err != nil {
		s.logger.Error("initial heartbeat failed", "error", err)
	}
	s.refresh(ctx)

	for {
		s.mu.Lock()
		var questionC, revealC, kickC <-chan time.Time
		if s.questionTimer != nil {
			questionC = s.questionTimer.Chan()
		}
		if s.revealTimer != nil {
			revealC = s.revealTimer.Chan()
		}
		if s.kickTimer != nil {
			kickC = s.kickTimer.Chan()
		}
		done := s.finished || s.kicked
		s.mu.Unlock()
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			s.handleEvent(ctx, ev)
		case <-heartbeat.Chan():
			if err := s.store.Heartbeat(ctx, s.playerID, s.clock.Now()); err != nil {
				s.logger.Error("heartbeat failed", "error", err)
			}
		case <-questionC:
			s.handleTimeUp()
		case <-kickC:
			s.handleKick(ctx)
		case <-revealC:
			s.advance(ctx)
		}
	}
}

func (s *Session) handleEvent(ctx context.Context, ev realtime.Event) {
	switch ev.Table {
	case realtime.TableRooms:
		s.reloadRoom(ctx)
	case realtime.TablePlayers:
		s.reloadPlayers(ctx)
		s.reconcile(ctx)
	case realtime.TableAnswers:
		s.reloadAnswers(ctx)
		s.reconcile(ctx)
	case realtime.TableChat:
		s.reloadChat(ctx)
	}
}

// refresh rebuilds the whole snapshot, used once at startup. A session
// joining a game already in progress picks up the current question here.
func (s *Session) refresh(ctx context.Context) {
	s.reloadRoom(ctx)
	s.reloadPlayers(ctx)
	s.reloadAnswers(ctx)
	s.reloadChat(ctx)
	s.reconcile(ctx)
}

func (s *Session) reloadRoom(ctx context.Context) {
	room, err := s.store.Room(ctx, s.roomID)
	if err != nil {
		s.logger.Error("loading room failed", "error", err)
		return
	}

	s.mu.Lock()
	prev := s.room
	s.room = room
	if room.Status == store.StatusFinished {
		s.finished = true
	}
	questionChanged := room.Status == store.StatusPlaying &&
		room.CurrentQuestion > 0 &&
		room.CurrentQuestion != prev.CurrentQuestion
	if questionChanged {
		s.resetQuestionLocked()
	}
	s.mu.Unlock()

	if questionChanged {
		s.reloadAnswers(ctx)
		s.reconcile(ctx)
	}
}

// resetQuestionLocked discards all per-question local state and restarts
// the countdown. Called with s.mu held.
func (s *Session) resetQuestionLocked() {
	s.selected = -1
	s.answered = false
	s.resolved = false
	s.waiting = false
	s.credited = false
	s.timedOut = false
	s.answers = nil

	if s.kickTimer != nil {
		s.kickTimer.Stop()
		s.kickTimer = nil
	}
	if s.revealTimer != nil {
		s.revealTimer.Stop()
		s.revealTimer = nil
	}
	if s.questionTimer == nil {
		s.questionTimer = s.clock.NewTimer(s.cfg.QuestionTime)
	} else {
		s.questionTimer.Reset(s.cfg.QuestionTime)
	}
}

func (s *Session) reloadPlayers(ctx context.Context) {
	players, err := s.store.ActivePlayers(ctx, s.roomID)
	if err != nil {
		s.logger.Error("loading players failed", "error", err)
		return
	}
	s.mu.Lock()
	s.players = players
	s.mu.Unlock()
}

func (s *Session) reloadAnswers(ctx context.Context) {
	s.mu.Lock()
	question := s.room.CurrentQuestion
	s.mu.Unlock()
	if question < 1 {
		return
	}

	answers, err := s.store.QuestionAnswers(ctx, s.roomID, question)
	if err != nil {
		s.logger.Error("loading answers failed", "error", err)
		return
	}
	s.mu.Lock()
	// The room may have advanced while the query was in flight; a stale
	// result would be overwritten by the reload the advance triggers.
	if s.room.CurrentQuestion == question {
		s.answers = answers
	}
	s.mu.Unlock()
}

func (s *Session) reloadChat(ctx context.Context) {
	chat, err := s.store.ChatHistory(ctx, s.roomID)
	if err != nil {
		s.logger.Error("loading chat failed", "error", err)
		return
	}
	s.mu.Lock()
	s.chat = chat
	s.mu.Unlock()
}

// reconcile re-evaluates the all-answered condition. It runs after every
// roster or answer change, in whichever order those arrive: the two feed
// channels carry no ordering guarantee relative to each other.
func (s *Session) reconcile(ctx context.Context) {
	s.mu.Lock()
	if s.room.Status != store.StatusPlaying || s.room.CurrentQuestion < 1 {
		s.mu.Unlock()
		return
	}

	active := len(s.players)
	answered := 0
	var local *store.Answer
	for i := range s.answers {
		if s.answers[i].QuestionNumber != s.room.CurrentQuestion {
			continue
		}
		answered++
		if s.answers[i].PlayerID == s.playerID {
			local = &s.answers[i]
		}
	}

	if active == 0 || answered < active {
		if s.answered && !s.resolved {
			s.waiting = true
		}
		s.mu.Unlock()
		return
	}
	if s.resolved {
		s.mu.Unlock()
		return
	}

	s.resolved = true
	s.waiting = false
	if s.questionTimer != nil {
		s.questionTimer.Stop()
	}
	if s.kickTimer != nil {
		s.kickTimer.Stop()
		s.kickTimer = nil
	}

	credit := local != nil && local.IsCorrect && !s.credited
	if credit {
		s.credited = true
	}
	if s.isHost {
		s.revealTimer = s.clock.NewTimer(s.cfg.RevealDelay)
	}
	question := s.room.CurrentQuestion
	s.mu.Unlock()

	s.logger.Info("question resolved", "question", question, "answers", answered)
	if credit {
		s.creditScore(ctx)
	}
}

// creditScore bumps the local player's score by one. Plain write-after-read,
// no compare-and-swap: the one-answer-per-question constraint is what keeps
// two increments from racing.
func (s *Session) creditScore(ctx context.Context) {
	p, err := s.store.Player(ctx, s.playerID)
	if err != nil {
		s.logger.Error("loading player for score update failed", "error", err)
		return
	}
	if err := s.store.UpdateScore(ctx, s.playerID, p.Score+1); err != nil {
		s.logger.Error("updating score failed", "error", err)
	}
}

// handleTimeUp fires when the question countdown expires without a local
// answer. The player is treated as answered with no record, and a kick
// grace countdown starts; submitting during the grace is still allowed
// elsewhere in the UI flow, but this session marks itself done.
func (s *Session) handleTimeUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.answered || s.resolved {
		return
	}
	s.answered = true
	s.timedOut = true
	s.waiting = true
	s.kickTimer = s.clock.NewTimer(s.cfg.KickGrace)
	s.logger.Info("question timed out", "question", s.room.CurrentQuestion)
}

// handleKick deactivates the local player after the grace expires. The
// roster shrink unblocks reconciliation for everyone else.
func (s *Session) handleKick(ctx context.Context) {
	if err := s.store.LeaveRoom(ctx, s.playerID); err != nil {
		s.logger.Error("leaving room after kick failed", "error", err)
	}
	s.mu.Lock()
	s.kicked = true
	s.kickTimer = nil
	s.mu.Unlock()
	s.logger.Info("kicked for inactivity")
}

// advance is the host-only progression step, run after the reveal delay.
// The update is unconditional; only the single host ever calls it.
func (s *Session) advance(ctx context.Context) {
	s.mu.Lock()
	s.revealTimer = nil
	question := s.room.CurrentQuestion
	s.mu.Unlock()

	if question >= s.bank.Len() {
		if err := s.store.EndGame(ctx, s.roomID); err != nil {
			s.logger.Error("ending game failed", "error", err)
		}
		return
	}
	if err := s.store.NextQuestion(ctx, s.roomID, question+1); err != nil {
		s.logger.Error("advancing question failed", "error", err)
	}
}

// SubmitAnswer records the local player's choice for the current question.
// Local state is set optimistically and rolled back if the insert fails,
// so the player may retry manually.
func (s *Session) SubmitAnswer(ctx context.Context, answerIndex int) error {
	s.mu.Lock()
	if s.room.Status != store.StatusPlaying || s.room.CurrentQuestion < 1 {
		s.mu.Unlock()
		return ErrNotPlaying
	}
	if s.answered || s.resolved {
		s.mu.Unlock()
		return store.ErrAlreadyAnswered
	}
	question := s.room.CurrentQuestion
	s.selected = answerIndex
	s.answered = true
	s.mu.Unlock()

	isCorrect := s.bank.IsCorrect(question, answerIndex)
	_, err := s.store.SubmitAnswer(ctx, s.roomID, s.playerID, question, answerIndex, isCorrect)
	if err != nil {
		s.mu.Lock()
		if s.room.CurrentQuestion == question {
			s.selected = -1
			s.answered = false
		}
		s.mu.Unlock()
		return err
	}

	// Reload directly rather than waiting for our own feed event.
	s.reloadAnswers(ctx)
	s.reconcile(ctx)
	return nil
}

// SendChat posts a message under the local player's nickname.
func (s *Session) SendChat(ctx context.Context, message string) error {
	_, err := s.store.SendChat(ctx, s.roomID, s.playerID, s.nickname, message)
	return err
}

// PlayerView decorates a roster entry with derived per-question state.
type PlayerView struct {
	store.Player
	Liveness    Liveness `json:"liveness"`
	Answered    bool     `json:"answered"`
	AnswerIndex int      `json:"answerIndex"`
	IsCorrect   bool     `json:"isCorrect"`
}

// State is the presentation-facing snapshot: plain data, no visuals.
type State struct {
	Room             store.Room          `json:"room"`
	Players          []PlayerView        `json:"players"`
	Chat             []store.ChatMessage `json:"chat"`
	Phase            Phase               `json:"phase"`
	Question         *quiz.Question      `json:"question,omitempty"`
	SelectedAnswer   int                 `json:"selectedAnswer"`
	WaitingForOthers bool                `json:"waitingForOthers"`
	TimedOut         bool                `json:"timedOut"`
	Kicked           bool                `json:"kicked"`
	Finished         bool                `json:"finished"`
}

// State returns the current derived snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	st := State{
		Room:             s.room,
		Chat:             s.chat,
		SelectedAnswer:   s.selected,
		WaitingForOthers: s.waiting,
		TimedOut:         s.timedOut,
		Kicked:           s.kicked,
		Finished:         s.finished,
	}

	switch {
	case s.room.Status != store.StatusPlaying || s.room.CurrentQuestion < 1:
		st.Phase = PhaseLobby
	case s.resolved:
		st.Phase = PhaseResolved
	case s.answered:
		st.Phase = PhaseSubmitted
	default:
		st.Phase = PhaseOpen
	}

	if q, ok := s.bank.Question(s.room.CurrentQuestion); ok && st.Phase != PhaseLobby {
		st.Question = &q
	}

	for _, p := range s.players {
		view := PlayerView{
			Player:      p,
			Liveness:    Classify(now, p.LastSeen),
			AnswerIndex: -1,
		}
		for _, a := range s.answers {
			if a.PlayerID == p.ID && a.QuestionNumber == s.room.CurrentQuestion {
				view.Answered = true
				view.AnswerIndex = a.AnswerIndex
				view.IsCorrect = a.IsCorrect
				break
			}
		}
		st.Players = append(st.Players, view)
	}
	return st
}
