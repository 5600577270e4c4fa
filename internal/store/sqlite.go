package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/radiantplay/tacquiz/internal/realtime"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SQLiteStore implements Store on a libSQL database. Every successful
// mutation is published on the feed so subscribed clients can reload.
type SQLiteStore struct {
	db   *sql.DB
	feed *realtime.Feed
}

// NewSQLiteStore wraps db. feed may be nil, in which case no change
// events are published.
func NewSQLiteStore(db *sql.DB, feed *realtime.Feed) *SQLiteStore {
	return &SQLiteStore{db: db, feed: feed}
}

func (s *SQLiteStore) publish(table realtime.Table, op realtime.Op, roomID string) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(realtime.Event{Table: table, Op: op, RoomID: roomID})
}

// newRoomCode returns a 6-character uppercase alphanumeric code.
func newRoomCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

func (s *SQLiteStore) CreateRoom(ctx context.Context, hostNickname string) (Room, Player, error) {
	code, err := newRoomCode()
	if err != nil {
		return Room{}, Player{}, errors.Join(ErrCreateFailed, err)
	}

	roomID := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO game_rooms (id, room_code, host_id, status, current_question, max_players)
		VALUES (?, ?, NULL, ?, 0, ?)
	`, roomID, code, StatusWaiting, MaxPlayers)
	if err != nil {
		return Room{}, Player{}, errors.Join(ErrCreateFailed, fmt.Errorf("inserting room: %w", err))
	}

	playerID := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO players (id, room_id, nickname, score, is_host, is_active)
		VALUES (?, ?, ?, 0, 1, 1)
	`, playerID, roomID, hostNickname)
	if err != nil {
		// No cleanup; the orphaned room stays behind.
		return Room{}, Player{}, errors.Join(ErrCreateFailed, fmt.Errorf("inserting host player: %w", err))
	}

	_, err = s.db.ExecContext(ctx, `UPDATE game_rooms SET host_id = ? WHERE id = ?`, playerID, roomID)
	if err != nil {
		return Room{}, Player{}, errors.Join(ErrCreateFailed, fmt.Errorf("backfilling host: %w", err))
	}

	s.publish(realtime.TableRooms, realtime.OpInsert, roomID)
	s.publish(realtime.TablePlayers, realtime.OpInsert, roomID)

	room, err := s.Room(ctx, roomID)
	if err != nil {
		return Room{}, Player{}, errors.Join(ErrCreateFailed, err)
	}
	player, err := s.Player(ctx, playerID)
	if err != nil {
		return Room{}, Player{}, errors.Join(ErrCreateFailed, err)
	}
	return room, player, nil
}

func (s *SQLiteStore) JoinRoom(ctx context.Context, code, nickname string) (Room, Player, error) {
	room, err := s.roomByCode(ctx, strings.ToUpper(code))
	if err != nil {
		return Room{}, Player{}, err
	}
	if room.Status != StatusWaiting {
		return Room{}, Player{}, ErrRoomNotFound
	}

	var active int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM players WHERE room_id = ? AND is_active = 1
	`, room.ID).Scan(&active)
	if err != nil {
		return Room{}, Player{}, err
	}
	if active >= room.MaxPlayers {
		return Room{}, Player{}, ErrRoomFull
	}

	var taken int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM players
		WHERE room_id = ? AND nickname = ? AND is_active = 1
	`, room.ID, nickname).Scan(&taken)
	if err != nil {
		return Room{}, Player{}, err
	}
	if taken > 0 {
		return Room{}, Player{}, ErrNicknameTaken
	}

	playerID := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO players (id, room_id, nickname, score, is_host, is_active)
		VALUES (?, ?, ?, 0, 0, 1)
	`, playerID, room.ID, nickname)
	if err != nil {
		return Room{}, Player{}, fmt.Errorf("inserting player: %w", err)
	}

	s.publish(realtime.TablePlayers, realtime.OpInsert, room.ID)

	player, err := s.Player(ctx, playerID)
	if err != nil {
		return Room{}, Player{}, err
	}
	return room, player, nil
}

func (s *SQLiteStore) StartGame(ctx context.Context, roomID string) (Room, error) {
	room, err := s.Room(ctx, roomID)
	if err != nil {
		return Room{}, err
	}
	if room.Status != StatusWaiting {
		return Room{}, ErrNotWaiting
	}

	var active int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM players WHERE room_id = ? AND is_active = 1
	`, roomID).Scan(&active)
	if err != nil {
		return Room{}, err
	}
	if active < 2 {
		return Room{}, ErrNotEnoughPlayers
	}

	// Conditional update: only one client wins the race to start.
	res, err := s.db.ExecContext(ctx, `
		UPDATE game_rooms SET status = ?, current_question = 1
		WHERE id = ? AND status = ?
	`, StatusPlaying, roomID, StatusWaiting)
	if err != nil {
		return Room{}, fmt.Errorf("starting game: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return Room{}, ErrAlreadyStarted
	}

	s.publish(realtime.TableRooms, realtime.OpUpdate, roomID)
	return s.Room(ctx, roomID)
}

func (s *SQLiteStore) NextQuestion(ctx context.Context, roomID string, questionNumber int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE game_rooms SET current_question = ? WHERE id = ?
	`, questionNumber, roomID)
	if err != nil {
		return fmt.Errorf("advancing question: %w", err)
	}
	s.publish(realtime.TableRooms, realtime.OpUpdate, roomID)
	return nil
}

func (s *SQLiteStore) EndGame(ctx context.Context, roomID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE game_rooms SET status = ? WHERE id = ?
	`, StatusFinished, roomID)
	if err != nil {
		return fmt.Errorf("ending game: %w", err)
	}
	s.publish(realtime.TableRooms, realtime.OpUpdate, roomID)
	return nil
}

func (s *SQLiteStore) LeaveRoom(ctx context.Context, playerID string) error {
	var roomID string
	err := s.db.QueryRowContext(ctx, `
		UPDATE players SET is_active = 0 WHERE id = ?
		RETURNING room_id
	`, playerID).Scan(&roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPlayerNotFound
	}
	if err != nil {
		return fmt.Errorf("leaving room: %w", err)
	}
	s.publish(realtime.TablePlayers, realtime.OpUpdate, roomID)
	return nil
}

func (s *SQLiteStore) Heartbeat(ctx context.Context, playerID string, at time.Time) error {
	var roomID string
	err := s.db.QueryRowContext(ctx, `
		UPDATE players SET last_seen = ? WHERE id = ?
		RETURNING room_id
	`, at.UTC().Format(timeLayout), playerID).Scan(&roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPlayerNotFound
	}
	if err != nil {
		return fmt.Errorf("updating last seen: %w", err)
	}
	s.publish(realtime.TablePlayers, realtime.OpUpdate, roomID)
	return nil
}

func (s *SQLiteStore) Room(ctx context.Context, roomID string) (Room, error) {
	return s.scanRoom(s.db.QueryRowContext(ctx, `
		SELECT id, room_code, COALESCE(host_id, ''), status, current_question, max_players, created_at
		FROM game_rooms WHERE id = ?
	`, roomID))
}

func (s *SQLiteStore) roomByCode(ctx context.Context, code string) (Room, error) {
	return s.scanRoom(s.db.QueryRowContext(ctx, `
		SELECT id, room_code, COALESCE(host_id, ''), status, current_question, max_players, created_at
		FROM game_rooms WHERE room_code = ?
	`, code))
}

func (s *SQLiteStore) scanRoom(row *sql.Row) (Room, error) {
	var r Room
	var createdAt string
	err := row.Scan(&r.ID, &r.Code, &r.HostID, &r.Status, &r.CurrentQuestion, &r.MaxPlayers, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Room{}, ErrRoomNotFound
	}
	if err != nil {
		return Room{}, err
	}
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

func (s *SQLiteStore) Player(ctx context.Context, playerID string) (Player, error) {
	var p Player
	var isHost, isActive int
	var lastSeen, createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, room_id, nickname, score, is_host, is_active, last_seen, created_at
		FROM players WHERE id = ?
	`, playerID).Scan(&p.ID, &p.RoomID, &p.Nickname, &p.Score, &isHost, &isActive, &lastSeen, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Player{}, ErrPlayerNotFound
	}
	if err != nil {
		return Player{}, err
	}
	p.IsHost = isHost != 0
	p.IsActive = isActive != 0
	p.LastSeen = parseTime(lastSeen)
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}

func (s *SQLiteStore) ActivePlayers(ctx context.Context, roomID string) ([]Player, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, nickname, score, is_host, is_active, last_seen, created_at
		FROM players
		WHERE room_id = ? AND is_active = 1
		ORDER BY created_at
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		var isHost, isActive int
		var lastSeen, createdAt string
		if err := rows.Scan(&p.ID, &p.RoomID, &p.Nickname, &p.Score, &isHost, &isActive, &lastSeen, &createdAt); err != nil {
			return nil, err
		}
		p.IsHost = isHost != 0
		p.IsActive = isActive != 0
		p.LastSeen = parseTime(lastSeen)
		p.CreatedAt = parseTime(createdAt)
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *SQLiteStore) SubmitAnswer(ctx context.Context, roomID, playerID string, questionNumber, answerIndex int, isCorrect bool) (Answer, error) {
	correct := 0
	if isCorrect {
		correct = 1
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO player_answers (id, room_id, player_id, question_number, answer_index, is_correct)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, roomID, playerID, questionNumber, answerIndex, correct)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return Answer{}, ErrAlreadyAnswered
		}
		return Answer{}, fmt.Errorf("inserting answer: %w", err)
	}

	s.publish(realtime.TableAnswers, realtime.OpInsert, roomID)

	var a Answer
	var answeredAt string
	err = s.db.QueryRowContext(ctx, `
		SELECT id, room_id, player_id, question_number, answer_index, is_correct, answered_at
		FROM player_answers WHERE id = ?
	`, id).Scan(&a.ID, &a.RoomID, &a.PlayerID, &a.QuestionNumber, &a.AnswerIndex, &correct, &answeredAt)
	if err != nil {
		return Answer{}, err
	}
	a.IsCorrect = correct != 0
	a.AnsweredAt = parseTime(answeredAt)
	return a, nil
}

func (s *SQLiteStore) QuestionAnswers(ctx context.Context, roomID string, questionNumber int) ([]Answer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, player_id, question_number, answer_index, is_correct, answered_at
		FROM player_answers
		WHERE room_id = ? AND question_number = ?
	`, roomID, questionNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []Answer
	for rows.Next() {
		var a Answer
		var correct int
		var answeredAt string
		if err := rows.Scan(&a.ID, &a.RoomID, &a.PlayerID, &a.QuestionNumber, &a.AnswerIndex, &correct, &answeredAt); err != nil {
			return nil, err
		}
		a.IsCorrect = correct != 0
		a.AnsweredAt = parseTime(answeredAt)
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (s *SQLiteStore) UpdateScore(ctx context.Context, playerID string, score int) error {
	var roomID string
	err := s.db.QueryRowContext(ctx, `
		UPDATE players SET score = ? WHERE id = ?
		RETURNING room_id
	`, score, playerID).Scan(&roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPlayerNotFound
	}
	if err != nil {
		return fmt.Errorf("updating score: %w", err)
	}
	s.publish(realtime.TablePlayers, realtime.OpUpdate, roomID)
	return nil
}

func (s *SQLiteStore) SendChat(ctx context.Context, roomID, playerID, nickname, message string) (ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return ChatMessage{}, ErrEmptyMessage
	}
	if len(message) > MaxChatLen {
		return ChatMessage{}, ErrMessageTooLong
	}

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, room_id, player_id, player_nickname, message)
		VALUES (?, ?, ?, ?, ?)
	`, id, roomID, playerID, nickname, message)
	if err != nil {
		return ChatMessage{}, fmt.Errorf("inserting chat message: %w", err)
	}

	s.publish(realtime.TableChat, realtime.OpInsert, roomID)

	var m ChatMessage
	var createdAt string
	err = s.db.QueryRowContext(ctx, `
		SELECT id, room_id, player_id, player_nickname, message, created_at
		FROM chat_messages WHERE id = ?
	`, id).Scan(&m.ID, &m.RoomID, &m.PlayerID, &m.PlayerNickname, &m.Message, &createdAt)
	if err != nil {
		return ChatMessage{}, err
	}
	m.CreatedAt = parseTime(createdAt)
	return m, nil
}

func (s *SQLiteStore) ChatHistory(ctx context.Context, roomID string) ([]ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, player_id, player_nickname, message, created_at
		FROM chat_messages
		WHERE room_id = ?
		ORDER BY created_at
		LIMIT ?
	`, roomID, ChatHistoryLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []ChatMessage
	for rows.Next() {
		var m ChatMessage
		var createdAt string
		if err := rows.Scan(&m.ID, &m.RoomID, &m.PlayerID, &m.PlayerNickname, &m.Message, &createdAt); err != nil {
			return nil, err
		}
		m.CreatedAt = parseTime(createdAt)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

const timeLayout = "2006-01-02T15:04:05.000Z"

// parseTime decodes the store's text timestamps. A zero time is returned
// for anything unparseable; timestamps are display and liveness input,
// never control flow.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
