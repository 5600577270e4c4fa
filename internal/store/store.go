// Package store persists rooms, players, answers and chat in SQLite and
// publishes every mutation on the realtime change feed. It is the single
// source of truth: game clients hold no authoritative state beyond the
// snapshot they last loaded from here.
package store

import (
	"context"
	"errors"
	"time"
)

const (
	// MaxPlayers is the room capacity set at creation time.
	MaxPlayers = 6
	// MaxChatLen caps a chat message after trimming.
	MaxChatLen = 200
	// ChatHistoryLimit bounds how many messages history returns.
	ChatHistoryLimit = 50
)

var (
	ErrRoomNotFound     = errors.New("room not found or already started")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrRoomFull         = errors.New("room is full")
	ErrNicknameTaken    = errors.New("nickname already taken in this room")
	ErrNotWaiting       = errors.New("game has already started or finished")
	ErrNotEnoughPlayers = errors.New("need at least 2 players to start")
	ErrAlreadyStarted   = errors.New("room was started by another player")
	ErrAlreadyAnswered  = errors.New("question already answered")
	ErrCreateFailed     = errors.New("creating room failed")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrMessageTooLong   = errors.New("message is too long")
)

type Store interface {
	// CreateRoom inserts a waiting room plus its host player, then
	// backfills the room's host reference. The three writes are not
	// atomic; a mid-sequence failure surfaces ErrCreateFailed and may
	// leave an orphaned room behind.
	CreateRoom(ctx context.Context, hostNickname string) (Room, Player, error)
	JoinRoom(ctx context.Context, code, nickname string) (Room, Player, error)
	// StartGame transitions waiting to playing with a conditional update.
	// Losing the race to another client yields ErrAlreadyStarted.
	StartGame(ctx context.Context, roomID string) (Room, error)
	// NextQuestion and EndGame are unconditional; only the host client
	// is supposed to call them.
	NextQuestion(ctx context.Context, roomID string, questionNumber int) error
	EndGame(ctx context.Context, roomID string) error
	// LeaveRoom soft-deletes the player. Rows are never hard-deleted.
	LeaveRoom(ctx context.Context, playerID string) error
	// Heartbeat stamps the player's last_seen with a caller-supplied
	// time; liveness is judged on the client's clock, not the store's.
	Heartbeat(ctx context.Context, playerID string, at time.Time) error

	Room(ctx context.Context, roomID string) (Room, error)
	Player(ctx context.Context, playerID string) (Player, error)
	// ActivePlayers returns the room's active players ordered by join time.
	ActivePlayers(ctx context.Context, roomID string) ([]Player, error)

	// SubmitAnswer inserts the answer record. A second submission for the
	// same (room, player, question) fails with ErrAlreadyAnswered.
	SubmitAnswer(ctx context.Context, roomID, playerID string, questionNumber, answerIndex int, isCorrect bool) (Answer, error)
	QuestionAnswers(ctx context.Context, roomID string, questionNumber int) ([]Answer, error)
	// UpdateScore writes an absolute score. Combined with Player it forms
	// the unguarded read-modify-write increment the game engine performs.
	UpdateScore(ctx context.Context, playerID string, score int) error

	SendChat(ctx context.Context, roomID, playerID, nickname, message string) (ChatMessage, error)
	ChatHistory(ctx context.Context, roomID string) ([]ChatMessage, error)
}
