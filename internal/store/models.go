package store

import "time"

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
)

// Room is a shared multiplayer session identified by a short code.
// Status only ever moves forward, waiting to playing to finished, and
// CurrentQuestion never decreases while playing.
type Room struct {
	ID              string     `json:"id"`
	Code            string     `json:"roomCode"`
	HostID          string     `json:"hostId"`
	Status          RoomStatus `json:"status"`
	CurrentQuestion int        `json:"currentQuestion"`
	MaxPlayers      int        `json:"maxPlayers"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Player belongs to exactly one room. Leaving or being kicked flips
// IsActive off; player rows are never deleted during a session.
type Player struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	Nickname  string    `json:"nickname"`
	Score     int       `json:"score"`
	IsHost    bool      `json:"isHost"`
	IsActive  bool      `json:"isActive"`
	LastSeen  time.Time `json:"lastSeen"`
	CreatedAt time.Time `json:"createdAt"`
}

// Answer records one player's choice for one question. At most one row
// exists per (room, player, question).
type Answer struct {
	ID             string    `json:"id"`
	RoomID         string    `json:"roomId"`
	PlayerID       string    `json:"playerId"`
	QuestionNumber int       `json:"questionNumber"`
	AnswerIndex    int       `json:"answerIndex"`
	IsCorrect      bool      `json:"isCorrect"`
	AnsweredAt     time.Time `json:"answeredAt"`
}

// ChatMessage is read-only once created. The nickname is denormalized so
// history stays readable after a player deactivates.
type ChatMessage struct {
	ID             string    `json:"id"`
	RoomID         string    `json:"roomId"`
	PlayerID       string    `json:"playerId"`
	PlayerNickname string    `json:"playerNickname"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"createdAt"`
}
