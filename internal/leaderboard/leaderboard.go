// Package leaderboard keeps an all-time high-score table in Redis. Scores
// are recorded when a room finishes; each nickname keeps its best result.
package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const key = "tacquiz:leaderboard"

// ErrDisabled is returned when no Redis client was configured.
var ErrDisabled = errors.New("leaderboard is not configured")

type Entry struct {
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}

// Leaderboard is safe to construct with a nil client; all operations then
// fail with ErrDisabled so the rest of the game works without Redis.
type Leaderboard struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Leaderboard {
	return &Leaderboard{rdb: rdb}
}

// Record stores a finished player's score, keeping the best per nickname.
func (l *Leaderboard) Record(ctx context.Context, nickname string, score int) error {
	if l.rdb == nil {
		return ErrDisabled
	}
	err := l.rdb.ZAddGT(ctx, key, redis.Z{Score: float64(score), Member: nickname}).Err()
	if err != nil {
		return fmt.Errorf("recording score: %w", err)
	}
	return nil
}

// Top returns the highest scores, best first.
func (l *Leaderboard) Top(ctx context.Context, limit int) ([]Entry, error) {
	if l.rdb == nil {
		return nil, ErrDisabled
	}
	if limit <= 0 {
		limit = 10
	}
	zs, err := l.rdb.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(zs))
	for _, z := range zs {
		nickname, _ := z.Member.(string)
		entries = append(entries, Entry{Nickname: nickname, Score: int(z.Score)})
	}
	return entries, nil
}
