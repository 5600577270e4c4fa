// Command bot simulates a full multiplayer game in one process: a host
// bot creates a room, the others join, and every bot plays through the
// question bank with its own replicated game session. Useful for smoke
// testing the synchronization engine without a browser or friends.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/sync/errgroup"

	"github.com/radiantplay/tacquiz/internal/config"
	"github.com/radiantplay/tacquiz/internal/database"
	"github.com/radiantplay/tacquiz/internal/game"
	"github.com/radiantplay/tacquiz/internal/migrations"
	"github.com/radiantplay/tacquiz/internal/quiz"
	"github.com/radiantplay/tacquiz/internal/realtime"
	"github.com/radiantplay/tacquiz/internal/store"
)

type botConfig struct {
	Count int `env:"BOT_COUNT" envDefault:"3"`
}

var nicknames = []string{"Viper", "Sova", "Brimstone", "Killjoy", "Cypher", "Breach"}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	var bc botConfig
	if err := env.Parse(&bc); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	if bc.Count < 2 || bc.Count > store.MaxPlayers {
		return fmt.Errorf("BOT_COUNT must be between 2 and %d", store.MaxPlayers)
	}

	logger := slog.New(slog.NewTextHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// A throwaway database: simulation runs leave nothing behind.
	dir, err := os.MkdirTemp("", "tacquiz-bot")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	db, err := database.Open(ctx, filepath.Join(dir, "game.db"))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	feed := realtime.NewFeed()
	st := store.NewSQLiteStore(db, feed)
	bank := quiz.Default()

	pacing := game.Config{
		HeartbeatInterval: cfg.HeartbeatInterval,
		QuestionTime:      cfg.QuestionTime,
		RevealDelay:       cfg.RevealDelay,
		KickGrace:         cfg.KickGrace,
	}

	room, host, err := st.CreateRoom(ctx, nicknames[0])
	if err != nil {
		return fmt.Errorf("creating room: %w", err)
	}
	logger.Info("room created", "code", room.Code)

	players := []store.Player{host}
	for i := 1; i < bc.Count; i++ {
		_, p, err := st.JoinRoom(ctx, room.Code, nicknames[i])
		if err != nil {
			return fmt.Errorf("joining room: %w", err)
		}
		players = append(players, p)
	}

	if _, err := st.StartGame(ctx, room.ID); err != nil {
		return fmt.Errorf("starting game: %w", err)
	}
	logger.Info("game started", "players", len(players), "questions", bank.Len())

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range players {
		sess, err := game.NewSession(game.Options{
			Store:  st,
			Feed:   feed,
			Bank:   bank,
			Logger: logger,
			Config: pacing,
			Room:   room,
			Player: p,
		})
		if err != nil {
			return fmt.Errorf("creating session: %w", err)
		}

		g.Go(func() error { return sess.Run(gctx) })
		g.Go(func() error { return play(gctx, sess) })
	}

	if err := g.Wait(); err != nil {
		return err
	}

	final, err := st.ActivePlayers(ctx, room.ID)
	if err != nil {
		return err
	}
	for _, p := range final {
		logger.Info("final score", "nickname", p.Nickname, "score", p.Score)
	}
	return nil
}

// play answers each open question after a short human-ish delay.
func play(ctx context.Context, sess *game.Session) error {
	poll := time.NewTicker(200 * time.Millisecond)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-poll.C:
		}

		st := sess.State()
		if st.Finished || st.Kicked {
			return nil
		}
		if st.Phase != game.PhaseOpen {
			continue
		}

		time.Sleep(time.Duration(100+rand.Intn(400)) * time.Millisecond)
		if err := sess.SubmitAnswer(ctx, rand.Intn(4)); err != nil {
			// Lost a race with our own timeout or a question change; the
			// next poll re-reads the state.
			continue
		}
	}
}
