package server

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/swaggest/swgui/v5emb"

	"github.com/radiantplay/tacquiz/internal/leaderboard"
	"github.com/radiantplay/tacquiz/internal/quiz"
	"github.com/radiantplay/tacquiz/internal/realtime"
	"github.com/radiantplay/tacquiz/internal/store"
)

// Deps bundles everything the handlers need. Constructed once at startup
// and passed down explicitly; there are no package-level singletons.
type Deps struct {
	Store store.Store
	Feed  *realtime.Feed
	Bank  *quiz.Bank
	Board *leaderboard.Leaderboard
	DB    *sql.DB
	Redis *redis.Client
}

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("TacQuiz API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, deps.DB, deps.Redis))

	r.Route("/api", func(r chi.Router) {
		r.Post("/rooms", handleCreateRoom(deps))
		r.Post("/rooms/{code}/join", handleJoinRoom(deps))

		r.Route("/rooms/{roomID}", func(r chi.Router) {
			r.Use(roomMiddleware(deps.Store))
			r.Get("/", handleRoomState(deps))
			r.Post("/start", handleStartGame(deps))
			r.Post("/leave", handleLeaveRoom(deps))
			r.Post("/answers", handleSubmitAnswer(deps))
			r.Get("/answers", handleQuestionAnswers(deps))
			r.Post("/next", handleNextQuestion(deps))
			r.Post("/end", handleEndGame(deps))
			r.Post("/chat", handleSendChat(deps))
			r.Get("/chat", handleChatHistory(deps))
			r.Get("/events", handleEvents(deps.Feed))
			r.Get("/ws", handleWS(logger, deps.Feed))
		})

		r.Post("/players/{playerID}/heartbeat", handleHeartbeat(deps))
		r.Get("/questions/{number}", handleQuestion(deps.Bank))
		r.Get("/leaderboard", handleLeaderboard(deps.Board))
	})
}
