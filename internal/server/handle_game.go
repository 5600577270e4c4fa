package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/radiantplay/tacquiz/internal/store"
)

type SubmitAnswerRequest struct {
	PlayerID    string `json:"playerId"`
	AnswerIndex int    `json:"answerIndex"`
}

type SubmitAnswerResponse struct {
	Answer    store.Answer `json:"answer"`
	IsCorrect bool         `json:"isCorrect"`
}

// handleSubmitAnswer grades the choice against the question bank, inserts
// the record, and credits the score on a correct answer. The increment is
// a plain read-modify-write: the one-answer-per-question unique index is
// what prevents the same player racing themselves.
func handleSubmitAnswer(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)

		var req SubmitAnswerRequest
		if err := readJSON(r, &req); err != nil || req.PlayerID == "" {
			writeError(w, http.StatusBadRequest, "playerId is required")
			return
		}
		if req.AnswerIndex < 0 || req.AnswerIndex > 3 {
			writeError(w, http.StatusBadRequest, "answerIndex must be between 0 and 3")
			return
		}
		if room.Status != store.StatusPlaying || room.CurrentQuestion < 1 {
			writeError(w, http.StatusConflict, "game is not in progress")
			return
		}

		isCorrect := deps.Bank.IsCorrect(room.CurrentQuestion, req.AnswerIndex)

		answer, err := deps.Store.SubmitAnswer(r.Context(), room.ID, req.PlayerID, room.CurrentQuestion, req.AnswerIndex, isCorrect)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		if isCorrect {
			player, err := deps.Store.Player(r.Context(), req.PlayerID)
			if err == nil {
				err = deps.Store.UpdateScore(r.Context(), req.PlayerID, player.Score+1)
			}
			if err != nil {
				// The answer record already landed; degrade silently.
				writeJSON(w, http.StatusOK, SubmitAnswerResponse{Answer: answer, IsCorrect: isCorrect})
				return
			}
		}

		writeJSON(w, http.StatusOK, SubmitAnswerResponse{Answer: answer, IsCorrect: isCorrect})
	}
}

func handleQuestionAnswers(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)

		question := room.CurrentQuestion
		if q := r.URL.Query().Get("question"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "question must be a positive integer")
				return
			}
			question = n
		}

		answers, err := deps.Store.QuestionAnswers(r.Context(), room.ID, question)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if answers == nil {
			answers = []store.Answer{}
		}
		writeJSON(w, http.StatusOK, answers)
	}
}

type NextQuestionRequest struct {
	QuestionNumber int `json:"questionNumber"`
}

func handleNextQuestion(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)

		var req NextQuestionRequest
		if err := readJSON(r, &req); err != nil || req.QuestionNumber < 1 {
			writeError(w, http.StatusBadRequest, "questionNumber must be a positive integer")
			return
		}

		if err := deps.Store.NextQuestion(r.Context(), room.ID, req.QuestionNumber); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleEndGame finishes the room and pushes final scores onto the
// leaderboard when Redis is configured.
func handleEndGame(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)

		players, err := deps.Store.ActivePlayers(r.Context(), room.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if err := deps.Store.EndGame(r.Context(), room.ID); err != nil {
			writeStoreError(w, err)
			return
		}

		for _, p := range players {
			if err := deps.Board.Record(r.Context(), p.Nickname, p.Score); err != nil {
				break // leaderboard is best effort
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleHeartbeat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "playerID")
		if err := deps.Store.Heartbeat(r.Context(), playerID, time.Now().UTC()); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
