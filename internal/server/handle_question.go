package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/radiantplay/tacquiz/internal/leaderboard"
	"github.com/radiantplay/tacquiz/internal/quiz"
)

type QuestionResponse struct {
	Number         int           `json:"number"`
	TotalQuestions int           `json:"totalQuestions"`
	Question       quiz.Question `json:"question"`
}

// handleQuestion serves question content by 1-based number. The correct
// option index never leaves the server through this endpoint.
func handleQuestion(bank *quiz.Bank) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := strconv.Atoi(chi.URLParam(r, "number"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "question number must be an integer")
			return
		}

		q, ok := bank.Question(number)
		if !ok {
			writeError(w, http.StatusNotFound, "question not found")
			return
		}

		writeJSON(w, http.StatusOK, QuestionResponse{
			Number:         number,
			TotalQuestions: bank.Len(),
			Question:       q,
		})
	}
}

func handleLeaderboard(board *leaderboard.Leaderboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 10
		if l := r.URL.Query().Get("limit"); l != "" {
			n, err := strconv.Atoi(l)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}

		entries, err := board.Top(r.Context(), limit)
		if errors.Is(err, leaderboard.ErrDisabled) {
			writeError(w, http.StatusServiceUnavailable, "leaderboard is not configured")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if entries == nil {
			entries = []leaderboard.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}
