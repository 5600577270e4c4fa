package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/radiantplay/tacquiz/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError translates the store's error taxonomy into HTTP statuses.
// Lifecycle conflicts map to 409 so clients can show them inline.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrRoomNotFound),
		errors.Is(err, store.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrRoomFull),
		errors.Is(err, store.ErrNicknameTaken),
		errors.Is(err, store.ErrNotWaiting),
		errors.Is(err, store.ErrNotEnoughPlayers),
		errors.Is(err, store.ErrAlreadyStarted),
		errors.Is(err, store.ErrAlreadyAnswered):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrEmptyMessage),
		errors.Is(err, store.ErrMessageTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
