package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/radiantplay/tacquiz/internal/store"
)

type ctxKey int

const ctxKeyRoom ctxKey = iota

// roomMiddleware resolves {roomID} against the store and stashes the room
// in the request context.
func roomMiddleware(st store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roomID := chi.URLParam(r, "roomID")
			if roomID == "" {
				writeError(w, http.StatusNotFound, "room not found")
				return
			}

			room, err := st.Room(r.Context(), roomID)
			if errors.Is(err, store.ErrRoomNotFound) {
				writeError(w, http.StatusNotFound, "room not found")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyRoom, room)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func roomFrom(r *http.Request) store.Room {
	return r.Context().Value(ctxKeyRoom).(store.Room)
}
