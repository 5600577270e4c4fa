package server

import (
	"net/http"

	"github.com/radiantplay/tacquiz/internal/store"
)

type SendChatRequest struct {
	PlayerID string `json:"playerId"`
	Message  string `json:"message"`
}

func handleSendChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)

		var req SendChatRequest
		if err := readJSON(r, &req); err != nil || req.PlayerID == "" {
			writeError(w, http.StatusBadRequest, "playerId is required")
			return
		}

		player, err := deps.Store.Player(r.Context(), req.PlayerID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if player.RoomID != room.ID {
			writeError(w, http.StatusForbidden, "player does not belong to this room")
			return
		}

		msg, err := deps.Store.SendChat(r.Context(), room.ID, player.ID, player.Nickname, req.Message)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	}
}

func handleChatHistory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)
		messages, err := deps.Store.ChatHistory(r.Context(), room.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if messages == nil {
			messages = []store.ChatMessage{}
		}
		writeJSON(w, http.StatusOK, messages)
	}
}
