package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/radiantplay/tacquiz/internal/store"
)

const maxNicknameLen = 20

type CreateRoomRequest struct {
	Nickname string `json:"nickname"`
}

type RoomResponse struct {
	Room   store.Room   `json:"room"`
	Player store.Player `json:"player"`
}

func handleCreateRoom(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRoomRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Nickname = strings.TrimSpace(req.Nickname)
		if req.Nickname == "" || len(req.Nickname) > maxNicknameLen {
			writeError(w, http.StatusBadRequest, "nickname is required and must be at most 20 characters")
			return
		}

		room, player, err := deps.Store.CreateRoom(r.Context(), req.Nickname)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, RoomResponse{Room: room, Player: player})
	}
}

type JoinRoomRequest struct {
	Nickname string `json:"nickname"`
}

func handleJoinRoom(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinRoomRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Nickname = strings.TrimSpace(req.Nickname)
		if req.Nickname == "" || len(req.Nickname) > maxNicknameLen {
			writeError(w, http.StatusBadRequest, "nickname is required and must be at most 20 characters")
			return
		}

		code := chi.URLParam(r, "code")
		room, player, err := deps.Store.JoinRoom(r.Context(), code, req.Nickname)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, RoomResponse{Room: room, Player: player})
	}
}

type RoomStateResponse struct {
	Room    store.Room     `json:"room"`
	Players []store.Player `json:"players"`
}

func handleRoomState(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)
		players, err := deps.Store.ActivePlayers(r.Context(), room.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, RoomStateResponse{Room: room, Players: players})
	}
}

func handleStartGame(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)
		updated, err := deps.Store.StartGame(r.Context(), room.ID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

type LeaveRoomRequest struct {
	PlayerID string `json:"playerId"`
}

func handleLeaveRoom(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LeaveRoomRequest
		if err := readJSON(r, &req); err != nil || req.PlayerID == "" {
			writeError(w, http.StatusBadRequest, "playerId is required")
			return
		}

		if err := deps.Store.LeaveRoom(r.Context(), req.PlayerID); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
