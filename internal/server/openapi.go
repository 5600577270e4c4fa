package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/radiantplay/tacquiz/internal/leaderboard"
	"github.com/radiantplay/tacquiz/internal/store"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "TacQuiz API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the TacQuiz multiplayer trivia game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/rooms
	postRoom, _ := r.NewOperationContext(http.MethodPost, "/api/rooms")
	postRoom.SetSummary("Create room")
	postRoom.SetDescription("Creates a waiting room and its host player, returning both.")
	postRoom.AddReqStructure(CreateRoomRequest{})
	postRoom.AddRespStructure(RoomResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postRoom.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postRoom)

	// POST /api/rooms/{code}/join
	postJoin, _ := r.NewOperationContext(http.MethodPost, "/api/rooms/{code}/join")
	postJoin.SetSummary("Join room")
	postJoin.SetDescription("Joins a waiting room by its shareable code. Nicknames are unique among active players.")
	postJoin.AddReqStructure(JoinRoomRequest{})
	postJoin.AddRespStructure(RoomResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postJoin)

	// GET /api/rooms/{roomID}
	getRoom, _ := r.NewOperationContext(http.MethodGet, "/api/rooms/{roomID}")
	getRoom.SetSummary("Room state")
	getRoom.SetDescription("Returns the room and its active players.")
	getRoom.AddRespStructure(RoomStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getRoom.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getRoom)

	// POST /api/rooms/{roomID}/start
	postStart, _ := r.NewOperationContext(http.MethodPost, "/api/rooms/{roomID}/start")
	postStart.SetSummary("Start game")
	postStart.SetDescription("Host-only. Moves the room from waiting to playing at question 1. Exactly one concurrent caller wins.")
	postStart.AddRespStructure(store.Room{}, openapi.WithHTTPStatus(http.StatusOK))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postStart)

	// POST /api/rooms/{roomID}/answers
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/rooms/{roomID}/answers")
	postAnswer.SetSummary("Submit answer")
	postAnswer.SetDescription("Records a player's answer for the current question. A second submission for the same question fails.")
	postAnswer.AddReqStructure(SubmitAnswerRequest{})
	postAnswer.AddRespStructure(SubmitAnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAnswer)

	// GET /api/rooms/{roomID}/answers
	getAnswers, _ := r.NewOperationContext(http.MethodGet, "/api/rooms/{roomID}/answers")
	getAnswers.SetSummary("Question answers")
	getAnswers.SetDescription("Lists answers for the current question, or for ?question=N.")
	getAnswers.AddRespStructure([]store.Answer{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getAnswers)

	// POST /api/rooms/{roomID}/next
	postNext, _ := r.NewOperationContext(http.MethodPost, "/api/rooms/{roomID}/next")
	postNext.SetSummary("Advance question")
	postNext.SetDescription("Host-only. Sets the room's current question. Unconditional update.")
	postNext.AddReqStructure(NextQuestionRequest{})
	postNext.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	_ = r.AddOperation(postNext)

	// POST /api/rooms/{roomID}/end
	postEnd, _ := r.NewOperationContext(http.MethodPost, "/api/rooms/{roomID}/end")
	postEnd.SetSummary("End game")
	postEnd.SetDescription("Host-only. Finishes the room and records scores on the leaderboard.")
	postEnd.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	_ = r.AddOperation(postEnd)

	// POST /api/rooms/{roomID}/leave
	postLeave, _ := r.NewOperationContext(http.MethodPost, "/api/rooms/{roomID}/leave")
	postLeave.SetSummary("Leave room")
	postLeave.SetDescription("Soft-deletes the player; their nickname becomes reusable.")
	postLeave.AddReqStructure(LeaveRoomRequest{})
	postLeave.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	_ = r.AddOperation(postLeave)

	// POST /api/rooms/{roomID}/chat
	postChat, _ := r.NewOperationContext(http.MethodPost, "/api/rooms/{roomID}/chat")
	postChat.SetSummary("Send chat message")
	postChat.AddReqStructure(SendChatRequest{})
	postChat.AddRespStructure(store.ChatMessage{}, openapi.WithHTTPStatus(http.StatusCreated))
	postChat.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postChat)

	// GET /api/rooms/{roomID}/chat
	getChat, _ := r.NewOperationContext(http.MethodGet, "/api/rooms/{roomID}/chat")
	getChat.SetSummary("Chat history")
	getChat.SetDescription("Returns the last 50 messages, oldest first.")
	getChat.AddRespStructure([]store.ChatMessage{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getChat)

	// GET /api/rooms/{roomID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/rooms/{roomID}/events")
	getEvents.SetSummary("SSE change feed")
	getEvents.SetDescription("Server-Sent Events stream of row-change notifications for the room.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/rooms/{roomID}/ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/api/rooms/{roomID}/ws")
	getWS.SetSummary("WebSocket change feed")
	getWS.SetDescription("Upgrades to a WebSocket delivering the same change notifications as the SSE stream.")
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	// POST /api/players/{playerID}/heartbeat
	postBeat, _ := r.NewOperationContext(http.MethodPost, "/api/players/{playerID}/heartbeat")
	postBeat.SetSummary("Heartbeat")
	postBeat.SetDescription("Stamps the player's last-seen time. Clients send one every 5 seconds.")
	postBeat.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	_ = r.AddOperation(postBeat)

	// GET /api/questions/{number}
	getQuestion, _ := r.NewOperationContext(http.MethodGet, "/api/questions/{number}")
	getQuestion.SetSummary("Question content")
	getQuestion.SetDescription("Returns question text and options by 1-based number. Never reveals the correct index.")
	getQuestion.AddRespStructure(QuestionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getQuestion.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getQuestion)

	// GET /api/leaderboard
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	getBoard.SetSummary("Leaderboard")
	getBoard.SetDescription("Returns the all-time top scores. 503 when Redis is not configured.")
	getBoard.AddRespStructure([]leaderboard.Entry{}, openapi.WithHTTPStatus(http.StatusOK))
	getBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getBoard)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
