package webchat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/travel-ai-concierge/internal/conversation"
	"github.com/wolfman30/travel-ai-concierge/internal/session"
	"github.com/wolfman30/travel-ai-concierge/pkg/logging"
	"golang.org/x/net/websocket"
)

// Engine is the chat engine surface the widget talks to.
type Engine interface {
	Scenarios() []conversation.Scenario
	Start(ctx context.Context, req conversation.StartRequest) (*conversation.StartResult, error)
	HandleMessage(ctx context.Context, req conversation.TurnRequest) (*conversation.TurnResult, error)
	History(ctx context.Context, conversationID string) ([]conversation.ChatMessage, error)
	End(ctx context.Context, conversationID string) (*conversation.EndResult, error)
	Trip(ctx context.Context, sessionID string) (*session.VacationSession, error)
	ClearTrip(ctx context.Context, sessionID string) error
}

// Handler serves the chat widget over HTTP and websocket.
type Handler struct {
	engine  Engine
	limiter FrameLimiter
	logger  *logging.Logger
	now     func() time.Time
}

// FrameLimiter throttles websocket chat frames per client.
type FrameLimiter interface {
	AllowRequest(r *http.Request) bool
}

const rateLimitedText = "יותר מדי הודעות ברצף, נסו שוב בעוד רגע."

// InboundMessage is what the widget sends over the websocket.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping", "end"
	Text string `json:"text"`
}

// OutboundMessage is what we send to the widget over the websocket.
type OutboundMessage struct {
	Type           string                     `json:"type"` // "session", "message", "typing", "history", "ended", "error", "pong"
	Text           string                     `json:"text,omitempty"`
	Role           string                     `json:"role,omitempty"`
	ConversationID string                     `json:"conversation_id,omitempty"`
	SessionID      string                     `json:"session_id,omitempty"`
	Timestamp      string                     `json:"timestamp,omitempty"`
	Messages       []conversation.ChatMessage `json:"messages,omitempty"`
	Turn           *conversation.TurnResult   `json:"turn,omitempty"`
}

// SetFrameLimiter throttles "message" frames on websocket connections.
// The upgrade request identifies the client.
func (h *Handler) SetFrameLimiter(l FrameLimiter) {
	h.limiter = l
}

// NewHandler creates a web chat handler.
func NewHandler(engine Engine, logger *logging.Logger) *Handler {
	if engine == nil {
		panic("webchat: engine cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		engine: engine,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type startRequest struct {
	Scenario  string `json:"scenario"`
	SessionID string `json:"session_id"`
}

type messageRequest struct {
	ConversationID string `json:"conversation_id"`
	SessionID      string `json:"session_id"`
	Scenario       string `json:"scenario"`
	Message        string `json:"message"`
}

type endRequest struct {
	ConversationID string `json:"conversation_id"`
}

// TripResponse is the stored trip plus what the concierge suggests for it.
type TripResponse struct {
	Session             *session.VacationSession `json:"session"`
	Recommendations     []string                 `json:"recommendations"`
	ConciergeActivities []string                 `json:"concierge_activities"`
	TripDay             int                      `json:"trip_day"`
}

// HandleScenarios handles GET /chat/scenarios.
func (h *Handler) HandleScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"scenarios": h.engine.Scenarios()})
}

// HandleStart handles POST /chat/start.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.start(r.Context(), req.Scenario, req.SessionID)
	if err != nil {
		h.writeEngineError(w, err, "failed to start conversation")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleMessage handles POST /chat/message.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.engine.HandleMessage(r.Context(), conversation.TurnRequest{
		ConversationID: req.ConversationID,
		SessionID:      req.SessionID,
		Scenario:       req.Scenario,
		Message:        req.Message,
	})
	if err != nil {
		h.writeEngineError(w, err, "failed to handle message")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleHistory handles GET /chat/history?conversation_id=.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	conversationID := strings.TrimSpace(r.URL.Query().Get("conversation_id"))
	if conversationID == "" {
		http.Error(w, "conversation_id is required", http.StatusBadRequest)
		return
	}

	msgs, err := h.engine.History(r.Context(), conversationID)
	if err != nil {
		h.writeEngineError(w, err, "failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": conversationID,
		"messages":        msgs,
	})
}

// HandleEnd handles POST /chat/end.
func (h *Handler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	var req endRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ConversationID) == "" {
		http.Error(w, "conversation_id is required", http.StatusBadRequest)
		return
	}

	res, err := h.engine.End(r.Context(), req.ConversationID)
	if err != nil {
		h.writeEngineError(w, err, "failed to end conversation")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleTrip handles GET /chat/trip?session_id=.
func (h *Handler) HandleTrip(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	sess, err := h.engine.Trip(r.Context(), sessionID)
	if err != nil {
		h.writeEngineError(w, err, "failed to load trip")
		return
	}
	writeJSON(w, http.StatusOK, TripResponse{
		Session:             sess,
		Recommendations:     session.Recommendations(sess),
		ConciergeActivities: session.ConciergeActivities(sess),
		TripDay:             session.TripDay(sess, h.now()),
	})
}

// HandleClearTrip handles DELETE /chat/trip?session_id=.
func (h *Handler) HandleClearTrip(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	if err := h.engine.ClearTrip(r.Context(), sessionID); err != nil {
		h.writeEngineError(w, err, "failed to clear trip")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	conversationID := strings.TrimSpace(q.Get("conversation_id"))
	sessionID := strings.TrimSpace(q.Get("session_id"))
	scenario := strings.TrimSpace(q.Get("scenario"))

	if conversationID == "" {
		res, err := h.start(ctx, scenario, sessionID)
		if err != nil {
			h.send(conn, OutboundMessage{Type: "error", Text: engineErrorText(err)})
			return
		}
		conversationID, sessionID = res.ConversationID, res.SessionID
		h.send(conn, OutboundMessage{Type: "session", ConversationID: conversationID, SessionID: sessionID})
		h.send(conn, OutboundMessage{Type: "message", Role: conversation.ChatRoleAssistant, Text: res.Greeting, Timestamp: h.timestamp()})
	} else {
		h.send(conn, OutboundMessage{Type: "session", ConversationID: conversationID, SessionID: sessionID})
		if msgs, err := h.engine.History(ctx, conversationID); err == nil && len(msgs) > 0 {
			h.send(conn, OutboundMessage{Type: "history", Messages: msgs})
		}
	}

	h.logger.Info("webchat: connection opened", "conversation_id", conversationID, "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "conversation_id", conversationID, "error", err)
			return
		}

		switch msg.Type {
		case "ping":
			h.send(conn, OutboundMessage{Type: "pong"})
		case "end":
			res, err := h.engine.End(ctx, conversationID)
			if err != nil {
				h.send(conn, OutboundMessage{Type: "error", Text: engineErrorText(err)})
				continue
			}
			h.send(conn, OutboundMessage{Type: "ended", ConversationID: res.ConversationID})
			return
		case "message":
			if strings.TrimSpace(msg.Text) == "" {
				continue
			}
			if h.limiter != nil && !h.limiter.AllowRequest(r) {
				h.logger.Warn("webchat: frame rate limited", "conversation_id", conversationID)
				h.send(conn, OutboundMessage{Type: "error", Text: rateLimitedText})
				continue
			}
			h.send(conn, OutboundMessage{Type: "typing"})
			res, err := h.engine.HandleMessage(ctx, conversation.TurnRequest{
				ConversationID: conversationID,
				SessionID:      sessionID,
				Scenario:       scenario,
				Message:        msg.Text,
			})
			if err != nil {
				h.logger.Error("webchat: failed to handle message", "error", err, "conversation_id", conversationID)
				h.send(conn, OutboundMessage{Type: "error", Text: engineErrorText(err)})
				continue
			}
			h.send(conn, OutboundMessage{
				Type:           "message",
				Role:           conversation.ChatRoleAssistant,
				Text:           res.Text(),
				ConversationID: res.ConversationID,
				Timestamp:      h.timestamp(),
				Turn:           res,
			})
		}
	}
}

// start opens a conversation, minting a vacation session when the widget has none.
func (h *Handler) start(ctx context.Context, scenario, sessionID string) (*conversation.StartResult, error) {
	if scenario == "" {
		scenario = conversation.ScenarioVacationPlanning
	}
	if sessionID == "" {
		sessionID = session.NewID(h.now())
	}
	return h.engine.Start(ctx, conversation.StartRequest{Scenario: scenario, SessionID: sessionID})
}

func (h *Handler) send(conn *websocket.Conn, msg OutboundMessage) {
	if err := websocket.JSON.Send(conn, msg); err != nil {
		h.logger.Debug("webchat: send failed", "type", msg.Type, "error", err)
	}
}

func (h *Handler) timestamp() string {
	return h.now().Format(time.RFC3339)
}

func (h *Handler) writeEngineError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, conversation.ErrEmptyMessage):
		http.Error(w, "message is required", http.StatusBadRequest)
	case errors.Is(err, conversation.ErrUnknownScenario):
		http.Error(w, "unknown scenario", http.StatusBadRequest)
	case errors.Is(err, conversation.ErrUnknownConversation):
		http.Error(w, "conversation not found", http.StatusNotFound)
	case errors.Is(err, session.ErrNoSession):
		http.Error(w, "trip not found", http.StatusNotFound)
	default:
		h.logger.Error("webchat: "+fallback, "error", err)
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

func engineErrorText(err error) string {
	switch {
	case errors.Is(err, conversation.ErrUnknownScenario):
		return "unknown scenario"
	case errors.Is(err, conversation.ErrUnknownConversation):
		return "conversation not found"
	default:
		return "מצטערים, משהו השתבש. נסו שוב בעוד רגע."
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
