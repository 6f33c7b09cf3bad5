package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/raphaelgruber/redactchat/internal/models"
	"github.com/raphaelgruber/redactchat/internal/pipeline"
)

//go:embed index.html
var homePage []byte

// TurnRunner is the pipeline surface the handler needs.
type TurnRunner interface {
	ProcessTurn(ctx context.Context, userText string, prior models.Conversation, inputRules, outputRules []string) (*pipeline.Turn, error)
}

// Handler serves the chat endpoints. One handler is shared by all
// in-flight requests; it keeps no per-request state.
type Handler struct {
	pipeline   TurnRunner
	inputRules []string
	replyRules []string
}

// NewHandler creates the handler with its rule sets fixed at startup.
func NewHandler(p TurnRunner, inputRules, replyRules []string) *Handler {
	return &Handler{
		pipeline:   p,
		inputRules: inputRules,
		replyRules: replyRules,
	}
}

// chatRequest is the POST /chat body.
type chatRequest struct {
	Previous models.Conversation `json:"previous"`
	Message  string              `json:"message"`
}

// chatResponse is the POST /chat reply, keyed for the embedded page.
type chatResponse struct {
	Previous        models.Conversation `json:"previous"`
	ChatGPTMessage  models.Message      `json:"chat_gpt_message"`
	ChatGPTRedacted string              `json:"chat_gpt_redacted"`
	UserRedacted    string              `json:"user_redacted"`
	RawRedactUser   string              `json:"raw_redact_user_text"`
	RawRedactGPT    string              `json:"raw_redact_gpt_text"`
}

// Home serves the embedded chat page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(homePage)
}

// Chat runs one conversation turn against the conversation supplied in
// the request; the server keeps no conversation state of its own.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	turn, err := h.pipeline.ProcessTurn(r.Context(), req.Message, req.Previous, h.inputRules, h.replyRules)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyMessage) {
			Error(w, http.StatusBadRequest, "message must not be empty")
			return
		}
		Error(w, http.StatusBadGateway, err.Error())
		return
	}

	previous := req.Previous
	if previous == nil {
		previous = models.Conversation{}
	}
	previous.AppendTurn(turn.SanitizedUser, turn.Assistant, turn.Annotated)

	JSON(w, http.StatusOK, chatResponse{
		Previous:        previous,
		ChatGPTMessage:  turn.Assistant,
		ChatGPTRedacted: turn.Annotated,
		UserRedacted:    turn.SanitizedUser,
		RawRedactUser:   turn.RawUserReport,
		RawRedactGPT:    turn.RawReplyReport,
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
