// Package handler is the JSON boundary consumed by the embedding front
// end. It translates request envelopes into use case calls and maps
// use case errors onto HTTP-style status codes so the front end can
// treat the in-process agent like any other backend.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"dialogue-agent/internal/domain"
	"dialogue-agent/internal/usecase"
)

// Supported operations.
const (
	OpStartSession = "start_session"
	OpSendMessage  = "send_message"
	OpSelectAction = "select_action"
	OpEndSession   = "end_session"
)

const correlationHeader = "X-Correlation-Id"

// eventBuffer bounds the escalation event channel. When the front end
// stops draining, newer events are dropped rather than blocking turns.
const eventBuffer = 16

// Request is the envelope for every operation. Fields beyond Op are
// read per operation; unused ones are ignored.
type Request struct {
	Op            string `json:"op"`
	ClientID      string `json:"client_id,omitempty"`
	SessionID     string `json:"session_id,omitempty"`
	Text          string `json:"text,omitempty"`
	Action        string `json:"action,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

type replyPayload struct {
	Message          string   `json:"message"`
	Topic            string   `json:"topic"`
	Confidence       float64  `json:"confidence"`
	SuggestedActions []string `json:"suggested_actions,omitempty"`
	RequiresFollowUp bool     `json:"requires_follow_up"`
}

type sessionResponse struct {
	SessionID string       `json:"session_id"`
	Reply     replyPayload `json:"reply"`
}

type turnResponse struct {
	Reply     replyPayload `json:"reply"`
	Intent    string       `json:"intent"`
	Urgency   int          `json:"urgency"`
	Escalated bool         `json:"escalated"`
}

type endedResponse struct {
	Ended bool `json:"ended"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// EscalationEvent is the asynchronous emission forwarded to the front
// end when a turn escalated to a human.
type EscalationEvent struct {
	SessionID  string    `json:"session_id"`
	ClientID   string    `json:"client_id"`
	CaseRef    string    `json:"case_ref"`
	Message    string    `json:"message"`
	Turn       int       `json:"turn"`
	OccurredAt time.Time `json:"occurred_at"`
}

type dialogueUseCase interface {
	StartSession(ctx context.Context, in usecase.StartSessionInput) (usecase.StartSessionOutput, error)
	HandleMessage(ctx context.Context, in usecase.HandleMessageInput) (usecase.HandleMessageOutput, error)
	SelectSuggestedAction(ctx context.Context, in usecase.SelectActionInput) (usecase.HandleMessageOutput, error)
	EndSession(ctx context.Context, sessionID string) error
}

type Handler struct {
	uc     dialogueUseCase
	events chan EscalationEvent
}

func NewHandler(uc dialogueUseCase) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	return &Handler{
		uc:     uc,
		events: make(chan EscalationEvent, eventBuffer),
	}, nil
}

// Events exposes escalation notices to the front end. Register the
// handler as the service's escalation listener to feed it.
func (h *Handler) Events() <-chan EscalationEvent {
	return h.events
}

// EscalationRaised implements usecase.EscalationListener. The send never
// blocks: a full buffer drops the event.
func (h *Handler) EscalationRaised(n usecase.EscalationNotice) {
	event := EscalationEvent{
		SessionID:  n.SessionID,
		ClientID:   n.ClientID,
		CaseRef:    n.CaseRef,
		Message:    n.Message,
		Turn:       n.Turn,
		OccurredAt: n.OccurredAt,
	}
	select {
	case h.events <- event:
	default:
	}
}

// Handle dispatches one request envelope.
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return respondError(req.CorrelationID, http.StatusBadRequest, string(usecase.ErrorInvalidInput), "malformed_request"), nil
	}

	switch strings.TrimSpace(req.Op) {
	case OpStartSession:
		return h.startSession(ctx, req), nil
	case OpSendMessage:
		return h.sendMessage(ctx, req), nil
	case OpSelectAction:
		return h.selectAction(ctx, req), nil
	case OpEndSession:
		return h.endSession(ctx, req), nil
	default:
		return respondError(req.CorrelationID, http.StatusBadRequest, string(usecase.ErrorInvalidInput), "unknown_op"), nil
	}
}

func (h *Handler) startSession(ctx context.Context, req Request) Response {
	out, err := h.uc.StartSession(ctx, usecase.StartSessionInput{ClientID: req.ClientID})
	if err != nil {
		return errorFrom(req.CorrelationID, err)
	}
	return respondJSON(req.CorrelationID, http.StatusOK, sessionResponse{
		SessionID: out.SessionID,
		Reply:     toReply(out.Greeting),
	})
}

func (h *Handler) sendMessage(ctx context.Context, req Request) Response {
	out, err := h.uc.HandleMessage(ctx, usecase.HandleMessageInput{SessionID: req.SessionID, Text: req.Text})
	if err != nil {
		return errorFrom(req.CorrelationID, err)
	}
	return respondJSON(req.CorrelationID, http.StatusOK, toTurn(out))
}

func (h *Handler) selectAction(ctx context.Context, req Request) Response {
	out, err := h.uc.SelectSuggestedAction(ctx, usecase.SelectActionInput{SessionID: req.SessionID, ActionLabel: req.Action})
	if err != nil {
		return errorFrom(req.CorrelationID, err)
	}
	return respondJSON(req.CorrelationID, http.StatusOK, toTurn(out))
}

func (h *Handler) endSession(ctx context.Context, req Request) Response {
	if err := h.uc.EndSession(ctx, req.SessionID); err != nil {
		return errorFrom(req.CorrelationID, err)
	}
	return respondJSON(req.CorrelationID, http.StatusOK, endedResponse{Ended: true})
}

func toReply(r domain.DialogueResponse) replyPayload {
	return replyPayload{
		Message:          r.Message,
		Topic:            string(r.Topic),
		Confidence:       r.Confidence,
		SuggestedActions: r.SuggestedActions,
		RequiresFollowUp: r.RequiresFollowUp,
	}
}

func toTurn(out usecase.HandleMessageOutput) turnResponse {
	return turnResponse{
		Reply:     toReply(out.Response),
		Intent:    string(out.Intent.Kind),
		Urgency:   out.Intent.UrgencyLevel,
		Escalated: out.Escalated,
	}
}

// errorFrom maps use case errors onto status codes. Anything that is
// not a *usecase.Error is treated as internal.
func errorFrom(correlationID string, err error) Response {
	var usecaseErr *usecase.Error
	if !errors.As(err, &usecaseErr) {
		return respondError(correlationID, http.StatusInternalServerError, string(usecase.ErrorInternal), "unexpected_error")
	}

	status := http.StatusInternalServerError
	switch usecaseErr.Code {
	case usecase.ErrorInvalidInput:
		status = http.StatusBadRequest
	case usecase.ErrorSessionNotFound:
		status = http.StatusNotFound
	}
	return respondError(correlationID, status, string(usecaseErr.Code), usecaseErr.Reason)
}

func respondError(correlationID string, status int, code, reason string) Response {
	return respondJSON(correlationID, status, errorResponse{Error: code, Reason: reason})
}

func respondJSON(correlationID string, status int, body any) Response {
	if strings.TrimSpace(correlationID) == "" {
		correlationID = uuid.NewString()
	}
	payload, err := json.Marshal(body)
	if err != nil {
		payload = []byte(`{"error":"INTERNAL_ERROR","reason":"marshal_error"}`)
		status = http.StatusInternalServerError
	}
	return Response{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: correlationID,
		},
		Body: string(payload),
	}
}
