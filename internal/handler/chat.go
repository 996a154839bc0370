// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/civic-report/report-assistant/internal/middleware"
	"github.com/civic-report/report-assistant/internal/model"
	"github.com/civic-report/report-assistant/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Dialogue is the conversation engine behind the chat endpoints.
type Dialogue interface {
	HandleTurn(ctx context.Context, caller model.CallerContext, turns []model.ConversationTurn) *model.ChatResponse
	CurrentDraft(ctx context.Context, ownerID string) (*model.Draft, error)
	Cancel(ctx context.Context, ownerID string) (bool, error)
}

// ChatConfig bounds what the chat handler accepts.
type ChatConfig struct {
	MaxTurns     int
	MaxTurnChars int
	// TrustCallerContext takes the caller from the request instead of the JWT.
	TrustCallerContext bool
}

// ChatHandler handles the chat turn and draft endpoints.
type ChatHandler struct {
	dialogue Dialogue
	cfg      ChatConfig
	logger   *logger.Logger
	now      func() time.Time
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(d Dialogue, cfg ChatConfig, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		dialogue: d,
		cfg:      cfg,
		logger:   log,
		now:      time.Now,
	}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var req model.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller, ok := h.caller(r, req.CallerContext)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}
	if err := middleware.ValidateUserID(caller.UserID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	middleware.SetLoggedUser(ctx, caller.UserID)

	turns := middleware.SanitizeTurns(req.Messages, h.cfg.MaxTurns, h.cfg.MaxTurnChars)
	resp := h.dialogue.HandleTurn(ctx, caller, turns)

	writeJSON(w, http.StatusOK, resp)
}

// GetDraft handles GET /api/v1/chat/draft
func (h *ChatHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := h.caller(r, model.CallerContext{UserID: r.URL.Query().Get("userId")})
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}
	middleware.SetLoggedUser(ctx, caller.UserID)

	d, err := h.dialogue.CurrentDraft(ctx, caller.UserID)
	if err != nil {
		h.logger.Error("failed to load draft", zap.String("user_id", caller.UserID), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "draft store unavailable")
		return
	}
	if d == nil {
		writeError(w, http.StatusNotFound, "no pending draft")
		return
	}

	remaining := d.ExpiresAt.Sub(h.now())
	if remaining < 0 {
		remaining = 0
	}
	writeJSON(w, http.StatusOK, model.DraftResponse{
		Draft:            d,
		ExpiresInSeconds: int64(remaining / time.Second),
	})
}

// DeleteDraft handles DELETE /api/v1/chat/draft
func (h *ChatHandler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := h.caller(r, model.CallerContext{UserID: r.URL.Query().Get("userId")})
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}
	middleware.SetLoggedUser(ctx, caller.UserID)

	if _, err := h.dialogue.Cancel(ctx, caller.UserID); err != nil {
		h.logger.Error("failed to cancel draft", zap.String("user_id", caller.UserID), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "draft store unavailable")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// caller resolves who is talking. The authenticated identity wins unless
// the server is configured to trust the request.
func (h *ChatHandler) caller(r *http.Request, fromRequest model.CallerContext) (model.CallerContext, bool) {
	if h.cfg.TrustCallerContext {
		fromRequest.UserID = strings.TrimSpace(fromRequest.UserID)
		return fromRequest, fromRequest.UserID != ""
	}
	caller, ok := middleware.GetCaller(r.Context())
	if !ok || caller.UserID == "" {
		return model.CallerContext{}, false
	}
	if caller.AreaLabel == "" {
		caller.AreaLabel = strings.TrimSpace(fromRequest.AreaLabel)
	}
	return caller, true
}
