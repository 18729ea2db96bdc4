package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/middleware"
)

type generateMessageRequest struct {
	Description string `json:"description"`
	ImageRef    string `json:"image_ref"`
}

// GenerateMessage accepts a product description, runs the text degradation
// pipeline against the conversation history, persists both turns, and
// returns the Asset. The pipeline guarantees a valid Asset under every
// provider condition, so this endpoint only fails on bad input or a broken
// store.
func (a *App) GenerateMessage(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	var req generateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Description == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "description required")
		return
	}

	history, err := a.Conversations.ListMessages(r.Context(), conversationID)
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, "not_found", "unknown conversation")
		return
	}
	if err != nil {
		a.Logger.Error().Err(err).Str("conversation_id", conversationID).Msg("handlers: load history")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load history")
		return
	}
	turns := make([]domain.ChatTurn, 0, len(history))
	for _, m := range history {
		turns = append(turns, m.Turn())
	}

	asset := a.TextPipeline.Generate(r.Context(), domain.GenerationRequest{
		Description: req.Description,
		History:     turns,
		ImageRef:    req.ImageRef,
		Locale:      middleware.LocaleFromContext(r.Context()),
	})

	assetJSON, err := json.Marshal(asset)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: serialize asset")
		a.error(w, http.StatusInternalServerError, "internal", "failed to serialize asset")
		return
	}

	userMsg := domain.Message{
		ConversationID: conversationID,
		Role:           domain.RoleUser,
		Content:        req.Description,
		ImageRef:       req.ImageRef,
	}
	assistantMsg := domain.Message{
		ConversationID: conversationID,
		Role:           domain.RoleAssistant,
		Content:        string(assetJSON),
	}
	for _, msg := range []*domain.Message{&userMsg, &assistantMsg} {
		if err := a.Conversations.AppendMessage(r.Context(), msg); err != nil {
			a.Logger.Error().Err(err).Str("conversation_id", conversationID).Msg("handlers: append message")
			a.error(w, http.StatusInternalServerError, "internal", "failed to persist message")
			return
		}
	}

	a.json(w, http.StatusOK, asset)
}
