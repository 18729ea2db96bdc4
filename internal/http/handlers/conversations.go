package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
)

type conversationView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type messageView struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	ImageRef  string    `json:"image_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *App) CreateConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := a.Conversations.CreateConversation(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: create conversation")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create conversation")
		return
	}
	a.json(w, http.StatusCreated, conversationView{ID: conv.ID, CreatedAt: conv.CreatedAt})
}

func (a *App) ListMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	messages, err := a.Conversations.ListMessages(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, "not_found", "unknown conversation")
		return
	}
	if err != nil {
		a.Logger.Error().Err(err).Str("conversation_id", id).Msg("handlers: list messages")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list messages")
		return
	}
	views := make([]messageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, messageView{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			ImageRef:  m.ImageRef,
			CreatedAt: m.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"messages": views})
}
