package repo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"server/internal/domain"
)

// ConversationRepositoryMem implements domain.ConversationRepository with an
// in-process map. It backs deployments with no DATABASE_URL and the tests.
type ConversationRepositoryMem struct {
	mu            sync.RWMutex
	conversations map[string]domain.Conversation
	messages      map[string][]domain.Message
}

// NewConversationRepositoryMem constructs an empty in-memory store.
func NewConversationRepositoryMem() *ConversationRepositoryMem {
	return &ConversationRepositoryMem{
		conversations: make(map[string]domain.Conversation),
		messages:      make(map[string][]domain.Message),
	}
}

func (r *ConversationRepositoryMem) CreateConversation(ctx context.Context) (*domain.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conv := domain.Conversation{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	r.mu.Lock()
	r.conversations[conv.ID] = conv
	r.mu.Unlock()
	return &conv, nil
}

func (r *ConversationRepositoryMem) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	conv, ok := r.conversations[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &conv, nil
}

func (r *ConversationRepositoryMem) AppendMessage(ctx context.Context, msg *domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conversations[msg.ConversationID]; !ok {
		return domain.ErrNotFound
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	r.messages[msg.ConversationID] = append(r.messages[msg.ConversationID], *msg)
	return nil
}

func (r *ConversationRepositoryMem) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.conversations[conversationID]; !ok {
		return nil, domain.ErrNotFound
	}
	stored := r.messages[conversationID]
	out := make([]domain.Message, len(stored))
	copy(out, stored)
	return out, nil
}

var _ domain.ConversationRepository = (*ConversationRepositoryMem)(nil)
