package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// ConversationRepositoryPG implements domain.ConversationRepository using
// PostgreSQL. Schema: conversations(id, created_at) and messages(id,
// conversation_id, role, content, image_ref, created_at).
type ConversationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewConversationRepository constructs a pgx-backed repository.
func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepositoryPG {
	return &ConversationRepositoryPG{pool: pool}
}

func (r *ConversationRepositoryPG) CreateConversation(ctx context.Context) (*domain.Conversation, error) {
	conv := domain.Conversation{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	_, err := r.pool.Exec(ctx, `
INSERT INTO conversations (id, created_at)
VALUES ($1, $2);
`, conv.ID, conv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ConversationRepositoryPG) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.pool.QueryRow(ctx, `
SELECT id, created_at
FROM conversations
WHERE id = $1;
`, id).Scan(&conv.ID, &conv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ConversationRepositoryPG) AppendMessage(ctx context.Context, msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO messages (id, conversation_id, role, content, image_ref, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`, msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.ImageRef, msg.CreatedAt)
	return err
}

func (r *ConversationRepositoryPG) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	if _, err := r.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
SELECT id, conversation_id, role, content, image_ref, created_at
FROM messages
WHERE conversation_id = $1
ORDER BY created_at ASC;
`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.ImageRef, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

var _ domain.ConversationRepository = (*ConversationRepositoryPG)(nil)
