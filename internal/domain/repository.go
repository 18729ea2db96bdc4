package domain

import "context"

// ConversationRepository is the persistence capability the generation
// handlers depend on. Backing implementations (in-memory, PostgreSQL) are
// interchangeable; the pipeline never knows which one is active.
type ConversationRepository interface {
	CreateConversation(ctx context.Context) (*Conversation, error)
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	AppendMessage(ctx context.Context, msg *Message) error
	ListMessages(ctx context.Context, conversationID string) ([]Message, error)
}
