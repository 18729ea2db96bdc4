package domain

import "time"

// Conversation groups the messages of one chat session.
type Conversation struct {
	ID        string
	CreatedAt time.Time
}

// Message is a persisted conversation turn. Assistant messages store the
// serialized Asset JSON in Content; ImageRef is set when the user attached a
// reference image to the turn.
type Message struct {
	ID             string
	ConversationID string
	Role           string
	Content        string
	ImageRef       string
	CreatedAt      time.Time
}

// Turn strips persistence fields down to what the model is allowed to see.
func (m Message) Turn() ChatTurn {
	return ChatTurn{Role: m.Role, Content: m.Content}
}
