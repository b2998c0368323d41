package entity

import (
	"time"

	"github.com/google/uuid"
)

// Chat is one conversation between a user and the bot. The whole turn list
// lives on the row; a chat with no EndedAt is the user's active session.
type Chat struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Conversation []Turn
	SessionToken string
	StartedAt    time.Time
	EndedAt      *time.Time
}

// Active reports whether the session is still open.
func (c *Chat) Active() bool {
	return c.EndedAt == nil
}

// FindTurn returns the first turn with the given message id, or nil.
func (c *Chat) FindTurn(messageId string) *Turn {
	for i := range c.Conversation {
		if c.Conversation[i].MessageId == messageId {
			return &c.Conversation[i]
		}
	}
	return nil
}

// Turn is one user submission plus the generated reply. MessageId and
// Timestamp are assigned once at append time and never change; only UserText
// is editable afterwards.
type Turn struct {
	MessageId     string
	UserText      string
	GeneratedText string
	Timestamp     string
}
