package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Chat stores one session per row with the full turn list in a JSON column,
// the same single-row layout the chat endpoints expose.
//
// The partial unique index on user_id is what makes "at most one active
// session per user" hold under concurrent continue-or-create requests; the
// resolver alone cannot guarantee it.
type Chat struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:uniq_active_chat_per_user,where:ended_at IS NULL"`
	Conversation datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	SessionToken string         `gorm:"column:session_id;type:varchar(100);index"`
	StartedAt    time.Time      `gorm:"autoCreateTime;index"`
	EndedAt      *time.Time
}

func (Chat) TableName() string {
	return "chats"
}

// TurnDocument is the JSON shape of one element of the conversation column.
// The "You"/"Bot" keys are the original wire format and are kept for
// compatibility with existing stored rows and clients.
type TurnDocument struct {
	MessageId string `json:"message_id"`
	You       string `json:"You"`
	Bot       string `json:"Bot"`
	Timestamp string `json:"timestamp"`
}
