package events

import (
	"time"

	"github.com/google/uuid"
)

// Event codes for the chat lifecycle. Published on every state transition of
// a chat session so downstream consumers (notifications, analytics) can react
// without touching the chat store.
const (
	TypeUserRegistered = "USER_REGISTERED"
	TypeUserLogin      = "USER_LOGIN"

	TypeSessionStarted = "CHAT_SESSION_STARTED"
	TypeTurnAppended   = "CHAT_TURN_APPENDED"
	TypeSessionEnded   = "CHAT_SESSION_ENDED"
	TypeMessageEdited  = "CHAT_MESSAGE_EDITED"
	TypeSessionDeleted = "CHAT_SESSION_DELETED"
)

func NewUserRegisteredEvent(userId uuid.UUID, username string) Event {
	return BaseEvent{
		Type: TypeUserRegistered,
		Data: map[string]interface{}{
			"user_id":  userId.String(),
			"username": username,
		},
		OccurredAt: time.Now(),
	}
}

func NewUserLoginEvent(userId uuid.UUID, username string) Event {
	return BaseEvent{
		Type: TypeUserLogin,
		Data: map[string]interface{}{
			"user_id":  userId.String(),
			"username": username,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionStartedEvent(userId, chatId uuid.UUID, sessionToken string) Event {
	return BaseEvent{
		Type: TypeSessionStarted,
		Data: map[string]interface{}{
			"user_id":    userId.String(),
			"chat_id":    chatId.String(),
			"session_id": sessionToken,
		},
		OccurredAt: time.Now(),
	}
}

func NewTurnAppendedEvent(userId, chatId uuid.UUID, messageId string) Event {
	return BaseEvent{
		Type: TypeTurnAppended,
		Data: map[string]interface{}{
			"user_id":    userId.String(),
			"chat_id":    chatId.String(),
			"message_id": messageId,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionEndedEvent(userId, chatId uuid.UUID, sessionToken string) Event {
	return BaseEvent{
		Type: TypeSessionEnded,
		Data: map[string]interface{}{
			"user_id":    userId.String(),
			"chat_id":    chatId.String(),
			"session_id": sessionToken,
		},
		OccurredAt: time.Now(),
	}
}

func NewMessageEditedEvent(userId, chatId uuid.UUID, messageId string) Event {
	return BaseEvent{
		Type: TypeMessageEdited,
		Data: map[string]interface{}{
			"user_id":    userId.String(),
			"chat_id":    chatId.String(),
			"message_id": messageId,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionDeletedEvent(userId, chatId uuid.UUID) Event {
	return BaseEvent{
		Type: TypeSessionDeleted,
		Data: map[string]interface{}{
			"user_id": userId.String(),
			"chat_id": chatId.String(),
		},
		OccurredAt: time.Now(),
	}
}
