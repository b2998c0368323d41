package dto

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"chatbot-be/internal/model"
)

// FlexibleBool accepts JSON booleans, numbers and strings ("true", "1",
// "yes") for the end_session flag, the way existing clients send it.
type FlexibleBool bool

func (b *FlexibleBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}

	switch data[0] {
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*b = FlexibleBool(v)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			*b = true
		default:
			*b = false
		}
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*b = n != 0
	}
	return nil
}

func (b FlexibleBool) Bool() bool {
	return bool(b)
}

// ChatTurnRequest is the POST /chats/ body: either the next turn's content
// or an instruction to end the active session.
type ChatTurnRequest struct {
	Content    string       `json:"content"`
	EndSession FlexibleBool `json:"end_session"`
}

// UpdateMessageRequest is the PATCH body for editing a turn's user text.
type UpdateMessageRequest struct {
	Content *string `json:"content"`
}

// ChatResponse is the representation used by create/continue responses. The
// field names differ from ChatListItem on purpose: both shapes predate this
// rewrite and existing clients depend on each one.
type ChatResponse struct {
	ChatId            uuid.UUID            `json:"chat_id"`
	UserId            uuid.UUID            `json:"user_id"`
	Conversation      []model.TurnDocument `json:"conversation"`
	StartTime         *string              `json:"start_time"`
	EndTime           *string              `json:"end_time"`
	SessionIdentifier string               `json:"session_identifier"`
}

// ChatListItem is the representation used by the list endpoint.
type ChatListItem struct {
	ChatId    uuid.UUID            `json:"chat_id"`
	StartTime *string              `json:"start_time"`
	EndTime   *string              `json:"end_time"`
	Content   []model.TurnDocument `json:"content"`
	SessionId string               `json:"session_id"`
}

// ChatTurnResult is what the chat service hands back for POST /chats/:
// exactly one of Ended or Chat is set, and Created distinguishes a freshly
// started session (201) from a continued one (200).
type ChatTurnResult struct {
	Created bool
	Ended   *EndSessionResponse
	Chat    *ChatResponse
}

// EndSessionResponse confirms an explicit session end.
type EndSessionResponse struct {
	Message   string  `json:"message"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	SessionId string  `json:"session_id"`
}
