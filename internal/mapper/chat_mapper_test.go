package mapper

import (
	"testing"
	"time"

	"chatbot-be/internal/entity"
	"chatbot-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatMapperRoundTrip(t *testing.T) {
	m := NewChatMapper()
	ended := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	chat := &entity.Chat{
		Id:     uuid.New(),
		UserId: uuid.New(),
		Conversation: []entity.Turn{
			{MessageId: "m1", UserText: "hi", GeneratedText: "hello", Timestamp: "01/03/2024 15:00:00"},
			{MessageId: "m2", UserText: "bye", GeneratedText: "goodbye", Timestamp: "01/03/2024 15:05:00"},
		},
		SessionToken: uuid.New().String(),
		StartedAt:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		EndedAt:      &ended,
	}

	row, err := m.ToModel(chat)
	require.NoError(t, err)
	assert.Equal(t, chat.Id, row.Id)
	assert.Equal(t, chat.SessionToken, row.SessionToken)

	// The stored JSON must use the original wire keys.
	assert.Contains(t, string(row.Conversation), `"You":"hi"`)
	assert.Contains(t, string(row.Conversation), `"Bot":"hello"`)
	assert.Contains(t, string(row.Conversation), `"message_id":"m1"`)

	back, err := m.ToEntity(row)
	require.NoError(t, err)
	assert.Equal(t, chat.Conversation, back.Conversation)
	assert.Equal(t, chat.UserId, back.UserId)
	require.NotNil(t, back.EndedAt)
	assert.True(t, back.EndedAt.Equal(ended))
}

func TestChatMapperEmptyConversation(t *testing.T) {
	m := NewChatMapper()

	row, err := m.ToModel(&entity.Chat{Id: uuid.New(), UserId: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(row.Conversation))

	back, err := m.ToEntity(&model.Chat{Id: uuid.New(), UserId: uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, back.Conversation)
}

func TestChatMapperBadStoredJSON(t *testing.T) {
	m := NewChatMapper()

	_, err := m.ToEntity(&model.Chat{
		Id:           uuid.New(),
		Conversation: []byte(`{not json`),
	})
	assert.Error(t, err)
}

func TestChatMapperNil(t *testing.T) {
	m := NewChatMapper()

	e, err := m.ToEntity(nil)
	require.NoError(t, err)
	assert.Nil(t, e)

	row, err := m.ToModel(nil)
	require.NoError(t, err)
	assert.Nil(t, row)
}
