package mapper

import (
	"encoding/json"
	"fmt"

	"chatbot-be/internal/entity"
	"chatbot-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ToEntity(c *model.Chat) (*entity.Chat, error) {
	if c == nil {
		return nil, nil
	}

	var docs []model.TurnDocument
	if len(c.Conversation) > 0 {
		if err := json.Unmarshal(c.Conversation, &docs); err != nil {
			return nil, fmt.Errorf("decode conversation for chat %s: %w", c.Id, err)
		}
	}

	turns := make([]entity.Turn, len(docs))
	for i, d := range docs {
		turns[i] = entity.Turn{
			MessageId:     d.MessageId,
			UserText:      d.You,
			GeneratedText: d.Bot,
			Timestamp:     d.Timestamp,
		}
	}

	return &entity.Chat{
		Id:           c.Id,
		UserId:       c.UserId,
		Conversation: turns,
		SessionToken: c.SessionToken,
		StartedAt:    c.StartedAt,
		EndedAt:      c.EndedAt,
	}, nil
}

func (m *ChatMapper) ToModel(c *entity.Chat) (*model.Chat, error) {
	if c == nil {
		return nil, nil
	}

	docs := make([]model.TurnDocument, len(c.Conversation))
	for i, t := range c.Conversation {
		docs[i] = model.TurnDocument{
			MessageId: t.MessageId,
			You:       t.UserText,
			Bot:       t.GeneratedText,
			Timestamp: t.Timestamp,
		}
	}

	raw, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("encode conversation for chat %s: %w", c.Id, err)
	}

	return &model.Chat{
		Id:           c.Id,
		UserId:       c.UserId,
		Conversation: raw,
		SessionToken: c.SessionToken,
		StartedAt:    c.StartedAt,
		EndedAt:      c.EndedAt,
	}, nil
}

// TurnDocuments re-encodes a conversation for API responses that render the
// stored JSON list directly.
func (m *ChatMapper) TurnDocuments(turns []entity.Turn) []model.TurnDocument {
	docs := make([]model.TurnDocument, len(turns))
	for i, t := range turns {
		docs[i] = model.TurnDocument{
			MessageId: t.MessageId,
			You:       t.UserText,
			Bot:       t.GeneratedText,
			Timestamp: t.Timestamp,
		}
	}
	return docs
}
