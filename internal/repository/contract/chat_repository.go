package contract

import (
	"context"

	"chatbot-be/internal/entity"
	"chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	Update(ctx context.Context, chat *entity.Chat) error
	// Delete hard-deletes the session row and its conversation. Returns the
	// number of rows removed so callers can tell absence from success.
	Delete(ctx context.Context, id uuid.UUID, userId uuid.UUID) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chat, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
