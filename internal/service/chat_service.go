package service

import (
	"context"
	"log"
	"strings"
	"time"

	"chatbot-be/internal/dto"
	"chatbot-be/internal/entity"
	"chatbot-be/internal/mapper"
	"chatbot-be/internal/pkg/timefmt"
	"chatbot-be/internal/repository/memory"
	"chatbot-be/internal/repository/specification"
	"chatbot-be/internal/repository/unitofwork"
	"chatbot-be/pkg/events"
	"chatbot-be/pkg/llm"

	"github.com/google/uuid"
)

// IChatService is the session lifecycle state machine: one entry point for
// "end or continue-or-create", plus history retrieval, message editing and
// session deletion.
type IChatService interface {
	SubmitTurn(ctx context.Context, userId uuid.UUID, req *dto.ChatTurnRequest) (*dto.ChatTurnResult, error)
	ListChats(ctx context.Context, userId uuid.UUID, sessionToken string) ([]*dto.ChatListItem, error)
	UpdateMessage(ctx context.Context, userId, chatId uuid.UUID, messageId string, req *dto.UpdateMessageRequest) error
	DeleteChat(ctx context.Context, userId, chatId uuid.UUID) error
}

type chatService struct {
	uowFactory  unitofwork.RepositoryFactory
	generator   llm.Provider
	activeCache *memory.ActiveSessionCache
	publisher   IPublisherService
	timeFmt     *timefmt.Formatter
	chatMapper  *mapper.ChatMapper
}

// NewChatService wires the chat state machine. The generator is the single
// process-wide provider handle; the service never constructs its own.
func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	generator llm.Provider,
	activeCache *memory.ActiveSessionCache,
	publisher IPublisherService,
	timeFmt *timefmt.Formatter,
) IChatService {
	return &chatService{
		uowFactory:  uowFactory,
		generator:   generator,
		activeCache: activeCache,
		publisher:   publisher,
		timeFmt:     timeFmt,
		chatMapper:  mapper.NewChatMapper(),
	}
}

func (s *chatService) SubmitTurn(ctx context.Context, userId uuid.UUID, req *dto.ChatTurnRequest) (*dto.ChatTurnResult, error) {
	if req.EndSession.Bool() {
		return s.endSession(ctx, userId)
	}

	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrInvalidInput
	}

	// The generation call is slow and must not hold a transaction open; it
	// runs before the session row is touched, like the original flow where
	// the reply was produced before the save.
	generated, err := s.generator.Generate(ctx, req.Content)
	if err != nil {
		return nil, err
	}

	turn := entity.Turn{
		MessageId:     uuid.New().String(),
		UserText:      req.Content,
		GeneratedText: generated,
		Timestamp:     s.timeFmt.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// Resolve inside the transaction with a row lock so two racing requests
	// for the same user serialize on the active session instead of both
	// deciding to create one. The partial unique index on chats(user_id)
	// backstops the no-active-row case.
	active, err := s.resolveActive(ctx, uow, userId, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}

	if active != nil {
		active.Conversation = append(active.Conversation, turn)
		if err := uow.ChatRepository().Update(ctx, active); err != nil {
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}

		s.activeCache.Put(userId, active.Id)
		s.publish(ctx, events.NewTurnAppendedEvent(userId, active.Id, turn.MessageId))

		return &dto.ChatTurnResult{
			Created: false,
			Chat:    s.chatResponse(active),
		}, nil
	}

	chat := &entity.Chat{
		Id:           uuid.New(),
		UserId:       userId,
		Conversation: []entity.Turn{turn},
		SessionToken: uuid.New().String(),
		StartedAt:    time.Now(),
	}
	if err := uow.ChatRepository().Create(ctx, chat); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.activeCache.Put(userId, chat.Id)
	s.publish(ctx, events.NewSessionStartedEvent(userId, chat.Id, chat.SessionToken))
	s.publish(ctx, events.NewTurnAppendedEvent(userId, chat.Id, turn.MessageId))

	return &dto.ChatTurnResult{
		Created: true,
		Chat:    s.chatResponse(chat),
	}, nil
}

func (s *chatService) endSession(ctx context.Context, userId uuid.UUID) (*dto.ChatTurnResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	active, err := s.resolveActive(ctx, uow, userId, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, ErrNoActiveSession
	}

	now := time.Now()
	active.EndedAt = &now
	if err := uow.ChatRepository().Update(ctx, active); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.activeCache.Invalidate(userId)
	s.publish(ctx, events.NewSessionEndedEvent(userId, active.Id, active.SessionToken))

	return &dto.ChatTurnResult{
		Ended: &dto.EndSessionResponse{
			Message:   "Chat session ended successfully.",
			StartTime: s.timeFmt.FormatPtr(&active.StartedAt),
			EndTime:   s.timeFmt.FormatPtr(active.EndedAt),
			SessionId: active.SessionToken,
		},
	}, nil
}

// resolveActive returns the user's most recently started session without an
// end time, or nil. The cache only short-circuits the lookup key; the row is
// always re-read so a stale entry cannot resurrect an ended session.
func (s *chatService) resolveActive(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, extra ...specification.Specification) (*entity.Chat, error) {
	repo := uow.ChatRepository()

	if chatId, ok := s.activeCache.Get(userId); ok {
		specs := append([]specification.Specification{
			specification.ByID{ID: chatId},
			specification.OwnedBy{UserID: userId},
			specification.ActiveOnly{},
		}, extra...)
		chat, err := repo.FindOne(ctx, specs...)
		if err != nil {
			return nil, err
		}
		if chat != nil {
			return chat, nil
		}
		s.activeCache.Invalidate(userId)
	}

	specs := append([]specification.Specification{
		specification.OwnedBy{UserID: userId},
		specification.ActiveOnly{},
		specification.LatestFirst{},
		specification.Limit{N: 1},
	}, extra...)
	return repo.FindOne(ctx, specs...)
}

func (s *chatService) ListChats(ctx context.Context, userId uuid.UUID, sessionToken string) ([]*dto.ChatListItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "started_at"},
	}
	if sessionToken != "" {
		specs = append(specs, specification.BySessionToken{Token: sessionToken})
	}

	chats, err := uow.ChatRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ChatListItem, len(chats))
	for i, chat := range chats {
		items[i] = &dto.ChatListItem{
			ChatId:    chat.Id,
			StartTime: s.timeFmt.FormatPtr(&chat.StartedAt),
			EndTime:   s.timeFmt.FormatPtr(chat.EndedAt),
			Content:   s.chatMapper.TurnDocuments(chat.Conversation),
			SessionId: chat.SessionToken,
		}
	}
	return items, nil
}

func (s *chatService) UpdateMessage(ctx context.Context, userId, chatId uuid.UUID, messageId string, req *dto.UpdateMessageRequest) error {
	if req.Content == nil {
		return ErrInvalidInput
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	chat, err := uow.ChatRepository().FindOne(ctx,
		specification.ByID{ID: chatId},
		specification.OwnedBy{UserID: userId},
		specification.ForUpdate{},
	)
	if err != nil {
		return err
	}
	if chat == nil {
		return ErrChatNotFound
	}

	turn := chat.FindTurn(messageId)
	if turn == nil {
		return ErrMessageNotFound
	}

	// Only the human-authored half of the turn is editable; the generated
	// reply and the timestamp stay as recorded.
	turn.UserText = *req.Content

	if err := uow.ChatRepository().Update(ctx, chat); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.publish(ctx, events.NewMessageEditedEvent(userId, chatId, messageId))
	return nil
}

func (s *chatService) DeleteChat(ctx context.Context, userId, chatId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	rows, err := uow.ChatRepository().Delete(ctx, chatId, userId)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrChatNotFound
	}

	// The deleted session may have been the active one.
	s.activeCache.Invalidate(userId)
	s.publish(ctx, events.NewSessionDeletedEvent(userId, chatId))
	return nil
}

func (s *chatService) chatResponse(chat *entity.Chat) *dto.ChatResponse {
	return &dto.ChatResponse{
		ChatId:            chat.Id,
		UserId:            chat.UserId,
		Conversation:      s.chatMapper.TurnDocuments(chat.Conversation),
		StartTime:         s.timeFmt.FormatPtr(&chat.StartedAt),
		EndTime:           s.timeFmt.FormatPtr(chat.EndedAt),
		SessionIdentifier: chat.SessionToken,
	}
}

func (s *chatService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("[WARN] Failed to publish %s event: %v", event.EventType(), err)
	}
}
