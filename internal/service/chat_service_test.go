package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"chatbot-be/internal/dto"
	"chatbot-be/internal/entity"
	"chatbot-be/internal/pkg/timefmt"
	"chatbot-be/internal/repository/contract"
	"chatbot-be/internal/repository/memory"
	"chatbot-be/internal/repository/specification"
	"chatbot-be/internal/repository/unitofwork"
	"chatbot-be/pkg/events"
	"chatbot-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatRepo is an in-memory stand-in for the GORM repository. It
// interprets the same specifications the real one translates to SQL.
type fakeChatRepo struct {
	chats map[uuid.UUID]entity.Chat
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[uuid.UUID]entity.Chat)}
}

func copyChat(c entity.Chat) entity.Chat {
	conv := make([]entity.Turn, len(c.Conversation))
	copy(conv, c.Conversation)
	c.Conversation = conv
	if c.EndedAt != nil {
		ended := *c.EndedAt
		c.EndedAt = &ended
	}
	return c
}

func (r *fakeChatRepo) Create(ctx context.Context, chat *entity.Chat) error {
	if chat.EndedAt == nil {
		for _, existing := range r.chats {
			if existing.UserId == chat.UserId && existing.EndedAt == nil {
				// Mirrors the partial unique index on chats(user_id).
				return errors.New("duplicate key value violates unique constraint \"uniq_active_chat_per_user\"")
			}
		}
	}
	r.chats[chat.Id] = copyChat(*chat)
	return nil
}

func (r *fakeChatRepo) Update(ctx context.Context, chat *entity.Chat) error {
	if _, ok := r.chats[chat.Id]; !ok {
		return errors.New("chat does not exist")
	}
	r.chats[chat.Id] = copyChat(*chat)
	return nil
}

func (r *fakeChatRepo) Delete(ctx context.Context, id uuid.UUID, userId uuid.UUID) (int64, error) {
	chat, ok := r.chats[id]
	if !ok || chat.UserId != userId {
		return 0, nil
	}
	delete(r.chats, id)
	return 1, nil
}

func (r *fakeChatRepo) matches(chat entity.Chat, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if chat.Id != s.ID {
				return false
			}
		case specification.OwnedBy:
			if chat.UserId != s.UserID {
				return false
			}
		case specification.ActiveOnly:
			if chat.EndedAt != nil {
				return false
			}
		case specification.BySessionToken:
			if chat.SessionToken != s.Token {
				return false
			}
		}
	}
	return true
}

func (r *fakeChatRepo) all(specs []specification.Specification) []entity.Chat {
	var out []entity.Chat
	for _, chat := range r.chats {
		if r.matches(chat, specs) {
			out = append(out, copyChat(chat))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

func (r *fakeChatRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error) {
	matched := r.all(specs)
	if len(matched) == 0 {
		return nil, nil
	}
	return &matched[0], nil
}

func (r *fakeChatRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chat, error) {
	matched := r.all(specs)
	out := make([]*entity.Chat, len(matched))
	for i := range matched {
		out[i] = &matched[i]
	}
	return out, nil
}

func (r *fakeChatRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.all(specs))), nil
}

type fakeUserRepo struct{}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	return nil, nil
}
func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeUow struct {
	chats *fakeChatRepo
	users *fakeUserRepo
}

func (u *fakeUow) Begin(ctx context.Context) error         { return nil }
func (u *fakeUow) Commit() error                           { return nil }
func (u *fakeUow) Rollback() error                         { return nil }
func (u *fakeUow) UserRepository() contract.UserRepository { return u.users }
func (u *fakeUow) ChatRepository() contract.ChatRepository { return u.chats }

type fakeFactory struct {
	uow *fakeUow
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// generatorFunc adapts a plain function to the provider interface.
type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f(ctx, prompt)
}

type recordingPublisher struct {
	published []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.published = append(p.published, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	var out []string
	for _, e := range p.published {
		out = append(out, e.EventType())
	}
	return out
}

func newTestChatService(t *testing.T) (IChatService, *fakeChatRepo, *recordingPublisher) {
	t.Helper()
	repo := newFakeChatRepo()
	pub := &recordingPublisher{}
	svc := NewChatService(
		&fakeFactory{uow: &fakeUow{chats: repo, users: &fakeUserRepo{}}},
		generatorFunc(func(ctx context.Context, prompt string) (string, error) {
			return "reply to: " + prompt, nil
		}),
		memory.NewActiveSessionCache(),
		pub,
		timefmt.NewFormatter("Asia/Karachi"),
	)
	return svc, repo, pub
}

func submit(t *testing.T, svc IChatService, userId uuid.UUID, content string) *dto.ChatTurnResult {
	t.Helper()
	res, err := svc.SubmitTurn(context.Background(), userId, &dto.ChatTurnRequest{Content: content})
	require.NoError(t, err)
	require.NotNil(t, res.Chat)
	return res
}

func endSession(svc IChatService, userId uuid.UUID) (*dto.ChatTurnResult, error) {
	return svc.SubmitTurn(context.Background(), userId, &dto.ChatTurnRequest{EndSession: true})
}

func TestSubmitTurnCreatesThenContinues(t *testing.T) {
	svc, _, pub := newTestChatService(t)
	userId := uuid.New()

	first := submit(t, svc, userId, "Hello there!")
	assert.True(t, first.Created)
	require.Len(t, first.Chat.Conversation, 1)
	assert.Equal(t, "Hello there!", first.Chat.Conversation[0].You)
	assert.Equal(t, "reply to: Hello there!", first.Chat.Conversation[0].Bot)
	assert.NotEmpty(t, first.Chat.Conversation[0].MessageId)
	assert.Nil(t, first.Chat.EndTime)

	second := submit(t, svc, userId, "How are you?")
	assert.False(t, second.Created)
	assert.Equal(t, first.Chat.ChatId, second.Chat.ChatId)
	assert.Equal(t, first.Chat.SessionIdentifier, second.Chat.SessionIdentifier)
	require.Len(t, second.Chat.Conversation, 2)
	assert.Equal(t, "Hello there!", second.Chat.Conversation[0].You)
	assert.Equal(t, "How are you?", second.Chat.Conversation[1].You)

	assert.Equal(t, []string{
		events.TypeSessionStarted,
		events.TypeTurnAppended,
		events.TypeTurnAppended,
	}, pub.types())
}

func TestSubmitTurnEmptyContent(t *testing.T) {
	svc, repo, _ := newTestChatService(t)

	_, err := svc.SubmitTurn(context.Background(), uuid.New(), &dto.ChatTurnRequest{Content: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, repo.chats)
}

func TestEndSessionWithoutActive(t *testing.T) {
	svc, _, _ := newTestChatService(t)

	_, err := endSession(svc, uuid.New())
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestEndSessionThenCreateStartsNew(t *testing.T) {
	svc, repo, _ := newTestChatService(t)
	userId := uuid.New()

	first := submit(t, svc, userId, "Hello")
	ended, err := endSession(svc, userId)
	require.NoError(t, err)
	require.NotNil(t, ended.Ended)
	assert.Equal(t, "Chat session ended successfully.", ended.Ended.Message)
	assert.NotNil(t, ended.Ended.EndTime)
	assert.Equal(t, first.Chat.SessionIdentifier, ended.Ended.SessionId)

	// Ending again must fail: the session is no longer active.
	_, err = endSession(svc, userId)
	assert.ErrorIs(t, err, ErrNoActiveSession)

	next := submit(t, svc, userId, "Hello again")
	assert.True(t, next.Created)
	assert.NotEqual(t, first.Chat.ChatId, next.Chat.ChatId)
	assert.NotEqual(t, first.Chat.SessionIdentifier, next.Chat.SessionIdentifier)
	require.Len(t, next.Chat.Conversation, 1)

	// The ended session keeps its end time.
	old := repo.chats[first.Chat.ChatId]
	assert.NotNil(t, old.EndedAt)
}

func TestUpdateMessage(t *testing.T) {
	svc, repo, pub := newTestChatService(t)
	userId := uuid.New()

	created := submit(t, svc, userId, "original question")
	chatId := created.Chat.ChatId
	messageId := created.Chat.Conversation[0].MessageId
	originalReply := created.Chat.Conversation[0].Bot

	newContent := "edited question"
	err := svc.UpdateMessage(context.Background(), userId, chatId, messageId, &dto.UpdateMessageRequest{Content: &newContent})
	require.NoError(t, err)

	stored := repo.chats[chatId]
	require.Len(t, stored.Conversation, 1)
	assert.Equal(t, "edited question", stored.Conversation[0].UserText)
	assert.Equal(t, originalReply, stored.Conversation[0].GeneratedText)
	assert.Equal(t, messageId, stored.Conversation[0].MessageId)
	assert.Contains(t, pub.types(), events.TypeMessageEdited)

	t.Run("unknown message id", func(t *testing.T) {
		err := svc.UpdateMessage(context.Background(), userId, chatId, uuid.New().String(), &dto.UpdateMessageRequest{Content: &newContent})
		assert.ErrorIs(t, err, ErrMessageNotFound)
	})

	t.Run("unknown chat", func(t *testing.T) {
		err := svc.UpdateMessage(context.Background(), userId, uuid.New(), messageId, &dto.UpdateMessageRequest{Content: &newContent})
		assert.ErrorIs(t, err, ErrChatNotFound)
	})

	t.Run("other user's chat", func(t *testing.T) {
		err := svc.UpdateMessage(context.Background(), uuid.New(), chatId, messageId, &dto.UpdateMessageRequest{Content: &newContent})
		assert.ErrorIs(t, err, ErrChatNotFound)
	})

	t.Run("missing content", func(t *testing.T) {
		err := svc.UpdateMessage(context.Background(), userId, chatId, messageId, &dto.UpdateMessageRequest{})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestDeleteChat(t *testing.T) {
	svc, _, _ := newTestChatService(t)
	userId := uuid.New()

	created := submit(t, svc, userId, "to be deleted")
	chatId := created.Chat.ChatId

	require.NoError(t, svc.DeleteChat(context.Background(), userId, chatId))

	list, err := svc.ListChats(context.Background(), userId, "")
	require.NoError(t, err)
	assert.Empty(t, list)

	// Gone means gone, for delete and edit alike.
	assert.ErrorIs(t, svc.DeleteChat(context.Background(), userId, chatId), ErrChatNotFound)
	content := "x"
	assert.ErrorIs(t,
		svc.UpdateMessage(context.Background(), userId, chatId, uuid.New().String(), &dto.UpdateMessageRequest{Content: &content}),
		ErrChatNotFound)

	// Deleting the active session must not block starting a new one.
	next := submit(t, svc, userId, "fresh start")
	assert.True(t, next.Created)
}

func TestDeleteChatOtherUser(t *testing.T) {
	svc, repo, _ := newTestChatService(t)
	owner := uuid.New()

	created := submit(t, svc, owner, "mine")

	err := svc.DeleteChat(context.Background(), uuid.New(), created.Chat.ChatId)
	assert.ErrorIs(t, err, ErrChatNotFound)
	assert.Len(t, repo.chats, 1)
}

func TestListChats(t *testing.T) {
	svc, _, _ := newTestChatService(t)
	userId := uuid.New()

	first := submit(t, svc, userId, "session one")
	_, err := endSession(svc, userId)
	require.NoError(t, err)
	second := submit(t, svc, userId, "session two")

	list, err := svc.ListChats(context.Background(), userId, "")
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Filtering by session token narrows to one row.
	filtered, err := svc.ListChats(context.Background(), userId, first.Chat.SessionIdentifier)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, first.Chat.ChatId, filtered[0].ChatId)
	assert.NotNil(t, filtered[0].EndTime)

	filtered, err = svc.ListChats(context.Background(), userId, second.Chat.SessionIdentifier)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Nil(t, filtered[0].EndTime)

	// Another user sees nothing.
	other, err := svc.ListChats(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestFullSessionLifecycle(t *testing.T) {
	svc, repo, _ := newTestChatService(t)
	userId := uuid.New()

	created := submit(t, svc, userId, "turn one")
	require.True(t, created.Created)
	require.Len(t, created.Chat.Conversation, 1)

	continued := submit(t, svc, userId, "turn two")
	require.False(t, continued.Created)
	require.Equal(t, created.Chat.ChatId, continued.Chat.ChatId)
	require.Len(t, continued.Chat.Conversation, 2)
	assert.Equal(t, "turn one", continued.Chat.Conversation[0].You)
	assert.Equal(t, "turn two", continued.Chat.Conversation[1].You)

	ended, err := endSession(svc, userId)
	require.NoError(t, err)
	require.NotNil(t, ended.Ended)

	fresh := submit(t, svc, userId, "turn three")
	require.True(t, fresh.Created)
	assert.NotEqual(t, created.Chat.ChatId, fresh.Chat.ChatId)

	// Two rows total: one ended with two turns, one active with one turn.
	require.Len(t, repo.chats, 2)
	oldChat := repo.chats[created.Chat.ChatId]
	newChat := repo.chats[fresh.Chat.ChatId]
	assert.NotNil(t, oldChat.EndedAt)
	assert.Len(t, oldChat.Conversation, 2)
	assert.Nil(t, newChat.EndedAt)
	assert.Len(t, newChat.Conversation, 1)
}

func TestGeneratorErrorLeavesNoRow(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewChatService(
		&fakeFactory{uow: &fakeUow{chats: repo, users: &fakeUserRepo{}}},
		generatorFunc(func(ctx context.Context, prompt string) (string, error) {
			return "", fmt.Errorf("model unavailable")
		}),
		memory.NewActiveSessionCache(),
		&recordingPublisher{},
		timefmt.NewFormatter("UTC"),
	)

	_, err := svc.SubmitTurn(context.Background(), uuid.New(), &dto.ChatTurnRequest{Content: "hi"})
	assert.Error(t, err)
	assert.Empty(t, repo.chats)
}
