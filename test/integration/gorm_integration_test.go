package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"chatbot-be/internal/entity"
	"chatbot-be/internal/repository/specification"
	"chatbot-be/internal/repository/unitofwork"
	"chatbot-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.ChatRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Chat Repository", func(t *testing.T) {
		count, err := uow.ChatRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Chat count: %d", count)
	})
}

func TestChatRepositoryRoundTrip(t *testing.T) {
	godotenv.Load("../../.env")
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(ctx)

	userId := uuid.New()
	chat := &entity.Chat{
		Id:     uuid.New(),
		UserId: userId,
		Conversation: []entity.Turn{
			{MessageId: uuid.New().String(), UserText: "hi", GeneratedText: "hello", Timestamp: "01/01/2024 12:00:00"},
		},
		SessionToken: uuid.New().String(),
		StartedAt:    time.Now(),
	}

	require.NoError(t, uow.ChatRepository().Create(ctx, chat))
	defer uow.ChatRepository().Delete(ctx, chat.Id, userId)

	loaded, err := uow.ChatRepository().FindOne(ctx,
		specification.ByID{ID: chat.Id},
		specification.OwnedBy{UserID: userId},
		specification.ActiveOnly{},
	)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, chat.SessionToken, loaded.SessionToken)
	require.Len(t, loaded.Conversation, 1)
	assert.Equal(t, "hi", loaded.Conversation[0].UserText)
	assert.Equal(t, "hello", loaded.Conversation[0].GeneratedText)

	// Ending the session makes it invisible to the active-only lookup.
	now := time.Now()
	loaded.EndedAt = &now
	require.NoError(t, uow.ChatRepository().Update(ctx, loaded))

	active, err := uow.ChatRepository().FindOne(ctx,
		specification.ByID{ID: chat.Id},
		specification.ActiveOnly{},
	)
	require.NoError(t, err)
	assert.Nil(t, active)

	rows, err := uow.ChatRepository().Delete(ctx, chat.Id, userId)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)
}
