package bootstrap

import (
	"context"
	"log"

	"chatbot-be/internal/config"
	"chatbot-be/internal/controller"
	"chatbot-be/internal/handler"
	"chatbot-be/internal/pkg/logger"
	"chatbot-be/internal/pkg/timefmt"
	"chatbot-be/internal/repository/memory"
	"chatbot-be/internal/repository/unitofwork"
	"chatbot-be/internal/service"
	"chatbot-be/internal/websocket"
	"chatbot-be/pkg/llm/factory"

	pktNats "chatbot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WsHandler    *handler.WsHandler
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Text Generation Provider
	llmProvider, err := factory.NewProvider(
		cfg.Ai.Provider,
		cfg.Ai.Model,
		cfg.Ai.BaseURL,
		cfg.Ai.HuggingFaceAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.Provider, cfg.Ai.Model)

	// Active session lookup shortcut
	activeCache := memory.NewActiveSessionCache()

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	// WebSocket Hub
	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run()

	timeFormatter := timefmt.NewFormatter(cfg.App.DisplayTimezone)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.ChatEventsTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.ChatEventsTopic,
		wsHub,
		sysLogger,
	)

	authService := service.NewAuthService(uowFactory, cfg.Auth.TokenTTLDays, natsPub)
	chatService := service.NewChatService(
		uowFactory,
		llmProvider,
		activeCache,
		publisherService,
		timeFormatter,
	)

	// 5. Controllers
	return &Container{
		AuthController: controller.NewAuthController(authService),
		ChatController: controller.NewChatController(chatService),

		ConsumerService: consumerService,

		WsHandler:    handler.NewWsHandler(wsHub, sysLogger),
		WebSocketHub: wsHub,
	}
}
