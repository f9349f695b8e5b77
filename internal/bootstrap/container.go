package bootstrap

import (
	"context"
	"log"

	"ai-chathub-be/internal/config"
	"ai-chathub-be/internal/constant"
	"ai-chathub-be/internal/controller"
	"ai-chathub-be/internal/handler"
	"ai-chathub-be/internal/pkg/logger"
	"ai-chathub-be/internal/repository/memory"
	"ai-chathub-be/internal/repository/unitofwork"
	"ai-chathub-be/internal/service"
	"ai-chathub-be/internal/session"
	"ai-chathub-be/internal/websocket"
	"ai-chathub-be/pkg/aggregator"
	"ai-chathub-be/pkg/attachment"
	"ai-chathub-be/pkg/extractor"
	pktNats "ai-chathub-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ThreadController     controller.IThreadController
	ChatController       controller.IChatController
	AttachmentController controller.IAttachmentController
	PreferenceController controller.IPreferenceController
	TagController        controller.ITagController
	PresetController     controller.IPresetController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	ChatService     service.IChatService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub
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

	// 2.5 Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

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
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. In-memory state
	sessionRepo := memory.NewSessionStateRepository()
	stagingRepo := memory.NewAttachmentStagingRepository()
	preferenceCache := memory.NewPreferenceCacheRepository()
	streamRegistry := session.NewStreamRegistry()

	// 4. External collaborators
	aggregatorClient := aggregator.NewClient(cfg.Aggregator.BaseURL, cfg.Aggregator.APIKey)
	extractorClient := extractor.NewClient(cfg.Extractor.BaseURL)

	attachmentValidator := attachment.NewValidator(attachment.Limits{
		MaxImages:        cfg.Attachments.MaxImages,
		MaxDocuments:     cfg.Attachments.MaxDocuments,
		ImageMaxBytes:    cfg.Attachments.ImageMaxBytes,
		DocumentMaxBytes: cfg.Attachments.DocumentMaxBytes,
	})
	attachmentProcessor := attachment.NewProcessor(extractorClient, cfg.Attachments.MaxTextChars, nil)

	// 5. Services
	publisherService := service.NewPublisherService(pubSub)
	consumerService := service.NewConsumerService(pubSub, constant.ChatStreamTopic, wsHub, wsLogger)

	preferenceService := service.NewPreferenceService(
		uowFactory,
		preferenceCache,
		aggregatorClient,
		cfg.Aggregator.DefaultModel,
		sysLogger,
	)
	threadService := service.NewThreadService(uowFactory, sessionRepo, streamRegistry, natsPub, sysLogger)
	chatService := service.NewChatService(
		uowFactory,
		sessionRepo,
		stagingRepo,
		streamRegistry,
		aggregatorClient,
		preferenceService,
		publisherService,
		natsPub,
		sysLogger,
	)
	attachmentService := service.NewAttachmentService(attachmentValidator, attachmentProcessor, stagingRepo, sysLogger)
	tagService := service.NewTagService(uowFactory)
	presetService := service.NewPresetService(uowFactory)

	streamHandler := handler.NewStreamHandler(wsHub, wsLogger)

	return &Container{
		StreamHandler: streamHandler,
		WebSocketHub:  wsHub,

		ThreadController:     controller.NewThreadController(threadService),
		ChatController:       controller.NewChatController(chatService),
		AttachmentController: controller.NewAttachmentController(attachmentService),
		PreferenceController: controller.NewPreferenceController(preferenceService),
		TagController:        controller.NewTagController(tagService),
		PresetController:     controller.NewPresetController(presetService),

		ConsumerService: consumerService,
		ChatService:     chatService,
	}
}
