package bootstrap

import (
	"context"
	"log"
	"time"

	"rich-text-bridge/internal/config"
	"rich-text-bridge/internal/controller"
	"rich-text-bridge/internal/handler"
	"rich-text-bridge/internal/pkg/logger"
	"rich-text-bridge/internal/repository/memory"
	"rich-text-bridge/internal/repository/unitofwork"
	"rich-text-bridge/internal/service"
	"rich-text-bridge/internal/websocket"

	pktNats "rich-text-bridge/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ConvertController  controller.IConvertController
	PolicyController   controller.IPolicyController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Editor sessions
	EditorHandler *handler.EditorHandler
	WebSocketHub  *websocket.Hub

	Logger logger.ILogger

	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
	rdb     *redis.Client
	cancel  context.CancelFunc
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	ctx, cancel := context.WithCancel(context.Background())

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	editorLogger := logger.NewIsolatedLogger(cfg.App.EditorLogFilePath)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Editor sessions stay on this instance", err)
		rdb.Close()
		rdb = nil
	}

	wsHub := websocket.NewHub(rdb, editorLogger)
	go wsHub.Run(ctx)

	// 4. Services
	policyCache := memory.NewPolicyCache(time.Duration(cfg.Policy.CacheTTLMinutes) * time.Minute)
	convertService := service.NewConvertService(cfg.Transform.MaxDepth, cfg.Transform.NativeEmbeds, sysLogger)
	policyService := service.NewPolicyService(policyCache, cfg.Policy.FieldConfigPath, sysLogger)

	publisherService := service.NewPublisherService(cfg.App.DocumentAnalysisTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.DocumentAnalysisTopic,
		uowFactory,
		sysLogger,
	)

	// A nil *Publisher must not reach the service as a non-nil interface.
	var eventPublisher service.IEventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	documentService := service.NewDocumentService(
		uowFactory,
		convertService,
		policyService,
		publisherService,
		eventPublisher,
		sysLogger,
	)

	editorHandler := handler.NewEditorHandler(documentService, wsHub, cfg.App.JwtSecret, editorLogger)
	if natsSub != nil {
		if err := editorHandler.ListenDocumentEvents(ctx, natsSub); err != nil {
			log.Printf("[WARN] Failed to subscribe editor sessions to document events: %v", err)
		}
	}

	// 5. Controllers
	return &Container{
		ConvertController:  controller.NewConvertController(convertService, policyService),
		PolicyController:   controller.NewPolicyController(policyService),
		DocumentController: controller.NewDocumentController(documentService),

		ConsumerService: consumerService,

		EditorHandler: editorHandler,
		WebSocketHub:  wsHub,

		Logger: sysLogger,

		natsPub: natsPub,
		natsSub: natsSub,
		rdb:     rdb,
		cancel:  cancel,
	}
}

// Close stops background workers and releases connections.
func (c *Container) Close() {
	c.cancel()
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.rdb != nil {
		c.rdb.Close()
	}
	_ = c.Logger.Sync()
}
