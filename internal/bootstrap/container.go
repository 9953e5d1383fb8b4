package bootstrap

import (
	"context"
	"log"
	"sync"

	"sales-copilot-be/internal/config"
	"sales-copilot-be/internal/controller"
	"sales-copilot-be/internal/handler"
	"sales-copilot-be/internal/pkg/logger"
	"sales-copilot-be/internal/pkg/serverutils"
	"sales-copilot-be/internal/repository/memory"
	"sales-copilot-be/internal/repository/unitofwork"
	"sales-copilot-be/internal/service"
	"sales-copilot-be/internal/websocket"
	"sales-copilot-be/pkg/ai/pipeline"
	"sales-copilot-be/pkg/ai/router"
	"sales-copilot-be/pkg/connectivity"
	"sales-copilot-be/pkg/events"
	pktNats "sales-copilot-be/pkg/nats"
	"sales-copilot-be/pkg/voice"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Config *config.Config
	Logger logger.ILogger

	// Core
	Engine    service.IChatEngine
	Directory service.ISessionDirectory

	// Controllers & Handlers
	CopilotController  controller.ICopilotController
	StateStreamHandler *handler.StateStreamHandler
	JwtMiddleware      fiber.Handler

	// Background Services (started by Start)
	ActivityService *service.ActivityService
	WebSocketHub    *websocket.Hub
	Monitor         *connectivity.ProbeMonitor

	closers   []func()
	closeOnce sync.Once
}

// NewContainer wires every component. A nil db selects the in-memory store.
// NATS and Redis are optional: without them voice, domain events and
// cluster fan-out are disabled and the monitor reports offline.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c := &Container{Config: cfg, Logger: sysLogger}

	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	} else {
		log.Printf("[INFO] Using in-memory storage")
		uowFactory = memory.NewRepositoryFactory(memory.NewStore())
	}

	// 2. Infrastructure
	nc, err := pktNats.Connect(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS: %v", err)
	} else {
		c.closers = append(c.closers, nc.Close)
	}

	rdb := newRedisClient(cfg.App.RedisURL)
	c.closers = append(c.closers, func() { rdb.Close() })

	// Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { pubSub.Close() })

	// 3. Domain events
	var sink events.Sink
	if natsPub := newNatsPublisher(nc, sysLogger); natsPub != nil {
		sink = natsPub
	}
	notifier := events.NewNotifier(sink, sysLogger)

	// 4. Services
	gateway := service.NewPersistenceGateway(uowFactory)
	c.Directory = service.NewSessionDirectory(gateway, notifier, sysLogger)

	responder := pipeline.NewCachedResponder(router.NewRuleResponder(), cfg.Copilot.ResponseCacheTTL)
	generator := pipeline.New(responder, router.DefaultSteps(cfg.Copilot.StepInterval), cfg.Copilot.StepInterval, sysLogger)

	var recognizer voice.Recognizer = voice.NewNatsRecognizer(nc, cfg.Voice.TranscriptSubject, cfg.Voice.CommandSubject, sysLogger)
	var speaker voice.Speaker = voice.NopSpeaker{}
	if nc != nil {
		speaker = voice.NewNatsSpeaker(nc, cfg.Voice.SpeakSubject, sysLogger)
	}

	c.Monitor = connectivity.NewProbeMonitor(
		connectivity.AnyOf(connectivity.NatsProbe(nc), connectivity.RedisProbe(rdb)),
		cfg.Copilot.ProbeInterval,
		sysLogger,
	)

	c.Engine = service.NewChatEngine(
		c.Directory,
		generator,
		recognizer,
		speaker,
		c.Monitor,
		service.NewPublisherService(cfg.Copilot.StateTopic, pubSub),
		notifier,
		cfg.Copilot.QuickActions,
		sysLogger,
	)
	c.Engine.SetLiveSpeech(cfg.Copilot.LiveSpeechByDefault)
	c.closers = append(c.closers, c.Engine.Close)

	// 5. Streaming
	wsLogger := logger.NewIsolatedLogger(cfg.App.StreamLogFilePath)
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)
	c.StateStreamHandler = handler.NewStateStreamHandler(c.Engine, c.WebSocketHub, cfg.Keys.JwtSecret, wsLogger)

	if nc != nil {
		natsSub, err := pktNats.NewSubscriber(nc, sysLogger)
		if err != nil {
			log.Printf("[WARN] Failed to create NATS subscriber: %v", err)
		} else {
			c.ActivityService = service.NewActivityService(natsSub, c.WebSocketHub, sysLogger)
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	// 6. Controllers
	c.JwtMiddleware = serverutils.NewJwtMiddleware(cfg.Keys.JwtSecret)
	c.CopilotController = controller.NewCopilotController(c.Engine, c.Directory)

	return c
}

// Start runs background services and resumes the most recent session.
func (c *Container) Start(ctx context.Context) {
	go c.WebSocketHub.Run(ctx)
	go c.Monitor.Run(ctx)

	if err := c.StateStreamHandler.Start(ctx); err != nil {
		c.Logger.Error("Bootstrap", "State stream unavailable", map[string]interface{}{"error": err.Error()})
	}
	if c.ActivityService != nil {
		if err := c.ActivityService.Start(ctx); err != nil {
			c.Logger.Warn("Bootstrap", "Activity relay disabled", map[string]interface{}{"error": err.Error()})
		}
	}

	session := c.Engine.Resume(ctx, c.Config.Copilot.DefaultTitle)
	c.Logger.Info("Bootstrap", "Session resumed", map[string]interface{}{"session_id": session.Id, "title": session.Title})
}

// Close releases resources in reverse order of acquisition. Safe to call twice.
func (c *Container) Close() {
	c.closeOnce.Do(func() {
		for i := len(c.closers) - 1; i >= 0; i-- {
			c.closers[i]()
		}
		_ = c.Logger.Sync()
	})
}

func newRedisClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	return redis.NewClient(opt)
}

func newNatsPublisher(nc *nats.Conn, log logger.ILogger) *pktNats.Publisher {
	if nc == nil {
		return nil
	}
	pub, err := pktNats.NewPublisher(nc, log)
	if err != nil {
		log.Warn("Bootstrap", "Domain events disabled", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return pub
}
