package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookly/config"
	"bookly/cron"
	"bookly/database"
	"bookly/database/repository"
	"bookly/database/repository/memory"
	"bookly/handlers"
	"bookly/middleware"
	"bookly/routes"
	"bookly/services/booking"
	"bookly/services/catalog"
	"bookly/services/fees"
	"bookly/services/notification"
	"bookly/services/referral"
	"bookly/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Storage.
	var (
		store       *repository.Store
		mongoClient *mongo.Client
	)
	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("using the in-memory store; data is lost on restart")
		store = memory.New().Repositories()
	default:
		if err := database.InitDB(cfg.DatabaseURL); err != nil {
			logger.Fatal("database init failed", zap.Error(err))
		}
		mongoClient = database.MongoClient
		logger.Info("connected to MongoDB", zap.String("database", cfg.DatabaseName))
		store = repository.NewMongoStore(mongoClient, cfg.DatabaseName)
	}

	// Redis cache is optional; lookups fall through to the store without it.
	cache := utils.GetCacheClient()

	// Push delivery.
	push := notification.Dispatcher(notification.LogDispatcher{Logger: logger})
	if cfg.FirebaseCredentialsFile != "" {
		fcm, err := utils.NewMessagingClient(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Error("firebase disabled", zap.Error(err))
		} else {
			push = notification.NewPushSender(fcm, store.Users, logger)
		}
	}

	// Notifications go through the queue when Redis is up so reminders can be
	// delayed and failed deliveries retried.
	notifier := push
	var (
		queueClient *asynq.Client
		inspector   *asynq.Inspector
		worker      *asynq.Server
	)
	if cache != nil {
		queueClient = asynq.NewClient(cron.QueueRedisOpt(cfg))
		inspector = asynq.NewInspector(cron.QueueRedisOpt(cfg))
		notifier = notification.NewQueueDispatcher(queueClient, inspector, logger)
		worker = cron.InitNotificationWorker(ctx, cfg, push, store.Bookings, logger)
	}

	// Platform fees.
	var feeProcessor booking.FeeProcessor = &fees.RecordingFeeProcessor{
		Bookings: store.Bookings,
		Catalog:  store.Catalog,
		Logger:   logger,
	}
	if cfg.StripeKey != "" {
		stripe.Key = cfg.StripeKey
		feeProcessor = fees.NewStripeFeeProcessor(store.Bookings, store.Catalog, cfg.FeeCurrency, logger)
	}

	var stats booking.StatsCache = booking.NopStatsCache{}
	if cache != nil {
		stats = booking.RedisStatsCache{Client: cache}
	}

	catalogService := catalog.NewCatalogService(store.Catalog, store.Users, cache, logger)
	bookingService := booking.NewBookingService(booking.Deps{
		Catalog:  catalogService,
		Notifier: notifier,
		Referral: referral.NewProcessor(store, cfg.ReferralBonusPoints, logger),
		Fees:     feeProcessor,
		Stats:    stats,
		Logger:   logger,
		Policy:   cfg.BookingPolicy(),
	}.FromStore(store))

	utils.StartHealthMonitor(ctx, cfg.StoreDriver, cache, mongoClient, 30*time.Second)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	bookingHandler := handlers.NewBookingHandler(bookingService, catalogService)
	routes.RegisterRoutes(router, handlers.NewHandlerBundle(bookingHandler, []byte(cfg.JWTSecret)))

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}
	go func() {
		logger.Info("server listening", zap.String("port", cfg.AppPort), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}
	if queueClient != nil {
		_ = queueClient.Close()
		_ = inspector.Close()
	}
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Error("database disconnect failed", zap.Error(err))
	}
	logger.Info("server exited")
}
