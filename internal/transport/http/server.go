package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"engagement/internal/cache"
	"engagement/internal/config"
	"engagement/internal/database"
	"engagement/internal/handler"
	"engagement/internal/metrics"
	"engagement/internal/queue"
	redisclient "engagement/internal/redis"
	"engagement/internal/repository"
	"engagement/internal/repository/memory"
	"engagement/internal/service"
	"engagement/internal/tracing"
	authmw "engagement/internal/transport/http/middleware"
	"engagement/internal/uistate"
	"engagement/internal/worker"
)

// Run wires every component from the environment and serves until
// SIGINT or SIGTERM.
func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Tracing
	shutdownTracing, err := tracing.Init(ctx, cfg.OTELEndpoint, cfg.OTELServiceName)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(c)
	}()

	// 3. Storage
	repos, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	// 4. Redis (optional: the service degrades to no cache and no stream)
	var redisClient *redisclient.Client
	if cfg.RedisURL != "" {
		redisClient, err = redisclient.ConnectWithRetry(ctx, cfg.RedisURL, redisclient.DefaultRetryPolicy())
		if err != nil {
			log.Printf("WARNING: Redis unavailable, continuing without cache and event stream: %v", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var countStore cache.Store = cache.NopStore{}
	var persister uistate.Persister = uistate.NewMemoryPersister()
	if redisClient != nil {
		countStore = cache.NewRedisStore(redisClient.Client)
		persister = uistate.NewRedisPersister(redisClient.Client)
	}

	// 5. Event broker
	var publisher queue.Publisher = queue.NopPublisher{}
	var shareFeed cache.ShareFeed
	switch cfg.EventBroker {
	case config.BrokerKafka:
		kp := queue.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publisher = kp
	case config.BrokerRedis:
		if redisClient != nil {
			publisher = queue.NewPublisher(redisClient.Client)
			// The feed set is only kept current by the stream worker
			shareFeed = cache.NewShareFeed(redisClient.Client)
		}
	}
	log.Printf("Event broker: %s (publisher=%T feed=%t)", cfg.EventBroker, publisher, shareFeed != nil)

	// 6. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(registry)

	// 7. Worker pool
	if shareFeed != nil {
		consumer := queue.NewConsumer(redisClient.Client)
		mgrCfg := worker.DefaultManagerConfig()
		mgrCfg.WorkerCount = cfg.WorkerCount
		manager := worker.NewManager(
			consumer,
			worker.NewHandler(countStore, shareFeed),
			mgrCfg,
		)
		if err := manager.Start(ctx); err != nil {
			return fmt.Errorf("failed to start workers: %w", err)
		}
		defer manager.Stop()

		if err := registerFeedGauges(registry, shareFeed, consumer); err != nil {
			return fmt.Errorf("failed to register feed metrics: %w", err)
		}
	}

	// 8. Services and handlers
	notifier := service.NewNotifier(countStore, publisher)
	reactionService := service.NewReactionService(repos, countStore, cfg.ReactionCacheTTL, notifier, recorder)
	likeService := service.NewLikeService(repos, countStore, cfg.ReactionCacheTTL, notifier, recorder)
	shareService := service.NewShareService(repos, notifier, recorder)
	commentService := service.NewCommentService(repos, notifier, recorder)
	feedService := service.NewFeedService(shareFeed, shareService, repos)

	rateLimiter := authmw.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	router := NewRouter(RouterConfig{
		ReactionHandler:    handler.NewReactionHandler(reactionService),
		LikeHandler:        handler.NewLikeHandler(likeService),
		ShareHandler:       handler.NewShareHandler(shareService),
		CommentHandler:     handler.NewCommentHandler(commentService),
		FeedHandler:        handler.NewFeedHandler(feedService),
		UIStateHandler:     handler.NewUIStateHandler(uistate.NewContainer(persister)),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		RateLimiter:        rateLimiter,
		JWTSecret:          cfg.JWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
	})

	// 9. Serve
	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           otelhttp.NewHandler(router, "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Println("Server stopped")
	return nil
}

// registerFeedGauges exposes the feed set size and the stream backlog.
func registerFeedGauges(reg prometheus.Registerer, feed cache.ShareFeed, consumer queue.Consumer) error {
	if err := metrics.RegisterSizeGauge(reg, "engagement_feed_shares",
		"Shares in the cached global feed.", feed.Size); err != nil {
		return err
	}
	return metrics.RegisterSizeGauge(reg, "engagement_stream_pending",
		"Engagement stream messages delivered but not yet acknowledged.",
		func(ctx context.Context) (int64, error) {
			return consumer.Pending(ctx, queue.StreamEngagement, queue.ConsumerGroupEngagement)
		})
}

// openStorage returns the ledgers for the configured driver and a closer.
func openStorage(ctx context.Context, cfg *config.Config) (repository.Repositories, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Println("WARNING: STORAGE_DRIVER=memory, data is lost on restart")
		return memory.NewStore().Repositories(), func() {}, nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return repository.Repositories{}, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return repository.Repositories{}, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	repos := repository.Repositories{
		Users:     repository.NewUserRepository(db),
		Posts:     repository.NewPostRepository(db),
		Reactions: repository.NewReactionRepository(db),
		Likes:     repository.NewLikeRepository(db),
		Shares:    repository.NewShareRepository(db),
		Comments:  repository.NewCommentRepository(db),
	}
	return repos, func() { db.Close() }, nil
}
