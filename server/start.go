package server

import (
	"context"
	"io"

	"notes-service/access"
	"notes-service/auth"
	cachepackage "notes-service/cache"
	"notes-service/config"
	"notes-service/database"
	"notes-service/events"
	"notes-service/handlers"
	"notes-service/metrics"
	"notes-service/service"
	"notes-service/session"
	"notes-service/store"

	"github.com/go-redis/redis/v8"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// StartServer wires every component from cfg and blocks serving HTTP.
func StartServer(cfg *config.Config) error {
	logger.Info("Starting Notes Service...", zap.String("config", cfg.String()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbConn, err := database.InitializeDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	cache, err := cachepackage.InitializeCache(cfg.Cache)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	// One Redis client is shared by sessions and rate limiting when either uses it.
	var redisClient *redis.Client
	if cfg.Session.Store == "redis" || cfg.RateLimit.Store == "redis" {
		redisClient, err = cachepackage.NewRedisClient(ctx, cfg.Cache)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	var sessionStore session.Store
	if cfg.Session.Store == "redis" {
		sessionStore = session.NewRedisStore(redisClient)
	} else {
		sqlSessions := session.NewSQLStore(dbConn)
		go sqlSessions.RunPruner(ctx, cfg.Session.PruneInterval)
		sessionStore = sqlSessions
	}

	sessions, err := session.NewManager(sessionStore, session.Options{
		Secret:     cfg.Session.Secret,
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	})
	if err != nil {
		return err
	}

	var limiter access.Limiter
	if cfg.RateLimit.Store == "redis" {
		limiter = access.NewRedisLimiter(redisClient, cfg.RateLimit.Max, cfg.RateLimit.Window)
	} else {
		limiter = access.NewMemoryLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		logger.Info("Publishing note events to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	defer closeQuietly("event publisher", publisher)

	userStore := store.NewUserStore(dbConn)
	noteStore := store.NewNoteStore(dbConn)

	authService, err := auth.NewService(userStore, auth.NewBcryptHasher(auth.DefaultCost))
	if err != nil {
		return err
	}

	userHandler := handlers.NewUserHandler(userStore, cache)
	routes := Handlers{
		Auth:   handlers.NewAuthHandler(authService, sessions, userHandler),
		Users:  userHandler,
		Notes:  handlers.NewNotesHandler(service.NewNotesService(noteStore, publisher), sessions),
		Search: handlers.NewSearchHandler(service.NewSearchService(noteStore), sessions),
	}

	metrics.Init()

	keys := access.NewKeySet(cfg.Access.Header, cfg.Access.Keys)
	server := NewServer(cfg.HTTP.Port, keys, routes, limiter, cfg.HTTP.TrustProxy)

	logger.Info("Notes Service started on port " + cfg.HTTP.Port)
	logger.Info("Health check: GET /health")
	logger.Info("API endpoints: /api/auth/*, /api/users, /api/notes, /api/search")

	if err := server.Start(); err != nil {
		logger.Error("Server failed to start", zap.Error(err))
		return err
	}
	return nil
}

func closeQuietly(what string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Error("Failed to close "+what, zap.Error(err))
	}
}
