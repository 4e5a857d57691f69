package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/SAP-F-2025/story-survey-service/internal/auth"
	"github.com/SAP-F-2025/story-survey-service/internal/cache"
	"github.com/SAP-F-2025/story-survey-service/internal/collector"
	"github.com/SAP-F-2025/story-survey-service/internal/config"
	"github.com/SAP-F-2025/story-survey-service/internal/events"
	"github.com/SAP-F-2025/story-survey-service/internal/flow"
	"github.com/SAP-F-2025/story-survey-service/internal/handlers"
	"github.com/SAP-F-2025/story-survey-service/internal/render"
	"github.com/SAP-F-2025/story-survey-service/internal/repositories"
	"github.com/SAP-F-2025/story-survey-service/internal/repositories/memory"
	"github.com/SAP-F-2025/story-survey-service/internal/repositories/postgres"
	sessionredis "github.com/SAP-F-2025/story-survey-service/internal/repositories/redis"
	"github.com/SAP-F-2025/story-survey-service/internal/services"
	"github.com/SAP-F-2025/story-survey-service/internal/trials"
	"github.com/SAP-F-2025/story-survey-service/internal/utils"
	"github.com/SAP-F-2025/story-survey-service/internal/validator"
	"github.com/SAP-F-2025/story-survey-service/pkg"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),

		// Core Application Components
		fx.Provide(
			config.LoadConfig,
			NewLogger,
			utils.ToSlogLogger,
			pkg.NewZapLogger,
			NewRedisClient,
			NewDatabase,
			NewGinEngine,
		),

		// Storage Layer
		fx.Provide(
			NewSessionRepository,
			NewSubmissionRepository,
			NewTrialCache,
		),

		// Services Layer
		fx.Provide(
			NewVariant,
			NewTrialSource,
			NewCollector,
			NewEventPublisher,
			validator.New,
			NewSurveyService,
			services.NewExportService,
		),

		// HTTP Layer
		fx.Provide(
			render.New,
			NewRateLimiter,
			NewOperator,
			handlers.NewHandlerManager,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("failed to start application: %v", err)
	}

	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func NewLogger(cfg *config.Config) utils.Logger {
	return utils.NewLogger(cfg.Environment)
}

// NewRedisClient connects only when sessions live in Redis; the trial cache
// rides on the same client.
func NewRedisClient(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	if cfg.Storage.SessionStore != "redis" {
		return nil, nil
	}
	client, err := pkg.NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return client.Close() },
	})
	return client, nil
}

func NewDatabase(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	if cfg.Storage.SubmissionStore != "postgres" {
		return nil, nil
	}
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := pkg.MigrateDatabase(db); err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return db, nil
}

func NewSessionRepository(cfg *config.Config, client *redis.Client) repositories.SessionRepository {
	if client == nil {
		return memory.NewSessionMemory()
	}
	return sessionredis.NewSessionRedis(client, cfg.Storage.SessionTTL)
}

func NewSubmissionRepository(db *gorm.DB) repositories.SubmissionRepository {
	if db == nil {
		return memory.NewSubmissionMemory()
	}
	return postgres.NewSubmissionPostgreSQL(db)
}

func NewTrialCache(client *redis.Client, logger *zap.Logger) cache.CacheService {
	if client == nil {
		return nil
	}
	return cache.NewRedisCache(client, logger)
}

func NewVariant(cfg *config.Config) (*flow.Variant, error) {
	return flow.LookupVariant(cfg.Survey.Variant)
}

func NewTrialSource(cfg *config.Config, trialCache cache.CacheService, logger utils.Logger) services.TrialSource {
	return trials.NewLoader(trials.LoaderConfig{
		SourceURL: cfg.Survey.TrialSourceURL,
		Timeout:   cfg.Survey.TrialFetchTimeout,
		CacheTTL:  cfg.Survey.TrialCacheTTL,
		Cache:     trialCache,
		Logger:    logger,
	})
}

func NewCollector(cfg *config.Config, logger utils.Logger) collector.Collector {
	if cfg.Collector.Mode == "mock" {
		logger.Warn("Using mock collector, submissions are not delivered")
		return collector.NewMockCollector()
	}
	return collector.NewHTTPCollector(cfg.Collector.URL, cfg.Collector.Timeout, logger)
}

func NewEventPublisher(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (events.EventPublisher, error) {
	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			publisher.Close()
			return nil
		},
	})
	return publisher, nil
}

func NewSurveyService(
	variant *flow.Variant,
	source services.TrialSource,
	sessions repositories.SessionRepository,
	submissions repositories.SubmissionRepository,
	col collector.Collector,
	publisher events.EventPublisher,
	v *validator.Validator,
	logger *slog.Logger,
) services.SurveyService {
	return services.NewSurveyService(services.SurveyServiceConfig{
		Variant:     variant,
		Trials:      source,
		Shuffler:    trials.NewFisherYates(nil),
		Sessions:    sessions,
		Submissions: submissions,
		Collector:   col,
		Publisher:   publisher,
		Validator:   v,
		Logger:      logger,
	})
}

func NewRateLimiter(cfg *config.Config, logger utils.Logger) *handlers.RateLimiter {
	return handlers.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, logger)
}

func NewOperator(cfg *config.Config, logger utils.Logger) *auth.Operator {
	if cfg.HTTP.OperatorSecret == "" {
		logger.Warn("OPERATOR_JWT_SECRET is not set; submission export route disabled")
	}
	return auth.NewOperator(cfg.HTTP.OperatorSecret)
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", utils.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", utils.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if containsWildcard(cfg.HTTP.CORSOrigins) {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.HTTP.CORSOrigins
		corsConfig.AllowCredentials = true
	}
	r.Use(cors.New(corsConfig))

	return r
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// RegisterRoutesAndStartServer configures routes and manages the server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	manager *handlers.HandlerManager,
	logger utils.Logger,
) {
	manager.SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Survey server starting",
				"port", cfg.Port,
				"environment", cfg.Environment,
				"variant", cfg.Survey.Variant,
				"session_store", cfg.Storage.SessionStore,
				"submission_store", cfg.Storage.SubmissionStore)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.LogError(err, "Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Server shutting down")
			return server.Shutdown(ctx)
		},
	})
}
