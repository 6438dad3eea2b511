package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/interview-agent-api/internal/config"
	"github.com/noah-isme/interview-agent-api/internal/database"
	"github.com/noah-isme/interview-agent-api/internal/handler"
	"github.com/noah-isme/interview-agent-api/internal/middleware"
	"github.com/noah-isme/interview-agent-api/internal/repository"
	"github.com/noah-isme/interview-agent-api/internal/router"
	"github.com/noah-isme/interview-agent-api/internal/service"
	"github.com/noah-isme/interview-agent-api/pkg/ai"
	cloud "github.com/noah-isme/interview-agent-api/pkg/cloudinary"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger = logger.With().Str("service", cfg.AppName).Str("env", cfg.AppEnv).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create cloudinary client")
	}

	completer, closeCompleter, err := newCompleter(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create ai client")
	}
	defer closeCompleter.Close()

	oracle := ai.NewLimited(ai.NewOracle(completer, logger), ai.LimitConfig{
		RequestsPerSecond: cfg.AIRequestsPerSecond,
		Burst:             cfg.AIBurst,
		MaxRetries:        cfg.AIMaxRetries,
		Timeout:           cfg.AITimeout,
	})

	validate := validator.New(validator.WithRequiredStructEnabled())

	candidateRepo := repository.NewCandidateRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	interviewRepo := repository.NewInterviewRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)

	events := service.NewEventStream(redisClient, cfg.EventChannel, natsConn, logger)
	events.Start(ctx)

	evaluationService := service.NewEvaluationService(
		evaluationRepo, interviewRepo, questionRepo, answerRepo, candidateRepo,
		oracle, redisClient, events,
		service.EvaluationConfig{
			Concurrency: cfg.EvaluationConcurrency,
			SummaryTTL:  cfg.SummaryCacheTTL,
			KeyPrefix:   cfg.EventChannel,
		},
		logger,
	)

	dispatcher := service.NewEvaluationDispatcher(evaluationService, events, service.DispatcherConfig{
		Workers:   cfg.EvaluationWorkers,
		QueueSize: cfg.EvaluationQueueSize,
		Timeout:   cfg.EvaluationTimeout,
	}, logger)
	dispatcher.Start(ctx)

	sequencer := service.NewQuestionSequencer(questionRepo, oracle, logger)
	mediaService := service.NewMediaService(uploader, cfg.MaxAudioMB, cfg.MaxVideoMB, logger)
	interviewService := service.NewInterviewService(
		interviewRepo, candidateRepo, companyRepo, questionRepo,
		sequencer, mediaService, events, dispatcher,
		service.InterviewConfig{TechnicalQuestions: cfg.TechnicalQuestions, HRQuestions: cfg.HRQuestions},
		validate, logger,
	)
	authService := service.NewAuthService(candidateRepo, companyRepo, service.AuthConfig{
		Secret:     cfg.JWTSecret,
		TTL:        cfg.JWTTTL,
		BcryptCost: cfg.BcryptCost,
	}, validate, logger)
	candidateService := service.NewCandidateService(candidateRepo, validate, logger)

	bodyLimit := (cfg.MaxVideoMB + 1) << 20
	if audio := (cfg.MaxAudioMB*4/3 + 1) << 20; audio > bodyLimit {
		bodyLimit = audio
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    bodyLimit,
	})

	middleware.Register(app, middleware.Config{
		Logger:      &logger,
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		CandidateHandler:  handler.NewCandidateHandler(candidateService, interviewService, logger),
		CompanyHandler:    handler.NewCompanyHandler(interviewService, candidateService, logger),
		EvaluationHandler: handler.NewEvaluationHandler(evaluationService, logger),
		LiveHandler:       handler.NewLiveHandler(interviewService, events, logger),
		HealthChecks:      healthChecks(db, redisClient, natsConn),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Error().Err(err).Msg("server stopped listening")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("evaluation queue not drained")
	}

	logger.Info().Msg("server stopped")
}

func newCompleter(ctx context.Context, cfg config.Config) (ai.Completer, io.Closer, error) {
	switch cfg.AIProvider {
	case "openai":
		completer, err := ai.NewOpenAICompleter(ai.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel})
		if err != nil {
			return nil, nil, err
		}
		return completer, closerFunc(func() error { return nil }), nil
	default:
		completer, err := ai.NewGeminiCompleter(ctx, ai.GeminiConfig{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
		if err != nil {
			return nil, nil, err
		}
		return completer, completer, nil
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func healthChecks(db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) map[string]handler.DependencyCheck {
	checks := map[string]handler.DependencyCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if natsConn != nil {
		checks["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return nats.ErrConnectionClosed
			}
			return nil
		}
	}
	return checks
}
