package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	gormlogger "gorm.io/gorm/logger"

	"homehub/assistant-api/internal/config"
	"homehub/assistant-api/internal/domain/conversation"
	"homehub/assistant-api/internal/domain/identity"
	"homehub/assistant-api/internal/domain/llm"
	"homehub/assistant-api/internal/domain/memory"
	"homehub/assistant-api/internal/domain/tool"
	"homehub/assistant-api/internal/domain/turn"
	"homehub/assistant-api/internal/infrastructure/auth"
	"homehub/assistant-api/internal/infrastructure/crontab"
	"homehub/assistant-api/internal/infrastructure/database"
	"homehub/assistant-api/internal/infrastructure/llmprovider"
	"homehub/assistant-api/internal/infrastructure/logger"
	"homehub/assistant-api/internal/infrastructure/observability"
	"homehub/assistant-api/internal/infrastructure/queue"
	conversationrepo "homehub/assistant-api/internal/infrastructure/repository/conversation"
	identityrepo "homehub/assistant-api/internal/infrastructure/repository/identity"
	memoryrepo "homehub/assistant-api/internal/infrastructure/repository/memory"
	"homehub/assistant-api/internal/infrastructure/toolservice"
	"homehub/assistant-api/internal/interfaces/httpserver"
	"homehub/assistant-api/internal/interfaces/httpserver/handlers"
	"homehub/assistant-api/internal/webhook"
	"homehub/assistant-api/internal/worker"
)

// @title Assistant API
// @version 1.0
// @description Runs tool-augmented assistant conversations for the household hub, over synchronous web chat and deferred slash commands.
// @contact.name HomeHub Team
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer   *httpserver.HttpServer
	workerPool   *worker.Pool
	housekeeping *crontab.Crontab
	log          zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, workerPool *worker.Pool, housekeeping *crontab.Crontab, log zerolog.Logger) *Application {
	return &Application{
		httpServer:   httpServer,
		workerPool:   workerPool,
		housekeeping: housekeeping,
		log:          log,
	}
}

// Start runs the HTTP server and cron scheduler until the context ends,
// with the worker pool draining on the way out.
func (a *Application) Start(ctx context.Context) error {
	if err := a.workerPool.Start(ctx); err != nil {
		return err
	}
	defer a.workerPool.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.httpServer.Run(gctx)
	})
	g.Go(func() error {
		return a.housekeeping.Run(gctx)
	})
	return g.Wait()
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.EnableTracing {
		shutdownTelemetry, err := observability.Setup(ctx, observability.Config{
			ServiceName:      cfg.ServiceName,
			ServiceNamespace: cfg.ServiceNamespace,
			Environment:      cfg.Environment,
			OTLPEndpoint:     cfg.OTLPEndpoint,
			OTLPHeaders:      cfg.OTLPHeaders,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("initialize observability")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := shutdownTelemetry(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("shutdown telemetry")
			}
		}()
	}

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.Migrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	conversationRepository := conversationrepo.NewRepository(db)
	messageRepository := conversationrepo.NewMessageRepository(db)
	actionRepository := conversationrepo.NewActionRepository(db)
	identityRepository := identityrepo.NewRepository(db)
	memoryRepository := memoryrepo.NewRepository(db)

	sessions := conversation.NewService(conversationRepository, messageRepository, actionRepository, log)
	compressor := conversation.NewCompressor(cfg.ContextWindowSize, cfg.CompressAfterMessages, cfg.CompressAfterTokens)
	memories := memory.NewService(memoryRepository, log)
	identities := identity.NewResolver(identityRepository, log)

	tierOverrides, err := config.LoadTierOverrides(cfg.ModelTiersFile, log)
	if err != nil {
		log.Fatal().Err(err).Msg("load model tiers")
	}
	catalog, err := llm.NewCatalog(tierOverrides...)
	if err != nil {
		log.Fatal().Err(err).Msg("build model catalog")
	}
	router := llm.NewRouter()
	ledger := llm.NewLedger(catalog)

	registry := tool.NewRegistry()
	if err := registry.Register(memory.RememberFactTool(memories)); err != nil {
		log.Fatal().Err(err).Msg("register built-in tools")
	}
	toolsClient := toolservice.NewClient(cfg.ToolsServiceURL)
	toolLoader := toolservice.NewLoader(toolsClient, registry, log)
	gateway := tool.NewGateway(registry, cfg.ToolTimeout, log)

	llmClient := llmprovider.NewClient(llmprovider.Config{
		BaseURL: cfg.LLMAPIURL,
		APIKey:  cfg.LLMAPIKey,
		Timeout: cfg.LLMTimeout,
	})

	orchestrator := turn.NewOrchestrator(llmClient, gateway, sessions, cfg.MaxToolRounds, log)
	turnService := turn.NewService(
		sessions,
		compressor,
		router,
		catalog,
		ledger,
		registry,
		memories,
		orchestrator,
		cfg.MaxOutputTokens,
		log,
	)

	taskQueue := queue.NewPostgresQueue(db, log)
	notifier := webhook.NewHTTPNotifier(log)
	workerPool := worker.NewPool(
		taskQueue,
		turnService,
		sessions,
		notifier,
		worker.Config{
			WorkerCount:  cfg.WorkerCount,
			TaskTimeout:  cfg.TaskTimeout,
			PollInterval: cfg.WorkerPoll,
		},
		log,
	)

	housekeeping := crontab.NewCrontab(taskQueue, toolLoader, cfg, log)

	handlerProvider := handlers.NewProvider(turnService, sessions, identities, taskQueue, cfg.SlackSigningSecret, log)
	httpServer := httpserver.New(cfg, log, handlerProvider, authValidator)
	app := NewApplication(httpServer, workerPool, housekeeping, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
