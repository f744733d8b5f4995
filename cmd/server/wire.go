//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"homehub/assistant-api/internal/config"
	"homehub/assistant-api/internal/domain/conversation"
	"homehub/assistant-api/internal/domain/identity"
	"homehub/assistant-api/internal/domain/job"
	"homehub/assistant-api/internal/domain/llm"
	"homehub/assistant-api/internal/domain/memory"
	"homehub/assistant-api/internal/domain/tool"
	"homehub/assistant-api/internal/domain/turn"
	"homehub/assistant-api/internal/infrastructure/auth"
	"homehub/assistant-api/internal/infrastructure/crontab"
	"homehub/assistant-api/internal/infrastructure/database"
	"homehub/assistant-api/internal/infrastructure/llmprovider"
	"homehub/assistant-api/internal/infrastructure/logger"
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

var turnSet = wire.NewSet(
	conversationrepo.NewRepository,
	wire.Bind(new(conversation.Repository), new(*conversationrepo.Repository)),
	conversationrepo.NewMessageRepository,
	wire.Bind(new(conversation.MessageRepository), new(*conversationrepo.MessageRepository)),
	conversationrepo.NewActionRepository,
	wire.Bind(new(conversation.ActionRepository), new(*conversationrepo.ActionRepository)),
	identityrepo.NewRepository,
	wire.Bind(new(identity.Repository), new(*identityrepo.Repository)),
	memoryrepo.NewRepository,
	wire.Bind(new(memory.Repository), new(*memoryrepo.Repository)),
	conversation.NewService,
	newCompressor,
	memory.NewService,
	wire.Bind(new(turn.FactSource), new(*memory.Service)),
	identity.NewResolver,
	newCatalog,
	llm.NewRouter,
	llm.NewLedger,
	newToolRegistry,
	newToolsClient,
	toolservice.NewLoader,
	newGateway,
	wire.Bind(new(turn.Invoker), new(*tool.Gateway)),
	wire.Bind(new(turn.ActionRecorder), new(conversation.Service)),
	newLLMProvider,
	wire.Bind(new(llm.Provider), new(*llmprovider.Client)),
	newOrchestrator,
	newTurnService,
	queue.NewPostgresQueue,
	wire.Bind(new(job.Queue), new(*queue.PostgresQueue)),
	webhook.NewHTTPNotifier,
	wire.Bind(new(webhook.Notifier), new(*webhook.HTTPNotifier)),
	newWorkerPool,
	crontab.NewCrontab,
	newHandlerProvider,
)

// BuildApplication assembles the service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		newAuthValidator,
		turnSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

func newCompressor(cfg *config.Config) *conversation.Compressor {
	return conversation.NewCompressor(cfg.ContextWindowSize, cfg.CompressAfterMessages, cfg.CompressAfterTokens)
}

func newCatalog(cfg *config.Config, log zerolog.Logger) (*llm.Catalog, error) {
	overrides, err := config.LoadTierOverrides(cfg.ModelTiersFile, log)
	if err != nil {
		return nil, err
	}
	return llm.NewCatalog(overrides...)
}

func newToolRegistry(memories *memory.Service) (tool.Registry, error) {
	registry := tool.NewRegistry()
	if err := registry.Register(memory.RememberFactTool(memories)); err != nil {
		return nil, err
	}
	return registry, nil
}

func newToolsClient(cfg *config.Config) *toolservice.Client {
	return toolservice.NewClient(cfg.ToolsServiceURL)
}

func newGateway(cfg *config.Config, registry tool.Registry, log zerolog.Logger) *tool.Gateway {
	return tool.NewGateway(registry, cfg.ToolTimeout, log)
}

func newLLMProvider(cfg *config.Config) *llmprovider.Client {
	return llmprovider.NewClient(llmprovider.Config{
		BaseURL: cfg.LLMAPIURL,
		APIKey:  cfg.LLMAPIKey,
		Timeout: cfg.LLMTimeout,
	})
}

func newOrchestrator(cfg *config.Config, provider llm.Provider, invoker turn.Invoker, actions turn.ActionRecorder, log zerolog.Logger) *turn.Orchestrator {
	return turn.NewOrchestrator(provider, invoker, actions, cfg.MaxToolRounds, log)
}

func newTurnService(
	cfg *config.Config,
	sessions conversation.Service,
	compressor *conversation.Compressor,
	router *llm.Router,
	catalog *llm.Catalog,
	ledger *llm.Ledger,
	registry tool.Registry,
	facts turn.FactSource,
	orchestrator *turn.Orchestrator,
	log zerolog.Logger,
) turn.Service {
	return turn.NewService(sessions, compressor, router, catalog, ledger, registry, facts, orchestrator, cfg.MaxOutputTokens, log)
}

func newWorkerPool(
	cfg *config.Config,
	taskQueue job.Queue,
	turns turn.Service,
	sessions conversation.Service,
	notifier webhook.Notifier,
	log zerolog.Logger,
) *worker.Pool {
	return worker.NewPool(taskQueue, turns, sessions, notifier, worker.Config{
		WorkerCount:  cfg.WorkerCount,
		TaskTimeout:  cfg.TaskTimeout,
		PollInterval: cfg.WorkerPoll,
	}, log)
}

func newHandlerProvider(
	cfg *config.Config,
	turns turn.Service,
	sessions conversation.Service,
	identities *identity.Resolver,
	taskQueue job.Queue,
	log zerolog.Logger,
) *handlers.Provider {
	return handlers.NewProvider(turns, sessions, identities, taskQueue, cfg.SlackSigningSecret, log)
}
