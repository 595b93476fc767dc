package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/legalease-app/backend/internal/config"
	"github.com/legalease-app/backend/internal/core/ports"
	"github.com/legalease-app/backend/internal/core/usecase"
	jwtauth "github.com/legalease-app/backend/internal/infrastructure/auth"
	"github.com/legalease-app/backend/internal/infrastructure/clauses"
	"github.com/legalease-app/backend/internal/infrastructure/extractor/document"
	"github.com/legalease-app/backend/internal/infrastructure/llm/openai"
	natsqueue "github.com/legalease-app/backend/internal/infrastructure/queue/nats"
	"github.com/legalease-app/backend/internal/infrastructure/repository/postgres"
	"github.com/legalease-app/backend/internal/infrastructure/resilience"
	"github.com/legalease-app/backend/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue  ports.MessageQueue
	Tokens ports.TokenManager

	AuthUC     *usecase.AuthUseCase
	UploadUC   *usecase.UploadUseCase
	ContractUC *usecase.ContractUseCase
	ProcessUC  *usecase.ProcessUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	contractRepo := postgres.NewContractRepository(db)
	if err := contractRepo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	userRepo := postgres.NewUserRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig(), logger)

	queue, err := natsqueue.New(cfg.NATSURL, cfg.NATSSubject, cfg.NATSGroup, natsqueue.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	tokens, err := jwtauth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init token manager: %w", err)
	}

	fallback := clauses.NewFallbackAnalyzer()
	var analyzer ports.RiskAnalyzer = fallback
	var summarizer ports.ClauseSummarizer
	if cfg.OpenAIAPIKey != "" {
		llmAnalyzer, err := openai.New(openai.Config{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.LLMTemperature,
		}, executor)
		if err != nil {
			queue.Close()
			_ = db.Close()
			return nil, fmt.Errorf("init llm analyzer: %w", err)
		}
		analyzer = llmAnalyzer
		summarizer = llmAnalyzer
	} else {
		logger.Warn("no OpenAI API key configured, risk analysis degrades to heuristics")
	}

	extractor := document.NewExtractor(storage)
	clauseExtractor := clauses.NewExtractor()

	authUC := usecase.NewAuthUseCase(userRepo, tokens)
	uploadUC := usecase.NewUploadUseCase(contractRepo, storage, queue, cfg.MaxUploadBytes)
	contractUC := usecase.NewContractUseCase(contractRepo, storage, logger)
	processUC := usecase.NewProcessUseCase(
		contractRepo,
		extractor,
		clauseExtractor,
		analyzer,
		fallback,
		summarizer,
		logger,
	)

	return &App{
		Config: cfg,
		Logger: logger,
		Queue:  queue,
		Tokens: tokens,

		AuthUC:     authUC,
		UploadUC:   uploadUC,
		ContractUC: contractUC,
		ProcessUC:  processUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
