package bootstrap

import (
	"context"
	"fmt"
	"os"

	"rag-chatbot-be/internal/config"
	"rag-chatbot-be/internal/controller"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/internal/repository/contract"
	"rag-chatbot-be/internal/repository/implementation"
	"rag-chatbot-be/internal/repository/memory"
	"rag-chatbot-be/internal/service"
	"rag-chatbot-be/pkg/database"
	"rag-chatbot-be/pkg/docstore"
	"rag-chatbot-be/pkg/embedding"
	"rag-chatbot-be/pkg/events"
	"rag-chatbot-be/pkg/llm/factory"
	pktNats "rag-chatbot-be/pkg/nats"
	"rag-chatbot-be/pkg/rag"
	"rag-chatbot-be/pkg/rag/executor"
	"rag-chatbot-be/pkg/rag/prompt"
	"rag-chatbot-be/pkg/rag/response"
	"rag-chatbot-be/pkg/search"
	"rag-chatbot-be/pkg/search/tavily"
	"rag-chatbot-be/pkg/vectorstore"
	"rag-chatbot-be/pkg/vectorstore/pgvector"
	"rag-chatbot-be/pkg/vectorstore/tinysql"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	ChatbotController  controller.IChatbotController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	closers []func() error
}

// Close releases resources in reverse construction order.
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func NewContainer(ctx context.Context, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	c := &Container{Logger: sysLogger}
	fail := func(err error) (*Container, error) {
		_ = c.Close()
		return nil, err
	}

	if err := os.MkdirAll(cfg.App.DataDir, 0o755); err != nil {
		return fail(fmt.Errorf("create data dir: %w", err))
	}

	// 1. Event Bus
	pubSub := events.NewBus(sysLogger)
	c.closers = append(c.closers, pubSub.Close)
	publisher := events.NewBusPublisher(pubSub, events.DefaultTopic, sysLogger)

	var forwarder service.EventForwarder
	if cfg.Events.NatsEnabled {
		natsPub, err := pktNats.NewPublisher(cfg.Events.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS, events stay local", map[string]interface{}{"error": err.Error()})
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, func() error { natsPub.Close(); return nil })
		}
	}
	auditLogger := logger.NewIsolatedLogger(cfg.App.EventLogFilePath)
	c.ConsumerService = service.NewConsumerService(pubSub, events.DefaultTopic, forwarder, auditLogger, sysLogger)

	// 2. AI providers
	llmBaseURL := cfg.Ai.LLMBaseURL
	if cfg.Ai.LLMProvider == "ollama" && llmBaseURL == "" {
		llmBaseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(factory.Params{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  llmBaseURL,
		APIKey:   cfg.Keys.OpenAI,
	})
	if err != nil {
		return fail(fmt.Errorf("init LLM provider: %w", err))
	}
	sysLogger.Info("Bootstrap", "Using LLM provider", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
		"planner":  cfg.Ai.PlannerModel,
	})

	embeddingBaseURL := cfg.Ai.EmbeddingBaseURL
	if cfg.Ai.EmbeddingProvider == "ollama" && embeddingBaseURL == "" {
		embeddingBaseURL = cfg.Ai.OllamaBaseURL
	}
	embedder, err := embedding.NewProvider(cfg.Ai.EmbeddingProvider, cfg.Keys.OpenAI, embeddingBaseURL, cfg.Ai.EmbeddingModel)
	if err != nil {
		return fail(fmt.Errorf("init embedding provider: %w", err))
	}

	// 3. Storage
	index, err := openIndex(cfg.VectorStore, cfg.App, sysLogger)
	if err != nil {
		return fail(err)
	}
	c.closers = append(c.closers, index.Close)

	meta, err := implementation.NewDocumentMetadataFileRepository(cfg.App.MetadataFile())
	if err != nil {
		return fail(err)
	}
	store, err := docstore.New(index, embedder, meta, docstore.Options{
		DocsDir:      cfg.App.DocsDir(),
		ChunkSize:    cfg.Rag.ChunkSize,
		ChunkOverlap: cfg.Rag.ChunkOverlap,
		MinScore:     cfg.Rag.MinScore,
	}, sysLogger)
	if err != nil {
		return fail(err)
	}

	conversations, err := implementation.NewConversationFileRepository(cfg.App.SessionsDir())
	if err != nil {
		return fail(err)
	}

	locker, err := newSessionLocker(ctx, cfg.Session, c, sysLogger)
	if err != nil {
		return fail(err)
	}

	// 4. Web search
	var searcher search.Provider
	if cfg.Keys.Tavily != "" {
		searcher = search.WithCache(tavily.NewProvider(cfg.Keys.Tavily, cfg.Rag.SearchMaxResults), cfg.Rag.SearchCacheTTL)
	} else {
		sysLogger.Warn("Bootstrap", "TAVILY_API_KEY not set, web search steps will fail", nil)
	}

	// 5. RAG pipeline
	prompts := prompt.Default()
	planner := rag.NewPlanner(llmProvider, prompts, sysLogger)
	exec := executor.NewExecutor(store, searcher, cfg.Rag.TopK, sysLogger)
	generator := response.NewGenerator(llmProvider, prompts, sysLogger)

	// 6. Services
	chatbotService := service.NewChatbotService(service.ChatbotDeps{
		Conversations: conversations,
		Locker:        locker,
		Documents:     store,
		Planner:       planner,
		Executor:      exec,
		Generator:     generator,
		Publisher:     publisher,
		Logger:        sysLogger,
		PlannerModel:  cfg.Ai.PlannerModel,
	})
	documentService := service.NewDocumentService(store, publisher, sysLogger)

	// 7. Controllers
	c.ChatbotController = controller.NewChatbotController(chatbotService)
	c.DocumentController = controller.NewDocumentController(documentService)

	return c, nil
}

func openIndex(cfg config.VectorStoreConfig, app config.AppConfig, log logger.ILogger) (vectorstore.Index, error) {
	switch cfg.Backend {
	case "pgvector":
		db, err := database.NewGormDBFromDSN(cfg.PostgresDSN, !app.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := database.EnableVectorExtension(db); err != nil {
			log.Warn("Bootstrap", "Could not create extension vector", map[string]interface{}{"error": err.Error()})
		}
		return pgvector.New(db, cfg.Dimensions)
	case "tinysql", "":
		if err := os.MkdirAll(app.VectorDBDir(), 0o755); err != nil {
			return nil, fmt.Errorf("create vector dir: %w", err)
		}
		return tinysql.Open(cfg.StorageMode, app.VectorDBDir())
	default:
		return nil, fmt.Errorf("unsupported vector store backend: %s", cfg.Backend)
	}
}

func newSessionLocker(ctx context.Context, cfg config.SessionConfig, c *Container, log logger.ILogger) (contract.SessionLocker, error) {
	if cfg.LockBackend != "redis" {
		return memory.NewSessionLockRepository(cfg.LockTTL), nil
	}

	rdb, err := implementation.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	c.closers = append(c.closers, rdb.Close)
	log.Info("Bootstrap", "Using Redis session locks", nil)
	return implementation.NewRedisSessionLocker(rdb, cfg.LockTTL), nil
}
