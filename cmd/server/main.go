package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"policyrelay/internal/auth"
	"policyrelay/internal/capabilities"
	"policyrelay/internal/chatapi"
	"policyrelay/internal/config"
	"policyrelay/internal/domain/ports"
	"policyrelay/internal/llm"
	"policyrelay/internal/middleware"
	"policyrelay/internal/orchestrator"
	"policyrelay/internal/orchestrator/agents"
	"policyrelay/internal/orchestrator/agents/websearch"
	"policyrelay/internal/repository/postgres"
	"policyrelay/internal/retriever"
	"policyrelay/internal/transport/external"
	"policyrelay/internal/transport/memory"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"queue_backend", cfg.QueueBackend,
		"store_backend", cfg.StoreBackend,
	)

	ctx := context.Background()

	threadStates, responses, progress, history, queue, locks, cleanup := wireTransport(ctx, cfg, logger)
	defer cleanup()

	llmAdapter, err := llm.NewFromConfig(cfg.LLMProvider, os.Getenv("ANTHROPIC_API_KEY"))
	if err != nil {
		log.Fatalf("failed to construct llm provider: %v", err)
	}

	var ragRetriever ports.Retriever
	if cfg.RetrievalEndpoint != "" {
		ragRetriever = retriever.NewHTTPClient(cfg.RetrievalEndpoint, cfg.SearchAPIKey)
	} else {
		ragRetriever = retriever.NewStub()
	}

	var webSearcher ports.WebSearcher
	if cfg.SearchAPIKey != "" {
		webSearcher = websearch.NewTavilyClient(cfg.SearchAPIKey)
	}

	capsRegistry, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("failed to load capability registry: %v", err)
	}

	ragAgent := &agents.RAG{
		Retriever: ragRetriever,
		LLM:       llmAdapter,
		WebSearch: webSearcher,
		Model:     cfg.LLMModel,
	}
	agentRegistry := agents.NewRegistry(ragAgent)

	orch := orchestrator.New(
		logger,
		threadStates,
		responses,
		progress,
		llmAdapter,
		cfg.LLMModel,
		capsRegistry,
		agentRegistry,
		cfg.TurnTimeout,
		locks,
		history,
	)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	const consumerCount = 4
	for i := 0; i < consumerCount; i++ {
		go runWorker(workerCtx, logger, queue, orch)
	}

	var verifier auth.Verifier
	if cfg.SupabaseJWKSURL != "" {
		verifier, err = auth.NewJWKSVerifier(cfg.SupabaseJWKSURL, logger)
		if err != nil {
			log.Fatalf("failed to construct JWKS verifier: %v", err)
		}
	} else {
		verifier = auth.NewUnverifiedVerifier(logger)
	}
	defer verifier.Close()

	h := chatapi.New(logger, queue, responses, progress, history, cfg.StreamIdleTimeout, cfg.Debug)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     strings.Join([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	chat := app.Group("/chat", middleware.BearerAuth(verifier))
	chat.Post("/", h.Submit)
	chat.Get("/response/:id", h.Poll)
	chat.Get("/stream/:id", h.Stream)
	chat.Get("/history/recent", h.RecentHistory)
	chat.Get("/history/most-helpful-searches", h.MostHelpfulSearches)
	chat.Get("/history/most-helpful-documents", h.MostHelpfulDocuments)

	logger.Info("server ready", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// runWorker repeatedly calls queue.Consume, each call claiming and fully
// processing one Request through orch.HandleRequest before the next claim.
// Several of these run concurrently so turns on different threads proceed
// in parallel; the per-thread lock inside HandleRequest keeps same-thread
// turns serialized regardless of consumer count.
func runWorker(ctx context.Context, logger *slog.Logger, queue ports.RequestQueue, orch *orchestrator.Orchestrator) {
	for ctx.Err() == nil {
		if err := queue.Consume(ctx, orch.HandleRequest); err != nil && ctx.Err() == nil {
			logger.Error("consume loop error", "error", err)
		}
	}
}

// wireTransport selects Implementation A (in-process) or Implementation B
// (Redis + Postgres) for every Transport & Store port, based on
// cfg.QueueBackend / cfg.StoreBackend. The returned cleanup func releases
// any external connections.
func wireTransport(ctx context.Context, cfg *config.Config, logger *slog.Logger) (
	ports.ThreadStateStore,
	ports.ResponseStore,
	ports.ProgressLog,
	ports.TurnHistory,
	ports.RequestQueue,
	orchestrator.ThreadLocker,
	func(),
) {
	cleanup := func() {}

	useExternal := cfg.QueueBackend != "memory" || cfg.StoreBackend != "memory"
	if !useExternal {
		threadStates := memory.NewThreadStateStore()
		responseStore := memory.NewResponseStore(cfg.ResponseTTL)
		progressLog := memory.NewProgressLog()
		turnHistory := memory.NewHistory()
		queue := memory.NewQueue(256)
		locks := orchestrator.NewThreadLocks()

		sweepCtx, stopSweep := context.WithCancel(ctx)
		go responseStore.RunSweeper(sweepCtx, cfg.ResponseTTL/2)
		cleanup = stopSweep

		return threadStates, responseStore, progressLog, turnHistory, queue, locks, cleanup
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to create postgres pool: %v", err)
	}

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := external.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})

	threadStates := external.NewThreadStateStore(pool, tables.ThreadStates)
	responseStore := external.NewResponseStore(redisClient, cfg.ResponseTTL)
	progressLog := external.NewProgressLog(pool, tables.ProgressEvents, 100*time.Millisecond)
	turnHistory := external.NewHistory(pool, tables.Turns)
	queue := external.NewQueue(redisClient, "policyrelay:requests")
	locks := orchestrator.NewRedisThreadLocks(redisClient, cfg.TurnTimeout)

	cleanup = func() {
		pool.Close()
		_ = redisClient.Close()
	}

	return threadStates, responseStore, progressLog, turnHistory, queue, locks, cleanup
}
