package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giulianni/lawfirm-ai-back/internal/ai"
	"github.com/giulianni/lawfirm-ai-back/internal/audit"
	"github.com/giulianni/lawfirm-ai-back/internal/cache"
	"github.com/giulianni/lawfirm-ai-back/internal/config"
	"github.com/giulianni/lawfirm-ai-back/internal/dispatcher"
	"github.com/giulianni/lawfirm-ai-back/internal/fetcher"
	httpserver "github.com/giulianni/lawfirm-ai-back/internal/http"
	"github.com/giulianni/lawfirm-ai-back/internal/http/handlers"
	"github.com/giulianni/lawfirm-ai-back/internal/pipeline"
	"github.com/giulianni/lawfirm-ai-back/internal/queue"
	"github.com/giulianni/lawfirm-ai-back/internal/repository"
	"github.com/giulianni/lawfirm-ai-back/internal/stage"
	"github.com/giulianni/lawfirm-ai-back/internal/status"
	"github.com/giulianni/lawfirm-ai-back/internal/storage"
	"github.com/giulianni/lawfirm-ai-back/internal/worker"
)

type repositories struct {
	tasks     repository.TasksRepository
	documents repository.DocumentsRepository
	templates repository.TemplatesRepository
	audits    repository.AuditRepository
	persisted bool
}

func main() {
	logger := log.New(os.Stdout, "[lawfirm-ai] ", log.LstdFlags|log.LUTC|log.Lmicroseconds)
	if err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		logger.Printf("failed loading .env files: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, repoCloser := setupRepositories(ctx, cfg, logger)
	defer repoCloser()

	producer, consumer, queueCloser := setupQueue(ctx, cfg, logger)
	defer queueCloser()

	store := status.NewStore(repos.tasks, logger)
	auditor := audit.NewService(repos.audits, logger)

	templates := repository.TemplatesRepository(cache.NewTemplateCache(repos.templates, cache.Config{
		TTL: time.Duration(cfg.TemplateCacheTTLSeconds) * time.Second,
	}))

	storageClient := storage.NewClient(storage.ClientConfig{
		BaseURL:    cfg.StorageBaseURL,
		ServiceKey: cfg.StorageServiceKey,
		Timeout:    time.Duration(cfg.StorageTimeoutMS) * time.Millisecond,
	})
	var objectStore storage.ObjectStore
	if storageClient.Available() {
		objectStore = storageClient
		logger.Printf("object storage client initialized")
	} else {
		logger.Printf("STORAGE_BASE_URL/STORAGE_SERVICE_KEY not configured, document storage disabled")
	}

	contentFetcher := fetcher.New(fetcher.Config{
		Store:        objectStore,
		SignedURLTTL: time.Duration(cfg.StorageSignedURLTTL) * time.Second,
		Logger:       logger,
	})

	// The execution mode is decided once, here: every stage in every
	// pipeline run uses the same executor for the process lifetime.
	var executor stage.Executor
	if cfg.OpenAIAPIKey != "" {
		aiClient := ai.NewClient(ai.ClientConfig{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Timeout:    time.Duration(cfg.OpenAITimeoutMS) * time.Millisecond,
			MaxRetries: cfg.OpenAIMaxRetries,
		})
		modelRouter := ai.NewModelRouter(ai.ModelRouterConfig{
			ExtractionPrimary:  cfg.OpenAIModelExtraction,
			ExtractionFallback: cfg.OpenAIModelExtractionAlt,
			FollowupPrimary:    cfg.OpenAIModelFollowup,
			FollowupFallback:   cfg.OpenAIModelFollowupAlt,
			DraftingPrimary:    cfg.OpenAIModelDrafting,
			DraftingFallback:   cfg.OpenAIModelDraftingAlt,
		})
		executor = stage.NewLiveExecutor(aiClient, modelRouter, logger)
		logger.Printf("live stage executor initialized")
	} else {
		executor = stage.NewMockExecutor()
		logger.Printf("OPENAI_API_KEY not configured, using mock stage executor")
	}

	parsing := pipeline.NewParsingPipeline(store, executor, contentFetcher, logger)
	drafting := pipeline.NewDraftingPipeline(pipeline.DraftingDependencies{
		Store:     store,
		Executor:  executor,
		Templates: templates,
		Documents: documentsOrNil(repos),
		Objects:   objectStore,
		Bucket:    cfg.StorageDraftBucket,
		Auditor:   auditor,
		Logger:    logger,
	})

	taskDispatcher := dispatcher.New(store, producer, auditor, logger)
	api := handlers.NewAPI(taskDispatcher, store, auditor, logger)

	handler := httpserver.NewRouter(httpserver.RouterDependencies{
		API:            api,
		Logger:         logger,
		AuthToken:      cfg.AuthToken,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	if cfg.WorkerEnabled {
		processor := worker.NewProcessor(consumer, store, parsing, drafting, logger)
		go processor.Start(ctx)
		logger.Printf("worker enabled and started")
	} else {
		logger.Printf("worker disabled by configuration")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Printf("api listening on :%s", cfg.Port)
		errChan <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	}
}

func setupRepositories(
	ctx context.Context,
	cfg config.Config,
	logger *log.Logger,
) (repositories, func()) {
	if cfg.DatabaseURL == "" {
		logger.Printf("DATABASE_URL not configured, using in-memory repositories")
		return memoryRepositories(), func() {}
	}

	pg, err := repository.NewPostgresRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Printf("failed to initialize postgres repositories, fallback to memory: %v", err)
		return memoryRepositories(), func() {}
	}
	logger.Printf("postgres repositories initialized")
	return repositories{
		tasks:     pg,
		documents: pg,
		templates: pg,
		audits:    pg,
		persisted: true,
	}, pg.Close
}

func memoryRepositories() repositories {
	return repositories{
		tasks:     repository.NewMemoryTasksRepository(),
		documents: repository.NewMemoryDocumentsRepository(),
		templates: repository.NewMemoryTemplatesRepository(),
		audits:    repository.NewMemoryAuditRepository(),
	}
}

// documentsOrNil keeps the drafting pre-flight honest: without a durable
// database the pipeline must refuse drafts rather than record generated
// documents into process memory.
func documentsOrNil(repos repositories) repository.DocumentsRepository {
	if !repos.persisted {
		return nil
	}
	return repos.documents
}

func setupQueue(
	ctx context.Context,
	cfg config.Config,
	logger *log.Logger,
) (queue.Producer, queue.Consumer, func()) {
	if cfg.RedisAddr == "" {
		logger.Printf("REDIS_ADDR not configured, using local queue fallback")
		local := queue.NewLocalQueue(512)
		return local, local, func() {}
	}

	streams, err := queue.NewStreamsQueue(ctx, queue.StreamsConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Stream:   cfg.RedisStream,
		Group:    cfg.RedisGroup,
		Consumer: cfg.RedisConsumer,
	})
	if err != nil {
		logger.Printf("failed to initialize redis streams queue, fallback to local: %v", err)
		local := queue.NewLocalQueue(512)
		return local, local, func() {}
	}
	logger.Printf("redis streams queue initialized")
	return streams, streams, func() {
		_ = streams.Close()
	}
}
