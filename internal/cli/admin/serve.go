package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/finsight-ai/finsight/internal/api/handlers"
	"github.com/finsight-ai/finsight/internal/config"
	"github.com/finsight-ai/finsight/internal/database"
	"github.com/finsight-ai/finsight/internal/extractor"
	"github.com/finsight-ai/finsight/internal/jobs"
	"github.com/finsight-ai/finsight/internal/llm"
	"github.com/finsight-ai/finsight/internal/repository"
	"github.com/finsight-ai/finsight/internal/server"
	"github.com/finsight-ai/finsight/internal/service"
	"github.com/finsight-ai/finsight/internal/storage"
	"github.com/finsight-ai/finsight/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the finsight API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	transcriptRepo := repository.NewTranscriptRepository(pool)
	chunkRepo := repository.NewTranscriptChunkRepository(pool)
	embeddingJobRepo := repository.NewEmbeddingJobRepository(pool)
	queryLogRepo := repository.NewQueryLogRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	llmClient, err := buildLLMClient(cfg)
	if err != nil {
		return err
	}

	rawStore := extractor.NewRawStore(cfg.DataDir)
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		rawStore = rawStore.WithArchiver(s3Client)
	}

	ext := buildExtractor(cfg, rawStore)

	extractionSvc := service.NewExtractionService(ext, txRunner)
	transcriptSvc := service.NewTranscriptService(transcriptRepo, chunkRepo)
	embeddingSvc := service.NewEmbeddingService(llmClient, transcriptRepo, chunkRepo)
	ragSvc := service.NewRAGService(llmClient, llmClient, chunkRepo, queryLogRepo)
	statsSvc := service.NewStatsService(transcriptRepo, chunkRepo, embeddingJobRepo)

	embeddingProcessor := jobs.NewEmbeddingWorker(embeddingJobRepo, embeddingSvc)
	embeddingWorker := jobs.NewWorker(embeddingProcessor, 10*time.Second)
	go embeddingWorker.Start(ctx)
	log.Println("embedding worker started")

	var scheduler *jobs.Scheduler
	var jobsHandler *handlers.JobsHandler
	if cfg.SchedulerEnabled {
		scheduler = jobs.NewScheduler(extractionSvc, pool, llmClient, cfg.DataDir)
		scheduler.Start()
		jobsHandler = handlers.NewJobsHandler(scheduler)
	}

	router := server.NewRouter(server.RouterConfig{
		APIKey:            cfg.APIKey,
		CompanyHandler:    handlers.NewCompanyHandler(),
		ExtractHandler:    handlers.NewExtractHandler(extractionSvc),
		TranscriptHandler: handlers.NewTranscriptHandler(transcriptSvc),
		QueryHandler:      handlers.NewQueryHandler(ragSvc),
		StatsHandler:      handlers.NewStatsHandler(statsSvc),
		JobsHandler:       jobsHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if scheduler != nil {
		scheduler.Stop()
	}
	embeddingWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// LLMClient is the combined chat + embedding surface both providers expose.
type LLMClient interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	Ping(ctx context.Context) error
}

func buildLLMClient(cfg *config.Config) (LLMClient, error) {
	if cfg.HasOpenAI() {
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:              cfg.OpenAIAPIKey,
			BaseURL:             cfg.OpenAIBaseURL,
			EmbeddingDimensions: cfg.EmbeddingDim,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create openai client: %w", err)
		}
		log.Printf("using OpenAI-compatible LLM provider (%d-dim embeddings)", cfg.EmbeddingDim)
		return client, nil
	}

	client, err := llm.NewOllamaClient(llm.OllamaConfig{
		Host:                cfg.OllamaHost,
		ChatModel:           cfg.OllamaModel,
		EmbedModel:          cfg.OllamaEmbedder,
		EmbeddingDimensions: cfg.EmbeddingDim,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	log.Printf("using Ollama at %s (chat=%s embed=%s)", cfg.OllamaHost, cfg.OllamaModel, cfg.OllamaEmbedder)
	return client, nil
}

// buildExtractor chains the sources in preference order: SEC filings, then
// Alpha Vantage when a key is configured, then generated sample data so local
// setups always produce something to query.
func buildExtractor(cfg *config.Config, store *extractor.RawStore) *extractor.Extractor {
	sources := []extractor.Source{
		extractor.NewSECClient(cfg.SECUserAgent),
	}
	if cfg.HasAlphaVantage() {
		sources = append(sources, extractor.NewAlphaVantageClient(cfg.AlphaVantageKey, cfg.SECUserAgent))
	}
	sources = append(sources, extractor.NewSampleSource())

	return extractor.New(sources, store)
}
