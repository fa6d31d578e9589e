package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	"github.com/shopassist/kbchat/internal/chat"
	"github.com/shopassist/kbchat/internal/config"
	"github.com/shopassist/kbchat/internal/guard"
	"github.com/shopassist/kbchat/internal/model"
	"github.com/shopassist/kbchat/internal/retrieval"
	"github.com/shopassist/kbchat/internal/server"
	"github.com/shopassist/kbchat/internal/storage"
	dynamostore "github.com/shopassist/kbchat/internal/storage/dynamodb"
	"github.com/shopassist/kbchat/internal/storage/memory"
	"github.com/shopassist/kbchat/internal/storage/sqlite"
	"github.com/shopassist/kbchat/internal/telemetry"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Initialize OpenTelemetry
	shutdown, err := telemetry.InitTracer("kbchat", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Retrieval.KnowledgeBaseID == "" {
		log.Fatal("KNOWLEDGE_BASE_ID is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	bedrock := bedrockruntime.NewFromConfig(awsCfg)
	agents := bedrockagentruntime.NewFromConfig(awsCfg)

	store, err := openStore(cfg, awsCfg)
	if err != nil {
		log.Fatalf("Failed to open conversation store: %v", err)
	}
	defer store.Close()

	var g *guard.Guard
	if cfg.Guardrail.Enabled() {
		g = guard.New(bedrock, cfg.Guardrail.ID, cfg.Guardrail.Version, logger)
		logger.Info("guardrail enabled", slog.String("guardrail_id", cfg.Guardrail.ID))
	}

	retriever := retrieval.NewKnowledgeBase(agents, cfg.Retrieval.KnowledgeBaseID, int32(cfg.Retrieval.NumResults))
	backend := model.Select(cfg.Model.ID, model.NewInvoker(bedrock))
	orch := chat.New(backend, retriever, store, chat.Options{
		Guard:  g,
		Logger: logger,
	})

	logger.Info("chat service configured",
		slog.String("model_id", cfg.Model.ID),
		slog.String("backend", backend.Name()),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("default_session_id", orch.DefaultSessionID()),
	)

	srv := server.New(cfg.Server.Port, logger)
	server.NewHandler(orch, store, logger).Register(srv.Router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case <-sigChan:
		logger.Info("Shutdown signal received, stopping server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Server shutdown complete")
}

func openStore(cfg *config.Config, awsCfg aws.Config) (storage.ConversationStore, error) {
	switch cfg.Storage.Driver {
	case "dynamodb":
		return dynamostore.New(dynamodb.NewFromConfig(awsCfg), cfg.Storage.Table), nil
	case "memory":
		return memory.New(), nil
	default:
		return sqlite.New(cfg.Storage.Path)
	}
}
