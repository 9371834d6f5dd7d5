package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/archivelab/vault/internal/config"
	"github.com/archivelab/vault/internal/db"
	"github.com/archivelab/vault/internal/queue"
	"github.com/archivelab/vault/internal/util"
	"github.com/archivelab/vault/pkg/ai"
	ollamaai "github.com/archivelab/vault/pkg/ai/ollama"
	openaiai "github.com/archivelab/vault/pkg/ai/openai"
	"github.com/archivelab/vault/pkg/extract"
	"github.com/archivelab/vault/pkg/graph"
	"github.com/archivelab/vault/pkg/logger"
	"github.com/archivelab/vault/pkg/logger/console"
	"github.com/archivelab/vault/pkg/service"
	graphstore "github.com/archivelab/vault/pkg/store/pgx"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", "err", err)
	}

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("Migrations failed", "err", err)
	}

	pgConn, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()

	provider := newProvider(cfg)
	logger.Info("AI provider selected", "provider", provider.Name())

	var extractor *extract.NERExtractor
	if cfg.ModelsDir != "" {
		extractor, err = extract.NewNERExtractor(cfg.ModelsDir)
		if err != nil {
			logger.Fatal("Could not load NER model", "err", err)
		}
		defer extractor.Close()
	}

	svc, err := service.NewService(service.ServiceParams{
		Store:       graphstore.NewGraphDBStore(pgConn),
		Provider:    provider,
		Extractor:   nerExtractor(extractor),
		Concurrency: cfg.Concurrency,
	})
	if err != nil {
		logger.Fatal("Could not build service", "err", err)
	}

	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.IngestQueue}); err != nil {
		logger.Fatal("Failed to declare queues", "err", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	logger.Info("Listening for ingest jobs", "queue", queue.IngestQueue)
	if err := queue.ConsumeIngest(ctx, ch, svc.Pipeline()); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Consumer stopped", "err", err)
	}
	logger.Info("Shutting down")
}

func newProvider(cfg *config.Config) ai.Provider {
	switch cfg.AIProvider {
	case "openai":
		return openaiai.NewProvider(openaiai.NewProviderParams{
			AnalysisModel: cfg.AIModel,
			BaseURL:       cfg.AIBaseURL,
			APIKey:        cfg.AIKey,
		})
	case "grok":
		return openaiai.NewGrokProvider(cfg.AIKey, cfg.AIModel)
	case "ollama":
		provider, err := ollamaai.NewProvider(ollamaai.NewProviderParams{
			AnalysisModel: cfg.AIModel,
			BaseURL:       cfg.AIBaseURL,
			APIKey:        cfg.AIKey,
		})
		if err != nil {
			logger.Fatal("Could not create Ollama provider", "err", err)
		}
		return provider
	default:
		return ai.NewNoop()
	}
}

// nerExtractor keeps a typed nil out of the pipeline's interface field.
func nerExtractor(e *extract.NERExtractor) graph.Extractor {
	if e == nil {
		return nil
	}
	return e
}
