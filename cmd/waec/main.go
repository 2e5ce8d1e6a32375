// Command waec builds and queries a corpus of WAEC past questions.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/UceeCode/waec-ai/internal/adapters/driven/ai"
	"github.com/UceeCode/waec-ai/internal/adapters/driven/archive/jsondir"
	"github.com/UceeCode/waec-ai/internal/adapters/driven/config/file"
	"github.com/UceeCode/waec-ai/internal/adapters/driven/storage/memory"
	"github.com/UceeCode/waec-ai/internal/adapters/driven/storage/postgres"
	"github.com/UceeCode/waec-ai/internal/adapters/driven/storage/sqlite"
	"github.com/UceeCode/waec-ai/internal/adapters/driven/vectorindex/artifacts"
	"github.com/UceeCode/waec-ai/internal/adapters/driven/vectorindex/flat"
	"github.com/UceeCode/waec-ai/internal/adapters/driving/cli"
	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
	"github.com/UceeCode/waec-ai/internal/core/services"
	"github.com/UceeCode/waec-ai/internal/extractor"
	"github.com/UceeCode/waec-ai/internal/logger"
	"github.com/UceeCode/waec-ai/internal/normalisers"
	"github.com/UceeCode/waec-ai/internal/segmenter"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	home, err := file.HomeDir()
	if err != nil {
		return err
	}
	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator()).WithEnv(os.Getenv)

	cli.SetVersion(version)
	wired := cli.Services{Settings: settingsService}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	wired.ServerAddr = settings.Server.Addr

	// Settings must stay editable when the store or a provider is broken,
	// so failures below are logged and the dependent commands report them.
	store, err := openStore(ctx, settings.Storage, home)
	if err != nil {
		logger.Warn("document store unavailable: %v", err)
		cli.SetServices(wired)
		return cli.Execute(ctx)
	}
	defer store.Close()

	aiServices, err := ai.NewServices(*settings)
	if err != nil {
		logger.Warn("%v", err)
		aiServices = &ai.Services{}
	}
	defer aiServices.Close()

	indexDir := settings.Index.Dir
	if indexDir == "" {
		indexDir = filepath.Join(home, "index")
	}
	retrievalOpts := []services.RetrievalOption{
		services.WithEmbedBatchSize(settings.Index.BatchSize),
		services.WithEmbedWorkers(settings.Index.Workers),
		services.WithDefaultK(settings.Retrieval.DefaultK),
	}
	if artifactStore, err := artifacts.New(indexDir); err != nil {
		logger.Warn("index artifacts disabled: %v", err)
	} else {
		retrievalOpts = append(retrievalOpts, services.WithArtifactStore(artifactStore))
	}

	// The index is loaded by the commands that query it, not here.
	retrieval := services.NewRetrievalContext(store, aiServices.Embedding, flat.Factory{}, retrievalOpts...)
	wired.OpenIndex = retrieval.Open

	wired.Ingestion = services.NewIngestionService(store, segmenter.New(), extractor.New())
	wired.Retrieval = retrieval
	wired.Index = retrieval
	wired.Corpus = services.NewCorpusService(store, nil)
	wired.Normalisers = normalisers.NewDefaultRegistry()
	wired.ExportTo = func(ctx context.Context, dir string) (int, error) {
		archive, err := jsondir.New(dir)
		if err != nil {
			return 0, err
		}
		return services.NewCorpusService(store, archive).ExportByYear(ctx)
	}

	if aiServices.LLM != nil {
		answer := services.NewAnswerService(retrieval, aiServices.LLM)
		if prompts, err := file.NewPromptStore(filepath.Join(home, "prompts")); err == nil {
			answer.SetPromptStore(prompts)
		}
		wired.Answer = answer
	}

	cli.SetServices(wired)
	return cli.Execute(ctx)
}

func openStore(ctx context.Context, cfg domain.StorageSettings, home string) (driven.DocumentStore, error) {
	switch cfg.Backend {
	case domain.StoragePostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("%w: storage.postgres_dsn is not set", domain.ErrInvalidInput)
		}
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	case domain.StorageMemory:
		return memory.NewDocumentStore(), nil
	default:
		dir := cfg.DataDir
		if dir == "" {
			dir = filepath.Join(home, "data")
		}
		return sqlite.NewStore(dir)
	}
}
