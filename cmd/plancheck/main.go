// Command plancheck answers rulebook questions and evaluates business plans.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/plancheck/internal/adapters/driven/ai"
	"github.com/custodia-labs/plancheck/internal/adapters/driven/config/file"
	"github.com/custodia-labs/plancheck/internal/adapters/driven/directory/sheets"
	"github.com/custodia-labs/plancheck/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/plancheck/internal/adapters/driving/cli"
	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
	"github.com/custodia-labs/plancheck/internal/core/services"
	"github.com/custodia-labs/plancheck/internal/logger"
	"github.com/custodia-labs/plancheck/internal/normalisers"
	"github.com/custodia-labs/plancheck/internal/normalisers/docx"
	"github.com/custodia-labs/plancheck/internal/normalisers/html"
	"github.com/custodia-labs/plancheck/internal/normalisers/pdf"
	"github.com/custodia-labs/plancheck/internal/normalisers/plaintext"
	"github.com/custodia-labs/plancheck/internal/parsers/rulebook"
	"github.com/custodia-labs/plancheck/internal/postprocessors/chunker"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Missing env files are fine.
	_ = godotenv.Load(".env.local", ".env") //nolint:errcheck // optional files

	cli.SetVersion(version)

	configDir, err := file.DefaultDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	if settings.Logging.File != "" {
		if err := logger.ConfigureFile(logger.FileConfig{
			Path:       settings.Logging.File,
			MaxSizeMB:  settings.Logging.MaxSizeMB,
			MaxBackups: settings.Logging.MaxBackups,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: log file disabled: %v\n", err)
		}
	}
	defer logger.Close() //nolint:errcheck // best effort flush

	svcs := cli.Services{Settings: settingsService}
	closers, err := wire(ctx, configDir, settings, &svcs)
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()
	if err != nil {
		logger.Warn("setup incomplete: %v", err)
		cli.SetSetupError(err)
	}
	cli.SetServices(svcs)

	return cli.Execute(ctx)
}

// wire builds the services the settings allow. Services that cannot be built
// stay nil and the returned error explains why.
func wire(ctx context.Context, configDir string, settings *domain.AppSettings, svcs *cli.Services) ([]func(), error) {
	var closers []func()

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return closers, fmt.Errorf("prompt templates: %w", err)
	}
	cli.SetPromptWatcher(file.NewPromptWatcher(prompts))

	dir, closeDir, err := openDirectory(ctx, configDir, settings)
	if err != nil {
		return closers, err
	}
	closers = append(closers, closeDir)

	directory := services.NewDirectoryService(dir.directory)
	svcs.Registration = directory
	svcs.Score = directory

	result, err := ai.Initialise(settings)
	if err != nil {
		return closers, err
	}
	closers = append(closers, result.Close)

	registry := normalisers.NewRegistry(plaintext.New(), docx.New(), pdf.New(), html.New())
	chunks := chunker.New(
		chunker.WithChunkSize(settings.Ingest.ChunkSize),
		chunker.WithOverlap(settings.Ingest.ChunkOverlap),
	)

	indexer := services.NewIndexer(result.VectorStore, result.EmbeddingService, services.IndexerConfig{
		BatchSize: settings.Ingest.BatchSize,
		Workers:   settings.Ingest.Workers,
	})
	retriever := services.NewRetriever(result.VectorStore, result.EmbeddingService, services.RetrievalConfig{
		GuidelineCollection: settings.Retrieval.GuidelineCollection,
		GuidelineTopK:       settings.Retrieval.GuidelineTopK,
		UserTopK:            settings.Retrieval.UserTopK,
		ScrollPageSize:      settings.Retrieval.ScrollPageSize,
	})

	svcs.Chat = services.NewChatService(retriever, services.NewAssembler(prompts), result.LLMService, directory)

	upload := services.NewUploadService(registry, chunks, result.VectorStore, result.EmbeddingService, indexer)
	if dir.uploads != nil {
		upload.SetUploadStore(dir.uploads)
	}
	svcs.Upload = upload

	svcs.Guideline = services.NewGuidelineService(
		registry, rulebook.New(), result.VectorStore, result.EmbeddingService, indexer,
		settings.Retrieval.GuidelineCollection,
	)

	return closers, nil
}

type directoryBackend struct {
	directory driven.IdentityDirectory
	uploads   driven.UploadStore
}

// openDirectory opens the identity directory. The local SQLite store also
// keeps upload history and is opened for that purpose even when the
// directory lives in Google Sheets.
func openDirectory(ctx context.Context, configDir string, settings *domain.AppSettings) (directoryBackend, func(), error) {
	noop := func() {}

	store, err := sqlite.NewStore(filepath.Join(configDir, "data"))
	if err != nil {
		return directoryBackend{}, noop, fmt.Errorf("open local store: %w", err)
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Warn("close local store: %v", err)
		}
	}

	backend := directoryBackend{directory: store.Directory(), uploads: store.UploadStore()}
	if settings.Directory.Provider != domain.DirectorySheets {
		return backend, closeStore, nil
	}

	sheet, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID:       settings.Directory.SpreadsheetID,
		ServiceAccountEmail: settings.Directory.ServiceAccountEmail,
		PrivateKey:          settings.Directory.PrivateKey,
	})
	if err != nil {
		closeStore()
		return directoryBackend{}, noop, fmt.Errorf("open directory: %w", err)
	}
	backend.directory = sheet
	return backend, closeStore, nil
}
