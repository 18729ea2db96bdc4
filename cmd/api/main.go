package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/domain"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/providers/imagegen"
	"server/internal/providers/textgen"
	"server/internal/storage"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Conversation storage: PostgreSQL when configured, in-memory otherwise.
	var conversations domain.ConversationRepository
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		conversations = repo.NewConversationRepository(pool)
		logger.Info().Msg("using postgres conversation store")
	} else {
		conversations = repo.NewConversationRepositoryMem()
		logger.Info().Msg("no DATABASE_URL set, using in-memory conversation store")
	}

	files, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize file store")
	}

	textClient := textgen.NewClient(textgen.Options{
		APIKey:   cfg.ArkAPIKey,
		Endpoint: cfg.TextEndpoint,
		Model:    cfg.TextModel,
		Logger:   &logger,
	})
	if !textClient.HasCredentials() {
		logger.Warn().Msg("text generation not configured, serving mock assets only")
	}
	textPipeline := textgen.NewPipeline(textClient, &logger)

	imageClient := imagegen.NewClient(imagegen.Options{
		APIKey:       cfg.ArkAPIKey,
		Endpoint:     cfg.ImageEndpoint,
		TextEndpoint: cfg.TextEndpoint,
		Model:        cfg.ImageModel,
		DefaultSize:  cfg.ImageSize,
		Logger:       &logger,
	})
	localComposer := imagegen.NewLocalComposer(http.DefaultClient, &logger)
	imagePipeline := imagegen.NewPipeline(imageClient, localComposer, &logger)

	app := handlers.NewApp(&logger, conversations, textPipeline, imagePipeline, files)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
