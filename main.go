package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"classroom/config"
	"classroom/controllers"
	"classroom/routes"
	"classroom/services"
)

func main() {
	cfg := config.Load()

	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()
	slog.SetDefault(logger)

	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	history, err := newConversationStore(ctx, cfg)
	if err != nil {
		cancel()
		logger.Error("failed to create conversation store", "backend", cfg.HistoryBackend, "error", err)
		os.Exit(1)
	}
	questions, err := newQuestionStore(ctx, cfg)
	cancel()
	if err != nil {
		logger.Error("failed to create question store", "backend", cfg.QuestionBackend, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := questions.Close(context.Background()); err != nil {
			logger.Error("failed to close question store", "error", err)
		}
	}()

	completer, err := newCompleter(cfg)
	if err != nil {
		logger.Error("failed to create completion client", "provider", cfg.CompletionProvider, "error", err)
		os.Exit(1)
	}

	chat, err := services.NewChatService(history, completer, logger)
	if err != nil {
		logger.Error("failed to create chat service", "error", err)
		os.Exit(1)
	}

	router := routes.SetupRouter(
		controllers.NewChatController(chat, logger),
		controllers.NewQuestionController(questions, logger),
		logger,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port,
			"history", cfg.HistoryBackend, "questions", cfg.QuestionBackend, "completion", cfg.CompletionProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
}

func newConversationStore(ctx context.Context, cfg config.Config) (services.ConversationStore, error) {
	switch cfg.HistoryBackend {
	case config.HistoryMemory:
		return services.NewMemoryStore(), nil
	case config.HistoryDynamoDB:
		client, err := services.NewDynamoDBClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
		if err != nil {
			return nil, err
		}
		return services.NewDynamoStore(client, cfg.DynamoDBTable)
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", cfg.HistoryBackend)
	}
}

func newQuestionStore(ctx context.Context, cfg config.Config) (services.QuestionStore, error) {
	switch cfg.QuestionBackend {
	case config.QuestionsMongo:
		return services.NewMongoStore(ctx, cfg.MongoURI, cfg.DBName)
	case config.QuestionsPostgres:
		return services.NewPostgresStore(ctx, cfg.PostgresURI)
	default:
		return nil, fmt.Errorf("unsupported question backend: %s", cfg.QuestionBackend)
	}
}

func newCompleter(cfg config.Config) (services.Completer, error) {
	switch cfg.CompletionProvider {
	case config.CompletionOpenAI:
		return services.NewOpenAIService(cfg.CompletionAPIKey, cfg.CompletionBaseURL, cfg.CompletionModel, cfg.CompletionTemperature)
	case config.CompletionCompatible:
		return services.NewCompatibleService(cfg.CompletionBaseURL, cfg.CompletionAPIKey, cfg.CompletionModel, cfg.CompletionTemperature)
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", cfg.CompletionProvider)
	}
}
