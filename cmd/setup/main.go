// Command setup provisions the backing stores selected by the environment:
// the DynamoDB conversations table and the Postgres document tables.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"classroom/config"
	"classroom/services"
)

const attempts = 3

func main() {
	cfg := config.Load()
	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()

	ctx := context.Background()

	if cfg.HistoryBackend == config.HistoryDynamoDB {
		err := retry(logger, "dynamodb", func() error {
			client, err := services.NewDynamoDBClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
			if err != nil {
				return err
			}
			store, err := services.NewDynamoStore(client, cfg.DynamoDBTable)
			if err != nil {
				return err
			}
			return store.EnsureTable(ctx)
		})
		if err != nil {
			logger.Error("failed to provision dynamodb", "table", cfg.DynamoDBTable, "error", err)
			os.Exit(1)
		}
		logger.Info("dynamodb table ready", "table", cfg.DynamoDBTable)
	}

	if cfg.QuestionBackend == config.QuestionsPostgres {
		err := retry(logger, "postgres", func() error {
			store, err := services.NewPostgresStore(ctx, cfg.PostgresURI)
			if err != nil {
				return err
			}
			defer store.Close(ctx)
			return store.EnsureSchema(ctx)
		})
		if err != nil {
			logger.Error("failed to provision postgres", "error", err)
			os.Exit(1)
		}
		logger.Info("postgres schema ready")
	}
}

// retry gives freshly started containers a few seconds to accept connections.
func retry(logger *slog.Logger, name string, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		logger.Warn("setup attempt failed", "store", name, "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}
	return err
}
