package environment

import (
	"context"
	"log/slog"

	"sellbot/internal/backend"
	"sellbot/internal/config"
	"sellbot/internal/infra/sqlite3"
	"sellbot/internal/infra/telegram"

	"github.com/pkg/errors"
)

type Clients struct {
	SQLiteDB    *sqlite3.DB
	TelegramBot *telegram.Client
	Backend     *backend.Client
}

func newClients(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Clients, error) {
	sqliteDB, err := provideSQLiteDB(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite")
	}

	telegramBot, err := telegram.NewClient(cfg.Telegram.BotToken, logger.With("client", "telegram"))
	if err != nil {
		return nil, errors.Wrap(err, "telegram")
	}

	backendClient := backend.NewClient(
		cfg.Backend.BaseURL,
		cfg.Telegram.BotToken,
		cfg.Backend.Timeout,
		cfg.Backend.ApproveTimeout,
		logger.With("client", "backend"),
	)

	return &Clients{
		SQLiteDB:    sqliteDB,
		TelegramBot: telegramBot,
		Backend:     backendClient,
	}, nil
}

func provideSQLiteDB(ctx context.Context, cfg config.Config) (*sqlite3.DB, error) {
	opts := []sqlite3.Option{
		sqlite3.WithDSN(cfg.DB.Path),
		sqlite3.WithMaxOpenConns(cfg.DB.MaxOpenConns),
		sqlite3.WithMaxIdleConns(cfg.DB.MaxIdleConns),
		sqlite3.WithConnMaxLifetime(cfg.DB.MaxLifetime),
	}

	return sqlite3.New(ctx, opts...)
}
