package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/backend"
	"sellbot/internal/telegram/states"
)

type (
	botApi interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
		Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	}

	stateManager interface {
		GetState(ctx context.Context, chatID int64) states.State
		SetState(ctx context.Context, chatID int64, state states.State, data any) error
		Clear(ctx context.Context, chatID int64)
	}

	userResolver interface {
		GetOrCreateUser(ctx context.Context, telegramID int64, language, inviteCode string) (*backend.User, error)
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}

	adminChecker interface {
		IsAdmin(telegramID int64) bool
	}
)
