package cmds

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/backend"
)

type (
	botApi interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
		Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	}

	userService interface {
		GetOrCreateUser(ctx context.Context, telegramID int64, language, inviteCode string) (*backend.User, error)
		SetUserLanguage(ctx context.Context, telegramID int64, language string) error
		ListSubscriptions(ctx context.Context, telegramID int64) ([]backend.Subscription, error)
		GetWGConfig(ctx context.Context, telegramID, subscriptionID, endpointID int64) ([]byte, error)
	}

	stateManager interface {
		Clear(ctx context.Context, chatID int64)
	}

	languageCache interface {
		Set(telegramID int64, lang string)
	}

	adminChecker interface {
		IsAdmin(telegramID int64) bool
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
