package support

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
		SetState(ctx context.Context, chatID int64, state states.State, data any) error
		Clear(ctx context.Context, chatID int64)
	}

	subscriptionService interface {
		ListSubscriptions(ctx context.Context, telegramID int64) ([]backend.Subscription, error)
	}

	adminList interface {
		AdminIDs() []int64
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
