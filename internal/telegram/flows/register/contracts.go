package register

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/backend"
	"sellbot/internal/telegram/flows"
	"sellbot/internal/telegram/states"
)

type (
	botApi interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	}

	stateManager interface {
		SetState(ctx context.Context, chatID int64, state states.State, data any) error
		GetRegisterData(ctx context.Context, chatID int64) (*flows.RegisterFlowData, error)
		Clear(ctx context.Context, chatID int64)
	}

	userService interface {
		GetOrCreateUser(ctx context.Context, telegramID int64, language, inviteCode string) (*backend.User, error)
	}

	authorizer interface {
		Authorize(telegramID int64, lang string)
	}

	adminChecker interface {
		IsAdmin(telegramID int64) bool
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
