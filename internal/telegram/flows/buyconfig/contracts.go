package buyconfig

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
		Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	}

	stateManager interface {
		SetState(ctx context.Context, chatID int64, state states.State, data any) error
		GetBuyData(ctx context.Context, chatID int64) (*flows.BuyFlowData, error)
		Clear(ctx context.Context, chatID int64)
	}

	planService interface {
		ListPlans(ctx context.Context, protocol string, includeAll bool) ([]backend.Plan, error)
		GetPlan(ctx context.Context, planID int64) (*backend.Plan, error)
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
