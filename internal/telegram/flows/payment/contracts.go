package payment

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
		GetPaymentData(ctx context.Context, chatID int64) (*flows.PaymentFlowData, error)
		Clear(ctx context.Context, chatID int64)
	}

	orderService interface {
		GetPlan(ctx context.Context, planID int64) (*backend.Plan, error)
		CreateOrder(ctx context.Context, order backend.CreateOrderRequest) (*backend.OrderReceipt, error)
		GetSettings(ctx context.Context) (*backend.Settings, error)
	}

	adminList interface {
		AdminIDs() []int64
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
