package approveorder

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
		GetManualProvisionData(ctx context.Context, chatID int64) (*flows.ManualProvisionFlowData, error)
		Clear(ctx context.Context, chatID int64)
	}

	orderService interface {
		ApproveOrder(ctx context.Context, orderID int64) (*backend.ApproveResult, error)
		RejectOrder(ctx context.Context, orderID int64) error
		ManualProvisionOrder(ctx context.Context, orderID int64, configLink string) error
	}
)
