package addplan

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
		GetAddPlanData(ctx context.Context, chatID int64) (*flows.AddPlanFlowData, error)
		Clear(ctx context.Context, chatID int64)
	}

	planService interface {
		CreatePlan(ctx context.Context, plan backend.NewPlan) (*backend.Plan, error)
	}
)
