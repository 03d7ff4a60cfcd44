package endpoints

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
		GetAddEndpointData(ctx context.Context, chatID int64) (*flows.AddEndpointFlowData, error)
		Clear(ctx context.Context, chatID int64)
	}

	endpointService interface {
		ListEndpoints(ctx context.Context, includeAll bool) ([]backend.Endpoint, error)
		CreateEndpoint(ctx context.Context, name, address string) (*backend.Endpoint, error)
		UpdateEndpoint(ctx context.Context, endpointID int64, patch backend.EndpointPatch) (*backend.Endpoint, error)
	}
)
