package states

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/go-faster/errors"

	"sellbot/internal/telegram/flows"
)

// Manager keeps per-user conversation state in the session storage so an
// in-flight dialog survives a bot restart.
type Manager struct {
	storage SessionStorage
	logger  *slog.Logger
}

func NewManager(storage SessionStorage, logger *slog.Logger) *Manager {
	return &Manager{storage: storage, logger: logger}
}

// GetState returns the user's current state. Storage errors degrade to
// StateNone so a broken session never wedges the conversation.
func (m *Manager) GetState(ctx context.Context, chatID int64) State {
	session, err := m.storage.GetSession(ctx, chatID)
	if err != nil {
		m.logger.Error("get session", "chat_id", chatID, "error", err)
		return StateNone
	}
	if session == nil {
		return StateNone
	}
	return session.Step
}

// SetState stores the state and, when data is non-nil, the flow data.
func (m *Manager) SetState(ctx context.Context, chatID int64, state State, data any) error {
	session := Session{ChatID: chatID, Step: state}

	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return errors.Wrap(err, "marshal flow data")
		}
		session.FormData = raw
	} else {
		prev, err := m.storage.GetSession(ctx, chatID)
		if err != nil {
			return errors.Wrap(err, "get session")
		}
		if prev != nil {
			session.FormData = prev.FormData
		}
	}

	if err := m.storage.UpsertSession(ctx, session); err != nil {
		return errors.Wrap(err, "upsert session")
	}
	return nil
}

// Clear removes the user's session slot.
func (m *Manager) Clear(ctx context.Context, chatID int64) {
	if err := m.storage.DeleteSession(ctx, chatID); err != nil {
		m.logger.Error("delete session", "chat_id", chatID, "error", err)
	}
}

func dataAs[T any](m *Manager, ctx context.Context, chatID int64) (*T, error) {
	session, err := m.storage.GetSession(ctx, chatID)
	if err != nil {
		return nil, errors.Wrap(err, "get session")
	}
	if session == nil || len(session.FormData) == 0 {
		return nil, errors.Errorf("no data for chat %d", chatID)
	}

	var data T
	if err := json.Unmarshal(session.FormData, &data); err != nil {
		return nil, errors.Wrapf(err, "decode flow data for chat %d", chatID)
	}
	return &data, nil
}

func (m *Manager) GetRegisterData(ctx context.Context, chatID int64) (*flows.RegisterFlowData, error) {
	return dataAs[flows.RegisterFlowData](m, ctx, chatID)
}

func (m *Manager) GetBuyData(ctx context.Context, chatID int64) (*flows.BuyFlowData, error) {
	return dataAs[flows.BuyFlowData](m, ctx, chatID)
}

func (m *Manager) GetPaymentData(ctx context.Context, chatID int64) (*flows.PaymentFlowData, error) {
	return dataAs[flows.PaymentFlowData](m, ctx, chatID)
}

func (m *Manager) GetManualProvisionData(ctx context.Context, chatID int64) (*flows.ManualProvisionFlowData, error) {
	return dataAs[flows.ManualProvisionFlowData](m, ctx, chatID)
}

func (m *Manager) GetAddPlanData(ctx context.Context, chatID int64) (*flows.AddPlanFlowData, error) {
	return dataAs[flows.AddPlanFlowData](m, ctx, chatID)
}

func (m *Manager) GetEditPlanData(ctx context.Context, chatID int64) (*flows.EditPlanFlowData, error) {
	return dataAs[flows.EditPlanFlowData](m, ctx, chatID)
}

func (m *Manager) GetAddEndpointData(ctx context.Context, chatID int64) (*flows.AddEndpointFlowData, error) {
	return dataAs[flows.AddEndpointFlowData](m, ctx, chatID)
}
