package addplan

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/backend"
	"sellbot/internal/telegram/flows"
	"sellbot/internal/telegram/states"
)

type fakeBot struct {
	sent []tgbotapi.Chattable
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type fakeStates struct {
	state   states.State
	data    *flows.AddPlanFlowData
	cleared bool
}

func (f *fakeStates) SetState(_ context.Context, _ int64, state states.State, data any) error {
	f.state = state
	if d, ok := data.(*flows.AddPlanFlowData); ok {
		f.data = d
	}
	return nil
}

func (f *fakeStates) GetAddPlanData(_ context.Context, _ int64) (*flows.AddPlanFlowData, error) {
	if f.data == nil {
		return nil, errors.New("no data")
	}
	return f.data, nil
}

func (f *fakeStates) Clear(_ context.Context, _ int64) {
	f.cleared = true
	f.state = states.StateNone
}

type fakePlans struct {
	createErr error
	created   []backend.NewPlan
}

func (f *fakePlans) CreatePlan(_ context.Context, plan backend.NewPlan) (*backend.Plan, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, plan)
	return &backend.Plan{
		ID:           5,
		ServerType:   plan.ServerType,
		DurationDays: plan.DurationDays,
		DataLimitGB:  plan.DataLimitGB,
		PriceIRR:     plan.PriceIRR,
		PriceUSDT:    plan.PriceUSDT,
		IsActive:     plan.IsActive,
	}, nil
}

func newTestHandler(plans *fakePlans, st *fakeStates) (*Handler, *fakeBot) {
	bot := &fakeBot{}
	return NewHandler(bot, st, plans, slog.New(slog.NewTextHandler(io.Discard, nil))), bot
}

func textUpdate(text string) *tgbotapi.Update {
	return &tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 100},
		Text: text,
	}}
}

func TestDialogCollectsFieldsAndDerivesUSDT(t *testing.T) {
	plans := &fakePlans{}
	st := &fakeStates{data: &flows.AddPlanFlowData{ServerType: backend.ProtocolV2Ray}, state: states.AddPlanWaitDuration}
	h, _ := newTestHandler(plans, st)
	ctx := context.Background()

	if err := h.Handle(ctx, textUpdate("30"), states.AddPlanWaitDuration); err != nil {
		t.Fatalf("duration step: %v", err)
	}
	if st.state != states.AddPlanWaitDataLimit || st.data.DurationDays != 30 {
		t.Fatalf("after duration: state=%q data=%+v", st.state, st.data)
	}

	if err := h.Handle(ctx, textUpdate("50"), states.AddPlanWaitDataLimit); err != nil {
		t.Fatalf("data limit step: %v", err)
	}
	if st.state != states.AddPlanWaitPrice || st.data.DataLimitGB != 50 {
		t.Fatalf("after data limit: state=%q data=%+v", st.state, st.data)
	}

	if err := h.Handle(ctx, textUpdate("150000"), states.AddPlanWaitPrice); err != nil {
		t.Fatalf("price step: %v", err)
	}

	if len(plans.created) != 1 {
		t.Fatalf("created %d plans, want 1", len(plans.created))
	}
	plan := plans.created[0]
	if plan.PriceIRR != 150000 {
		t.Fatalf("price IRR = %v, want 150000", plan.PriceIRR)
	}
	if plan.PriceUSDT != 0.25 {
		t.Fatalf("derived USDT = %v, want 0.25", plan.PriceUSDT)
	}
	if !plan.IsActive {
		t.Fatal("new plans must start active")
	}
	if !st.cleared {
		t.Fatal("session not cleared after submission")
	}
}

func TestInvalidDurationRepromptsWithoutAdvance(t *testing.T) {
	st := &fakeStates{data: &flows.AddPlanFlowData{ServerType: backend.ProtocolV2Ray}, state: states.AddPlanWaitDuration}
	h, bot := newTestHandler(&fakePlans{}, st)

	for _, input := range []string{"abc", "-5", "0", "3.5"} {
		if err := h.Handle(context.Background(), textUpdate(input), states.AddPlanWaitDuration); err != nil {
			t.Fatalf("Handle(%q): %v", input, err)
		}
		if st.state != states.AddPlanWaitDuration {
			t.Fatalf("input %q advanced the dialog to %q", input, st.state)
		}
	}
	if len(bot.sent) != 4 {
		t.Fatalf("sent %d re-prompts, want 4", len(bot.sent))
	}
}

func TestCreateFailureClearsSessionAndReportsError(t *testing.T) {
	plans := &fakePlans{createErr: errors.New("backend down")}
	st := &fakeStates{
		data:  &flows.AddPlanFlowData{ServerType: backend.ProtocolWireGuard, DurationDays: 30, DataLimitGB: 50},
		state: states.AddPlanWaitPrice,
	}
	h, bot := newTestHandler(plans, st)

	if err := h.Handle(context.Background(), textUpdate("150000"), states.AddPlanWaitPrice); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if !st.cleared {
		t.Fatal("session must be cleared on a failed submission")
	}
	msg := bot.sent[len(bot.sent)-1].(tgbotapi.MessageConfig)
	if !strings.Contains(msg.Text, "backend down") {
		t.Fatalf("failure report %q must carry the backend error", msg.Text)
	}
}
