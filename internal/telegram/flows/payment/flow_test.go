package payment

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
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  map[int64]error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if photo, ok := c.(tgbotapi.PhotoConfig); ok && f.sendErr != nil {
		if err, found := f.sendErr[photo.ChatID]; found {
			return tgbotapi.Message{}, err
		}
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type fakeStates struct {
	state   states.State
	buyData *flows.BuyFlowData
	payData *flows.PaymentFlowData
	cleared bool
}

func (f *fakeStates) SetState(_ context.Context, _ int64, state states.State, data any) error {
	f.state = state
	if pd, ok := data.(*flows.PaymentFlowData); ok {
		f.payData = pd
	}
	return nil
}

func (f *fakeStates) GetBuyData(_ context.Context, _ int64) (*flows.BuyFlowData, error) {
	if f.buyData == nil {
		return nil, errors.New("no data")
	}
	return f.buyData, nil
}

func (f *fakeStates) GetPaymentData(_ context.Context, _ int64) (*flows.PaymentFlowData, error) {
	if f.payData == nil {
		return nil, errors.New("no data")
	}
	return f.payData, nil
}

func (f *fakeStates) Clear(_ context.Context, _ int64) {
	f.cleared = true
	f.state = states.StateNone
}

type fakeOrders struct {
	plan        *backend.Plan
	receipt     *backend.OrderReceipt
	settings    *backend.Settings
	settingsErr error
	createErr   error
	created     []backend.CreateOrderRequest
}

func (f *fakeOrders) GetPlan(_ context.Context, _ int64) (*backend.Plan, error) {
	if f.plan == nil {
		return nil, errors.New("no plan")
	}
	return f.plan, nil
}

func (f *fakeOrders) CreateOrder(_ context.Context, order backend.CreateOrderRequest) (*backend.OrderReceipt, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, order)
	return f.receipt, nil
}

func (f *fakeOrders) GetSettings(_ context.Context) (*backend.Settings, error) {
	if f.settingsErr != nil {
		return nil, f.settingsErr
	}
	return f.settings, nil
}

type fakeAdmins struct{ ids []int64 }

func (f fakeAdmins) AdminIDs() []int64 { return f.ids }

type fakeLoc struct{}

func (fakeLoc) Get(_, key string, params map[string]interface{}) string {
	if card, ok := params["card"]; ok {
		return key + ":" + card.(string)
	}
	return key
}

func newTestHandler(orders *fakeOrders, st *fakeStates, admins []int64) (*Handler, *fakeBot) {
	bot := &fakeBot{}
	h := NewHandler(bot, st, orders, fakeAdmins{ids: admins}, fakeLoc{},
		"1234-5678-9012-3456", slog.New(slog.NewTextHandler(io.Discard, nil)))
	return h, bot
}

func callback(data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb1",
		Data:    data,
		From:    &tgbotapi.User{ID: 42},
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: 42}},
	}
}

func photoUpdate() *tgbotapi.Update {
	return &tgbotapi.Update{
		Message: &tgbotapi.Message{
			From:  &tgbotapi.User{ID: 42},
			Chat:  &tgbotapi.Chat{ID: 42},
			Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}},
		},
	}
}

func TestCardMethodUsesFallbackCardOnSettingsFailure(t *testing.T) {
	orders := &fakeOrders{
		plan:        &backend.Plan{ID: 1, PriceIRR: 150000},
		settingsErr: errors.New("backend down"),
	}
	st := &fakeStates{}
	h, bot := newTestHandler(orders, st, nil)

	if err := h.HandleCardMethod(context.Background(), callback("pay_card_1_0"), 1, 0, "en"); err != nil {
		t.Fatalf("HandleCardMethod: %v", err)
	}

	if st.state != states.PayWaitScreenshot {
		t.Fatalf("state = %q, want %q", st.state, states.PayWaitScreenshot)
	}
	edit := bot.sent[0].(tgbotapi.EditMessageTextConfig)
	if !strings.Contains(edit.Text, "1234-5678-9012-3456") {
		t.Fatalf("instructions missing fallback card: %q", edit.Text)
	}
}

func TestScreenshotCreatesOrderAndForwardsToAdmins(t *testing.T) {
	orders := &fakeOrders{
		plan:    &backend.Plan{ID: 1, PriceIRR: 150000},
		receipt: &backend.OrderReceipt{ID: 9},
	}
	st := &fakeStates{
		state:   states.PayWaitScreenshot,
		payData: &flows.PaymentFlowData{PlanID: 1, ConfigName: "abc_123", Language: "en"},
	}
	h, bot := newTestHandler(orders, st, []int64{100, 200})

	if err := h.Handle(context.Background(), photoUpdate(), states.PayWaitScreenshot, "en"); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(orders.created) != 1 {
		t.Fatalf("created %d orders, want 1", len(orders.created))
	}
	order := orders.created[0]
	if order.PaymentMethod != backend.PaymentMethodCard || order.Amount != 150000 {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.ConfigName != "abc_123" {
		t.Fatalf("config name not carried into order: %+v", order)
	}
	if !st.cleared {
		t.Fatal("session not cleared after order creation")
	}

	var photos []tgbotapi.PhotoConfig
	for _, c := range bot.sent {
		if p, ok := c.(tgbotapi.PhotoConfig); ok {
			photos = append(photos, p)
		}
	}
	if len(photos) != 2 {
		t.Fatalf("forwarded %d photos, want one per admin", len(photos))
	}
	if got := photos[0].File.(tgbotapi.FileID); got != "large" {
		t.Fatalf("forwarded file %q, want highest resolution", got)
	}
	if !strings.Contains(photos[0].Caption, "User ID: 42") {
		t.Fatalf("caption missing user id marker: %q", photos[0].Caption)
	}
}

func TestScreenshotOrderFailureClearsSession(t *testing.T) {
	orders := &fakeOrders{
		plan:      &backend.Plan{ID: 1, PriceIRR: 150000},
		createErr: errors.New("backend down"),
	}
	st := &fakeStates{
		state:   states.PayWaitScreenshot,
		payData: &flows.PaymentFlowData{PlanID: 1, Language: "en"},
	}
	h, bot := newTestHandler(orders, st, []int64{100})

	if err := h.Handle(context.Background(), photoUpdate(), states.PayWaitScreenshot, "en"); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if !st.cleared {
		t.Fatal("session must be cleared when order creation fails")
	}
	msg := bot.sent[0].(tgbotapi.MessageConfig)
	if msg.Text != "payment.order_failed" {
		t.Fatalf("user got %q, want failure message", msg.Text)
	}
}

func TestAdminDeliveryFailureDoesNotBlockUser(t *testing.T) {
	orders := &fakeOrders{
		plan:    &backend.Plan{ID: 1, PriceIRR: 150000},
		receipt: &backend.OrderReceipt{ID: 9},
	}
	st := &fakeStates{
		state:   states.PayWaitScreenshot,
		payData: &flows.PaymentFlowData{PlanID: 1, Language: "en"},
	}
	h, bot := newTestHandler(orders, st, []int64{100, 200})
	bot.sendErr = map[int64]error{100: errors.New("blocked")}

	if err := h.Handle(context.Background(), photoUpdate(), states.PayWaitScreenshot, "en"); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	var gotConfirmation bool
	for _, c := range bot.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok && msg.Text == "payment.receipt_received" {
			gotConfirmation = true
		}
	}
	if !gotConfirmation {
		t.Fatal("user confirmation missing after partial admin delivery failure")
	}
	if !st.cleared {
		t.Fatal("session not cleared")
	}
}

func TestCryptoFallbackPayLink(t *testing.T) {
	orders := &fakeOrders{
		plan:    &backend.Plan{ID: 1, PriceUSDT: 2.5},
		receipt: &backend.OrderReceipt{ID: 77},
	}
	st := &fakeStates{}
	h, bot := newTestHandler(orders, st, nil)

	if err := h.HandleCryptoMethod(context.Background(), callback("pay_crypto_1_0"), 1, 0, "en"); err != nil {
		t.Fatalf("HandleCryptoMethod: %v", err)
	}

	if len(orders.created) != 1 || orders.created[0].PaymentMethod != backend.PaymentMethodCrypto {
		t.Fatalf("unexpected orders: %+v", orders.created)
	}
	if orders.created[0].Amount != 2.5 {
		t.Fatalf("crypto amount = %v, want plan USDT price", orders.created[0].Amount)
	}

	edit := bot.sent[0].(tgbotapi.EditMessageTextConfig)
	url := *edit.ReplyMarkup.InlineKeyboard[0][0].URL
	if url != "https://oxapay.com/pay/77test" {
		t.Fatalf("pay link = %q, want fallback test link", url)
	}
}
