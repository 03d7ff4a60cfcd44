package addplan

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/backend"
	"sellbot/internal/telegram/actions"
	"sellbot/internal/telegram/flows"
	"sellbot/internal/telegram/states"
)

// Handler runs the admin dialog for creating a plan: protocol, duration, data
// limit, price. The USDT price is derived from the IRR price at submit time.
type Handler struct {
	bot          botApi
	stateManager stateManager
	plans        planService
	logger       *slog.Logger
}

func NewHandler(bot botApi, sm stateManager, plans planService, logger *slog.Logger) *Handler {
	return &Handler{
		bot:          bot,
		stateManager: sm,
		plans:        plans,
		logger:       logger,
	}
}

// Start shows the protocol choice.
func (h *Handler) Start(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	chatID := cb.Message.Chat.ID
	h.stateManager.Clear(ctx, chatID)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("V2Ray", actions.AddPlanProto{Protocol: backend.ProtocolV2Ray}.Data()),
			tgbotapi.NewInlineKeyboardButtonData("WireGuard", actions.AddPlanProto{Protocol: backend.ProtocolWireGuard}.Data()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("« Back", actions.AdminPanel{}.Data()),
		),
	)

	h.answer(cb.ID)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID, "New plan. Choose the protocol:", keyboard)
	_, err := h.bot.Send(edit)
	return err
}

// HandleProtocol stores the protocol and asks for the duration.
func (h *Handler) HandleProtocol(ctx context.Context, cb *tgbotapi.CallbackQuery, protocol string) error {
	chatID := cb.Message.Chat.ID

	data := &flows.AddPlanFlowData{ServerType: protocol}
	if err := h.stateManager.SetState(ctx, chatID, states.AddPlanWaitDuration, data); err != nil {
		h.logger.Error("set add plan state", "chat_id", chatID, "error", err)
		h.alert(cb.ID, "Could not start the dialog. Try again.")
		return nil
	}

	h.answer(cb.ID)
	edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, "Duration in days (integer):")
	_, err := h.bot.Send(edit)
	return err
}

// Handle processes the admin's text input for the current step. Invalid input
// re-prompts in place without losing collected fields.
func (h *Handler) Handle(ctx context.Context, update *tgbotapi.Update, state states.State) error {
	if update.Message == nil {
		return nil
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	data, err := h.stateManager.GetAddPlanData(ctx, chatID)
	if err != nil {
		h.logger.Error("get add plan data", "chat_id", chatID, "error", err)
		h.stateManager.Clear(ctx, chatID)
		return h.sendText(chatID, "Plan dialog lost. Start again from the admin panel.")
	}

	switch state {
	case states.AddPlanWaitDuration:
		return h.handleDuration(ctx, chatID, text, data)
	case states.AddPlanWaitDataLimit:
		return h.handleDataLimit(ctx, chatID, text, data)
	case states.AddPlanWaitPrice:
		return h.handlePrice(ctx, chatID, text, data)
	default:
		return fmt.Errorf("unknown add plan state: %s", state)
	}
}

func (h *Handler) handleDuration(ctx context.Context, chatID int64, text string, data *flows.AddPlanFlowData) error {
	days, err := strconv.Atoi(text)
	if err != nil || days <= 0 {
		return h.sendText(chatID, "Duration must be a positive integer number of days. Try again:")
	}

	data.DurationDays = days
	if err := h.stateManager.SetState(ctx, chatID, states.AddPlanWaitDataLimit, data); err != nil {
		return err
	}
	return h.sendText(chatID, "Data limit in GB (integer, 0 for unlimited):")
}

func (h *Handler) handleDataLimit(ctx context.Context, chatID int64, text string, data *flows.AddPlanFlowData) error {
	gb, err := strconv.Atoi(text)
	if err != nil || gb < 0 {
		return h.sendText(chatID, "Data limit must be a non-negative integer number of GB. Try again:")
	}

	data.DataLimitGB = float64(gb)
	if err := h.stateManager.SetState(ctx, chatID, states.AddPlanWaitPrice, data); err != nil {
		return err
	}
	return h.sendText(chatID, "Price in IRR:")
}

func (h *Handler) handlePrice(ctx context.Context, chatID int64, text string, data *flows.AddPlanFlowData) error {
	price, err := strconv.ParseFloat(text, 64)
	if err != nil || price <= 0 {
		return h.sendText(chatID, "Price must be a positive number in IRR. Try again:")
	}
	data.PriceIRR = price

	// the dialog is over once the admin submits a complete form, no matter
	// how the backend call ends
	h.stateManager.Clear(ctx, chatID)

	plan, err := h.plans.CreatePlan(ctx, backend.NewPlan{
		ServerType:   data.ServerType,
		DurationDays: data.DurationDays,
		DataLimitGB:  data.DataLimitGB,
		PriceIRR:     data.PriceIRR,
		PriceUSDT:    flows.EstimateUSDT(data.PriceIRR),
		IsActive:     true,
	})
	if err != nil {
		h.logger.Error("create plan", "error", err)
		return h.sendText(chatID, fmt.Sprintf("Plan creation failed: %v", err))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("« Admin Panel", actions.AdminPanel{}.Data()),
		),
	)
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"Plan %d created: %s, %d days, %s, %s IRR (%.2f USDT).",
		plan.ID, plan.ServerType, plan.DurationDays,
		formatGB(plan.DataLimitGB), flows.FormatIRR(int64(plan.PriceIRR)), plan.PriceUSDT,
	))
	msg.ReplyMarkup = keyboard
	_, serr := h.bot.Send(msg)
	return serr
}

func formatGB(gb float64) string {
	if gb == 0 {
		return "unlimited"
	}
	return strconv.FormatFloat(gb, 'f', -1, 64) + " GB"
}

func (h *Handler) sendText(chatID int64, text string) error {
	_, err := h.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (h *Handler) answer(callbackID string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		h.logger.Warn("answer callback", "error", err)
	}
}

func (h *Handler) alert(callbackID, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallbackWithAlert(callbackID, text)); err != nil {
		h.logger.Warn("alert callback", "error", err)
	}
}
