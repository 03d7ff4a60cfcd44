package approveorder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/backend"
	"sellbot/internal/telegram/actions"
	"sellbot/internal/telegram/flows"
	"sellbot/internal/telegram/states"
)

// Handler runs the admin side of order review: approve, reject, and the
// manual-provision fallback when automatic provisioning fails. All admin
// surfaces are English-only.
type Handler struct {
	bot          botApi
	stateManager stateManager
	orders       orderService
	logger       *slog.Logger
}

func NewHandler(bot botApi, sm stateManager, orders orderService, logger *slog.Logger) *Handler {
	return &Handler{
		bot:          bot,
		stateManager: sm,
		orders:       orders,
		logger:       logger,
	}
}

// HandleApprove approves the order on the backend, which also provisions the
// subscription. The admin message is annotated with the outcome; a pure
// connectivity failure leaves it untouched so the button can be pressed again.
func (h *Handler) HandleApprove(ctx context.Context, cb *tgbotapi.CallbackQuery, orderID int64) error {
	result, err := h.orders.ApproveOrder(ctx, orderID)
	if err == nil {
		h.logger.Info("order approved", "order_id", orderID, "telegram_id", result.TelegramID)
		h.answer(cb.ID, "Order approved")
		return h.annotate(cb.Message, "✅ APPROVED", nil)
	}

	apiErr, ok := backend.AsAPIError(err)
	if !ok {
		h.logger.Error("approve order", "order_id", orderID, "error", err)
		h.alert(cb.ID, fmt.Sprintf("Approve failed: %v. Try again.", err))
		return nil
	}

	if apiErr.Kind == backend.ErrKindProvisioningFailed {
		h.logger.Warn("order approved but provisioning failed", "order_id", orderID, "error", apiErr)
		h.alert(cb.ID, "Payment accepted, provisioning failed. Provide a config manually or reject.")
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📝 Send Config Manually", actions.ManualConfig{OrderID: orderID}.Data()),
				tgbotapi.NewInlineKeyboardButtonData("❌ Reject", actions.RejectOrder{OrderID: orderID}.Data()),
			),
		)
		note := "⚠️ Approved, but provisioning failed"
		if apiErr.Message != "" {
			note += ": " + apiErr.Message
		}
		return h.annotate(cb.Message, note, &keyboard)
	}

	h.logger.Error("approve order rejected by backend", "order_id", orderID, "error", apiErr)
	h.answer(cb.ID, "")
	return h.annotate(cb.Message, "⚠️ Approve failed: "+apiErr.Error(), nil)
}

// HandleReject marks the order rejected. Failures only toast so the admin can
// retry from the unchanged message.
func (h *Handler) HandleReject(ctx context.Context, cb *tgbotapi.CallbackQuery, orderID int64) error {
	if err := h.orders.RejectOrder(ctx, orderID); err != nil {
		h.logger.Error("reject order", "order_id", orderID, "error", err)
		h.alert(cb.ID, fmt.Sprintf("Reject failed: %v. Try again.", err))
		return nil
	}

	h.answer(cb.ID, "Order rejected")
	return h.annotate(cb.Message, "❌ REJECTED", nil)
}

// HandleManualConfig puts the admin chat into the manual-provision dialog for
// the given order.
func (h *Handler) HandleManualConfig(ctx context.Context, cb *tgbotapi.CallbackQuery, orderID int64) error {
	chatID := cb.Message.Chat.ID

	data := &flows.ManualProvisionFlowData{OrderID: orderID}
	if err := h.stateManager.SetState(ctx, chatID, states.ManualProvisionWaitConfig, data); err != nil {
		h.logger.Error("set manual provision state", "chat_id", chatID, "error", err)
		h.alert(cb.ID, "Could not start manual provisioning. Try again.")
		return nil
	}

	h.answer(cb.ID, "")
	return h.sendText(chatID, fmt.Sprintf("Send the config link for order %d as a plain message.", orderID))
}

// Handle processes the admin's next message while a config link is awaited.
func (h *Handler) Handle(ctx context.Context, update *tgbotapi.Update, state states.State) error {
	if state != states.ManualProvisionWaitConfig {
		return fmt.Errorf("unknown approve state: %s", state)
	}
	if update.Message == nil {
		return nil
	}

	chatID := update.Message.Chat.ID
	configLink := strings.TrimSpace(update.Message.Text)
	if configLink == "" {
		return h.sendText(chatID, "A non-empty config link is required.")
	}

	data, err := h.stateManager.GetManualProvisionData(ctx, chatID)
	if err != nil {
		h.logger.Error("get manual provision data", "chat_id", chatID, "error", err)
		h.stateManager.Clear(ctx, chatID)
		return h.sendText(chatID, "Manual provisioning session lost. Start again from the order message.")
	}

	// the dialog ends here whatever the backend says; a failure report
	// carries the raw error and the admin restarts from the order message
	h.stateManager.Clear(ctx, chatID)

	if err := h.orders.ManualProvisionOrder(ctx, data.OrderID, configLink); err != nil {
		h.logger.Error("manual provision order", "order_id", data.OrderID, "error", err)
		return h.sendText(chatID, fmt.Sprintf("Manual provisioning of order %d failed: %v", data.OrderID, err))
	}

	return h.sendText(chatID, fmt.Sprintf("Order %d provisioned, config delivered to the user.", data.OrderID))
}

// annotate appends a status line to the receipt caption and swaps the action
// buttons. A nil keyboard removes them.
func (h *Handler) annotate(message *tgbotapi.Message, note string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	caption := message.Caption + "\n\n" + note
	edit := tgbotapi.NewEditMessageCaption(message.Chat.ID, message.MessageID, caption)
	edit.ReplyMarkup = keyboard
	_, err := h.bot.Send(edit)
	return err
}

func (h *Handler) sendText(chatID int64, text string) error {
	_, err := h.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (h *Handler) answer(callbackID, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		h.logger.Warn("answer callback", "error", err)
	}
}

func (h *Handler) alert(callbackID, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallbackWithAlert(callbackID, text)); err != nil {
		h.logger.Warn("alert callback", "error", err)
	}
}
