package payment

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/backend"
	"sellbot/internal/telegram/actions"
	"sellbot/internal/telegram/flows"
	"sellbot/internal/telegram/states"
)

// Handler runs the user side of payment: the card-receipt sub-flow and the
// crypto pay-link path.
type Handler struct {
	bot             botApi
	stateManager    stateManager
	orders          orderService
	admins          adminList
	loc             localizer
	fallbackCardNum string
	logger          *slog.Logger
}

func NewHandler(
	bot botApi,
	sm stateManager,
	orders orderService,
	admins adminList,
	loc localizer,
	fallbackCardNum string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		bot:             bot,
		stateManager:    sm,
		orders:          orders,
		admins:          admins,
		loc:             loc,
		fallbackCardNum: fallbackCardNum,
		logger:          logger,
	}
}

// HandleCardMethod shows the receiving card number and starts waiting for a
// receipt screenshot.
func (h *Handler) HandleCardMethod(ctx context.Context, cb *tgbotapi.CallbackQuery, planID, endpointID int64, lang string) error {
	chatID := cb.Message.Chat.ID

	cardNumber := h.fallbackCardNum
	if settings, err := h.orders.GetSettings(ctx); err == nil && settings.AdminCardNumber != "" {
		cardNumber = settings.AdminCardNumber
	} else if err != nil {
		h.logger.Warn("get settings, using fallback card", "error", err)
	}

	plan, err := h.orders.GetPlan(ctx, planID)
	if err != nil {
		h.logger.Error("get plan for card payment", "plan_id", planID, "error", err)
		h.alert(cb.ID, h.loc.Get(lang, "common.error", nil))
		return nil
	}

	data := &flows.PaymentFlowData{
		PlanID:     planID,
		EndpointID: endpointID,
		Language:   lang,
	}
	// carry the config name chosen during the catalog flow, if any
	if buyData, berr := h.stateManager.GetBuyData(ctx, chatID); berr == nil {
		data.ConfigName = buyData.ConfigName
	}

	if err := h.stateManager.SetState(ctx, chatID, states.PayWaitScreenshot, data); err != nil {
		h.logger.Error("set screenshot state", "chat_id", chatID, "error", err)
		h.alert(cb.ID, h.loc.Get(lang, "common.error", nil))
		return nil
	}

	h.answer(cb.ID, "")

	text := h.loc.Get(lang, "payment.card_instructions", map[string]interface{}{
		"card":  cardNumber,
		"toman": flows.FormatToman(int64(plan.PriceIRR)),
	})
	edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, text)
	_, err = h.bot.Send(edit)
	return err
}

// HandleCryptoMethod creates a crypto order and hands out the pay link. No
// local state is held afterwards; confirmation arrives out-of-band.
func (h *Handler) HandleCryptoMethod(ctx context.Context, cb *tgbotapi.CallbackQuery, planID, endpointID int64, lang string) error {
	chatID := cb.Message.Chat.ID
	telegramID := cb.From.ID

	plan, err := h.orders.GetPlan(ctx, planID)
	if err != nil {
		h.logger.Error("get plan for crypto payment", "plan_id", planID, "error", err)
		h.alert(cb.ID, h.loc.Get(lang, "common.error", nil))
		return nil
	}

	var configName string
	if buyData, berr := h.stateManager.GetBuyData(ctx, chatID); berr == nil {
		configName = buyData.ConfigName
	}

	receipt, err := h.orders.CreateOrder(ctx, backend.CreateOrderRequest{
		TelegramID:    telegramID,
		PlanID:        planID,
		EndpointID:    endpointID,
		ConfigName:    configName,
		PaymentMethod: backend.PaymentMethodCrypto,
		Amount:        plan.PriceUSDT,
	})
	if err != nil {
		h.logger.Error("create crypto order", "telegram_id", telegramID, "plan_id", planID, "error", err)
		h.stateManager.Clear(ctx, chatID)
		h.answer(cb.ID, "")
		edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, h.loc.Get(lang, "payment.gateway_error", nil))
		_, serr := h.bot.Send(edit)
		return serr
	}

	h.stateManager.Clear(ctx, chatID)

	payLink := receipt.PayLink
	if payLink == "" {
		// clearly-labeled fallback test link
		payLink = fmt.Sprintf("https://oxapay.com/pay/%dtest", receipt.ID)
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(h.loc.Get(lang, "payment.pay_now_button", nil), payLink),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.loc.Get(lang, "common.back_button", nil), actions.BuyMenu{}.Data()),
		),
	)

	h.answer(cb.ID, "")
	text := h.loc.Get(lang, "payment.crypto_created", map[string]interface{}{
		"order_id": receipt.ID,
		"usdt":     plan.PriceUSDT,
	})
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID, text, keyboard)
	_, err = h.bot.Send(edit)
	return err
}

// Handle processes updates while awaiting a receipt screenshot.
func (h *Handler) Handle(ctx context.Context, update *tgbotapi.Update, state states.State, lang string) error {
	if state != states.PayWaitScreenshot {
		return fmt.Errorf("unknown payment state: %s", state)
	}
	if update.Message == nil {
		return nil
	}

	chatID := update.Message.Chat.ID
	if len(update.Message.Photo) == 0 {
		// keep waiting, a screenshot is required
		return h.sendText(chatID, h.loc.Get(lang, "payment.need_screenshot", nil))
	}

	return h.handleScreenshot(ctx, update.Message, lang)
}

func (h *Handler) handleScreenshot(ctx context.Context, message *tgbotapi.Message, lang string) error {
	chatID := message.Chat.ID
	telegramID := message.From.ID

	data, err := h.stateManager.GetPaymentData(ctx, chatID)
	if err != nil {
		h.logger.Error("get payment data", "chat_id", chatID, "error", err)
		h.stateManager.Clear(ctx, chatID)
		return h.sendText(chatID, h.loc.Get(lang, "payment.order_failed", nil))
	}

	plan, err := h.orders.GetPlan(ctx, data.PlanID)
	if err != nil {
		h.logger.Error("get plan for order", "plan_id", data.PlanID, "error", err)
		h.stateManager.Clear(ctx, chatID)
		return h.sendText(chatID, h.loc.Get(lang, "payment.order_failed", nil))
	}

	receipt, err := h.orders.CreateOrder(ctx, backend.CreateOrderRequest{
		TelegramID:    telegramID,
		PlanID:        data.PlanID,
		EndpointID:    data.EndpointID,
		ConfigName:    data.ConfigName,
		PaymentMethod: backend.PaymentMethodCard,
		Amount:        plan.PriceIRR,
	})
	if err != nil {
		// fail closed: never leave the user waiting on an order that was
		// never created
		h.logger.Error("create card order", "telegram_id", telegramID, "plan_id", data.PlanID, "error", err)
		h.stateManager.Clear(ctx, chatID)
		return h.sendText(chatID, h.loc.Get(lang, "payment.order_failed", nil))
	}

	h.forwardReceiptToAdmins(message, receipt.ID, data.PlanID)

	h.stateManager.Clear(ctx, chatID)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.loc.Get(lang, "common.main_menu_button", nil), actions.MainMenu{}.Data()),
		),
	)
	msg := tgbotapi.NewMessage(chatID, h.loc.Get(lang, "payment.receipt_received", nil))
	msg.ReplyMarkup = keyboard
	_, err = h.bot.Send(msg)
	return err
}

// forwardReceiptToAdmins sends the highest-resolution receipt photo to every
// admin with approve/reject actions. A partial delivery failure is logged as
// a warning and never surfaces to the user.
func (h *Handler) forwardReceiptToAdmins(message *tgbotapi.Message, orderID, planID int64) {
	fileID := message.Photo[len(message.Photo)-1].FileID

	caption := fmt.Sprintf("💳 New Card Payment\n\nOrder ID: %d\nUser ID: %d\nPlan ID: %d",
		orderID, message.From.ID, planID)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", actions.ApproveOrder{OrderID: orderID}.Data()),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", actions.RejectOrder{OrderID: orderID}.Data()),
		),
	)

	for _, adminID := range h.admins.AdminIDs() {
		photo := tgbotapi.NewPhoto(adminID, tgbotapi.FileID(fileID))
		photo.Caption = caption
		photo.ReplyMarkup = keyboard
		if _, err := h.bot.Send(photo); err != nil {
			h.logger.Warn("forward receipt to admin", "admin_id", adminID, "order_id", orderID, "error", err)
		}
	}
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
		h.logger.Warn("answer callback", "error", err)
	}
}
