package buyconfig

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/backend"
	"sellbot/internal/telegram/actions"
	"sellbot/internal/telegram/flows"
	"sellbot/internal/telegram/states"
)

// configNameRe bounds user-supplied config names.
var configNameRe = regexp.MustCompile(`^[a-z0-9_]{3,32}$`)

// Handler runs the catalog flow: protocol choice, plan listing, plan
// selection and the optional custom config name.
type Handler struct {
	bot          botApi
	stateManager stateManager
	plans        planService
	loc          localizer
	logger       *slog.Logger
}

func NewHandler(bot botApi, sm stateManager, plans planService, loc localizer, logger *slog.Logger) *Handler {
	return &Handler{
		bot:          bot,
		stateManager: sm,
		plans:        plans,
		loc:          loc,
		logger:       logger,
	}
}

// Start opens the protocol menu. Any in-progress flow is abandoned.
func (h *Handler) Start(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) error {
	chatID := cb.Message.Chat.ID
	h.stateManager.Clear(ctx, chatID)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				h.loc.Get(lang, "buy.proto_v2ray", nil),
				actions.SelectProto{Protocol: backend.ProtocolV2Ray}.Data(),
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				h.loc.Get(lang, "buy.proto_wireguard", nil),
				actions.SelectProto{Protocol: backend.ProtocolWireGuard}.Data(),
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				h.loc.Get(lang, "common.main_menu_button", nil),
				actions.MainMenu{}.Data(),
			),
		),
	)

	h.answer(cb.ID, "")
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
		h.loc.Get(lang, "buy.choose_protocol", nil), keyboard)
	_, err := h.bot.Send(edit)
	return err
}

// HandleSelectProto lists active plans for the chosen protocol.
func (h *Handler) HandleSelectProto(ctx context.Context, cb *tgbotapi.CallbackQuery, protocol, lang string) error {
	chatID := cb.Message.Chat.ID

	plans, err := h.plans.ListPlans(ctx, protocol, false)
	if err != nil {
		h.logger.Error("list plans", "protocol", protocol, "error", err)
		h.alert(cb.ID, h.loc.Get(lang, "common.error", nil))
		return nil
	}
	if len(plans) == 0 {
		h.alert(cb.ID, h.loc.Get(lang, "buy.no_plans", nil))
		return nil
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, plan := range plans {
		label := h.loc.Get(lang, "buy.plan_button", map[string]interface{}{
			"days":  plan.DurationDays,
			"gb":    formatGB(plan.DataLimitGB),
			"toman": flows.FormatToman(int64(plan.PriceIRR)),
		})
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, actions.SelectPlan{PlanID: plan.ID}.Data()),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(h.loc.Get(lang, "common.back_button", nil), actions.BuyMenu{}.Data()),
	))

	h.answer(cb.ID, "")
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
		h.loc.Get(lang, "buy.choose_plan", nil), tgbotapi.NewInlineKeyboardMarkup(rows...))
	_, err = h.bot.Send(edit)
	return err
}

// HandleSelectPlan branches on the plan's protocol: WireGuard plans carry no
// custom name and go straight to the payment-method prompt.
func (h *Handler) HandleSelectPlan(ctx context.Context, cb *tgbotapi.CallbackQuery, planID int64, lang string) error {
	chatID := cb.Message.Chat.ID

	plan, err := h.plans.GetPlan(ctx, planID)
	if err != nil {
		h.logger.Error("get plan", "plan_id", planID, "error", err)
		h.alert(cb.ID, h.loc.Get(lang, "common.error", nil))
		return nil
	}

	data := &flows.BuyFlowData{
		Protocol: plan.ServerType,
		PlanID:   plan.ID,
		Language: lang,
	}

	if plan.ServerType == backend.ProtocolWireGuard {
		if err := h.stateManager.SetState(ctx, chatID, states.StateDone, data); err != nil {
			h.logger.Error("store buy data", "chat_id", chatID, "error", err)
		}
		h.answer(cb.ID, "")
		return h.editToPaymentPrompt(chatID, cb.Message.MessageID, plan.ID, data.EndpointID, lang)
	}

	if err := h.stateManager.SetState(ctx, chatID, states.BuyWaitNameChoice, data); err != nil {
		h.logger.Error("store buy data", "chat_id", chatID, "error", err)
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.loc.Get(lang, "buy.name_custom_button", nil), actions.CustomizeName{}.Data()),
			tgbotapi.NewInlineKeyboardButtonData(h.loc.Get(lang, "buy.name_skip_button", nil), actions.SkipName{}.Data()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.loc.Get(lang, "common.main_menu_button", nil), actions.MainMenu{}.Data()),
		),
	)

	h.answer(cb.ID, "")
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
		h.loc.Get(lang, "buy.name_choice", nil), keyboard)
	_, err = h.bot.Send(edit)
	return err
}

// HandleCustomizeName prompts for a config name.
func (h *Handler) HandleCustomizeName(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) error {
	chatID := cb.Message.Chat.ID

	data, err := h.stateManager.GetBuyData(ctx, chatID)
	if err != nil {
		h.logger.Error("get buy data", "chat_id", chatID, "error", err)
		h.alert(cb.ID, h.loc.Get(lang, "common.error", nil))
		return nil
	}

	if err := h.stateManager.SetState(ctx, chatID, states.BuyWaitConfigName, data); err != nil {
		h.logger.Error("set name state", "chat_id", chatID, "error", err)
	}

	h.answer(cb.ID, "")
	edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, h.loc.Get(lang, "buy.name_prompt", nil))
	_, err = h.bot.Send(edit)
	return err
}

// HandleSkipName stores an empty config name and moves on to payment.
func (h *Handler) HandleSkipName(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) error {
	chatID := cb.Message.Chat.ID

	data, err := h.stateManager.GetBuyData(ctx, chatID)
	if err != nil {
		h.logger.Error("get buy data", "chat_id", chatID, "error", err)
		h.alert(cb.ID, h.loc.Get(lang, "common.error", nil))
		return nil
	}

	data.ConfigName = ""
	if err := h.stateManager.SetState(ctx, chatID, states.StateDone, data); err != nil {
		h.logger.Error("store buy data", "chat_id", chatID, "error", err)
	}

	h.answer(cb.ID, "")
	return h.editToPaymentPrompt(chatID, cb.Message.MessageID, data.PlanID, data.EndpointID, lang)
}

// Handle processes text input for the naming states.
func (h *Handler) Handle(ctx context.Context, update *tgbotapi.Update, state states.State, lang string) error {
	switch state {
	case states.BuyWaitNameChoice:
		// buttons are awaited, re-prompt on stray text
		if update.Message != nil {
			return h.sendText(update.Message.Chat.ID, h.loc.Get(lang, "buy.name_choice", nil))
		}
		return nil
	case states.BuyWaitConfigName:
		return h.handleNameInput(ctx, update, lang)
	default:
		return fmt.Errorf("unknown buy state: %s", state)
	}
}

func (h *Handler) handleNameInput(ctx context.Context, update *tgbotapi.Update, lang string) error {
	if update.Message == nil {
		return nil
	}
	chatID := update.Message.Chat.ID

	name := strings.TrimSpace(update.Message.Text)
	if !configNameRe.MatchString(name) {
		// validation failure: re-prompt in place, no state change
		return h.sendText(chatID, h.loc.Get(lang, "buy.name_invalid", nil))
	}

	data, err := h.stateManager.GetBuyData(ctx, chatID)
	if err != nil {
		h.logger.Error("get buy data", "chat_id", chatID, "error", err)
		h.stateManager.Clear(ctx, chatID)
		return h.sendText(chatID, h.loc.Get(lang, "common.error", nil))
	}

	data.ConfigName = name
	if err := h.stateManager.SetState(ctx, chatID, states.StateDone, data); err != nil {
		h.logger.Error("store buy data", "chat_id", chatID, "error", err)
	}

	text, keyboard := flows.PaymentMethodPrompt(h.loc, lang, data.PlanID, data.EndpointID)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err = h.bot.Send(msg)
	return err
}

func (h *Handler) editToPaymentPrompt(chatID int64, messageID int, planID, endpointID int64, lang string) error {
	text, keyboard := flows.PaymentMethodPrompt(h.loc, lang, planID, endpointID)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard)
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
		h.logger.Warn("answer callback", "error", err)
	}
}

func formatGB(gb float64) string {
	if gb == float64(int64(gb)) {
		return fmt.Sprintf("%d", int64(gb))
	}
	return fmt.Sprintf("%.1f", gb)
}
