package editplan

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"sellbot/internal/backend"
	"sellbot/internal/telegram/actions"
	"sellbot/internal/telegram/flows"
	"sellbot/internal/telegram/states"
)

// Editable plan fields, as carried in the callback payload.
const (
	FieldDuration  = "duration"
	FieldDataLimit = "data_limit"
	FieldPrice     = "price"
)

// Handler runs the admin plan catalog: the full list (inactive included), a
// per-plan detail view with field editing, and activation toggles.
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

// HandleList shows every plan, one button per plan.
func (h *Handler) HandleList(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	plans, err := h.plans.ListPlans(ctx, "", true)
	if err != nil {
		h.logger.Error("list plans for admin", "error", err)
		h.alert(cb.ID, fmt.Sprintf("Could not load plans: %v", err))
		return nil
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, plan := range plans {
		marker := "✅"
		if !plan.IsActive {
			marker = "❌"
		}
		label := fmt.Sprintf("%s #%d %s: %dd / %s / %s IRR",
			marker, plan.ID, plan.ServerType, plan.DurationDays,
			formatGB(plan.DataLimitGB), flows.FormatIRR(int64(plan.PriceIRR)))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, actions.EditPlan{PlanID: plan.ID}.Data()),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("« Back", actions.AdminPanel{}.Data()),
	))

	text := "Plans:"
	if len(plans) == 0 {
		text = "No plans yet."
	}

	h.answer(cb.ID)
	edit := tgbotapi.NewEditMessageTextAndMarkup(cb.Message.Chat.ID, cb.Message.MessageID,
		text, tgbotapi.NewInlineKeyboardMarkup(rows...))
	_, err = h.bot.Send(edit)
	return err
}

// HandleEditPlan shows one plan with field-edit and toggle buttons.
func (h *Handler) HandleEditPlan(ctx context.Context, cb *tgbotapi.CallbackQuery, planID int64) error {
	plan, err := h.plans.GetPlan(ctx, planID)
	if err != nil {
		h.logger.Error("get plan for admin", "plan_id", planID, "error", err)
		h.alert(cb.ID, fmt.Sprintf("Could not load plan %d: %v", planID, err))
		return nil
	}

	h.answer(cb.ID)
	return h.renderDetail(cb.Message.Chat.ID, cb.Message.MessageID, plan)
}

// HandleEditField starts the value dialog for one field.
func (h *Handler) HandleEditField(ctx context.Context, cb *tgbotapi.CallbackQuery, planID int64, field string) error {
	chatID := cb.Message.Chat.ID

	prompt, ok := fieldPrompt(field)
	if !ok {
		h.alert(cb.ID, "Unknown field.")
		return nil
	}

	data := &flows.EditPlanFlowData{PlanID: planID, Field: field}
	if err := h.stateManager.SetState(ctx, chatID, states.EditPlanWaitValue, data); err != nil {
		h.logger.Error("set edit plan state", "chat_id", chatID, "error", err)
		h.alert(cb.ID, "Could not start the dialog. Try again.")
		return nil
	}

	h.answer(cb.ID)
	return h.sendText(chatID, prompt)
}

// HandleToggle sets is_active to the value carried in the payload and
// re-renders the detail so the button reflects the new state.
func (h *Handler) HandleToggle(ctx context.Context, cb *tgbotapi.CallbackQuery, planID int64, active bool) error {
	plan, err := h.plans.UpdatePlan(ctx, planID, backend.PlanPatch{IsActive: lo.ToPtr(active)})
	if err != nil {
		h.logger.Error("toggle plan", "plan_id", planID, "active", active, "error", err)
		h.alert(cb.ID, fmt.Sprintf("Toggle failed: %v", err))
		return nil
	}

	h.answer(cb.ID)
	return h.renderDetail(cb.Message.Chat.ID, cb.Message.MessageID, plan)
}

// Handle processes the admin's new value for the field under edit. The dialog
// ends on any complete submission; parse failures re-prompt in place.
func (h *Handler) Handle(ctx context.Context, update *tgbotapi.Update, state states.State) error {
	if state != states.EditPlanWaitValue {
		return fmt.Errorf("unknown edit plan state: %s", state)
	}
	if update.Message == nil {
		return nil
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	data, err := h.stateManager.GetEditPlanData(ctx, chatID)
	if err != nil {
		h.logger.Error("get edit plan data", "chat_id", chatID, "error", err)
		h.stateManager.Clear(ctx, chatID)
		return h.sendText(chatID, "Edit dialog lost. Start again from the plan list.")
	}

	patch, perr := buildPatch(data.Field, text)
	if perr != nil {
		return h.sendText(chatID, perr.Error())
	}

	h.stateManager.Clear(ctx, chatID)

	plan, err := h.plans.UpdatePlan(ctx, data.PlanID, patch)
	if err != nil {
		h.logger.Error("update plan", "plan_id", data.PlanID, "field", data.Field, "error", err)
		return h.sendText(chatID, fmt.Sprintf("Update of plan %d failed: %v", data.PlanID, err))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("« Plan", actions.EditPlan{PlanID: plan.ID}.Data()),
		),
	)
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Plan %d updated.", plan.ID))
	msg.ReplyMarkup = keyboard
	_, serr := h.bot.Send(msg)
	return serr
}

// buildPatch parses the value per field. Updating the IRR price also refreshes
// the derived USDT price.
func buildPatch(field, text string) (backend.PlanPatch, error) {
	switch field {
	case FieldDuration:
		days, err := strconv.Atoi(text)
		if err != nil || days <= 0 {
			return backend.PlanPatch{}, fmt.Errorf("duration must be a positive integer number of days, try again:")
		}
		return backend.PlanPatch{DurationDays: lo.ToPtr(days)}, nil
	case FieldDataLimit:
		gb, err := strconv.ParseFloat(text, 64)
		if err != nil || gb < 0 {
			return backend.PlanPatch{}, fmt.Errorf("data limit must be a non-negative number of GB, try again:")
		}
		return backend.PlanPatch{DataLimitGB: lo.ToPtr(gb)}, nil
	case FieldPrice:
		price, err := strconv.ParseFloat(text, 64)
		if err != nil || price <= 0 {
			return backend.PlanPatch{}, fmt.Errorf("price must be a positive number in IRR, try again:")
		}
		return backend.PlanPatch{
			PriceIRR:  lo.ToPtr(price),
			PriceUSDT: lo.ToPtr(flows.EstimateUSDT(price)),
		}, nil
	default:
		return backend.PlanPatch{}, fmt.Errorf("unknown field %q", field)
	}
}

func fieldPrompt(field string) (string, bool) {
	switch field {
	case FieldDuration:
		return "New duration in days (integer):", true
	case FieldDataLimit:
		return "New data limit in GB (0 for unlimited):", true
	case FieldPrice:
		return "New price in IRR:", true
	default:
		return "", false
	}
}

func (h *Handler) renderDetail(chatID int64, messageID int, plan *backend.Plan) error {
	status := "✅ active"
	toggleLabel := "❌ Deactivate"
	if !plan.IsActive {
		status = "❌ inactive"
		toggleLabel = "✅ Activate"
	}

	text := fmt.Sprintf(
		"Plan #%d (%s)\nDuration: %d days\nData limit: %s\nPrice: %s IRR / %.2f USDT\nStatus: %s",
		plan.ID, plan.ServerType, plan.DurationDays, formatGB(plan.DataLimitGB),
		flows.FormatIRR(int64(plan.PriceIRR)), plan.PriceUSDT, status,
	)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Duration", actions.EditPlanField{PlanID: plan.ID, Field: FieldDuration}.Data()),
			tgbotapi.NewInlineKeyboardButtonData("Data Limit", actions.EditPlanField{PlanID: plan.ID, Field: FieldDataLimit}.Data()),
			tgbotapi.NewInlineKeyboardButtonData("Price", actions.EditPlanField{PlanID: plan.ID, Field: FieldPrice}.Data()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(toggleLabel, actions.TogglePlan{PlanID: plan.ID, Active: !plan.IsActive}.Data()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("« Plans", actions.AdminListPlans{}.Data()),
		),
	)

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard)
	_, err := h.bot.Send(edit)
	return err
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
