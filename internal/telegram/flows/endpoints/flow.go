package endpoints

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"sellbot/internal/backend"
	"sellbot/internal/telegram/actions"
	"sellbot/internal/telegram/flows"
	"sellbot/internal/telegram/states"
)

// Handler runs the admin WireGuard endpoint screen: a list with activation
// toggles and the add-endpoint dialog.
type Handler struct {
	bot          botApi
	stateManager stateManager
	endpoints    endpointService
	logger       *slog.Logger
}

func NewHandler(bot botApi, sm stateManager, endpoints endpointService, logger *slog.Logger) *Handler {
	return &Handler{
		bot:          bot,
		stateManager: sm,
		endpoints:    endpoints,
		logger:       logger,
	}
}

// HandleList shows every endpoint with a toggle button per row.
func (h *Handler) HandleList(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	h.answer(cb.ID)
	return h.renderList(ctx, cb.Message.Chat.ID, cb.Message.MessageID)
}

// HandleToggle sets is_active to the value carried in the payload and
// refreshes the list, so a second press lands back on the original state.
func (h *Handler) HandleToggle(ctx context.Context, cb *tgbotapi.CallbackQuery, endpointID int64, active bool) error {
	if _, err := h.endpoints.UpdateEndpoint(ctx, endpointID, backend.EndpointPatch{IsActive: lo.ToPtr(active)}); err != nil {
		h.logger.Error("toggle endpoint", "endpoint_id", endpointID, "active", active, "error", err)
		h.alert(cb.ID, fmt.Sprintf("Toggle failed: %v", err))
		return nil
	}

	h.answer(cb.ID)
	return h.renderList(ctx, cb.Message.Chat.ID, cb.Message.MessageID)
}

// HandleAdd starts the add-endpoint dialog.
func (h *Handler) HandleAdd(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	chatID := cb.Message.Chat.ID

	if err := h.stateManager.SetState(ctx, chatID, states.AddEndpointWaitName, &flows.AddEndpointFlowData{}); err != nil {
		h.logger.Error("set add endpoint state", "chat_id", chatID, "error", err)
		h.alert(cb.ID, "Could not start the dialog. Try again.")
		return nil
	}

	h.answer(cb.ID)
	return h.sendText(chatID, "Endpoint name (e.g. Germany-1):")
}

// Handle processes the admin's text input for the current dialog step.
func (h *Handler) Handle(ctx context.Context, update *tgbotapi.Update, state states.State) error {
	if update.Message == nil {
		return nil
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	data, err := h.stateManager.GetAddEndpointData(ctx, chatID)
	if err != nil {
		h.logger.Error("get add endpoint data", "chat_id", chatID, "error", err)
		h.stateManager.Clear(ctx, chatID)
		return h.sendText(chatID, "Endpoint dialog lost. Start again from the endpoint list.")
	}

	switch state {
	case states.AddEndpointWaitName:
		return h.handleName(ctx, chatID, text, data)
	case states.AddEndpointWaitAddress:
		return h.handleAddress(ctx, chatID, text, data)
	default:
		return fmt.Errorf("unknown endpoint state: %s", state)
	}
}

func (h *Handler) handleName(ctx context.Context, chatID int64, text string, data *flows.AddEndpointFlowData) error {
	if text == "" {
		return h.sendText(chatID, "A non-empty name is required. Try again:")
	}

	data.Name = text
	if err := h.stateManager.SetState(ctx, chatID, states.AddEndpointWaitAddress, data); err != nil {
		return err
	}
	return h.sendText(chatID, "Endpoint address (host:port):")
}

func (h *Handler) handleAddress(ctx context.Context, chatID int64, text string, data *flows.AddEndpointFlowData) error {
	if text == "" || !strings.Contains(text, ":") {
		return h.sendText(chatID, "The address must look like host:port. Try again:")
	}

	h.stateManager.Clear(ctx, chatID)

	endpoint, err := h.endpoints.CreateEndpoint(ctx, data.Name, text)
	if err != nil {
		h.logger.Error("create endpoint", "name", data.Name, "error", err)
		return h.sendText(chatID, fmt.Sprintf("Endpoint creation failed: %v", err))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("« Endpoints", actions.AdminEndpoints{}.Data()),
		),
	)
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Endpoint %d (%s at %s) created and active.",
		endpoint.ID, endpoint.Name, endpoint.Address))
	msg.ReplyMarkup = keyboard
	_, serr := h.bot.Send(msg)
	return serr
}

func (h *Handler) renderList(ctx context.Context, chatID int64, messageID int) error {
	endpoints, err := h.endpoints.ListEndpoints(ctx, true)
	if err != nil {
		h.logger.Error("list endpoints for admin", "error", err)
		return h.sendText(chatID, fmt.Sprintf("Could not load endpoints: %v", err))
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, ep := range endpoints {
		marker := "✅"
		if !ep.IsActive {
			marker = "❌"
		}
		label := fmt.Sprintf("%s %s (%s)", marker, ep.Name, ep.Address)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label,
				actions.ToggleEndpoint{EndpointID: ep.ID, Active: !ep.IsActive}.Data()),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add Endpoint", actions.AdminAddEndpoint{}.Data()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("« Back", actions.AdminPanel{}.Data()),
		),
	)

	text := "WireGuard endpoints. Press one to toggle it:"
	if len(endpoints) == 0 {
		text = "No endpoints yet."
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, tgbotapi.NewInlineKeyboardMarkup(rows...))
	_, err = h.bot.Send(edit)
	return err
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
