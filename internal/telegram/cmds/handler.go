package cmds

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/telegram/flows"
)

// Handler serves the stateless menu screens: main menu, admin panel entry,
// configs, profile and language.
type Handler struct {
	bot          botApi
	users        userService
	stateManager stateManager
	langCache    languageCache
	admins       adminChecker
	loc          localizer
	panelBaseURL string
	logger       *slog.Logger
}

func NewHandler(
	bot botApi,
	users userService,
	sm stateManager,
	langCache languageCache,
	admins adminChecker,
	loc localizer,
	panelBaseURL string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		bot:          bot,
		users:        users,
		stateManager: sm,
		langCache:    langCache,
		admins:       admins,
		loc:          loc,
		panelBaseURL: panelBaseURL,
		logger:       logger,
	}
}

// HandleMainMenu drops any in-flight dialog and shows the main menu.
func (h *Handler) HandleMainMenu(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) error {
	chatID := cb.Message.Chat.ID
	h.stateManager.Clear(ctx, chatID)

	text, keyboard := flows.MainMenu(h.loc, lang, h.admins.IsAdmin(cb.From.ID))
	h.answer(cb.ID)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID, text, keyboard)
	_, err := h.bot.Send(edit)
	return err
}

// HandleAdminPanel shows the admin panel entry points.
func (h *Handler) HandleAdminPanel(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	chatID := cb.Message.Chat.ID
	h.stateManager.Clear(ctx, chatID)

	text, keyboard := flows.AdminPanelMenu()
	h.answer(cb.ID)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID, text, keyboard)
	_, err := h.bot.Send(edit)
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
