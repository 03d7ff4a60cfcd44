package register

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/backend"
	"sellbot/internal/localization"
	"sellbot/internal/telegram/flows"
	"sellbot/internal/telegram/states"
)

// Handler runs new-user onboarding: the /start entry (with an optional
// deep-link invite code) and the awaiting-invite-code loop.
type Handler struct {
	bot          botApi
	stateManager stateManager
	users        userService
	auth         authorizer
	adminChecker adminChecker
	loc          localizer
	logger       *slog.Logger
}

func NewHandler(
	bot botApi,
	sm stateManager,
	users userService,
	auth authorizer,
	ac adminChecker,
	loc localizer,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		bot:          bot,
		stateManager: sm,
		users:        users,
		auth:         auth,
		adminChecker: ac,
		loc:          loc,
		logger:       logger,
	}
}

// Start handles /start. The command payload, when present, is a deep-link
// invite code.
func (h *Handler) Start(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	telegramID := message.From.ID
	initialLang := localization.FromLocale(message.From.LanguageCode)
	inviteCode := strings.TrimSpace(message.CommandArguments())

	h.stateManager.Clear(ctx, chatID)

	user, err := h.users.GetOrCreateUser(ctx, telegramID, initialLang, inviteCode)
	if err != nil {
		if backend.IsKind(err, backend.ErrKindInviteCodeRequired) || backend.IsKind(err, backend.ErrKindInvalidInviteCode) {
			if serr := h.stateManager.SetState(ctx, chatID, states.RegWaitInviteCode, &flows.RegisterFlowData{InitialLang: initialLang}); serr != nil {
				h.logger.Error("set invite state", "chat_id", chatID, "error", serr)
			}
			return h.sendInvitePrompt(chatID)
		}

		h.logger.Error("resolve user on start", "telegram_id", telegramID, "error", err)
		return h.sendText(chatID, h.loc.Get(initialLang, "common.error", nil))
	}

	// The backend-stored language wins over the locale hint.
	h.auth.Authorize(telegramID, user.Language)
	return h.sendMainMenu(chatID, telegramID, user.Language, h.loc.Get(user.Language, "register.welcome", nil))
}

// Handle processes text while awaiting an invite code.
func (h *Handler) Handle(ctx context.Context, update *tgbotapi.Update, state states.State) error {
	if state != states.RegWaitInviteCode {
		return fmt.Errorf("unknown register state: %s", state)
	}
	if update.Message == nil {
		return nil
	}

	chatID := update.Message.Chat.ID
	telegramID := update.Message.From.ID

	initialLang := localization.FromLocale(update.Message.From.LanguageCode)
	if data, err := h.stateManager.GetRegisterData(ctx, chatID); err == nil && data.InitialLang != "" {
		initialLang = data.InitialLang
	}

	code := strings.TrimSpace(update.Message.Text)
	if code == "" {
		return h.sendText(chatID, h.loc.Get(initialLang, "register.invite_invalid", nil))
	}

	user, err := h.users.GetOrCreateUser(ctx, telegramID, initialLang, code)
	if err != nil {
		if backend.IsKind(err, backend.ErrKindInvalidInviteCode) || backend.IsKind(err, backend.ErrKindInviteCodeRequired) {
			// stay in the invite state, unlimited retries
			return h.sendText(chatID, h.loc.Get(initialLang, "register.invite_invalid", nil))
		}

		h.logger.Error("resolve user with invite code", "telegram_id", telegramID, "error", err)
		return h.sendText(chatID, h.loc.Get(initialLang, "common.error", nil))
	}

	h.stateManager.Clear(ctx, chatID)
	h.auth.Authorize(telegramID, user.Language)
	return h.sendMainMenu(chatID, telegramID, user.Language, h.loc.Get(user.Language, "register.success", nil))
}

func (h *Handler) sendMainMenu(chatID, telegramID int64, lang, header string) error {
	title, keyboard := flows.MainMenu(h.loc, lang, h.adminChecker.IsAdmin(telegramID))

	msg := tgbotapi.NewMessage(chatID, header+"\n\n"+title)
	msg.ReplyMarkup = keyboard
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) sendInvitePrompt(chatID int64) error {
	text := h.loc.Get("en", "register.invite_prompt", nil) +
		"\n\n" +
		h.loc.Get("fa", "register.invite_prompt", nil)
	return h.sendText(chatID, text)
}

func (h *Handler) sendText(chatID int64, text string) error {
	_, err := h.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
