package telegram

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/backend"
	"sellbot/internal/localization"
	"sellbot/internal/telegram/flows"
	"sellbot/internal/telegram/states"
)

// AccessGate intercepts every inbound update before routing. Unregistered
// users are redirected into the invite-code flow; registered ones pass
// through with their backend-stored language.
type AccessGate struct {
	bot          botApi
	users        userResolver
	stateManager stateManager
	loc          localizer
	authCache    *Cache[struct{}]
	langCache    *Cache[string]
	logger       *slog.Logger
}

func NewAccessGate(
	bot botApi,
	users userResolver,
	sm stateManager,
	loc localizer,
	authCache *Cache[struct{}],
	langCache *Cache[string],
	logger *slog.Logger,
) *AccessGate {
	return &AccessGate{
		bot:          bot,
		users:        users,
		stateManager: sm,
		loc:          loc,
		authCache:    authCache,
		langCache:    langCache,
		logger:       logger,
	}
}

// Check decides whether the update may proceed to routing. It returns the
// language to render with. Exempt from resolution: cached users, users mid
// invite entry, and the /start command (registration must be reachable).
func (g *AccessGate) Check(ctx context.Context, update *tgbotapi.Update) (string, bool) {
	telegramID := extractUserID(update)
	if telegramID == 0 {
		return "", false
	}

	localeLang := localization.FromLocale(extractLocale(update))

	if _, ok := g.authCache.Get(telegramID); ok {
		if lang, ok := g.langCache.Get(telegramID); ok {
			return lang, true
		}
		return localeLang, true
	}

	if g.stateManager.GetState(ctx, telegramID) == states.RegWaitInviteCode {
		return localeLang, true
	}

	if update.Message != nil && update.Message.IsCommand() && update.Message.Command() == "start" {
		return localeLang, true
	}

	user, err := g.users.GetOrCreateUser(ctx, telegramID, localeLang, "")
	if err != nil {
		chatID := extractChatID(update)
		if backend.IsKind(err, backend.ErrKindInviteCodeRequired) || backend.IsKind(err, backend.ErrKindInvalidInviteCode) {
			if serr := g.stateManager.SetState(ctx, telegramID, states.RegWaitInviteCode, &flows.RegisterFlowData{InitialLang: localeLang}); serr != nil {
				g.logger.Error("set invite state", "telegram_id", telegramID, "error", serr)
			}
			g.sendInvitePrompt(chatID)
			return "", false
		}

		g.logger.Error("resolve user", "telegram_id", telegramID, "error", err)
		g.sendText(chatID, g.loc.Get(localeLang, "common.error", nil))
		return "", false
	}

	g.Authorize(telegramID, user.Language)
	return user.Language, true
}

// Authorize marks the user as registered and remembers the language. The
// registration flow calls this after a successful invite submission.
func (g *AccessGate) Authorize(telegramID int64, lang string) {
	g.authCache.Set(telegramID, struct{}{})
	g.langCache.Set(telegramID, lang)
}

// SetLanguage updates the cached language preference.
func (g *AccessGate) SetLanguage(telegramID int64, lang string) {
	g.langCache.Set(telegramID, lang)
}

// sendInvitePrompt is bilingual: at this point the user's real preference is
// unknown.
func (g *AccessGate) sendInvitePrompt(chatID int64) {
	text := g.loc.Get("en", "register.invite_prompt", nil) +
		"\n\n" +
		g.loc.Get("fa", "register.invite_prompt", nil)
	g.sendText(chatID, text)
}

func (g *AccessGate) sendText(chatID int64, text string) {
	if chatID == 0 {
		return
	}
	if _, err := g.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		g.logger.Error("send gate message", "chat_id", chatID, "error", err)
	}
}
