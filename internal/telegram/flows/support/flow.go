package support

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/telegram/actions"
	"sellbot/internal/telegram/flows"
	"sellbot/internal/telegram/states"
)

// userIDRe pulls the user ID out of a ticket an admin replied to.
var userIDRe = regexp.MustCompile(`User ID:\s*(\d+)`)

// Handler relays support tickets from users to admins and admin replies back.
// There is no ticket store; the admin message itself carries the routing info.
type Handler struct {
	bot           botApi
	stateManager  stateManager
	subscriptions subscriptionService
	admins        adminList
	loc           localizer
	logger        *slog.Logger
}

func NewHandler(
	bot botApi,
	sm stateManager,
	subscriptions subscriptionService,
	admins adminList,
	loc localizer,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		bot:           bot,
		stateManager:  sm,
		subscriptions: subscriptions,
		admins:        admins,
		loc:           loc,
		logger:        logger,
	}
}

// Start opens the support dialog.
func (h *Handler) Start(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) error {
	chatID := cb.Message.Chat.ID
	h.stateManager.Clear(ctx, chatID)

	data := &flows.SupportFlowData{Language: lang}
	if err := h.stateManager.SetState(ctx, chatID, states.SupportWaitMessage, data); err != nil {
		h.logger.Error("set support state", "chat_id", chatID, "error", err)
		h.alert(cb.ID, h.loc.Get(lang, "common.error", nil))
		return nil
	}

	h.answer(cb.ID)
	edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, h.loc.Get(lang, "support.prompt", nil))
	_, err := h.bot.Send(edit)
	return err
}

// Handle relays the user's next message to every admin. The dialog closes on
// any outcome; success means at least one admin got the ticket.
func (h *Handler) Handle(ctx context.Context, update *tgbotapi.Update, state states.State, lang string) error {
	if state != states.SupportWaitMessage {
		return fmt.Errorf("unknown support state: %s", state)
	}
	if update.Message == nil {
		return nil
	}

	chatID := update.Message.Chat.ID
	telegramID := update.Message.From.ID
	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return h.sendText(chatID, h.loc.Get(lang, "support.need_text", nil))
	}

	h.stateManager.Clear(ctx, chatID)

	ticket := h.buildTicket(ctx, update.Message.From, text)

	delivered := 0
	for _, adminID := range h.admins.AdminIDs() {
		if _, err := h.bot.Send(tgbotapi.NewMessage(adminID, ticket)); err != nil {
			h.logger.Warn("deliver ticket to admin", "admin_id", adminID, "error", err)
			continue
		}
		delivered++
	}

	if delivered == 0 {
		h.logger.Error("support ticket reached no admin", "telegram_id", telegramID)
		return h.sendText(chatID, h.loc.Get(lang, "support.failed", nil))
	}
	return h.sendText(chatID, h.loc.Get(lang, "support.sent", nil))
}

// HandleAdminReply forwards a reply an admin typed under a ticket back to the
// user named in it. Returns false when the message is not such a reply.
func (h *Handler) HandleAdminReply(update *tgbotapi.Update) (bool, error) {
	message := update.Message
	if message == nil || message.ReplyToMessage == nil {
		return false, nil
	}

	replied := message.ReplyToMessage.Text
	if replied == "" {
		replied = message.ReplyToMessage.Caption
	}
	match := userIDRe.FindStringSubmatch(replied)
	if match == nil {
		return false, nil
	}
	userID, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return false, nil
	}

	// bilingual header, the user's stored language is unknown here
	text := "🎧 Message from Support / پیام از طرف پشتیبانی\n\n" + message.Text
	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("↩️ Reply", actions.SupportMenu{}.Data()),
		),
	)

	if _, err := h.bot.Send(msg); err != nil {
		h.logger.Error("deliver support reply", "user_id", userID, "error", err)
		serr := h.sendText(message.Chat.ID, fmt.Sprintf("Could not deliver the reply to user %d: %v", userID, err))
		return true, serr
	}

	return true, h.sendText(message.Chat.ID, fmt.Sprintf("Reply delivered to user %d.", userID))
}

// buildTicket renders the admin-facing ticket. The User ID line is load
// bearing: HandleAdminReply routes by it.
func (h *Handler) buildTicket(ctx context.Context, from *tgbotapi.User, text string) string {
	subsLine := "unknown"
	if subs, err := h.subscriptions.ListSubscriptions(ctx, from.ID); err == nil {
		active := 0
		for _, sub := range subs {
			if sub.Status == "active" {
				active++
			}
		}
		subsLine = fmt.Sprintf("%d total, %d active", len(subs), active)
	} else {
		h.logger.Warn("list subscriptions for ticket", "telegram_id", from.ID, "error", err)
	}

	username := from.UserName
	if username == "" {
		username = "-"
	}

	return fmt.Sprintf(
		"🆘 Support Ticket\n\nUser ID: %d\nUsername: @%s\nSubscriptions: %s\n\n%s\n\nReply to this message to answer.",
		from.ID, username, subsLine, text,
	)
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
