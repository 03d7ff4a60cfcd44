package cmds

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/telegram/actions"
)

// HandleProfile shows the user's ID and balance.
func (h *Handler) HandleProfile(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) error {
	chatID := cb.Message.Chat.ID

	user, err := h.users.GetOrCreateUser(ctx, cb.From.ID, lang, "")
	if err != nil {
		h.logger.Error("get user for profile", "telegram_id", cb.From.ID, "error", err)
		h.alert(cb.ID, h.loc.Get(lang, "common.error", nil))
		return nil
	}

	text := h.loc.Get(lang, "profile.info", map[string]interface{}{
		"id":      user.TelegramID,
		"balance": fmt.Sprintf("%.0f", user.Balance),
	})
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.loc.Get(lang, "common.main_menu_button", nil), actions.MainMenu{}.Data()),
		),
	)

	h.answer(cb.ID)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID, text, keyboard)
	_, err = h.bot.Send(edit)
	return err
}
