package cmds

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/telegram/actions"
	"sellbot/internal/telegram/flows"
)

// HandleChangeLang offers the language choice.
func (h *Handler) HandleChangeLang(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) error {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇬🇧 English", actions.SetLanguage{Lang: "en"}.Data()),
			tgbotapi.NewInlineKeyboardButtonData("🇮🇷 فارسی", actions.SetLanguage{Lang: "fa"}.Data()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.loc.Get(lang, "common.main_menu_button", nil), actions.MainMenu{}.Data()),
		),
	)

	h.answer(cb.ID)
	edit := tgbotapi.NewEditMessageTextAndMarkup(cb.Message.Chat.ID, cb.Message.MessageID,
		h.loc.Get(lang, "language.choose", nil), keyboard)
	_, err := h.bot.Send(edit)
	return err
}

// HandleSetLanguage persists the new language on the backend and re-renders
// the main menu in it.
func (h *Handler) HandleSetLanguage(ctx context.Context, cb *tgbotapi.CallbackQuery, newLang string) error {
	if err := h.users.SetUserLanguage(ctx, cb.From.ID, newLang); err != nil {
		h.logger.Error("set user language", "telegram_id", cb.From.ID, "lang", newLang, "error", err)
		h.alert(cb.ID, h.loc.Get(newLang, "common.error", nil))
		return nil
	}
	h.langCache.Set(cb.From.ID, newLang)

	text, keyboard := flows.MainMenu(h.loc, newLang, h.admins.IsAdmin(cb.From.ID))
	h.answer(cb.ID)
	edit := tgbotapi.NewEditMessageTextAndMarkup(cb.Message.Chat.ID, cb.Message.MessageID, text, keyboard)
	_, err := h.bot.Send(edit)
	return err
}
