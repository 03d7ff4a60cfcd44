package cmds

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/backend"
	"sellbot/internal/telegram/actions"
)

// HandleMyConfigs lists the user's subscriptions. WireGuard entries get a
// download button for the config file.
func (h *Handler) HandleMyConfigs(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) error {
	chatID := cb.Message.Chat.ID

	subs, err := h.users.ListSubscriptions(ctx, cb.From.ID)
	if err != nil {
		h.logger.Error("list subscriptions", "telegram_id", cb.From.ID, "error", err)
		h.alert(cb.ID, h.loc.Get(lang, "common.error", nil))
		return nil
	}

	backRow := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(h.loc.Get(lang, "common.main_menu_button", nil), actions.MainMenu{}.Data()),
	)

	if len(subs) == 0 {
		h.answer(cb.ID)
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
			h.loc.Get(lang, "configs.none", nil), tgbotapi.NewInlineKeyboardMarkup(backRow))
		_, err = h.bot.Send(edit)
		return err
	}

	var b strings.Builder
	b.WriteString(h.loc.Get(lang, "configs.header", nil))
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, sub := range subs {
		b.WriteString("\n\n")
		b.WriteString(h.loc.Get(lang, "configs.item", map[string]interface{}{
			"id":     sub.ID,
			"status": sub.Status,
			"expiry": sub.ExpiryDate.Format("2006-01-02"),
		}))
		if link := h.normalizeConfigLink(sub.ConfigLink); link != "" {
			b.WriteString("\n")
			b.WriteString(link)
		}
		if sub.ServerType == backend.ProtocolWireGuard {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					h.loc.Get(lang, "configs.wg_button", map[string]interface{}{"id": sub.ID}),
					actions.DownloadWGConfig{SubscriptionID: sub.ID}.Data(),
				),
			))
		}
	}
	rows = append(rows, backRow)

	h.answer(cb.ID)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
		b.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
	_, err = h.bot.Send(edit)
	return err
}

// HandleWGDownload fetches the WireGuard config and sends it as a file.
func (h *Handler) HandleWGDownload(ctx context.Context, cb *tgbotapi.CallbackQuery, subscriptionID, endpointID int64, lang string) error {
	chatID := cb.Message.Chat.ID

	config, err := h.users.GetWGConfig(ctx, cb.From.ID, subscriptionID, endpointID)
	if err != nil {
		h.logger.Error("get wg config", "telegram_id", cb.From.ID, "subscription_id", subscriptionID, "error", err)
		h.alert(cb.ID, h.loc.Get(lang, "configs.download_failed", nil))
		return nil
	}

	h.answer(cb.ID)
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("wg-%d.conf", subscriptionID),
		Bytes: config,
	})
	_, err = h.bot.Send(doc)
	return err
}

// normalizeConfigLink resolves backend-relative links against the panel base
// URL. Absolute links pass through.
func (h *Handler) normalizeConfigLink(link string) string {
	if link == "" {
		return ""
	}
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	if !strings.HasPrefix(link, "/") {
		// raw payloads like vless:// or wireguard keys pass through too
		return link
	}
	return strings.TrimSuffix(h.panelBaseURL, "/") + link
}
