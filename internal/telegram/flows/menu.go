package flows

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/telegram/actions"
)

// Localizer resolves translation keys for a language.
type Localizer interface {
	Get(lang, key string, params map[string]interface{}) string
}

// MainMenu renders the user's main menu. Admins get an extra panel button;
// the admin surface itself is English-only.
func MainMenu(loc Localizer, lang string, isAdmin bool) (string, tgbotapi.InlineKeyboardMarkup) {
	rows := [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData(loc.Get(lang, "menu.buy", nil), actions.BuyMenu{}.Data()),
			tgbotapi.NewInlineKeyboardButtonData(loc.Get(lang, "menu.my_configs", nil), actions.MyConfigs{}.Data()),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData(loc.Get(lang, "menu.profile", nil), actions.Profile{}.Data()),
			tgbotapi.NewInlineKeyboardButtonData(loc.Get(lang, "menu.support", nil), actions.SupportMenu{}.Data()),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData(loc.Get(lang, "menu.language", nil), actions.ChangeLang{}.Data()),
		},
	}

	if isAdmin {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("🛠 Admin Panel", actions.AdminPanel{}.Data()),
		})
	}

	return loc.Get(lang, "menu.title", nil), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// AdminPanelMenu renders the admin panel entry points.
func AdminPanelMenu() (string, tgbotapi.InlineKeyboardMarkup) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add Plan", actions.AdminAddPlan{}.Data()),
			tgbotapi.NewInlineKeyboardButtonData("📋 List Plans", actions.AdminListPlans{}.Data()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌍 Endpoints", actions.AdminEndpoints{}.Data()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Main Menu", actions.MainMenu{}.Data()),
		),
	)
	return "🛠 Admin Panel", keyboard
}

// PaymentMethodPrompt renders the shared method-selection prompt. Both the
// named and the skip-naming paths of the catalog flow land here.
func PaymentMethodPrompt(loc Localizer, lang string, planID, endpointID int64) (string, tgbotapi.InlineKeyboardMarkup) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				loc.Get(lang, "payment.card_button", nil),
				actions.PayCard{PlanID: planID, EndpointID: endpointID}.Data(),
			),
			tgbotapi.NewInlineKeyboardButtonData(
				loc.Get(lang, "payment.crypto_button", nil),
				actions.PayCrypto{PlanID: planID, EndpointID: endpointID}.Data(),
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(loc.Get(lang, "common.main_menu_button", nil), actions.MainMenu{}.Data()),
		),
	)
	return loc.Get(lang, "payment.choose_method", nil), keyboard
}
