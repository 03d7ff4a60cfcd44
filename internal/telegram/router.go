package telegram

import (
	"context"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/telegram/actions"
	"sellbot/internal/telegram/flows"
	"sellbot/internal/telegram/states"
)

type (
	registerFlow interface {
		Start(ctx context.Context, message *tgbotapi.Message) error
		Handle(ctx context.Context, update *tgbotapi.Update, state states.State) error
	}

	buyFlow interface {
		Start(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) error
		HandleSelectProto(ctx context.Context, cb *tgbotapi.CallbackQuery, protocol, lang string) error
		HandleSelectPlan(ctx context.Context, cb *tgbotapi.CallbackQuery, planID int64, lang string) error
		HandleCustomizeName(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) error
		HandleSkipName(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) error
		Handle(ctx context.Context, update *tgbotapi.Update, state states.State, lang string) error
	}

	paymentFlow interface {
		HandleCardMethod(ctx context.Context, cb *tgbotapi.CallbackQuery, planID, endpointID int64, lang string) error
		HandleCryptoMethod(ctx context.Context, cb *tgbotapi.CallbackQuery, planID, endpointID int64, lang string) error
		Handle(ctx context.Context, update *tgbotapi.Update, state states.State, lang string) error
	}

	approveFlow interface {
		HandleApprove(ctx context.Context, cb *tgbotapi.CallbackQuery, orderID int64) error
		HandleReject(ctx context.Context, cb *tgbotapi.CallbackQuery, orderID int64) error
		HandleManualConfig(ctx context.Context, cb *tgbotapi.CallbackQuery, orderID int64) error
		Handle(ctx context.Context, update *tgbotapi.Update, state states.State) error
	}

	addPlanFlow interface {
		Start(ctx context.Context, cb *tgbotapi.CallbackQuery) error
		HandleProtocol(ctx context.Context, cb *tgbotapi.CallbackQuery, protocol string) error
		Handle(ctx context.Context, update *tgbotapi.Update, state states.State) error
	}

	editPlanFlow interface {
		HandleList(ctx context.Context, cb *tgbotapi.CallbackQuery) error
		HandleEditPlan(ctx context.Context, cb *tgbotapi.CallbackQuery, planID int64) error
		HandleEditField(ctx context.Context, cb *tgbotapi.CallbackQuery, planID int64, field string) error
		HandleToggle(ctx context.Context, cb *tgbotapi.CallbackQuery, planID int64, active bool) error
		Handle(ctx context.Context, update *tgbotapi.Update, state states.State) error
	}

	endpointFlow interface {
		HandleList(ctx context.Context, cb *tgbotapi.CallbackQuery) error
		HandleToggle(ctx context.Context, cb *tgbotapi.CallbackQuery, endpointID int64, active bool) error
		HandleAdd(ctx context.Context, cb *tgbotapi.CallbackQuery) error
		Handle(ctx context.Context, update *tgbotapi.Update, state states.State) error
	}

	supportFlow interface {
		Start(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) error
		Handle(ctx context.Context, update *tgbotapi.Update, state states.State, lang string) error
		HandleAdminReply(update *tgbotapi.Update) (bool, error)
	}

	menuCommands interface {
		HandleMainMenu(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) error
		HandleAdminPanel(ctx context.Context, cb *tgbotapi.CallbackQuery) error
		HandleMyConfigs(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) error
		HandleWGDownload(ctx context.Context, cb *tgbotapi.CallbackQuery, subscriptionID, endpointID int64, lang string) error
		HandleProfile(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) error
		HandleChangeLang(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) error
		HandleSetLanguage(ctx context.Context, cb *tgbotapi.CallbackQuery, newLang string) error
	}

	accessGate interface {
		Check(ctx context.Context, update *tgbotapi.Update) (string, bool)
	}
)

// Router dispatches every inbound update: the gate first, then commands,
// conversation state, or callback actions.
type Router struct {
	bot          botApi
	gate         accessGate
	stateManager stateManager
	admins       adminChecker
	loc          localizer
	logger       *slog.Logger

	register  registerFlow
	buy       buyFlow
	payment   paymentFlow
	approve   approveFlow
	addPlan   addPlanFlow
	editPlan  editPlanFlow
	endpoints endpointFlow
	support   supportFlow
	cmds      menuCommands
}

type RouterDeps struct {
	Bot          botApi
	Gate         accessGate
	StateManager stateManager
	Admins       adminChecker
	Localization localizer
	Logger       *slog.Logger

	Register  registerFlow
	Buy       buyFlow
	Payment   paymentFlow
	Approve   approveFlow
	AddPlan   addPlanFlow
	EditPlan  editPlanFlow
	Endpoints endpointFlow
	Support   supportFlow
	Commands  menuCommands
}

func NewRouter(deps RouterDeps) *Router {
	return &Router{
		bot:          deps.Bot,
		gate:         deps.Gate,
		stateManager: deps.StateManager,
		admins:       deps.Admins,
		loc:          deps.Localization,
		logger:       deps.Logger,
		register:     deps.Register,
		buy:          deps.Buy,
		payment:      deps.Payment,
		approve:      deps.Approve,
		addPlan:      deps.AddPlan,
		editPlan:     deps.EditPlan,
		endpoints:    deps.Endpoints,
		support:      deps.Support,
		cmds:         deps.Commands,
	}
}

// Route handles one update end to end. It never returns an error; failures
// are logged and counted.
func (r *Router) Route(ctx context.Context, update *tgbotapi.Update) {
	updatesTotal.WithLabelValues(updateType(update)).Inc()

	lang, ok := r.gate.Check(ctx, update)
	if !ok {
		gateBlockedTotal.Inc()
		return
	}

	switch {
	case update.CallbackQuery != nil:
		r.routeCallback(ctx, update.CallbackQuery, lang)
	case update.Message != nil:
		r.routeMessage(ctx, update, lang)
	}
}

func (r *Router) routeMessage(ctx context.Context, update *tgbotapi.Update, lang string) {
	message := update.Message
	chatID := message.Chat.ID
	telegramID := message.From.ID

	if message.IsCommand() {
		// a command always aborts whatever dialog was in flight
		r.stateManager.Clear(ctx, chatID)
		if message.Command() == "start" {
			r.fail("start", r.register.Start(ctx, message))
			return
		}
		r.sendMainMenu(chatID, telegramID, lang)
		return
	}

	if r.admins.IsAdmin(telegramID) && message.ReplyToMessage != nil {
		handled, err := r.support.HandleAdminReply(update)
		r.fail("support_reply", err)
		if handled {
			return
		}
	}

	state := r.stateManager.GetState(ctx, chatID)
	prefix := statePrefix(state)

	if isAdminState(prefix) && !r.admins.IsAdmin(telegramID) {
		r.stateManager.Clear(ctx, chatID)
		r.sendMainMenu(chatID, telegramID, lang)
		return
	}

	switch prefix {
	case "reg":
		r.fail("register", r.register.Handle(ctx, update, state))
	case "buy":
		r.fail("buy", r.buy.Handle(ctx, update, state, lang))
	case "pay":
		r.fail("payment", r.payment.Handle(ctx, update, state, lang))
	case "aap":
		r.fail("add_plan", r.addPlan.Handle(ctx, update, state))
	case "aep":
		r.fail("edit_plan", r.editPlan.Handle(ctx, update, state))
	case "aae":
		r.fail("add_endpoint", r.endpoints.Handle(ctx, update, state))
	case "amp":
		r.fail("manual_provision", r.approve.Handle(ctx, update, state))
	case "sup":
		r.fail("support", r.support.Handle(ctx, update, state, lang))
	default:
		r.sendMainMenu(chatID, telegramID, lang)
	}
}

func (r *Router) routeCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) {
	if cb.Message == nil {
		return
	}

	action, ok := actions.Parse(cb.Data)
	if !ok {
		r.logger.Warn("unparsable callback", "data", cb.Data)
		r.answer(cb.ID)
		return
	}

	if isAdminAction(action) && !r.admins.IsAdmin(cb.From.ID) {
		r.alert(cb.ID, "Unauthorized")
		return
	}

	switch a := action.(type) {
	case actions.MainMenu:
		r.fail("main_menu", r.cmds.HandleMainMenu(ctx, cb, lang))
	case actions.BuyMenu:
		r.fail("buy_menu", r.buy.Start(ctx, cb, lang))
	case actions.MyConfigs:
		r.fail("my_configs", r.cmds.HandleMyConfigs(ctx, cb, lang))
	case actions.Profile:
		r.fail("profile", r.cmds.HandleProfile(ctx, cb, lang))
	case actions.ChangeLang:
		r.fail("change_lang", r.cmds.HandleChangeLang(ctx, cb, lang))
	case actions.SetLanguage:
		r.fail("set_language", r.cmds.HandleSetLanguage(ctx, cb, a.Lang))
	case actions.SupportMenu:
		r.fail("support_menu", r.support.Start(ctx, cb, lang))
	case actions.SelectProto:
		r.fail("select_proto", r.buy.HandleSelectProto(ctx, cb, a.Protocol, lang))
	case actions.SelectPlan:
		r.fail("select_plan", r.buy.HandleSelectPlan(ctx, cb, a.PlanID, lang))
	case actions.CustomizeName:
		r.fail("customize_name", r.buy.HandleCustomizeName(ctx, cb, lang))
	case actions.SkipName:
		r.fail("skip_name", r.buy.HandleSkipName(ctx, cb, lang))
	case actions.PayCard:
		r.fail("pay_card", r.payment.HandleCardMethod(ctx, cb, a.PlanID, a.EndpointID, lang))
	case actions.PayCrypto:
		r.fail("pay_crypto", r.payment.HandleCryptoMethod(ctx, cb, a.PlanID, a.EndpointID, lang))
	case actions.DownloadWGConfig:
		r.fail("wg_download", r.cmds.HandleWGDownload(ctx, cb, a.SubscriptionID, a.EndpointID, lang))
	case actions.AdminPanel:
		r.fail("admin_panel", r.cmds.HandleAdminPanel(ctx, cb))
	case actions.AdminAddPlan:
		r.fail("admin_add_plan", r.addPlan.Start(ctx, cb))
	case actions.AddPlanProto:
		r.fail("add_plan_proto", r.addPlan.HandleProtocol(ctx, cb, a.Protocol))
	case actions.AdminListPlans:
		r.fail("admin_list_plans", r.editPlan.HandleList(ctx, cb))
	case actions.EditPlan:
		r.fail("edit_plan", r.editPlan.HandleEditPlan(ctx, cb, a.PlanID))
	case actions.EditPlanField:
		r.fail("edit_plan_field", r.editPlan.HandleEditField(ctx, cb, a.PlanID, a.Field))
	case actions.TogglePlan:
		r.fail("toggle_plan", r.editPlan.HandleToggle(ctx, cb, a.PlanID, a.Active))
	case actions.AdminEndpoints:
		r.fail("admin_endpoints", r.endpoints.HandleList(ctx, cb))
	case actions.AdminAddEndpoint:
		r.fail("admin_add_endpoint", r.endpoints.HandleAdd(ctx, cb))
	case actions.ToggleEndpoint:
		r.fail("toggle_endpoint", r.endpoints.HandleToggle(ctx, cb, a.EndpointID, a.Active))
	case actions.ApproveOrder:
		r.fail("approve_order", r.approve.HandleApprove(ctx, cb, a.OrderID))
	case actions.RejectOrder:
		r.fail("reject_order", r.approve.HandleReject(ctx, cb, a.OrderID))
	case actions.ManualConfig:
		r.fail("manual_config", r.approve.HandleManualConfig(ctx, cb, a.OrderID))
	default:
		r.logger.Warn("unrouted action", "data", cb.Data)
		r.answer(cb.ID)
	}
}

// SetupBotCommands registers the slash-command menu shown by Telegram
// clients. Failure is not fatal; the bot works without the menu.
func (r *Router) SetupBotCommands() error {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Open the main menu"},
	)
	_, err := r.bot.Request(commands)
	return err
}

func (r *Router) sendMainMenu(chatID, telegramID int64, lang string) {
	text, keyboard := flows.MainMenu(r.loc, lang, r.admins.IsAdmin(telegramID))
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := r.bot.Send(msg); err != nil {
		r.fail("main_menu", err)
	}
}

// fail records a handler error; nil is a no-op.
func (r *Router) fail(route string, err error) {
	if err == nil {
		return
	}
	routeErrorsTotal.WithLabelValues(route).Inc()
	r.logger.Error("route failed", "route", route, "error", err)
}

func (r *Router) answer(callbackID string) {
	if _, err := r.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		r.logger.Warn("answer callback", "error", err)
	}
}

func (r *Router) alert(callbackID, text string) {
	if _, err := r.bot.Request(tgbotapi.NewCallbackWithAlert(callbackID, text)); err != nil {
		r.logger.Warn("alert callback", "error", err)
	}
}

func statePrefix(state states.State) string {
	s := string(state)
	if i := strings.Index(s, "_"); i > 0 {
		return s[:i]
	}
	return s
}

func isAdminState(prefix string) bool {
	switch prefix {
	case "aap", "aep", "aae", "amp":
		return true
	}
	return false
}

func isAdminAction(action actions.Action) bool {
	switch action.(type) {
	case actions.AdminPanel, actions.AdminAddPlan, actions.AddPlanProto,
		actions.AdminListPlans, actions.EditPlan, actions.EditPlanField, actions.TogglePlan,
		actions.AdminEndpoints, actions.AdminAddEndpoint, actions.ToggleEndpoint,
		actions.ApproveOrder, actions.RejectOrder, actions.ManualConfig:
		return true
	}
	return false
}
