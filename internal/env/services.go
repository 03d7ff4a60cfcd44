package environment

import (
	"context"
	"log/slog"

	"sellbot/internal/config"
	"sellbot/internal/localization"
	"sellbot/internal/storage"
	"sellbot/internal/telegram"
	"sellbot/internal/telegram/cmds"
	"sellbot/internal/telegram/flows/addplan"
	"sellbot/internal/telegram/flows/approveorder"
	"sellbot/internal/telegram/flows/buyconfig"
	"sellbot/internal/telegram/flows/editplan"
	"sellbot/internal/telegram/flows/endpoints"
	"sellbot/internal/telegram/flows/payment"
	"sellbot/internal/telegram/flows/register"
	"sellbot/internal/telegram/flows/support"
	"sellbot/internal/telegram/states"
	"sellbot/internal/workers/cleanup"

	"github.com/pkg/errors"
)

type Services struct {
	TelegramRouter *telegram.Router
	CleanupWorker  *cleanup.Worker
}

func newServices(ctx context.Context, clients *Clients, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	var s Services

	if clients.TelegramBot == nil {
		return nil, errors.New("telegram bot is not initialized")
	}

	storageImpl := storage.New(clients.SQLiteDB.DB)
	if err := storageImpl.EnsureSchema(ctx); err != nil {
		return nil, errors.Wrap(err, "ensure session schema")
	}

	loc, err := localization.NewService()
	if err != nil {
		return nil, errors.Wrap(err, "load translations")
	}

	stateManager := states.NewManager(storageImpl, logger.With("component", "states"))
	adminChecker := telegram.NewAdminChecker(&cfg.Telegram)

	authCache := telegram.NewCache[struct{}](cfg.Gate.AuthCacheTTL, cfg.Gate.AuthCacheCapacity)
	langCache := telegram.NewCache[string](cfg.Gate.LangCacheTTL, cfg.Gate.AuthCacheCapacity)

	gate := telegram.NewAccessGate(
		clients.TelegramBot,
		clients.Backend,
		stateManager,
		loc,
		authCache,
		langCache,
		logger.With("component", "gate"),
	)

	registerHandler := register.NewHandler(
		clients.TelegramBot,
		stateManager,
		clients.Backend,
		gate,
		adminChecker,
		loc,
		logger.With("flow", "register"),
	)

	buyHandler := buyconfig.NewHandler(
		clients.TelegramBot,
		stateManager,
		clients.Backend,
		loc,
		logger.With("flow", "buyconfig"),
	)

	paymentHandler := payment.NewHandler(
		clients.TelegramBot,
		stateManager,
		clients.Backend,
		adminChecker,
		loc,
		cfg.Payment.FallbackCardNumber,
		logger.With("flow", "payment"),
	)

	approveHandler := approveorder.NewHandler(
		clients.TelegramBot,
		stateManager,
		clients.Backend,
		logger.With("flow", "approveorder"),
	)

	addPlanHandler := addplan.NewHandler(
		clients.TelegramBot,
		stateManager,
		clients.Backend,
		logger.With("flow", "addplan"),
	)

	editPlanHandler := editplan.NewHandler(
		clients.TelegramBot,
		stateManager,
		clients.Backend,
		logger.With("flow", "editplan"),
	)

	endpointsHandler := endpoints.NewHandler(
		clients.TelegramBot,
		stateManager,
		clients.Backend,
		logger.With("flow", "endpoints"),
	)

	supportHandler := support.NewHandler(
		clients.TelegramBot,
		stateManager,
		clients.Backend,
		adminChecker,
		loc,
		logger.With("flow", "support"),
	)

	cmdHandler := cmds.NewHandler(
		clients.TelegramBot,
		clients.Backend,
		stateManager,
		langCache,
		adminChecker,
		loc,
		cfg.Backend.PanelBaseURL,
		logger.With("flow", "cmds"),
	)

	s.TelegramRouter = telegram.NewRouter(telegram.RouterDeps{
		Bot:          clients.TelegramBot,
		Gate:         gate,
		StateManager: stateManager,
		Admins:       adminChecker,
		Localization: loc,
		Logger:       logger.With("component", "router"),

		Register:  registerHandler,
		Buy:       buyHandler,
		Payment:   paymentHandler,
		Approve:   approveHandler,
		AddPlan:   addPlanHandler,
		EditPlan:  editPlanHandler,
		Endpoints: endpointsHandler,
		Support:   supportHandler,
		Commands:  cmdHandler,
	})

	s.CleanupWorker = cleanup.NewWorker(
		storageImpl,
		cfg.Sessions.TTL,
		cfg.Sessions.CleanupSchedule,
		logger.With("worker", "cleanup"),
		authCache,
		langCache,
	)

	return &s, nil
}
