package bot

import (
	"fmt"

	tele "gopkg.in/telebot.v4"

	coreconfig "jobbot/core/config"
	"jobbot/core/logger"
	tg "jobbot/core/telegram"
	tghelpers "jobbot/core/telegram/helpers"
	"jobbot/core/telegram/router"
	"jobbot/core/telegram/state"
	"jobbot/service"
)

// Options carries everything the bot application needs. All fields
// except ChannelLink are required.
type Options struct {
	Config    *coreconfig.Config
	Users     *service.Users
	Vacancies *service.Vacancies
	Sessions  state.Manager

	// ChannelLink is the public invite link shown by /orders.
	ChannelLink string
}

// App is the assembled bot application: command and callback handlers
// bound to a registry, conversation steps bound to the session manager.
type App struct {
	cfg         *coreconfig.Config
	users       *service.Users
	vacancies   *service.Vacancies
	sessions    state.Manager
	registry    *tg.Registry
	channelLink string
}

// New wires handlers into a fresh registry and registers every
// conversation step with the session manager.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bot: nil config")
	}
	if opts.Users == nil || opts.Vacancies == nil {
		return nil, fmt.Errorf("bot: services are required")
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("bot: session manager is required")
	}

	a := &App{
		cfg:         opts.Config,
		users:       opts.Users,
		vacancies:   opts.Vacancies,
		sessions:    opts.Sessions,
		registry:    tg.NewRegistry(),
		channelLink: opts.ChannelLink,
	}
	a.registerCommands()
	a.registerCallbacks()
	a.registerFallbacks()
	a.registerStates()
	return a, nil
}

// Registry exposes the command/callback registry, mostly for tests.
func (a *App) Registry() *tg.Registry { return a.registry }

func (a *App) registerCommands() {
	a.registry.RegisterCommand("/start", tg.Command{
		Handler:     a.handleStart,
		Description: "Main menu and registration",
	})
	a.registry.RegisterCommand("/orders", tg.Command{
		Handler:     a.handleOrders,
		Description: "Where to find open jobs",
	})
	a.registry.RegisterCommand("/myprofile", tg.Command{
		Handler:     a.handleMyProfile,
		Description: "Your profile and earnings",
	})
	a.registry.RegisterCommand("/admin", tg.Command{
		Handler:     a.handleAdminPanel,
		Description: "Management panel",
		AdminOnly:   true,
		Hidden:      true,
	})
}

func (a *App) registerCallbacks() {
	cbs := map[string]tele.HandlerFunc{
		cbMyProfile: a.cbProfile,
		cbEditBank:  a.cbEditBank,
		cbToMain:    a.cbToMain,

		cbJobDone:   a.cbJobDone,
		cbJobRefuse: a.cbJobRefuse,
		cbActiveJob: a.cbActiveJob,

		cbAdmCreateJob: a.adminOnly(a.cbAdminCreateJob),
		cbAdmJobsList:  a.adminOnly(a.cbAdminJobsList),
		cbAdmView:      a.adminOnly(a.cbAdminViewJob),
		cbAdmPay:       a.adminOnly(a.cbAdminPay),
		cbAdmDel:       a.adminOnly(a.cbAdminDelete),
		cbAdmBack:      a.adminOnly(a.cbAdminBack),
		cbAdmStats:     a.adminOnly(a.cbAdminStats),
		cbAdmRating:    a.adminOnly(a.cbAdminRating),

		cbSetPriority: a.adminOnly(a.cbCreatePriority),
		cbSetCategory: a.adminOnly(a.cbCreateCategory),
	}
	for key, handler := range cbs {
		if err := a.registry.RegisterCallback(key, handler); err != nil {
			logger.TWire.Warn("callback registration failed", "key", key, "err", err.Error())
		}
	}
}

func (a *App) registerFallbacks() {
	a.registry.SetTextFallback(func(c tele.Context) error {
		return tghelpers.SendText(c, "I don't understand that. Send /start to open the menu.")
	})
	a.registry.SetCallbackNotFound(func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	})
}

func (a *App) registerStates() {
	a.sessions.RegisterHandler(stateRegNickname, a.stepRegNickname)
	a.sessions.RegisterHandler(stateRegCitizenship, a.stepRegCitizenship)
	a.sessions.RegisterHandler(stateRegBank, a.stepRegBank)

	a.sessions.RegisterHandler(stateCreateDescription, a.stepCreateDescription)
	a.sessions.RegisterHandler(stateCreateSalary, a.stepCreateSalary)

	a.sessions.RegisterHandler(stateAwaitCoords, a.stepCoords)
	a.sessions.RegisterHandler(stateEditBank, a.stepEditBank)
}

// adminOnly guards callbacks that must never act for regular users,
// even if one somehow obtains the token.
func (a *App) adminOnly(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if sender := c.Sender(); sender == nil || !a.cfg.Telegram.IsAdmin(sender.ID) {
			return c.Respond(&tele.CallbackResponse{Text: "Not allowed"})
		}
		return next(c)
	}
}

// TelegramRunOptions assembles the runtime wiring for tg.RunTelegram.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	isAdmin := a.cfg.Telegram.IsAdmin

	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		IsAdmin: isAdmin,
		OnAdminReject: func(c tele.Context) error {
			return c.Send("This command is for administrators.")
		},
	})
	routes = append(routes,
		router.CallbackRoute(a.registry),
		router.TextRoute(a.sessions, a.registry),
	)

	return tg.RunOptions{
		Config:      a.cfg,
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
	}, nil
}
