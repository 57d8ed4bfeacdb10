package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"jobbot/bot"
	"jobbot/channel"
	"jobbot/core/bootstrap"
	"jobbot/core/cmd"
	coreconfig "jobbot/core/config"
	coredatabase "jobbot/core/database"
	tg "jobbot/core/telegram"
	"jobbot/core/telegram/state"
	"jobbot/service"
	"jobbot/storage"
)

// appConfig couples the shared runtime configuration with the
// application's database section.
type appConfig struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
}

func loadAppConfig(path string) (*appConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg appConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// app glues the bot application to the runtime: the notifier binds to
// the live bot in OnStart, before any update is processed.
type app struct {
	bot   *bot.App
	cfg   *appConfig
	store storage.Store
	lazy  *channel.Lazy
}

func (a *app) TelegramRunOptions() (tg.RunOptions, error) {
	opts, err := a.bot.TelegramRunOptions()
	if err != nil {
		return tg.RunOptions{}, err
	}
	opts.OnStart = func(ctx context.Context, rt tg.Runtime) error {
		username := ""
		if rt.Bot.Me != nil {
			username = rt.Bot.Me.Username
		}
		a.lazy.Bind(channel.New(rt.Bot, rt.Dispatcher, a.store.Vacancies, channel.Options{
			ChannelID:    a.cfg.Telegram.ChannelID,
			LogChannelID: a.cfg.Telegram.LogChannelID,
			BotUsername:  username,
		}))
		return nil
	}
	return opts, nil
}

func buildApp(cfg *appConfig) (cmd.App, error) {
	result, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Config,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := storage.Store{
		Users:     storage.NewSQLUsers(result.DB),
		Vacancies: storage.NewSQLVacancies(result.DB),
	}

	sessions, err := state.NewManager(cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}

	lazy := &channel.Lazy{}
	users := service.NewUsers(store.Users, lazy)
	vacancies := service.NewVacancies(store.Vacancies, store.Users, lazy)

	botApp, err := bot.New(bot.Options{
		Config:      &cfg.Config,
		Users:       users,
		Vacancies:   vacancies,
		Sessions:    sessions,
		ChannelLink: cfg.Telegram.ChannelLink,
	})
	if err != nil {
		return nil, err
	}

	return &app{bot: botApp, cfg: cfg, store: store, lazy: lazy}, nil
}

func main() {
	var loaded *appConfig
	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
		Load: func(path string) (*coreconfig.Config, error) {
			cfg, err := loadAppConfig(path)
			if err != nil {
				return nil, err
			}
			loaded = cfg
			return &cfg.Config, nil
		},
		Bootstrap: func(*coreconfig.Config) (cmd.App, error) {
			return buildApp(loaded)
		},
	})
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
