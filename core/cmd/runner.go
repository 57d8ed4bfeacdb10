// Package cmd runs the application lifecycle: config, bootstrap,
// Telegram runtime, shutdown. The binary's main stays a thin shim.
package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreconfig "jobbot/core/config"
	"jobbot/core/logger"
	coretelegram "jobbot/core/telegram"
)

// App is what the runner needs from the assembled application.
type App interface {
	TelegramRunOptions() (coretelegram.RunOptions, error)
}

// Options wire the application-specific pieces into the shared runner.
type Options struct {
	// ConfigEnvVar names the env var holding the config path.
	// Defaults to CONFIG_PATH; DefaultConfigPath applies when unset.
	ConfigEnvVar      string
	DefaultConfigPath string

	Load      func(path string) (*coreconfig.Config, error)
	Bootstrap func(cfg *coreconfig.Config) (App, error)
}

// Run drives the full lifecycle and blocks until SIGINT/SIGTERM.
func Run(opts Options) error {
	if opts.Load == nil || opts.Bootstrap == nil {
		return fmt.Errorf("cmd: Load and Bootstrap are required")
	}

	path := configPath(opts)
	if path == "" {
		return fmt.Errorf("cmd: config path not provided")
	}

	log.Printf("loading config: %s", path)
	cfg, err := opts.Load(path)
	if err != nil {
		return fmt.Errorf("cmd: config load: %w", err)
	}

	app, err := opts.Bootstrap(cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap: %w", err)
	}
	defer func() {
		if serr := logger.Shutdown(); serr != nil {
			log.Printf("logger shutdown error: %v", serr)
		}
	}()

	runOpts, err := app.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: telegram wiring: %w", err)
	}
	attachLifecycleLogs(&runOpts, time.Now())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return coretelegram.RunTelegram(ctx, runOpts)
}

func configPath(opts Options) string {
	env := opts.ConfigEnvVar
	if env == "" {
		env = "CONFIG_PATH"
	}
	if path := os.Getenv(env); path != "" {
		return path
	}
	return opts.DefaultConfigPath
}

func attachLifecycleLogs(runOpts *coretelegram.RunOptions, startedAt time.Time) {
	prevStart := runOpts.OnStart
	runOpts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if prevStart != nil {
			if err := prevStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.Component("app").Info("app ready",
			slog.String("event", "ready"),
			slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
		)
		return nil
	}

	prevStop := runOpts.OnStop
	runOpts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		logger.Component("app").Info("shutting down...",
			slog.String("event", "shutdown"),
		)
		if prevStop != nil {
			return prevStop(ctx, rt)
		}
		return nil
	}
}
