package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"imgbench/internal/adapters/backend"
	"imgbench/internal/adapters/file"
	"imgbench/internal/adapters/handler"
	"imgbench/internal/adapters/sender"
	"imgbench/internal/config"
	"imgbench/internal/core/domain"
	"imgbench/internal/core/domain/command"
	"imgbench/internal/core/service"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "imgbench",
	Short:        "resize images with interchangeable backends",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the HTTP service and, when enabled, the telegram bot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml (default ./config.toml)")
	rootCmd.AddCommand(serveCmd, planCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	log.Info().Msg("starting imgbench...")

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return err
	}
	config.SetupLogging(cfg.Log)

	scratch, err := file.NewPool(cfg.Scratch.Dir)
	if err != nil {
		log.Error().Err(err).Str("dir", cfg.Scratch.Dir).Msg("failed initializing scratch directory")
		return err
	}

	registry := backend.NewDefaultRegistry()
	processor, err := service.NewImageProcessor(registry, scratch)
	if err != nil {
		log.Error().Err(err).Msg("failed initializing image processor")
		return err
	}

	janitor := service.NewJanitor(scratch, cfg.Scratch.MaxAge, cfg.Scratch.SweepInterval)
	janitor.Start(ctx)
	defer janitor.Stop()

	profile := cfg.Profile()

	if cfg.Telegram.Enabled {
		if err := startBot(ctx, cfg, processor, scratch, profile); err != nil {
			return err
		}
	}

	api := handler.NewHTTP(processor, scratch, handler.HTTPOptions{
		MaxUploadBytes: cfg.Upload.MaxBytes,
		AllowedExts:    cfg.Upload.AllowedExts,
		Profile:        profile,
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      api.Routes(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Strs("backends", processor.Backends()).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server failed")
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}

	return nil
}

func startBot(ctx context.Context, cfg *config.Config, processor *service.ImageProcessor,
	scratch *file.Pool, profile domain.Profile) error {
	b, err := bot.New(cfg.Telegram.BotToken, bot.WithDefaultHandler(noOpHandler))
	if err != nil {
		log.Error().Err(err).Msg("failed initializing telegram bot")
		return err
	}

	s := sender.NewTelegram(b)

	auth, err := service.NewChatAllowlist(s)
	if err != nil {
		log.Error().Err(err).Msg("failed initializing chat allowlist")
		return err
	}

	quota := service.NewDailyQuota(ctx, s)

	download := func(ctx context.Context, url string) ([]byte, error) {
		return file.DownloadFile(ctx, url, cfg.Upload.MaxBytes)
	}

	commandRegistry := &command.Registry{}
	commandRegistry.Register(command.NewResize(processor, s, s, auth, quota, download, profile, "/resize"))
	commandRegistry.Register(command.NewBackends(processor, s, "/backends"))
	commandRegistry.Register(command.NewUsage(quota, quota.Limit(), s, "/usage"))
	commandRegistry.Register(command.NewDebug(s, processor, scratch, time.Now(), "/debug"))

	commandHandler := handler.NewCommand(commandRegistry, cfg.Telegram.Timeout)

	b.RegisterHandler(bot.HandlerTypeMessageText, "/", bot.MatchTypePrefix, commandHandler.Handle)
	b.RegisterHandler(bot.HandlerTypePhotoCaption, "/", bot.MatchTypePrefix, commandHandler.Handle)

	go func() {
		log.Info().Strs("commands", commandRegistry.ListCommands()).Msg("bot listening")
		b.Start(ctx)
	}()

	return nil
}

func noOpHandler(_ context.Context, _ *bot.Bot, _ *models.Update) {}
