package main

import (
	"context"
	"os"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/backend"
	"finboard/internal/chat"
	"finboard/internal/cli"
	"finboard/internal/config"
	"finboard/internal/gemini"
	apphttp "finboard/internal/http"
	applog "finboard/internal/log"
	"finboard/internal/session"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))

	cfg, err := cli.LoadConfig(logger)
	if err != nil {
		logger.Error("Configuration failed", applog.FieldError, err, applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server exited")
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	data, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	if data.Cleanup != nil {
		defer func() {
			if err := data.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", applog.FieldError, err)
			}
		}()
	}

	var generator chat.Generator = gemini.Unavailable{}
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.New(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel}, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		generator = client
	} else {
		logger.Warn("GEMINI_API_KEY not set; chat will answer with an apology",
			applog.FieldComponent, applog.ComponentGemini)
	}

	opts := []chat.Option{
		chat.WithTimeout(cfg.GenerationTimeout),
		chat.WithLogger(logger),
	}
	if cfg.AMQPURL != "" {
		audit, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return err
		}
		defer audit.Close()
		opts = append(opts, chat.WithAudit(audit))
		logger.Info("Chat audit publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	sessions, err := session.NewManager(session.Options{
		Secret:       cfg.SecretKey,
		CookieName:   cfg.SessionCookieName,
		MaxAge:       cfg.SessionMaxAge,
		Secure:       cfg.SessionSecureCookie,
		Username:     cfg.Username,
		Password:     cfg.Password,
		PasswordHash: cfg.PasswordHash,
	})
	if err != nil {
		return err
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Loader:           data.Loader,
		Chat:             chat.NewService(data.Loader, generator, opts...),
		Sessions:         sessions,
		Logger:           logger,
		CurrencySymbol:   cfg.CurrencySymbol,
		ChatRequireLogin: cfg.ChatRequireLogin,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.GenerationTimeout + 10*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	logger.Info("Starting server", "addr", srv.Addr, applog.FieldBackend, cfg.DataBackend, applog.FieldModel, cfg.GeminiModel)
	return cli.RunServer(ctx, srv, cli.ShutdownTimeout, logger)
}
