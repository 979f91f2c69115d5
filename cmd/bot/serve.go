package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"personal_assistant_bot/internal/app"
	"personal_assistant_bot/internal/domain/credential"
	"personal_assistant_bot/internal/domain/schedule"
	"personal_assistant_bot/internal/infra/config"
	idb "personal_assistant_bot/internal/infra/database"
	"personal_assistant_bot/internal/infra/dedup"
	"personal_assistant_bot/internal/infra/google"
	"personal_assistant_bot/internal/infra/httpserver"
	"personal_assistant_bot/internal/infra/ics"
	"personal_assistant_bot/internal/infra/logger"
	"personal_assistant_bot/internal/infra/scheduler"
	"personal_assistant_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/telebot.v3"
)

const (
	oauthStateCapacity = 64
	oauthStateTTL      = 15 * time.Minute
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, the OAuth endpoints and the maintenance jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"timezone":    cfg.Timezone,
		"webhook":     cfg.UseWebhook(),
		"owner_id":    cfg.OwnerTelegramID,
	}).Info("Configuration loaded.")

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver, err := schedule.NewResolver(cfg.Timezone)
	if err != nil {
		return err
	}

	repo, closeRepo, err := openTokenRepository(ctx, cfg, mainLogger)
	if err != nil {
		return err
	}
	defer closeRepo()

	oauthConfig := credential.NewConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
	cred, err := app.LoadCredential(ctx, repo, oauthConfig, app.OwnerCredentialName, cfg.GoogleRefreshToken, logger.Component("credential"))
	if err != nil {
		return err
	}

	updates := dedup.New(cfg.DedupCapacity, cfg.DedupTTL)
	states := dedup.New(oauthStateCapacity, oauthStateTTL)

	var assistantOpts []app.AssistantOption
	if cfg.SendICS {
		assistantOpts = append(assistantOpts, app.WithICS(ics.NewRenderer()))
	}
	assistant := app.NewAssistantService(
		resolver,
		google.NewCalendar(cfg.CalendarID, cfg.GoogleAPIRPS),
		google.NewTaskList(cfg.TaskListID, cfg.GoogleAPIRPS),
		cred,
		cfg.MeetingDuration,
		cfg.AuthURL(),
		logger.Component("assistant"),
		assistantOpts...,
	)

	// Initialize Telegram Bot
	botLogger := logger.Component("telegram")
	pref := telebot.Settings{
		Token: cfg.TelegramToken,
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := botLogger.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			entry.Error("Telebot error")
		},
	}
	var webhook *telegram.WebhookPoller
	if cfg.UseWebhook() {
		webhook = telegram.NewWebhookPoller(cfg.WebhookURL(), cfg.WebhookSecret, botLogger)
		pref.Poller = webhook
	} else {
		pref.Poller = &telebot.LongPoller{Timeout: 10 * time.Second}
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		return fmt.Errorf("could not create Telegram bot: %w", err)
	}
	bot.Use(telegram.Dedup(updates, botLogger), telegram.OwnerOnly(cfg.OwnerTelegramID, botLogger))
	telegram.RegisterAssistantHandlers(ctx, bot, assistant, botLogger)
	telegram.RegisterBotCommands(bot, assistant, botLogger)

	authService := app.NewAuthService(cred, states, telegram.NewTelebotAdapter(bot), cfg.OwnerTelegramID, logger.Component("auth"))
	var webhookHandler http.Handler
	if webhook != nil {
		webhookHandler = webhook
	}
	httpLogger := logger.Component("http")
	server := httpserver.NewServer(cfg.Port, httpserver.NewRouter(authService, webhookHandler, httpLogger), httpLogger)

	maintenance := scheduler.NewMaintenanceScheduler(
		map[string]scheduler.Sweeper{"updates": updates, "oauth_states": states},
		cred,
		logger.Component("scheduler"),
		resolver.Location(),
		cfg.CronSpecDedupSweep,
		cfg.CronSpecTokenRefresh,
	)
	if err := maintenance.Start(); err != nil {
		return err
	}
	defer maintenance.Stop()

	mainLogger.Info("Application setup complete. Bot, HTTP server and scheduler are starting...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	g.Go(func() error {
		go bot.Start()
		<-gctx.Done()
		bot.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	mainLogger.Info("Application shut down gracefully.")
	return nil
}

func openTokenRepository(ctx context.Context, cfg *config.AppConfig, log *logrus.Entry) (credential.Repository, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL is not set; OAuth tokens are kept in memory and lost on restart")
		return idb.NewMemoryTokenRepository(), func() {}, nil
	}

	db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to database: %w", err)
	}
	if err := idb.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Info("Database connection established successfully.")
	return idb.NewPostgresTokenRepository(db), func() { db.Close() }, nil
}
