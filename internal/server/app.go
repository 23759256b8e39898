// Package server initializes and runs the relay: it connects persistence,
// builds the broker client and the transfer pipeline, and starts the
// Telegram bot alongside the hosted-download HTTP server, with graceful
// shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dmitrijs2005/premrelay/internal/logging"
	"github.com/dmitrijs2005/premrelay/internal/server/activity"
	"github.com/dmitrijs2005/premrelay/internal/server/bot"
	"github.com/dmitrijs2005/premrelay/internal/server/broker"
	"github.com/dmitrijs2005/premrelay/internal/server/config"
	"github.com/dmitrijs2005/premrelay/internal/server/shared/db"
	"github.com/dmitrijs2005/premrelay/internal/server/storage"
	"github.com/dmitrijs2005/premrelay/internal/server/telegram"
	"github.com/dmitrijs2005/premrelay/internal/server/thumbnail"
	"github.com/dmitrijs2005/premrelay/internal/server/transfer"
	"github.com/dmitrijs2005/premrelay/internal/server/users"
	"github.com/dmitrijs2005/premrelay/internal/server/web"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	manager db.RepositoryManager
	pool    *thumbnail.Pool
	bot     *bot.Bot
	web     *web.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	manager, err := db.NewMongoRepositoryManager(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	userService := users.NewService(manager.Users())
	activityService := activity.NewService(manager.Activity(), logger)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("bot init error: %w", err)
	}

	fetcher := broker.NewClient(cfg.BrokerEndpoint, cfg.BrokerUserID, cfg.BrokerAPIKey, cfg.BrokerTimeout, logger)
	store := storage.NewStore(cfg.DownloadRoot)
	generator := thumbnail.NewGenerator(cfg.ThumbnailRoot, cfg.ThumbnailFrames, cfg.ThumbnailFrameWidth, logger)
	pool := thumbnail.NewPool(cfg.ThumbnailWorkers, logger)
	transport := telegram.NewTransport(api, cfg.SendTimeout, logger)

	pipeline := transfer.NewPipeline(cfg, logger, fetcher, transport, store,
		manager.Files(), userService, generator, pool)

	b := bot.NewBot(api, logger, userService, manager.Files(), activityService, pipeline, cfg.PublicBaseURL)
	w := web.NewServer(cfg.EndpointAddrHTTP, manager.Files(), logger)

	return &App{
		config:  cfg,
		logger:  logger,
		manager: manager,
		pool:    pool,
		bot:     b,
		web:     w,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.bot.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.web.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	// Let queued contact-sheet tasks finish before closing persistence.
	app.logger.Info(ctx, "Waiting for background tasks...")
	app.pool.Wait()

	if err := app.manager.Close(context.Background()); err != nil {
		app.logger.Error(ctx, err.Error())
	}

	app.logger.Info(ctx, "Shutdown complete")
}
