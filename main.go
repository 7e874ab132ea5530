package main

import (
	"SchoolScan/bot"
	"SchoolScan/bot/whatsapp"
	"SchoolScan/impl/core"
	"SchoolScan/internal/config"
	repository "SchoolScan/internal/database"
	"SchoolScan/internal/http-server/api"
	"SchoolScan/internal/lib/logger"
	"SchoolScan/internal/lib/sl"
	"SchoolScan/internal/service/attendance"
	"SchoolScan/internal/service/notify"
	"SchoolScan/internal/ws"
	"flag"
	"log/slog"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	// Initialize Telegram bot if enabled
	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		var err error
		tgBot, err = bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
		} else {
			// Set up Telegram handler for the logger
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelDebug)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")

			// Start the bot in a goroutine
			go func() {
				if err := tgBot.Start(); err != nil {
					lg.Error("telegram bot error", sl.Err(err))
				}
			}()
		}
	}

	lg.Info("starting schoolscan", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	handler := core.New(lg)
	handler.SetAuthKey(conf.Listen.ApiKey)

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
	}
	if db != nil {
		handler.SetRepository(db)
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	}

	engine := attendance.NewService(conf, lg)
	if db != nil {
		engine.SetRepository(db)
	}
	handler.SetEngine(engine)

	var waBot *whatsapp.WhatsAppBot
	notifier := notify.NewService(engine.Location(), lg)
	if conf.WhatsApp.Enabled {
		waBot = whatsapp.NewWhatsAppBot(
			conf.WhatsApp.AccessToken,
			conf.WhatsApp.VerifyToken,
			conf.WhatsApp.AppSecret,
			conf.WhatsApp.PhoneNumberID,
			lg,
		)
		notifier.SetSender(waBot)
		lg.With(
			sl.Secret("phone_number_id", conf.WhatsApp.PhoneNumberID),
		).Info("whatsapp bot initialized")
	}
	engine.SetNotifier(notifier)

	hub := ws.NewHub(lg)
	go hub.Run()
	engine.SetFeed(hub)

	if tgBot != nil {
		tgBot.SetStatsProvider(handler)
	}

	if conf.Attendance.AutoCheckout {
		scheduler := attendance.NewScheduler(engine, lg)
		if err := scheduler.Start(); err != nil {
			lg.Error("scheduler start", sl.Err(err))
		}
		defer scheduler.Stop()
	}

	// *** blocking start with http server ***
	err = api.New(conf, lg, handler, hub, waBot)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
