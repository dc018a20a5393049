package main

import (
	"context"
	"errors"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/reminders/internal/alert"
	"github.com/aliskhannn/reminders/internal/alert/alarm"
	"github.com/aliskhannn/reminders/internal/alert/notification"
	reminderhandler "github.com/aliskhannn/reminders/internal/api/handlers/reminder"
	templatehandler "github.com/aliskhannn/reminders/internal/api/handlers/template"
	"github.com/aliskhannn/reminders/internal/api/router"
	"github.com/aliskhannn/reminders/internal/api/server"
	"github.com/aliskhannn/reminders/internal/config"
	alertmsg "github.com/aliskhannn/reminders/internal/rabbitmq/handlers/alert"
	"github.com/aliskhannn/reminders/internal/rabbitmq/queue"
	reminderrepo "github.com/aliskhannn/reminders/internal/repository/reminder"
	templaterepo "github.com/aliskhannn/reminders/internal/repository/template"
	"github.com/aliskhannn/reminders/internal/service/delivery"
	remindersvc "github.com/aliskhannn/reminders/internal/service/reminder"
	"github.com/aliskhannn/reminders/internal/worker"
	"github.com/aliskhannn/reminders/pkg/email"
	"github.com/aliskhannn/reminders/pkg/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	cfg := config.Must()
	val := validator.New()
	loc := cfg.Server.Location()

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL(), cfg.RabbitMQ.Retries, cfg.RabbitMQ.Pause)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}

	ch, err := conn.Channel()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to open channel")
	}

	q, err := queue.NewAlertQueue(ch)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to create alert queue")
	}

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
	for _, s := range cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	dbNum, err := strconv.Atoi(cfg.Redis.Database)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to parse redis database")
	}

	rdb := redis.New(cfg.Redis.Address, cfg.Redis.Password, dbNum)

	if err = rdb.Ping(ctx).Err(); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to redis")
	}

	notifBackend := notification.NewBackend(q, rdb)
	alarmBackend := alarm.NewBackend(alarm.Config{
		URL:          cfg.Alarm.URL,
		Username:     cfg.Alarm.Username,
		Password:     cfg.Alarm.Password,
		CalendarPath: cfg.Alarm.CalendarPath,
	})
	scheduler := alert.NewScheduler(notifBackend, alarmBackend)

	remRepo := reminderrepo.NewRepository(db)
	tmplRepo := templaterepo.NewRepository(db)
	service := remindersvc.NewService(remRepo, scheduler, loc)

	smtpPort, err := strconv.Atoi(cfg.Email.SMTPPort)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to parse email smtp port")
	}

	emailClient := email.NewClient(
		cfg.Email.SMTPHost,
		smtpPort,
		cfg.Email.Username,
		cfg.Email.Password,
		cfg.Email.From,
	)
	telegramClient := telegram.NewClient(cfg.Telegram.Token)

	notifiers := map[string]delivery.Notifier{
		"email":    emailClient,
		"telegram": telegramClient,
	}

	targets := make([]delivery.Target, 0, len(cfg.Delivery.Channels))
	for _, channel := range cfg.Delivery.Channels {
		switch channel {
		case "email":
			targets = append(targets, delivery.Target{Channel: channel, To: cfg.Email.To})
		case "telegram":
			targets = append(targets, delivery.Target{Channel: channel, To: cfg.Telegram.ChatID})
		default:
			zlog.Logger.Warn().Str("channel", channel).Msg("unknown delivery channel, skipping")
		}
	}

	deliverySvc := delivery.NewService(notifiers, targets)
	messageHandler := alertmsg.NewHandler(deliverySvc, notifBackend)

	dispatcher := worker.NewDispatcher(q, messageHandler, notifBackend)
	go dispatcher.Run(ctx, cfg.Retry, cfg.Workers.Count)

	resync := worker.NewResync(service, cfg.Retry, loc)
	go func() {
		if err := resync.Start(ctx); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to start resync job")
		}
	}()

	remHandler := reminderhandler.NewHandler(service, val, cfg)
	tmplHandler := templatehandler.NewHandler(tmplRepo, val)

	r := router.New(remHandler, tmplHandler)
	s := server.New(cfg.Server.HTTPPort, r)

	go func() {
		if err := s.ListenAndServe(); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	if err := db.Master.Close(); err != nil {
		zlog.Logger.Printf("failed to close master DB: %v", err)
	}

	for i, s := range db.Slaves {
		if err := s.Close(); err != nil {
			zlog.Logger.Printf("failed to close slave DB %d: %v", i, err)
		}
	}

	if err := ch.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ channel")
	}

	if err := conn.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ connection")
	}
}
