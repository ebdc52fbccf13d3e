package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ObservantAbc123/OpenFarm3-D/contracts/events"
	"github.com/ObservantAbc123/OpenFarm3-D/internal/autoreply"
	"github.com/ObservantAbc123/OpenFarm3-D/internal/config"
	"github.com/ObservantAbc123/OpenFarm3-D/internal/db"
	"github.com/ObservantAbc123/OpenFarm3-D/internal/ingest"
	"github.com/ObservantAbc123/OpenFarm3-D/internal/mailbox"
	"github.com/ObservantAbc123/OpenFarm3-D/internal/mailer"
	"github.com/ObservantAbc123/OpenFarm3-D/internal/mqhandler"
	redisclient "github.com/ObservantAbc123/OpenFarm3-D/internal/redis"
	"github.com/ObservantAbc123/OpenFarm3-D/internal/repository"
	"github.com/ObservantAbc123/OpenFarm3-D/internal/thread"
	iutil "github.com/ObservantAbc123/OpenFarm3-D/internal/util"
	"github.com/ObservantAbc123/OpenFarm3-D/pkg/circuitbreaker"
	"github.com/ObservantAbc123/OpenFarm3-D/pkg/logger"
	"github.com/ObservantAbc123/OpenFarm3-D/pkg/mq"
	"github.com/ObservantAbc123/OpenFarm3-D/pkg/util"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal("Config load failed", zap.Error(err))
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("Invalid timezone", zap.Error(err))
	}

	log.Info("Starting mail service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	pool, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool, log); err != nil {
		log.Fatal("Schema migration failed", zap.Error(err))
	}
	log.Info("DB ready")

	// Redis
	rdb := redisclient.NewRedisClient(cfg.Redis)
	defer rdb.Close()
	deduper := iutil.NewDeduper(rdb, 24*time.Hour)
	retryCounter := util.NewRetryCounter(rdb, time.Hour)

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	emailRepo := repository.NewEmailRepository(pool)
	threadRepo := repository.NewThreadRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	ruleRepo := repository.NewRuleRepository(pool)
	jobRepo := repository.NewJobRepository(pool)
	draftRepo := repository.NewDraftRepository(pool)
	notifLogRepo := repository.NewNotificationLogRepository(pool)

	// Outbound mail, breaker-guarded so a struggling relay is not hammered
	outbound := mailer.NewBreakerMailer(mailer.NewSMTPMailer(cfg.SMTP), circuitbreaker.DefaultConfig())

	// MQ publisher, used by the notifier for dead-letter parking.
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Publisher init failed", zap.Error(err))
	}
	defer publisher.Close()

	// Notification consumers
	notifier := mqhandler.NewNotifier(jobRepo, userRepo, emailRepo, outbound, deduper, retryCounter, publisher, notifLogRepo, log)
	dispatcher := mq.NewDispatcher(cfg.MQ.URL, log)
	dispatcher.Register(events.KindJobAccepted, mqhandler.NewJobAcceptedHandler(notifier, log).Handle)
	dispatcher.Register(events.KindJobApproved, mqhandler.NewJobApprovedHandler(notifier, log).Handle)
	dispatcher.Register(events.KindJobPaid, mqhandler.NewJobPaidHandler(notifier, log).Handle)
	dispatcher.Register(events.KindPrintStarted, mqhandler.NewPrintStartedHandler(notifier, log).Handle)
	dispatcher.Register(events.KindPrintCleared, mqhandler.NewPrintClearedHandler(notifier, log).Handle)
	dispatcher.Register(events.KindJobRejected, mqhandler.NewJobRejectedHandler(notifier, log).Handle)
	dispatcher.Register(events.KindOperatorReply, mqhandler.NewOperatorReplyHandler(notifier, messageRepo, log).Handle)
	if err := dispatcher.Start(ctx); err != nil {
		log.Fatal("Consumer startup failed", zap.Error(err))
	}
	defer dispatcher.Close()

	// Ingestion pipeline
	resolver := thread.NewResolver(userRepo, emailRepo, threadRepo, jobRepo, log)
	responder := autoreply.NewResponder(
		ruleRepo, draftRepo, messageRepo, outbound,
		[]string{cfg.Mail.Account, cfg.SMTP.Account}, loc, log,
	)
	service := ingest.NewService(resolver, messageRepo, responder, log)
	store := mailbox.NewIMAPStore(cfg.Mail, log)
	poller := mailbox.NewPoller(store, service, cfg.PollInterval(), log)

	// Metrics endpoint
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.Metrics.Port, nil); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server stopped", zap.Error(err))
		}
	}()

	log.Info("Mail service running",
		zap.String("mailbox", cfg.Mail.Account),
		zap.Duration("poll_interval", cfg.PollInterval()),
	)

	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Poller stopped", zap.Error(err))
	}

	log.Info("Shutting down mail service gracefully")
}
