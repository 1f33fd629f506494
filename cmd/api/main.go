package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/clock"
	"github.com/BruksfildServices01/barber-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/barber-booking/internal/db"
	"github.com/BruksfildServices01/barber-booking/internal/infra/cache"
	"github.com/BruksfildServices01/barber-booking/internal/infra/memory"
	infraRepo "github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/logger"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/payment"
	"github.com/BruksfildServices01/barber-booking/internal/routes"
	"github.com/BruksfildServices01/barber-booking/internal/worker"
)

const (
	auditBuffer  = 1000
	notifyBuffer = 1000
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "barber-booking: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.Init(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				log.Warn("close failed", zap.Error(err))
			}
		}
	}()

	// ======================================================
	// STORAGE
	// ======================================================
	var (
		repo routes.Repository
		gdb  *gorm.DB
		sink audit.Sink
	)
	switch cfg.Storage {
	case "memory":
		m := memory.NewBookingRepository()
		shop := memory.SeedDemo(m)
		log.Warn("using in-memory storage", zap.String("demo_slug", shop.Slug))
		repo, sink = m, &audit.MemorySink{}
	case "postgres":
		gdb, err = dbpkg.NewDB(cfg)
		if err != nil {
			return err
		}
		repo, sink = infraRepo.NewBookingGormRepository(gdb), audit.NewGormSink(gdb)
	default:
		return fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}

	// ======================================================
	// CACHE (lease + webhook dedupe)
	// ======================================================
	var store cache.Store = cache.NewMemoryStore()
	if cfg.RedisURL != "" {
		rs, err := cache.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return err
		}
		if err := rs.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		closers = append(closers, rs)
		store = rs
	} else {
		log.Warn("REDIS_URL not set: sweeper lease and payment dedupe are local to this replica")
	}

	// ======================================================
	// NOTIFICATIONS
	// ======================================================
	notifiers, err := buildNotifiers(cfg, &closers)
	if err != nil {
		return err
	}

	auditDispatcher := audit.NewDispatcher(sink, auditBuffer)
	notifyDispatcher := notify.NewDispatcher(notifyBuffer, notifiers...)

	// ======================================================
	// PAYMENTS
	// ======================================================
	var gateway payment.Gateway
	if cfg.MPAccessToken != "" {
		gateway, err = payment.NewMercadoPagoGateway(cfg.MPAccessToken, cfg.MPNotificationURL)
		if err != nil {
			return err
		}
	} else {
		if cfg.IsProduction() {
			return errors.New("MP_ACCESS_TOKEN is required in production")
		}
		log.Warn("MP_ACCESS_TOKEN not set: using the fake payment gateway")
		gateway = payment.NewFakeGateway()
	}

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Dependencies{
		Config:   cfg,
		Repo:     repo,
		DB:       gdb,
		Audit:    auditDispatcher,
		Notifier: notifyDispatcher,
		Gateway:  gateway,
		Cache:    store,
		Clock:    clock.System{},
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ======================================================
	// EXPIRY SWEEPER
	// ======================================================
	sweeper := &worker.ExpirySweeper{
		Repo:     repo,
		Audit:    auditDispatcher,
		Clock:    clock.System{},
		Interval: cfg.SweepInterval,
		Lease:    store,
		LeaseTTL: cfg.SweepLockTTL,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("expiry sweeper exited", zap.Error(err))
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			stop()
			<-done
			return fmt.Errorf("http server: %w", err)
		}
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}

	<-done
	notifyDispatcher.Close()
	auditDispatcher.Close()
	return nil
}

// buildNotifiers wires the configured transport. The receipt archiver runs
// alongside it when a bucket is set.
func buildNotifiers(cfg *config.Config, closers *[]io.Closer) ([]notify.Notifier, error) {
	var out []notify.Notifier

	switch cfg.NotifyDriver {
	case "", "log":
		out = append(out, notify.LogNotifier{})
	case "kafka":
		producer, err := notify.NewKafkaProducer(cfg.KafkaBrokers)
		if err != nil {
			return nil, fmt.Errorf("kafka: %w", err)
		}
		k := notify.NewKafkaNotifier(producer, cfg.KafkaTopic)
		*closers = append(*closers, k)
		out = append(out, k)
	case "rabbitmq":
		rb, err := notify.NewRabbitNotifier(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		*closers = append(*closers, rb)
		out = append(out, rb)
	default:
		return nil, fmt.Errorf("unknown NOTIFY_DRIVER %q", cfg.NotifyDriver)
	}

	if cfg.ReceiptsBucket != "" {
		client := notify.NewS3Client(notify.S3Config{
			Region:    cfg.AWSRegion,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		out = append(out, notify.NewReceiptArchiver(client, cfg.ReceiptsBucket))
	}

	return out, nil
}
