package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"registrar/internal/platform/config"
	"registrar/internal/platform/httpserver"
	"registrar/internal/platform/logger"
	"registrar/internal/platform/metrics"
	"registrar/internal/platform/postgres"
	platformredis "registrar/internal/platform/redis"
	"registrar/internal/record/handler"
	"registrar/internal/record/service"
	"registrar/internal/record/store"
	"registrar/pkg/platform/audit/publisher"
	kafkaaudit "registrar/pkg/platform/audit/store/kafka"
	auditmemory "registrar/pkg/platform/audit/store/memory"
)

const shutdownTimeout = 10 * time.Second

// recordStore is a record backend that can also report its size.
type recordStore interface {
	service.Store
	handler.Counter
}

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal record packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("registrar exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	records, ping, closeStore, err := buildStore(ctx, cfg, log, m)
	if err != nil {
		return err
	}
	defer closeStore()

	auditPublisher, closeAudit, err := buildAuditPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	svc, err := service.New(records,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	router.Get("/healthz", handler.Health(ping, records, log))
	handler.New(svc, log, m, cfg.AdminTokenHash).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting registrar", "addr", cfg.Addr, "store", string(cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down registrar")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// buildStore selects the record backend. The file backend is loaded from disk
// before the server accepts requests.
func buildStore(ctx context.Context, cfg config.Server, log *slog.Logger, m *metrics.Metrics) (recordStore, handler.Pinger, func(), error) {
	noop := func() {}

	switch cfg.Store {
	case config.StoreFile, "":
		fs := store.NewFile(cfg.DataFile, store.WithLogger(log), store.WithMetrics(m))
		n, err := fs.Load(ctx)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("load records from %s: %w", fs.Path(), err)
		}
		log.Info("records loaded", "path", fs.Path(), "count", n)
		return fs, nil, noop, nil

	case config.StoreMemory:
		return store.NewInMemory(), nil, noop, nil

	case config.StorePostgres:
		db, err := postgres.Open(ctx, postgres.Config{
			DSN:          cfg.Postgres.DSN,
			MaxOpenConns: cfg.Postgres.MaxOpenConns,
		})
		if err != nil {
			return nil, nil, noop, err
		}
		pg := store.NewPostgres(db, cfg.Postgres.Table)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, noop, err
		}
		return pg, db.PingContext, func() { _ = db.Close() }, nil

	case config.StoreRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, noop, err
		}
		rs := store.NewRedis(client.Client, cfg.Redis.Key, log)
		return rs, client.Health, func() { _ = client.Close() }, nil

	default:
		return nil, nil, noop, fmt.Errorf("unknown record store %q", cfg.Store)
	}
}

// buildAuditPublisher sends audit events to Kafka when brokers are configured
// and keeps them in memory otherwise.
func buildAuditPublisher(ctx context.Context, cfg config.Server, log *slog.Logger) (*publisher.Publisher, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		p := publisher.NewPublisher(auditmemory.NewInMemoryStore(), publisher.WithLogger(log))
		return p, func() { _ = p.Close() }, nil
	}

	sink, err := kafkaaudit.New(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
	if err != nil {
		return nil, func() {}, err
	}
	if err := sink.EnsureTopic(ctx, 1, 1); err != nil {
		sink.Close()
		return nil, func() {}, err
	}
	p := publisher.NewPublisher(sink,
		publisher.WithAsyncBuffer(cfg.Kafka.AuditBuffer),
		publisher.WithLogger(log),
	)
	return p, func() {
		_ = p.Close()
		sink.Close()
	}, nil
}
