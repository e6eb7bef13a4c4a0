package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/config"
	impl_accounts "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/impl/gateway/accounts"
	impl_messaging "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/impl/gateway/messaging"
	impl_persistence "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/impl/gateway/persistence"
	impl_platform "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/impl/gateway/platform"
	impl_rates "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/impl/gateway/rates"
	impl_httpapi "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/impl/httpapi"
	impl_transfer "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/impl/usecase/transfer"
	impl_worker "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/impl/worker"
	"github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configFile := flag.String("config", "", "optional config file (yaml, json or .env)")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "transfers: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	log, sync, err := logger.New(cfg.IsProduction())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := impl_persistence.Open(impl_persistence.DBConfig{Driver: cfg.DBDriver, DSN: cfg.DBDSN})
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	clock := impl_platform.SystemClock{}
	ids := impl_platform.UUIDGenerator{}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := impl_platform.NewPrometheusTransferMetrics(registry)

	ledger := impl_persistence.NewTransferLedger(db, ids, clock, cfg.Producer)
	httpClient := &http.Client{Transport: http.DefaultTransport}

	execute := impl_transfer.NewExecuteTransferUsecaseImpl(
		impl_accounts.NewHTTPClient(cfg.AccountsBaseURL, httpClient),
		impl_rates.NewHTTPClient(cfg.RatesBaseURL, httpClient),
		ledger,
		clock,
		ids,
		metrics,
		log.Named("orchestrator"),
		impl_transfer.Options{
			CallTimeout:          cfg.CallTimeout,
			ReplayWait:           cfg.ReplayWait,
			ReplayPollInterval:   cfg.ReplayPollInterval,
			CompensationAttempts: cfg.CompensationAttempts,
			LedgerWriteAttempts:  cfg.LedgerWriteAttempts,
			RetryBackoff:         cfg.RetryBackoff,
		},
	)
	query := impl_transfer.NewQueryTransfersUsecaseImpl(ledger)

	handler := impl_httpapi.NewTransferHandler(execute, query, log.Named("http"))
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           impl_httpapi.NewRouter(handler, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), log.Named("http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if len(cfg.KafkaBrokers) > 0 {
		publisher := impl_messaging.NewKafkaPublisher(impl_messaging.KafkaConfig{
			Brokers:      cfg.KafkaBrokers,
			WriteTimeout: cfg.CallTimeout,
		}, log.Named("kafka"))
		defer publisher.Close()

		relay := impl_worker.NewOutboxRelay(
			impl_persistence.NewOutboxRepository(db, clock),
			publisher,
			impl_worker.OutboxRelayConfig{
				Topic:        cfg.KafkaTopic,
				BatchSize:    cfg.OutboxBatchSize,
				PollInterval: cfg.OutboxPollInterval,
			},
			log.Named("outbox"),
		)
		g.Go(func() error { return relay.Run(gctx) })
	} else {
		log.Warn("no kafka brokers configured, outbox relay disabled")
	}

	return g.Wait()
}
