package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"example.com/mergington/internal/api"
	"example.com/mergington/internal/config"
	"example.com/mergington/internal/domain"
	"example.com/mergington/internal/observability"
	"example.com/mergington/internal/outbox"
	httptransport "example.com/mergington/internal/transport/http"
)

type eventWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
	Close() error
}

// application holds everything serve starts and later stops.
type application struct {
	handler    http.Handler
	dispatcher *outbox.Dispatcher
	producer   eventWriter
}

func newServeCmd(load func(*cobra.Command) (config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			logger, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func buildApplication(cfg config.Config, logger *zap.Logger) (*application, error) {
	activities, err := loadCatalogue(cfg)
	if err != nil {
		return nil, err
	}
	registry, err := domain.NewRegistry(activities, domain.WithEmailDomain(cfg.Registry.EmailDomain))
	if err != nil {
		return nil, err
	}

	box := outbox.New(cfg.Outbox.BufferSize)
	var producer eventWriter = outbox.LogWriter{Logger: logger.Named("events")}
	if len(cfg.Kafka.Brokers) > 0 {
		producer = outbox.NewKafkaProducer(cfg.Kafka.Brokers)
	}
	dispatcher := outbox.NewDispatcher(box, producer, outbox.DispatcherConfig{
		Topic:        cfg.Kafka.Topic,
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
	}, logger.Named("outbox"))

	service := domain.NewService(registry, box, logger.Named("registry"))
	handler := api.NewHandler(service, logger.Named("api"))

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	return &application{
		handler: httptransport.Chain(mux,
			httptransport.Recover(logger),
			httptransport.RequestLogger(logger.Named("http")),
			httptransport.CORS(cfg.HTTP.CORSOrigin),
		),
		dispatcher: dispatcher,
		producer:   producer,
	}, nil
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	app, err := buildApplication(cfg, logger)
	if err != nil {
		return err
	}

	dispatchCtx, cancelDispatch := context.WithCancel(context.Background())
	go app.dispatcher.Start(dispatchCtx)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTP.Address,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}, app.handler, logger)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("activities service listening",
			zap.String("address", cfg.HTTP.Address),
			zap.Strings("kafka_brokers", cfg.Kafka.Brokers))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case runErr = <-serveErr:
		logger.Error("server error", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}

	// Stop the dispatcher only after in-flight requests have recorded their events.
	cancelDispatch()
	app.dispatcher.Wait()
	if err := app.producer.Close(); err != nil {
		logger.Warn("closing event producer", zap.Error(err))
	}
	return runErr
}
