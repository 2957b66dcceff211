package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/storelane/fulfillment/internal/application/catalog"
	appcustomer "github.com/storelane/fulfillment/internal/application/customer"
	"github.com/storelane/fulfillment/internal/application/fulfillment"
	"github.com/storelane/fulfillment/internal/application/stock"
	"github.com/storelane/fulfillment/internal/infrastructure/gateway"
	httptransport "github.com/storelane/fulfillment/internal/infrastructure/http"
	"github.com/storelane/fulfillment/internal/infrastructure/id"
	"github.com/storelane/fulfillment/internal/infrastructure/mysql"
	"github.com/storelane/fulfillment/internal/pkg/config"
	"github.com/storelane/fulfillment/internal/pkg/logging"
	"github.com/storelane/fulfillment/internal/pkg/metrics"
)

func main() {
	app := &cli.App{
		Name:  "fulfillment",
		Usage: "order fulfillment service",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run database migrations and start the HTTP server",
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "run database migrations and exit",
				Action: runMigrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		zap.S().Fatal(err)
	}
}

func runMigrate(*cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = logger.Sync() }()

	store, err := mysql.Open(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		return err
	}
	logger.Info("migrations_applied")
	return nil
}

func runServe(*cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	store, err := mysql.Open(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		return err
	}

	workflows := metrics.NewWorkflows(prometheus.DefaultRegisterer)
	ids := id.NewUUIDGenerator()

	fulfillmentService := fulfillment.NewService(store, stock.NewLedger(), gateway.NewSimulator(), ids, workflows)
	catalogService := catalog.NewService(store, ids)
	customerService := appcustomer.NewService(store, ids)

	handler := httptransport.NewHandler(fulfillmentService, catalogService, customerService)
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http_server_start",
			zap.String("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error",
				zap.Error(err),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
		return err
	}
	logger.Info("http_server_stopped")
	return nil
}
