package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet_connector/internal/app/port"
	"wallet_connector/internal/app/service"
	"wallet_connector/internal/infrastructure/configloader"
	"wallet_connector/internal/infrastructure/logsink"
	clientprovider "wallet_connector/internal/infrastructure/network/client"
	networkdefinition "wallet_connector/internal/infrastructure/network/definition"
	"wallet_connector/internal/infrastructure/qrmodal"
	"wallet_connector/internal/infrastructure/restapi"
	"wallet_connector/internal/infrastructure/signbridge"
	"wallet_connector/internal/infrastructure/storage"
	"wallet_connector/internal/pkg/logger"
	"wallet_connector/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	slogzap "github.com/samber/slog-zap/v2"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

const userAgent = "wallet_connector"

func main() {
	// Bootstrap logger until the configured one exists.
	bootLog := logrus.New()
	bootLog.SetFormatter(&logrus.JSONFormatter{})
	bootLog.SetOutput(os.Stdout)

	cfgPath := getEnv("CONFIG_PATH", "config/config.yml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		bootLog.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := newZapLogger(cfg.IsDevelopment())
	if err != nil {
		bootLog.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	slogLevel, ok := logger.ParseLevel(cfg.Logging.Level)
	if !ok {
		bootLog.Warnf("Invalid log level in config: %s. Defaulting to INFO.", cfg.Logging.Level)
	}
	logger.SetHandler(slogzap.Option{Level: slogLevel, Logger: zapLogger}.NewZapHandler())

	m := metrics.New(prometheus.DefaultRegisterer)

	sink := logsink.NewClient(
		cfg.Logging.Sink.BaseURL,
		cfg.Logging.Sink.APIKey,
		cfg.Logging.Sink.Hostname,
		time.Duration(cfg.Logging.Sink.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
	)
	appLogger := logger.NewRemoteLogger(logger.NewSlogAdapter(), sink, logger.RemoteOptions{
		App:         cfg.Logging.Sink.App,
		Client:      cfg.Logging.Sink.App,
		UserAgent:   userAgent,
		Development: cfg.IsDevelopment(),
	}, m)
	defer appLogger.Close()

	appLogger.Info("Configuration loaded", "path", cfgPath, "environment", cfg.Logging.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.Storage.Path)
	if err != nil {
		fatal(appLogger, "Failed to open local storage", "path", cfg.Storage.Path, "error", err)
	}
	defer store.Close()

	providers := networkdefinition.NewDefaultRegistry(cfg.RPC.BaseURL, cfg.WalletConnect.ProjectID)
	rpcClients := clientprovider.NewRPCClientProvider(
		time.Duration(cfg.RPC.TimeoutSeconds)*time.Second,
		cfg.RPC.RequestsPerSecond,
		appLogger,
	)
	defer rpcClients.Close()

	kadena := clientprovider.NewKadenaBalanceAdapter(cfg.Kadena.MainnetAPIRoot, cfg.Kadena.TestnetAPIRoot, appLogger, m)
	balances := clientprovider.NewRPCBalanceClient(providers, rpcClients, map[string]port.ChainBalanceAdapter{
		clientprovider.NamespaceKadena: kadena,
	}, appLogger, m)
	appLogger.Info("Balance client initialized", "providers", len(providers.All()))

	modal := qrmodal.New(appLogger)
	factory := signbridge.NewFactory(cfg.WalletConnect.BridgeURL, cfg.WalletConnect.Origin, appLogger)

	sessions := service.NewSessionContext(factory, modal, store, balances, appLogger, m, service.SessionContextConfig{
		ProjectID:       cfg.WalletConnect.ProjectID,
		DefaultRelayURL: cfg.WalletConnect.RelayURL,
		DefaultChains:   cfg.WalletConnect.DefaultChains,
		Origin:          cfg.WalletConnect.Origin,
		Metadata:        cfg.WalletConnect.Metadata,
	})
	go sessions.Init(ctx)

	formatter := service.NewTransactionFormatter(balances, appLogger)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := restapi.SetupRouter(
		restapi.NewSessionHandler(ctx, sessions, modal, appLogger),
		restapi.NewTransactionHandler(formatter),
		cfg.Server.CORSAllowedOrigins,
		prometheus.DefaultGatherer,
		appLogger,
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.Info("Starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(appLogger, "Failed to start HTTP server", "error", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutdown signal received, stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server forced to shutdown", "error", err)
	} else {
		appLogger.Info("HTTP server stopped")
	}
}

func newZapLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// fatal ships a fatal line, waits for it to leave and exits.
func fatal(l *logger.RemoteLogger, msg string, args ...any) {
	l.Fatal(msg, args...)
	l.Close()
	os.Exit(1)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
