package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/tailor-field/configurator/internal/handlers"
	"github.com/tailor-field/configurator/internal/platform/config"
	pfirestore "github.com/tailor-field/configurator/internal/platform/firestore"
	"github.com/tailor-field/configurator/internal/platform/idempotency"
	"github.com/tailor-field/configurator/internal/platform/jobs"
	"github.com/tailor-field/configurator/internal/platform/observability"
	"github.com/tailor-field/configurator/internal/repositories"
	firestoreRepo "github.com/tailor-field/configurator/internal/repositories/firestore"
	"github.com/tailor-field/configurator/internal/repositories/memory"
	"github.com/tailor-field/configurator/internal/services"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(cfg.Observability.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("configurator")

	buildInfo := buildInfoFromEnv(startedAt)
	probes := make([]repositories.DependencyProbe, 0, 2)

	catalogDeps := services.CatalogProviderDeps{
		FetchTimeout: cfg.Catalog.FetchTimeout,
		Currency:     cfg.Measurement.Currency,
	}
	if cfg.Catalog.UseSampleCatalog {
		catalogDeps.Samples = memory.NewSampleCatalog(cfg.Measurement.Currency)
	}

	var firestoreProvider *pfirestore.Provider
	if cfg.Firestore.Enabled() {
		firestoreProvider = pfirestore.NewProvider(cfg.Firestore)
		defer func() {
			if err := firestoreProvider.Close(); err != nil {
				logger.Warn("firestore close error", zap.Error(err))
			}
		}()

		clothingTypes, err := firestoreRepo.NewClothingTypeRepository(firestoreProvider, cfg.Firestore.ClothingTypesCollection)
		if err != nil {
			logger.Fatal("failed to initialise clothing type repository", zap.Error(err))
		}
		catalogDeps.ClothingTypes = clothingTypes

		collection := cfg.Firestore.ClothingTypesCollection
		probes = append(probes, repositories.DependencyProbe{
			Name: "firestore",
			Probe: func(ctx context.Context) error {
				return firestoreProvider.Ping(ctx, collection)
			},
		})
	} else {
		logger.Info("firestore catalog disabled; serving sample products only")
	}

	catalog, err := services.NewUnifiedCatalogProvider(catalogDeps)
	if err != nil {
		logger.Fatal("failed to initialise catalog provider", zap.Error(err))
	}
	if catalogDeps.Samples != nil {
		probes = append(probes, repositories.DependencyProbe{
			Name: "sampleCatalog",
			Probe: func(ctx context.Context) error {
				products, err := catalog.ListProducts(ctx)
				if err != nil {
					return err
				}
				if len(products) == 0 {
					return errors.New("no products available")
				}
				return nil
			},
		})
	}

	var checkout services.CheckoutPublisher
	if cfg.Checkout.Enabled() {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.Checkout.ProjectID, pubsubClientOptions(cfg.Checkout)...)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}()
		topic := pubsubClient.Topic(cfg.Checkout.TopicID)
		defer topic.Stop()

		publisher, err := jobs.NewPubSubCheckoutPublisher(topic)
		if err != nil {
			logger.Fatal("failed to initialise checkout publisher", zap.Error(err))
		}
		checkout = publisher

		probes = append(probes, repositories.DependencyProbe{
			Name: "checkoutTopic",
			Probe: func(ctx context.Context) error {
				exists, err := topic.Exists(ctx)
				if err != nil {
					return err
				}
				if !exists {
					return fmt.Errorf("topic %s not found", topic.ID())
				}
				return nil
			},
		})
	} else {
		logger.Warn("checkout topic not configured; submissions will be rejected")
	}

	sessionService, err := services.NewSessionService(services.SessionServiceDeps{
		Catalog:  catalog,
		Checkout: checkout,
		Defaults: services.ConfiguratorDefaults{
			StandardSize:    cfg.Measurement.DefaultSize,
			FitType:         cfg.Measurement.DefaultFit,
			CustomSurcharge: cfg.Measurement.CustomSurcharge,
			Currency:        cfg.Measurement.Currency,
		},
		TTL:         cfg.Sessions.TTL,
		MaxSessions: cfg.Sessions.MaxSessions,
		Clock:       time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise session service", zap.Error(err))
	}

	idempotencyStore := idempotency.NewMemoryStore()
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	var cleanupWG sync.WaitGroup
	if cfg.Idempotency.CleanupInterval > 0 {
		cleanupWG.Add(1)
		go func() {
			defer cleanupWG.Done()
			ticker := time.NewTicker(cfg.Idempotency.CleanupInterval)
			defer ticker.Stop()
			cleanupLogger := logger.Named("idempotency")
			for {
				select {
				case <-ticker.C:
					removed, err := idempotencyStore.CleanupExpired(cleanupCtx, time.Now(), 0)
					if err != nil {
						cleanupLogger.Error("idempotency cleanup error", zap.Error(err))
						continue
					}
					if removed > 0 {
						cleanupLogger.Debug("idempotency cleanup removed records", zap.Int("count", removed))
					}
				case <-cleanupCtx.Done():
					return
				}
			}
		}()
	}

	idempotencyOpts := []idempotency.MiddlewareOption{
		idempotency.WithTTL(cfg.Idempotency.TTL),
		idempotency.WithHeader(cfg.Idempotency.Header),
		idempotency.WithClock(time.Now),
	}
	if cfg.Idempotency.RequireKey {
		idempotencyOpts = append(idempotencyOpts, idempotency.WithRequiredKey())
	}
	configuratorOpts := []handlers.ConfiguratorOption{
		handlers.WithSubmitIdempotency(idempotencyStore, idempotencyOpts...),
	}
	if cfg.Sessions.CreateLimit > 0 {
		configuratorOpts = append(configuratorOpts, handlers.WithSessionCreateLimit(cfg.Sessions.CreateLimit, cfg.Sessions.CreateWindow, time.Now))
	}
	configuratorHandlers := handlers.NewConfiguratorHandlers(sessionService, catalog, configuratorOpts...)

	healthOpts := []handlers.HealthOption{handlers.WithHealthBuildInfo(buildInfo)}
	if systemService, err := newSystemService(probes, buildInfo); err != nil {
		logger.Warn("health: system service init failed", zap.Error(err))
	} else {
		healthOpts = append(healthOpts, handlers.WithHealthSystemService(systemService))
	}
	healthHandlers := handlers.NewHealthHandlers(healthOpts...)

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(cfg.Observability.TraceProjectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(),
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithConfiguratorRoutes(configuratorHandlers.Routes),
	)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("configurator api listening",
			zap.Bool("sampleCatalog", catalogDeps.Samples != nil),
			zap.Bool("firestoreCatalog", catalogDeps.ClothingTypes != nil),
			zap.Bool("checkout", checkout != nil),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	cleanupCancel()
	cleanupWG.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildInfoFromEnv(started time.Time) services.BuildInfo {
	version := strings.TrimSpace(os.Getenv("CONFIGURATOR_BUILD_VERSION"))
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(os.Getenv("CONFIGURATOR_BUILD_COMMIT_SHA"))
	if commit == "" {
		commit = "unknown"
	}
	environment := strings.TrimSpace(os.Getenv("CONFIGURATOR_ENVIRONMENT"))
	if environment == "" {
		environment = "local"
	}
	return services.BuildInfo{
		Version:     version,
		CommitSHA:   commit,
		Environment: environment,
		StartedAt:   started,
	}
}

func newSystemService(probes []repositories.DependencyProbe, build services.BuildInfo) (services.SystemService, error) {
	healthRepo, err := repositories.NewProbeHealthRepository(probes, time.Now)
	if err != nil {
		return nil, err
	}
	return services.NewSystemService(services.SystemServiceDeps{
		HealthRepository: healthRepo,
		Clock:            time.Now,
		Build:            build,
	})
}

func pubsubClientOptions(cfg config.CheckoutConfig) []option.ClientOption {
	host := strings.TrimSpace(cfg.EmulatorHost)
	if host == "" {
		return nil
	}
	return []option.ClientOption{
		option.WithoutAuthentication(),
		option.WithEndpoint(host),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	}
}
