package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/adapters/cache/redis"
	grpchandler "github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/adapters/grpc/handler"
	httphandler "github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/adapters/http/handler"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/adapters/repository/postgres"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/adapters/storage/minio"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/client"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/compliance"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/document"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/user"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/worker"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/platform/auth"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/platform/config"
	pg "github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/platform/db/postgres"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/platform/logger"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/platform/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(effectiveConfigPath(*configPath))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server stopped with error", zap.Error(err))
	}
	zl.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	dbPool, err := pg.NewPool(ctx, cfg.Database, zl)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	location, err := compliance.LoadLocation(cfg.Compliance.Timezone)
	if err != nil {
		return err
	}

	store, err := minio.New(minio.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	}, zl)
	if err != nil {
		return err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return err
	}

	complianceOpts := []compliance.Option{
		compliance.WithLookAhead(cfg.Compliance.LookAheadDays),
		compliance.WithLocation(location),
		compliance.WithLogger(zl.Named("compliance")),
	}
	if cfg.Redis.Enabled() {
		cache, err := redis.New(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, zl)
		if err != nil {
			zl.Warn("notification cache disabled", zap.Error(err))
		} else {
			defer func() { _ = cache.Close() }()
			complianceOpts = append(complianceOpts, compliance.WithCache(cache, cfg.Redis.TTL))
		}
	}

	complianceSvc := compliance.NewService(postgres.NewContractRepository(dbPool), nil, complianceOpts...)

	txManager := pg.NewTransactionManager(dbPool)
	clientSvc := client.NewService(postgres.NewClientRepository(dbPool), nil, txManager,
		client.WithNotificationInvalidator(complianceSvc),
		client.WithLogger(zl.Named("client")),
	)
	workerSvc := worker.NewService(postgres.NewWorkerRepository(dbPool), nil, txManager,
		worker.WithNotificationInvalidator(complianceSvc),
		worker.WithLogger(zl.Named("worker")),
	)
	userSvc := user.NewService(postgres.NewUserRepository(dbPool), auth.NewBcryptHasher(0), nil)
	documentSvc := document.NewService(postgres.NewDocumentRepository(dbPool), store, nil,
		document.WithMaxSize(cfg.Storage.MaxUploadBytes),
		document.WithURLExpiry(cfg.Storage.PresignExpiry),
		document.WithLogger(zl.Named("document")),
	)

	grpcServer := server.New(cfg.Server.GRPCListenAddr, zl,
		grpchandler.NewRutHandler(),
		grpchandler.NewComplianceHandler(complianceSvc),
	)
	httpServer := server.NewHTTP(cfg.Server.HTTPListenAddr, httphandler.NewRouter(httphandler.Dependencies{
		Logger:         zl.Named("http"),
		Tokens:         auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		DB:             dbPool,
		Users:          userSvc,
		Clients:        clientSvc,
		Workers:        workerSvc,
		Documents:      documentSvc,
		Compliance:     complianceSvc,
		Location:       location,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	}), zl)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Run(gctx) })
	g.Go(func() error { return httpServer.Run(gctx) })
	return g.Wait()
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}
