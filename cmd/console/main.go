package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/app"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/assignment"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/auth"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/authstate"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/credential"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/directory"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/navigation"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/observability"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/platform/cache"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/roles"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/users"
)

var authStates = []string{
	authstate.StateAnonymous.String(),
	authstate.StateNoSession.String(),
	authstate.StateSessionActive.String(),
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	kv, closeKV, err := openRecordStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open auth record store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeKV()

	validator := credential.NewValidator()
	store := authstate.NewStore(kv, validator, authstate.WithLogger(logger))
	defer store.Close()

	dirClient := directory.NewClient(cfg.DirectoryURL, cfg.DirectoryTimeout, directory.TokenFunc(func() string {
		return store.Snapshot().Credential
	}))

	metrics := observability.NewMetrics()
	userService := users.NewService(dirClient, logger)

	metrics.SetAuthState(authstate.StateAnonymous.String(), authStates...)
	unsubscribe := store.Subscribe(func(snap authstate.Snapshot) {
		state := snap.State()
		metrics.SetAuthState(state.String(), authStates...)
		if state == authstate.StateAnonymous {
			userService.Reset()
		}
	})
	defer unsubscribe()

	if err := store.Hydrate(ctx); err != nil {
		logger.Warn("hydrate auth state", slog.Any("error", err))
	}

	catalogue, err := rbac.LoadCatalogue(cfg.RolesConfig)
	if err != nil {
		logger.Error("load role catalogue", slog.Any("error", err))
		os.Exit(1)
	}
	menu, err := navigation.LoadFile(cfg.NavConfig)
	if err != nil {
		logger.Error("load navigation menu", slog.Any("error", err))
		os.Exit(1)
	}

	rbacMiddleware := rbac.Middleware{
		Source:    store,
		Validator: validator,
		Logger:    logger,
		Recorder:  metrics,
		LoginPath: rbac.LoginPath,
		Bootstrap: rbac.BootstrapPath,
	}

	refresher := authstate.NewRefresher(store, dirClient, logger)
	authService := auth.NewService(dirClient, store, refresher, validator, cfg.HomePath)
	authHandler := auth.NewHandler(logger, authService, rbacMiddleware)

	workflow := assignment.NewWorkflow(assignment.Config{
		Catalogue:   catalogue,
		Updater:     dirClient,
		Refetcher:   userService,
		Session:     store,
		Recorder:    metrics,
		Logger:      logger,
		Concurrency: cfg.AssignConcurrency,
	})
	usersHandler := users.NewHandler(logger, userService, workflow, store, rbacMiddleware)
	rolesHandler := roles.NewHandler(logger, roles.NewService(catalogue, workflow), rbacMiddleware)
	navigationHandler := navigation.NewHandler(menu, store, rbacMiddleware)
	permissionsHandler := rbac.NewPermissionsHandler(logger, rbacMiddleware)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Source:             store,
		RBACMiddleware:     rbacMiddleware,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		RolesHandler:       rolesHandler,
		NavigationHandler:  navigationHandler,
		PermissionsHandler: permissionsHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("profile", cfg.ConsoleProfile))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func openRecordStore(ctx context.Context, cfg *app.Config, logger *slog.Logger) (authstate.KV, func(), error) {
	if cfg.EffectiveStoreBackend() == app.StoreMemory {
		logger.Warn("auth record kept in memory; sessions will not survive a restart")
		return authstate.NewMemoryKV(), func() {}, nil
	}
	client, err := cache.Dial(ctx, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, nil, err
	}
	return authstate.NewRedisKV(client, cfg.ConsoleProfile), closeRedis(client, logger), nil
}

func closeRedis(client *redis.Client, logger *slog.Logger) func() {
	return func() {
		if err := client.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}
}
