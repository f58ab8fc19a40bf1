package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"chiringuito/internal/config"
	"chiringuito/internal/db"
	"chiringuito/internal/httpserver"
	"chiringuito/internal/jobs"
	"chiringuito/internal/logging"
	"chiringuito/internal/media"
	menurepo "chiringuito/internal/repository/menu"
	orderrepo "chiringuito/internal/repository/order"
	orderlinerepo "chiringuito/internal/repository/orderline"
	menusvc "chiringuito/internal/service/menu"
	ordersvc "chiringuito/internal/service/order"
	"chiringuito/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	logger = logger.Named("api")
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	var (
		sessions session.Store
		purger   jobs.SessionPurger
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis ping failed", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		sessions = session.NewRedisStore(client, cfg.Session.TTL, logger)
	} else {
		mem := session.NewMemoryStore(cfg.Session.TTL)
		sessions, purger = mem, mem
		logger.Info("using in-memory session store")
	}

	var images media.Resolver = media.Passthrough{}
	if cfg.Media.Endpoint != "" {
		resolver, err := media.NewMinio(cfg.Media, logger)
		if err != nil {
			logger.Fatal("init media storage", zap.Error(err))
		}
		images = resolver
	}

	menuRepo := menurepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	lineRepo := orderlinerepo.NewPostgres(dbpool, logger)

	menuService := menusvc.New(menuRepo, images, logger)
	orderService := ordersvc.New(db.NewTransactor(dbpool), menuRepo, orderRepo, lineRepo, ordersvc.Limits{
		MaxTotalItems:      cfg.Cart.MaxTotalItems,
		MaxLineQuantity:    cfg.Cart.MaxLineQuantity,
		EnforceCapOnUpdate: cfg.Cart.EnforceCapOnUpdate,
	}, logger)

	scheduler, err := jobs.NewScheduler(orderRepo, purger, cfg.Sweeper, logger)
	if err != nil {
		logger.Fatal("init scheduler", zap.Error(err))
	}
	scheduler.Start()

	gin.SetMode(gin.ReleaseMode)
	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		DB:       dbpool,
		Sessions: sessions,
		MenuSvc:  menuService,
		OrderSvc: orderService,
		Session: httpserver.SessionOptions{
			CookieName: cfg.Session.CookieName,
			Secure:     cfg.Session.CookieSecure,
			TTL:        cfg.Session.TTL,
		},
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
	if err := scheduler.Stop(); err != nil {
		logger.Error("stop scheduler", zap.Error(err))
	}
}
