package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/razorpay"
	"storefront/internal/store"
)

const shutdownTimeout = 10 * time.Second

func runServe(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var gateway checkout.PaymentGateway
	if cfg.Razorpay.Configured() {
		gateway = razorpay.NewClient(razorpay.Config{
			KeyID:     cfg.Razorpay.KeyID,
			KeySecret: cfg.Razorpay.KeySecret,
			BaseURL:   cfg.Razorpay.BaseURL,
			Timeout:   cfg.Razorpay.Timeout,
		})
		log.Info("razorpay configured", "base_url", cfg.Razorpay.BaseURL)
	} else {
		log.Warn("razorpay not configured, orders are created without payment intents")
	}

	svc := checkout.NewService(st, gateway, checkout.Config{
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
	}, log)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.AdminJWTSecret == "" {
		log.Warn("ADMIN_JWT_SECRET not set, admin routes are open")
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Store:         st,
		Orders:        svc,
		Logger:        log,
		AdminSecret:   cfg.AdminJWTSecret,
		CORSOrigins:   cfg.CORSOrigins,
		ExposeDetails: !cfg.Production(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore connects to MongoDB, or falls back to an in-memory store when
// MONGO_URI is empty.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (store.Store, func(), error) {
	if cfg.MongoURI == "" {
		log.Warn("MONGO_URI not set, using in-memory store")
		return store.NewMemory(), func() {}, nil
	}

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	db := client.Database(cfg.DBName)
	log.Info("mongodb connected", "database", db.Name())

	if err := database.EnsureIndexes(ctx, db, log); err != nil {
		log.Warn("index warning", "err", err)
	}

	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Warn("mongodb disconnect", "err", err)
		}
	}
	return database.NewMongoStore(db), closeFn, nil
}
