package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/pronoelite/pronoelite-api/internal/billing"
	"github.com/pronoelite/pronoelite-api/internal/config"
	"github.com/pronoelite/pronoelite-api/internal/database"
	"github.com/pronoelite/pronoelite-api/internal/handler"
	"github.com/pronoelite/pronoelite-api/internal/identity"
	"github.com/pronoelite/pronoelite-api/internal/livematch"
	"github.com/pronoelite/pronoelite-api/internal/logger"
	"github.com/pronoelite/pronoelite-api/internal/middleware"
	"github.com/pronoelite/pronoelite-api/internal/repository"
	"github.com/pronoelite/pronoelite-api/internal/router"
	"github.com/pronoelite/pronoelite-api/internal/service"
	"github.com/pronoelite/pronoelite-api/internal/settlement"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.Dialect(), cfg.DSN())
	if err != nil {
		log.Fatal("database", zap.String("driver", string(cfg.Dialect())), zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting and webhook dedupe disabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		defer rdb.Close()
	}

	pub, err := service.NewPublisher(cfg.EventsBackend, cfg.RabbitMQURL, cfg.EventsQueue, cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		log.Fatal("events", zap.Error(err))
	}
	defer pub.Close()
	events := service.NewEvents(pub, log)

	// repositories
	tips := repository.NewTipRepo(db)
	users := repository.NewUserRepo(db)

	// collaborators
	var provider identity.Provider
	if g := identity.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL); g != nil {
		provider = g
	} else {
		log.Warn("google login not configured")
	}
	var payments billing.Payments
	if p := billing.NewStripePayments(cfg.StripeSecretKey, cfg.StripePriceID); p != nil {
		payments = p
	} else {
		log.Warn("stripe not configured")
	}
	feed := livematch.NewFeed(cfg.SportsAPIURL, cfg.SportsAPIKey, cfg.SportsAPITimeout)
	live := livematch.NewStore()

	// handlers
	tipH := handler.NewTipHandler(tips, events, log)
	authH := handler.NewAuthHandler(cfg, provider, identity.NewProvisioner(users, log), log)
	userH := handler.NewUserHandler(users, log)
	historyH := handler.NewHistoryHandler(tips, log)
	matchH := handler.NewMatchHandler(tipH, feed, live, settlement.NewAdvisor(log))
	liveH := handler.NewLiveMatchHandler(live)
	payH := handler.NewPaymentHandler(cfg, payments,
		billing.NewService(users, billing.NewRedisDeduper(rdb), events, log), users, log)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler(log)
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(middleware.RequestLogger(log))

	limiter := middleware.NewTokenBucket(cfg.RateLimit, rdb, log)
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, authH, userH, cfg.JWTSecret)
	router.RegisterTips(e, tipH, cfg.JWTSecret, limiter)
	router.RegisterHistory(e, historyH, limiter)
	router.RegisterMatches(e, matchH, cfg.JWTSecret, limiter)
	router.RegisterLiveMatches(e, liveH, limiter)
	router.RegisterPayment(e, payH, cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("driver", string(cfg.Dialect())))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
