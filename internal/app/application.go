package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"walletpay-backend/internal/config"
	"walletpay-backend/internal/handlers"
	"walletpay-backend/internal/middleware"
	"walletpay-backend/internal/relay"
	"walletpay-backend/pkg/logger"
)

// App wires the gateway HTTP surface: wallet pay routes, stored payment
// methods, the relay result sink, health, and metrics.
type App struct {
	cfg         *config.Config
	router      *gin.Engine
	server      *http.Server
	rateLimiter *middleware.RateLimitManager
	relay       *relay.Relay
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	frameRelay, err := relay.New("http://localhost:" + cfg.Port + "/api")
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:         cfg,
		router:      gin.New(),
		rateLimiter: middleware.NewRateLimitManager(ctx),
		relay:       frameRelay,
	}

	a.setupMiddleware()
	a.setupRoutes()

	a.server = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// Relay exposes the frame relay for collaborators that open redirect
// frames against this server.
func (a *App) Relay() *relay.Relay {
	return a.relay
}

func (a *App) setupMiddleware() {
	a.router.Use(logger.GinLogger())
	a.router.Use(gin.Recovery())
	a.router.Use(middleware.RequestIDMiddleware())
	a.router.Use(middleware.RateLimitMiddleware(a.cfg, a.rateLimiter))

	a.router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

func (a *App) setupRoutes() {
	walletPay := handlers.NewWalletPayHandler(a.cfg)
	paymentMethods := handlers.NewPaymentMethodsHandler(a.cfg)
	relayResults := handlers.NewRelayHandler(a.relay)

	api := a.router.Group("/api")
	{
		wp := api.Group("/wallet_pay")
		{
			wp.GET("/info", walletPay.Info)
			wp.POST("/start", walletPay.Start)
			wp.POST("/token", walletPay.Token)
			wp.POST("/relay", relayResults.Result)
		}

		pm := api.Group("/payment_methods")
		{
			pm.GET("/list", paymentMethods.List)
			pm.POST("/token", paymentMethods.Token)
		}
	}

	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if a.cfg.EnableMetrics {
		a.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// Run blocks serving HTTP until the server is shut down.
func (a *App) Run() error {
	logger.Info("Server starting", map[string]interface{}{
		"port":        a.cfg.Port,
		"environment": a.cfg.Environment,
	})

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops background workers.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.rateLimiter.Shutdown(); err != nil {
		logger.Error(err, "Rate limiter shutdown failed", nil)
	}
	return a.server.Shutdown(ctx)
}
