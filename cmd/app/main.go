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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"giveaway-entry-backend/docs"
	"giveaway-entry-backend/internal/common/clock"
	"giveaway-entry-backend/internal/common/config"
	"giveaway-entry-backend/internal/common/logger"
	"giveaway-entry-backend/internal/common/metrics"
	"giveaway-entry-backend/internal/common/middleware"
	"giveaway-entry-backend/internal/features/giveaway/catalog"
	giveawayhttp "giveaway-entry-backend/internal/features/giveaway/delivery/http"
	"giveaway-entry-backend/internal/features/giveaway/repository"
	"giveaway-entry-backend/internal/features/giveaway/repository/memory"
	giveawayredis "giveaway-entry-backend/internal/features/giveaway/repository/redis"
	giveawayservice "giveaway-entry-backend/internal/features/giveaway/service"
	"giveaway-entry-backend/internal/platform/redis"
)

const serviceName = "giveaway-entry-backend"

// @title           Giveaway Entry API
// @version         1.0
// @description     Countdowns, share cooldowns and entry accrual for sponsored giveaways. All /api/v1 endpoints require init_data authentication.

// @BasePath  /api/v1

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name init_data
// @description Telegram Mini App init_data string for authentication

// @tag.name giveaways
// @tag.description Giveaway listing, status and countdowns

// @tag.name shares
// @tag.description Share cooldowns and history

// @tag.name share-sessions
// @tag.description Share flows: assert shares, then confirm to earn entries

// @tag.name admin
// @tag.description Finishing giveaways

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Debug)
	logger.Info().
		Str("version", "1.0.0").
		Bool("debug", cfg.Debug).
		Str("storage", cfg.StorageDriver).
		Msg("Starting Giveaway Entry Backend")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.Real{}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	stores, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer stores.close()

	giveaways, err := catalog.LoadFile(cfg.Catalog.SeedFile)
	if err != nil {
		logger.Fatal().Err(err).Str("seed_file", cfg.Catalog.SeedFile).Msg("Failed to load catalog")
	}
	if _, err := catalog.Seed(ctx, stores.giveaways, giveaways, logger.Component("catalog")); err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed catalog")
	}

	svc, sessions := giveawayservice.NewEntryService(giveawayservice.Deps{
		Repo:       stores.giveaways,
		Ledger:     stores.ledger,
		Clock:      clk,
		Randomizer: giveawayservice.NewRankRandomizer(cfg.Engine.RankSeed),
		Metrics:    collector,
		Logger:     logger.Component("entries"),
		Options: giveawayservice.Options{
			CooldownWindow:     cfg.CooldownWindow(),
			UrgentThreshold:    cfg.UrgentThreshold(),
			RankImprovementMax: cfg.Engine.RankImprovementMax,
		},
		SessionIdleTTL: cfg.Engine.SessionIdleTTL,
	})

	ticker := giveawayservice.NewTicker(stores.giveaways, sessions, clk, cfg.Engine.TickInterval, collector, logger.Component("ticker"))
	ticker.Start()

	httpLog := logger.Component("http")
	limiter := middleware.NewRateLimiter(middleware.PerMinute(cfg.RateLimit.SharesPerMinute, cfg.RateLimit.Burst), httpLog)
	defer limiter.Stop()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(httpLog))
	router.Use(middleware.Logger(httpLog))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", "init_data", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthHandler(stores))
	router.GET("/metrics", gin.WrapH(collector.Handler()))

	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")
	api.Use(middleware.TelegramInitData(cfg.Telegram.BotToken, cfg.Telegram.InitDataTTL, httpLog))

	handler := giveawayhttp.NewGiveawayHandler(svc, ticker, clk, httpLog)
	handler.RegisterRoutes(api, limiter.Middleware(), middleware.RequireAdmin(cfg.IsAdmin, httpLog))

	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// countdown streams stay open, so no write timeout
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// end countdown streams before waiting on open connections
	ticker.Stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

type backends struct {
	giveaways repository.GiveawayRepository
	ledger    repository.ShareLedgerStore
	redis     *redis.Client
}

func openStores(ctx context.Context, cfg *config.Config) (*backends, error) {
	if cfg.StorageDriver == config.StorageMemory {
		return &backends{
			giveaways: memory.NewGiveawayRepository(),
			ledger:    memory.NewShareLedger(),
		}, nil
	}

	client, err := redis.Open(ctx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("addr", cfg.RedisAddr()).Msg("Redis connection established")
	return &backends{
		giveaways: giveawayredis.NewGiveawayRepository(client.Client),
		ledger:    giveawayredis.NewShareLedger(client.Client),
		redis:     client,
	}, nil
}

func (s *backends) close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
}

func healthHandler(s *backends) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.redis != nil {
			if err := s.redis.Healthy(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unready",
					"error":   "redis unavailable",
					"details": err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	}
}
