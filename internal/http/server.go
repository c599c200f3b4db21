package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/spasuite/sms-inbound/internal/config"
	"github.com/spasuite/sms-inbound/internal/http/middleware"
	"github.com/spasuite/sms-inbound/internal/kafka"
	"github.com/spasuite/sms-inbound/internal/logger"
	"github.com/spasuite/sms-inbound/internal/metrics"
	"github.com/spasuite/sms-inbound/internal/repository"
	"github.com/spasuite/sms-inbound/internal/service/autorespond"
	"github.com/spasuite/sms-inbound/internal/service/inbound"
	"github.com/spasuite/sms-inbound/internal/service/optout"
)

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, mysqlDB, clickhouseDB *sqlx.DB, rds *redis.Client, producer *kafka.Producer) *Server {
	// repos (MySQL)
	sysCfgRepo := repository.NewSystemConfigRepository(mysqlDB)
	usersRepo := repository.NewUsersRepository(mysqlDB)

	// repos (ClickHouse)
	respLogRepo := repository.NewResponseLogRepository(clickhouseDB)

	// services
	optOutSvc := optout.NewService(sysCfgRepo, usersRepo, logger.Log)
	autoSvc := autorespond.NewService(
		cfg.AutoRespond,
		autorespond.NewRedisFlowStore(rds),
		respLogRepo,
		mysqlDB.PingContext,
		logger.Log,
	)
	pipeline := inbound.NewPipeline(
		optOutSvc,
		autoSvc,
		inbound.NewKafkaForwarder(producer),
		respLogRepo,
		logger.Log,
	)

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// the provider must always reach the webhook, so only the operator-facing
	// simulation endpoint is rate limited
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          rds,
		RPS:            cfg.RateLimit.RPS,
		KeyPrefix:      "rl:sms:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	registerWebhookRoutes(e, pipeline)

	api := e.Group("/api/sms-auto-respond")
	api.POST("/test", testHandler(pipeline), rlMW)
	api.GET("/health", healthHandler(autoSvc))
	api.GET("/config", getConfigHandler(autoSvc))
	api.PUT("/config", updateConfigHandler(autoSvc))
	api.PUT("/phone-numbers", updatePhoneNumbersHandler(autoSvc))
	api.GET("/stats", statsHandler(autoSvc))
	api.GET("/conversation-flows", listFlowsHandler(autoSvc))
	api.POST("/conversation-flows", createFlowHandler(autoSvc))
	api.PUT("/conversation-flows", updateFlowHandler(autoSvc))
	api.DELETE("/conversation-flows/:id", deleteFlowHandler(autoSvc))
	api.GET("/opt-outs/:phone", optOutStatusHandler(optOutSvc))

	return &Server{e: e}
}

// registerWebhookRoutes mounts the provider callback on its primary path and
// every legacy alias.
func registerWebhookRoutes(e *echo.Echo, pipeline *inbound.Pipeline) {
	h := webhookHandler(pipeline)

	e.POST("/api/sms-auto-respond/webhook", h)
	for _, alias := range webhookAliases {
		e.POST(alias, h)
	}

	// readiness probe for configuring the provider console
	e.GET("/api/sms-auto-respond/webhook", webhookProbeHandler())
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
