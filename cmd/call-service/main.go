package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"conquest-backend/internal/config"
	intDatabase "conquest-backend/internal/database"
	"conquest-backend/internal/domain"
	pushHandler "conquest-backend/internal/handler/http/push"
	wsHandler "conquest-backend/internal/handler/ws"
	"conquest-backend/internal/middleware"
	"conquest-backend/internal/repository"
	"conquest-backend/internal/repository/cassandra"
	"conquest-backend/internal/repository/cockroach"
	redisRepo "conquest-backend/internal/repository/redis"
	"conquest-backend/internal/service/archive"
	"conquest-backend/internal/service/signaling"
	"conquest-backend/pkg/constants"
	apperrors "conquest-backend/pkg/errors"
	pkgDatabase "conquest-backend/pkg/database"
	"conquest-backend/pkg/logger"
	"conquest-backend/pkg/metrics"
	"conquest-backend/pkg/push"
)

func main() {
	// 1. Initialize logging
	logger.InitDefault()
	defer logger.Sync()

	cfg := config.Load()

	// 2. Connect to CockroachDB (call session records, player names).
	// A failed connection puts the service in limited mode: signaling still
	// works, history is not persisted.
	var cockroachDB *pkgDatabase.CockroachDB
	{
		var err error
		for attempt := 1; attempt <= 3; attempt++ {
			ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
			cockroachDB, err = pkgDatabase.NewCockroachDB(ctx, &cfg.Cockroach)
			cancel()
			if err == nil {
				break
			}
			logger.Warn("CockroachDB connection failed, retrying",
				zap.Int("attempt", attempt),
				zap.Error(err))
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
		if err != nil {
			logger.Warn("CockroachDB unavailable, running in limited mode", zap.Error(err))
			cockroachDB = nil
		} else {
			defer cockroachDB.Close()
			logger.Info("Connected to CockroachDB")
		}
	}

	// 3. Connect to Cassandra (transcript log), also optional
	var cassandraDB *pkgDatabase.CassandraDB
	{
		db, err := pkgDatabase.NewCassandraDB(&cfg.Cassandra)
		if err != nil {
			logger.Warn("Cassandra unavailable, transcripts will not be logged", zap.Error(err))
		} else {
			cassandraDB = db
			defer cassandraDB.Close()
			logger.Info("Connected to Cassandra")
		}
	}

	// 4. Connect to Redis with degraded mode support
	intDatabase.InitRedisMetrics()

	redisDB, err := intDatabase.NewRedisDB(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisDB.Close()

	if err := redisDB.HealthCheck(context.Background()); err != nil {
		logger.Warn("Redis unreachable, starting in degraded mode", zap.Error(err))
	} else {
		logger.Info("Connected to Redis")
	}
	redisDB.StartHealthCheck(context.Background(), 10*time.Second)

	// 5. Transcript archiver (object storage), optional
	var archiver signaling.Archiver
	{
		ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
		a, err := archive.NewTranscriptArchiver(ctx, &cfg.Archive)
		cancel()
		if err != nil {
			logger.Warn("Object storage unavailable, transcripts will not be archived", zap.Error(err))
		} else {
			archiver = a
			logger.Info("Transcript archiver ready", zap.String("bucket", cfg.Archive.Bucket))
		}
	}

	// 6. Initialize repositories
	var callRepo *cockroach.CallRepository
	var playerRepo *cockroach.PlayerRepository
	if cockroachDB != nil {
		callRepo = cockroach.NewCallRepository(cockroachDB.Pool)
		playerRepo = cockroach.NewPlayerRepository(cockroachDB.Pool)
	}

	var transcriptRepo *cassandra.TranscriptRepository
	if cassandraDB != nil {
		transcriptRepo = cassandra.NewTranscriptRepository(cassandraDB.Session)
	}

	presenceRepo := redisRepo.NewPresenceRepository(redisDB)
	pushTokenRepo := redisRepo.NewPushTokenRepository(redisDB)

	// 7. Push notifications
	pushProvider, err := push.NewProvider()
	if err != nil {
		logger.Fatal("Failed to initialize push provider", zap.Error(err))
	}
	pushService := push.NewService(pushProvider, pushTokenRepo)
	pushTokens := pushHandler.NewHandler(pushService)

	// 8. Metrics
	appMetrics := metrics.NewMetrics("call-service")
	prometheusMiddleware := middleware.NewPrometheusMiddleware(appMetrics)

	// 9. Signaling engine and websocket gateway. The gateway is the engine's
	// sender, so the engine is built first with a placeholder and the
	// gateway bound after.
	var store signaling.SessionStore
	if callRepo != nil || transcriptRepo != nil {
		store = repository.NewCallStore(callRepo, transcriptRepo)
	}

	var names signaling.NameResolver
	if playerRepo != nil {
		names = playerRepo
	}

	sender := &deferredSender{}
	engine := signaling.NewEngine(signaling.Config{
		Sender:      sender,
		Store:       store,
		Archiver:    archiver,
		Names:       names,
		Mirror:      presenceRepo,
		Notifier:    pushService,
		Metrics:     appMetrics,
		RingTimeout: cfg.RingTimeout,
	})
	defer engine.Close()

	gateway := wsHandler.NewCallGateway(engine, appMetrics)
	sender.bind(gateway)

	// 10. Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.SetTrustedProxies(nil)

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORSMiddleware())
	router.Use(prometheusMiddleware.Handler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "healthy",
			"service":        "call-service",
			"limited_mode":   cockroachDB == nil,
			"redis_degraded": redisDB.IsDegraded(),
			"time":           time.Now().UTC(),
		})
	})

	router.GET("/metrics", middleware.MetricsHandler())

	v1 := router.Group("/v1")
	{
		v1.GET("/calls/ws", gateway.ServeWS)
		v1.POST("/push/tokens", pushTokens.RegisterToken)
		v1.DELETE("/push/tokens/:participant_id", pushTokens.UnregisterAllTokens)
	}

	// Internal endpoints for other game services; fronted by the gateway's
	// network policy, not participant-reachable.
	internal := router.Group("/internal")
	{
		internal.POST("/calls/:participant_id/jam", jamHandler(engine))
	}

	// 11. Start server
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("Call service starting",
			zap.String("addr", addr),
			zap.String("ws_endpoint", "/v1/calls/ws"))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 12. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.GracefulShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	gateway.CloseAll()

	logger.Info("Server exited")
}

// jamHandler exposes forced call termination to other game systems.
func jamHandler(engine *signaling.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		participantID, err := uuid.Parse(c.Param("participant_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant_id"})
			return
		}

		if appErr := engine.Jam(c.Request.Context(), participantID); appErr != nil {
			status := http.StatusConflict
			if appErr.Code == apperrors.ErrCodeNotRegistered || appErr.Code == apperrors.ErrCodeNoSession {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": appErr.Message, "code": appErr.Code})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "jammed"})
	}
}

// deferredSender breaks the engine/gateway construction cycle. bind is
// called once during startup before any connection is served.
type deferredSender struct {
	target signaling.Sender
}

func (s *deferredSender) bind(target signaling.Sender) {
	s.target = target
}

func (s *deferredSender) Send(connectionID uuid.UUID, event *domain.ServerEvent) error {
	if s.target == nil {
		return apperrors.NotConnectedError()
	}
	return s.target.Send(connectionID, event)
}
