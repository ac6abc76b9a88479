// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"attendance-service/internal/audit"
	"attendance-service/internal/config"
	"attendance-service/internal/db"
	attendanceHandler "attendance-service/internal/handlers/attendance"
	sessionHandler "attendance-service/internal/handlers/session"
	wsHandler "attendance-service/internal/handlers/ws"
	"attendance-service/internal/middleware"
	"attendance-service/internal/repository/postgres"
	"attendance-service/internal/repository/redisstore"
	attendanceUsecase "attendance-service/internal/service/attendance"
	credentialUsecase "attendance-service/internal/service/credential"
	sessionUsecase "attendance-service/internal/service/session"
	"attendance-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	http   *http.Server
	pool   *pgxpool.Pool
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.pool = pool

	if err := db.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	attendanceRepo := postgres.NewAttendanceRepository(dbWrapper)
	credentialStore := redisstore.NewCredentialStore(redisClient)

	// ----- Shared engine state -----
	trail := audit.NewTrail()
	hub := websocket.NewHub(logger)

	// ----- Services (Usecases) -----
	credentialService := credentialUsecase.NewCredentialService(credentialStore, sessionRepo, logger)
	sessionService := sessionUsecase.NewSessionService(sessionRepo, attendanceRepo, trail, logger)
	attendanceService := attendanceUsecase.NewAttendanceService(
		sessionRepo,
		attendanceRepo,
		credentialService,
		trail,
		hub,
		logger,
	)

	// ----- Handlers -----
	attendanceHandlerInst := attendanceHandler.NewAttendanceHandler(attendanceService)
	sessionHandlerInst := sessionHandler.NewSessionHandler(sessionService, credentialService, attendanceService)
	wsHandlerInst := wsHandler.NewWSHandler(hub, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(s.cfg.JWTSecret)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		AttendanceHandler: attendanceHandlerInst,
		SessionHandler:    sessionHandlerInst,
		WSHandler:         wsHandlerInst,
		AuthMiddleware:    authMiddleware,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	s.http = &http.Server{Addr: s.cfg.HTTPAddr, Handler: s.engine}
	logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and releases the pools.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.logger != nil {
		s.logger.Sync()
	}
	return err
}
