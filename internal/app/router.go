// internal/app/router.go
package app

import (
	attendanceHandler "attendance-service/internal/handlers/attendance"
	sessionHandler "attendance-service/internal/handlers/session"
	wsHandler "attendance-service/internal/handlers/ws"
	"attendance-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AttendanceHandler *attendanceHandler.AttendanceHandler
	SessionHandler    *sessionHandler.SessionHandler
	WSHandler         *wsHandler.WSHandler
	AuthMiddleware    *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ==================== Attendance (students) ====================
	scans := api.Group("/attendance")
	scans.Use(h.AuthMiddleware.Auth())
	{
		scans.POST("", h.AttendanceHandler.Scan)
		scans.GET("/sessions/:id/me", h.AttendanceHandler.MyPresence)
	}

	// Presence ledger for a whole session is operator-only.
	ledger := api.Group("/attendance/sessions")
	ledger.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireAdmin())
	{
		ledger.GET("/:id", h.AttendanceHandler.Ledger)
	}

	// ==================== Sessions (operators) ====================
	sessions := api.Group("/sessions")
	sessions.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireAdmin())
	{
		sessions.POST("", h.SessionHandler.CreateSession)
		sessions.GET("", h.SessionHandler.ListSessions)
		sessions.GET("/:id", h.SessionHandler.GetSession)

		// Lifecycle commands
		sessions.POST("/:id/start", h.SessionHandler.Start)
		sessions.POST("/:id/pause", h.SessionHandler.Pause)
		sessions.POST("/:id/resume", h.SessionHandler.Resume)
		sessions.POST("/:id/stop", h.SessionHandler.Stop)
		sessions.PATCH("/:id/lifecycle", h.SessionHandler.SetLifecycleStage)

		// Admission phase commands
		sessions.POST("/:id/open-entry", h.SessionHandler.OpenEntry)
		sessions.POST("/:id/open-exit", h.SessionHandler.OpenExit)
		sessions.POST("/:id/close-attendance", h.SessionHandler.CloseAttendance)

		// Rotating credentials
		sessions.POST("/:id/credential", h.SessionHandler.MintCredential)
		sessions.GET("/:id/credential", h.SessionHandler.CurrentCredential)

		// Audit + reset
		sessions.GET("/:id/alerts", h.SessionHandler.Alerts)
		sessions.POST("/:id/reset", h.SessionHandler.Reset)
	}

	// ==================== WebSocket alert feed ====================
	feed := r.Group("/ws")
	feed.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireAdmin())
	{
		feed.GET("/sessions/:id/alerts", h.WSHandler.AlertFeed)
	}
}
