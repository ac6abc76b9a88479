// internal/handlers/session/session_handler.go
package session

import (
	"net/http"

	"attendance-service/internal/domain/session"
	"attendance-service/internal/middleware"
	"attendance-service/internal/pkg/response"
	attendancesvc "attendance-service/internal/service/attendance"
	credentialsvc "attendance-service/internal/service/credential"
	service "attendance-service/internal/service/session"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService    *service.SessionService
	credentialService *credentialsvc.CredentialService
	attendanceService *attendancesvc.AttendanceService
}

func NewSessionHandler(
	sessionService *service.SessionService,
	credentialService *credentialsvc.CredentialService,
	attendanceService *attendancesvc.AttendanceService,
) *SessionHandler {
	return &SessionHandler{
		sessionService:    sessionService,
		credentialService: credentialService,
		attendanceService: attendanceService,
	}
}

// CreateSession creates a session in DRAFT state with admission CLOSED.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req session.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid session payload", err)
		return
	}

	sess, err := h.sessionService.CreateSession(c.Request.Context(), middleware.MustGetIdentityID(c), &req)
	if err != nil {
		response.FromDomainError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "session created", sess)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, err := h.sessionService.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "session retrieved", sess)
}

func (h *SessionHandler) ListSessions(c *gin.Context) {
	sessions, err := h.sessionService.ListSessions(c.Request.Context())
	if err != nil {
		response.FromDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "sessions retrieved", sessions)
}

// SetLifecycleStage applies an arbitrary (validated) stage move; the named
// commands below are conveniences over the same transition table.
func (h *SessionHandler) SetLifecycleStage(c *gin.Context) {
	var req session.SetLifecycleStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "stage is required", err)
		return
	}
	h.applyStage(c, req.Stage)
}

func (h *SessionHandler) Start(c *gin.Context)  { h.applyStage(c, session.StageActive) }
func (h *SessionHandler) Pause(c *gin.Context)  { h.applyStage(c, session.StagePaused) }
func (h *SessionHandler) Resume(c *gin.Context) { h.applyStage(c, session.StageActive) }
func (h *SessionHandler) Stop(c *gin.Context)   { h.applyStage(c, session.StageEnded) }

func (h *SessionHandler) applyStage(c *gin.Context, stage session.LifecycleStage) {
	sess, err := h.sessionService.SetLifecycleStage(c.Request.Context(), c.Param("id"), stage)
	if err != nil {
		response.FromDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "session state updated", sess)
}

func (h *SessionHandler) OpenEntry(c *gin.Context) { h.applyPhase(c, session.PhaseEntryOpen) }
func (h *SessionHandler) OpenExit(c *gin.Context)  { h.applyPhase(c, session.PhaseExitOpen) }
func (h *SessionHandler) CloseAttendance(c *gin.Context) {
	h.applyPhase(c, session.PhaseClosed)
}

func (h *SessionHandler) applyPhase(c *gin.Context, phase session.AdmissionPhase) {
	sess, err := h.sessionService.SetAdmissionPhase(c.Request.Context(), c.Param("id"), phase)
	if err != nil {
		response.FromDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "admission phase updated", sess)
}

// MintCredential issues a fresh rotating token for the session's QR code.
func (h *SessionHandler) MintCredential(c *gin.Context) {
	cred, err := h.credentialService.Mint(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromDomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "credential minted", cred)
}

// CurrentCredential returns the newest live token for QR display.
func (h *SessionHandler) CurrentCredential(c *gin.Context) {
	cred, err := h.credentialService.Latest(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "credential retrieved", cred)
}

// Alerts returns the session's blocked-proxy alerts, most recent first.
func (h *SessionHandler) Alerts(c *gin.Context) {
	alerts, err := h.attendanceService.Alerts(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "alerts retrieved", alerts)
}

// Reset purges a session's attendance data. Administrative use only.
func (h *SessionHandler) Reset(c *gin.Context) {
	if err := h.sessionService.ResetSession(c.Request.Context(), c.Param("id")); err != nil {
		response.FromDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "session attendance reset", nil)
}
