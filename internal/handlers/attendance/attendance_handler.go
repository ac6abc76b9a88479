// internal/handlers/attendance/attendance_handler.go
package attendance

import (
	"net/http"

	"attendance-service/internal/domain/attendance"
	"attendance-service/internal/middleware"
	"attendance-service/internal/pkg/response"
	service "attendance-service/internal/service/attendance"

	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// Scan handles one QR scan. The loose transport shape is converted here
// into a typed ScanRequest; the engine never inspects raw request fields.
func (h *AttendanceHandler) Scan(c *gin.Context) {
	var payload attendance.ScanPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.ValidationError(c, "session_id and token are required", err)
		return
	}

	req := &attendance.ScanRequest{
		SessionID:  payload.SessionID,
		Token:      payload.Token,
		IdentityID: middleware.MustGetIdentityID(c),
		Device:     middleware.DeviceInputs(c),
	}

	result, err := h.attendanceService.Scan(c.Request.Context(), req)
	if err != nil {
		response.FromDomainError(c, err)
		return
	}

	switch result.Action {
	case attendance.ActionExit:
		response.Success(c, http.StatusOK, "attendance completed", result)
	default:
		response.Success(c, http.StatusCreated, "entry recorded", result)
	}
}

// MyPresence returns the caller's own ledger row for a session.
func (h *AttendanceHandler) MyPresence(c *gin.Context) {
	sessionID := c.Param("id")
	identityID := middleware.MustGetIdentityID(c)

	rec, err := h.attendanceService.Presence(c.Request.Context(), sessionID, identityID)
	if err != nil {
		response.FromDomainError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "presence retrieved", rec)
}

// Ledger returns a session's presence records for operator review.
func (h *AttendanceHandler) Ledger(c *gin.Context) {
	records, err := h.attendanceService.Ledger(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromDomainError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "attendance retrieved", records)
}
