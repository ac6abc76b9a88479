// internal/domain/attendance/dto.go
package attendance

type ScanPayload struct {
	SessionID string `json:"session_id" binding:"required"`
	Token     string `json:"token" binding:"required"`
}
