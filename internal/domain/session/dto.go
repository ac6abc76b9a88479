// internal/domain/session/dto.go
package session

import "time"

type CreateSessionRequest struct {
	Name                  string     `json:"name" binding:"required,max=255"`
	Venue                 string     `json:"venue" binding:"max=255"`
	StartsAt              *time.Time `json:"starts_at"`
	EndsAt                *time.Time `json:"ends_at"`
	EntryWindowMins       int        `json:"entry_window_mins" binding:"omitempty,min=1,max=1440"`
	ExitWindowMins        int        `json:"exit_window_mins" binding:"omitempty,min=1,max=1440"`
	CredentialRefreshSecs int        `json:"credential_refresh_secs" binding:"required,min=5,max=3600"`
}

type SetLifecycleStageRequest struct {
	Stage LifecycleStage `json:"stage" binding:"required"`
}
