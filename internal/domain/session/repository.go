// internal/domain/session/repository.go
package session

import "context"

// Repository is the Session Registry's persistence contract. Reads used by
// the admission path must observe the most recently committed state; the
// gating decision tolerates no cached reads.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	FindByID(ctx context.Context, id string) (*Session, error)
	List(ctx context.Context) ([]Session, error)

	// UpdateLifecycleStage is a compare-and-swap on the previous stage so
	// concurrent operator commands cannot skip states. It reports whether
	// the row was updated.
	UpdateLifecycleStage(ctx context.Context, id string, from, to LifecycleStage) (bool, error)

	// UpdateAdmissionPhase sets the operator phase override. Ended sessions
	// are immutable; the swap only applies while the stage is not ENDED.
	UpdateAdmissionPhase(ctx context.Context, id string, phase AdmissionPhase) (bool, error)
}
