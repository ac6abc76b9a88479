// internal/repository/memory/session_repo.go
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"attendance-service/internal/domain/session"
	xerrors "attendance-service/internal/pkg/errors"
)

// SessionRepository is an in-memory session.Repository. It backs service
// tests and single-node development; semantics mirror the Postgres
// implementation, including the compare-and-swap stage update.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]session.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]session.Session)}
}

func (r *SessionRepository) Create(_ context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	r.sessions[s.ID] = *s
	return nil
}

func (r *SessionRepository) FindByID(_ context.Context, id string) (*session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	out := s
	return &out, nil
}

func (r *SessionRepository) List(_ context.Context) ([]session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]session.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *SessionRepository) UpdateLifecycleStage(_ context.Context, id string, from, to session.LifecycleStage) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.LifecycleStage != from {
		return false, nil
	}
	s.LifecycleStage = to
	s.UpdatedAt = time.Now().UTC()
	r.sessions[id] = s
	return true, nil
}

func (r *SessionRepository) UpdateAdmissionPhase(_ context.Context, id string, phase session.AdmissionPhase) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.LifecycleStage == session.StageEnded {
		return false, nil
	}
	s.AdmissionPhase = phase
	s.UpdatedAt = time.Now().UTC()
	r.sessions[id] = s
	return true, nil
}
