package usecase

import (
	"context"
	"time"

	"interview-coach-backend/internal/domain"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is anything that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthUsecase struct {
	db                Pinger
	kv                Pinger
	embeddingProvider string
}

// NewHealthUsecase reports on the optional dependencies. db may be nil when no database is configured.
func NewHealthUsecase(db Pinger, kv Pinger, embeddingProvider string) domain.HealthUsecase {
	return &healthUsecase{db: db, kv: kv, embeddingProvider: embeddingProvider}
}

func (u *healthUsecase) Check(ctx context.Context) *domain.HealthStatus {
	status := &domain.HealthStatus{
		Status:     domain.StatusUp,
		Components: map[string]string{},
	}

	status.Components["database"] = ping(ctx, u.db)
	status.Components["session_store"] = ping(ctx, u.kv)
	if u.embeddingProvider == "" {
		status.Components["embedding"] = domain.StatusDisabled
	} else {
		status.Components["embedding"] = u.embeddingProvider
	}

	if status.Components["session_store"] == domain.StatusDown {
		status.Status = domain.StatusDown
	}
	return status
}

func ping(ctx context.Context, p Pinger) string {
	if p == nil {
		return domain.StatusDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return domain.StatusDown
	}
	return domain.StatusUp
}
