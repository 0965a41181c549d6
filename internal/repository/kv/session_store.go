package kv

import (
	"context"
	"errors"
	"time"

	"interview-coach-backend/internal/domain"
	"interview-coach-backend/pkg/kvstore"
)

const sessionKeyPrefix = "interview:session:"

type sessionStore struct {
	kv  kvstore.Store
	ttl time.Duration
}

// NewSessionStore keeps live interview sessions as JSON with a sliding expiry.
func NewSessionStore(kv kvstore.Store, ttl time.Duration) domain.SessionStore {
	return &sessionStore{kv: kv, ttl: ttl}
}

func (s *sessionStore) Get(ctx context.Context, id string) (*domain.InterviewSession, error) {
	var session domain.InterviewSession
	if err := kvstore.GetJSON(ctx, s.kv, sessionKeyPrefix+id, &session); err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (s *sessionStore) Save(ctx context.Context, session *domain.InterviewSession) error {
	return kvstore.SetJSON(ctx, s.kv, sessionKeyPrefix+session.ID, session, s.ttl)
}

func (s *sessionStore) Delete(ctx context.Context, id string) error {
	return s.kv.Delete(ctx, sessionKeyPrefix+id)
}
