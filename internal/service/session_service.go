package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"archetypes/internal/cache"
	"archetypes/internal/model"
	"archetypes/internal/repository"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotSessionOwner = errors.New("session belongs to another user")
)

// SessionService manages assessment sessions
type SessionService struct {
	sessionRepo  repository.SessionRepo
	responseRepo repository.ResponseRepo
	sessionCache cache.SessionCache
}

// NewSessionService creates a new session service
func NewSessionService(sessionRepo repository.SessionRepo, responseRepo repository.ResponseRepo, sessionCache cache.SessionCache) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		responseRepo: responseRepo,
		sessionCache: sessionCache,
	}
}

// Create starts a new assessment session for a user
func (s *SessionService) Create(ctx context.Context, userID string) (*model.Session, error) {
	session := &model.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Completed: 0,
		CreatedAt: time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.sessionCache.Set(ctx, session); err != nil {
		// Cache miss on next read falls back to Mongo
		return session, nil
	}
	return session, nil
}

// Get returns a session, verifying ownership.
func (s *SessionService) Get(ctx context.Context, sessionID, userID string) (*model.Session, error) {
	session, err := s.sessionCache.Get(ctx, sessionID)
	if err != nil || session == nil {
		session, err = s.sessionRepo.GetByID(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("get session: %w", err)
		}
		if session == nil {
			return nil, ErrSessionNotFound
		}
		_ = s.sessionCache.Set(ctx, session)
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	return session, nil
}

// List returns a user's sessions, newest first
func (s *SessionService) List(ctx context.Context, userID string) ([]*model.Session, error) {
	return s.sessionRepo.GetByUserID(ctx, userID)
}

// Delete removes a session and all of its character responses
func (s *SessionService) Delete(ctx context.Context, sessionID, userID string) error {
	if _, err := s.Get(ctx, sessionID, userID); err != nil {
		return err
	}
	if err := s.responseRepo.DeleteBySessionID(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session responses: %w", err)
	}
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return s.sessionCache.Delete(ctx, sessionID)
}

// MarkCompleted increments the session's completed-character counter
func (s *SessionService) MarkCompleted(ctx context.Context, sessionID string) error {
	if err := s.sessionRepo.IncrementCompleted(ctx, sessionID); err != nil {
		return err
	}
	// Drop the cached copy so the next read sees the new counter
	return s.sessionCache.Delete(ctx, sessionID)
}
