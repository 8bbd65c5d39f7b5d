package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorForbidden    ErrorCode = "forbidden"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorConflict     ErrorCode = "conflict"
	ErrorUnauthorized ErrorCode = "unauthorized"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error   { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error  { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error  { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

// ChallengeStore is the persistence surface for challenges and scheduled
// appointment sessions.
type ChallengeStore interface {
	InsertChallenge(ctx context.Context, c *Challenge) error
	UpdateChallenge(ctx context.Context, c *Challenge) (bool, error)
	DeleteChallenge(ctx context.Context, id string) (bool, error)
	GetChallenge(ctx context.Context, id string) (*Challenge, error)
	ListChallenges(ctx context.Context, onlyActive bool) ([]*Challenge, error)

	InsertUserSession(ctx context.Context, us *UserSession) error
	GetUserSession(ctx context.Context, id string) (*UserSession, error)
	UpdateUserSession(ctx context.Context, us *UserSession) (bool, error)
	ListUserSessions(ctx context.Context, userID string) ([]*UserSession, error)
}

// ChallengeService backs the admin panels: CRUD for challenges and lifecycle
// management of users' scheduled sessions.
type ChallengeService struct {
	store ChallengeStore
	now   func() time.Time
}

func NewChallengeService(store ChallengeStore) *ChallengeService {
	return &ChallengeService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *ChallengeService) CreateChallenge(ctx context.Context, c *Challenge) (*Challenge, error) {
	if c == nil {
		return nil, NewInvalidError("challenge required")
	}
	if strings.TrimSpace(c.Title) == "" {
		return nil, NewInvalidError("title required")
	}
	if c.DurationDays <= 0 {
		return nil, NewInvalidError("duration_days must be positive")
	}
	if c.Points < 0 {
		return nil, NewInvalidError("points must not be negative")
	}
	if c.ID == "" {
		c.ID = shortID(8)
	}
	now := s.now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := s.store.InsertChallenge(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ChallengeService) UpdateChallenge(ctx context.Context, c *Challenge) (*Challenge, error) {
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return nil, NewInvalidError("challenge id required")
	}
	if strings.TrimSpace(c.Title) == "" {
		return nil, NewInvalidError("title required")
	}
	if c.DurationDays <= 0 {
		return nil, NewInvalidError("duration_days must be positive")
	}
	existing, err := s.store.GetChallenge(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, NewNotFoundError("challenge not found")
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = s.now()
	ok, err := s.store.UpdateChallenge(ctx, c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewNotFoundError("challenge not found")
	}
	return c, nil
}

func (s *ChallengeService) DeleteChallenge(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return NewInvalidError("challenge id required")
	}
	ok, err := s.store.DeleteChallenge(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("challenge not found")
	}
	return nil
}

func (s *ChallengeService) ListChallenges(ctx context.Context, onlyActive bool) ([]*Challenge, error) {
	return s.store.ListChallenges(ctx, onlyActive)
}

func (s *ChallengeService) ScheduleSession(ctx context.Context, userID string, at time.Time, notes string) (*UserSession, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, NewInvalidError("user id required")
	}
	if at.IsZero() {
		return nil, NewInvalidError("scheduled_at required")
	}
	now := s.now()
	us := &UserSession{
		ID:          shortID(8),
		UserID:      userID,
		ScheduledAt: at.UTC(),
		Status:      SessionStatusScheduled,
		Notes:       strings.TrimSpace(notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertUserSession(ctx, us); err != nil {
		return nil, err
	}
	return us, nil
}

// TransitionSession moves a scheduled session to completed or cancelled.
// Terminal states never transition again.
func (s *ChallengeService) TransitionSession(ctx context.Context, id, status string) (*UserSession, error) {
	if status != SessionStatusCompleted && status != SessionStatusCancelled {
		return nil, NewInvalidError("status must be completed or cancelled")
	}
	us, err := s.store.GetUserSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if us == nil {
		return nil, NewNotFoundError("session not found")
	}
	if us.Status != SessionStatusScheduled {
		return nil, NewConflictError("session is already " + us.Status)
	}
	us.Status = status
	us.UpdatedAt = s.now()
	ok, err := s.store.UpdateUserSession(ctx, us)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewNotFoundError("session not found")
	}
	return us, nil
}

func (s *ChallengeService) ListUserSessions(ctx context.Context, userID string) ([]*UserSession, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, NewInvalidError("user id required")
	}
	return s.store.ListUserSessions(ctx, userID)
}
