package services

import (
	"context"
	"testing"
	"time"
)

type stubChallengeStore struct {
	challenges map[string]*Challenge
	sessions   map[string]*UserSession
}

func newStubChallengeStore() *stubChallengeStore {
	return &stubChallengeStore{
		challenges: map[string]*Challenge{},
		sessions:   map[string]*UserSession{},
	}
}

func (s *stubChallengeStore) InsertChallenge(_ context.Context, c *Challenge) error {
	cp := *c
	s.challenges[c.ID] = &cp
	return nil
}

func (s *stubChallengeStore) UpdateChallenge(_ context.Context, c *Challenge) (bool, error) {
	if _, ok := s.challenges[c.ID]; !ok {
		return false, nil
	}
	cp := *c
	s.challenges[c.ID] = &cp
	return true, nil
}

func (s *stubChallengeStore) DeleteChallenge(_ context.Context, id string) (bool, error) {
	if _, ok := s.challenges[id]; !ok {
		return false, nil
	}
	delete(s.challenges, id)
	return true, nil
}

func (s *stubChallengeStore) GetChallenge(_ context.Context, id string) (*Challenge, error) {
	if c, ok := s.challenges[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (s *stubChallengeStore) ListChallenges(_ context.Context, onlyActive bool) ([]*Challenge, error) {
	var out []*Challenge
	for _, c := range s.challenges {
		if onlyActive && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *stubChallengeStore) InsertUserSession(_ context.Context, us *UserSession) error {
	cp := *us
	s.sessions[us.ID] = &cp
	return nil
}

func (s *stubChallengeStore) GetUserSession(_ context.Context, id string) (*UserSession, error) {
	if us, ok := s.sessions[id]; ok {
		cp := *us
		return &cp, nil
	}
	return nil, nil
}

func (s *stubChallengeStore) UpdateUserSession(_ context.Context, us *UserSession) (bool, error) {
	if _, ok := s.sessions[us.ID]; !ok {
		return false, nil
	}
	cp := *us
	s.sessions[us.ID] = &cp
	return true, nil
}

func (s *stubChallengeStore) ListUserSessions(_ context.Context, userID string) ([]*UserSession, error) {
	var out []*UserSession
	for _, us := range s.sessions {
		if us.UserID == userID {
			out = append(out, us)
		}
	}
	return out, nil
}

func TestCreateChallengeValidation(t *testing.T) {
	svc := NewChallengeService(newStubChallengeStore())
	ctx := context.Background()

	cases := []*Challenge{
		nil,
		{Title: "  ", DurationDays: 7},
		{Title: "Hidratação", DurationDays: 0},
		{Title: "Hidratação", DurationDays: 7, Points: -5},
	}
	for i, c := range cases {
		_, err := svc.CreateChallenge(ctx, c)
		se, ok := AsServiceError(err)
		if !ok || se.Code != ErrorInvalid {
			t.Fatalf("case %d: expected invalid, got %v", i, err)
		}
	}

	created, err := svc.CreateChallenge(ctx, &Challenge{Title: "Hidratação", DurationDays: 21, Points: 100, IsActive: true})
	if err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("created challenge missing id/timestamps: %+v", created)
	}
}

func TestUpdateChallengeKeepsCreatedAt(t *testing.T) {
	store := newStubChallengeStore()
	svc := NewChallengeService(store)
	origin := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return origin }
	ctx := context.Background()

	created, err := svc.CreateChallenge(ctx, &Challenge{Title: "Sono", DurationDays: 14, Points: 50})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	svc.now = func() time.Time { return origin.Add(48 * time.Hour) }
	created.Title = "Sono melhor"
	updated, err := svc.UpdateChallenge(ctx, created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.CreatedAt.Equal(origin) {
		t.Fatalf("created_at changed on update: %v", updated.CreatedAt)
	}
	if !updated.UpdatedAt.After(origin) {
		t.Fatalf("updated_at not advanced: %v", updated.UpdatedAt)
	}
}

func TestUpdateMissingChallenge(t *testing.T) {
	svc := NewChallengeService(newStubChallengeStore())
	_, err := svc.UpdateChallenge(context.Background(), &Challenge{ID: "zzz", Title: "x", DurationDays: 7})
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSessionTransitions(t *testing.T) {
	svc := NewChallengeService(newStubChallengeStore())
	ctx := context.Background()

	us, err := svc.ScheduleSession(ctx, "u1", time.Date(2025, 4, 1, 15, 0, 0, 0, time.UTC), "avaliação inicial")
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if us.Status != SessionStatusScheduled {
		t.Fatalf("status = %q, want scheduled", us.Status)
	}

	if _, err := svc.TransitionSession(ctx, us.ID, "postponed"); err == nil {
		t.Fatalf("unknown status should be rejected")
	}

	done, err := svc.TransitionSession(ctx, us.ID, SessionStatusCompleted)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if done.Status != SessionStatusCompleted {
		t.Fatalf("status = %q, want completed", done.Status)
	}

	// Terminal states never move again.
	_, err = svc.TransitionSession(ctx, us.ID, SessionStatusCancelled)
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}
