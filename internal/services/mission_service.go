package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	// ErrInvalidAnswer is returned when a value fails the type-specific
	// validation of the current question. Nothing is persisted.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrOutOfSequence is returned when the submitted question is not the one
	// at the current cursor. Sequencing is strictly linear.
	ErrOutOfSequence = errors.New("answer out of sequence")
	// ErrAlreadyCompleted is returned when the day's mission is already
	// finalized. Completion is terminal for the day.
	ErrAlreadyCompleted = errors.New("daily mission already completed")
	// ErrPersistenceTimeout wraps a store deadline on the primary answer
	// write. Retryable by the caller.
	ErrPersistenceTimeout = errors.New("persistence timeout")
)

// trackingSource marks rows derived from mission answers in the tracking
// tables, distinguishing them from manual entries.
const trackingSource = "daily_mission"

// DateLayout is the caller-supplied day key format. The engine never reads
// the clock to decide what "today" is; the HTTP layer resolves it (UTC).
const DateLayout = "2006-01-02"

// MissionStore is the persistence port consumed by MissionService. All writes
// are idempotent upserts over the natural keys described in the types package.
type MissionStore interface {
	GetMissionSession(ctx context.Context, userID, date string) (*MissionSession, error)
	UpsertMissionSession(ctx context.Context, sess *MissionSession) error
	ListDailyAnswers(ctx context.Context, userID, date string) ([]*DailyAnswer, error)
	UpsertDailyAnswer(ctx context.Context, ans *DailyAnswer) error
	UpsertHydration(ctx context.Context, e *HydrationEntry) error
	UpsertSleep(ctx context.Context, e *SleepEntry) error
	MergeMood(ctx context.Context, e *MoodEntry) error
	UpsertReflection(ctx context.Context, e *ReflectionEntry) error
}

// MissionService drives a user through the daily mission questionnaire:
// resuming progress, validating and persisting answers, deriving tracking
// records and finalizing the day's session.
type MissionService struct {
	store   MissionStore
	catalog *Catalog
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMissionService constructs the service around an injected store and an
// immutable question catalog.
func NewMissionService(store MissionStore, catalog *Catalog) *MissionService {
	return &MissionService{
		store:   store,
		catalog: catalog,
		now:     func() time.Time { return time.Now().UTC() },
		locks:   map[string]*sync.Mutex{},
	}
}

// Catalog returns the catalog the service was built with.
func (s *MissionService) Catalog() *Catalog { return s.catalog }

// MissionState is a snapshot of one user's progress for one day.
type MissionState struct {
	Cursor      int               `json:"cursor"`
	Answers     map[string]string `json:"answers"`
	TotalPoints int               `json:"total_points"`
	IsCompleted bool              `json:"is_completed"`
	StreakDays  int               `json:"streak_days,omitempty"`
}

// SubmitResult reports the outcome of a single accepted answer.
type SubmitResult struct {
	QuestionID   string `json:"question_id"`
	Cursor       int    `json:"cursor"`
	PointsEarned int    `json:"points_earned"`
	Completed    bool   `json:"completed"`
	TotalPoints  int    `json:"total_points,omitempty"`
}

// lockFor serializes operations per (user, date). Different users or days
// never contend.
func (s *MissionService) lockFor(userID, date string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := userID + "|" + date
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	return m
}

func validateDayArgs(userID, date string) error {
	if strings.TrimSpace(userID) == "" {
		return NewInvalidError("user id required")
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return NewInvalidError("date must be formatted as " + DateLayout)
	}
	return nil
}

// persistErr classifies a primary-write store failure. Deadlines surface as
// the retryable ErrPersistenceTimeout.
func persistErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrPersistenceTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Resume loads the persisted session and answers for (user, date) and rebuilds
// the in-memory state. The cursor is the index of the first catalog question
// without a stored answer; catalog order is authoritative regardless of the
// order rows come back from the store.
func (s *MissionService) Resume(ctx context.Context, userID, date string) (*MissionState, error) {
	if err := validateDayArgs(userID, date); err != nil {
		return nil, err
	}
	mu := s.lockFor(userID, date)
	mu.Lock()
	defer mu.Unlock()
	return s.loadState(ctx, userID, date)
}

func (s *MissionService) loadState(ctx context.Context, userID, date string) (*MissionState, error) {
	rows, err := s.store.ListDailyAnswers(ctx, userID, date)
	if err != nil {
		return nil, persistErr("load answers", err)
	}
	answers := make(map[string]string, len(rows))
	for _, r := range rows {
		answers[r.QuestionID] = r.Answer
	}

	cursor := s.catalog.Len()
	for i := 0; i < s.catalog.Len(); i++ {
		if _, ok := answers[s.catalog.At(i).ID]; !ok {
			cursor = i
			break
		}
	}

	state := &MissionState{
		Cursor:      cursor,
		Answers:     answers,
		TotalPoints: TotalPoints(answers, s.catalog),
	}
	sess, err := s.store.GetMissionSession(ctx, userID, date)
	if err != nil {
		return nil, persistErr("load session", err)
	}
	if sess != nil {
		state.IsCompleted = sess.IsCompleted
		state.StreakDays = sess.StreakDays
		if sess.IsCompleted {
			state.TotalPoints = sess.TotalPoints
		}
	}
	return state, nil
}

// SubmitAnswer validates and stores the answer for the question at the current
// cursor, derives the question's tracking record (best effort) and advances.
// Answering the last catalog question finalizes the session.
func (s *MissionService) SubmitAnswer(ctx context.Context, userID, date, questionID, value string) (*SubmitResult, error) {
	if err := validateDayArgs(userID, date); err != nil {
		return nil, err
	}
	mu := s.lockFor(userID, date)
	mu.Lock()
	defer mu.Unlock()

	state, err := s.loadState(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if state.IsCompleted {
		return nil, ErrAlreadyCompleted
	}
	if state.Cursor >= s.catalog.Len() {
		return nil, ErrOutOfSequence
	}
	q := s.catalog.At(state.Cursor)
	if q.ID != questionID {
		return nil, fmt.Errorf("%w: expected %q, got %q", ErrOutOfSequence, q.ID, questionID)
	}

	normalized, err := normalizeAnswer(q, value)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ans := &DailyAnswer{
		UserID:       userID,
		Date:         date,
		QuestionID:   q.ID,
		Section:      q.Section,
		Answer:       normalized,
		PointsEarned: q.Points,
		CreatedAt:    now,
	}
	if err := s.store.UpsertDailyAnswer(ctx, ans); err != nil {
		return nil, persistErr("save answer", err)
	}

	// The day's session row exists from the first stored answer onward.
	sess, err := s.store.GetMissionSession(ctx, userID, date)
	if err != nil {
		return nil, persistErr("load session", err)
	}
	if sess == nil {
		sess = &MissionSession{UserID: userID, Date: date, CreatedAt: now, UpdatedAt: now}
		if err := s.store.UpsertMissionSession(ctx, sess); err != nil {
			return nil, persistErr("create session", err)
		}
	}

	// Derived tracking is best effort: losing a secondary record must not
	// block the answer from counting.
	if q.Tracking != TrackingNone {
		s.saveTracking(ctx, userID, date, q.Tracking, normalized)
	}

	state.Answers[q.ID] = normalized
	res := &SubmitResult{
		QuestionID:   q.ID,
		Cursor:       state.Cursor + 1,
		PointsEarned: q.Points,
	}
	if res.Cursor == s.catalog.Len() {
		total, err := s.finalize(ctx, sess, state.Answers)
		if err != nil {
			return nil, err
		}
		res.Completed = true
		res.TotalPoints = total
	}
	return res, nil
}

// Complete finalizes the day's session once every catalog question has a
// stored answer. Calling it again for an already-completed day returns the
// stored total unchanged.
func (s *MissionService) Complete(ctx context.Context, userID, date string) (int, error) {
	if err := validateDayArgs(userID, date); err != nil {
		return 0, err
	}
	mu := s.lockFor(userID, date)
	mu.Lock()
	defer mu.Unlock()

	state, err := s.loadState(ctx, userID, date)
	if err != nil {
		return 0, err
	}
	if state.IsCompleted {
		return state.TotalPoints, nil
	}
	if state.Cursor < s.catalog.Len() {
		return 0, NewConflictError("daily mission is not finished")
	}
	sess, err := s.store.GetMissionSession(ctx, userID, date)
	if err != nil {
		return 0, persistErr("load session", err)
	}
	if sess == nil {
		now := s.now()
		sess = &MissionSession{UserID: userID, Date: date, CreatedAt: now, UpdatedAt: now}
	}
	return s.finalize(ctx, sess, state.Answers)
}

// finalize writes the completed session. All three sections are marked
// completed: sequencing is linear across the whole catalog, so reaching the
// end implies every section was visited.
func (s *MissionService) finalize(ctx context.Context, sess *MissionSession, answers map[string]string) (int, error) {
	total := TotalPoints(answers, s.catalog)
	sess.CompletedSections = []Section{SectionMorning, SectionHabits, SectionMindset}
	sess.TotalPoints = total
	sess.IsCompleted = true
	sess.StreakDays = s.streakFor(ctx, sess.UserID, sess.Date)
	sess.UpdatedAt = s.now()
	if err := s.store.UpsertMissionSession(ctx, sess); err != nil {
		return 0, persistErr("finalize session", err)
	}
	return total, nil
}

// streakFor extends yesterday's completed streak or starts a new one. Streaks
// are cosmetic, so store failures fall back to 1 instead of failing the
// completion.
func (s *MissionService) streakFor(ctx context.Context, userID, date string) int {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return 1
	}
	prevDate := day.AddDate(0, 0, -1).Format(DateLayout)
	prev, err := s.store.GetMissionSession(ctx, userID, prevDate)
	if err != nil {
		log.Printf("mission: load previous session for streak: %v", err)
		return 1
	}
	if prev != nil && prev.IsCompleted {
		return prev.StreakDays + 1
	}
	return 1
}

// saveTracking derives and stores the secondary record for a tracked answer.
// Failures are logged and swallowed.
func (s *MissionService) saveTracking(ctx context.Context, userID, date string, tag TrackingTag, value string) {
	rec, err := DispatchTracking(tag, value)
	if err != nil {
		log.Printf("mission: derive tracking %s: %v", tag, err)
		return
	}
	if rec == nil {
		return
	}
	now := s.now()
	switch rec.Kind {
	case TrackingKindHydration:
		err = s.store.UpsertHydration(ctx, &HydrationEntry{
			UserID: userID, Date: date, AmountML: rec.Hydration.AmountML,
			Source: trackingSource, CreatedAt: now,
		})
	case TrackingKindSleep:
		err = s.store.UpsertSleep(ctx, &SleepEntry{
			UserID: userID, Date: date, Hours: rec.Sleep.Hours,
			Source: trackingSource, CreatedAt: now,
		})
	case TrackingKindMood:
		err = s.store.MergeMood(ctx, &MoodEntry{
			UserID: userID, Date: date,
			EnergyLevel: rec.Mood.EnergyLevel,
			StressLevel: rec.Mood.StressLevel,
			DayRating:   rec.Mood.DayRating,
			Source:      trackingSource, CreatedAt: now,
		})
	case TrackingKindReflection:
		err = s.store.UpsertReflection(ctx, &ReflectionEntry{
			UserID: userID, Date: date,
			Notes: rec.Reflection.Notes, MoodScore: rec.Reflection.MoodScore,
			CreatedAt: now,
		})
	}
	if err != nil {
		log.Printf("mission: save tracking %s: %v", tag, err)
	}
}

// normalizeAnswer applies the per-type validation and normalization rules and
// returns the canonical stored string.
func normalizeAnswer(q Question, value string) (string, error) {
	v := strings.TrimSpace(value)
	switch q.Type {
	case QuestionYesNo:
		switch strings.ToLower(v) {
		case "sim", "true", "yes":
			return "Sim", nil
		case "não", "nao", "false", "no":
			return "Não", nil
		}
		return "", fmt.Errorf("%w: yes/no question expects Sim or Não", ErrInvalidAnswer)
	case QuestionMultipleChoice:
		for _, opt := range q.Options {
			if v == opt {
				return opt, nil
			}
		}
		return "", fmt.Errorf("%w: %q is not one of the question options", ErrInvalidAnswer, v)
	case QuestionScale, QuestionEmojiScale, QuestionStarScale:
		n, err := strconv.Atoi(v)
		if err != nil {
			return "", fmt.Errorf("%w: scale question expects an integer", ErrInvalidAnswer)
		}
		if n < 1 || n > q.scaleLen() {
			return "", fmt.Errorf("%w: value %d outside scale 1..%d", ErrInvalidAnswer, n, q.scaleLen())
		}
		return strconv.Itoa(n), nil
	case QuestionText:
		if v == "" {
			return "", fmt.Errorf("%w: text answer must not be empty", ErrInvalidAnswer)
		}
		return v, nil
	default:
		return "", fmt.Errorf("%w: unsupported question type %q", ErrInvalidAnswer, q.Type)
	}
}
