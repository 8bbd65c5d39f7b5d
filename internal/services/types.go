package services

import "time"

// User is an authenticated account of the app.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	PassHash  []byte    `json:"-"`
	IsAdmin   bool      `json:"is_admin,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DailyAnswer is the stored fact that a user answered one mission question on
// one day. At most one row exists per (user_id, date, question_id); re-answering
// replaces the previous row.
type DailyAnswer struct {
	UserID       string    `json:"user_id"`
	Date         string    `json:"date"` // YYYY-MM-DD, caller-supplied
	QuestionID   string    `json:"question_id"`
	Section      Section   `json:"section"`
	Answer       string    `json:"answer"`
	PointsEarned int       `json:"points_earned"`
	CreatedAt    time.Time `json:"created_at"`
}

// MissionSession is the per-user-per-day aggregate of daily mission progress.
// At most one row exists per (user_id, date).
type MissionSession struct {
	UserID            string    `json:"user_id"`
	Date              string    `json:"date"`
	CompletedSections []Section `json:"completed_sections,omitempty"`
	TotalPoints       int       `json:"total_points"`
	IsCompleted       bool      `json:"is_completed"`
	StreakDays        int       `json:"streak_days,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// HydrationEntry is the derived per-day water intake row.
type HydrationEntry struct {
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"`
	AmountML  int       `json:"amount_ml"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SleepEntry is the derived per-day sleep duration row.
type SleepEntry struct {
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"`
	Hours     float64   `json:"hours"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MoodEntry is the per-day mood row. The three numeric fields are written by
// different questions during the same day, so each is nullable and merges into
// the existing row instead of overwriting siblings.
type MoodEntry struct {
	UserID      string    `json:"user_id"`
	Date        string    `json:"date"`
	EnergyLevel *int      `json:"energy_level,omitempty"`
	StressLevel *int      `json:"stress_level,omitempty"`
	DayRating   *int      `json:"day_rating,omitempty"`
	Source      string    `json:"source,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReflectionEntry is the free-text diary row derived from reflection questions.
type ReflectionEntry struct {
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"`
	Notes     string    `json:"notes"`
	MoodScore int       `json:"mood_score"`
	CreatedAt time.Time `json:"created_at"`
}

// Challenge is an admin-managed program users can join.
type Challenge struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category,omitempty"`
	DurationDays int       `json:"duration_days"`
	Points       int       `json:"points"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSession is a scheduled appointment between a user and the care team.
type UserSession struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserSession status values.
const (
	SessionStatusScheduled = "scheduled"
	SessionStatusCompleted = "completed"
	SessionStatusCancelled = "cancelled"
)
