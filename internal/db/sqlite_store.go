package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/vitaltrack/vitaltrack/internal/services"
)

// SQLiteStore implements every service persistence interface on a single
// SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var (
	_ services.MissionStore   = (*SQLiteStore)(nil)
	_ services.AuthStore      = (*SQLiteStore)(nil)
	_ services.ChallengeStore = (*SQLiteStore)(nil)
	_ services.DashboardStore = (*SQLiteStore)(nil)
)

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func int64ToBool(v int64) bool { return v != 0 }

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		log.Printf("sqlite store: parse time %q: %v", s, err)
		return time.Time{}
	}
	return t
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func toNullIntPtr(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func fromNullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func encodeSections(sections []services.Section) (sql.NullString, error) {
	if len(sections) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(sections)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeSections(ns sql.NullString) []services.Section {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	var out []services.Section
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		log.Printf("sqlite store: decode completed sections: %v", err)
		return nil
	}
	return out
}

// --- mission engine ---

func (s *SQLiteStore) GetMissionSession(ctx context.Context, userID, date string) (*services.MissionSession, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, date, completed_sections, total_points, is_completed, streak_days, created_at, updated_at
		FROM daily_mission_sessions WHERE user_id = ? AND date = ?`, userID, date)
	var (
		sess      services.MissionSession
		sections  sql.NullString
		completed int64
		created   string
		updated   string
	)
	err := row.Scan(&sess.UserID, &sess.Date, &sections, &sess.TotalPoints, &completed, &sess.StreakDays, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mission session: %w", err)
	}
	sess.CompletedSections = decodeSections(sections)
	sess.IsCompleted = int64ToBool(completed)
	sess.CreatedAt = parseTime(created)
	sess.UpdatedAt = parseTime(updated)
	return &sess, nil
}

func (s *SQLiteStore) UpsertMissionSession(ctx context.Context, sess *services.MissionSession) error {
	sections, err := encodeSections(sess.CompletedSections)
	if err != nil {
		return fmt.Errorf("encode completed sections: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO daily_mission_sessions
			(user_id, date, completed_sections, total_points, is_completed, streak_days, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			completed_sections = excluded.completed_sections,
			total_points       = excluded.total_points,
			is_completed       = excluded.is_completed,
			streak_days        = excluded.streak_days,
			updated_at         = excluded.updated_at`,
		sess.UserID, sess.Date, sections, sess.TotalPoints, boolToInt64(sess.IsCompleted),
		sess.StreakDays, fmtTime(sess.CreatedAt), fmtTime(sess.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert mission session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListDailyAnswers(ctx context.Context, userID, date string) ([]*services.DailyAnswer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, date, question_id, section, answer, points_earned, created_at
		FROM daily_responses WHERE user_id = ? AND date = ? ORDER BY question_id`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("list daily answers: %w", err)
	}
	defer rows.Close()

	var out []*services.DailyAnswer
	for rows.Next() {
		var (
			ans     services.DailyAnswer
			created string
		)
		if err := rows.Scan(&ans.UserID, &ans.Date, &ans.QuestionID, &ans.Section, &ans.Answer, &ans.PointsEarned, &created); err != nil {
			return nil, fmt.Errorf("scan daily answer: %w", err)
		}
		ans.CreatedAt = parseTime(created)
		out = append(out, &ans)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpsertDailyAnswer(ctx context.Context, ans *services.DailyAnswer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_responses (user_id, date, question_id, section, answer, points_earned, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date, question_id) DO UPDATE SET
			section       = excluded.section,
			answer        = excluded.answer,
			points_earned = excluded.points_earned,
			created_at    = excluded.created_at`,
		ans.UserID, ans.Date, ans.QuestionID, string(ans.Section), ans.Answer, ans.PointsEarned, fmtTime(ans.CreatedAt))
	if err != nil {
		return fmt.Errorf("upsert daily answer: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertHydration(ctx context.Context, e *services.HydrationEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO water_tracking (user_id, date, amount_ml, source, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			amount_ml = excluded.amount_ml,
			source    = excluded.source`,
		e.UserID, e.Date, e.AmountML, toNullString(e.Source), fmtTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("upsert hydration: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertSleep(ctx context.Context, e *services.SleepEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sleep_tracking (user_id, date, hours, source, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			hours  = excluded.hours,
			source = excluded.source`,
		e.UserID, e.Date, e.Hours, toNullString(e.Source), fmtTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("upsert sleep: %w", err)
	}
	return nil
}

// MergeMood writes only the populated mood fields; COALESCE keeps sibling
// fields that were stored earlier the same day by other questions.
func (s *SQLiteStore) MergeMood(ctx context.Context, e *services.MoodEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mood_tracking (user_id, date, energy_level, stress_level, day_rating, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			energy_level = COALESCE(excluded.energy_level, mood_tracking.energy_level),
			stress_level = COALESCE(excluded.stress_level, mood_tracking.stress_level),
			day_rating   = COALESCE(excluded.day_rating, mood_tracking.day_rating),
			source       = excluded.source`,
		e.UserID, e.Date, toNullIntPtr(e.EnergyLevel), toNullIntPtr(e.StressLevel), toNullIntPtr(e.DayRating),
		toNullString(e.Source), fmtTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("merge mood: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertReflection(ctx context.Context, e *services.ReflectionEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO health_diary (user_id, date, notes, mood_score, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			notes      = excluded.notes,
			mood_score = excluded.mood_score`,
		e.UserID, e.Date, e.Notes, e.MoodScore, fmtTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("upsert reflection: %w", err)
	}
	return nil
}

// --- auth ---

func (s *SQLiteStore) FindUserByEmail(ctx context.Context, email string) (*services.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, pass_hash, is_admin, created_at FROM users WHERE email = ?`, email)
	var (
		u       services.User
		name    sql.NullString
		admin   int64
		created string
	)
	err := row.Scan(&u.ID, &u.Email, &name, &u.PassHash, &admin, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.Name = name.String
	u.IsAdmin = int64ToBool(admin)
	u.CreatedAt = parseTime(created)
	return &u, nil
}

func (s *SQLiteStore) AddUser(ctx context.Context, u *services.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, pass_hash, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, toNullString(u.Name), u.PassHash, boolToInt64(u.IsAdmin), fmtTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("add user: %w", err)
	}
	return nil
}

// --- challenges and appointment sessions ---

func (s *SQLiteStore) InsertChallenge(ctx context.Context, c *services.Challenge) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO challenges (id, title, description, category, duration_days, points, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, toNullString(c.Description), toNullString(c.Category),
		c.DurationDays, c.Points, boolToInt64(c.IsActive), fmtTime(c.CreatedAt), fmtTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert challenge: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateChallenge(ctx context.Context, c *services.Challenge) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE challenges SET title = ?, description = ?, category = ?, duration_days = ?,
			points = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		c.Title, toNullString(c.Description), toNullString(c.Category), c.DurationDays,
		c.Points, boolToInt64(c.IsActive), fmtTime(c.UpdatedAt), c.ID)
	if err != nil {
		return false, fmt.Errorf("update challenge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) DeleteChallenge(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM challenges WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete challenge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) scanChallenge(row interface{ Scan(...any) error }) (*services.Challenge, error) {
	var (
		c           services.Challenge
		description sql.NullString
		category    sql.NullString
		active      int64
		created     string
		updated     string
	)
	err := row.Scan(&c.ID, &c.Title, &description, &category, &c.DurationDays, &c.Points, &active, &created, &updated)
	if err != nil {
		return nil, err
	}
	c.Description = description.String
	c.Category = category.String
	c.IsActive = int64ToBool(active)
	c.CreatedAt = parseTime(created)
	c.UpdatedAt = parseTime(updated)
	return &c, nil
}

func (s *SQLiteStore) GetChallenge(ctx context.Context, id string) (*services.Challenge, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, category, duration_days, points, is_active, created_at, updated_at
		FROM challenges WHERE id = ?`, id)
	c, err := s.scanChallenge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get challenge: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) ListChallenges(ctx context.Context, onlyActive bool) ([]*services.Challenge, error) {
	query := `
		SELECT id, title, description, category, duration_days, points, is_active, created_at, updated_at
		FROM challenges`
	if onlyActive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	defer rows.Close()

	var out []*services.Challenge
	for rows.Next() {
		c, err := s.scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertUserSession(ctx context.Context, us *services.UserSession) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_sessions (id, user_id, scheduled_at, status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		us.ID, us.UserID, fmtTime(us.ScheduledAt), us.Status, toNullString(us.Notes),
		fmtTime(us.CreatedAt), fmtTime(us.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert user session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUserSession(ctx context.Context, id string) (*services.UserSession, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, scheduled_at, status, notes, created_at, updated_at
		FROM user_sessions WHERE id = ?`, id)
	us, err := scanUserSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user session: %w", err)
	}
	return us, nil
}

func scanUserSession(row interface{ Scan(...any) error }) (*services.UserSession, error) {
	var (
		us        services.UserSession
		scheduled string
		notes     sql.NullString
		created   string
		updated   string
	)
	err := row.Scan(&us.ID, &us.UserID, &scheduled, &us.Status, &notes, &created, &updated)
	if err != nil {
		return nil, err
	}
	us.ScheduledAt = parseTime(scheduled)
	us.Notes = notes.String
	us.CreatedAt = parseTime(created)
	us.UpdatedAt = parseTime(updated)
	return &us, nil
}

func (s *SQLiteStore) UpdateUserSession(ctx context.Context, us *services.UserSession) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE user_sessions SET scheduled_at = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		fmtTime(us.ScheduledAt), us.Status, toNullString(us.Notes), fmtTime(us.UpdatedAt), us.ID)
	if err != nil {
		return false, fmt.Errorf("update user session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) ListUserSessions(ctx context.Context, userID string) ([]*services.UserSession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, scheduled_at, status, notes, created_at, updated_at
		FROM user_sessions WHERE user_id = ? ORDER BY scheduled_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}
	defer rows.Close()

	var out []*services.UserSession
	for rows.Next() {
		us, err := scanUserSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user session: %w", err)
		}
		out = append(out, us)
	}
	return out, rows.Err()
}

// --- dashboard ranges ---

func (s *SQLiteStore) ListHydrationRange(ctx context.Context, userID, from, to string) ([]*services.HydrationEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, date, amount_ml, source, created_at
		FROM water_tracking WHERE user_id = ? AND date BETWEEN ? AND ? ORDER BY date`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list hydration: %w", err)
	}
	defer rows.Close()

	var out []*services.HydrationEntry
	for rows.Next() {
		var (
			e       services.HydrationEntry
			source  sql.NullString
			created string
		)
		if err := rows.Scan(&e.UserID, &e.Date, &e.AmountML, &source, &created); err != nil {
			return nil, fmt.Errorf("scan hydration: %w", err)
		}
		e.Source = source.String
		e.CreatedAt = parseTime(created)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListSleepRange(ctx context.Context, userID, from, to string) ([]*services.SleepEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, date, hours, source, created_at
		FROM sleep_tracking WHERE user_id = ? AND date BETWEEN ? AND ? ORDER BY date`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list sleep: %w", err)
	}
	defer rows.Close()

	var out []*services.SleepEntry
	for rows.Next() {
		var (
			e       services.SleepEntry
			source  sql.NullString
			created string
		)
		if err := rows.Scan(&e.UserID, &e.Date, &e.Hours, &source, &created); err != nil {
			return nil, fmt.Errorf("scan sleep: %w", err)
		}
		e.Source = source.String
		e.CreatedAt = parseTime(created)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListMoodRange(ctx context.Context, userID, from, to string) ([]*services.MoodEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, date, energy_level, stress_level, day_rating, source, created_at
		FROM mood_tracking WHERE user_id = ? AND date BETWEEN ? AND ? ORDER BY date`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list mood: %w", err)
	}
	defer rows.Close()

	var out []*services.MoodEntry
	for rows.Next() {
		var (
			e       services.MoodEntry
			energy  sql.NullInt64
			stress  sql.NullInt64
			rating  sql.NullInt64
			source  sql.NullString
			created string
		)
		if err := rows.Scan(&e.UserID, &e.Date, &energy, &stress, &rating, &source, &created); err != nil {
			return nil, fmt.Errorf("scan mood: %w", err)
		}
		e.EnergyLevel = fromNullIntPtr(energy)
		e.StressLevel = fromNullIntPtr(stress)
		e.DayRating = fromNullIntPtr(rating)
		e.Source = source.String
		e.CreatedAt = parseTime(created)
		out = append(out, &e)
	}
	return out, rows.Err()
}
