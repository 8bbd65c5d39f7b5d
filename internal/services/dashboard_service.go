package services

import (
	"context"
	"time"
)

// summaryWindowDays is the range of the trailing aggregates on the dashboard.
const summaryWindowDays = 7

// DashboardStore reads the per-day rows the summary aggregates over.
type DashboardStore interface {
	GetMissionSession(ctx context.Context, userID, date string) (*MissionSession, error)
	ListHydrationRange(ctx context.Context, userID, from, to string) ([]*HydrationEntry, error)
	ListSleepRange(ctx context.Context, userID, from, to string) ([]*SleepEntry, error)
	ListMoodRange(ctx context.Context, userID, from, to string) ([]*MoodEntry, error)
}

// DashboardSummary is the overview block of the user dashboard: today's
// mission status plus trailing 7-day tracking aggregates.
type DashboardSummary struct {
	Date             string  `json:"date"`
	MissionCompleted bool    `json:"mission_completed"`
	MissionPoints    int     `json:"mission_points"`
	StreakDays       int     `json:"streak_days"`
	WaterTotalML     int     `json:"water_total_ml"`
	WaterDays        int     `json:"water_days"`
	AvgSleepHours    float64 `json:"avg_sleep_hours"`
	AvgEnergyLevel   float64 `json:"avg_energy_level"`
	AvgStressLevel   float64 `json:"avg_stress_level"`
	AvgDayRating     float64 `json:"avg_day_rating"`
}

type DashboardService struct {
	store DashboardStore
}

func NewDashboardService(store DashboardStore) *DashboardService {
	return &DashboardService{store: store}
}

// Summary computes the dashboard overview for (user, date). The date is
// caller-supplied, same convention as the mission engine.
func (s *DashboardService) Summary(ctx context.Context, userID, date string) (*DashboardSummary, error) {
	if err := validateDayArgs(userID, date); err != nil {
		return nil, err
	}
	day, _ := time.Parse(DateLayout, date)
	from := day.AddDate(0, 0, -(summaryWindowDays - 1)).Format(DateLayout)

	out := &DashboardSummary{Date: date}

	sess, err := s.store.GetMissionSession(ctx, userID, date)
	if err != nil {
		return nil, persistErr("load session", err)
	}
	if sess != nil {
		out.MissionCompleted = sess.IsCompleted
		out.MissionPoints = sess.TotalPoints
		out.StreakDays = sess.StreakDays
	}

	hydration, err := s.store.ListHydrationRange(ctx, userID, from, date)
	if err != nil {
		return nil, persistErr("load hydration", err)
	}
	for _, h := range hydration {
		out.WaterTotalML += h.AmountML
	}
	out.WaterDays = len(hydration)

	sleep, err := s.store.ListSleepRange(ctx, userID, from, date)
	if err != nil {
		return nil, persistErr("load sleep", err)
	}
	if len(sleep) > 0 {
		var hours float64
		for _, e := range sleep {
			hours += e.Hours
		}
		out.AvgSleepHours = hours / float64(len(sleep))
	}

	moods, err := s.store.ListMoodRange(ctx, userID, from, date)
	if err != nil {
		return nil, persistErr("load mood", err)
	}
	out.AvgEnergyLevel = avgMoodField(moods, func(m *MoodEntry) *int { return m.EnergyLevel })
	out.AvgStressLevel = avgMoodField(moods, func(m *MoodEntry) *int { return m.StressLevel })
	out.AvgDayRating = avgMoodField(moods, func(m *MoodEntry) *int { return m.DayRating })

	return out, nil
}

// avgMoodField averages one mood field over the days it was actually
// recorded; days without the field do not dilute the average.
func avgMoodField(moods []*MoodEntry, pick func(*MoodEntry) *int) float64 {
	sum, n := 0, 0
	for _, m := range moods {
		if v := pick(m); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
