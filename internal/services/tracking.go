package services

import (
	"fmt"
	"strconv"
)

// TrackingTag routes a question's answer into a secondary tracking domain.
// Questions without a tag carry TrackingNone and produce no derived record.
type TrackingTag string

const (
	TrackingNone         TrackingTag = ""
	TrackingWaterIntake  TrackingTag = "water_intake"
	TrackingSleepHours   TrackingTag = "sleep_hours"
	TrackingEnergyLevel  TrackingTag = "energy_level"
	TrackingStressLevel  TrackingTag = "stress_level"
	TrackingDayRating    TrackingTag = "day_rating"
	TrackingSmallVictory TrackingTag = "small_victory"
)

// TrackingKind discriminates the variant populated in a TrackingRecord.
type TrackingKind string

const (
	TrackingKindHydration  TrackingKind = "hydration"
	TrackingKindSleep      TrackingKind = "sleep"
	TrackingKindMood       TrackingKind = "mood"
	TrackingKindReflection TrackingKind = "reflection"
)

// TrackingRecord is the derived payload produced by DispatchTracking. Exactly
// one of the pointer fields matching Kind is set. The record carries no keys;
// the caller owns persistence and supplies (user, date).
type TrackingRecord struct {
	Kind       TrackingKind
	Hydration  *HydrationPayload
	Sleep      *SleepPayload
	Mood       *MoodPayload
	Reflection *ReflectionPayload
}

type HydrationPayload struct {
	AmountML int
}

type SleepPayload struct {
	Hours float64
}

// MoodPayload populates exactly one of the three per-day mood fields; the
// others stay nil so the store can merge without clobbering sibling fields.
type MoodPayload struct {
	EnergyLevel *int
	StressLevel *int
	DayRating   *int
}

type ReflectionPayload struct {
	Notes     string
	MoodScore int
}

// reflectionMoodScore is the fixed neutral-positive score stored with
// free-text reflections.
const reflectionMoodScore = 5

// waterAmountML maps the qualitative water intake buckets to milliliters.
// Total over the options of the water question and monotonically
// non-decreasing in intensity.
var waterAmountML = map[string]int{
	"Pouco":    500,
	"Moderado": 1500,
	"Muito":    2500,
}

// sleepHoursByBucket maps the qualitative sleep buckets to hours.
var sleepHoursByBucket = map[string]float64{
	"Menos de 5 horas":  4.5,
	"Entre 5 e 7 horas": 6,
	"Entre 7 e 9 horas": 8,
	"Mais de 9 horas":   9.5,
}

// DispatchTracking maps a tracking tag and an already-normalized answer value
// to the derived record payload for its tracking domain. Pure function, no
// I/O. A question without a known tag yields (nil, nil).
func DispatchTracking(tag TrackingTag, value string) (*TrackingRecord, error) {
	switch tag {
	case TrackingWaterIntake:
		ml, ok := waterAmountML[value]
		if !ok {
			return nil, fmt.Errorf("tracking: unknown water intake bucket %q", value)
		}
		return &TrackingRecord{Kind: TrackingKindHydration, Hydration: &HydrationPayload{AmountML: ml}}, nil
	case TrackingSleepHours:
		hours, ok := sleepHoursByBucket[value]
		if !ok {
			return nil, fmt.Errorf("tracking: unknown sleep bucket %q", value)
		}
		return &TrackingRecord{Kind: TrackingKindSleep, Sleep: &SleepPayload{Hours: hours}}, nil
	case TrackingEnergyLevel, TrackingStressLevel, TrackingDayRating:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("tracking: %s expects a numeric value, got %q", tag, value)
		}
		mood := &MoodPayload{}
		switch tag {
		case TrackingEnergyLevel:
			mood.EnergyLevel = &n
		case TrackingStressLevel:
			mood.StressLevel = &n
		case TrackingDayRating:
			mood.DayRating = &n
		}
		return &TrackingRecord{Kind: TrackingKindMood, Mood: mood}, nil
	case TrackingSmallVictory:
		return &TrackingRecord{
			Kind:       TrackingKindReflection,
			Reflection: &ReflectionPayload{Notes: value, MoodScore: reflectionMoodScore},
		}, nil
	default:
		// Unknown or absent tag: no derived record. Forward-compatible with
		// catalog entries the tracker does not know about.
		return nil, nil
	}
}
