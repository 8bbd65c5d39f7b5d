package services

import "testing"

func TestDispatchWaterIntake(t *testing.T) {
	rec, err := DispatchTracking(TrackingWaterIntake, "Moderado")
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if rec.Kind != TrackingKindHydration || rec.Hydration == nil {
		t.Fatalf("record = %+v, want hydration variant", rec)
	}
	if rec.Hydration.AmountML != 1500 {
		t.Fatalf("amount = %d, want 1500", rec.Hydration.AmountML)
	}

	if _, err := DispatchTracking(TrackingWaterIntake, "Bastante"); err == nil {
		t.Fatalf("unknown bucket should error")
	}
}

func TestWaterMappingIsMonotonic(t *testing.T) {
	order := []string{"Pouco", "Moderado", "Muito"}
	prev := -1
	for _, bucket := range order {
		ml := waterAmountML[bucket]
		if ml < prev {
			t.Fatalf("water mapping not monotonic at %q: %d < %d", bucket, ml, prev)
		}
		prev = ml
	}
}

func TestDispatchSleepHours(t *testing.T) {
	rec, err := DispatchTracking(TrackingSleepHours, "Entre 7 e 9 horas")
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if rec.Kind != TrackingKindSleep || rec.Sleep == nil || rec.Sleep.Hours != 8 {
		t.Fatalf("record = %+v, want sleep 8h", rec)
	}
}

func TestDispatchMoodTagsSelectSingleField(t *testing.T) {
	cases := []struct {
		tag   TrackingTag
		check func(*MoodPayload) *int
	}{
		{TrackingEnergyLevel, func(m *MoodPayload) *int { return m.EnergyLevel }},
		{TrackingStressLevel, func(m *MoodPayload) *int { return m.StressLevel }},
		{TrackingDayRating, func(m *MoodPayload) *int { return m.DayRating }},
	}
	for _, tc := range cases {
		rec, err := DispatchTracking(tc.tag, "3")
		if err != nil {
			t.Fatalf("%s: %v", tc.tag, err)
		}
		if rec.Kind != TrackingKindMood || rec.Mood == nil {
			t.Fatalf("%s: record = %+v, want mood variant", tc.tag, rec)
		}
		if v := tc.check(rec.Mood); v == nil || *v != 3 {
			t.Fatalf("%s: selected field = %v, want 3", tc.tag, v)
		}
		set := 0
		for _, p := range []*int{rec.Mood.EnergyLevel, rec.Mood.StressLevel, rec.Mood.DayRating} {
			if p != nil {
				set++
			}
		}
		if set != 1 {
			t.Fatalf("%s: %d mood fields set, want exactly 1", tc.tag, set)
		}
	}

	if _, err := DispatchTracking(TrackingEnergyLevel, "alto"); err == nil {
		t.Fatalf("non-numeric mood value should error")
	}
}

func TestDispatchSmallVictory(t *testing.T) {
	rec, err := DispatchTracking(TrackingSmallVictory, "Meditei 10 minutos")
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if rec.Kind != TrackingKindReflection || rec.Reflection == nil {
		t.Fatalf("record = %+v, want reflection variant", rec)
	}
	if rec.Reflection.Notes != "Meditei 10 minutos" || rec.Reflection.MoodScore != reflectionMoodScore {
		t.Fatalf("reflection = %+v", rec.Reflection)
	}
}

func TestDispatchUnknownTagYieldsNothing(t *testing.T) {
	for _, tag := range []TrackingTag{TrackingNone, "steps_count"} {
		rec, err := DispatchTracking(tag, "whatever")
		if err != nil || rec != nil {
			t.Fatalf("tag %q: got (%+v, %v), want (nil, nil)", tag, rec, err)
		}
	}
}
