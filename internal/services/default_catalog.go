package services

// defaultQuestions is the built-in daily mission questionnaire. The wording is
// product copy (pt-BR); the engine only cares about ids, ordering, types,
// points and tracking tags. Versioned with the binary, never mutated at
// runtime.
var defaultQuestions = []Question{
	{
		ID:      "morning_sleep",
		Section: SectionMorning,
		Type:    QuestionMultipleChoice,
		Text:    "Quanto tempo você dormiu esta noite?",
		Order:   1,
		Points:  10,
		Options: []string{
			"Menos de 5 horas",
			"Entre 5 e 7 horas",
			"Entre 7 e 9 horas",
			"Mais de 9 horas",
		},
		Tracking: TrackingSleepHours,
	},
	{
		ID:      "morning_water",
		Section: SectionMorning,
		Type:    QuestionMultipleChoice,
		Text:    "Quanta água você bebeu ontem?",
		Order:   2,
		Points:  10,
		Options: []string{"Pouco", "Moderado", "Muito"},
		Tracking: TrackingWaterIntake,
	},
	{
		ID:      "morning_energy",
		Section: SectionMorning,
		Type:    QuestionEmojiScale,
		Text:    "Qual é o seu nível de energia agora?",
		Order:   3,
		Points:  10,
		Scale: &ScaleSpec{
			Labels: []string{"Muito baixo", "Baixo", "Normal", "Alto", "Muito alto"},
			Emojis: []string{"😴", "😪", "🙂", "😃", "🤩"},
		},
		Tracking: TrackingEnergyLevel,
	},
	{
		ID:      "habits_meals",
		Section: SectionHabits,
		Type:    QuestionYesNo,
		Text:    "Você fez todas as refeições planejadas hoje?",
		Order:   4,
		Points:  10,
	},
	{
		ID:      "habits_exercise",
		Section: SectionHabits,
		Type:    QuestionYesNo,
		Text:    "Você praticou alguma atividade física hoje?",
		Order:   5,
		Points:  15,
	},
	{
		ID:      "habits_screen",
		Section: SectionHabits,
		Type:    QuestionMultipleChoice,
		Text:    "Quanto tempo de tela você teve antes de dormir ontem?",
		Order:   6,
		Points:  10,
		Options: []string{"Nenhum", "Menos de 30 minutos", "Entre 30 minutos e 1 hora", "Mais de 1 hora"},
	},
	{
		ID:      "mindset_stress",
		Section: SectionMindset,
		Type:    QuestionScale,
		Text:    "Qual foi o seu nível de estresse hoje?",
		Order:   7,
		Points:  10,
		Scale: &ScaleSpec{
			Labels: []string{"Muito tranquilo", "Tranquilo", "Neutro", "Estressado", "Muito estressado"},
		},
		Tracking: TrackingStressLevel,
	},
	{
		ID:       "mindset_day_rating",
		Section:  SectionMindset,
		Type:     QuestionStarScale,
		Text:     "Como você avalia o seu dia?",
		Order:    8,
		Points:   15,
		Tracking: TrackingDayRating,
	},
	{
		ID:       "mindset_victory",
		Section:  SectionMindset,
		Type:     QuestionText,
		Text:     "Qual foi a sua pequena vitória de hoje?",
		Order:    9,
		Points:   20,
		Tracking: TrackingSmallVictory,
	},
}

// DefaultCatalog returns the built-in daily mission catalog.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultQuestions)
	if err != nil {
		// The default set is static data validated by tests; an error here is
		// a programming mistake.
		panic(err)
	}
	return c
}
