package utils

// Minimal server-side i18n for fixed keys. Question wording and UI strings
// live with the frontend; the server only translates its own messages.

var translations = map[string]map[string]string{
	"pt": {
		"health.ok":         "ok",
		"mission.completed": "Missão diária completa!",
		"section.morning":   "Missões da Manhã",
		"section.habits":    "Hábitos Diários",
		"section.mindset":   "Mentalidade",
	},
	"en": {
		"health.ok":         "ok",
		"mission.completed": "Daily mission complete!",
		"section.morning":   "Morning missions",
		"section.habits":    "Daily habits",
		"section.mindset":   "Mindset",
	},
}

// T returns the translated string for key in locale; falls back to Portuguese.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations["pt"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}
