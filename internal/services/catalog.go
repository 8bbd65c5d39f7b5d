package services

import (
	"fmt"
	"sort"
	"strings"
)

// Section groups questions for display purposes only; sequencing runs linearly
// across the whole catalog regardless of section.
type Section string

const (
	SectionMorning Section = "morning"
	SectionHabits  Section = "habits"
	SectionMindset Section = "mindset"
)

// QuestionType selects the widget and the answer validation rules.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionYesNo          QuestionType = "yes_no"
	QuestionScale          QuestionType = "scale"
	QuestionEmojiScale     QuestionType = "emoji_scale"
	QuestionStarScale      QuestionType = "star_scale"
	QuestionText           QuestionType = "text"
)

// starScalePoints is the fixed size of star_scale questions.
const starScalePoints = 5

// ScaleSpec carries the labels of a scale question. Emojis are display-only
// and ignored by the engine.
type ScaleSpec struct {
	Labels []string `json:"labels"`
	Emojis []string `json:"emojis,omitempty"`
}

// Question is one immutable daily mission question definition.
type Question struct {
	ID       string       `json:"id"`
	Section  Section      `json:"section"`
	Type     QuestionType `json:"type"`
	Text     string       `json:"text"`
	Order    int          `json:"order"`
	Points   int          `json:"points"`
	Options  []string     `json:"options,omitempty"`
	Scale    *ScaleSpec   `json:"scale,omitempty"`
	Tracking TrackingTag  `json:"tracking,omitempty"`
}

// scaleLen returns the number of selectable positions for scale-kind questions.
func (q Question) scaleLen() int {
	if q.Type == QuestionStarScale {
		return starScalePoints
	}
	if q.Scale == nil {
		return 0
	}
	return len(q.Scale.Labels)
}

// Catalog is an immutable, statically ordered question collection. It is built
// once at startup and injected into the services that need it; there is no
// package-level mutable question list.
type Catalog struct {
	questions []Question
	index     map[string]int
}

// NewCatalog validates the question definitions and returns a catalog sorted
// by (Order, ID).
func NewCatalog(questions []Question) (*Catalog, error) {
	qs := make([]Question, len(questions))
	copy(qs, questions)
	sort.SliceStable(qs, func(i, j int) bool {
		if qs[i].Order != qs[j].Order {
			return qs[i].Order < qs[j].Order
		}
		return qs[i].ID < qs[j].ID
	})

	index := make(map[string]int, len(qs))
	for i, q := range qs {
		if strings.TrimSpace(q.ID) == "" {
			return nil, fmt.Errorf("catalog: question at position %d has empty id", i)
		}
		if _, dup := index[q.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate question id %q", q.ID)
		}
		if q.Points < 0 {
			return nil, fmt.Errorf("catalog: question %q has negative points", q.ID)
		}
		switch q.Section {
		case SectionMorning, SectionHabits, SectionMindset:
		default:
			return nil, fmt.Errorf("catalog: question %q has unknown section %q", q.ID, q.Section)
		}
		switch q.Type {
		case QuestionMultipleChoice:
			if len(q.Options) < 2 {
				return nil, fmt.Errorf("catalog: multiple_choice question %q needs at least 2 options", q.ID)
			}
		case QuestionScale, QuestionEmojiScale:
			if q.Scale == nil || len(q.Scale.Labels) < 2 {
				return nil, fmt.Errorf("catalog: scale question %q needs scale labels", q.ID)
			}
		case QuestionStarScale:
			if q.Scale != nil && len(q.Scale.Labels) != starScalePoints {
				return nil, fmt.Errorf("catalog: star_scale question %q must have %d labels", q.ID, starScalePoints)
			}
		case QuestionYesNo, QuestionText:
			if len(q.Options) > 0 || q.Scale != nil {
				return nil, fmt.Errorf("catalog: question %q of type %s must not declare options or scale", q.ID, q.Type)
			}
		default:
			return nil, fmt.Errorf("catalog: question %q has unknown type %q", q.ID, q.Type)
		}
		index[q.ID] = i
	}
	return &Catalog{questions: qs, index: index}, nil
}

// Len returns the number of questions.
func (c *Catalog) Len() int { return len(c.questions) }

// At returns the question at position i in catalog order.
func (c *Catalog) At(i int) Question { return c.questions[i] }

// All returns every question in catalog order. The result is a copy; mutating
// it does not affect the catalog.
func (c *Catalog) All() []Question {
	out := make([]Question, len(c.questions))
	copy(out, c.questions)
	return out
}

// Find returns the question with the given id.
func (c *Catalog) Find(id string) (Question, bool) {
	if i, ok := c.index[id]; ok {
		return c.questions[i], true
	}
	return Question{}, false
}

// BySection returns the questions of one section, preserving catalog order.
// Used for display grouping only; sequencing ignores sections.
func (c *Catalog) BySection(s Section) []Question {
	var out []Question
	for _, q := range c.questions {
		if q.Section == s {
			out = append(out, q)
		}
	}
	return out
}
