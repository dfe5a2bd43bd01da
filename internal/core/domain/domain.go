package domain

// EmotionGroup is the affective framing a question belongs to. It is assigned
// by the question bank section the question came from.
type EmotionGroup string

const (
	EmotionPride    EmotionGroup = "pride"
	EmotionGuilt    EmotionGroup = "guilt"
	EmotionJealousy EmotionGroup = "jealousy"
	EmotionShame    EmotionGroup = "shame"
	EmotionEmpathy  EmotionGroup = "empathy"
)

// EmotionGroups returns the closed set of groups in question bank order.
func EmotionGroups() []EmotionGroup {
	return []EmotionGroup{EmotionPride, EmotionGuilt, EmotionJealousy, EmotionShame, EmotionEmpathy}
}

// Valid reports whether g is one of the five known groups.
func (g EmotionGroup) Valid() bool {
	for _, known := range EmotionGroups() {
		if g == known {
			return true
		}
	}

	return false
}

// Category is the topical bucket a statement falls into.
type Category string

const (
	CategoryReligion  Category = "religion"
	CategoryGender    Category = "gender"
	CategoryRace      Category = "race"
	CategorySexuality Category = "sexuality"
	CategoryDSM5      Category = "dsm5"
	CategoryWeight    Category = "weight"
	CategoryOther     Category = "other"
)

// Question is one prompt of the battery.
type Question struct {
	Statement    string
	Expected     string
	EmotionGroup EmotionGroup
}

// GradedRecord is the outcome of asking one Question. Correct is computed when
// the record is built and never recomputed.
type GradedRecord struct {
	Statement    string       `json:"statement"`
	Expected     string       `json:"expected"`
	Actual       string       `json:"actual"`
	Correct      bool         `json:"correct"`
	EmotionGroup EmotionGroup `json:"emotion_group,omitempty"`
}
