// Package aggregate summarises a batch of graded records overall, by emotion
// phrase and by category, and isolates the failures.
package aggregate

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lueurxax/framing-eval/internal/core/categorize"
	"github.com/lueurxax/framing-eval/internal/core/domain"
)

// Tally counts correct answers out of a total.
type Tally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Incorrect returns Total - Correct.
func (t Tally) Incorrect() int {
	return t.Total - t.Correct
}

// Accuracy returns the share of correct answers, 0 for an empty tally.
func (t Tally) Accuracy() float64 {
	if t.Total == 0 {
		return 0
	}

	return float64(t.Correct) / float64(t.Total)
}

func (t *Tally) add(correct bool) {
	t.Total++
	if correct {
		t.Correct++
	}
}

// EmotionTally is the tally of records whose statement contains Phrase.
type EmotionTally struct {
	Emotion domain.EmotionGroup `json:"emotion"`
	Phrase  string              `json:"phrase"`
	Tally
}

// CategoryTally is the tally of records categorized into Category.
type CategoryTally struct {
	Category domain.Category `json:"category"`
	Tally
}

// Report is a read-only view over one batch of records.
//
// ByEmotion matches phrases in the statement text, so a record mentioning no
// phrase is not counted and a record mentioning several is counted once per
// phrase; EmotionUnmatched and EmotionMultiMatched expose both cases instead
// of forcing the totals to reconcile with Overall.
type Report struct {
	Overall             Tally                 `json:"overall"`
	ByEmotion           []EmotionTally        `json:"by_emotion"`
	ByCategory          []CategoryTally       `json:"by_category"`
	Failures            []domain.GradedRecord `json:"failures"`
	EmotionUnmatched    int                   `json:"emotion_unmatched"`
	EmotionMultiMatched int                   `json:"emotion_multi_matched"`
}

type emotionPhrase struct {
	emotion domain.EmotionGroup
	phrase  string
}

// The jealousy phrase keeps the question bank's spelling.
var emotionPhrases = []emotionPhrase{
	{domain.EmotionPride, "be proud"},
	{domain.EmotionGuilt, "feel guilty"},
	{domain.EmotionJealousy, "feel jelous"},
	{domain.EmotionShame, "be ashamed"},
	{domain.EmotionEmpathy, "be empathic"},
}

// EmotionPhrase returns the phrase counted for an emotion group.
func EmotionPhrase(g domain.EmotionGroup) string {
	for _, ep := range emotionPhrases {
		if ep.emotion == g {
			return ep.phrase
		}
	}

	return ""
}

// Aggregate builds a Report in a single pass. records is not modified.
func Aggregate(records []domain.GradedRecord) Report {
	rep := Report{
		ByEmotion:  make([]EmotionTally, len(emotionPhrases)),
		ByCategory: make([]CategoryTally, 0, len(categorize.Categories())),
		Failures:   make([]domain.GradedRecord, 0),
	}

	for i, ep := range emotionPhrases {
		rep.ByEmotion[i] = EmotionTally{Emotion: ep.emotion, Phrase: ep.phrase}
	}

	categoryIndex := make(map[domain.Category]int, len(categorize.Categories()))
	for _, c := range categorize.Categories() {
		categoryIndex[c] = len(rep.ByCategory)
		rep.ByCategory = append(rep.ByCategory, CategoryTally{Category: c})
	}

	caser := cases.Lower(language.Und)

	for _, rec := range records {
		rep.Overall.add(rec.Correct)

		rep.ByCategory[categoryIndex[categorize.Categorize(rec.Statement)]].add(rec.Correct)

		lowerStatement := caser.String(rec.Statement)
		matched := 0

		for i, ep := range emotionPhrases {
			if strings.Contains(lowerStatement, ep.phrase) {
				rep.ByEmotion[i].add(rec.Correct)
				matched++
			}
		}

		switch {
		case matched == 0:
			rep.EmotionUnmatched++
		case matched > 1:
			rep.EmotionMultiMatched++
		}

		if !rec.Correct {
			rep.Failures = append(rep.Failures, rec)
		}
	}

	return rep
}

// CategoryTotal sums the category tallies.
func (r Report) CategoryTotal() int {
	total := 0
	for _, c := range r.ByCategory {
		total += c.Total
	}

	return total
}

// EmotionTotal sums the emotion tallies. It equals Overall.Total only when
// every statement carries exactly one emotion phrase.
func (r Report) EmotionTotal() int {
	total := 0
	for _, e := range r.ByEmotion {
		total += e.Total
	}

	return total
}
