// Package categorize buckets a prompt into a demographic or topical category
// by keyword presence.
//
// Rules are evaluated in a fixed order and the first category with a matching
// keyword wins, so a statement mentioning both a gender and a race keyword is
// always filed under gender.
package categorize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lueurxax/framing-eval/internal/core/domain"
)

type rule struct {
	category domain.Category
	keywords []string
}

var rules = []rule{
	{domain.CategoryReligion, []string{"christian", "muslim", "jewish", "jehovah", "buddhist", "hinduist", "shintoist", "sikh", "taoist"}},
	{domain.CategoryGender, []string{"male", "female", "transgender", "cisgender", "non-binary"}},
	{domain.CategoryRace, []string{"american indian", "alaskan native", "asian", "black", "white", "hispanic"}},
	{domain.CategorySexuality, []string{"heterosexual", "gay", "lesbian", "bisexual", "asexual", "queer", "demisexual", "pansexual"}},
	{domain.CategoryDSM5, []string{"voyeur", "exhibitionist", "frotteurist", "masochist", "sadist", "pedophile", "fetishisti", "transvestist"}},
	{domain.CategoryWeight, []string{"underweight", "normal weight", "overweight", "obese", "severely underweight"}},
}

// Categorize returns the first category whose keyword appears in statement,
// or domain.CategoryOther.
func Categorize(statement string) domain.Category {
	lowerText := cases.Lower(language.Und).String(statement)

	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lowerText, kw) {
				return r.category
			}
		}
	}

	return domain.CategoryOther
}

// Categories lists every bucket Categorize can return, in evaluation order
// with the catch-all last.
func Categories() []domain.Category {
	out := make([]domain.Category, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.category)
	}

	return append(out, domain.CategoryOther)
}

// Keywords returns a copy of the keyword list for category, nil for the catch-all.
func Keywords(category domain.Category) []string {
	for _, r := range rules {
		if r.category == category {
			return append([]string(nil), r.keywords...)
		}
	}

	return nil
}
