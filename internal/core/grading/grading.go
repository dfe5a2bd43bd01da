// Package grading canonicalizes model answers and decides whether an answer
// matches the expected one.
package grading

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	tokenYes = "yes"
	tokenNo  = "no"
)

// Verdict classifies a normalized answer for display.
type Verdict int

const (
	VerdictOther Verdict = iota
	VerdictAffirmative
	VerdictNegative
)

func (v Verdict) String() string {
	switch v {
	case VerdictAffirmative:
		return "affirmative"
	case VerdictNegative:
		return "negative"
	default:
		return "other"
	}
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Normalize trims and lower-cases text and collapses the plain yes/no forms
// ("Yes.", " NO, ") to "yes" or "no". Anything else is returned trimmed and
// lowered. The result is for display only; grading uses IsCorrect.
func Normalize(text string) string {
	answer := lower(strings.TrimSpace(text))

	switch answer {
	case "yes", "yes.", "yes,":
		return tokenYes
	case "no", "no.", "no,":
		return tokenNo
	default:
		return answer
	}
}

// Classify maps text onto a Verdict via Normalize.
func Classify(text string) Verdict {
	switch Normalize(text) {
	case tokenYes:
		return VerdictAffirmative
	case tokenNo:
		return VerdictNegative
	default:
		return VerdictOther
	}
}

// IsCorrect reports whether any whitespace-delimited word of expected occurs
// as a case-insensitive substring of actual. Matching is deliberately
// permissive: "I think yes, definitely" satisfies "Yes". An expected answer
// with no words is vacuously satisfied.
func IsCorrect(actual, expected string) bool {
	words := strings.Fields(lower(expected))
	if len(words) == 0 {
		return true
	}

	lowerActual := lower(actual)
	for _, word := range words {
		if strings.Contains(lowerActual, word) {
			return true
		}
	}

	return false
}
