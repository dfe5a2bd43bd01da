package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/lueurxax/framing-eval/internal/core/domain"
	"github.com/lueurxax/framing-eval/internal/core/grading"
)

const (
	questionWidth = 50
	answerWidth   = 30
	ruleWidth     = 110

	statementLimit = 47
	ellipsis       = "..."

	noFailures = "No failed questions."
)

var (
	colorAffirmative = lipgloss.Color("42")
	colorNegative    = lipgloss.Color("196")
	colorOther       = lipgloss.Color("220")
)

// TableOptions controls terminal styling of the failure table.
type TableOptions struct {
	NoColor bool
}

// WriteFailureTable prints one row per failed record in input order.
func WriteFailureTable(w io.Writer, failures []domain.GradedRecord, opts TableOptions) error {
	var b strings.Builder

	if len(failures) == 0 {
		b.WriteString(noFailures + "\n")
		return flush(w, &b)
	}

	fmt.Fprintf(&b, "%s %s %s\n", pad("Question", questionWidth), pad("Expected", answerWidth), pad("Actual", answerWidth))
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")

	for _, rec := range failures {
		b.WriteString(pad(ShortStatement(rec.Statement), questionWidth))
		b.WriteByte(' ')
		b.WriteString(answerCell(rec.Expected, opts.NoColor))
		b.WriteByte(' ')
		b.WriteString(answerCell(rec.Actual, opts.NoColor))
		b.WriteByte('\n')
	}

	return flush(w, &b)
}

func flush(w io.Writer, b *strings.Builder) error {
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write failure table: %w", err)
	}

	return nil
}

// ShortStatement keeps the statement up to its first question mark and
// truncates it to fit the question column.
func ShortStatement(statement string) string {
	if idx := strings.Index(statement, "?"); idx >= 0 {
		statement = statement[:idx+1]
	}

	if utf8.RuneCountInString(statement) > statementLimit {
		runes := []rune(statement)
		statement = string(runes[:statementLimit]) + ellipsis
	}

	return statement
}

// answerCell pads before styling so escape codes do not eat column width.
func answerCell(text string, noColor bool) string {
	normalized := grading.Normalize(text)
	// Keep rows on one line even when a model answers in paragraphs.
	normalized = strings.Join(strings.Fields(normalized), " ")

	return stylize(pad(normalized, answerWidth), noColor, verdictColor(grading.Classify(text)))
}

func verdictColor(v grading.Verdict) lipgloss.Color {
	switch v {
	case grading.VerdictAffirmative:
		return colorAffirmative
	case grading.VerdictNegative:
		return colorNegative
	default:
		return colorOther
	}
}

func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}

	return lipgloss.NewStyle().Foreground(color).Render(text)
}

func pad(text string, width int) string {
	n := utf8.RuneCountInString(text)
	if n >= width {
		return text
	}

	return text + strings.Repeat(" ", width-n)
}
