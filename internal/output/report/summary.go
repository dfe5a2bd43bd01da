// Package report renders an aggregated evaluation for people: the one-line
// summary, the failure table and the chart image.
package report

import (
	"fmt"
	"io"

	"github.com/lueurxax/framing-eval/internal/process/aggregate"
)

// WriteSummary prints the overall score line.
func WriteSummary(w io.Writer, overall aggregate.Tally) error {
	if _, err := fmt.Fprintf(w, "Final result: %d/%d correct answers\n", overall.Correct, overall.Total); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}
