// Package resultfile reads and writes graded runs as JSON arrays, one object
// per record with the fields statement, expected, actual and correct.
package resultfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	coreerrors "github.com/lueurxax/framing-eval/internal/core/errors"
	"github.com/lueurxax/framing-eval/internal/core/domain"
)

const (
	dateLayout  = "20060102"
	jsonExt     = ".json"
	chartExt    = ".png"
	indent      = "    "
	filePerm    = 0o644
	nameDivider = "-"
)

// ErrMalformedRecord reports a record missing a required field or holding a
// field of the wrong type.
var ErrMalformedRecord = fmt.Errorf("%w: malformed result record", coreerrors.ErrDataIntegrity)

// rawRecord keeps pointers so absent fields can be told apart from zero values.
type rawRecord struct {
	Statement    *string             `json:"statement"`
	Expected     *string             `json:"expected"`
	Actual       *string             `json:"actual"`
	Correct      *bool               `json:"correct"`
	EmotionGroup domain.EmotionGroup `json:"emotion_group"`
}

// Save writes records to path as an indented JSON array.
func Save(path string, records []domain.GradedRecord) error {
	if records == nil {
		records = []domain.GradedRecord{}
	}

	data, err := json.MarshalIndent(records, "", indent)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	return nil
}

// Load reads a results file. Every record must carry statement, expected,
// actual and correct; nothing is defaulted.
func Load(path string) ([]domain.GradedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}

	return Decode(data)
}

// Decode parses the JSON array form of a results file.
func Decode(data []byte) ([]domain.GradedRecord, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty results file", coreerrors.ErrDataIntegrity)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: results must be a JSON array: %w", coreerrors.ErrDataIntegrity, err)
	}

	if raws == nil {
		return nil, fmt.Errorf("%w: results must be a JSON array, got null", coreerrors.ErrDataIntegrity)
	}

	records := make([]domain.GradedRecord, 0, len(raws))

	for i, raw := range raws {
		rec, err := decodeRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		records = append(records, rec)
	}

	return records, nil
}

func decodeRecord(raw json.RawMessage) (domain.GradedRecord, error) {
	var r rawRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return domain.GradedRecord{}, fmt.Errorf("%w: field %q has type %s", ErrMalformedRecord, typeErr.Field, typeErr.Value)
		}

		return domain.GradedRecord{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}

	switch {
	case r.Statement == nil:
		return domain.GradedRecord{}, fmt.Errorf("%w: missing %q", ErrMalformedRecord, "statement")
	case r.Expected == nil:
		return domain.GradedRecord{}, fmt.Errorf("%w: missing %q", ErrMalformedRecord, "expected")
	case r.Actual == nil:
		return domain.GradedRecord{}, fmt.Errorf("%w: missing %q", ErrMalformedRecord, "actual")
	case r.Correct == nil:
		return domain.GradedRecord{}, fmt.Errorf("%w: missing %q", ErrMalformedRecord, "correct")
	case r.EmotionGroup != "" && !r.EmotionGroup.Valid():
		return domain.GradedRecord{}, fmt.Errorf("%w: unknown %q value %q", ErrMalformedRecord, "emotion_group", r.EmotionGroup)
	}

	return domain.GradedRecord{
		Statement:    *r.Statement,
		Expected:     *r.Expected,
		Actual:       *r.Actual,
		Correct:      *r.Correct,
		EmotionGroup: r.EmotionGroup,
	}, nil
}

// FileName returns the conventional "<YYYYMMDD>-<model>.json" name. Path
// separators in the model id are replaced so the name stays a single file.
func FileName(date time.Time, model string) string {
	safeModel := strings.NewReplacer("/", "_", `\`, "_", " ", "_").Replace(strings.TrimSpace(model))
	return date.Format(dateLayout) + nameDivider + safeModel + jsonExt
}

// ParseFileName recovers the run date and model from a results file name. It
// also accepts the older "<YYYYMMDD> - <model>.json" form.
func ParseFileName(path string) (time.Time, string, bool) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	datePart, model, found := strings.Cut(base, nameDivider)
	if !found {
		return time.Time{}, "", false
	}

	datePart = strings.TrimSpace(datePart)
	model = strings.TrimSpace(model)

	if len(datePart) != len(dateLayout) || model == "" {
		return time.Time{}, "", false
	}

	date, err := dateparse.ParseIn(datePart, time.UTC)
	if err != nil {
		return time.Time{}, "", false
	}

	return date, model, true
}

// ChartPath returns the image path written next to a results file.
func ChartPath(resultsPath string) string {
	if strings.HasSuffix(resultsPath, jsonExt) {
		return strings.TrimSuffix(resultsPath, jsonExt) + chartExt
	}

	return resultsPath + chartExt
}
