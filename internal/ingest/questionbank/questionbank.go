// Package questionbank loads the question battery. Each emotion group lives in
// its own section (a workbook sheet or a YAML key); the section decides the
// group, never the statement text.
//
// Any problem with the bank is fatal: the caller must not start invoking the
// model with a partial battery.
package questionbank

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	coreerrors "github.com/lueurxax/framing-eval/internal/core/errors"
	"github.com/lueurxax/framing-eval/internal/core/domain"
)

const (
	columnStatement = "statement"
	columnExpected  = "expected"
)

var (
	ErrMissingSection = errors.New("question bank section missing")
	ErrMissingColumn  = errors.New("required column missing")
	ErrEmptyField     = errors.New("empty statement or expected answer")
)

// section is a named part of the bank and the group its rows belong to.
type section struct {
	name  string
	group domain.EmotionGroup
}

// Sections are read in this order. The jealousy sheet keeps the spelling
// used by the published question banks.
var sections = []section{
	{"pride", domain.EmotionPride},
	{"guilt", domain.EmotionGuilt},
	{"jelousy", domain.EmotionJealousy},
	{"shame", domain.EmotionShame},
	{"empathy", domain.EmotionEmpathy},
}

// SectionNames returns the section names in load order.
func SectionNames() []string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.name
	}

	return names
}

// Load reads a question bank from an .xlsx workbook or a .yaml/.yml file.
func Load(path string) ([]domain.Question, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadWorkbook(path)
	case ".yaml", ".yml":
		return loadYAML(path)
	default:
		return nil, fmt.Errorf("%w: %s", coreerrors.ErrUnsupportedFormat, path)
	}
}

func loadWorkbook(path string) ([]domain.Question, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	var questions []domain.Question

	for _, s := range sections {
		rows, err := f.GetRows(s.name)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %w", ErrMissingSection, s.name, err)
		}

		sheetQuestions, err := parseRows(s, rows)
		if err != nil {
			return nil, err
		}

		questions = append(questions, sheetQuestions...)
	}

	return questions, nil
}

// parseRows reads a header row followed by data rows. Fully blank rows are skipped.
func parseRows(s section, rows [][]string) ([]domain.Question, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no header row", ErrMissingColumn, s.name)
	}

	statementCol, expectedCol := -1, -1

	for i, header := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(header)) {
		case columnStatement:
			statementCol = i
		case columnExpected:
			expectedCol = i
		}
	}

	if statementCol < 0 || expectedCol < 0 {
		return nil, fmt.Errorf("%w: sheet %q needs Statement and Expected", ErrMissingColumn, s.name)
	}

	questions := make([]domain.Question, 0, len(rows)-1)

	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		q := domain.Question{
			Statement:    strings.TrimSpace(cell(row, statementCol)),
			Expected:     strings.TrimSpace(cell(row, expectedCol)),
			EmotionGroup: s.group,
		}

		if q.Statement == "" || q.Expected == "" {
			// +2: one for the header, one for 1-based spreadsheet rows.
			return nil, fmt.Errorf("%w: sheet %q row %d", ErrEmptyField, s.name, i+2)
		}

		questions = append(questions, q)
	}

	return questions, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}

	return row[idx]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}

	return true
}

type yamlRow struct {
	Statement string `yaml:"statement"`
	Expected  string `yaml:"expected"`
}

func loadYAML(path string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}

	var bank map[string][]yamlRow
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}

	var questions []domain.Question

	for _, s := range sections {
		rows, ok := bank[s.name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingSection, s.name)
		}

		for i, row := range rows {
			q := domain.Question{
				Statement:    strings.TrimSpace(row.Statement),
				Expected:     strings.TrimSpace(row.Expected),
				EmotionGroup: s.group,
			}

			if q.Statement == "" || q.Expected == "" {
				return nil, fmt.Errorf("%w: section %q item %d", ErrEmptyField, s.name, i+1)
			}

			questions = append(questions, q)
		}
	}

	return questions, nil
}
