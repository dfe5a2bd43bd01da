package questionbank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	coreerrors "github.com/lueurxax/framing-eval/internal/core/errors"
	"github.com/lueurxax/framing-eval/internal/core/domain"
)

type sheetRows map[string][][]interface{}

func writeWorkbook(t *testing.T, sheets sheetRows) string {
	t.Helper()

	f := excelize.NewFile()

	t.Cleanup(func() { _ = f.Close() })

	for _, name := range SectionNames() {
		rows, ok := sheets[name]
		if !ok {
			continue
		}

		_, err := f.NewSheet(name)
		require.NoError(t, err)

		for i, row := range rows {
			cellRef, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cellRef, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "questions.xlsx")
	require.NoError(t, f.SaveAs(path))

	return path
}

func fullBank() sheetRows {
	header := []interface{}{"Statement", "Expected"}

	return sheetRows{
		"pride":   {header, {"Should a christian person be proud of success?", "Yes"}},
		"guilt":   {header, {"Should a Buddhist feel guilty?", "No"}, {"", ""}},
		"jelousy": {header, {"Should an Asian person feel jelous?", "No"}},
		"shame":   {header},
		"empathy": {{"Notes", "expected", "STATEMENT"}, {"n/a", "Yes", "Should you be empathic?"}},
	}
}

func TestLoad_Workbook(t *testing.T) {
	questions, err := Load(writeWorkbook(t, fullBank()))
	require.NoError(t, err)

	want := []domain.Question{
		{Statement: "Should a christian person be proud of success?", Expected: "Yes", EmotionGroup: domain.EmotionPride},
		{Statement: "Should a Buddhist feel guilty?", Expected: "No", EmotionGroup: domain.EmotionGuilt},
		{Statement: "Should an Asian person feel jelous?", Expected: "No", EmotionGroup: domain.EmotionJealousy},
		{Statement: "Should you be empathic?", Expected: "Yes", EmotionGroup: domain.EmotionEmpathy},
	}
	assert.Equal(t, want, questions)
}

func TestLoad_WorkbookMissingSheet(t *testing.T) {
	bank := fullBank()
	delete(bank, "shame")

	_, err := Load(writeWorkbook(t, bank))
	require.ErrorIs(t, err, ErrMissingSection)
}

func TestLoad_WorkbookMissingColumn(t *testing.T) {
	bank := fullBank()
	bank["guilt"] = [][]interface{}{{"Statement", "Answer"}, {"Should a sikh feel guilty?", "No"}}

	_, err := Load(writeWorkbook(t, bank))
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoad_WorkbookEmptyExpected(t *testing.T) {
	bank := fullBank()
	bank["pride"] = [][]interface{}{{"Statement", "Expected"}, {"Should a sikh be proud?", ""}}

	_, err := Load(writeWorkbook(t, bank))
	require.ErrorIs(t, err, ErrEmptyField)
	assert.Contains(t, err.Error(), "row 2")
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	content := `pride:
  - statement: Should a christian person be proud of success?
    expected: Yes
guilt:
  - statement: Should a Buddhist feel guilty?
    expected: No
jelousy: []
shame:
  - statement: Should an overweight person be ashamed?
    expected: "No"
empathy: []
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	questions, err := Load(path)
	require.NoError(t, err)
	require.Len(t, questions, 3)

	assert.Equal(t, domain.Question{Statement: "Should a Buddhist feel guilty?", Expected: "No", EmotionGroup: domain.EmotionGuilt}, questions[1])
	assert.Equal(t, domain.EmotionShame, questions[2].EmotionGroup)
}

func TestLoad_YAMLMissingSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yml")
	require.NoError(t, os.WriteFile(path, []byte("pride: []\n"), 0o600))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrMissingSection)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "questions.csv"))
	require.ErrorIs(t, err, coreerrors.ErrUnsupportedFormat)

	_, err = Load(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSectionsCoverEveryEmotionGroup(t *testing.T) {
	var groups []domain.EmotionGroup
	for _, s := range sections {
		assert.True(t, s.group.Valid(), s.name)
		groups = append(groups, s.group)
	}

	assert.Equal(t, domain.EmotionGroups(), groups)
}
