package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Father", "Student", "Status"},
		Rows: []map[string]string{
			{"Father": "Ahmed Hassan", "Student": "Omar Ahmed", "Status": "Passed"},
			{"Father": "Mahmoud Ali", "Student": "Laila Mahmoud", "Status": "Under Review"},
		},
	}
}

func readCSV(t *testing.T, out []byte) [][]string {
	t.Helper()
	require.True(t, bytes.HasPrefix(out, []byte(UTF8BOM)), "csv must start with a UTF-8 BOM")
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(out, []byte(UTF8BOM)))).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	records := readCSV(t, out)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Father", "Student", "Status"}, records[0])
	assert.Equal(t, "Laila Mahmoud", records[2][1])
}

func TestCSVExporterKeepsArabicText(t *testing.T) {
	data := Dataset{
		Headers: []string{"student_name_ar"},
		Rows:    []map[string]string{{"student_name_ar": "عمر أحمد"}},
	}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "عمر أحمد", readCSV(t, out)[1][0])
}

func TestCSVExporterEscapesFormulas(t *testing.T) {
	data := Dataset{
		Headers: []string{"Notes"},
		Rows: []map[string]string{
			{"Notes": "=HYPERLINK(\"http://evil\")"},
			{"Notes": "+201012345678"},
			{"Notes": "-2+3"},
			{"Notes": "@SUM(A1)"},
			{"Notes": "Omar = top student"},
		},
	}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	records := readCSV(t, out)
	require.Len(t, records, 6)
	assert.Equal(t, "'=HYPERLINK(\"http://evil\")", records[1][0])
	assert.Equal(t, "'+201012345678", records[2][0])
	assert.Equal(t, "'-2+3", records[3][0])
	assert.Equal(t, "'@SUM(A1)", records[4][0])
	assert.Equal(t, "Omar = top student", records[5][0])
}

func TestEscapeFormula(t *testing.T) {
	cases := map[string]string{
		"":       "",
		"Passed": "Passed",
		"=1+1":   "'=1+1",
		"\tcmd":  "'\tcmd",
		"a=b":    "a=b",
	}
	for in, want := range cases {
		assert.Equal(t, want, EscapeFormula(in), in)
	}
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Applications")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset(), "Applications")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Applications")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Father", rows[0][0])
	assert.Equal(t, "Passed", rows[1][2])
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "")
	assert.Error(t, err)
	_, err = NewXLSXExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}
