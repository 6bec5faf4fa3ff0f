package spreadsheet

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/power-curve-service/internal/domain"
)

var header = []string{
	domain.ColumnTurbine, domain.ColumnModel, domain.ColumnSite, domain.ColumnCustomer,
	domain.ColumnWeek, domain.ColumnWindSpeed, domain.ColumnActivePower, domain.ColumnValidity,
}

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, header, rows))
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want Format
	}{
		{"export.xlsx", nil, FormatXLSX},
		{"EXPORT.XLSX", nil, FormatXLSX},
		{"export.csv", []byte("PK\x03\x04"), FormatCSV},
		{"", []byte("PK\x03\x04rest"), FormatXLSX},
		{"", []byte("Turbine,Model"), FormatCSV},
		{"upload.bin", []byte("Turbine,Model"), FormatCSV},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectFormat(tt.name, tt.head), "name=%q", tt.name)
	}
}

func TestSource_ReadDataset_Workbook(t *testing.T) {
	data := workbook(t, [][]any{
		{"T1", "RD93", "A", "C1", 5, 6.5, 400, 0},
		{"T1", "RD93", "A", "C1", 5, 7, 700.25, 1},
		{"T2", "UNKNOWN", nil, nil, nil, 6, nil, nil},
	})

	src, err := NewSource("export.xlsx", bytes.NewReader(data))
	require.NoError(t, err)
	ds, err := src.ReadDataset(context.Background())
	require.NoError(t, err)

	require.Len(t, ds.Records, 3)
	assert.True(t, ds.Schema.HasValidity)
	r := ds.Records[0]
	assert.Equal(t, "T1", r.Turbine)
	assert.Equal(t, "5", r.Week)
	require.NotNil(t, r.WindSpeed)
	assert.InDelta(t, 6.5, *r.WindSpeed, 1e-9)
	require.NotNil(t, ds.Records[1].ActivePower)
	assert.InDelta(t, 700.25, *ds.Records[1].ActivePower, 1e-9)
	assert.Nil(t, ds.Records[2].ActivePower)
	assert.Nil(t, ds.Records[2].Validity)
}

func TestSource_ReadDataset_SniffsWorkbookWithoutName(t *testing.T) {
	data := workbook(t, [][]any{{"T1", "RD93", "A", "C1", 5, 6, 400, 0}})

	src, err := NewSource("", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, src.Format())

	ds, err := src.ReadDataset(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Records, 1)
}

func TestSource_ReadDataset_UsesFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{domain.ColumnTurbine, domain.ColumnModel, domain.ColumnWindSpeed, domain.ColumnActivePower}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"T1", "RD100", 5, 200}))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Other", "A1", &[]any{"junk"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	src, err := NewSource("export.xlsx", buf)
	require.NoError(t, err)
	ds, err := src.ReadDataset(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, "RD100", ds.Records[0].Model)
	assert.False(t, ds.Schema.HasSite)
}

func TestSource_ReadDataset_CSV(t *testing.T) {
	csv := "\ufeff" + strings.Join(header, ",") + "\n" +
		"T1,RD93,A,C1,5,6,400,0\n" +
		"T1,RD93,A,C1,5,7,700\n" +
		"\n" +
		",RD93,A,C1,5,7,700,1\n"

	src, err := NewSource("export.csv", strings.NewReader(csv))
	require.NoError(t, err)
	ds, err := src.ReadDataset(context.Background())
	require.NoError(t, err)

	require.Len(t, ds.Records, 2)
	assert.Equal(t, "T1", ds.Records[0].Turbine)
	assert.Nil(t, ds.Records[1].Validity)
	assert.Equal(t, 1, ds.SkippedRows)
}

func TestSource_ReadDataset_Failures(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{"empty upload", "export.csv", "   \n"},
		{"corrupt workbook", "export.xlsx", "PK\x03\x04not really a zip"},
		{"missing columns", "export.csv", "Turbine,Model\nT1,RD93\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(tt.file, strings.NewReader(tt.data))
			require.NoError(t, err)
			_, err = src.ReadDataset(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrIngestion)
		})
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open("/nonexistent/export.xlsx")
	assert.ErrorIs(t, err, domain.ErrIngestion)
}
