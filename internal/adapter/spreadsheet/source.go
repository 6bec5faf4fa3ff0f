// Package spreadsheet reads turbine telemetry exports from xlsx workbooks and
// CSV files.
package spreadsheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/power-curve-service/internal/domain"
)

// Format identifies the container of an export.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

var zipMagic = []byte("PK\x03\x04")

// DetectFormat picks the format from the file extension and falls back to
// sniffing the content when the name is missing or unrecognised.
func DetectFormat(name string, head []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".csv", ".txt":
		return FormatCSV
	}
	if bytes.HasPrefix(head, zipMagic) {
		return FormatXLSX
	}
	return FormatCSV
}

// Source is a single telemetry export held in memory.
// It implements pipeline.RecordSource.
type Source struct {
	name string
	data []byte
}

// NewSource reads r fully. Callers bound the size of r.
func NewSource(name string, r io.Reader) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrIngestion, displayName(name), err)
	}
	return &Source{name: name, data: data}, nil
}

// Open reads the export at path.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIngestion, err)
	}
	defer f.Close()
	return NewSource(filepath.Base(path), f)
}

// Name is the file name the export was submitted under, if any.
func (s *Source) Name() string { return s.name }

// Format reports how the export will be decoded.
func (s *Source) Format() Format { return DetectFormat(s.name, s.data) }

// ReadDataset decodes the export. Decoding failures wrap domain.ErrIngestion;
// a done context is reported with its own error.
func (s *Source) ReadDataset(ctx context.Context) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dataset{}, err
	}
	if len(bytes.TrimSpace(s.data)) == 0 {
		return domain.Dataset{}, fmt.Errorf("%w: %s is empty", domain.ErrIngestion, displayName(s.name))
	}

	var (
		table [][]string
		err   error
	)
	switch s.Format() {
	case FormatXLSX:
		table, err = readWorkbook(bytes.NewReader(s.data))
	default:
		table, err = readCSV(bytes.NewReader(s.data))
	}
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("%w: %s: %w", domain.ErrIngestion, displayName(s.name), err)
	}
	if len(table) == 0 {
		return domain.Dataset{}, fmt.Errorf("%w: %s has no header row", domain.ErrIngestion, displayName(s.name))
	}
	return domain.ParseRows(table[0], table[1:])
}

// readWorkbook returns the cells of the first sheet. Numeric cells are read
// unformatted so number formats cannot alter values.
func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func displayName(name string) string {
	if name == "" {
		return "upload"
	}
	return name
}
