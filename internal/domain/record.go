package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Column headers of the SCADA telemetry export.
const (
	ColumnTurbine     = "Turbine"
	ColumnModel       = "Model"
	ColumnSite        = "Site"
	ColumnCustomer    = "Customer"
	ColumnWeek        = "Week"
	ColumnWindSpeed   = "Wind speed - AVE [m/s]"
	ColumnActivePower = "Active power - AVE [kW]"
	ColumnValidity    = "Power curve validity - MIN"
)

// RequiredColumns must be present in every export.
var RequiredColumns = []string{ColumnTurbine, ColumnModel, ColumnWindSpeed, ColumnActivePower}

// Record is one telemetry sample. Optional numeric fields are nil when the cell is
// blank or not a number.
type Record struct {
	Turbine     string
	Model       string
	Site        string
	Customer    string
	Week        string
	WindSpeed   *float64
	ActivePower *float64
	Validity    *int
}

// HasOperatingPoint reports whether both wind speed and active power are present.
func (r Record) HasOperatingPoint() bool {
	return r.WindSpeed != nil && r.ActivePower != nil
}

// Schema records which optional columns the source carried.
type Schema struct {
	HasSite     bool
	HasCustomer bool
	HasWeek     bool
	HasValidity bool
}

// Dataset is the ingested form of one export.
type Dataset struct {
	Schema  Schema
	Records []Record

	// SkippedRows counts non-blank rows without a turbine identifier.
	SkippedRows int
}

// ParseRows converts a header row and its data rows into a Dataset. Header names
// are matched after trimming surrounding whitespace; the first occurrence of a
// duplicated header wins. A missing required column is an ingestion failure;
// unparseable numeric cells are treated as missing values.
func ParseRows(header []string, rows [][]string) (Dataset, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return Dataset{}, fmt.Errorf("%w: missing required columns %q", ErrIngestion, missing)
	}

	has := func(col string) bool {
		_, ok := idx[col]
		return ok
	}
	ds := Dataset{
		Schema: Schema{
			HasSite:     has(ColumnSite),
			HasCustomer: has(ColumnCustomer),
			HasWeek:     has(ColumnWeek),
			HasValidity: has(ColumnValidity),
		},
		Records: make([]Record, 0, len(rows)),
	}

	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		cell := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		rec := Record{
			Turbine:     cell(ColumnTurbine),
			Model:       cell(ColumnModel),
			Site:        cell(ColumnSite),
			Customer:    cell(ColumnCustomer),
			Week:        cell(ColumnWeek),
			WindSpeed:   parseOptionalFloat(cell(ColumnWindSpeed)),
			ActivePower: parseOptionalFloat(cell(ColumnActivePower)),
			Validity:    parseValidity(cell(ColumnValidity)),
		}
		if rec.Turbine == "" {
			ds.SkippedRows++
			continue
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseOptionalFloat returns nil for blank, non-numeric, NaN and infinite cells.
func parseOptionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// parseValidity accepts integral values only ("2" or "2.0"). Anything else is
// treated as a missing validity code.
func parseValidity(s string) *int {
	v := parseOptionalFloat(s)
	if v == nil || *v != math.Trunc(*v) || math.Abs(*v) > math.MaxInt32 {
		return nil
	}
	code := int(*v)
	return &code
}
