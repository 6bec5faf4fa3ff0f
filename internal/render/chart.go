package render

import (
	"fmt"
	"image/color"

	"github.com/couchcryptid/power-curve-service/internal/domain"
)

// Fixed axis layout shared by every chart so turbines compare at a glance.
const (
	XMin, XMax = 0.0, 20.0
	YMin, YMax = 0.0, 2100.0

	// XTickMax is the last labeled wind speed gridline.
	XTickMax = 17
	// YTickStep is the power gridline spacing in kW.
	YTickStep = 100

	XLabel = "Wind Speed [m/s]"
	YLabel = "Active Power [kW]"
)

// Series is one drawable data set.
type Series struct {
	Label  string
	Color  color.NRGBA
	Points []domain.Point
}

// Chart is the backend-independent description of one turbine chart.
type Chart struct {
	Turbine string
	Model   string
	Title   string

	// Scatter holds one series per observed validity code in first-seen order,
	// or a single series when the export has no validity column.
	Scatter []Series

	// Reference is nil when the model is not in the catalog.
	Reference *Series

	// Dropped counts records without both wind speed and power.
	Dropped int

	// Uncoded counts operating points left out for lacking a validity code.
	Uncoded int
}

// PointCount is the number of plotted operating points.
func (c Chart) PointCount() int {
	n := 0
	for _, s := range c.Scatter {
		n += len(s.Points)
	}
	return n
}

// Describe lays out the chart for a turbine group without drawing it.
func Describe(catalog *domain.Catalog, g domain.TurbineGroup, model string) Chart {
	records := g.OperatingPoints()
	ch := Chart{
		Turbine: g.Turbine,
		Model:   model,
		Title:   Title(g, model),
		Dropped: len(g.Records) - len(records),
	}

	if len(records) > 0 {
		if g.HasValidity {
			ch.Scatter = partitionByValidity(g.Turbine, records)
			ch.Uncoded = len(records) - ch.PointCount()
		} else {
			ch.Scatter = []Series{{
				Label:  g.Turbine + " Actual Data",
				Color:  Fallback,
				Points: operatingPoints(records),
			}}
		}
	}

	if curve, ok := catalog.Lookup(model); ok {
		ch.Reference = &Series{
			Label:  model + " Standard Curve",
			Color:  ReferenceColor(model),
			Points: curve.Points,
		}
	}
	return ch
}

// Title is the two-line chart heading.
func Title(g domain.TurbineGroup, model string) string {
	return fmt.Sprintf("Power Curve - %s (%s)\nSite: %s | Customer: %s | Week: %s",
		g.Turbine, model, g.Site, g.Customer, g.Week)
}

// partitionByValidity splits records by validity code in first-seen order.
// Records without a code are left out.
func partitionByValidity(turbine string, records []domain.Record) []Series {
	index := make(map[int]int)
	var out []Series
	for _, r := range records {
		if r.Validity == nil {
			continue
		}
		code := *r.Validity
		i, ok := index[code]
		if !ok {
			i = len(out)
			index[code] = i
			out = append(out, Series{
				Label: fmt.Sprintf("%s (Validity: %d)", turbine, code),
				Color: ValidityColor(code),
			})
		}
		out[i].Points = append(out[i].Points, domain.Point{WindSpeed: *r.WindSpeed, Power: *r.ActivePower})
	}
	return out
}

func operatingPoints(records []domain.Record) []domain.Point {
	pts := make([]domain.Point, len(records))
	for i, r := range records {
		pts[i] = domain.Point{WindSpeed: *r.WindSpeed, Power: *r.ActivePower}
	}
	return pts
}
