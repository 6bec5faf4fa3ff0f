// Command genmock writes a synthetic SCADA telemetry workbook for local runs
// and demos. Operating points scatter around each model's reference curve and
// exercise the awkward parts of real exports: every validity code, an
// unmapped code, blank cells, a text week and a model with no reference curve.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/scada_week5.xlsx
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/couchcryptid/power-curve-service/internal/adapter/spreadsheet"
	"github.com/couchcryptid/power-curve-service/internal/domain"
)

type turbineDef struct {
	id       string
	model    string
	site     string
	customer string
	week     any
}

var turbines = []turbineDef{
	{id: "WTG-01", model: domain.ModelRD93, site: "Ridgeback", customer: "Northwind Energy", week: 5},
	{id: "WTG-02", model: domain.ModelRD100, site: "Ridgeback", customer: "Northwind Energy", week: 5},
	{id: "WTG-03", model: domain.ModelRD113, site: "Saltmarsh", customer: "Coastal Power", week: 5},
	{id: "WTG-04", model: "RD150", site: "Saltmarsh", customer: "Coastal Power", week: "W05"},
}

var header = []string{
	domain.ColumnTurbine, domain.ColumnModel, domain.ColumnSite, domain.ColumnCustomer,
	domain.ColumnWeek, domain.ColumnWindSpeed, domain.ColumnActivePower, domain.ColumnValidity,
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the generated workbook")
	rows := flag.Int("rows", 500, "records per turbine")
	seed := flag.Uint64("seed", 42, "random seed for reproducible output")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *rows < 1 {
		return fmt.Errorf("-rows must be positive, got %d", *rows)
	}

	data := generate(domain.DefaultCatalog(), *rows, rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)))

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	if err := spreadsheet.WriteWorkbook(f, header, data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Printf("wrote %d records for %d turbines to %s", len(data), len(turbines), *out)
	return nil
}

func generate(catalog *domain.Catalog, perTurbine int, rng *rand.Rand) [][]any {
	out := make([][]any, 0, perTurbine*len(turbines))
	for _, t := range turbines {
		curve, ok := catalog.Lookup(t.model)
		if !ok {
			curve, _ = catalog.Lookup(domain.ModelRD113)
		}
		for range perTurbine {
			out = append(out, sampleRow(t, curve, rng))
		}
	}
	return out
}

func sampleRow(t turbineDef, curve domain.ReferenceCurve, rng *rand.Rand) []any {
	ws := math.Round(rng.Float64()*22*100) / 100
	power := interpolate(curve.Points, ws)

	var validity any
	switch r := rng.Float64(); {
	case r < 0.70:
		validity = 0
		power += rng.NormFloat64() * 40
	case r < 0.80:
		validity = 1
		power *= 0.6 + 0.3*rng.Float64()
	case r < 0.87:
		validity = 2
		power *= 0.3 * rng.Float64()
	case r < 0.94:
		validity = 3
		power += rng.NormFloat64() * 120
	case r < 0.97:
		validity = 7
	default:
		validity = nil
	}
	power = math.Round(max(power, -20)*10) / 10

	row := []any{t.id, t.model, t.site, t.customer, t.week, ws, power, validity}
	if rng.Float64() < 0.02 {
		row[5+rng.IntN(2)] = nil
	}
	return row
}

// interpolate reads the reference curve at ws; beyond the curve the turbine is
// cut out.
func interpolate(points []domain.Point, ws float64) float64 {
	if len(points) == 0 || ws < points[0].WindSpeed || ws > points[len(points)-1].WindSpeed {
		return 0
	}
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		if ws <= b.WindSpeed {
			frac := (ws - a.WindSpeed) / (b.WindSpeed - a.WindSpeed)
			return a.Power + frac*(b.Power-a.Power)
		}
	}
	return points[len(points)-1].Power
}
