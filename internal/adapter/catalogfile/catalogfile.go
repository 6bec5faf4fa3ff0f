// Package catalogfile loads reference power curves from a YAML file.
//
// The file lists curves by model:
//
//	curves:
//	  - model: RD93
//	    points:
//	      - {wind_speed: 3.0, power: 20}
//	      - {wind_speed: 3.5, power: 45}
//
// A curve may instead give parallel sample lists with wind_speed and power keys.
// Models in the file replace built-in curves of the same name; the others are kept.
package catalogfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/power-curve-service/internal/domain"
)

type file struct {
	Curves []curve `yaml:"curves"`
}

type curve struct {
	Model     string         `yaml:"model"`
	Points    []domain.Point `yaml:"points"`
	WindSpeed []float64      `yaml:"wind_speed"`
	Power     []float64      `yaml:"power"`
}

// Load reads the catalog at path layered over base. An empty path returns base.
func Load(path string, base *domain.Catalog) (*domain.Catalog, error) {
	if path == "" {
		return base, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference curves: %w", err)
	}
	defer f.Close()

	c, err := Decode(f, base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Decode parses a YAML catalog from r layered over base, which may be nil.
func Decode(r io.Reader, base *domain.Catalog) (*domain.Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc file
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("reference curve file is empty")
		}
		return nil, fmt.Errorf("decode reference curves: %w", err)
	}
	if len(doc.Curves) == 0 {
		return nil, errors.New("reference curve file lists no curves")
	}

	overrides := make(map[string]bool, len(doc.Curves))
	curves := make([]domain.ReferenceCurve, 0, len(doc.Curves)+base.Len())
	for i, c := range doc.Curves {
		rc, err := c.toReference()
		if err != nil {
			return nil, fmt.Errorf("curve %d: %w", i+1, err)
		}
		overrides[rc.Model] = true
		curves = append(curves, rc)
	}
	for _, model := range base.Models() {
		if overrides[model] {
			continue
		}
		rc, _ := base.Lookup(model)
		curves = append(curves, rc)
	}
	return domain.NewCatalog(curves...)
}

func (c curve) toReference() (domain.ReferenceCurve, error) {
	switch {
	case len(c.Points) > 0 && (len(c.WindSpeed) > 0 || len(c.Power) > 0):
		return domain.ReferenceCurve{}, fmt.Errorf("model %q: give either points or wind_speed/power, not both", c.Model)
	case len(c.Points) > 0:
		return domain.ReferenceCurve{Model: c.Model, Points: c.Points}, nil
	default:
		return domain.CurveFromSamples(c.Model, c.WindSpeed, c.Power)
	}
}
