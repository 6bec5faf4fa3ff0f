// Command validate checks a power curve archive: every entry must be a PNG of
// the expected size with a safe, unique chart filename. Given the export the
// archive was rendered from, it also checks that every turbine has exactly one
// chart under the expected name.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -archive turbine_power_curves_20240426_151000.zip \
//	  -input data/mock/scada_week5.xlsx \
//	  -dpi 300 -width-in 12 -height-in 8
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"math"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/couchcryptid/power-curve-service/internal/adapter/spreadsheet"
	"github.com/couchcryptid/power-curve-service/internal/domain"
)

// chartName matches SITE_CUSTOMER_TURBINE_WeekWEEK.png with an optional
// collision suffix.
var chartName = regexp.MustCompile(`^.+_.+_.+_Week.+?(_[0-9]+)?\.png$`)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type options struct {
	archive  string
	input    string
	dpi      int
	widthIn  float64
	heightIn float64
}

func main() {
	var opts options
	flag.StringVar(&opts.archive, "archive", "", "path to the ZIP archive to validate")
	flag.StringVar(&opts.input, "input", "", "optional export the archive was rendered from")
	flag.IntVar(&opts.dpi, "dpi", 300, "expected render DPI (0 skips the size check)")
	flag.Float64Var(&opts.widthIn, "width-in", 12, "expected figure width in inches")
	flag.Float64Var(&opts.heightIn, "height-in", 8, "expected figure height in inches")
	flag.Parse()

	if opts.archive == "" {
		flag.Usage()
		os.Exit(1)
	}
	os.Exit(run(opts))
}

func run(opts options) int {
	fmt.Println("=== Power Curve Archive Validation ===")
	fmt.Println()

	zr, err := zip.OpenReader(opts.archive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open archive: %v\n", err)
		return 1
	}
	defer zr.Close()

	phases := []*phase{
		validateNames(zr.File),
		validateImages(zr.File, opts),
	}
	if opts.input != "" {
		p, err := validateCoverage(zr.File, opts.input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load export: %v\n", err)
			return 1
		}
		phases = append(phases, p)
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}
	fmt.Println()
	fmt.Printf("Entries: %d\n", len(zr.File))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateNames checks that entry names are flat, safe for common filesystems,
// unique and follow the chart naming pattern.
func validateNames(files []*zip.File) *phase {
	p := &phase{name: "Entry names"}
	if len(files) == 0 {
		p.errorf("archive is empty")
	}
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		name := f.Name
		if seen[name] {
			p.errorf("%s: duplicate entry", name)
		}
		seen[name] = true

		if strings.ContainsAny(name, `/\`) {
			p.errorf("%s: entry is not at the archive root", name)
			continue
		}
		stem := strings.TrimSuffix(name, domain.ImageExtension)
		if domain.SanitizeComponent(stem) != stem {
			p.errorf("%s: contains characters unsafe for filenames", name)
		}
		if !chartName.MatchString(name) {
			p.errorf("%s: does not match SITE_CUSTOMER_TURBINE_WeekWEEK.png", name)
		}
	}
	return p
}

// validateImages decodes every entry and checks its pixel size.
func validateImages(files []*zip.File, opts options) *phase {
	p := &phase{name: "Chart images"}
	wantW := int(math.Round(opts.widthIn * float64(opts.dpi)))
	wantH := int(math.Round(opts.heightIn * float64(opts.dpi)))

	for _, f := range files {
		rc, err := f.Open()
		if err != nil {
			p.errorf("%s: open: %v", f.Name, err)
			continue
		}
		cfg, err := png.DecodeConfig(rc)
		rc.Close()
		if err != nil {
			p.errorf("%s: not a PNG: %v", f.Name, err)
			continue
		}
		if opts.dpi > 0 && (cfg.Width != wantW || cfg.Height != wantH) {
			p.errorf("%s: %dx%d px, want %dx%d", f.Name, cfg.Width, cfg.Height, wantW, wantH)
		}
	}
	return p
}

// validateCoverage compares the archive with the turbines of the export.
func validateCoverage(files []*zip.File, input string) (*phase, error) {
	src, err := spreadsheet.Open(input)
	if err != nil {
		return nil, err
	}
	ds, err := src.ReadDataset(context.Background())
	if err != nil {
		return nil, err
	}

	namer := domain.NewUniqueNamer()
	want := make(map[string]string)
	for _, g := range domain.GroupTurbines(ds) {
		name, _ := namer.Claim(domain.ChartFilename(g.Turbine, g.Metadata))
		want[name] = g.Turbine
	}

	p := &phase{name: "Turbine coverage"}
	got := make(map[string]bool, len(files))
	for _, f := range files {
		got[f.Name] = true
		if _, ok := want[f.Name]; !ok {
			p.errorf("%s: no turbine in the export maps to this chart", f.Name)
		}
	}
	var missing []string
	for name, turbine := range want {
		if !got[name] {
			missing = append(missing, fmt.Sprintf("%s (turbine %s)", name, turbine))
		}
	}
	sort.Strings(missing)
	for _, m := range missing {
		p.errorf("missing chart %s", m)
	}
	return p, nil
}
