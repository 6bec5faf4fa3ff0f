package render

import "image/color"

var (
	yellow  = color.NRGBA{R: 255, G: 255, B: 0, A: 255}
	orange  = color.NRGBA{R: 255, G: 165, B: 0, A: 255}
	red     = color.NRGBA{R: 255, G: 0, B: 0, A: 255}
	blue    = color.NRGBA{R: 0, G: 0, B: 255, A: 255}
	green   = color.NRGBA{R: 0, G: 128, B: 0, A: 255}
	magenta = color.NRGBA{R: 191, G: 0, B: 191, A: 255}
	black   = color.NRGBA{A: 255}

	// Neutral marks validity codes without an assigned color.
	Neutral = color.NRGBA{R: 128, G: 128, B: 128, A: 255}

	// Fallback colors the single series drawn when the export has no validity column.
	Fallback = blue
)

var validityColors = map[int]color.NRGBA{
	0: yellow,
	1: orange,
	2: red,
	3: blue,
}

var referenceColors = map[string]color.NRGBA{
	"RD93":  red,
	"RD100": green,
	"RD113": magenta,
}

// ValidityColor maps a validity code to its point color. Codes outside 0–3 get
// Neutral.
func ValidityColor(code int) color.NRGBA {
	if c, ok := validityColors[code]; ok {
		return c
	}
	return Neutral
}

// ReferenceColor is the line color of a model's reference curve. Models loaded
// from a catalog file without an assigned color are drawn in black.
func ReferenceColor(model string) color.NRGBA {
	if c, ok := referenceColors[model]; ok {
		return c
	}
	return black
}

// pointAlpha matches the translucency used for dense operating point clouds.
const pointAlpha = 153

func translucent(c color.NRGBA) color.NRGBA {
	c.A = pointAlpha
	return c
}
