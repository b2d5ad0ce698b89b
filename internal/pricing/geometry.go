package pricing

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/takeoff"
)

// DefaultDiameterInches is used when a size string carries no number.
const DefaultDiameterInches = 12.0

var sizeNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseDiameter reads the first numeric token of a size string ("18x12" ->
// 18, "2\"" -> 2, "1.5 inch" -> 1.5). Rectangular duct sizes use the first
// dimension.
func ParseDiameter(size string) float64 {
	tok := sizeNumber.FindString(size)
	if tok == "" {
		return DefaultDiameterInches
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return DefaultDiameterInches
	}
	return f
}

// OuterCircumferenceFeet is the circumference, in feet, of the insulated
// surface: π(d + 2t)/12.
func OuterCircumferenceFeet(diameterInches, thicknessInches float64) float64 {
	return math.Pi * (diameterInches + 2*thicknessInches) / 12
}

// SurfaceSquareFeet is the outer surface area of the run. Fitting allowances
// do not apply to surface area.
func SurfaceSquareFeet(m takeoff.Measurement, spec takeoff.Specification) float64 {
	return m.LengthFeet * OuterCircumferenceFeet(ParseDiameter(m.Size), spec.ThicknessInches)
}

// FormatThickness renders a thickness the way price keys spell it: always
// with a fractional part ("1.5", "1.0", "2.0").
func FormatThickness(t float64) string {
	s := strconv.FormatFloat(t, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// PriceKey is the insulation price key for a spec, "{material}_{thickness}".
func PriceKey(spec takeoff.Specification) string {
	return string(spec.Material) + "_" + FormatThickness(spec.ThicknessInches)
}

// InsulationDescription is the line item description for the insulation on
// a run of the given size.
func InsulationDescription(spec takeoff.Specification, size string) string {
	return spec.Material.Title() + " Insulation " + FormatThickness(spec.ThicknessInches) + "\" - " + size
}
