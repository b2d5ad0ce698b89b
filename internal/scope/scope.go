// Package scope drops specifications and measurements that fall outside
// external HVAC and mechanical insulation work.
package scope

import (
	"fmt"
	"strings"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/takeoff"
)

var excludedKeywords = []string{
	"duct liner", "liner", "internal liner", "acoustic liner",
	"waste", "sanitary", "domestic water", "plumbing", "drain", "sewer",
	"fire sprinkler", "sprinkler pipe", "fire protection pipe",
	"underground", "buried", "below grade",
}

var excludedSpecNotes = []string{"liner", "internal", "acoustic only", "waste", "plumbing", "sprinkler"}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// SpecExcluded reports whether a spec describes out-of-scope work.
func SpecExcluded(s takeoff.Specification) bool {
	text := strings.ToLower(strings.Join([]string{
		string(s.SystemType), s.SizeRange, strings.Join(s.SpecialRequirements, " "),
	}, " "))
	return containsAny(text, excludedKeywords) || containsAny(text, excludedSpecNotes)
}

// MeasurementExcluded reports whether a measured item is out of scope.
func MeasurementExcluded(m takeoff.Measurement) bool {
	text := strings.ToLower(strings.Join([]string{
		string(m.SystemType), m.Size, m.Location, strings.Join(m.Notes, " "),
	}, " "))
	return containsAny(text, excludedKeywords)
}

// Specs returns the in-scope specifications.
func Specs(specs []takeoff.Specification) []takeoff.Specification {
	var out []takeoff.Specification
	for _, s := range specs {
		if !SpecExcluded(s) {
			out = append(out, s)
		}
	}
	return out
}

// Measurements returns the in-scope measurements.
func Measurements(ms []takeoff.Measurement) []takeoff.Measurement {
	var out []takeoff.Measurement
	for _, m := range ms {
		if !MeasurementExcluded(m) {
			out = append(out, m)
		}
	}
	return out
}

// Result is a filtered batch with counts of what was dropped.
type Result struct {
	Specifications       []takeoff.Specification
	Measurements         []takeoff.Measurement
	ExcludedSpecs        int
	ExcludedMeasurements int
}

// Filter applies both filters.
func Filter(specs []takeoff.Specification, ms []takeoff.Measurement) Result {
	r := Result{Specifications: Specs(specs), Measurements: Measurements(ms)}
	r.ExcludedSpecs = len(specs) - len(r.Specifications)
	r.ExcludedMeasurements = len(ms) - len(r.Measurements)
	return r
}

// Summary is a one-line account of the exclusions for the bid package.
func (r Result) Summary(company string) string {
	var parts []string
	if r.ExcludedSpecs > 0 {
		parts = append(parts, fmt.Sprintf("%d specification(s) excluded (out of scope)", r.ExcludedSpecs))
	}
	if r.ExcludedMeasurements > 0 {
		parts = append(parts, fmt.Sprintf("%d measurement(s) excluded (out of scope)", r.ExcludedMeasurements))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("All extracted items fall within %s scope (external HVAC/mechanical insulation only).", company)
	}
	return "Scope filter applied: " + strings.Join(parts, "; ") +
		". Excluded items: duct liner, waste plumbing, domestic water, fire sprinkler, and other non-external mechanical insulation."
}
