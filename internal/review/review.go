// Package review checks specifications against installation practice and
// cross-references them with measured items before a quote is priced.
package review

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/pricing"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/takeoff"
)

// Status of a specification review.
type Status string

const (
	StatusPass    Status = "pass"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Report is the outcome of reviewing a set of specifications.
type Report struct {
	Status          Status   `json:"status"`
	Errors          []string `json:"errors"`
	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
	Validated       int      `json:"specifications_validated"`
	Summary         string   `json:"summary"`
}

func label(i int) string { return fmt.Sprintf("Spec #%d", i+1) }

// ValidateRecords reviews raw specification records. Records that cannot be
// ingested are reported as errors.
func ValidateRecords(records []takeoff.SpecRecord) Report {
	var r Report
	for i, rec := range records {
		spec, _, err := takeoff.SpecFromRecord(i, rec)
		if err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("%s: %s", label(i), reason(err)))
			continue
		}
		r.check(i, spec)
	}
	return r.finish(len(records))
}

// ValidateSpecs reviews typed specifications.
func ValidateSpecs(specs []takeoff.Specification) Report {
	var r Report
	for i, s := range specs {
		r.check(i, s)
	}
	return r.finish(len(specs))
}

func reason(err error) string {
	var verr *takeoff.ValidationError
	if errors.As(err, &verr) {
		return fmt.Sprintf("%s %s", verr.Field, verr.Reason)
	}
	return err.Error()
}

func outdoor(l takeoff.Location) bool {
	return l == takeoff.LocationOutdoor || l == takeoff.LocationExposedToWeather
}

func (r *Report) check(i int, s takeoff.Specification) {
	id := label(i)

	switch {
	case s.SystemType == takeoff.SystemDuct && s.ThicknessInches < 1.0:
		r.Warnings = append(r.Warnings, id+": Duct insulation < 1\" may not meet energy codes")
	case s.SystemType == takeoff.SystemPipe && s.ThicknessInches < 0.5:
		r.Warnings = append(r.Warnings, id+": Pipe insulation < 0.5\" may be inadequate")
	}

	if outdoor(s.Location) {
		if !s.Requires(takeoff.ReqAluminumJacket) && !s.Requires(takeoff.ReqPVCJacket) && !s.Requires(takeoff.ReqPVCJacket20Mil) {
			r.Warnings = append(r.Warnings, id+": Outdoor insulation should have weather protection jacketing")
		}
		if !s.Requires(takeoff.ReqStainlessBands) {
			r.Recommendations = append(r.Recommendations, id+": Consider stainless steel bands for outdoor installations")
		}
	}

	if s.Material == takeoff.MaterialElastomeric && s.Facing != takeoff.FacingNone {
		r.Warnings = append(r.Warnings, id+": Elastomeric typically doesn't use separate facing")
	}
	if s.Material == takeoff.MaterialFiberglass && s.Facing == takeoff.FacingNone && s.Location == takeoff.LocationExposed {
		r.Warnings = append(r.Warnings, id+": Exposed fiberglass insulation should have facing or jacketing")
	}

	text := strings.ToLower(s.SizeRange + " " + strings.Join(s.SpecialRequirements, " "))
	if strings.Contains(text, "chilled") || strings.Contains(text, "cold") {
		if !s.Requires(takeoff.ReqVaporSeal) && s.Material != takeoff.MaterialElastomeric {
			r.Recommendations = append(r.Recommendations, id+": Chilled water systems should have vapor barrier")
		}
	}
}

func (r Report) finish(n int) Report {
	switch {
	case len(r.Errors) > 0:
		r.Status = StatusError
	case len(r.Warnings) > 0:
		r.Status = StatusWarning
	default:
		r.Status = StatusPass
	}
	r.Validated = n
	r.Summary = fmt.Sprintf("Validated %d specifications: %d errors, %d warnings", n, len(r.Errors), len(r.Warnings))
	return r
}

// CrossStatus is the outcome of a cross reference.
type CrossStatus string

const (
	CrossValidated   CrossStatus = "validated"
	CrossWarning     CrossStatus = "warning"
	CrossIssuesFound CrossStatus = "issues_found"
)

// MatchQuality is exact when one spec covers a measurement's system and
// multiple when the first of several is used.
type MatchQuality string

const (
	MatchExact    MatchQuality = "exact"
	MatchMultiple MatchQuality = "multiple"
)

type MatchedItem struct {
	MeasurementID string                `json:"measurement_id"`
	Specification takeoff.Specification `json:"specification"`
	Quality       MatchQuality          `json:"match_quality"`
}

type MissingSpec struct {
	MeasurementID string             `json:"measurement_id"`
	SystemType    takeoff.SystemType `json:"system_type"`
	Reason        string             `json:"reason"`
}

type MissingMeasurement struct {
	SystemType takeoff.SystemType `json:"system_type"`
	Material   takeoff.Material   `json:"spec_material"`
	Thickness  float64            `json:"spec_thickness"`
	Reason     string             `json:"reason"`
}

// CrossReference reports measurements no spec covers and specs nothing was
// measured for.
type CrossReference struct {
	Status              CrossStatus          `json:"status"`
	Matched             []MatchedItem        `json:"matched"`
	MissingSpecs        []MissingSpec        `json:"missing_specifications"`
	MissingMeasurements []MissingMeasurement `json:"missing_measurements"`
}

// Cross checks that every measurement has a spec and every spec has at least
// one measurement.
func Cross(specs []takeoff.Specification, measurements []takeoff.Measurement) CrossReference {
	var cr CrossReference
	for _, m := range measurements {
		spec, ok := pricing.Match(m, specs)
		if !ok {
			cr.MissingSpecs = append(cr.MissingSpecs, MissingSpec{
				MeasurementID: m.ItemID,
				SystemType:    m.SystemType,
				Reason:        fmt.Sprintf("No specification found for %s insulation", m.SystemType),
			})
			continue
		}
		q := MatchExact
		if pricing.MatchCount(m, specs) > 1 {
			q = MatchMultiple
		}
		cr.Matched = append(cr.Matched, MatchedItem{MeasurementID: m.ItemID, Specification: spec, Quality: q})
	}

	for _, s := range specs {
		found := false
		for _, m := range measurements {
			if m.SystemType == s.SystemType {
				found = true
				break
			}
		}
		if !found {
			cr.MissingMeasurements = append(cr.MissingMeasurements, MissingMeasurement{
				SystemType: s.SystemType,
				Material:   s.Material,
				Thickness:  s.ThicknessInches,
				Reason:     fmt.Sprintf("Specification exists but no %s measurements found", s.SystemType),
			})
		}
	}

	switch {
	case len(cr.MissingSpecs) > 0:
		cr.Status = CrossIssuesFound
	case len(cr.MissingMeasurements) > 0:
		cr.Status = CrossWarning
	default:
		cr.Status = CrossValidated
	}
	return cr
}
