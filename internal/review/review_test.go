package review

import (
	"reflect"
	"testing"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/takeoff"
)

func TestValidateSpecsRules(t *testing.T) {
	specs := []takeoff.Specification{
		{SystemType: takeoff.SystemDuct, ThicknessInches: 0.75, Material: takeoff.MaterialFiberglass, Facing: takeoff.FacingFSK, Location: takeoff.LocationIndoor},
		{SystemType: takeoff.SystemPipe, ThicknessInches: 1, Material: takeoff.MaterialElastomeric, Facing: takeoff.FacingASJ, Location: takeoff.LocationOutdoor},
		{SystemType: takeoff.SystemDuct, ThicknessInches: 1.5, Material: takeoff.MaterialFiberglass, Location: takeoff.LocationExposed},
		{SystemType: takeoff.SystemPipe, SizeRange: "chilled water all sizes", ThicknessInches: 1, Material: takeoff.MaterialFiberglass, Facing: takeoff.FacingASJ, Location: takeoff.LocationIndoor},
	}
	r := ValidateSpecs(specs)

	wantWarnings := []string{
		`Spec #1: Duct insulation < 1" may not meet energy codes`,
		"Spec #2: Outdoor insulation should have weather protection jacketing",
		"Spec #2: Elastomeric typically doesn't use separate facing",
		"Spec #3: Exposed fiberglass insulation should have facing or jacketing",
	}
	wantRecs := []string{
		"Spec #2: Consider stainless steel bands for outdoor installations",
		"Spec #4: Chilled water systems should have vapor barrier",
	}
	if !reflect.DeepEqual(r.Warnings, wantWarnings) {
		t.Fatalf("warnings = %q", r.Warnings)
	}
	if !reflect.DeepEqual(r.Recommendations, wantRecs) {
		t.Fatalf("recommendations = %q", r.Recommendations)
	}
	if r.Status != StatusWarning || r.Validated != 4 {
		t.Fatalf("status = %s, validated = %d", r.Status, r.Validated)
	}
	if r.Summary != "Validated 4 specifications: 0 errors, 4 warnings" {
		t.Fatalf("summary = %q", r.Summary)
	}
}

func TestValidateSpecsPass(t *testing.T) {
	r := ValidateSpecs([]takeoff.Specification{
		{SystemType: takeoff.SystemPipe, ThicknessInches: 1, Material: takeoff.MaterialFiberglass, Facing: takeoff.FacingASJ, Location: takeoff.LocationOutdoor,
			SpecialRequirements: []string{takeoff.ReqAluminumJacket, takeoff.ReqStainlessBands}},
	})
	if r.Status != StatusPass || len(r.Warnings)+len(r.Recommendations) != 0 {
		t.Fatalf("report = %+v", r)
	}
}

func TestValidateRecordsReportsBadRecords(t *testing.T) {
	r := ValidateRecords([]takeoff.SpecRecord{
		{SystemType: "duct", Material: "fiberglass"},
		{SystemType: "pipe", Thickness: "1", Material: "fiberglass", Facing: "ASJ"},
	})
	if r.Status != StatusError {
		t.Fatalf("status = %s", r.Status)
	}
	if len(r.Errors) != 1 || r.Errors[0] != "Spec #1: thickness is required" {
		t.Fatalf("errors = %q", r.Errors)
	}
}

func TestCross(t *testing.T) {
	duct := takeoff.Specification{SystemType: takeoff.SystemDuct, ThicknessInches: 1.5, Material: takeoff.MaterialFiberglass}
	duct2 := duct
	duct2.ThicknessInches = 2
	pipe := takeoff.Specification{SystemType: takeoff.SystemPipe, ThicknessInches: 1, Material: takeoff.MaterialElastomeric}

	ms := []takeoff.Measurement{{ItemID: "D-1", SystemType: takeoff.SystemDuct}}

	cr := Cross([]takeoff.Specification{duct, duct2, pipe}, ms)
	if cr.Status != CrossWarning {
		t.Fatalf("status = %s", cr.Status)
	}
	if len(cr.Matched) != 1 || cr.Matched[0].Quality != MatchMultiple || cr.Matched[0].Specification.ThicknessInches != 1.5 {
		t.Fatalf("matched = %+v", cr.Matched)
	}
	if len(cr.MissingMeasurements) != 1 || cr.MissingMeasurements[0].SystemType != takeoff.SystemPipe {
		t.Fatalf("missing measurements = %+v", cr.MissingMeasurements)
	}

	cr = Cross([]takeoff.Specification{pipe}, ms)
	if cr.Status != CrossIssuesFound || len(cr.MissingSpecs) != 1 {
		t.Fatalf("cross = %+v", cr)
	}
	if cr.MissingSpecs[0].Reason != "No specification found for duct insulation" {
		t.Fatalf("reason = %q", cr.MissingSpecs[0].Reason)
	}

	cr = Cross([]takeoff.Specification{duct}, ms)
	if cr.Status != CrossValidated || cr.Matched[0].Quality != MatchExact {
		t.Fatalf("cross = %+v", cr)
	}
}
