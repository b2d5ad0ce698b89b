package takeoff

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseSystemType(t *testing.T) {
	tests := []struct {
		in      string
		want    SystemType
		wantErr bool
	}{
		{in: "duct", want: SystemDuct},
		{in: "Supply Duct", want: SystemDuct},
		{in: "pipe", want: SystemPipe},
		{in: "chilled_water_pipe", want: SystemPipe},
		{in: "HVAC piping", want: SystemPipe},
		{in: "equipment", want: SystemEquipment},
		{in: "", wantErr: true},
		{in: "chimney", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSystemType(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSystemType(%q) = %q, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSystemType(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseSystemType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMaterialTitle(t *testing.T) {
	tests := map[Material]string{
		MaterialFiberglass:    "Fiberglass",
		MaterialCellularGlass: "Cellular_Glass",
		MaterialMineralWool:   "Mineral_Wool",
	}
	for m, want := range tests {
		if got := m.Title(); got != want {
			t.Fatalf("%s.Title() = %q, want %q", m, got, want)
		}
	}
}

func TestParseFacingIsCaseInsensitive(t *testing.T) {
	got, err := ParseFacing("fsk")
	if err != nil || got != FacingFSK {
		t.Fatalf("ParseFacing(fsk) = %q, %v", got, err)
	}
	got, err = ParseFacing("none")
	if err != nil || got != FacingNone {
		t.Fatalf("ParseFacing(none) = %q, %v", got, err)
	}
	if _, err := ParseFacing("cardboard"); err == nil {
		t.Fatalf("expected error for unknown facing")
	}
}

func TestParseLocationDefaultsToIndoor(t *testing.T) {
	got, err := ParseLocation("  ")
	if err != nil || got != LocationIndoor {
		t.Fatalf("ParseLocation(blank) = %q, %v", got, err)
	}
	got, err = ParseLocation("Exposed to Weather")
	if err != nil || got != LocationExposedToWeather {
		t.Fatalf("ParseLocation = %q, %v", got, err)
	}
}

func TestNormalizeRequirements(t *testing.T) {
	got := NormalizeRequirements([]string{
		"Mastic coating",
		"aluminum jacket",
		"Stainless steel straps",
		"vapor barrier",
		"Weather resistant",
		"mastic",
		"Vapor Seal",
	})
	want := []string{
		ReqMasticCoating,
		ReqAluminumJacket,
		ReqStainlessBands,
		ReqVaporBarrier,
		ReqWeatherproofing,
		ReqVaporSeal,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeRequirements = %v, want %v", got, want)
	}
}

func TestNormalizeFittingsSumsAliases(t *testing.T) {
	got, err := NormalizeFittings("D-1", map[string]Number{
		"elbow":      "2",
		"90 degree":  "1",
		"branch tee": "1",
		"reducer":    "3",
		"valve":      "0",
		"cap":        "4",
	})
	if err != nil {
		t.Fatalf("NormalizeFittings: %v", err)
	}
	want := map[string]int{"elbow": 3, "tee": 1, "transition": 3, "valve": 0, "cap": 4}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeFittings = %v, want %v", got, want)
	}
}

func TestMeasurementFromRecordRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		rec    MeasurementRecord
		field  string
		reason string
	}{
		{
			name:  "non-numeric length",
			rec:   MeasurementRecord{ItemID: "D-1", SystemType: "duct", Size: "18x12", Length: "abc"},
			field: "length",
		},
		{
			name:  "negative length",
			rec:   MeasurementRecord{ItemID: "D-1", SystemType: "duct", Size: "18x12", Length: "-5"},
			field: "length",
		},
		{
			name:  "equipment",
			rec:   MeasurementRecord{ItemID: "E-1", SystemType: "equipment", Size: "AHU", Length: "10"},
			field: "system_type",
		},
		{
			name:  "fractional elevation",
			rec:   MeasurementRecord{ItemID: "P-1", SystemType: "pipe", Size: "2\"", Length: "10", ElevationChanges: "1.5"},
			field: "elevation_changes",
		},
		{
			name:  "negative fitting",
			rec:   MeasurementRecord{ItemID: "P-1", SystemType: "pipe", Size: "2\"", Length: "10", Fittings: map[string]Number{"elbow": "-1"}},
			field: "fittings.elbow",
		},
		{
			name:  "missing size",
			rec:   MeasurementRecord{ItemID: "P-1", SystemType: "pipe", Length: "10"},
			field: "size",
		},
		{
			name:   "huge elevation",
			rec:    MeasurementRecord{ItemID: "P-1", SystemType: "pipe", Size: "2\"", Length: "10", ElevationChanges: "5e18"},
			field:  "elevation_changes",
			reason: "is out of range",
		},
		{
			name:   "huge fitting",
			rec:    MeasurementRecord{ItemID: "P-1", SystemType: "pipe", Size: "2\"", Length: "10", Fittings: map[string]Number{"elbow": "1e30"}},
			field:  "fittings.elbow",
			reason: "is out of range",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := MeasurementFromRecord(0, tt.rec)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Fatalf("field = %q, want %q", verr.Field, tt.field)
			}
			if tt.reason != "" && verr.Reason != tt.reason {
				t.Fatalf("reason = %q, want %q", verr.Reason, tt.reason)
			}
		})
	}
}

func TestIngestSkipsInvalidItemsAndWarns(t *testing.T) {
	specs := []SpecRecord{
		{SystemType: "duct", Thickness: "1.5", Material: "fiberglass", Facing: "FSK", Location: "indoor"},
		{SystemType: "pipe", Thickness: "thick", Material: "fiberglass"},
		{SystemType: "pipe", Thickness: "0.25", Material: "elastomeric"},
	}
	measurements := []MeasurementRecord{
		{SystemType: "duct", Size: "18x12", Length: "100", Fittings: map[string]Number{"elbow": "2"}},
		{SystemType: "pipe", Size: "2\"", Length: "1500"},
		{SystemType: "pipe", Size: "2\"", Length: "0"},
	}

	b := Ingest(specs, measurements)

	if len(b.Specifications) != 2 {
		t.Fatalf("specs = %d, want 2", len(b.Specifications))
	}
	if len(b.Measurements) != 2 {
		t.Fatalf("measurements = %d, want 2", len(b.Measurements))
	}
	if b.Measurements[0].ItemID != "MANUAL_1" || b.Measurements[1].ItemID != "MANUAL_2" {
		t.Fatalf("ids = %q, %q", b.Measurements[0].ItemID, b.Measurements[1].ItemID)
	}
	joined := strings.Join(b.Warnings, "\n")
	for _, want := range []string{
		`spec 2: thickness "thick" is not numeric`,
		`spec 3: very thin insulation 0.25" - verify`,
		"MANUAL_2: very long measurement 1500 LF - verify",
		`MANUAL_3: length "0" must be greater than zero`,
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("warnings missing %q:\n%s", want, joined)
		}
	}
}

func TestIngestFlagsDuplicateItemIDs(t *testing.T) {
	b := Ingest(nil, []MeasurementRecord{
		{ItemID: "A", SystemType: "duct", Size: "12x18", Length: "10"},
		{ItemID: "A", SystemType: "duct", Size: "12x18", Length: "20"},
		{ItemID: "B", SystemType: "pipe", Size: "2\"", Length: "5"},
	})
	if len(b.Measurements) != 3 {
		t.Fatalf("measurements = %d, want 3", len(b.Measurements))
	}
	want := []string{"A: duplicate item id - verify"}
	if !reflect.DeepEqual(b.Warnings, want) {
		t.Fatalf("warnings = %q, want %q", b.Warnings, want)
	}
}

func TestDecodeAcceptsNumbersAndStrings(t *testing.T) {
	raw := `{
  "project_name": "Clinic",
  "specifications": [{"system_type": "duct", "thickness": "1.5\"", "material": "fiberglass", "location": "indoor"}],
  "measurements": [{"item_id": "D-1", "system_type": "duct", "size": "18x12", "length": 100, "fittings": {"elbow": 2}}],
  "markup": 1.15
}`
	doc, err := Decode(strings.NewReader(raw), FormatJSON)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if doc.Markup == nil || *doc.Markup != 1.15 {
		t.Fatalf("markup = %v", doc.Markup)
	}
	b := doc.Ingest()
	if len(b.Warnings) != 0 {
		t.Fatalf("warnings = %v", b.Warnings)
	}
	if b.Specifications[0].ThicknessInches != 1.5 {
		t.Fatalf("thickness = %v", b.Specifications[0].ThicknessInches)
	}
	if b.Measurements[0].LengthFeet != 100 || b.Measurements[0].Fitting("elbow") != 2 {
		t.Fatalf("measurement = %+v", b.Measurements[0])
	}
}

func TestWriteFileRoundTripsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "takeoff.yaml")
	doc := Document{
		ProjectName: "Warehouse",
		Measurements: []MeasurementRecord{
			{ItemID: "P-1", SystemType: "pipe", Size: "2\"", Length: NumberOf(240), Fittings: map[string]Number{"elbow": NumberOf(8)}},
		},
	}
	if err := WriteFile(path, doc); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.ProjectName != "Warehouse" || len(got.Measurements) != 1 {
		t.Fatalf("doc = %+v", got)
	}
	if l, _ := got.Measurements[0].Length.Float(); l != 240 {
		t.Fatalf("length = %v", l)
	}
}

func TestNumberMarshalJSON(t *testing.T) {
	b, err := json.Marshal(MeasurementRecord{Length: "12.5"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"length":12.5`) {
		t.Fatalf("json = %s", b)
	}
}
