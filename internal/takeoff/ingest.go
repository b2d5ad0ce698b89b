package takeoff

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValidationError reports one malformed field of an incoming record.
type ValidationError struct {
	Item   string
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s %s", e.Item, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s %q %s", e.Item, e.Field, e.Value, e.Reason)
}

func invalid(item, field, value string, err error) *ValidationError {
	return &ValidationError{Item: item, Field: field, Value: value, Reason: err.Error()}
}

// Advisory limits. Values outside them are accepted with a warning.
const (
	thinInsulationInches  = 0.5
	thickInsulationInches = 4.0
	longRunFeet           = 1000.0
)

// Batch is the typed result of ingesting a set of records. Items that failed
// validation are absent; their errors are in Warnings along with advisories.
type Batch struct {
	Specifications []Specification
	Measurements   []Measurement
	Warnings       []string
}

// Ingest converts boundary records into the engine's model. Invalid items are
// skipped rather than failing the whole batch. Repeated item ids are kept and
// flagged.
func Ingest(specs []SpecRecord, measurements []MeasurementRecord) Batch {
	var b Batch
	for i, r := range specs {
		s, warns, err := SpecFromRecord(i, r)
		b.Warnings = append(b.Warnings, warns...)
		if err != nil {
			b.Warnings = append(b.Warnings, err.Error())
			continue
		}
		b.Specifications = append(b.Specifications, s)
	}
	seen := make(map[string]bool, len(measurements))
	for i, r := range measurements {
		m, warns, err := MeasurementFromRecord(i, r)
		b.Warnings = append(b.Warnings, warns...)
		if err != nil {
			b.Warnings = append(b.Warnings, err.Error())
			continue
		}
		if seen[m.ItemID] {
			b.Warnings = append(b.Warnings, fmt.Sprintf("%s: duplicate item id - verify", m.ItemID))
		}
		seen[m.ItemID] = true
		b.Measurements = append(b.Measurements, m)
	}
	return b
}

// Ingest converts the document's records.
func (d Document) Ingest() Batch {
	return Ingest(d.Specifications, d.Measurements)
}

// SpecLabel names the i-th (zero-based) specification in messages.
func SpecLabel(i int) string {
	return "spec " + strconv.Itoa(i+1)
}

// SpecFromRecord validates and normalizes one specification record.
func SpecFromRecord(i int, r SpecRecord) (Specification, []string, error) {
	label := SpecLabel(i)

	st, err := ParseSystemType(r.SystemType)
	if err != nil {
		return Specification{}, nil, invalid(label, "system_type", r.SystemType, err)
	}
	thickness, err := r.Thickness.Float()
	if err != nil {
		return Specification{}, nil, invalid(label, "thickness", string(r.Thickness), err)
	}
	if thickness <= 0 {
		return Specification{}, nil, invalid(label, "thickness", string(r.Thickness), fmt.Errorf("must be greater than zero"))
	}
	mat, err := ParseMaterial(r.Material)
	if err != nil {
		return Specification{}, nil, invalid(label, "material", r.Material, err)
	}
	facing, err := ParseFacing(r.Facing)
	if err != nil {
		return Specification{}, nil, invalid(label, "facing", r.Facing, err)
	}
	loc, err := ParseLocation(r.Location)
	if err != nil {
		return Specification{}, nil, invalid(label, "location", r.Location, err)
	}

	var warns []string
	if thickness < thinInsulationInches {
		warns = append(warns, fmt.Sprintf("%s: very thin insulation %s\" - verify", label, FormatFloat(thickness)))
	}
	if thickness > thickInsulationInches {
		warns = append(warns, fmt.Sprintf("%s: very thick insulation %s\" - verify", label, FormatFloat(thickness)))
	}

	return Specification{
		SystemType:          st,
		SizeRange:           strings.TrimSpace(r.SizeRange),
		ThicknessInches:     thickness,
		Material:            mat,
		Facing:              facing,
		SpecialRequirements: NormalizeRequirements(r.SpecialRequirements),
		Location:            loc,
	}, warns, nil
}

// MeasurementFromRecord validates and normalizes one measurement record.
// Records without an item id are labelled MANUAL_<n>.
func MeasurementFromRecord(i int, r MeasurementRecord) (Measurement, []string, error) {
	id := strings.TrimSpace(r.ItemID)
	if id == "" {
		id = "MANUAL_" + strconv.Itoa(i+1)
	}

	st, err := ParseSystemType(r.SystemType)
	if err != nil {
		return Measurement{}, nil, invalid(id, "system_type", r.SystemType, err)
	}
	if st == SystemEquipment {
		return Measurement{}, nil, invalid(id, "system_type", r.SystemType, fmt.Errorf("is not one of duct, pipe"))
	}
	size := strings.TrimSpace(r.Size)
	if size == "" {
		return Measurement{}, nil, invalid(id, "size", "", fmt.Errorf("is required"))
	}
	length, err := r.Length.Float()
	if err != nil {
		return Measurement{}, nil, invalid(id, "length", string(r.Length), err)
	}
	if length <= 0 {
		return Measurement{}, nil, invalid(id, "length", string(r.Length), fmt.Errorf("must be greater than zero"))
	}
	elevation := 0
	if strings.TrimSpace(string(r.ElevationChanges)) != "" {
		elevation, err = r.ElevationChanges.Int()
		if err != nil {
			return Measurement{}, nil, invalid(id, "elevation_changes", string(r.ElevationChanges), err)
		}
		if elevation < 0 {
			return Measurement{}, nil, invalid(id, "elevation_changes", string(r.ElevationChanges), fmt.Errorf("must not be negative"))
		}
	}
	fittings, err := NormalizeFittings(id, r.Fittings)
	if err != nil {
		return Measurement{}, nil, err
	}

	var warns []string
	if length > longRunFeet {
		warns = append(warns, fmt.Sprintf("%s: very long measurement %s LF - verify", id, FormatFloat(length)))
	}

	return Measurement{
		ItemID:           id,
		SystemType:       st,
		Size:             size,
		LengthFeet:       length,
		Location:         strings.TrimSpace(r.Location),
		ElevationChanges: elevation,
		Fittings:         fittings,
		Notes:            r.Notes,
	}, warns, nil
}

// NormalizeFittings folds fitting names onto elbow, tee, valve and
// transition, summing counts that land on the same kind. Unrecognised names
// are kept as given.
func NormalizeFittings(item string, raw map[string]Number) (map[string]int, error) {
	out := make(map[string]int, len(raw))
	// Sorted so the first bad entry reported is stable.
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		n, err := raw[name].Int()
		if err != nil {
			return nil, invalid(item, "fittings."+name, string(raw[name]), err)
		}
		if n < 0 {
			return nil, invalid(item, "fittings."+name, string(raw[name]), fmt.Errorf("must not be negative"))
		}
		out[FittingKind(name)] += n
	}
	return out, nil
}

// FittingKind maps a free-form fitting name to its canonical kind.
func FittingKind(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(s, "elbow"), strings.Contains(s, "90"):
		return "elbow"
	case strings.Contains(s, "tee"), strings.Contains(s, "branch"):
		return "tee"
	case strings.Contains(s, "valve"):
		return "valve"
	case strings.Contains(s, "transition"), strings.Contains(s, "reducer"):
		return "transition"
	}
	return name
}

// NormalizeRequirements maps requirement phrases onto the tags the engine
// acts on and removes duplicates, keeping first-seen order.
func NormalizeRequirements(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		tag := RequirementTag(r)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// RequirementTag maps one requirement phrase to its tag.
func RequirementTag(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "mastic"):
		return ReqMasticCoating
	case strings.Contains(s, "aluminum") && strings.Contains(s, "jacket"):
		return ReqAluminumJacket
	case strings.Contains(s, "stainless") && (strings.Contains(s, "band") || strings.Contains(s, "strap")):
		return ReqStainlessBands
	case strings.Contains(s, "vapor") && strings.Contains(s, "barrier"):
		return ReqVaporBarrier
	case strings.Contains(s, "weather"):
		return ReqWeatherproofing
	}
	return normalizeToken(s)
}

// FormatFloat renders a float in its shortest exact decimal form ("1.5",
// "2", "0.25").
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
