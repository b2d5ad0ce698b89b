// Package takeoff holds the engine's input model: insulation specifications
// (rules) and measurement items (takeoff lines), plus the closed vocabularies
// used to describe them.
package takeoff

import (
	"fmt"
	"strings"
)

// SystemType is the kind of mechanical system a spec or measurement covers.
type SystemType string

const (
	SystemDuct      SystemType = "duct"
	SystemPipe      SystemType = "pipe"
	SystemEquipment SystemType = "equipment"
)

// ParseSystemType accepts the canonical names as well as the more specific
// extraction labels ("supply_duct", "chilled_water_pipe", ...).
func ParseSystemType(raw string) (SystemType, error) {
	s := normalizeToken(raw)
	switch {
	case s == "":
		return "", fmt.Errorf("is required")
	case s == string(SystemEquipment):
		return SystemEquipment, nil
	case strings.Contains(s, "duct"):
		return SystemDuct, nil
	case strings.Contains(s, "pipe"), strings.Contains(s, "piping"):
		return SystemPipe, nil
	}
	return "", fmt.Errorf("is not one of duct, pipe, equipment")
}

// Material is the insulation material.
type Material string

const (
	MaterialFiberglass       Material = "fiberglass"
	MaterialElastomeric      Material = "elastomeric"
	MaterialCellularGlass    Material = "cellular_glass"
	MaterialMineralWool      Material = "mineral_wool"
	MaterialPolyisocyanurate Material = "polyisocyanurate"
	MaterialPhenolic         Material = "phenolic"
)

var materials = []Material{
	MaterialFiberglass,
	MaterialElastomeric,
	MaterialCellularGlass,
	MaterialMineralWool,
	MaterialPolyisocyanurate,
	MaterialPhenolic,
}

func ParseMaterial(raw string) (Material, error) {
	s := normalizeToken(raw)
	for _, m := range materials {
		if string(m) == s {
			return m, nil
		}
	}
	if s == "" {
		return "", fmt.Errorf("is required")
	}
	return "", fmt.Errorf("is not a known insulation material")
}

// Title renders the material name with the first letter of every word
// upper-cased, treating any non-letter as a word break ("cellular_glass" ->
// "Cellular_Glass"). Existing quote descriptions were built this way.
func (m Material) Title() string {
	var b strings.Builder
	prevLetter := false
	for _, r := range string(m) {
		isLetter := ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
		switch {
		case isLetter && !prevLetter:
			b.WriteString(strings.ToUpper(string(r)))
		case isLetter:
			b.WriteString(strings.ToLower(string(r)))
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}

// Facing is the optional vapor retarder or facing on the insulation. The zero
// value means no facing was specified.
type Facing string

const (
	FacingNone     Facing = ""
	FacingFSK      Facing = "FSK"
	FacingASJ      Facing = "ASJ"
	FacingPSK      Facing = "PSK"
	FacingAluminum Facing = "aluminum"
	FacingPVC      Facing = "PVC"
	FacingVinyl    Facing = "vinyl"
	FacingUnfaced  Facing = "unfaced"
)

var facings = []Facing{FacingFSK, FacingASJ, FacingPSK, FacingAluminum, FacingPVC, FacingVinyl, FacingUnfaced}

// ParseFacing matches case-insensitively and returns the canonical spelling.
// An empty or "none" value yields FacingNone.
func ParseFacing(raw string) (Facing, error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "none") {
		return FacingNone, nil
	}
	for _, f := range facings {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("is not a known facing")
}

// Location is the installation environment of a specification.
type Location string

const (
	LocationIndoor           Location = "indoor"
	LocationOutdoor          Location = "outdoor"
	LocationExposed          Location = "exposed"
	LocationExposedToWeather Location = "exposed_to_weather"
	LocationConcealed        Location = "concealed"
	LocationMechanicalRoom   Location = "mechanical_room"
)

var locations = []Location{
	LocationIndoor,
	LocationOutdoor,
	LocationExposed,
	LocationExposedToWeather,
	LocationConcealed,
	LocationMechanicalRoom,
}

// ParseLocation defaults to indoor when the value is empty.
func ParseLocation(raw string) (Location, error) {
	s := normalizeToken(raw)
	if s == "" {
		return LocationIndoor, nil
	}
	for _, l := range locations {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("is not one of indoor, outdoor, exposed, exposed_to_weather, concealed, mechanical_room")
}

// Well-known special requirement tags. The set is open; these are the ones the
// engine acts on or reports about.
const (
	ReqAluminumJacket  = "aluminum_jacket"
	ReqMasticCoating   = "mastic_coating"
	ReqStainlessBands  = "stainless_bands"
	ReqWeatherproofing = "weatherproofing"
	ReqVaporBarrier    = "vapor_barrier"
	ReqPVCJacket       = "pvc_jacket"
	ReqPVCJacket20Mil  = "pvc_jacket_20mil"
	ReqVaporSeal       = "vapor_seal"
)

// Specification is an insulation rule: which material, thickness and facing
// to apply to a class of system. Many measurements may share one.
type Specification struct {
	SystemType          SystemType `json:"system_type"`
	SizeRange           string     `json:"size_range"`
	ThicknessInches     float64    `json:"thickness"`
	Material            Material   `json:"material"`
	Facing              Facing     `json:"facing,omitempty"`
	SpecialRequirements []string   `json:"special_requirements"`
	Location            Location   `json:"location"`
}

// Requires reports whether tag is listed in SpecialRequirements.
func (s Specification) Requires(tag string) bool {
	for _, r := range s.SpecialRequirements {
		if r == tag {
			return true
		}
	}
	return false
}

// Measurement is one takeoff line measured from the drawings.
type Measurement struct {
	ItemID           string         `json:"item_id"`
	SystemType       SystemType     `json:"system_type"`
	Size             string         `json:"size"`
	LengthFeet       float64        `json:"length"`
	Location         string         `json:"location"`
	ElevationChanges int            `json:"elevation_changes"`
	Fittings         map[string]int `json:"fittings"`
	Notes            []string       `json:"notes"`
}

// Fitting returns the count for a fitting kind, zero when absent.
func (m Measurement) Fitting(kind string) int {
	return m.Fittings[kind]
}

func normalizeToken(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.Join(strings.Fields(s), "_")
}
