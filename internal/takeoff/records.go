package takeoff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Number is a numeric field as it arrived from an extraction feed. JSON and
// YAML numbers and numeric strings are both accepted; the raw text is kept so
// ingestion can reject non-numeric input instead of coercing it to zero.
type Number string

// NumberOf wraps a float for building records in code.
func NumberOf(f float64) Number {
	return Number(strconv.FormatFloat(f, 'f', -1, 64))
}

// Float parses the number. A trailing inch mark is tolerated ("1.5\"").
func (n Number) Float() (float64, error) {
	s := strings.TrimSpace(string(n))
	s = strings.TrimSpace(strings.TrimSuffix(s, `"`))
	if s == "" {
		return 0, fmt.Errorf("is required")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("is not numeric")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("is not a finite number")
	}
	return f, nil
}

// Int parses a whole, non-fractional number within the int32 range.
func (n Number) Int() (int, error) {
	f, err := n.Float()
	if err != nil {
		return 0, err
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("is out of range")
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("is not a whole number")
	}
	return int(f), nil
}

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*n = Number(strings.TrimSpace(str))
		return nil
	}
	*n = Number(s)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if f, err := n.Float(); err == nil {
		return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
	}
	return json.Marshal(string(n))
}

func (n *Number) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", value.Line)
	}
	*n = Number(strings.TrimSpace(value.Value))
	return nil
}

func (n Number) MarshalYAML() (any, error) {
	if f, err := n.Float(); err == nil {
		return f, nil
	}
	return string(n), nil
}

// SpecRecord is a specification as supplied at the boundary.
type SpecRecord struct {
	SystemType          string   `json:"system_type" yaml:"system_type"`
	SizeRange           string   `json:"size_range" yaml:"size_range"`
	Thickness           Number   `json:"thickness" yaml:"thickness"`
	Material            string   `json:"material" yaml:"material"`
	Facing              string   `json:"facing,omitempty" yaml:"facing,omitempty"`
	SpecialRequirements []string `json:"special_requirements" yaml:"special_requirements"`
	Location            string   `json:"location" yaml:"location"`
}

// MeasurementRecord is a measurement as supplied at the boundary.
type MeasurementRecord struct {
	ItemID           string            `json:"item_id" yaml:"item_id"`
	SystemType       string            `json:"system_type" yaml:"system_type"`
	Size             string            `json:"size" yaml:"size"`
	Length           Number            `json:"length" yaml:"length"`
	Location         string            `json:"location" yaml:"location"`
	ElevationChanges Number            `json:"elevation_changes,omitempty" yaml:"elevation_changes,omitempty"`
	Fittings         map[string]Number `json:"fittings,omitempty" yaml:"fittings,omitempty"`
	Notes            []string          `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Document is a complete takeoff hand-off: one project's specifications and
// measurements plus optional pricing parameters.
type Document struct {
	ProjectName        string              `json:"project_name" yaml:"project_name"`
	Specifications     []SpecRecord        `json:"specifications" yaml:"specifications"`
	Measurements       []MeasurementRecord `json:"measurements" yaml:"measurements"`
	Markup             *float64            `json:"markup,omitempty" yaml:"markup,omitempty"`
	LaborRate          *float64            `json:"labor_rate,omitempty" yaml:"labor_rate,omitempty"`
	ContingencyPercent *float64            `json:"contingency_percent,omitempty" yaml:"contingency_percent,omitempty"`
}

// Format is the encoding of a takeoff document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension; anything that is not
// .yaml or .yml is read as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Decode reads a document in the given format.
func Decode(r io.Reader, format Format) (Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return Document{}, fmt.Errorf("decode yaml takeoff: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("decode json takeoff: %w", err)
		}
	}
	return doc, nil
}

// LoadFile reads a takeoff document from disk.
func LoadFile(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read takeoff: %w", err)
	}
	return Decode(bytes.NewReader(b), FormatFor(path))
}

// WriteFile writes a document to disk in the format implied by its extension.
func WriteFile(path string, doc Document) error {
	var (
		b   []byte
		err error
	)
	switch FormatFor(path) {
	case FormatYAML:
		b, err = yaml.Marshal(doc)
	default:
		b, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode takeoff: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}
