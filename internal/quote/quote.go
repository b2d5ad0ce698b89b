// Package quote rolls priced line items and labor into a project quote and
// renders it for customers and distributors.
package quote

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/pricing"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/takeoff"
)

const DefaultContingencyPercent = 10.0

// Quote is a complete project quote. Money fields hold full precision; totals
// derived from Subtotal are computed by methods so they cannot drift.
type Quote struct {
	ProjectName        string                  `json:"project_name"`
	QuoteNumber        string                  `json:"quote_number"`
	Date               string                  `json:"date"`
	CreatedAt          time.Time               `json:"created_at"`
	Measurements       []takeoff.Measurement   `json:"measurements"`
	Specifications     []takeoff.Specification `json:"specifications"`
	Materials          []pricing.LineItem      `json:"materials"`
	LaborHours         float64                 `json:"labor_hours"`
	LaborRate          float64                 `json:"labor_rate"`
	Subtotal           float64                 `json:"subtotal"`
	ContingencyPercent float64                 `json:"contingency_percent"`
	Notes              []string                `json:"notes"`
	MaterialList       []MaterialListEntry     `json:"material_list"`
	MarkupMultiplier   float64                 `json:"markup_multiplier"`
	Alternatives       []Alternative           `json:"alternatives,omitempty"`
	Warnings           []string                `json:"warnings,omitempty"`
}

// MaterialTotal is the sum of all line item totals.
func (q Quote) MaterialTotal() float64 {
	return pricing.MaterialTotal(q.Materials)
}

// LaborCost is LaborHours × LaborRate.
func (q Quote) LaborCost() float64 {
	return q.LaborHours * q.LaborRate
}

// ContingencyAmount is Subtotal × ContingencyPercent / 100.
func (q Quote) ContingencyAmount() float64 {
	return q.Subtotal * q.ContingencyPercent / 100
}

// Total is Subtotal plus contingency.
func (q Quote) Total() float64 {
	return q.Subtotal + q.ContingencyAmount()
}

// WithContingency returns a copy of q at a different contingency percentage.
func (q Quote) WithContingency(percent float64) (Quote, error) {
	if err := validContingency(percent); err != nil {
		return Quote{}, err
	}
	q.ContingencyPercent = percent
	return q, nil
}

// SystemSubtotal sums line items belonging to one system.
func (q Quote) SystemSubtotal(system takeoff.SystemType) float64 {
	total := 0.0
	for _, it := range q.Materials {
		if it.System == system {
			total += it.TotalPrice
		}
	}
	return total
}

// CategoryTotals sums line item totals per category.
func (q Quote) CategoryTotals() map[pricing.Category]float64 {
	out := make(map[pricing.Category]float64)
	for _, it := range q.Materials {
		out[it.Category] += it.TotalPrice
	}
	return out
}

func (q Quote) MarshalJSON() ([]byte, error) {
	type plain Quote
	return json.Marshal(struct {
		plain
		MaterialTotal     float64 `json:"material_total"`
		LaborCost         float64 `json:"labor_cost"`
		ContingencyAmount float64 `json:"contingency_amount"`
		Total             float64 `json:"total"`
	}{
		plain:             plain(q),
		MaterialTotal:     q.MaterialTotal(),
		LaborCost:         q.LaborCost(),
		ContingencyAmount: q.ContingencyAmount(),
		Total:             q.Total(),
	})
}

// ParamError reports an invalid pricing parameter.
type ParamError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s %v %s", e.Field, e.Value, e.Reason)
}

// Params are the commercial inputs to a quote.
type Params struct {
	ProjectName        string
	Markup             float64
	LaborRate          float64
	ContingencyPercent float64
}

// DefaultParams returns markup 1.0, $65/hr labor and 10% contingency.
func DefaultParams() Params {
	return Params{
		Markup:             1.0,
		LaborRate:          pricing.DefaultLaborRate,
		ContingencyPercent: DefaultContingencyPercent,
	}
}

// WithDocument overrides p with the project name and any parameters the
// takeoff document carries.
func (p Params) WithDocument(doc takeoff.Document) Params {
	if doc.ProjectName != "" {
		p.ProjectName = doc.ProjectName
	}
	if doc.Markup != nil {
		p.Markup = *doc.Markup
	}
	if doc.LaborRate != nil {
		p.LaborRate = *doc.LaborRate
	}
	if doc.ContingencyPercent != nil {
		p.ContingencyPercent = *doc.ContingencyPercent
	}
	return p
}

// Validate checks markup ≥ 1, labor rate > 0 and contingency ≥ 0.
func (p Params) Validate() error {
	if math.IsNaN(p.Markup) || math.IsInf(p.Markup, 0) || p.Markup < 1.0 {
		return &ParamError{Field: "markup", Value: p.Markup, Reason: "must be at least 1.0"}
	}
	if math.IsNaN(p.LaborRate) || math.IsInf(p.LaborRate, 0) || p.LaborRate <= 0 {
		return &ParamError{Field: "labor_rate", Value: p.LaborRate, Reason: "must be greater than zero"}
	}
	return validContingency(p.ContingencyPercent)
}

func validContingency(pct float64) error {
	if math.IsNaN(pct) || math.IsInf(pct, 0) || pct < 0 {
		return &ParamError{Field: "contingency_percent", Value: pct, Reason: "must not be negative"}
	}
	return nil
}
