package quote

import (
	"fmt"
	"sort"
	"strings"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/pricing"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/takeoff"
)

const verticalWorkThreshold = 10

var standardNotes = []string{
	"Pricing valid for 30 days",
	"Subject to final site verification",
	"Assumes clear access to work areas",
	"All work per project specifications and applicable codes",
}

// Notes builds the quote notes: job-specific notes first, then warnings, then
// the standard terms.
func Notes(specs []takeoff.Specification, measurements []takeoff.Measurement, warnings []string) []string {
	var notes []string

	for _, s := range specs {
		if strings.Contains(string(s.Location), "outdoor") {
			notes = append(notes, "Weather protection jacketing included for outdoor applications")
			break
		}
	}
	for _, s := range specs {
		if s.Requires(takeoff.ReqMasticCoating) {
			notes = append(notes, "Vapor seal mastic coating per specifications")
			break
		}
	}

	var vertical int64
	for _, m := range measurements {
		vertical += int64(m.ElevationChanges)
	}
	if vertical > verticalWorkThreshold {
		notes = append(notes, fmt.Sprintf("Significant vertical work: %d elevation changes", vertical))
	}

	notes = append(notes, warnings...)
	return append(notes, standardNotes...)
}

// MaterialListEntry is one consolidated line of the distributor order.
type MaterialListEntry struct {
	Description string           `json:"description"`
	Unit        pricing.Unit     `json:"unit"`
	Quantity    float64          `json:"quantity"`
	Category    pricing.Category `json:"category"`
	TotalPrice  float64          `json:"total_price"`
}

// Consolidate merges line items with the same description and unit, summing
// quantities and totals, sorted by category then description.
func Consolidate(items []pricing.LineItem) []MaterialListEntry {
	type key struct {
		desc string
		unit pricing.Unit
	}
	index := make(map[key]int)
	var out []MaterialListEntry
	for _, it := range items {
		k := key{it.Description, it.Unit}
		if i, ok := index[k]; ok {
			out[i].Quantity += it.Quantity
			out[i].TotalPrice += it.TotalPrice
			continue
		}
		index[k] = len(out)
		out = append(out, MaterialListEntry{
			Description: it.Description,
			Unit:        it.Unit,
			Quantity:    it.Quantity,
			Category:    it.Category,
			TotalPrice:  it.TotalPrice,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Description < out[j].Description
	})
	return out
}
