package pricing

import (
	"strings"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/takeoff"
)

// LaborRates are installation hours per unit of material.
type LaborRates struct {
	DuctInsulation float64 // h/LF
	PipeInsulation float64 // h/LF
	Jacketing      float64 // h/SF
	Mastic         float64 // h/SF
	Accessories    float64
}

// DefaultLaborRates are the production rates used for quoting.
var DefaultLaborRates = LaborRates{
	DuctInsulation: 0.45,
	PipeInsulation: 0.35,
	Jacketing:      0.25,
	Mastic:         0.15,
	Accessories:    0,
}

const (
	// LaborOverhead covers setup, cleanup and supervision.
	LaborOverhead = 1.20

	DefaultLaborRate = 65.0
)

// Labor is the result of a labor estimate.
type Labor struct {
	RawHours float64
	Hours    float64
	Rate     float64
	Cost     float64
}

// IsDuctInsulation reports whether an insulation item is on ductwork.
func IsDuctInsulation(it LineItem) bool {
	if it.System == takeoff.SystemDuct {
		return true
	}
	return strings.Contains(strings.ToLower(it.Description), "duct")
}

// HoursFor is the unburdened installation time of one item.
func (r LaborRates) HoursFor(it LineItem) float64 {
	switch it.Category {
	case CategoryInsulation:
		if IsDuctInsulation(it) {
			return it.Quantity * r.DuctInsulation
		}
		return it.Quantity * r.PipeInsulation
	case CategoryJacket:
		return it.Quantity * r.Jacketing
	case CategoryMastic:
		return it.Quantity * r.Mastic
	case CategoryAccessories:
		return it.Quantity * r.Accessories
	}
	return 0
}

// EstimateLabor totals installation hours for items, adds the overhead
// allowance and prices them at hourlyRate (DefaultLaborRate when zero).
func EstimateLabor(items []LineItem, rates LaborRates, hourlyRate float64) Labor {
	if hourlyRate == 0 {
		hourlyRate = DefaultLaborRate
	}
	raw := 0.0
	for _, it := range items {
		raw += rates.HoursFor(it)
	}
	hours := raw * LaborOverhead
	return Labor{
		RawHours: raw,
		Hours:    hours,
		Rate:     hourlyRate,
		Cost:     hours * hourlyRate,
	}
}
