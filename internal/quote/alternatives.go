package quote

import (
	"strings"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/pricebook"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/pricing"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/takeoff"
)

// Alternative keys.
const (
	AltPVCJacketing      = "pvc_option"
	AltPremiumInsulation = "premium_insulation"
)

// Alternative prices an upgrade against the base scope it replaces.
type Alternative struct {
	Key         string  `json:"key"`
	Title       string  `json:"title"`
	BaseCost    float64 `json:"base_cost"`
	UpgradeCost float64 `json:"upgrade_cost"`
	Difference  float64 `json:"difference"`
}

func newAlternative(key, title string, base, upgrade float64) Alternative {
	return Alternative{Key: key, Title: title, BaseCost: base, UpgradeCost: upgrade, Difference: upgrade - base}
}

// Alternatives prices the standard upgrade options: PVC jacketing on piping
// and mineral wool on ductwork. Options whose system has no measurements are
// omitted.
func Alternatives(calc pricing.Calculator, measurements []takeoff.Measurement, specs []takeoff.Specification) []Alternative {
	var out []Alternative

	pipes := bySystem(measurements, takeoff.SystemPipe)
	if len(pipes) > 0 {
		base, _ := calc.Materials(pipes, specs)
		pvcSpecs := make([]takeoff.Specification, len(specs))
		for i, s := range specs {
			if s.SystemType == takeoff.SystemPipe {
				s.Facing = takeoff.FacingPVC
				s.SpecialRequirements = []string{takeoff.ReqPVCJacket20Mil}
			}
			pvcSpecs[i] = s
		}
		upgrade, _ := calc.Materials(pipes, pvcSpecs)
		pvcPrice := calc.UnitPrice(pricebook.KeyPVCJacket20Mil, pvcJacketFallback)
		for i := range upgrade {
			if upgrade[i].Category == pricing.CategoryJacket {
				upgrade[i].Description = "PVC Jacketing 20 mil - " + sizeOf(upgrade[i].Description)
				upgrade[i].UnitPrice = pvcPrice
				upgrade[i].TotalPrice = upgrade[i].Quantity * pvcPrice
			}
		}
		out = append(out, newAlternative(AltPVCJacketing, "PVC Jacketing Upgrade (Piping)",
			pricing.MaterialTotal(base), pricing.MaterialTotal(upgrade)))
	}

	ducts := bySystem(measurements, takeoff.SystemDuct)
	if len(ducts) > 0 {
		var baseSpecs []takeoff.Specification
		premiumSpecs := make([]takeoff.Specification, len(specs))
		for i, s := range specs {
			if s.SystemType == takeoff.SystemDuct {
				baseSpecs = append(baseSpecs, s)
				s.Material = takeoff.MaterialMineralWool
				s.SpecialRequirements = nil
			}
			premiumSpecs[i] = s
		}
		base, _ := calc.Materials(ducts, baseSpecs)
		upgrade, _ := calc.Materials(ducts, premiumSpecs)
		out = append(out, newAlternative(AltPremiumInsulation, "Premium Insulation Upgrade (Ductwork)",
			pricing.MaterialTotal(base), pricing.MaterialTotal(upgrade)))
	}

	return out
}

const pvcJacketFallback = 3.75

func bySystem(measurements []takeoff.Measurement, system takeoff.SystemType) []takeoff.Measurement {
	var out []takeoff.Measurement
	for _, m := range measurements {
		if m.SystemType == system {
			out = append(out, m)
		}
	}
	return out
}

// sizeOf returns the size suffix of a "... - {size}" description.
func sizeOf(desc string) string {
	if i := strings.LastIndex(desc, " - "); i >= 0 {
		return desc[i+3:]
	}
	return desc
}
