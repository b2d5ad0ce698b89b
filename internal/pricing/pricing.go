package pricing

import (
	"math"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/pricebook"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/takeoff"
)

// Unit is the unit of measure of a line item.
type Unit string

const (
	UnitLF Unit = "LF"
	UnitSF Unit = "SF"
	UnitEA Unit = "EA"
)

// Category groups line items for labor estimation and reporting.
type Category string

const (
	CategoryInsulation  Category = "insulation"
	CategoryJacket      Category = "jacket"
	CategoryMastic      Category = "mastic"
	CategoryAccessories Category = "accessories"
)

// Categories lists the categories in report order.
var Categories = []Category{CategoryAccessories, CategoryInsulation, CategoryJacket, CategoryMastic}

// LineItem is one priced material requirement. UnitPrice already includes the
// markup multiplier and TotalPrice is Quantity × UnitPrice.
type LineItem struct {
	ItemID      string             `json:"item_id,omitempty"`
	System      takeoff.SystemType `json:"system,omitempty"`
	Description string             `json:"description"`
	Unit        Unit               `json:"unit"`
	Quantity    float64            `json:"quantity"`
	UnitPrice   float64            `json:"unit_price"`
	TotalPrice  float64            `json:"total_price"`
	Category    Category           `json:"category"`
}

func newLineItem(m takeoff.Measurement, desc string, unit Unit, qty, unitPrice float64, cat Category) LineItem {
	return LineItem{
		ItemID:      m.ItemID,
		System:      m.SystemType,
		Description: desc,
		Unit:        unit,
		Quantity:    qty,
		UnitPrice:   unitPrice,
		TotalPrice:  qty * unitPrice,
		Category:    cat,
	}
}

// Calculator expands measurements into priced line items.
type Calculator struct {
	Book   *pricebook.PriceBook
	Markup float64
}

// NewCalculator returns a calculator over book. A markup of zero means 1.0.
func NewCalculator(book *pricebook.PriceBook, markup float64) Calculator {
	if markup == 0 {
		markup = 1.0
	}
	return Calculator{Book: book, Markup: markup}
}

// UnitPrice is the marked-up price for key.
func (c Calculator) UnitPrice(key string, fallback float64) float64 {
	markup := c.Markup
	if markup == 0 {
		markup = 1.0
	}
	return c.Book.PriceFor(key, fallback) * markup
}

// FittingMultiplier is the allowance applied to straight length: each elbow
// adds half the run, each tee adds a full run.
func FittingMultiplier(m takeoff.Measurement) float64 {
	return 1.0 + 0.5*float64(m.Fitting("elbow")) + 1.0*float64(m.Fitting("tee"))
}

// LineItems expands one measurement under spec, in order: insulation,
// jacket or facing, mastic, accessories.
func (c Calculator) LineItems(m takeoff.Measurement, spec takeoff.Specification) []LineItem {
	items := make([]LineItem, 0, 4)

	qty := m.LengthFeet * FittingMultiplier(m)
	items = append(items, newLineItem(m,
		InsulationDescription(spec, m.Size),
		UnitLF, qty,
		c.UnitPrice(PriceKey(spec), pricebook.FallbackInsulation),
		CategoryInsulation,
	))

	sf := SurfaceSquareFeet(m, spec)

	if spec.Facing != takeoff.FacingNone || spec.Requires(takeoff.ReqAluminumJacket) {
		if spec.Requires(takeoff.ReqAluminumJacket) {
			items = append(items, newLineItem(m,
				"Aluminum Jacketing - "+m.Size,
				UnitSF, sf,
				c.UnitPrice(pricebook.KeyAluminumJacket, pricebook.FallbackAluminumJacket),
				CategoryJacket,
			))
		} else {
			facing := string(spec.Facing)
			if facing == "" {
				facing = "Facing"
			}
			items = append(items, newLineItem(m,
				facing+" Facing - "+m.Size,
				UnitSF, sf,
				c.UnitPrice(pricebook.KeyFSKFacing, pricebook.FallbackFacing),
				CategoryJacket,
			))
		}
	}

	if spec.Requires(takeoff.ReqMasticCoating) {
		items = append(items, newLineItem(m,
			"Mastic Vapor Seal Coating",
			UnitSF, sf,
			c.UnitPrice(pricebook.KeyMastic, pricebook.FallbackMastic),
			CategoryMastic,
		))
	}

	if spec.Requires(takeoff.ReqStainlessBands) {
		bands := math.Floor(m.LengthFeet) + 1
		items = append(items, newLineItem(m,
			"Stainless Steel Bands",
			UnitEA, bands,
			c.UnitPrice(pricebook.KeyStainlessBands, pricebook.FallbackStainlessBands),
			CategoryAccessories,
		))
	}

	return items
}

// Materials prices every measurement against the first matching spec.
// Measurements with no matching spec contribute nothing and are returned in
// unmatched.
func (c Calculator) Materials(measurements []takeoff.Measurement, specs []takeoff.Specification) (items []LineItem, unmatched []takeoff.Measurement) {
	for _, m := range measurements {
		spec, ok := Match(m, specs)
		if !ok {
			unmatched = append(unmatched, m)
			continue
		}
		items = append(items, c.LineItems(m, spec)...)
	}
	return items, unmatched
}

// MaterialTotal sums TotalPrice over items.
func MaterialTotal(items []LineItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.TotalPrice
	}
	return total
}
